// internal/services/notification_service_test.go
package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropwatch/dropwatch/internal/config"
	"github.com/dropwatch/dropwatch/internal/services"
)

func testAlert() services.PriceAlert {
	return services.PriceAlert{
		ProductName: "Test Product",
		OldPrice:    100,
		NewPrice:    80,
		URL:         "https://example.com/item",
	}
}

func TestSendPriceAlertNoChannelConfigured(t *testing.T) {
	svc, err := services.NewNotificationService(config.NotifyConfig{})
	require.NoError(t, err)

	err = svc.SendPriceAlert(context.Background(), testAlert())
	assert.ErrorIs(t, err, services.ErrNoChannelConfigured)
}

func TestSendPriceAlertWebhook(t *testing.T) {
	var payload struct {
		Embeds []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Color       int    `json:"color"`
		} `json:"embeds"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	svc, err := services.NewNotificationService(config.NotifyConfig{WebhookURL: server.URL})
	require.NoError(t, err)

	require.NoError(t, svc.SendPriceAlert(context.Background(), testAlert()))

	require.Len(t, payload.Embeds, 1)
	assert.Equal(t, "Price Drop Alert! 🔥", payload.Embeds[0].Title)
	assert.Equal(t, 3066993, payload.Embeds[0].Color)
	assert.Contains(t, payload.Embeds[0].Description, "Test Product")
	assert.Contains(t, payload.Embeds[0].Description, "20.0%")
}

func TestSendPriceAlertWebhookFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc, err := services.NewNotificationService(config.NotifyConfig{WebhookURL: server.URL})
	require.NoError(t, err)

	err = svc.SendPriceAlert(context.Background(), testAlert())
	assert.ErrorIs(t, err, services.ErrNotificationDelivery)
}

func TestDropPercentage(t *testing.T) {
	assert.InDelta(t, 20.0, testAlert().DropPercentage(), 0.0001)
}
