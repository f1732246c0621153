// internal/services/notification_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dropwatch/dropwatch/internal/config"
)

// ErrNotificationDelivery marks a failed alert delivery. It is always
// non-fatal: callers log it and keep the recorded history.
var ErrNotificationDelivery = errors.New("notification delivery failed")

// ErrNoChannelConfigured reports that neither the webhook nor the Telegram
// channel is set up, so the alert went nowhere. Callers must not count it as
// a delivery.
var ErrNoChannelConfigured = errors.New("no notification channel configured")

type PriceAlert struct {
	ProductName string
	OldPrice    float64
	NewPrice    float64
	URL         string
}

func (a PriceAlert) DropPercentage() float64 {
	return ((a.OldPrice - a.NewPrice) / a.OldPrice) * 100
}

// Notifier delivers a formatted price-drop alert to an external sink.
type Notifier interface {
	SendPriceAlert(ctx context.Context, alert PriceAlert) error
}

// NotificationService fans an alert out to the configured channels: a
// Discord-compatible webhook and, optionally, a Telegram chat.
type NotificationService struct {
	webhookURL string
	httpClient *http.Client
	bot        *tgbotapi.BotAPI
	chatID     int64
}

func NewNotificationService(cfg config.NotifyConfig) (*NotificationService, error) {
	s := &NotificationService{
		webhookURL: cfg.WebhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		chatID:     cfg.TelegramChatID,
	}

	if cfg.TelegramToken != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telegram bot: %w", err)
		}
		s.bot = bot
	}

	return s, nil
}

type webhookPayload struct {
	Embeds []webhookEmbed `json:"embeds"`
}

type webhookEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

func (s *NotificationService) SendPriceAlert(ctx context.Context, alert PriceAlert) error {
	if s.webhookURL == "" && (s.bot == nil || s.chatID == 0) {
		return ErrNoChannelConfigured
	}

	var errs []error

	if s.webhookURL != "" {
		if err := s.sendWebhook(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}

	if s.bot != nil && s.chatID != 0 {
		if err := s.sendTelegram(alert); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (s *NotificationService) sendWebhook(ctx context.Context, alert PriceAlert) error {
	payload := webhookPayload{
		Embeds: []webhookEmbed{
			{
				Title: "Price Drop Alert! 🔥",
				Description: fmt.Sprintf(
					"**%s**\nPrice dropped by %.1f%%!\nOld price: $%.2f\nNew price: $%.2f\n[View Product](%s)",
					alert.ProductName, alert.DropPercentage(), alert.OldPrice, alert.NewPrice, alert.URL,
				),
				Color: 3066993,
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationDelivery, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationDelivery, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationDelivery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: webhook returned %d", ErrNotificationDelivery, resp.StatusCode)
	}
	return nil
}

func (s *NotificationService) sendTelegram(alert PriceAlert) error {
	text := fmt.Sprintf(
		"Price Drop Alert!\n%s\nPrice dropped by %.1f%%\nOld price: $%.2f\nNew price: $%.2f\n%s",
		alert.ProductName, alert.DropPercentage(), alert.OldPrice, alert.NewPrice, alert.URL,
	)

	msg := tgbotapi.NewMessage(s.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationDelivery, err)
	}
	return nil
}
