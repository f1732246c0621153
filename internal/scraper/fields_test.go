// internal/scraper/fields_test.go
package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want float64
	}{
		{"float", 19.99, 19.99},
		{"int", 42, 42.0},
		{"plain string", "19.99", 19.99},
		{"dollar sign", "$1299.00", 1299.00},
		{"thousands separator", "$1,299.00", 1299.00},
		{"euro suffix", "89,99 €", 8999},
		{"surrounding text", "Now only 24.50!", 24.50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePrice(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePriceRejectsGarbage(t *testing.T) {
	for _, in := range []interface{}{"free shipping", "", nil, true, []string{"10"}} {
		_, err := parsePrice(in)
		assert.Error(t, err, "input %v", in)
	}
}

func TestMapFieldsMatchesKeysCaseInsensitively(t *testing.T) {
	payload := map[string]interface{}{
		"ProductTitle":  "Mechanical Keyboard",
		"Sale_Price":    "$79.00",
		"currencyCode":  "EUR",
		"og:image":      "https://cdn.example.com/kb.jpg",
		"cabin_type":    "economy",
		"unrelated_key": "noise",
	}

	mapped := mapFields(payload)

	assert.Equal(t, "Mechanical Keyboard", mapped["name"])
	assert.Equal(t, "$79.00", mapped["price"])
	assert.Equal(t, "EUR", mapped["currency"])
	assert.Equal(t, "https://cdn.example.com/kb.jpg", mapped["main_image_url"])
	assert.Equal(t, "economy", mapped["variant_tag"])
}

func TestMapFieldsSkipsNilValues(t *testing.T) {
	payload := map[string]interface{}{
		"price": nil,
		"name":  "Thing",
	}

	mapped := mapFields(payload)

	_, ok := mapped["price"]
	assert.False(t, ok)
	assert.Equal(t, "Thing", mapped["name"])
}

func TestStringFieldFallback(t *testing.T) {
	mapped := map[string]interface{}{
		"name":     "Widget",
		"currency": 42, // wrong type falls back too
		"empty":    "",
	}

	assert.Equal(t, "Widget", stringField(mapped, "name", "Unknown"))
	assert.Equal(t, "USD", stringField(mapped, "currency", "USD"))
	assert.Equal(t, "x", stringField(mapped, "empty", "x"))
	assert.Equal(t, "x", stringField(mapped, "missing", "x"))
}
