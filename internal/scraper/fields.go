// internal/scraper/fields.go
package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// fieldMapping declares how a canonical product field is located inside the
// heterogeneous payloads the extraction API returns: candidate source keys
// are tried in order, matched case-insensitively as substrings of the
// payload keys. The core never sees raw payloads, only the mapped record.
type fieldMapping struct {
	canonical string
	keys      []string
}

var fieldMappings = []fieldMapping{
	{canonical: "name", keys: []string{"name", "title", "product"}},
	{canonical: "price", keys: []string{"price", "amount", "cost"}},
	{canonical: "currency", keys: []string{"currency", "curr", "symbol"}},
	{canonical: "main_image_url", keys: []string{"image", "img", "photo", "picture"}},
	{canonical: "variant_tag", keys: []string{"cabin_type", "variant", "fare_class"}},
}

var nonPriceChars = regexp.MustCompile(`[^\d.]`)

// mapFields resolves every canonical field against the merged payload.
func mapFields(payload map[string]interface{}) map[string]interface{} {
	mapped := make(map[string]interface{}, len(fieldMappings))
	for _, m := range fieldMappings {
		if v, ok := findByPatterns(payload, m.keys); ok {
			mapped[m.canonical] = v
		}
	}
	return mapped
}

func findByPatterns(payload map[string]interface{}, patterns []string) (interface{}, bool) {
	for _, pattern := range patterns {
		for key, value := range payload {
			if value == nil {
				continue
			}
			if strings.Contains(strings.ToLower(key), pattern) {
				return value, true
			}
		}
	}
	return nil, false
}

// parsePrice accepts numbers as well as strings like "$1,299.00"; currency
// symbols and separators are stripped before conversion.
func parsePrice(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case string:
		cleaned := nonPriceChars.ReplaceAllString(v, "")
		if cleaned == "" {
			return 0, fmt.Errorf("no digits in price value %q", v)
		}
		price, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid price value %q: %w", v, err)
		}
		return price, nil
	default:
		return 0, fmt.Errorf("unsupported price type %T", raw)
	}
}

func stringField(mapped map[string]interface{}, key, fallback string) string {
	if v, ok := mapped[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}
