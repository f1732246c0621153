// internal/scraper/scraper.go
package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dropwatch/dropwatch/internal/config"
)

// Observation is the fully-populated record the rest of the system consumes.
// The adapter never returns a partially-populated one: a missing or
// non-numeric price fails with a parse error instead.
type Observation struct {
	URL          string  `json:"url"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
	MainImageURL string  `json:"main_image_url"`
	VariantTag   string  `json:"variant_tag,omitempty"`
}

// Adapter converts a product URL (plus an optional free-text extraction
// hint) into a structured observation or a typed failure.
type Adapter interface {
	Scrape(ctx context.Context, url, hint string) (*Observation, error)
}

// Client talks to a hosted extraction API (Firecrawl-compatible wire format).
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg config.ScraperConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

type scrapeRequest struct {
	URL     string        `json:"url"`
	Formats []string      `json:"formats"`
	Extract extractParams `json:"extract"`
}

type extractParams struct {
	Prompt string                 `json:"prompt,omitempty"`
	Schema map[string]interface{} `json:"schema,omitempty"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    struct {
		Extract  map[string]interface{} `json:"extract"`
		Metadata map[string]interface{} `json:"metadata"`
	} `json:"data"`
}

var extractSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"name":           map[string]interface{}{"type": "string"},
		"price":          map[string]interface{}{"type": "number"},
		"currency":       map[string]interface{}{"type": "string"},
		"main_image_url": map[string]interface{}{"type": "string"},
		"cabin_type":     map[string]interface{}{"type": "string"},
	},
	"required": []string{"name", "price"},
}

func (c *Client) Scrape(ctx context.Context, url, hint string) (*Observation, error) {
	body, err := json.Marshal(scrapeRequest{
		URL:     url,
		Formats: []string{"extract"},
		Extract: extractParams{Prompt: hint, Schema: extractSchema},
	})
	if err != nil {
		return nil, newError(KindParse, url, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, newError(KindNetwork, url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeout expiry and connection failures both surface as network errors.
		return nil, newError(KindNetwork, url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, newError(KindRateLimited, url, fmt.Errorf("extraction API returned 429"))
	case resp.StatusCode >= 500:
		return nil, newError(KindNetwork, url, fmt.Errorf("extraction API returned %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		return nil, newError(KindParse, url, fmt.Errorf("extraction API returned %d", resp.StatusCode))
	}

	var decoded scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, newError(KindParse, url, err)
	}
	if !decoded.Success {
		return nil, newError(KindParse, url, fmt.Errorf("extraction failed: %s", decoded.Error))
	}

	obs, err := c.buildObservation(url, decoded)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"url":   url,
		"price": obs.Price,
		"name":  obs.Name,
	}).Debug("Scraped product")

	return obs, nil
}

// buildObservation merges extract over metadata and resolves canonical
// fields through the declarative mapping table.
func (c *Client) buildObservation(url string, decoded scrapeResponse) (*Observation, error) {
	merged := make(map[string]interface{}, len(decoded.Data.Extract)+len(decoded.Data.Metadata))
	for k, v := range decoded.Data.Metadata {
		merged[k] = v
	}
	for k, v := range decoded.Data.Extract {
		merged[k] = v
	}

	mapped := mapFields(merged)

	rawPrice, ok := mapped["price"]
	if !ok {
		return nil, newError(KindParse, url, errors.New("price field absent from extraction response"))
	}
	price, err := parsePrice(rawPrice)
	if err != nil {
		return nil, newError(KindParse, url, err)
	}
	if price < 0 {
		return nil, newError(KindParse, url, fmt.Errorf("negative price %v", price))
	}

	return &Observation{
		URL:          url,
		Name:         stringField(mapped, "name", "Unknown Product"),
		Price:        price,
		Currency:     NormalizeCurrency(stringField(mapped, "currency", "")),
		MainImageURL: stringField(mapped, "main_image_url", ""),
		VariantTag:   stringField(mapped, "variant_tag", ""),
	}, nil
}
