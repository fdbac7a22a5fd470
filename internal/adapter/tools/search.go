package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/cenkalti/backoff/v4"
)

const defaultTavilyBaseURL = "https://api.tavily.com"

// ErrNotConfigured is returned when a provider's credentials are missing
// and the tool has no demo fallback.
var ErrNotConfigured = errors.New("provider not configured")

// SearchHit is a single web search result.
type SearchHit struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// TavilyClient performs paid web searches through the Tavily API.
type TavilyClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewTavilyClient creates a Tavily search client. An empty apiKey leaves
// the client unconfigured; searches will fail rather than fall back.
func NewTavilyClient(apiKey string, httpClient *http.Client) *TavilyClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TavilyClient{
		apiKey:     apiKey,
		baseURL:    defaultTavilyBaseURL,
		httpClient: httpClient,
	}
}

// Search runs a basic-depth search returning up to five results.
func (c *TavilyClient) Search(ctx context.Context, query string) ([]SearchHit, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("tavily: %w", ErrNotConfigured)
	}

	body, err := json.Marshal(map[string]any{
		"api_key":        c.apiKey,
		"query":          query,
		"search_depth":   "basic",
		"include_images": true,
		"max_results":    5,
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Results []SearchHit `json:"results"`
	}

	err = retry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			payload, _ := io.ReadAll(resp.Body)
			err := fmt.Errorf("tavily: status %d: %s", resp.StatusCode, payload)
			if retryableStatus(resp.StatusCode) {
				return err
			}
			return backoff.Permanent(err)
		}

		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return backoff.Permanent(fmt.Errorf("tavily: decode response: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return parsed.Results, nil
}
