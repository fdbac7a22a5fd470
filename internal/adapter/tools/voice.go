package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
)

const defaultVapiBaseURL = "https://api.vapi.ai"

// CallResult is the outcome of an outbound AI voice call.
type CallResult struct {
	CallID       string
	Status       string
	PhoneNumber  string
	BusinessName string
	Purpose      string
	DemoMode     bool
}

// VapiClient places outbound AI voice calls. Without a secret key it runs
// in demo mode, returning a simulated call instead of failing.
type VapiClient struct {
	secretKey   string
	assistantID string
	baseURL     string
	httpClient  *http.Client
	idGen       func() string
	logger      zerolog.Logger
}

// NewVapiClient creates a voice call client.
func NewVapiClient(secretKey, assistantID string, httpClient *http.Client, idGen func() string, logger zerolog.Logger) *VapiClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &VapiClient{
		secretKey:   secretKey,
		assistantID: assistantID,
		baseURL:     defaultVapiBaseURL,
		httpClient:  httpClient,
		idGen:       idGen,
		logger:      logger,
	}
}

// Call dials phoneNumber with the configured voice assistant.
func (c *VapiClient) Call(ctx context.Context, phoneNumber, purpose, businessName string) (*CallResult, error) {
	if businessName == "" {
		businessName = "Unknown business"
	}

	if c.secretKey == "" {
		c.logger.Info().Str("phone", phoneNumber).Msg("voice provider not configured, simulating call")
		return &CallResult{
			CallID:       "DEMO-" + c.idGen(),
			Status:       "simulated",
			PhoneNumber:  phoneNumber,
			BusinessName: businessName,
			Purpose:      purpose,
			DemoMode:     true,
		}, nil
	}

	body, err := json.Marshal(map[string]any{
		"phoneNumber": phoneNumber,
		"assistantId": c.assistantID,
		"metadata": map[string]any{
			"businessName": businessName,
			"purpose":      purpose,
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/call", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vapi: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("vapi: status %d: %s", resp.StatusCode, payload)
	}

	var parsed struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("vapi: decode response: %w", err)
	}

	return &CallResult{
		CallID:       parsed.ID,
		Status:       parsed.Status,
		PhoneNumber:  phoneNumber,
		BusinessName: businessName,
		Purpose:      purpose,
	}, nil
}
