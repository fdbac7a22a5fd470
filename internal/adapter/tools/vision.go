package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const menuVisionPrompt = `Extract every menu item with its price from this menu image.
Respond with a JSON array only, no prose: [{"name": "...", "price": 9.99}]`

// MenuItem is a single extracted menu line.
type MenuItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// MenuAnalysis is the outcome of running vision over a menu image.
type MenuAnalysis struct {
	Items     []MenuItem `json:"items"`
	ItemCount int        `json:"itemCount"`
	RawText   string     `json:"rawText,omitempty"`
}

// visionAPI is the slice of the OpenAI client the analyzer needs.
type visionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// MenuVisionClient extracts menu items and prices from an image URL using
// a vision model.
type MenuVisionClient struct {
	api   visionAPI
	model string
}

// NewMenuVisionClient creates a vision analyzer. An empty apiKey leaves
// the client unconfigured.
func NewMenuVisionClient(apiKey string) *MenuVisionClient {
	var api visionAPI
	if apiKey != "" {
		api = openai.NewClient(apiKey)
	}
	return &MenuVisionClient{
		api:   api,
		model: openai.GPT4oMini,
	}
}

// AnalyzeMenu runs the vision model over imageURL.
func (c *MenuVisionClient) AnalyzeMenu(ctx context.Context, imageURL string) (*MenuAnalysis, error) {
	if c.api == nil {
		return nil, fmt.Errorf("vision: %w", ErrNotConfigured)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: menuVisionPrompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: imageURL},
					},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vision: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("vision: empty completion")
	}

	content := resp.Choices[0].Message.Content
	analysis := &MenuAnalysis{}
	if err := json.Unmarshal([]byte(extractJSONArray(content)), &analysis.Items); err != nil {
		// Model answered in prose; keep the raw text rather than failing
		// the whole paid action.
		analysis.RawText = content
	}
	analysis.ItemCount = len(analysis.Items)

	return analysis, nil
}

// extractJSONArray trims markdown fences and surrounding prose so a
// mostly-JSON completion still parses.
func extractJSONArray(content string) string {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end == -1 || end < start {
		return content
	}
	return content[start : end+1]
}
