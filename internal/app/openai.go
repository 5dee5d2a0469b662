package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint. It
// owns the run's telemetry counters: every completed remote exchange is
// counted and priced, even when the reply is rejected downstream.
type OpenAIClient struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	Pricing   Pricing
	HTTP      *http.Client

	counter *tokenCounter

	mu    sync.Mutex
	calls int
	cost  float64
}

type chatRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens,omitempty"`
	Messages  []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func NewOpenAIClient(apiKey, model, baseURL string, maxTokens int, pricing Pricing) *OpenAIClient {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1/chat/completions"
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &OpenAIClient{
		APIKey:    apiKey,
		Model:     model,
		BaseURL:   baseURL,
		MaxTokens: maxTokens,
		Pricing:   pricing,
		HTTP:      &http.Client{Timeout: 120 * time.Second},
		counter:   newTokenCounter(model),
	}
}

var _ Model = (*OpenAIClient)(nil)

func (c *OpenAIClient) Query(ctx context.Context, conversation []Message) (string, error) {
	if err := validateConversation(conversation); err != nil {
		return "", err
	}
	if c.APIKey == "" {
		return "", &ModelError{Message: "api key is required"}
	}

	reqBody := chatRequest{
		Model:     c.Model,
		MaxTokens: c.MaxTokens,
		Messages:  toWireMessages(conversation),
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &ModelError{Message: "failed to encode request", Err: err}
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return "", &ModelError{Message: "failed to build request", Err: err}
	}
	request.Header.Set("Authorization", "Bearer "+c.APIKey)
	request.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(request)
	if err != nil {
		return "", &ModelError{Message: "api request failed", Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ModelError{Message: "failed to read response", Err: err}
	}

	if resp.StatusCode >= 300 {
		var errResp chatResponse
		_ = json.Unmarshal(bodyBytes, &errResp)
		if errResp.Error != nil && errResp.Error.Message != "" {
			return "", &ModelError{Message: fmt.Sprintf("api error: status %d: %s", resp.StatusCode, errResp.Error.Message)}
		}
		return "", &ModelError{Message: fmt.Sprintf("api error: status %d: %s", resp.StatusCode, excerpt(bodyBytes))}
	}

	var parsed chatResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return "", &ModelError{Message: "malformed response", Err: err}
	}

	// A 2xx body is a completed remote exchange: charge for it before any
	// further validation can reject it.
	promptTokens := parsed.Usage.PromptTokens
	completionTokens := parsed.Usage.CompletionTokens
	content := ""
	if len(parsed.Choices) > 0 {
		content = parsed.Choices[0].Message.Content
	}
	if promptTokens == 0 && completionTokens == 0 {
		for _, m := range reqBody.Messages {
			promptTokens += c.counter.Count(m.Content)
		}
		completionTokens = c.counter.Count(content)
	}
	c.charge(c.Pricing.Cost(promptTokens, completionTokens))

	if parsed.Error != nil {
		return "", &ModelError{Message: "api error: " + parsed.Error.Message}
	}
	if content == "" {
		return "", &ModelError{Message: "response contained no content"}
	}
	return content, nil
}

func (c *OpenAIClient) Telemetry() Telemetry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Telemetry{
		CallsMade:       c.calls,
		AccumulatedCost: c.cost,
		ModelIdentifier: c.Model,
	}
}

func (c *OpenAIClient) charge(cost float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if cost > 0 {
		c.cost += cost
	}
}

// toWireMessages maps conversation roles onto the provider's three-role
// scheme. Observations travel as user messages, matching how the system
// prompt tells the model to expect command output.
func toWireMessages(conversation []Message) []chatMessage {
	wire := make([]chatMessage, 0, len(conversation))
	for _, m := range conversation {
		role := string(m.Role)
		if m.Role == RoleObservation {
			role = "user"
		}
		wire = append(wire, chatMessage{Role: role, Content: m.Content})
	}
	return wire
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
