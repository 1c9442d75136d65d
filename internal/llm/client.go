// Package llm calls the chat-completion provider, with a deterministic
// offline mode when no API key resolves.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cardgenius/internal/core"
	applog "cardgenius/internal/log"
	"cardgenius/internal/secrets"
)

// SecretName is the secrets-store key holding the provider API key.
const SecretName = "openai_api_key"

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

type Client struct {
	baseURL string
	model   string
	keys    *secrets.Cache
	client  *http.Client
	logger  *applog.Logger
}

func NewClient(baseURL, model string, keys *secrets.Cache, logger *applog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		model:   model,
		keys:    keys,
		client:  &http.Client{Timeout: 60 * time.Second},
		logger:  logger.WithComponent(applog.ComponentLLM),
	}
}

// Chat answers a user question grounded on the given cards. When no API
// key resolves, the reply comes from the offline fallback instead of an
// error: a missing key degrades the feature, it must not break the page.
func (c *Client) Chat(ctx context.Context, question string, cards []core.Card) (string, error) {
	key := c.keys.Get(ctx, SecretName)
	if key == "" {
		c.logger.WarnContext(ctx, "No LLM API key available, serving offline reply")
		return offlineReply(question, cards), nil
	}
	return c.complete(ctx, key, SystemPrompt(cards...), question)
}

// ComposePost asks the model for one platform-ready post about a card.
func (c *Client) ComposePost(ctx context.Context, card core.Card, platform core.Platform) (string, error) {
	key := c.keys.Get(ctx, SecretName)
	if key == "" {
		return offlinePost(card, platform), nil
	}
	return c.complete(ctx, key, SystemPrompt(card), composeInstruction(card, platform))
}

func (c *Client) complete(ctx context.Context, key, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.7,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("chat completion: unexpected status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty choices")
	}
	return out.Choices[0].Message.Content, nil
}

// offlineReply is the reduced-functionality answer used when no key is
// configured. It echoes the card facts so the widget still shows
// something useful.
func offlineReply(question string, cards []core.Card) string {
	if len(cards) == 0 {
		return "The AI assistant is offline right now. Browse the card catalog for details."
	}
	return "The AI assistant is offline right now. Here are the facts for the cards you asked about:\n\n" + CardContext(cards...)
}

func offlinePost(card core.Card, _ core.Platform) string {
	return fmt.Sprintf("%s by %s: joining fee ₹%.0f. See full benefits on CardGenius.",
		card.Name, card.BankName, card.JoiningFee)
}
