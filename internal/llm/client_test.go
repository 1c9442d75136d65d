package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cardgenius/internal/core"
	applog "cardgenius/internal/log"
	"cardgenius/internal/secrets"
)

func testLogger() *applog.Logger {
	return applog.New(applog.DefaultConfig())
}

func millennia() core.Card {
	return core.Card{
		Name:        "HDFC Millennia",
		BankName:    "HDFC Bank",
		Network:     "visa",
		JoiningFee:  1000,
		AnnualFee:   1000,
		Rating:      4.2,
		KeyFeatures: []string{"5% cashback on Amazon"},
	}
}

func TestChatSendsCardContext(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "The joining fee is ₹1,000."}}]}`))
	}))
	defer srv.Close()

	keys := secrets.New(nil, testLogger(), secrets.WithEnvOverride(SecretName, "sk-test"))
	client := NewClient(srv.URL, "gpt-4o-mini", keys, testLogger())

	reply, err := client.Chat(context.Background(), "What is the joining fee?", []core.Card{millennia()})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply != "The joining fee is ₹1,000." {
		t.Errorf("reply = %q", reply)
	}

	if len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Fatalf("messages = %+v", got.Messages)
	}
	if !strings.Contains(got.Messages[0].Content, "HDFC Millennia") {
		t.Error("system prompt missing card facts")
	}
	if got.Messages[1].Content != "What is the joining fee?" {
		t.Errorf("user message = %q", got.Messages[1].Content)
	}
}

func TestChatWithoutKeyServesOfflineReply(t *testing.T) {
	keys := secrets.New(nil, testLogger())
	client := NewClient("http://unused", "gpt-4o-mini", keys, testLogger())

	reply, err := client.Chat(context.Background(), "anything", []core.Card{millennia()})
	if err != nil {
		t.Fatalf("Chat must not fail without a key: %v", err)
	}
	if !strings.Contains(reply, "offline") || !strings.Contains(reply, "HDFC Millennia") {
		t.Errorf("offline reply should carry card facts: %q", reply)
	}
}

func TestComposePostOffline(t *testing.T) {
	keys := secrets.New(nil, testLogger())
	client := NewClient("http://unused", "gpt-4o-mini", keys, testLogger())

	body, err := client.ComposePost(context.Background(), millennia(), core.PlatformTwitter)
	if err != nil {
		t.Fatalf("ComposePost: %v", err)
	}
	if !strings.Contains(body, "HDFC Millennia") {
		t.Errorf("post body = %q", body)
	}
}

func TestChatProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	keys := secrets.New(nil, testLogger(), secrets.WithEnvOverride(SecretName, "sk-test"))
	client := NewClient(srv.URL, "gpt-4o-mini", keys, testLogger())

	if _, err := client.Chat(context.Background(), "q", nil); err == nil {
		t.Error("expected error on 429 with a key configured")
	}
}

func TestSystemPromptWithoutCards(t *testing.T) {
	p := SystemPrompt()
	if strings.Contains(p, "# Card facts") {
		t.Error("empty card list should not add a facts section")
	}
}
