// Package secrets talks to the remote secrets store and fronts it with a
// small TTL cache so handlers can resolve API keys without a network
// round-trip on every request.
package secrets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"cardgenius/internal/core"
)

// Store is the secrets-store surface the cache depends on.
type Store interface {
	Get(ctx context.Context, name string) (string, error)
	Put(ctx context.Context, name, value, description string) error
	Delete(ctx context.Context, name string) error
}

// HTTPStore is the bearer-authenticated client for the remote secrets
// store.
type HTTPStore struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPStore(baseURL, token string) *HTTPStore {
	return &HTTPStore{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type secretPayload struct {
	KeyName     string `json:"key_name"`
	KeyValue    string `json:"key_value"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// Get fetches a secret by name. Missing or soft-deleted secrets map to
// core.ErrSecretNotFound.
func (s *HTTPStore) Get(ctx context.Context, name string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?key_name="+url.QueryEscape(name), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("get secret %q: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", core.ErrSecretNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("get secret %q: unexpected status %d", name, resp.StatusCode)
	}

	var payload secretPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode secret %q: %w", name, err)
	}
	if !payload.IsActive || payload.KeyValue == "" {
		return "", core.ErrSecretNotFound
	}
	return payload.KeyValue, nil
}

// Put upserts a secret value.
func (s *HTTPStore) Put(ctx context.Context, name, value, description string) error {
	body, err := json.Marshal(secretPayload{KeyName: name, KeyValue: value, Description: description, IsActive: true})
	if err != nil {
		return fmt.Errorf("marshal secret %q: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("put secret %q: %w", name, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("put secret %q: unexpected status %d", name, resp.StatusCode)
	}
	return nil
}

// Delete soft-deletes a secret; the store flips is_active rather than
// removing the row.
func (s *HTTPStore) Delete(ctx context.Context, name string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.baseURL+"?key_name="+url.QueryEscape(name), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("delete secret %q: %w", name, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return core.ErrSecretNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("delete secret %q: unexpected status %d", name, resp.StatusCode)
	}
	return nil
}

func (s *HTTPStore) authorize(req *http.Request) {
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
}
