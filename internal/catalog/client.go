// Package catalog is the HTTP client for the card-catalog API.
package catalog

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cardgenius/internal/cache"
	"cardgenius/internal/core"
	applog "cardgenius/internal/log"
)

// SearchRequest is the catalog's documented request body. Field names
// (including the misspelled eligiblityPayload) are the upstream wire
// contract.
type SearchRequest struct {
	Slug              string         `json:"slug"`
	BankIDs           []int64        `json:"banks_ids"`
	CardNetworks      []string       `json:"card_networks"`
	AnnualFees        string         `json:"annualFees"`
	CreditScore       string         `json:"credit_score"`
	SortBy            string         `json:"sort_by"`
	FreeCards         bool           `json:"free_cards"`
	EligibilityParams map[string]any `json:"eligiblityPayload"`
	CardGeniusParams  map[string]any `json:"cardGeniusPayload"`
}

type wireCard struct {
	ID          int64    `json:"id"`
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	BankName    string   `json:"bank_name"`
	CardNetwork string   `json:"card_network"`
	JoiningFee  float64  `json:"joining_fee"`
	AnnualFee   float64  `json:"annual_fee"`
	Rating      float64  `json:"rating"`
	KeyFeatures []string `json:"key_features"`
	Benefits    []string `json:"benefits"`
	Tags        []string `json:"tags"`
}

type Client struct {
	baseURL string
	client  *http.Client
	logger  *applog.Logger
	results *cache.LRUCache[[]core.Card]
}

func NewClient(baseURL string, logger *applog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger.WithComponent(applog.ComponentCatalog),
		results: cache.NewLRU[[]core.Card](100, 5*time.Minute),
	}
}

// Search posts the filter payload to /cards and returns the matching
// cards. Identical requests within the cache TTL are served from memory.
//
// The API returns the card list in one of three shapes depending on
// version: a bare array, {"cards": [...]}, or {"data": {"cards": [...]}}.
// All three are tolerated, tried in that order.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]core.Card, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	key := requestKey(body)
	if cards, ok := c.results.Get(key); ok {
		return cards, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cards", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search cards: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search cards: unexpected status %d", resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode card response: %w", err)
	}

	cards, err := decodeCards(raw)
	if err != nil {
		return nil, err
	}

	c.results.Set(key, cards)
	c.logger.DebugContext(ctx, "Card search completed",
		applog.FieldOperation, applog.OpSearch, "results", len(cards))
	return cards, nil
}

// Get fetches a single card by slug. The catalog has no dedicated detail
// endpoint; a slug-filtered search returns at most one card.
func (c *Client) Get(ctx context.Context, slug string) (core.Card, error) {
	cards, err := c.Search(ctx, SearchRequest{Slug: slug})
	if err != nil {
		return core.Card{}, err
	}
	for _, card := range cards {
		if card.Slug == slug {
			return card, nil
		}
	}
	if len(cards) > 0 {
		return cards[0], nil
	}
	return core.Card{}, fmt.Errorf("card %q: %w", slug, core.ErrCardNotFound)
}

func decodeCards(raw json.RawMessage) ([]core.Card, error) {
	var direct []wireCard
	if err := json.Unmarshal(raw, &direct); err == nil {
		return toCards(direct), nil
	}

	var nested struct {
		Cards []wireCard `json:"cards"`
		Data  struct {
			Cards []wireCard `json:"cards"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil, fmt.Errorf("unrecognized card response shape: %w", err)
	}
	if nested.Cards != nil {
		return toCards(nested.Cards), nil
	}
	return toCards(nested.Data.Cards), nil
}

func toCards(wire []wireCard) []core.Card {
	cards := make([]core.Card, len(wire))
	for i, w := range wire {
		cards[i] = core.Card{
			ID:          w.ID,
			Slug:        w.Slug,
			Name:        w.Name,
			BankName:    w.BankName,
			Network:     w.CardNetwork,
			JoiningFee:  w.JoiningFee,
			AnnualFee:   w.AnnualFee,
			Rating:      w.Rating,
			KeyFeatures: w.KeyFeatures,
			Benefits:    w.Benefits,
			Tags:        w.Tags,
		}
	}
	return cards
}

func requestKey(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
