// Package genius is the HTTP client for the card-recommendation scoring
// API.
package genius

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cardgenius/internal/core"
	applog "cardgenius/internal/log"
	"cardgenius/internal/savings"
)

type wireBreakdownEntry struct {
	On              string   `json:"on"`
	Spend           float64  `json:"spend"`
	Savings         float64  `json:"savings"`
	MaxCap          float64  `json:"maxCap"`
	TotalMaxCap     float64  `json:"totalMaxCap"`
	CashbackPercent float64  `json:"cashback_percentage"`
	Explanation     []string `json:"explanation"`
}

type wireUSP struct {
	Tag         string `json:"tag"`
	Header      string `json:"header"`
	Description string `json:"description"`
}

// Response is the scoring API's answer for one card. Every numeric
// top-line field is optional; the savings summarizer resolves whichever
// shape actually arrived.
type Response struct {
	Breakdown           []wireBreakdownEntry `json:"spending_breakdown_array"`
	ProductUSPs         []wireUSP            `json:"product_usps"`
	MaxPotentialSavings []wireUSP            `json:"max_potential_savings"`
	TotalSavingsYearly  *float64             `json:"total_savings_yearly"`
	JoiningFees         *float64             `json:"joining_fees"`
	NetSavings          *float64             `json:"net_savings"`
}

// BreakdownEntries maps the wire breakdown onto domain entries,
// preserving upstream order.
func (r Response) BreakdownEntries() []core.BreakdownEntry {
	entries := make([]core.BreakdownEntry, len(r.Breakdown))
	for i, w := range r.Breakdown {
		entries[i] = core.BreakdownEntry{
			CategoryKey:     w.On,
			Spend:           w.Spend,
			Savings:         w.Savings,
			CashbackPercent: w.CashbackPercent,
			CapPerCycle:     w.MaxCap,
			CapTotal:        w.TotalMaxCap,
			Explanation:     w.Explanation,
		}
	}
	return entries
}

// SummarySource adapts the response for the savings summarizer. Both
// free-text arrays feed the USP extractor; product USPs come first since
// they carry the tagged entries.
func (r Response) SummarySource() savings.Source {
	usps := make([]savings.USP, 0, len(r.ProductUSPs)+len(r.MaxPotentialSavings))
	for _, u := range r.ProductUSPs {
		usps = append(usps, savings.USP{Tag: u.Tag, Header: u.Header, Description: u.Description})
	}
	for _, u := range r.MaxPotentialSavings {
		usps = append(usps, savings.USP{Tag: u.Tag, Header: u.Header, Description: u.Description})
	}
	return savings.Source{
		TotalYearly: r.TotalSavingsYearly,
		JoiningFee:  r.JoiningFees,
		Net:         r.NetSavings,
		Breakdown:   r.BreakdownEntries(),
		USPs:        usps,
	}
}

type Client struct {
	baseURL string
	client  *http.Client
	logger  *applog.Logger
}

func NewClient(baseURL string, logger *applog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 20 * time.Second},
		logger:  logger.WithComponent(applog.ComponentGenius),
	}
}

// Score submits the user's spend profile for one card and returns the
// raw scoring response. The request body is the flat map of category
// keys the API expects, plus the selected card.
func (c *Client) Score(ctx context.Context, profile core.SpendProfile, cardID int64) (Response, error) {
	payload := make(map[string]any, len(profile)+1)
	for key := range profile {
		payload[key] = profile.Amount(key)
	}
	payload["selected_card_id"] = cardID

	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("marshal score request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/card-genius/score", bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("score card %d: %w", cardID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Response{}, fmt.Errorf("score card %d: unexpected status %d", cardID, resp.StatusCode)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Response{}, fmt.Errorf("decode score response: %w", err)
	}

	c.logger.DebugContext(ctx, "Card scored",
		applog.FieldCardID, cardID,
		applog.FieldOperation, applog.OpScore,
		"breakdown_entries", len(out.Breakdown))
	return out, nil
}
