package http

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"cardgenius/internal/catalog"
	"cardgenius/internal/core"
	"cardgenius/internal/genius"
	"cardgenius/internal/report"
	"cardgenius/internal/savings"
)

type cardJSON struct {
	ID          int64    `json:"id"`
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	BankName    string   `json:"bank_name"`
	Network     string   `json:"card_network"`
	JoiningFee  float64  `json:"joining_fee"`
	AnnualFee   float64  `json:"annual_fee"`
	Rating      float64  `json:"rating"`
	KeyFeatures []string `json:"key_features,omitempty"`
	Benefits    []string `json:"benefits,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

func toCardJSON(c core.Card) cardJSON {
	return cardJSON{
		ID:          c.ID,
		Slug:        c.Slug,
		Name:        c.Name,
		BankName:    c.BankName,
		Network:     c.Network,
		JoiningFee:  c.JoiningFee,
		AnnualFee:   c.AnnualFee,
		Rating:      c.Rating,
		KeyFeatures: c.KeyFeatures,
		Benefits:    c.Benefits,
		Tags:        c.Tags,
	}
}

type postJSON struct {
	ID          int64      `json:"id"`
	CardSlug    string     `json:"card_slug"`
	Platform    string     `json:"platform"`
	Body        string     `json:"body"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	Status      string     `json:"status"`
	Retries     int        `json:"retries"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toPostJSON(p core.Post) postJSON {
	out := postJSON{
		ID:          p.ID,
		CardSlug:    p.CardSlug,
		Platform:    string(p.Platform),
		Body:        p.Body,
		ScheduledAt: p.ScheduledAt,
		Status:      string(p.Status),
		Retries:     p.Retries,
		CreatedAt:   p.CreatedAt,
	}
	if !p.PublishedAt.IsZero() {
		at := p.PublishedAt
		out.PublishedAt = &at
	}
	return out
}

func (s *Server) handleSearchCards(w http.ResponseWriter, r *http.Request) {
	var req catalog.SearchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cards, err := s.cards.Search(r.Context(), req)
	if err != nil {
		slog.ErrorContext(r.Context(), "Card search failed", "error", err)
		writeError(w, http.StatusBadGateway, "card catalog unavailable")
		return
	}

	out := make([]cardJSON, len(cards))
	for i, c := range cards {
		out[i] = toCardJSON(c)
	}
	writeJSON(w, http.StatusOK, map[string]any{"cards": out})
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if strings.TrimSpace(slug) == "" {
		writeError(w, http.StatusBadRequest, "missing card slug")
		return
	}

	card, err := s.cards.Get(r.Context(), slug)
	if err != nil {
		if errors.Is(err, core.ErrCardNotFound) {
			writeError(w, http.StatusNotFound, "card not found")
			return
		}
		slog.ErrorContext(r.Context(), "Card fetch failed", "card_slug", slug, "error", err)
		writeError(w, http.StatusBadGateway, "card catalog unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"card": toCardJSON(card)})
}

type savingsReportRequest struct {
	CardSlug     string            `json:"card_slug"`
	CardID       int64             `json:"card_id,omitempty"`
	SpendProfile core.SpendProfile `json:"spend_profile"`
}

func (s *Server) handleSavingsReport(w http.ResponseWriter, r *http.Request) {
	var req savingsReportRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.CardSlug) == "" {
		writeError(w, http.StatusUnprocessableEntity, "card_slug is required")
		return
	}
	if len(req.SpendProfile) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "spend_profile is required")
		return
	}

	key := reportKey(req)
	if rep, ok := s.reportCache.Get(key); ok {
		slog.DebugContext(r.Context(), "Report cache hit", "card_slug", req.CardSlug)
		writeJSON(w, http.StatusOK, map[string]any{"report": rep})
		return
	}

	var (
		card  core.Card
		score genius.Response
	)

	if req.CardID != 0 {
		// Card ID in hand, the two upstream calls are independent.
		g, gctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			var err error
			card, err = s.cards.Get(gctx, req.CardSlug)
			return err
		})
		g.Go(func() error {
			var err error
			score, err = s.scorer.Score(gctx, req.SpendProfile, req.CardID)
			return err
		})
		if err := g.Wait(); err != nil {
			s.savingsReportError(w, r, req.CardSlug, err)
			return
		}
	} else {
		var err error
		card, err = s.cards.Get(r.Context(), req.CardSlug)
		if err != nil {
			s.savingsReportError(w, r, req.CardSlug, err)
			return
		}
		score, err = s.scorer.Score(r.Context(), req.SpendProfile, card.ID)
		if err != nil {
			s.savingsReportError(w, r, req.CardSlug, err)
			return
		}
	}

	summary := savings.Summarize(score.SummarySource())
	records := savings.Aggregate(req.SpendProfile, score.BreakdownEntries(), summary.TotalYearly.Value)
	rep := report.Build(card, records, summary)

	s.reportCache.Set(key, rep)
	writeJSON(w, http.StatusOK, map[string]any{"report": rep})
}

func (s *Server) savingsReportError(w http.ResponseWriter, r *http.Request, slug string, err error) {
	if errors.Is(err, core.ErrCardNotFound) {
		writeError(w, http.StatusNotFound, "card not found")
		return
	}
	slog.ErrorContext(r.Context(), "Savings report failed", "card_slug", slug, "error", err)
	writeError(w, http.StatusBadGateway, "upstream card data unavailable")
}

// reportKey builds the cache key from the canonical request encoding.
func reportKey(req savingsReportRequest) string {
	body, err := json.Marshal(req)
	if err != nil {
		return req.CardSlug
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

type chatRequest struct {
	Question  string   `json:"question"`
	CardSlugs []string `json:"card_slugs,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusUnprocessableEntity, "question is required")
		return
	}

	// Cards that fail to load just drop out of the prompt context.
	var cards []core.Card
	for _, slug := range req.CardSlugs {
		card, err := s.cards.Get(r.Context(), slug)
		if err != nil {
			slog.WarnContext(r.Context(), "Skipping card for chat context",
				"card_slug", slug, "error", err)
			continue
		}
		cards = append(cards, card)
	}

	answer, err := s.assistant.Chat(r.Context(), req.Question, cards)
	if err != nil {
		slog.ErrorContext(r.Context(), "Chat completion failed", "error", err)
		writeError(w, http.StatusBadGateway, "assistant unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"answer": answer})
}

type createPostRequest struct {
	CardSlug    string    `json:"card_slug"`
	Platform    string    `json:"platform"`
	Body        string    `json:"body,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		// No copy supplied, draft it from the card facts.
		card, err := s.cards.Get(r.Context(), req.CardSlug)
		if err != nil {
			if errors.Is(err, core.ErrCardNotFound) {
				writeError(w, http.StatusNotFound, "card not found")
				return
			}
			slog.ErrorContext(r.Context(), "Card fetch for post compose failed",
				"card_slug", req.CardSlug, "error", err)
			writeError(w, http.StatusBadGateway, "card catalog unavailable")
			return
		}
		body, err = s.assistant.ComposePost(r.Context(), card, core.Platform(req.Platform))
		if err != nil {
			slog.ErrorContext(r.Context(), "Post compose failed",
				"card_slug", req.CardSlug, "error", err)
			writeError(w, http.StatusBadGateway, "assistant unavailable")
			return
		}
	}

	post := core.Post{
		CardSlug:    strings.TrimSpace(req.CardSlug),
		Platform:    core.Platform(req.Platform),
		Body:        body,
		ScheduledAt: req.ScheduledAt,
		Status:      core.PostPending,
		CreatedAt:   time.Now(),
	}
	if err := post.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.posts.CreatePost(r.Context(), post)
	if err != nil {
		slog.ErrorContext(r.Context(), "Post create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to schedule post")
		return
	}
	post.ID = id

	slog.InfoContext(r.Context(), "Post scheduled",
		"post_id", id, "card_slug", post.CardSlug,
		"platform", post.Platform, "scheduled_at", post.ScheduledAt)
	writeJSON(w, http.StatusCreated, map[string]any{"post": toPostJSON(post)})
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	var status core.PostStatus
	if v := strings.TrimSpace(r.URL.Query().Get("status")); v != "" {
		status = core.PostStatus(v)
		switch status {
		case core.PostPending, core.PostPublishing, core.PostPublished, core.PostFailed:
		default:
			writeError(w, http.StatusBadRequest, "unknown status "+strconv.Quote(v))
			return
		}
	}

	posts, err := s.posts.ListPosts(r.Context(), status)
	if err != nil {
		slog.ErrorContext(r.Context(), "Post list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}

	out := make([]postJSON, len(posts))
	for i, p := range posts {
		out[i] = toPostJSON(p)
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": out})
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}

	post, err := s.posts.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		slog.ErrorContext(r.Context(), "Post fetch failed", "post_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load post")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"post": toPostJSON(post)})
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}

	if err := s.posts.DeletePost(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		slog.ErrorContext(r.Context(), "Post delete failed", "post_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete post")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func postID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return 0, false
	}
	return id, true
}
