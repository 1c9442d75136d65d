package core

import (
	"errors"
	"strings"
	"time"
)

const (
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformInstagram Platform = "instagram"
)

// Post queue states.
const (
	PostPending    PostStatus = "pending"
	PostPublishing PostStatus = "publishing"
	PostPublished  PostStatus = "published"
	PostFailed     PostStatus = "failed"
)

type (
	Platform   string
	PostStatus string

	// CategoryDefinition is the static display metadata for one spending
	// category key.
	CategoryDefinition struct {
		Key         string
		DisplayName string
		Icon        string
		Description string
		Group       string
	}

	// SpendProfile maps category keys to the amounts a user entered.
	// Amounts are monthly unless the key carries an _annual or _quarterly
	// suffix.
	SpendProfile map[string]float64

	// BreakdownEntry is one category's savings detail as reported by the
	// recommendation API.
	BreakdownEntry struct {
		CategoryKey     string
		Spend           float64
		Savings         float64
		CashbackPercent float64
		CapPerCycle     float64
		CapTotal        float64
		Explanation     []string
	}

	// CategoryRecord is a BreakdownEntry joined with registry metadata,
	// restricted to categories the user actually spends in.
	CategoryRecord struct {
		Definition      CategoryDefinition
		UserAmount      float64
		Savings         float64
		PercentOfTotal  float64
		CashbackPercent float64
		CapPerCycle     float64
		CapTotal        float64
		Explanation     []string
	}

	// Figure is a derived number plus whether it was actually found
	// upstream. Zero-and-found and zero-and-missing render differently.
	Figure struct {
		Value float64
		Found bool
	}

	SavingsSummary struct {
		TotalYearly Figure
		JoiningFee  Figure
		Net         Figure
	}

	// Card is the catalog's view of a credit card.
	Card struct {
		ID          int64
		Slug        string
		Name        string
		BankName    string
		Network     string
		JoiningFee  float64
		AnnualFee   float64
		Rating      float64
		KeyFeatures []string
		Benefits    []string
		Tags        []string
	}

	// Post is one scheduled social post about a card.
	Post struct {
		ID          int64
		CardSlug    string
		Platform    Platform
		Body        string
		ScheduledAt time.Time
		Status      PostStatus
		Retries     int
		PublishedAt time.Time
		CreatedAt   time.Time
	}
)

var (
	ErrEmptyBody       = errors.New("empty post body")
	ErrEmptyCardSlug   = errors.New("empty card slug")
	ErrInvalidPlatform = errors.New("invalid platform")
	ErrInvalidSchedule = errors.New("schedule time cannot be zero")
	ErrSecretNotFound  = errors.New("secret not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrCardNotFound    = errors.New("card not found")
)

// Annual reports whether amounts for this category key are entered per year.
func Annual(key string) bool {
	return strings.HasSuffix(key, "_annual")
}

// Quarterly reports whether amounts for this category key are entered per
// quarter.
func Quarterly(key string) bool {
	return strings.HasSuffix(key, "_quarterly")
}

// Amount returns the entered amount for key, with negative values clamped
// to zero. Missing keys read as zero.
func (p SpendProfile) Amount(key string) float64 {
	v := p[key]
	if v < 0 {
		return 0
	}
	return v
}

func (pl Platform) Valid() bool {
	switch pl {
	case PlatformTwitter, PlatformLinkedIn, PlatformInstagram:
		return true
	}
	return false
}

func (po Post) Validate() error {
	if strings.TrimSpace(po.CardSlug) == "" {
		return ErrEmptyCardSlug
	}
	if !po.Platform.Valid() {
		return ErrInvalidPlatform
	}
	if len(strings.TrimSpace(po.Body)) == 0 {
		return ErrEmptyBody
	}
	if len(po.Body) > 2000 {
		return errors.New("post body too long (max 2000 characters)")
	}
	if po.ScheduledAt.IsZero() {
		return ErrInvalidSchedule
	}
	return nil
}
