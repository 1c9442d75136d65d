package savings

import (
	"strconv"
	"strings"

	"cardgenius/internal/core"
)

// USP is one free-text selling-point entry from the recommendation API.
type USP struct {
	Tag         string
	Header      string
	Description string
}

// Source is the summarizer's view of a recommendation response. Direct
// numeric fields are pointers so that "absent" and "zero" stay distinct.
type Source struct {
	TotalYearly *float64
	JoiningFee  *float64
	Net         *float64
	Breakdown   []core.BreakdownEntry
	USPs        []USP
}

// extractor tries one way of deriving a figure; the first one that
// reports found wins.
type extractor func(Source) core.Figure

// Summarize derives the top-line savings figures from a recommendation
// response, tolerating the three shapes the API is known to send: direct
// numeric fields, a breakdown array to sum, and amounts embedded in USP
// free text. Missing data degrades to a not-found zero Figure, never an
// error.
func Summarize(src Source) core.SavingsSummary {
	total := resolve(src,
		directNonZero(func(s Source) *float64 { return s.TotalYearly }),
		breakdownSum,
		uspAmount("roi"),
		uspCurrencyFallback,
	)
	fee := resolve(src,
		directNonZero(func(s Source) *float64 { return s.JoiningFee }),
		uspAmount("joining_fees"),
	)

	var net core.Figure
	if src.Net != nil {
		net = core.Figure{Value: *src.Net, Found: true}
	} else if total.Found || fee.Found {
		net = core.Figure{Value: total.Value - fee.Value, Found: true}
	}

	return core.SavingsSummary{TotalYearly: total, JoiningFee: fee, Net: net}
}

func resolve(src Source, chain ...extractor) core.Figure {
	for _, ex := range chain {
		if fig := ex(src); fig.Found {
			return fig
		}
	}
	return core.Figure{}
}

func directNonZero(field func(Source) *float64) extractor {
	return func(s Source) core.Figure {
		if v := field(s); v != nil && *v != 0 {
			return core.Figure{Value: *v, Found: true}
		}
		return core.Figure{}
	}
}

func breakdownSum(s Source) core.Figure {
	if len(s.Breakdown) == 0 {
		return core.Figure{}
	}
	var sum float64
	for _, entry := range s.Breakdown {
		sum += entry.Savings
	}
	return core.Figure{Value: sum, Found: true}
}

// uspAmount extracts an amount from the USP entry carrying the given tag.
func uspAmount(tag string) extractor {
	return func(s Source) core.Figure {
		for _, u := range s.USPs {
			if u.Tag != tag {
				continue
			}
			if v, ok := ParseAmount(u.Description); ok {
				return core.Figure{Value: v, Found: true}
			}
			if v, ok := ParseAmount(u.Header); ok {
				return core.Figure{Value: v, Found: true}
			}
		}
		return core.Figure{}
	}
}

// uspCurrencyFallback takes the first USP whose text holds a recognizable
// currency amount. Untagged savings copy ("Annual savings worth ₹8,000")
// is the only place this shape shows up, so the fallback belongs to the
// total-savings chain alone; running it for the joining fee would read
// savings text as a fee.
func uspCurrencyFallback(s Source) core.Figure {
	for _, u := range s.USPs {
		if !strings.Contains(u.Description, "₹") {
			continue
		}
		if v, ok := ParseAmount(u.Description); ok {
			return core.Figure{Value: v, Found: true}
		}
	}
	return core.Figure{}
}

// ParseAmount pulls the first numeric run out of free text like
// "Net Annual Savings: ₹17,500". Thousands separators are dropped; a
// single decimal point is kept. Returns (0, false) when the text holds no
// digits.
func ParseAmount(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", "")

	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			start = i
			break
		}
	}
	if start < 0 {
		return 0, false
	}

	end := start
	sawDot := false
	for end < len(s) {
		c := s[end]
		switch {
		case c >= '0' && c <= '9':
			end++
		case c == '.' && !sawDot:
			sawDot = true
			end++
		default:
			goto done
		}
	}
done:
	token := strings.TrimSuffix(s[start:end], ".")
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
