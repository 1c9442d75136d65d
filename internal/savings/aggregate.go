// Package savings turns recommendation-API responses into the normalized
// records and top-line figures the UI renders.
package savings

import (
	"math"

	"cardgenius/internal/category"
	"cardgenius/internal/core"
)

// Aggregate joins a savings breakdown with the user's spend profile.
//
// Entries whose category the user entered no positive amount for are
// dropped: the report reflects what the user spends in, not the full
// catalog the recommendation engine happens to score. Upstream order is
// preserved because it is the API's own relevance ordering. Explanation
// text is passed through untouched; it arrives pre-formatted.
func Aggregate(profile core.SpendProfile, breakdown []core.BreakdownEntry, totalYearly float64) []core.CategoryRecord {
	var records []core.CategoryRecord
	for _, entry := range breakdown {
		amount := profile.Amount(entry.CategoryKey)
		if amount <= 0 {
			continue
		}

		var pct float64
		if totalYearly > 0 {
			pct = round1(entry.Savings / totalYearly * 100)
		}

		records = append(records, core.CategoryRecord{
			Definition:      category.Lookup(entry.CategoryKey),
			UserAmount:      amount,
			Savings:         entry.Savings,
			PercentOfTotal:  pct,
			CashbackPercent: entry.CashbackPercent,
			CapPerCycle:     entry.CapPerCycle,
			CapTotal:        entry.CapTotal,
			Explanation:     entry.Explanation,
		})
	}
	return records
}

// round1 rounds to one decimal place, half away from zero.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
