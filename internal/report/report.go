// Package report shapes aggregated savings data into the structures the
// UI renders on screen and exports as pages.
package report

import (
	"fmt"
	"strings"

	"cardgenius/internal/core"
)

// rowsPerPage bounds table rows on one export page.
const rowsPerPage = 8

type (
	// SummaryLine is one top-line figure, pre-formatted for display.
	SummaryLine struct {
		Label  string `json:"label"`
		Amount string `json:"amount"` // "N/A" when the figure was never found upstream
		Found  bool   `json:"found"`
	}

	// Row is one category line of the savings table.
	Row struct {
		Category        string   `json:"category"`
		Group           string   `json:"group"`
		Icon            string   `json:"icon"`
		MonthlySpend    string   `json:"monthly_spend"`
		Savings         string   `json:"savings"`
		PercentOfTotal  string   `json:"percent_of_total"`
		CashbackPercent string   `json:"cashback_percentage"`
		Caps            string   `json:"caps"`
		Explanation     []string `json:"explanation,omitempty"`
	}

	// Page is one exported page of the report.
	Page struct {
		Number int   `json:"number"`
		Rows   []Row `json:"rows"`
	}

	SavingsReport struct {
		CardName string        `json:"card_name"`
		BankName string        `json:"bank_name"`
		Fees     string        `json:"fees"`
		Summary  []SummaryLine `json:"summary"`
		Rows     []Row         `json:"rows"`
		Pages    []Page        `json:"pages"`
	}
)

// Build assembles the full report for one card.
func Build(card core.Card, records []core.CategoryRecord, summary core.SavingsSummary) SavingsReport {
	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = buildRow(rec)
	}

	return SavingsReport{
		CardName: card.Name,
		BankName: card.BankName,
		Fees:     fmt.Sprintf("Joining %s · Annual %s", FormatINR(card.JoiningFee), FormatINR(card.AnnualFee)),
		Summary: []SummaryLine{
			summaryLine("Total yearly savings", summary.TotalYearly),
			summaryLine("Joining fee", summary.JoiningFee),
			summaryLine("Net savings", summary.Net),
		},
		Rows:  rows,
		Pages: paginate(rows),
	}
}

func buildRow(rec core.CategoryRecord) Row {
	unit := "/mo"
	switch {
	case core.Annual(rec.Definition.Key):
		unit = "/yr"
	case core.Quarterly(rec.Definition.Key):
		unit = "/qtr"
	}

	var caps string
	if rec.CapPerCycle > 0 || rec.CapTotal > 0 {
		caps = fmt.Sprintf("%s per cycle, %s total", FormatINR(rec.CapPerCycle), FormatINR(rec.CapTotal))
	}

	return Row{
		Category:        rec.Definition.DisplayName,
		Group:           rec.Definition.Group,
		Icon:            rec.Definition.Icon,
		MonthlySpend:    FormatINR(rec.UserAmount) + unit,
		Savings:         FormatINR(rec.Savings),
		PercentOfTotal:  fmt.Sprintf("%.1f%%", rec.PercentOfTotal),
		CashbackPercent: fmt.Sprintf("%.1f%%", rec.CashbackPercent),
		Caps:            caps,
		Explanation:     rec.Explanation,
	}
}

func summaryLine(label string, fig core.Figure) SummaryLine {
	if !fig.Found {
		return SummaryLine{Label: label, Amount: "N/A"}
	}
	return SummaryLine{Label: label, Amount: FormatINR(fig.Value), Found: true}
}

func paginate(rows []Row) []Page {
	var pages []Page
	for start := 0; start < len(rows); start += rowsPerPage {
		end := start + rowsPerPage
		if end > len(rows) {
			end = len(rows)
		}
		pages = append(pages, Page{Number: len(pages) + 1, Rows: rows[start:end]})
	}
	return pages
}

// FormatINR renders an amount with Indian digit grouping, e.g.
// 123456 -> "₹1,23,456". Fractions round to the nearest rupee.
func FormatINR(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	whole := fmt.Sprintf("%.0f", v)

	var b strings.Builder
	if neg {
		b.WriteString("-")
	}
	b.WriteString("₹")

	n := len(whole)
	if n <= 3 {
		b.WriteString(whole)
		return b.String()
	}

	// Last three digits group together; the rest group in pairs.
	head := whole[:n-3]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	b.WriteString(strings.Join(groups, ","))
	b.WriteString(",")
	b.WriteString(whole[n-3:])
	return b.String()
}
