package report

import (
	"testing"

	"cardgenius/internal/category"
	"cardgenius/internal/core"
)

func TestFormatINR(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "₹0"},
		{500, "₹500"},
		{17500, "₹17,500"},
		{123456, "₹1,23,456"},
		{12345678, "₹1,23,45,678"},
		{-2500, "-₹2,500"},
		{999.6, "₹1,000"},
	}

	for _, tt := range tests {
		if got := FormatINR(tt.in); got != tt.want {
			t.Errorf("FormatINR(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildSummaryLines(t *testing.T) {
	card := core.Card{Name: "HDFC Millennia", BankName: "HDFC Bank", JoiningFee: 1000, AnnualFee: 1000}
	summary := core.SavingsSummary{
		TotalYearly: core.Figure{Value: 17500, Found: true},
		JoiningFee:  core.Figure{Value: 1000, Found: true},
		Net:         core.Figure{Value: 16500, Found: true},
	}

	rep := Build(card, nil, summary)

	if rep.CardName != "HDFC Millennia" || rep.BankName != "HDFC Bank" {
		t.Errorf("header wrong: %+v", rep)
	}
	if got := rep.Summary[0].Amount; got != "₹17,500" {
		t.Errorf("total line = %q", got)
	}
	if got := rep.Summary[2].Amount; got != "₹16,500" {
		t.Errorf("net line = %q", got)
	}
}

func TestBuildNotFoundRendersNA(t *testing.T) {
	rep := Build(core.Card{}, nil, core.SavingsSummary{
		TotalYearly: core.Figure{Value: 0, Found: true},
	})

	if rep.Summary[0].Amount != "₹0" {
		t.Errorf("found zero should render ₹0, got %q", rep.Summary[0].Amount)
	}
	if rep.Summary[1].Amount != "N/A" || rep.Summary[1].Found {
		t.Errorf("missing joining fee should render N/A, got %+v", rep.Summary[1])
	}
}

func TestBuildRowsAndUnits(t *testing.T) {
	records := []core.CategoryRecord{
		{
			Definition:      category.Lookup("flights_annual"),
			UserAmount:      60000,
			Savings:         3000,
			PercentOfTotal:  17.1,
			CashbackPercent: 5,
			CapPerCycle:     1000,
			CapTotal:        12000,
		},
		{
			Definition: category.Lookup("fuel"),
			UserAmount: 2000,
			Savings:    400,
		},
	}

	rep := Build(core.Card{}, records, core.SavingsSummary{})

	if rep.Rows[0].MonthlySpend != "₹60,000/yr" {
		t.Errorf("annual unit wrong: %q", rep.Rows[0].MonthlySpend)
	}
	if rep.Rows[1].MonthlySpend != "₹2,000/mo" {
		t.Errorf("monthly unit wrong: %q", rep.Rows[1].MonthlySpend)
	}
	if rep.Rows[0].Caps != "₹1,000 per cycle, ₹12,000 total" {
		t.Errorf("caps = %q", rep.Rows[0].Caps)
	}
	if rep.Rows[1].Caps != "" {
		t.Errorf("capless row should leave Caps empty, got %q", rep.Rows[1].Caps)
	}
}

func TestPagination(t *testing.T) {
	records := make([]core.CategoryRecord, 19)
	for i := range records {
		records[i].Definition = category.Lookup("fuel")
		records[i].UserAmount = 100
	}

	rep := Build(core.Card{}, records, core.SavingsSummary{})

	if len(rep.Pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(rep.Pages))
	}
	if len(rep.Pages[0].Rows) != 8 || len(rep.Pages[2].Rows) != 3 {
		t.Errorf("page sizes = %d, %d, %d", len(rep.Pages[0].Rows), len(rep.Pages[1].Rows), len(rep.Pages[2].Rows))
	}
	if rep.Pages[2].Number != 3 {
		t.Errorf("page number = %d", rep.Pages[2].Number)
	}
}
