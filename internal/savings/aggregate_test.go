package savings

import (
	"reflect"
	"testing"

	"cardgenius/internal/core"
)

func sampleBreakdown() []core.BreakdownEntry {
	return []core.BreakdownEntry{
		{CategoryKey: "amazon_spends", Spend: 5000, Savings: 250, CashbackPercent: 5},
		{CategoryKey: "flipkart_spends", Spend: 3000, Savings: 150, CashbackPercent: 5},
		{CategoryKey: "fuel", Spend: 2000, Savings: 400, CashbackPercent: 1},
	}
}

func TestAggregateDropsCategoriesWithoutUserSpend(t *testing.T) {
	profile := core.SpendProfile{"amazon_spends": 5000, "flipkart_spends": 3000}

	records := Aggregate(profile, sampleBreakdown(), 800)

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Definition.Key != "amazon_spends" || records[1].Definition.Key != "flipkart_spends" {
		t.Errorf("unexpected order: %q, %q", records[0].Definition.Key, records[1].Definition.Key)
	}
	if records[0].PercentOfTotal != 31.3 {
		t.Errorf("amazon percent = %v, want 31.3", records[0].PercentOfTotal)
	}
	if records[1].PercentOfTotal != 18.8 {
		t.Errorf("flipkart percent = %v, want 18.8", records[1].PercentOfTotal)
	}
	for _, r := range records {
		if r.UserAmount <= 0 {
			t.Errorf("record %q surfaced with user amount %v", r.Definition.Key, r.UserAmount)
		}
	}
}

func TestAggregateZeroTotalYieldsZeroPercentages(t *testing.T) {
	profile := core.SpendProfile{"amazon_spends": 5000, "flipkart_spends": 3000, "fuel": 2000}

	for _, r := range Aggregate(profile, sampleBreakdown(), 0) {
		if r.PercentOfTotal != 0 {
			t.Errorf("%q percent = %v, want 0 when total is 0", r.Definition.Key, r.PercentOfTotal)
		}
	}
}

func TestAggregatePercentagesSumWithinBound(t *testing.T) {
	profile := core.SpendProfile{"amazon_spends": 5000, "flipkart_spends": 3000, "fuel": 2000}

	var sum float64
	for _, r := range Aggregate(profile, sampleBreakdown(), 800) {
		sum += r.PercentOfTotal
	}
	if sum > 100.2 {
		t.Errorf("percentages sum to %v, exceeds 100 beyond rounding", sum)
	}
}

func TestAggregateClampsNegativeInput(t *testing.T) {
	profile := core.SpendProfile{"amazon_spends": -100, "fuel": 2000}

	records := Aggregate(profile, sampleBreakdown(), 800)

	if len(records) != 1 || records[0].Definition.Key != "fuel" {
		t.Fatalf("negative input should drop amazon, got %+v", records)
	}
}

func TestAggregateEmptyBreakdown(t *testing.T) {
	if records := Aggregate(core.SpendProfile{"fuel": 100}, nil, 500); len(records) != 0 {
		t.Errorf("empty breakdown should yield no records, got %d", len(records))
	}
}

func TestAggregateIsPure(t *testing.T) {
	profile := core.SpendProfile{"amazon_spends": 5000, "flipkart_spends": 3000}
	breakdown := sampleBreakdown()

	first := Aggregate(profile, breakdown, 800)
	second := Aggregate(profile, breakdown, 800)

	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different outputs")
	}
}

func TestAggregateUnknownCategoryFallsBack(t *testing.T) {
	profile := core.SpendProfile{"mystery_spends": 1000}
	breakdown := []core.BreakdownEntry{{CategoryKey: "mystery_spends", Savings: 50}}

	records := Aggregate(profile, breakdown, 100)

	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Definition.DisplayName != "mystery_spends" {
		t.Errorf("fallback display name = %q, want raw key", records[0].Definition.DisplayName)
	}
}

func TestAggregatePassesExplanationThrough(t *testing.T) {
	profile := core.SpendProfile{"fuel": 2000}
	breakdown := []core.BreakdownEntry{{
		CategoryKey: "fuel",
		Savings:     400,
		Explanation: []string{"<b>1%</b> fuel surcharge waiver", "capped at ₹500/month"},
	}}

	records := Aggregate(profile, breakdown, 800)

	if !reflect.DeepEqual(records[0].Explanation, breakdown[0].Explanation) {
		t.Errorf("explanation altered: %v", records[0].Explanation)
	}
}
