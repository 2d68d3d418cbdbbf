package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
)

func testRates() Rates {
	return Rates{
		OvertimeCode:       "HE50",
		AbsenceCode:        "FALTAS",
		OvertimeMultiplier: decimal.RequireFromString("1.5"),
		AbsenceMultiplier:  decimal.NewFromInt(1),
		MonthlyHours:       decimal.NewFromInt(220),
	}
}

func TestPlanItem(t *testing.T) {
	base := decimal.NewFromInt(2200)
	cases := []struct {
		name       string
		balance    int
		code       string
		kind       string
		value      string
		qty        string
		removeCode string
	}{
		{"overtime", 120, "HE50", KindEarning, "30", "2", "FALTAS"},
		{"absence", -90, "FALTAS", KindDeduction, "15", "1.5", "HE50"},
		{"odd minutes round to cents", 7, "HE50", KindEarning, "1.75", "0.12", "FALTAS"},
	}
	for _, tc := range cases {
		item, remove := PlanItem(tc.balance, base, testRates())
		if item == nil {
			t.Fatalf("%s: expected item", tc.name)
		}
		if item.EventCode != tc.code || item.Kind != tc.kind || remove != tc.removeCode {
			t.Fatalf("%s: unexpected item %+v remove %q", tc.name, item, remove)
		}
		if !item.Value.Equal(decimal.RequireFromString(tc.value)) {
			t.Fatalf("%s: expected value %s, got %s", tc.name, tc.value, item.Value)
		}
		if !item.ReferenceQty.Equal(decimal.RequireFromString(tc.qty)) {
			t.Fatalf("%s: expected qty %s, got %s", tc.name, tc.qty, item.ReferenceQty)
		}
	}

	if item, remove := PlanItem(0, base, testRates()); item != nil || remove != "" {
		t.Fatalf("expected no item for zero balance, got %+v %q", item, remove)
	}
}

func TestComputeTotals(t *testing.T) {
	items := []LineItem{
		{Kind: KindEarning, Value: decimal.RequireFromString("200.10")},
		{Kind: KindEarning, Value: decimal.RequireFromString("50")},
		{Kind: KindDeduction, Value: decimal.RequireFromString("100.05")},
		{Kind: "bonus", Value: decimal.RequireFromString("999")},
	}
	totals := ComputeTotals(items)
	if !totals.Earnings.Equal(decimal.RequireFromString("250.10")) {
		t.Fatalf("unexpected earnings %s", totals.Earnings)
	}
	if !totals.Deductions.Equal(decimal.RequireFromString("100.05")) {
		t.Fatalf("unexpected deductions %s", totals.Deductions)
	}
	if !totals.Net.Equal(decimal.RequireFromString("150.05")) {
		t.Fatalf("unexpected net %s", totals.Net)
	}
}
