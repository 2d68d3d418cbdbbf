package payroll

import "github.com/shopspring/decimal"

var minutesPerHour = decimal.NewFromInt(60)

// PlanItem maps a period balance to the single line item it produces and
// the opposite rubric that must be removed. A zero balance yields no item.
func PlanItem(balanceMinutes int, baseSalary decimal.Decimal, rates Rates) (item *LineItem, removeCode string) {
	if balanceMinutes == 0 {
		return nil, ""
	}
	minutes := balanceMinutes
	code, kind, multiplier, opposite := rates.OvertimeCode, KindEarning, rates.OvertimeMultiplier, rates.AbsenceCode
	if balanceMinutes < 0 {
		minutes = -balanceMinutes
		code, kind, multiplier, opposite = rates.AbsenceCode, KindDeduction, rates.AbsenceMultiplier, rates.OvertimeCode
	}

	qty := decimal.NewFromInt(int64(minutes))
	// value = hours * (base / monthlyHours) * multiplier, divided once at the end.
	value := baseSalary.Mul(qty).Mul(multiplier).Div(rates.MonthlyHours.Mul(minutesPerHour)).Round(2)
	return &LineItem{
		EventCode:    code,
		Kind:         kind,
		Value:        value,
		ReferenceQty: qty.Div(minutesPerHour).Round(2),
	}, opposite
}

func ComputeTotals(items []LineItem) Totals {
	totals := Totals{Earnings: decimal.Zero, Deductions: decimal.Zero}
	for _, item := range items {
		switch item.Kind {
		case KindEarning:
			totals.Earnings = totals.Earnings.Add(item.Value)
		case KindDeduction:
			totals.Deductions = totals.Deductions.Add(item.Value)
		}
	}
	totals.Net = totals.Earnings.Sub(totals.Deductions)
	return totals
}
