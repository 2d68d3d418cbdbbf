package payroll

const (
	PeriodStatusOpen   = "open"
	PeriodStatusClosed = "closed"
	PeriodStatusPaid   = "paid"

	KindEarning   = "earning"
	KindDeduction = "deduction"
)
