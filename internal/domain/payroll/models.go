package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

type Period struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Status    string    `json:"status"`
}

func (p Period) Open() bool {
	return p.Status == PeriodStatusOpen
}

// Event is a payroll catalog entry (rubric).
type Event struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// PayslipWorker is a payslip of the period with its worker's active
// contract salary. BaseSalaryEnc is set instead of BaseSalary when the
// salary is stored encrypted.
type PayslipWorker struct {
	PayslipID     string
	WorkerID      string
	BaseSalary    *decimal.Decimal
	BaseSalaryEnc []byte
}

type LineItem struct {
	EventCode    string          `json:"eventCode"`
	Kind         string          `json:"kind"`
	Value        decimal.Decimal `json:"value"`
	ReferenceQty decimal.Decimal `json:"referenceQty"`
}

type Totals struct {
	Earnings   decimal.Decimal `json:"earnings"`
	Deductions decimal.Decimal `json:"deductions"`
	Net        decimal.Decimal `json:"net"`
}

// Rates turns a minute balance into money.
type Rates struct {
	OvertimeCode       string
	AbsenceCode        string
	OvertimeMultiplier decimal.Decimal
	AbsenceMultiplier  decimal.Decimal
	MonthlyHours       decimal.Decimal
}

type PayslipChange struct {
	PayslipID      string          `json:"payslipId"`
	WorkerID       string          `json:"workerId"`
	BalanceMinutes int             `json:"balanceMinutes"`
	EventCode      string          `json:"eventCode"`
	Value          decimal.Decimal `json:"value"`
	RemovedCode    string          `json:"removedCode"`
	Totals         Totals          `json:"totals"`
}

type SyncResult struct {
	PeriodID    string          `json:"periodId"`
	Payslips    int             `json:"payslips"`
	Processed   int             `json:"processed"`
	ZeroBalance int             `json:"zeroBalance"`
	NoSalary    int             `json:"noSalary"`
	Changes     []PayslipChange `json:"changes"`
}
