package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"pontosync/internal/domain/balance"
)

type StoreAPI interface {
	GetPeriod(ctx context.Context, periodID string) (Period, error)
	EventsByCode(ctx context.Context, codes ...string) (map[string]Event, error)
	ListPeriodPayslips(ctx context.Context, periodID string) ([]PayslipWorker, error)
	// ApplyLineItem upserts item, deletes removeCode and recomputes the
	// payslip totals in one transaction. It fails with ErrPeriodClosed if
	// the period left the open state meanwhile.
	ApplyLineItem(ctx context.Context, periodID, payslipID string, item LineItem, removeCode string) (Totals, error)
}

type BalanceSource interface {
	RangeBalance(ctx context.Context, workerID string, first, last time.Time) (balance.PeriodBalance, error)
}

type SalaryOpener interface {
	OpenDecimal(sealed []byte) (decimal.Decimal, error)
}
