package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Bridge writes time balances into the payslips of an open period.
type Bridge struct {
	store    StoreAPI
	balances BalanceSource
	salaries SalaryOpener
	rates    Rates
	workers  int
}

func NewBridge(store StoreAPI, balances BalanceSource, salaries SalaryOpener, rates Rates, workers int) *Bridge {
	if workers <= 0 {
		workers = 1
	}
	return &Bridge{store: store, balances: balances, salaries: salaries, rates: rates, workers: workers}
}

// SyncPeriod recomputes every payslip's period balance and upserts the
// overtime or absence item it implies. Payslips run in parallel; each one
// is applied in its own transaction, so a failed run can simply be
// repeated.
func (b *Bridge) SyncPeriod(ctx context.Context, periodID string) (SyncResult, error) {
	result := SyncResult{PeriodID: periodID, Changes: []PayslipChange{}}

	period, err := b.store.GetPeriod(ctx, periodID)
	if err != nil {
		return result, err
	}
	if !period.Open() {
		return result, ErrPeriodClosed
	}
	if err := b.checkCatalog(ctx); err != nil {
		return result, err
	}

	payslips, err := b.store.ListPeriodPayslips(ctx, periodID)
	if err != nil {
		return result, err
	}
	result.Payslips = len(payslips)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for _, slip := range payslips {
		g.Go(func() error {
			change, outcome, err := b.syncPayslip(gctx, period, slip)
			if err != nil {
				return fmt.Errorf("payslip %s: %w", slip.PayslipID, err)
			}
			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case outcomeNoSalary:
				result.NoSalary++
			case outcomeZero:
				result.ZeroBalance++
			case outcomeApplied:
				result.Processed++
				result.Changes = append(result.Changes, change)
			}
			return nil
		})
	}
	err = g.Wait()
	sort.Slice(result.Changes, func(i, j int) bool { return result.Changes[i].PayslipID < result.Changes[j].PayslipID })

	slog.Info("payroll time balance sync finished",
		"periodId", periodID,
		"payslips", result.Payslips,
		"processed", result.Processed,
		"zeroBalance", result.ZeroBalance,
		"noSalary", result.NoSalary,
		"err", err,
	)
	return result, err
}

type outcome int

const (
	outcomeApplied outcome = iota
	outcomeZero
	outcomeNoSalary
)

func (b *Bridge) syncPayslip(ctx context.Context, period Period, slip PayslipWorker) (PayslipChange, outcome, error) {
	salary, ok, err := b.baseSalary(slip)
	if err != nil {
		return PayslipChange{}, 0, err
	}
	if !ok {
		return PayslipChange{}, outcomeNoSalary, nil
	}

	bal, err := b.balances.RangeBalance(ctx, slip.WorkerID, period.StartDate, period.EndDate)
	if err != nil {
		return PayslipChange{}, 0, err
	}
	item, removeCode := PlanItem(bal.BalanceMinutes, salary, b.rates)
	if item == nil {
		return PayslipChange{}, outcomeZero, nil
	}

	totals, err := b.store.ApplyLineItem(ctx, period.ID, slip.PayslipID, *item, removeCode)
	if err != nil {
		return PayslipChange{}, 0, err
	}
	return PayslipChange{
		PayslipID:      slip.PayslipID,
		WorkerID:       slip.WorkerID,
		BalanceMinutes: bal.BalanceMinutes,
		EventCode:      item.EventCode,
		Value:          item.Value,
		RemovedCode:    removeCode,
		Totals:         totals,
	}, outcomeApplied, nil
}

func (b *Bridge) baseSalary(slip PayslipWorker) (decimal.Decimal, bool, error) {
	var salary decimal.Decimal
	switch {
	case len(slip.BaseSalaryEnc) > 0:
		if b.salaries == nil {
			return decimal.Zero, false, fmt.Errorf("encrypted salary for worker %s but no key configured", slip.WorkerID)
		}
		opened, err := b.salaries.OpenDecimal(slip.BaseSalaryEnc)
		if err != nil {
			return decimal.Zero, false, fmt.Errorf("decrypt salary: %w", err)
		}
		salary = opened
	case slip.BaseSalary != nil:
		salary = *slip.BaseSalary
	default:
		return decimal.Zero, false, nil
	}
	return salary, salary.IsPositive(), nil
}

func (b *Bridge) checkCatalog(ctx context.Context) error {
	events, err := b.store.EventsByCode(ctx, b.rates.OvertimeCode, b.rates.AbsenceCode)
	if err != nil {
		return err
	}
	required := []struct{ code, kind string }{
		{b.rates.OvertimeCode, KindEarning},
		{b.rates.AbsenceCode, KindDeduction},
	}
	for _, r := range required {
		event, ok := events[r.code]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingRubric, r.code)
		}
		if event.Kind != r.kind {
			return fmt.Errorf("%w: %s is %s, want %s", ErrInvalidRubric, r.code, event.Kind, r.kind)
		}
	}
	return nil
}
