package payroll

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pontosync/internal/domain/balance"
)

type fakeStore struct {
	mu       sync.Mutex
	period   Period
	events   map[string]Event
	payslips []PayslipWorker
	items    map[string]map[string]LineItem
	totals   map[string]Totals
	writes   int
}

func newFakeStore(status string) *fakeStore {
	return &fakeStore{
		period: Period{
			ID:        "p1",
			StartDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
			Status:    status,
		},
		events: map[string]Event{
			"HE50":   {Code: "HE50", Kind: KindEarning},
			"FALTAS": {Code: "FALTAS", Kind: KindDeduction},
		},
		items:  map[string]map[string]LineItem{},
		totals: map[string]Totals{},
	}
}

func (f *fakeStore) GetPeriod(ctx context.Context, periodID string) (Period, error) {
	if periodID != f.period.ID {
		return Period{}, ErrPeriodNotFound
	}
	return f.period, nil
}

func (f *fakeStore) EventsByCode(ctx context.Context, codes ...string) (map[string]Event, error) {
	out := map[string]Event{}
	for _, code := range codes {
		if e, ok := f.events[code]; ok {
			out[code] = e
		}
	}
	return out, nil
}

func (f *fakeStore) ListPeriodPayslips(ctx context.Context, periodID string) ([]PayslipWorker, error) {
	return f.payslips, nil
}

func (f *fakeStore) ApplyLineItem(ctx context.Context, periodID, payslipID string, item LineItem, removeCode string) (Totals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.items[payslipID] == nil {
		f.items[payslipID] = map[string]LineItem{}
	}
	f.items[payslipID][item.EventCode] = item
	delete(f.items[payslipID], removeCode)
	var list []LineItem
	for _, it := range f.items[payslipID] {
		list = append(list, it)
	}
	totals := ComputeTotals(list)
	f.totals[payslipID] = totals
	return totals, nil
}

type fakeBalances map[string]int

func (b fakeBalances) RangeBalance(ctx context.Context, workerID string, first, last time.Time) (balance.PeriodBalance, error) {
	if first.Day() != 1 || last.Day() != 31 {
		return balance.PeriodBalance{}, errors.New("unexpected range")
	}
	return balance.PeriodBalance{WorkerID: workerID, BalanceMinutes: b[workerID]}, nil
}

type plainSealer struct{}

func (plainSealer) OpenDecimal(sealed []byte) (decimal.Decimal, error) {
	return decimal.NewFromString(string(sealed))
}

func salary(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestSyncPeriodUpsertsExclusiveItems(t *testing.T) {
	store := newFakeStore(PeriodStatusOpen)
	store.payslips = []PayslipWorker{
		{PayslipID: "s1", WorkerID: "w1", BaseSalary: salary("2200")},
		{PayslipID: "s2", WorkerID: "w2", BaseSalaryEnc: []byte("4400")},
		{PayslipID: "s3", WorkerID: "w3", BaseSalary: salary("2200")},
		{PayslipID: "s4", WorkerID: "w4"},
	}
	balances := fakeBalances{"w1": 120, "w2": -60, "w3": 0, "w4": 300}
	bridge := NewBridge(store, balances, plainSealer{}, testRates(), 2)

	result, err := bridge.SyncPeriod(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Processed != 2 || result.ZeroBalance != 1 || result.NoSalary != 1 || result.Payslips != 4 {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(result.Changes) != 2 || result.Changes[0].PayslipID != "s1" || result.Changes[1].PayslipID != "s2" {
		t.Fatalf("unexpected changes %+v", result.Changes)
	}
	if !store.items["s1"]["HE50"].Value.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("unexpected overtime item %+v", store.items["s1"])
	}
	if !store.items["s2"]["FALTAS"].Value.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("unexpected absence item %+v", store.items["s2"])
	}
	if !store.totals["s2"].Net.Equal(decimal.NewFromInt(-20)) {
		t.Fatalf("unexpected totals %+v", store.totals["s2"])
	}
	if _, touched := store.items["s3"]; touched {
		t.Fatal("zero balance must not touch items")
	}

	// The balance flips sign: the stale overtime item must go.
	balances["w1"] = -30
	if _, err := bridge.SyncPeriod(context.Background(), "p1"); err != nil {
		t.Fatalf("resync: %v", err)
	}
	if _, ok := store.items["s1"]["HE50"]; ok {
		t.Fatal("overtime item survived a negative balance")
	}
	if len(store.items["s1"]) != 1 || !store.items["s1"]["FALTAS"].Value.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected one absence item, got %+v", store.items["s1"])
	}
	if !store.totals["s1"].Earnings.IsZero() {
		t.Fatalf("expected earnings recomputed to zero, got %s", store.totals["s1"].Earnings)
	}
}

func TestSyncPeriodRejectsClosedPeriod(t *testing.T) {
	for _, status := range []string{PeriodStatusClosed, PeriodStatusPaid} {
		store := newFakeStore(status)
		store.payslips = []PayslipWorker{{PayslipID: "s1", WorkerID: "w1", BaseSalary: salary("2200")}}
		_, err := NewBridge(store, fakeBalances{"w1": 60}, nil, testRates(), 1).SyncPeriod(context.Background(), "p1")
		if !errors.Is(err, ErrPeriodClosed) {
			t.Fatalf("%s: expected ErrPeriodClosed, got %v", status, err)
		}
		if store.writes != 0 {
			t.Fatalf("%s: closed period was written", status)
		}
	}
}

func TestSyncPeriodRequiresBothRubrics(t *testing.T) {
	store := newFakeStore(PeriodStatusOpen)
	delete(store.events, "FALTAS")
	store.payslips = []PayslipWorker{{PayslipID: "s1", WorkerID: "w1", BaseSalary: salary("2200")}}
	_, err := NewBridge(store, fakeBalances{"w1": 60}, nil, testRates(), 1).SyncPeriod(context.Background(), "p1")
	if !errors.Is(err, ErrMissingRubric) {
		t.Fatalf("expected ErrMissingRubric, got %v", err)
	}
	if store.writes != 0 {
		t.Fatal("missing rubric must abort before any write")
	}

	store.events["FALTAS"] = Event{Code: "FALTAS", Kind: KindEarning}
	_, err = NewBridge(store, fakeBalances{"w1": 60}, nil, testRates(), 1).SyncPeriod(context.Background(), "p1")
	if !errors.Is(err, ErrInvalidRubric) {
		t.Fatalf("expected ErrInvalidRubric, got %v", err)
	}
}

func TestSyncPeriodUnknownPeriod(t *testing.T) {
	_, err := NewBridge(newFakeStore(PeriodStatusOpen), fakeBalances{}, nil, testRates(), 1).SyncPeriod(context.Background(), "nope")
	if !errors.Is(err, ErrPeriodNotFound) {
		t.Fatalf("expected ErrPeriodNotFound, got %v", err)
	}
}
