package payroll

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Team-PayCheck/PayCheck-backend/internal/allowance"
	"github.com/Team-PayCheck/PayCheck-backend/internal/contract"
	"github.com/Team-PayCheck/PayCheck-backend/internal/deduction"
	"github.com/Team-PayCheck/PayCheck-backend/internal/events"
	"github.com/Team-PayCheck/PayCheck-backend/internal/messaging/kafka"
	payrollerrors "github.com/Team-PayCheck/PayCheck-backend/internal/payroll/errors"
	"github.com/Team-PayCheck/PayCheck-backend/internal/shared/apperror"
	"github.com/Team-PayCheck/PayCheck-backend/internal/shift"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(gormpostgres.New(gormpostgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return gdb, mock
}

type fakeSummaryRepo struct {
	mu            sync.Mutex
	row           *PaySummary
	forUpdateErrs []error
	updates       []*PaySummary
}

func (f *fakeSummaryRepo) WithTx(tx *gorm.DB) Repository { return f }

// install makes a row visible to subsequent locked lookups, standing in for a
// committed insert.
func (f *fakeSummaryRepo) install(s *PaySummary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.row = &cp
}

func (f *fakeSummaryRepo) FindByContractAndPeriod(ctx context.Context, contractID string, year, month int) (*PaySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.row == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *f.row
	return &cp, nil
}

func (f *fakeSummaryRepo) FindForUpdate(ctx context.Context, contractID string, year, month int) (*PaySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.forUpdateErrs) > 0 {
		err := f.forUpdateErrs[0]
		f.forUpdateErrs = f.forUpdateErrs[1:]
		return nil, err
	}
	if f.row == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *f.row
	return &cp, nil
}

func (f *fakeSummaryRepo) Update(ctx context.Context, s *PaySummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, s)
	f.row = s
	return nil
}

func (f *fakeSummaryRepo) FindAllByContract(ctx context.Context, contractID string) ([]PaySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.row == nil {
		return nil, nil
	}
	return []PaySummary{*f.row}, nil
}

type fakePersister struct {
	mu     sync.Mutex
	err    error
	onFail func()
	save   func(s *PaySummary) error
	saved  []*PaySummary
}

func (f *fakePersister) TrySave(ctx context.Context, s *PaySummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.save != nil {
		if err := f.save(s); err != nil {
			return err
		}
	} else if f.err != nil {
		if f.onFail != nil {
			f.onFail()
		}
		return f.err
	}
	cp := *s
	f.saved = append(f.saved, &cp)
	return nil
}

type fakeShiftSource struct {
	mu     sync.Mutex
	shifts []shift.Shift
	ranges [][2]time.Time
}

func (f *fakeShiftSource) FindCompletedInRange(ctx context.Context, contractID string, from, to time.Time) ([]shift.Shift, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ranges = append(f.ranges, [2]time.Time{from, to})
	return f.shifts, nil
}

type fakeAllowanceSource struct {
	weeks []allowance.WeeklyAllowance
}

func (f *fakeAllowanceSource) FindByWeekStartBetween(ctx context.Context, contractID string, from, to time.Time) ([]allowance.WeeklyAllowance, error) {
	return f.weeks, nil
}

type fakeContractRepo struct {
	contracts map[string]*contract.Contract
}

func (f *fakeContractRepo) FindByID(ctx context.Context, id string) (*contract.Contract, error) {
	if c, ok := f.contracts[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeContractRepo) FindAllActive(ctx context.Context) ([]contract.Contract, error) {
	var out []contract.Contract
	for _, c := range f.contracts {
		out = append(out, *c)
	}
	return out, nil
}

type fakeOutbox struct {
	mu     sync.Mutex
	events []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *gorm.DB) kafka.OutboxRepository { return f }

func (f *fakeOutbox) Create(ctx context.Context, e kafka.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error      { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id, r string) error { return nil }

func testEngine(t *testing.T) *deduction.Engine {
	t.Helper()
	engine, err := deduction.NewEngine(filepath.Join("..", "..", "assets", "tax", "income_tax_table_2024.json"))
	require.NoError(t, err)
	return engine
}

type payrollFixture struct {
	svc        Service
	repo       *fakeSummaryRepo
	persister  *fakePersister
	shifts     *fakeShiftSource
	allowances *fakeAllowanceSource
	contracts  *fakeContractRepo
	outbox     *fakeOutbox
	contract   *contract.Contract
	mock       sqlmock.Sqlmock
}

func newPayrollFixture(t *testing.T, policy deduction.Policy) *payrollFixture {
	t.Helper()
	gdb, mock := newTestDB(t)

	c := &contract.Contract{
		ID:              uuid.New(),
		HourlyWage:      10000,
		PaymentDay:      25,
		DeductionPolicy: policy,
		IsActive:        true,
	}
	f := &payrollFixture{
		repo:       &fakeSummaryRepo{},
		persister:  &fakePersister{},
		shifts:     &fakeShiftSource{},
		allowances: &fakeAllowanceSource{},
		contracts:  &fakeContractRepo{contracts: map[string]*contract.Contract{c.ID.String(): c}},
		outbox:     &fakeOutbox{},
		contract:   c,
		mock:       mock,
	}
	f.svc = NewService(gdb, f.repo, f.persister, f.shifts, f.allowances, f.contracts, testEngine(t), f.outbox)
	return f
}

func completedShift(minutes int, base, night, holiday int64) shift.Shift {
	return shift.Shift{
		ID:          uuid.New(),
		WorkMinutes: minutes,
		BasePay:     base,
		NightPay:    night,
		HolidayPay:  holiday,
		TotalPay:    base + night + holiday,
		Status:      shift.StatusCompleted,
	}
}

func TestRecompute_FirstTimeInsertsThroughPersister(t *testing.T) {
	f := newPayrollFixture(t, deduction.PolicyNone)
	f.shifts.shifts = []shift.Shift{
		completedShift(480, 80000, 5000, 0),
		completedShift(540, 90000, 0, 0),
	}
	f.allowances.weeks = []allowance.WeeklyAllowance{
		{WeekStart: d("2024-06-17"), WeekEnd: d("2024-06-23"), PaidLeaveAllowance: 30000, OvertimeAllowance: 10000},
		{WeekStart: d("2024-06-24"), WeekEnd: d("2024-06-30"), PaidLeaveAllowance: 30000, OvertimeAllowance: 20000},
	}

	// The locked update finds nothing, rolls back, then the persister inserts.
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	resp, err := f.svc.Recompute(context.Background(), f.contract.ID.String(), 2024, 6)
	require.NoError(t, err)

	// Shift sums plus the one closed week; the open trailing week defers.
	assert.Equal(t, int64(1020), resp.TotalWorkMinutes)
	assert.Equal(t, int64(200000), resp.BasePay, "shift base plus paid leave")
	assert.Equal(t, int64(10000), resp.OvertimePay)
	assert.Equal(t, int64(5000), resp.NightPay)
	assert.Equal(t, int64(215000), resp.GrossPay)
	assert.Equal(t, int64(215000), resp.NetPay, "NONE policy deducts nothing")
	assert.Equal(t, "2024-05-25", resp.PeriodStart)
	assert.Equal(t, "2024-06-24", resp.PeriodEnd)
	assert.Equal(t, "2024-06-25", resp.DueDate)

	require.Len(t, f.persister.saved, 1)
	assert.Empty(t, f.repo.updates)

	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, events.SalaryComputedTopic, f.outbox.events[0].Topic)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRecompute_ExistingRowUpdatedInPlace(t *testing.T) {
	f := newPayrollFixture(t, deduction.PolicyNone)
	f.shifts.shifts = []shift.Shift{completedShift(480, 80000, 0, 0)}

	existingID := uuid.New()
	f.repo.row = &PaySummary{
		ID:         existingID,
		ContractID: f.contract.ID,
		Year:       2024,
		Month:      6,
		GrossPay:   999999,
	}

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.svc.Recompute(context.Background(), f.contract.ID.String(), 2024, 6)
	require.NoError(t, err)

	assert.Equal(t, existingID.String(), resp.ID, "row identity survives recomputation")
	assert.Equal(t, int64(80000), resp.GrossPay)
	require.Len(t, f.repo.updates, 1)
	assert.Empty(t, f.persister.saved, "no insert when the row exists")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRecompute_InsertRaceFallsBackToLockedUpdate(t *testing.T) {
	f := newPayrollFixture(t, deduction.PolicyNone)
	f.shifts.shifts = []shift.Shift{completedShift(480, 80000, 0, 0)}

	winnerID := uuid.New()
	f.persister.err = &pgconn.PgError{Code: "23505"}
	f.persister.onFail = func() {
		// The concurrent winner committed between our lookup and insert.
		f.repo.install(&PaySummary{ID: winnerID, ContractID: f.contract.ID, Year: 2024, Month: 6})
	}

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.svc.Recompute(context.Background(), f.contract.ID.String(), 2024, 6)
	require.NoError(t, err)
	assert.Equal(t, winnerID.String(), resp.ID, "loser updates the winner's row")
	require.Len(t, f.repo.updates, 1)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRecompute_ConcurrentCallsConvergeOnOneRow(t *testing.T) {
	const workers = 8

	f := newPayrollFixture(t, deduction.PolicyNone)
	f.shifts.shifts = []shift.Shift{completedShift(480, 80000, 0, 0)}

	// Each worker opens at most two transactions; the order they interleave
	// in is not deterministic, so over-provision and match unordered.
	f.mock.MatchExpectationsInOrder(false)
	for i := 0; i < workers*2; i++ {
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()
		f.mock.ExpectCommit()
	}

	// The first insert lands and becomes visible to later lookups; every
	// insert after it collides the way the unique index would make it.
	inserted := false
	f.persister.save = func(s *PaySummary) error {
		if inserted {
			return &pgconn.PgError{Code: "23505"}
		}
		inserted = true
		f.repo.install(s)
		return nil
	}

	var wg sync.WaitGroup
	errs := make([]error, workers)
	resps := make([]PaySummaryResponse, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resps[i], errs[i] = f.svc.Recompute(context.Background(), f.contract.ID.String(), 2024, 6)
		}(i)
	}
	wg.Wait()

	require.Len(t, f.persister.saved, 1, "exactly one insert wins")
	winner := f.persister.saved[0].ID.String()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, winner, resps[i].ID, "every caller converges on the winner's row")
		assert.Equal(t, int64(80000), resps[i].GrossPay)
	}

	assert.Equal(t, winner, f.repo.row.ID.String())
	assert.Len(t, f.repo.updates, workers-1, "losers update, never insert")
	for _, u := range f.repo.updates {
		assert.Equal(t, winner, u.ID.String())
	}
	assert.Len(t, f.outbox.events, workers)
}

func TestRecompute_LockTimeoutIsRetryable(t *testing.T) {
	f := newPayrollFixture(t, deduction.PolicyNone)
	f.shifts.shifts = []shift.Shift{completedShift(480, 80000, 0, 0)}
	f.repo.forUpdateErrs = []error{&pgconn.PgError{Code: "55P03"}}

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.Recompute(context.Background(), f.contract.ID.String(), 2024, 6)
	assert.ErrorIs(t, err, payrollerrors.ErrPeriodLocked)
	assert.True(t, apperror.IsRetryable(err))
	assert.Empty(t, f.persister.saved, "lock timeout must not reach the insert path")
}

func TestRecompute_NoCompletedShifts(t *testing.T) {
	f := newPayrollFixture(t, deduction.PolicyNone)

	_, err := f.svc.Recompute(context.Background(), f.contract.ID.String(), 2024, 6)
	assert.ErrorIs(t, err, payrollerrors.ErrNoCompletedShifts)
	assert.Empty(t, f.outbox.events)
}

func TestRecompute_InvalidInputs(t *testing.T) {
	f := newPayrollFixture(t, deduction.PolicyNone)

	_, err := f.svc.Recompute(context.Background(), f.contract.ID.String(), 2024, 13)
	assert.ErrorIs(t, err, payrollerrors.ErrInvalidPeriod)

	_, err = f.svc.Recompute(context.Background(), "nope", 2024, 6)
	assert.ErrorIs(t, err, payrollerrors.ErrInvalidContractID)

	_, err = f.svc.Recompute(context.Background(), uuid.NewString(), 2024, 6)
	assert.ErrorIs(t, err, payrollerrors.ErrContractNotFound)
}

func TestRecompute_TaxAndInsuranceDeductions(t *testing.T) {
	f := newPayrollFixture(t, deduction.PolicyTaxAndInsurance)
	f.shifts.shifts = []shift.Shift{completedShift(10000, 2500000, 0, 0)}

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	resp, err := f.svc.Recompute(context.Background(), f.contract.ID.String(), 2024, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(2500000), resp.GrossPay)
	assert.Equal(t, int64(112500), resp.NationalPension)
	assert.Equal(t, int64(88625), resp.HealthInsurance)
	assert.Equal(t, int64(11476), resp.LongTermCare)
	assert.Equal(t, int64(22500), resp.EmploymentInsurance)
	assert.Equal(t, int64(235101), resp.TotalInsurance)
	assert.Equal(t, int64(35600), resp.IncomeTax)
	assert.Equal(t, int64(3560), resp.LocalIncomeTax)
	assert.Equal(t, int64(274261), resp.TotalDeduction)
	assert.Equal(t, int64(2225739), resp.NetPay)
}

func TestRecomputeForDate_PicksOwningPeriod(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		wantYear  int
		wantMonth int
	}{
		{"before payday stays in own month", "2024-06-10", 2024, 6},
		{"on payday rolls to next month", "2024-06-25", 2024, 7},
		{"after payday rolls to next month", "2024-06-28", 2024, 7},
		{"december rolls into january", "2024-12-27", 2025, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPayrollFixture(t, deduction.PolicyNone)
			f.shifts.shifts = []shift.Shift{completedShift(480, 80000, 0, 0)}
			f.mock.ExpectBegin()
			f.mock.ExpectRollback()

			err := f.svc.RecomputeForDate(context.Background(), f.contract.ID.String(), d(tt.date))
			require.NoError(t, err)

			require.Len(t, f.persister.saved, 1)
			assert.Equal(t, tt.wantYear, f.persister.saved[0].Year)
			assert.Equal(t, tt.wantMonth, f.persister.saved[0].Month)
		})
	}
}

func TestRunMonthlySweep_OnlyContractsDueToday(t *testing.T) {
	f := newPayrollFixture(t, deduction.PolicyNone)
	f.shifts.shifts = []shift.Shift{completedShift(480, 80000, 0, 0)}

	other := &contract.Contract{
		ID:         uuid.New(),
		HourlyWage: 10000,
		PaymentDay: 10,
		IsActive:   true,
	}
	f.contracts.contracts[other.ID.String()] = other

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	n, err := f.svc.RunMonthlySweep(context.Background(), d("2024-06-25"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, f.persister.saved, 1)
	assert.Equal(t, f.contract.ID, f.persister.saved[0].ContractID)
}

func TestRunMonthlySweep_ClampedPaydayShortMonth(t *testing.T) {
	f := newPayrollFixture(t, deduction.PolicyNone)
	f.contract.PaymentDay = 31
	f.shifts.shifts = []shift.Shift{completedShift(480, 80000, 0, 0)}

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	// April has 30 days; the payday-31 contract is due on the 30th.
	n, err := f.svc.RunMonthlySweep(context.Background(), d("2024-04-30"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGetByContractAndPeriod_NotFound(t *testing.T) {
	f := newPayrollFixture(t, deduction.PolicyNone)

	_, err := f.svc.GetByContractAndPeriod(context.Background(), f.contract.ID.String(), 2024, 6)
	assert.ErrorIs(t, err, payrollerrors.ErrSummaryNotFound)
}
