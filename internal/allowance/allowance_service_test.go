package allowance

import (
	"context"
	"testing"
	"time"

	"github.com/Team-PayCheck/PayCheck-backend/internal/contract"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeAllowanceRepo struct {
	rows      map[string]*WeeklyAllowance
	createErr error
	creates   int
	// missFirstFind makes the first FindByContractAndWeek miss, simulating
	// a row inserted by a concurrent writer between read and insert.
	missFirstFind bool
}

func newFakeAllowanceRepo() *fakeAllowanceRepo {
	return &fakeAllowanceRepo{rows: map[string]*WeeklyAllowance{}}
}

func (f *fakeAllowanceRepo) key(contractID string, weekStart time.Time) string {
	return contractID + "|" + weekStart.Format("2006-01-02")
}

func (f *fakeAllowanceRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeAllowanceRepo) Create(ctx context.Context, a *WeeklyAllowance) error {
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	f.rows[f.key(a.ContractID.String(), a.WeekStart)] = a
	return nil
}

func (f *fakeAllowanceRepo) Update(ctx context.Context, a *WeeklyAllowance) error {
	f.rows[f.key(a.ContractID.String(), a.WeekStart)] = a
	return nil
}

func (f *fakeAllowanceRepo) FindByContractAndWeek(ctx context.Context, contractID string, weekStart time.Time) (*WeeklyAllowance, error) {
	if f.missFirstFind {
		f.missFirstFind = false
		return nil, gorm.ErrRecordNotFound
	}
	if a, ok := f.rows[f.key(contractID, weekStart)]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAllowanceRepo) FindByWeekStartBetween(ctx context.Context, contractID string, from, to time.Time) ([]WeeklyAllowance, error) {
	var out []WeeklyAllowance
	for _, a := range f.rows {
		if a.ContractID.String() == contractID && !a.WeekStart.Before(from) && !a.WeekStart.After(to) {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakeMinutes struct {
	minutes int64
	err     error
}

func (f *fakeMinutes) SumCompletedMinutesInWeek(ctx context.Context, contractID string, weekStart time.Time) (int64, error) {
	return f.minutes, f.err
}

func testContract(wage int64) *contract.Contract {
	return &contract.Contract{ID: uuid.New(), HourlyWage: wage}
}

func monday(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	require.Equal(t, time.Monday, d.Weekday())
	return d
}

func TestWeekStartOf(t *testing.T) {
	// 2024-06-05 is a Wednesday; its week starts Monday 2024-06-03.
	d := time.Date(2024, 6, 5, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-06-03", WeekStartOf(d).Format("2006-01-02"))
	assert.Equal(t, "2024-06-09", WeekEndOf(d).Format("2006-01-02"))

	// Sunday belongs to the week that started the previous Monday.
	sun := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-06-03", WeekStartOf(sun).Format("2006-01-02"))
}

func TestGetOrCreate_InsertsOnFirstTouch(t *testing.T) {
	repo := newFakeAllowanceRepo()
	svc := NewService(repo, &fakeMinutes{})
	c := testContract(10000)
	ws := monday(t, "2024-06-03")

	row, err := svc.GetOrCreate(context.Background(), c.ID.String(), ws)
	require.NoError(t, err)
	assert.Equal(t, ws, row.WeekStart)
	assert.Equal(t, ws.AddDate(0, 0, 6), row.WeekEnd)
	assert.Equal(t, 1, repo.creates)

	again, err := svc.GetOrCreate(context.Background(), c.ID.String(), ws)
	require.NoError(t, err)
	assert.Equal(t, row.ID, again.ID)
	assert.Equal(t, 1, repo.creates, "second call must reuse the row")
}

func TestGetOrCreate_UniqueViolationRefetches(t *testing.T) {
	repo := newFakeAllowanceRepo()
	c := testContract(10000)
	ws := monday(t, "2024-06-03")

	// A concurrent winner inserted between our read and our insert.
	winner := &WeeklyAllowance{ID: uuid.New(), ContractID: c.ID, WeekStart: ws}
	repo.rows[repo.key(c.ID.String(), ws)] = winner
	repo.missFirstFind = true
	repo.createErr = &pgconn.PgError{Code: "23505"}

	svc := NewService(repo, &fakeMinutes{})
	row, err := svc.GetOrCreate(context.Background(), c.ID.String(), ws)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, row.ID)
}

func TestRecompute_AmountsPerWeekMinutes(t *testing.T) {
	tests := []struct {
		name          string
		minutes       int64
		wage          int64
		wantPaidLeave int64
		wantOvertime  int64
	}{
		{"below threshold", 899, 10000, 0, 0},
		{"at threshold", 900, 10000, 30000, 0},
		{"full statutory week", 2400, 10000, 80000, 0},
		{"over the week", 3000, 9860, 78880, 49300},
		{"capped paid leave", 4800, 10000, 80000, 200000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeAllowanceRepo()
			svc := NewService(repo, &fakeMinutes{minutes: tt.minutes})
			c := testContract(tt.wage)

			row, err := svc.Recompute(context.Background(), c, monday(t, "2024-06-03"))
			require.NoError(t, err)
			assert.Equal(t, tt.minutes, row.TotalWorkMinutes)
			assert.Equal(t, tt.wantPaidLeave, row.PaidLeaveAllowance, "paid leave")
			assert.Equal(t, tt.wantOvertime, row.OvertimeAllowance, "overtime")
		})
	}
}
