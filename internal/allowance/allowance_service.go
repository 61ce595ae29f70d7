package allowance

import (
	"context"
	"errors"
	"time"

	"github.com/Team-PayCheck/PayCheck-backend/internal/contract"
	"github.com/Team-PayCheck/PayCheck-backend/internal/shared/pgerr"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// Paid-leave allowance accrues from 15 worked hours a week and is
	// capped at the statutory 40-hour week.
	paidLeaveThresholdMinutes = 900
	statutoryWeekMinutes      = 2400
)

// CompletedMinutesSource supplies the completed work minutes of one contract
// week. Satisfied by the shift repository.
type CompletedMinutesSource interface {
	SumCompletedMinutesInWeek(ctx context.Context, contractID string, weekStart time.Time) (int64, error)
}

//go:generate mockgen -source=allowance_service.go -destination=mock/allowance_service_mock.go -package=mock
type Service interface {
	// GetOrCreate returns the allowance row owning weekStart's week,
	// inserting an empty one on first touch.
	GetOrCreate(ctx context.Context, contractID string, weekStart time.Time) (*WeeklyAllowance, error)
	// Recompute re-derives the week's amounts from its completed shifts.
	Recompute(ctx context.Context, c *contract.Contract, weekStart time.Time) (*WeeklyAllowance, error)
}

type service struct {
	repo   Repository
	shifts CompletedMinutesSource
	logger *zap.Logger
}

func NewService(repo Repository, shifts CompletedMinutesSource) Service {
	return &service{
		repo:   repo,
		shifts: shifts,
		logger: zap.L().Named("allowance.service"),
	}
}

func (s *service) GetOrCreate(ctx context.Context, contractID string, weekStart time.Time) (*WeeklyAllowance, error) {
	cid, err := uuid.Parse(contractID)
	if err != nil {
		return nil, err
	}
	weekStart = WeekStartOf(weekStart)

	row, err := s.repo.FindByContractAndWeek(ctx, contractID, weekStart)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := &WeeklyAllowance{
		ID:         uuid.New(),
		ContractID: cid,
		WeekStart:  weekStart,
		WeekEnd:    weekStart.AddDate(0, 0, 6),
	}
	if err := s.repo.Create(ctx, fresh); err != nil {
		// Two shifts opening the same new week race on the first insert;
		// the loser re-reads the winner's row.
		if pgerr.IsUniqueViolation(err) {
			return s.repo.FindByContractAndWeek(ctx, contractID, weekStart)
		}
		return nil, err
	}
	return fresh, nil
}

func (s *service) Recompute(ctx context.Context, c *contract.Contract, weekStart time.Time) (*WeeklyAllowance, error) {
	weekStart = WeekStartOf(weekStart)

	row, err := s.GetOrCreate(ctx, c.ID.String(), weekStart)
	if err != nil {
		return nil, err
	}

	minutes, err := s.shifts.SumCompletedMinutesInWeek(ctx, c.ID.String(), weekStart)
	if err != nil {
		return nil, err
	}

	row.TotalWorkMinutes = minutes
	row.PaidLeaveAllowance = paidLeaveFor(minutes, c.HourlyWage)
	row.OvertimeAllowance = overtimeFor(minutes, c.HourlyWage)

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, err
	}

	s.logger.Debug("weekly allowance recomputed",
		zap.String("contract_id", c.ID.String()),
		zap.String("week_start", weekStart.Format("2006-01-02")),
		zap.Int64("minutes", minutes),
	)
	return row, nil
}

// paidLeaveFor is one day's wage prorated against the statutory week: eight
// hours at full rate for a 40-hour week, proportionally less below it, zero
// under the 15-hour threshold.
func paidLeaveFor(minutes, wage int64) int64 {
	if minutes < paidLeaveThresholdMinutes {
		return 0
	}
	if minutes > statutoryWeekMinutes {
		minutes = statutoryWeekMinutes
	}
	return minutes * 8 * wage / statutoryWeekMinutes
}

// overtimeFor pays the 50% premium on minutes beyond the statutory week.
func overtimeFor(minutes, wage int64) int64 {
	if minutes <= statutoryWeekMinutes {
		return 0
	}
	return (minutes - statutoryWeekMinutes) * wage / 120
}
