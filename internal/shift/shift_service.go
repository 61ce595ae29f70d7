package shift

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Team-PayCheck/PayCheck-backend/internal/allowance"
	"github.com/Team-PayCheck/PayCheck-backend/internal/contract"
	"github.com/Team-PayCheck/PayCheck-backend/internal/events"
	"github.com/Team-PayCheck/PayCheck-backend/internal/holiday"
	"github.com/Team-PayCheck/PayCheck-backend/internal/messaging/kafka"
	"github.com/Team-PayCheck/PayCheck-backend/internal/shared/apperror"
	"github.com/Team-PayCheck/PayCheck-backend/internal/shared/contextutil"
	shifterrors "github.com/Team-PayCheck/PayCheck-backend/internal/shift/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PayrollTrigger recomputes the pay period owning a work date. Satisfied by
// the payroll service; declared here so shift does not depend on payroll.
type PayrollTrigger interface {
	RecomputeForDate(ctx context.Context, contractID string, date time.Time) error
}

//go:generate mockgen -source=shift_service.go -destination=mock/shift_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateShiftRequest) (ShiftResponse, error)
	Update(ctx context.Context, id string, req UpdateShiftRequest) (ShiftResponse, error)
	Complete(ctx context.Context, id string) (ShiftResponse, error)
	Approve(ctx context.Context, id string) (ShiftResponse, error)
	Delete(ctx context.Context, id string) error
	ListByContract(ctx context.Context, contractID string, from, to time.Time) ([]ShiftResponse, error)
	// AutoCompletePast completes SCHEDULED shifts whose end time has
	// passed. Run hourly by the worker; returns how many were completed.
	AutoCompletePast(ctx context.Context) (int, error)
}

type service struct {
	db         *gorm.DB
	repo       Repository
	contracts  contract.Repository
	holidays   holiday.Service
	allowances allowance.Service
	outbox     kafka.OutboxRepository
	payroll    PayrollTrigger
	logger     *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	contracts contract.Repository,
	holidays holiday.Service,
	allowances allowance.Service,
	outbox kafka.OutboxRepository,
	payroll PayrollTrigger,
) Service {
	return &service{
		db:         db,
		repo:       repo,
		contracts:  contracts,
		holidays:   holidays,
		allowances: allowances,
		outbox:     outbox,
		payroll:    payroll,
		logger:     zap.L().Named("shift.service"),
	}
}

func (s *service) Create(ctx context.Context, req CreateShiftRequest) (ShiftResponse, error) {
	c, err := s.loadContract(ctx, req.ContractID)
	if err != nil {
		return ShiftResponse{}, err
	}

	workDate, err := parseDate(req.WorkDate)
	if err != nil {
		return ShiftResponse{}, shifterrors.ErrInvalidDateFormat
	}

	// Validates times and break before anything is persisted.
	breakdown, err := Decompose(req.StartTime, req.EndTime, req.BreakMinutes, c.HourlyWage, false, c.IsSmallWorkplace)
	if err != nil {
		return ShiftResponse{}, err
	}

	if err := s.checkOverlap(ctx, req.ContractID, workDate, req.StartTime, req.EndTime, ""); err != nil {
		return ShiftResponse{}, err
	}

	status := StatusScheduled
	switch {
	case req.RequiresApproval:
		status = StatusPendingApproval
	case workDate.Before(todayUTC()):
		status = StatusCompleted
	}

	row := &Shift{
		ID:           uuid.New(),
		ContractID:   c.ID,
		WorkDate:     workDate,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		BreakMinutes: req.BreakMinutes,
		WorkMinutes:  breakdown.WorkMinutes,
		NightMinutes: breakdown.NightMinutes,
		Status:       status,
		WeekStart:    allowance.WeekStartOf(workDate),
		Memo:         req.Memo,
	}
	if status == StatusCompleted {
		if err := s.applyPay(ctx, row, c); err != nil {
			return ShiftResponse{}, err
		}
	}

	// The week row is created on the first shift touching it, so the
	// period aggregation always finds one.
	if _, err := s.allowances.GetOrCreate(ctx, req.ContractID, row.WeekStart); err != nil {
		return ShiftResponse{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, row); err != nil {
			return err
		}
		return s.queueScheduleEvent(ctx, tx, row, events.ShiftScheduleCreated)
	})
	if err != nil {
		s.logger.Error("create shift persist failed", zap.Error(err))
		return ShiftResponse{}, err
	}

	if row.Status == StatusCompleted {
		s.refreshAggregates(ctx, c, row.WeekStart, row.WorkDate)
	}
	s.logger.Info("shift created",
		zap.String("shift_id", row.ID.String()),
		zap.String("contract_id", c.ID.String()),
		zap.String("status", row.Status),
	)
	return mapToResponse(*row), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateShiftRequest) (ShiftResponse, error) {
	row, err := s.findShift(ctx, id)
	if err != nil {
		return ShiftResponse{}, err
	}
	if row.Status == StatusDeleted {
		return ShiftResponse{}, shifterrors.ErrShiftDeleted
	}

	c, err := s.loadContract(ctx, row.ContractID.String())
	if err != nil {
		return ShiftResponse{}, err
	}

	oldWeek := row.WeekStart
	oldDate := row.WorkDate
	wasCompleted := row.Status == StatusCompleted

	if req.WorkDate != nil {
		d, err := parseDate(*req.WorkDate)
		if err != nil {
			return ShiftResponse{}, shifterrors.ErrInvalidDateFormat
		}
		row.WorkDate = d
		row.WeekStart = allowance.WeekStartOf(d)
	}
	if req.StartTime != nil {
		row.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		row.EndTime = *req.EndTime
	}
	if req.BreakMinutes != nil {
		row.BreakMinutes = *req.BreakMinutes
	}
	if req.Memo != nil {
		row.Memo = req.Memo
	}
	row.IsModified = true

	if err := s.checkOverlap(ctx, row.ContractID.String(), row.WorkDate, row.StartTime, row.EndTime, row.ID.String()); err != nil {
		return ShiftResponse{}, err
	}

	if wasCompleted {
		if err := s.applyPay(ctx, row, c); err != nil {
			return ShiftResponse{}, err
		}
	} else {
		breakdown, err := Decompose(row.StartTime, row.EndTime, row.BreakMinutes, c.HourlyWage, false, c.IsSmallWorkplace)
		if err != nil {
			return ShiftResponse{}, err
		}
		row.WorkMinutes = breakdown.WorkMinutes
		row.NightMinutes = breakdown.NightMinutes
	}

	if !row.WeekStart.Equal(oldWeek) {
		if _, err := s.allowances.GetOrCreate(ctx, row.ContractID.String(), row.WeekStart); err != nil {
			return ShiftResponse{}, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, row); err != nil {
			return err
		}
		return s.queueScheduleEvent(ctx, tx, row, events.ShiftScheduleUpdated)
	})
	if err != nil {
		s.logger.Error("update shift persist failed", zap.String("shift_id", id), zap.Error(err))
		return ShiftResponse{}, err
	}

	if wasCompleted {
		s.refreshAggregates(ctx, c, oldWeek, oldDate)
		if !row.WeekStart.Equal(oldWeek) {
			s.refreshAggregates(ctx, c, row.WeekStart, row.WorkDate)
		} else if !row.WorkDate.Equal(oldDate) {
			// Same week, different date: the shift may have crossed a pay
			// period boundary, so its new owner needs a recompute too.
			s.triggerPayroll(ctx, c, row.WorkDate)
		}
	}
	return mapToResponse(*row), nil
}

func (s *service) Complete(ctx context.Context, id string) (ShiftResponse, error) {
	row, err := s.findShift(ctx, id)
	if err != nil {
		return ShiftResponse{}, err
	}
	switch row.Status {
	case StatusDeleted:
		return ShiftResponse{}, shifterrors.ErrShiftDeleted
	case StatusCompleted:
		return ShiftResponse{}, shifterrors.ErrAlreadyCompleted
	case StatusPendingApproval:
		return ShiftResponse{}, shifterrors.ErrAwaitingApproval
	}

	c, err := s.loadContract(ctx, row.ContractID.String())
	if err != nil {
		return ShiftResponse{}, err
	}

	if err := s.completeShift(ctx, row, c); err != nil {
		return ShiftResponse{}, err
	}
	return mapToResponse(*row), nil
}

func (s *service) Approve(ctx context.Context, id string) (ShiftResponse, error) {
	row, err := s.findShift(ctx, id)
	if err != nil {
		return ShiftResponse{}, err
	}
	if row.Status != StatusPendingApproval {
		return ShiftResponse{}, shifterrors.ErrNotPendingApproval
	}

	c, err := s.loadContract(ctx, row.ContractID.String())
	if err != nil {
		return ShiftResponse{}, err
	}

	// Approved past work is immediately payable; future work enters the
	// schedule and completes normally.
	if row.WorkDate.Before(todayUTC()) {
		if err := s.completeShift(ctx, row, c); err != nil {
			return ShiftResponse{}, err
		}
		return mapToResponse(*row), nil
	}

	row.Status = StatusScheduled
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, row); err != nil {
			return err
		}
		return s.queueScheduleEvent(ctx, tx, row, events.ShiftScheduleUpdated)
	})
	if err != nil {
		return ShiftResponse{}, err
	}
	return mapToResponse(*row), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	row, err := s.findShift(ctx, id)
	if err != nil {
		return err
	}
	if row.Status == StatusDeleted {
		return shifterrors.ErrShiftDeleted
	}
	wasCompleted := row.Status == StatusCompleted
	row.Status = StatusDeleted

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, row); err != nil {
			return err
		}
		return s.queueScheduleEvent(ctx, tx, row, events.ShiftScheduleDeleted)
	})
	if err != nil {
		s.logger.Error("delete shift persist failed", zap.String("shift_id", id), zap.Error(err))
		return err
	}

	if wasCompleted {
		c, err := s.loadContract(ctx, row.ContractID.String())
		if err != nil {
			return err
		}
		s.refreshAggregates(ctx, c, row.WeekStart, row.WorkDate)
	}
	return nil
}

func (s *service) ListByContract(ctx context.Context, contractID string, from, to time.Time) ([]ShiftResponse, error) {
	if _, err := uuid.Parse(contractID); err != nil {
		return nil, shifterrors.ErrInvalidContractID
	}
	rows, err := s.repo.FindByContractAndRange(ctx, contractID, from, to)
	if err != nil {
		return nil, err
	}
	res := make([]ShiftResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, nil
}

func (s *service) AutoCompletePast(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	rows, err := s.repo.FindPastScheduled(ctx, todayUTC())
	if err != nil {
		return 0, err
	}

	contracts := map[string]*contract.Contract{}
	completed := 0
	for i := range rows {
		row := &rows[i]
		if !endHasPassed(row, now) {
			continue
		}

		c, ok := contracts[row.ContractID.String()]
		if !ok {
			c, err = s.loadContract(ctx, row.ContractID.String())
			if err != nil {
				s.logger.Error("auto-complete contract load failed",
					zap.String("shift_id", row.ID.String()),
					zap.Error(err),
				)
				continue
			}
			contracts[row.ContractID.String()] = c
		}

		if err := s.completeShift(ctx, row, c); err != nil {
			s.logger.Error("auto-complete shift failed",
				zap.String("shift_id", row.ID.String()),
				zap.Error(err),
			)
			continue
		}
		completed++
	}

	if completed > 0 {
		s.logger.Info("auto-completed past shifts", zap.Int("count", completed))
	}
	return completed, nil
}

// completeShift decomposes pay with holiday context, persists the COMPLETED
// row with its outbox event, and refreshes the week and period aggregates.
func (s *service) completeShift(ctx context.Context, row *Shift, c *contract.Contract) error {
	if err := s.applyPay(ctx, row, c); err != nil {
		return err
	}
	row.Status = StatusCompleted

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, row); err != nil {
			return err
		}
		return s.queueScheduleEvent(ctx, tx, row, events.ShiftScheduleUpdated)
	})
	if err != nil {
		s.logger.Error("complete shift persist failed", zap.String("shift_id", row.ID.String()), zap.Error(err))
		return err
	}

	s.refreshAggregates(ctx, c, row.WeekStart, row.WorkDate)
	return nil
}

func (s *service) applyPay(ctx context.Context, row *Shift, c *contract.Contract) error {
	isHoliday, err := s.holidays.IsPublicHoliday(ctx, row.WorkDate)
	if err != nil {
		return err
	}
	b, err := Decompose(row.StartTime, row.EndTime, row.BreakMinutes, c.HourlyWage, isHoliday, c.IsSmallWorkplace)
	if err != nil {
		return err
	}
	if err := b.Validate(); err != nil {
		return err
	}
	row.WorkMinutes = b.WorkMinutes
	row.NightMinutes = b.NightMinutes
	row.BasePay = b.BasePay
	row.NightPay = b.NightPay
	row.HolidayPay = b.HolidayPay
	row.TotalPay = b.TotalPay
	return nil
}

// refreshAggregates recomputes the owning week and period after a completed
// shift changed. Best effort: a failure here must not fail the mutation that
// already committed, the next recompute trigger heals it.
func (s *service) refreshAggregates(ctx context.Context, c *contract.Contract, weekStart, workDate time.Time) {
	if _, err := s.allowances.Recompute(ctx, c, weekStart); err != nil {
		s.logger.Error("weekly allowance recompute failed",
			zap.String("contract_id", c.ID.String()),
			zap.String("week_start", weekStart.Format("2006-01-02")),
			zap.Error(err),
		)
	}
	s.triggerPayroll(ctx, c, workDate)
}

// triggerPayroll recomputes the pay period owning workDate, best effort.
func (s *service) triggerPayroll(ctx context.Context, c *contract.Contract, workDate time.Time) {
	if s.payroll == nil {
		return
	}
	if err := s.payroll.RecomputeForDate(ctx, c.ID.String(), workDate); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == apperror.CodeNotFound {
			// Nothing payable in the period yet.
			return
		}
		s.logger.Error("payroll recompute trigger failed",
			zap.String("contract_id", c.ID.String()),
			zap.String("work_date", workDate.Format("2006-01-02")),
			zap.Error(err),
		)
	}
}

func (s *service) checkOverlap(ctx context.Context, contractID string, workDate time.Time, startTime, endTime, excludeID string) error {
	lo, hi, err := clockSpan(startTime, endTime)
	if err != nil {
		return err
	}
	others, err := s.repo.FindActiveByDate(ctx, contractID, workDate)
	if err != nil {
		return err
	}
	for _, o := range others {
		if o.ID.String() == excludeID {
			continue
		}
		oLo, oHi, err := clockSpan(o.StartTime, o.EndTime)
		if err != nil {
			continue
		}
		if lo < oHi && oLo < hi {
			return shifterrors.ErrShiftOverlap
		}
	}
	return nil
}

func (s *service) queueScheduleEvent(ctx context.Context, tx *gorm.DB, row *Shift, eventType string) error {
	if s.outbox == nil {
		return nil
	}
	rid := contextutil.GetRequestID(ctx)
	event := events.ShiftScheduleEvent{
		EventType:  eventType,
		RequestID:  rid,
		ShiftID:    row.ID.String(),
		ContractID: row.ContractID.String(),
		WorkDate:   row.WorkDate.Format("2006-01-02"),
		StartTime:  row.StartTime,
		EndTime:    row.EndTime,
		Status:     row.Status,
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "shift",
		AggregateID:   row.ID.String(),
		EventType:     eventType,
		Topic:         events.ShiftScheduleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) findShift(ctx context.Context, id string) (*Shift, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shifterrors.ErrShiftNotFound
		}
		return nil, err
	}
	return row, nil
}

func (s *service) loadContract(ctx context.Context, id string) (*contract.Contract, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, shifterrors.ErrInvalidContractID
	}
	c, err := s.contracts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shifterrors.ErrContractNotFound
		}
		return nil, err
	}
	return c, nil
}

func todayUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// clockSpan maps a start/end pair onto minutes from the work date's
// midnight, end extended past midnight for overnight shifts.
func clockSpan(startTime, endTime string) (int, int, error) {
	start, err := parseClock(startTime)
	if err != nil {
		return 0, 0, err
	}
	end, err := parseClock(endTime)
	if err != nil {
		return 0, 0, err
	}
	if end <= start {
		end += minutesPerDay
	}
	return start, end, nil
}

func endHasPassed(row *Shift, now time.Time) bool {
	start, _ := parseClock(row.StartTime)
	end, endErr := parseClock(row.EndTime)
	if endErr != nil {
		return true
	}
	day := row.WorkDate
	if end <= start {
		day = day.AddDate(0, 0, 1)
	}
	endAt := day.Add(time.Duration(end) * time.Minute)
	return !now.Before(endAt)
}
