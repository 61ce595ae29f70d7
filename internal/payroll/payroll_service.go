package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Team-PayCheck/PayCheck-backend/internal/allowance"
	"github.com/Team-PayCheck/PayCheck-backend/internal/contract"
	"github.com/Team-PayCheck/PayCheck-backend/internal/deduction"
	"github.com/Team-PayCheck/PayCheck-backend/internal/events"
	"github.com/Team-PayCheck/PayCheck-backend/internal/messaging/kafka"
	payrollerrors "github.com/Team-PayCheck/PayCheck-backend/internal/payroll/errors"
	"github.com/Team-PayCheck/PayCheck-backend/internal/shared/contextutil"
	"github.com/Team-PayCheck/PayCheck-backend/internal/shared/pgerr"
	"github.com/Team-PayCheck/PayCheck-backend/internal/shift"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ShiftSource supplies the completed shifts of a period. Satisfied by the
// shift repository.
type ShiftSource interface {
	FindCompletedInRange(ctx context.Context, contractID string, from, to time.Time) ([]shift.Shift, error)
}

// AllowanceSource supplies the weekly allowance candidates around a period.
// Satisfied by the allowance repository.
type AllowanceSource interface {
	FindByWeekStartBetween(ctx context.Context, contractID string, from, to time.Time) ([]allowance.WeeklyAllowance, error)
}

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	// Recompute rebuilds the pay summary of (contract, year, month) from
	// scratch and commits exactly one row for it, no matter how many
	// triggers run concurrently.
	Recompute(ctx context.Context, contractID string, year, month int) (PaySummaryResponse, error)
	// RecomputeForDate recomputes whichever period owns the work date.
	RecomputeForDate(ctx context.Context, contractID string, date time.Time) error
	GetByContractAndPeriod(ctx context.Context, contractID string, year, month int) (PaySummaryResponse, error)
	ListByContract(ctx context.Context, contractID string) ([]PaySummaryResponse, error)
	// RunMonthlySweep recomputes every active contract whose payday falls
	// on now's date. Run daily by the worker; per-contract failures are
	// logged and skipped.
	RunMonthlySweep(ctx context.Context, now time.Time) (int, error)
}

type service struct {
	db         *gorm.DB
	repo       Repository
	persister  Persister
	shifts     ShiftSource
	allowances AllowanceSource
	contracts  contract.Repository
	engine     *deduction.Engine
	outbox     kafka.OutboxRepository
	logger     *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	persister Persister,
	shifts ShiftSource,
	allowances AllowanceSource,
	contracts contract.Repository,
	engine *deduction.Engine,
	outbox kafka.OutboxRepository,
) Service {
	return &service{
		db:         db,
		repo:       repo,
		persister:  persister,
		shifts:     shifts,
		allowances: allowances,
		contracts:  contracts,
		engine:     engine,
		outbox:     outbox,
		logger:     zap.L().Named("payroll.service"),
	}
}

func (s *service) Recompute(ctx context.Context, contractID string, year, month int) (PaySummaryResponse, error) {
	if month < 1 || month > 12 || year < 2000 || year > 2100 {
		return PaySummaryResponse{}, payrollerrors.ErrInvalidPeriod
	}
	c, err := s.loadContract(ctx, contractID)
	if err != nil {
		return PaySummaryResponse{}, err
	}

	summary, err := s.buildSummary(ctx, c, year, month)
	if err != nil {
		return PaySummaryResponse{}, err
	}

	saved, err := s.upsert(ctx, summary)
	if err != nil {
		return PaySummaryResponse{}, err
	}

	s.queueSalaryComputedEvent(ctx, saved)
	s.logger.Info("pay summary recomputed",
		zap.String("contract_id", contractID),
		zap.Int("year", year),
		zap.Int("month", month),
		zap.Int64("gross_pay", saved.GrossPay),
		zap.Int64("net_pay", saved.NetPay),
	)
	return mapToResponse(*saved), nil
}

// buildSummary derives every monetary field of the period from its completed
// shifts and closed weekly allowances.
func (s *service) buildSummary(ctx context.Context, c *contract.Contract, year, month int) (*PaySummary, error) {
	p := ResolvePeriod(c.PaymentDay, year, time.Month(month))

	shifts, err := s.shifts.FindCompletedInRange(ctx, c.ID.String(), p.Start, p.End)
	if err != nil {
		return nil, err
	}
	if len(shifts) == 0 {
		return nil, payrollerrors.ErrNoCompletedShifts
	}

	var totalMinutes, shiftBase, night, holiday int64
	for _, sh := range shifts {
		totalMinutes += int64(sh.WorkMinutes)
		shiftBase += sh.BasePay
		night += sh.NightPay
		holiday += sh.HolidayPay
	}

	// Candidate weeks start in the target or the previous calendar month;
	// the period filter below decides which of them actually pay out now.
	candFrom := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	candTo := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1)
	weeks, err := s.allowances.FindByWeekStartBetween(ctx, c.ID.String(), candFrom, candTo)
	if err != nil {
		return nil, err
	}

	var paidLeave, overtime int64
	for _, w := range weeks {
		if !p.IncludesWeek(w.WeekEnd) {
			continue
		}
		paidLeave += w.PaidLeaveAllowance
		overtime += w.OvertimeAllowance
	}

	summary := &PaySummary{
		ContractID:       c.ID,
		Year:             year,
		Month:            month,
		PeriodStart:      p.Start,
		PeriodEnd:        p.End,
		DueDate:          p.Due,
		TotalWorkMinutes: totalMinutes,
		BasePay:          shiftBase + paidLeave,
		OvertimePay:      overtime,
		NightPay:         night,
		HolidayPay:       holiday,
	}
	summary.GrossPay = summary.BasePay + summary.OvertimePay + summary.NightPay + summary.HolidayPay

	ded, err := s.engine.Calculate(summary.GrossPay, c.DeductionPolicy)
	if err != nil {
		return nil, err
	}
	summary.NationalPension = ded.NationalPension
	summary.HealthInsurance = ded.HealthInsurance
	summary.LongTermCare = ded.LongTermCare
	summary.EmploymentInsurance = ded.EmploymentInsurance
	summary.TotalInsurance = ded.TotalInsurance
	summary.IncomeTax = ded.IncomeTax
	summary.LocalIncomeTax = ded.LocalIncomeTax
	summary.TotalTax = ded.TotalTax
	summary.TotalDeduction = ded.TotalDeduction
	summary.NetPay = summary.GrossPay - ded.TotalDeduction

	return summary, nil
}

// upsert commits exactly one row for the summary's (contract, year, month).
// The locked-update path handles the common case; first-time periods insert
// through the independent persister, and an insert race falls back to the
// locked update against the winner's row.
func (s *service) upsert(ctx context.Context, summary *PaySummary) (*PaySummary, error) {
	saved, err := s.lockedUpdate(ctx, summary)
	if err == nil {
		return saved, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	summary.ID = uuid.New()
	if err := s.persister.TrySave(ctx, summary); err != nil {
		if pgerr.IsUniqueViolation(err) {
			return s.lockedUpdate(ctx, summary)
		}
		return nil, err
	}
	return summary, nil
}

func (s *service) lockedUpdate(ctx context.Context, values *PaySummary) (*PaySummary, error) {
	var out *PaySummary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)
		row, err := qtx.FindForUpdate(ctx, values.ContractID.String(), values.Year, values.Month)
		if err != nil {
			if pgerr.IsLockNotAvailable(err) {
				return payrollerrors.ErrPeriodLocked
			}
			return err
		}
		applyValues(row, values)
		if err := qtx.Update(ctx, row); err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// applyValues overwrites every derived field of row in place, keeping the
// row's identity columns.
func applyValues(row, values *PaySummary) {
	row.PeriodStart = values.PeriodStart
	row.PeriodEnd = values.PeriodEnd
	row.DueDate = values.DueDate
	row.TotalWorkMinutes = values.TotalWorkMinutes
	row.BasePay = values.BasePay
	row.OvertimePay = values.OvertimePay
	row.NightPay = values.NightPay
	row.HolidayPay = values.HolidayPay
	row.GrossPay = values.GrossPay
	row.NationalPension = values.NationalPension
	row.HealthInsurance = values.HealthInsurance
	row.LongTermCare = values.LongTermCare
	row.EmploymentInsurance = values.EmploymentInsurance
	row.TotalInsurance = values.TotalInsurance
	row.IncomeTax = values.IncomeTax
	row.LocalIncomeTax = values.LocalIncomeTax
	row.TotalTax = values.TotalTax
	row.TotalDeduction = values.TotalDeduction
	row.NetPay = values.NetPay
}

func (s *service) RecomputeForDate(ctx context.Context, contractID string, date time.Time) error {
	c, err := s.loadContract(ctx, contractID)
	if err != nil {
		return err
	}

	// Dates on or after the clamped payday fall into the next month's
	// period; everything earlier pays out in the date's own month.
	year, month := date.Year(), date.Month()
	if date.Day() >= clampToMonth(year, month, c.PaymentDay).Day() {
		next := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
		year, month = next.Year(), next.Month()
	}

	_, err = s.Recompute(ctx, contractID, year, int(month))
	return err
}

func (s *service) GetByContractAndPeriod(ctx context.Context, contractID string, year, month int) (PaySummaryResponse, error) {
	if _, err := uuid.Parse(contractID); err != nil {
		return PaySummaryResponse{}, payrollerrors.ErrInvalidContractID
	}
	row, err := s.repo.FindByContractAndPeriod(ctx, contractID, year, month)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PaySummaryResponse{}, payrollerrors.ErrSummaryNotFound
		}
		return PaySummaryResponse{}, err
	}
	return mapToResponse(*row), nil
}

func (s *service) ListByContract(ctx context.Context, contractID string) ([]PaySummaryResponse, error) {
	if _, err := uuid.Parse(contractID); err != nil {
		return nil, payrollerrors.ErrInvalidContractID
	}
	rows, err := s.repo.FindAllByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	res := make([]PaySummaryResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, nil
}

func (s *service) RunMonthlySweep(ctx context.Context, now time.Time) (int, error) {
	contracts, err := s.contracts.FindAllActive(ctx)
	if err != nil {
		return 0, err
	}

	recomputed := 0
	for _, c := range contracts {
		due := clampToMonth(now.Year(), now.Month(), c.PaymentDay)
		if due.Day() != now.Day() {
			continue
		}

		if _, err := s.Recompute(ctx, c.ID.String(), now.Year(), int(now.Month())); err != nil {
			if errors.Is(err, payrollerrors.ErrNoCompletedShifts) {
				continue
			}
			s.logger.Error("monthly sweep recompute failed",
				zap.String("contract_id", c.ID.String()),
				zap.Error(err),
			)
			continue
		}
		recomputed++
	}

	if recomputed > 0 {
		s.logger.Info("monthly payroll sweep finished",
			zap.String("date", now.Format("2006-01-02")),
			zap.Int("recomputed", recomputed),
		)
	}
	return recomputed, nil
}

func (s *service) queueSalaryComputedEvent(ctx context.Context, summary *PaySummary) {
	if s.outbox == nil {
		return
	}
	rid := contextutil.GetRequestID(ctx)
	event := events.SalaryComputedEvent{
		EventType:  "salary.computed",
		RequestID:  rid,
		SummaryID:  summary.ID.String(),
		ContractID: summary.ContractID.String(),
		Year:       summary.Year,
		Month:      summary.Month,
		GrossPay:   summary.GrossPay,
		NetPay:     summary.NetPay,
		DueDate:    summary.DueDate.Format("2006-01-02"),
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal salary computed event failed", zap.Error(err))
		return
	}
	err = s.outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "pay_summary",
		AggregateID:   summary.ID.String(),
		EventType:     event.EventType,
		Topic:         events.SalaryComputedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
	if err != nil {
		s.logger.Error("queue salary computed event failed",
			zap.String("summary_id", summary.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *service) loadContract(ctx context.Context, id string) (*contract.Contract, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, payrollerrors.ErrInvalidContractID
	}
	c, err := s.contracts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payrollerrors.ErrContractNotFound
		}
		return nil, err
	}
	return c, nil
}
