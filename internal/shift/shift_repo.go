package shift

import (
	"context"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=shift_repo.go -destination=mock/shift_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, s *Shift) error
	Update(ctx context.Context, s *Shift) error
	FindByID(ctx context.Context, id string) (*Shift, error)
	// FindActiveByDate returns the non-deleted shifts of a contract on one
	// work date, for overlap checks.
	FindActiveByDate(ctx context.Context, contractID string, workDate time.Time) ([]Shift, error)
	FindByContractAndRange(ctx context.Context, contractID string, from, to time.Time) ([]Shift, error)
	FindCompletedInRange(ctx context.Context, contractID string, from, to time.Time) ([]Shift, error)
	SumCompletedMinutesInWeek(ctx context.Context, contractID string, weekStart time.Time) (int64, error)
	// FindPastScheduled returns SCHEDULED shifts whose work date is before
	// the cutoff date. Shifts on the previous day are included so overnight
	// blocks are only swept after their end time has passed.
	FindPastScheduled(ctx context.Context, cutoff time.Time) ([]Shift, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, s *Shift) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) Update(ctx context.Context, s *Shift) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Shift, error) {
	var s Shift
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *repository) FindActiveByDate(ctx context.Context, contractID string, workDate time.Time) ([]Shift, error) {
	var rows []Shift
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Where("work_date = ?", workDate.Format("2006-01-02")).
		Where("status <> ?", StatusDeleted).
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByContractAndRange(ctx context.Context, contractID string, from, to time.Time) ([]Shift, error) {
	var rows []Shift
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Where("work_date BETWEEN ? AND ?", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Where("status <> ?", StatusDeleted).
		Order("work_date ASC, start_time ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindCompletedInRange(ctx context.Context, contractID string, from, to time.Time) ([]Shift, error) {
	var rows []Shift
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Where("work_date BETWEEN ? AND ?", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Where("status = ?", StatusCompleted).
		Order("work_date ASC, start_time ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) SumCompletedMinutesInWeek(ctx context.Context, contractID string, weekStart time.Time) (int64, error) {
	weekEnd := weekStart.AddDate(0, 0, 6)
	var total int64
	err := r.db.WithContext(ctx).
		Model(&Shift{}).
		Where("contract_id = ?", contractID).
		Where("work_date BETWEEN ? AND ?", weekStart.Format("2006-01-02"), weekEnd.Format("2006-01-02")).
		Where("status = ?", StatusCompleted).
		Select("COALESCE(SUM(work_minutes), 0)").
		Scan(&total).Error
	return total, err
}

func (r *repository) FindPastScheduled(ctx context.Context, cutoff time.Time) ([]Shift, error) {
	var rows []Shift
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusScheduled).
		Where("work_date < ?", cutoff.Format("2006-01-02")).
		Order("work_date ASC").
		Limit(500).
		Find(&rows).Error
	return rows, err
}
