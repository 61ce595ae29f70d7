package allowance

import (
	"context"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=allowance_repo.go -destination=mock/allowance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, a *WeeklyAllowance) error
	Update(ctx context.Context, a *WeeklyAllowance) error
	FindByContractAndWeek(ctx context.Context, contractID string, weekStart time.Time) (*WeeklyAllowance, error)
	// FindByWeekStartBetween returns a contract's allowance rows whose week
	// start falls in [from, to], the candidate set for period aggregation.
	FindByWeekStartBetween(ctx context.Context, contractID string, from, to time.Time) ([]WeeklyAllowance, error)
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

func (r *repository) Create(ctx context.Context, a *WeeklyAllowance) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) Update(ctx context.Context, a *WeeklyAllowance) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *repository) FindByContractAndWeek(ctx context.Context, contractID string, weekStart time.Time) (*WeeklyAllowance, error) {
	var a WeeklyAllowance
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Where("week_start = ?", weekStart.Format("2006-01-02")).
		First(&a).Error
	return &a, err
}

func (r *repository) FindByWeekStartBetween(ctx context.Context, contractID string, from, to time.Time) ([]WeeklyAllowance, error) {
	var rows []WeeklyAllowance
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Where("week_start BETWEEN ? AND ?", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("week_start ASC").
		Find(&rows).Error
	return rows, err
}
