package payroll

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByContractAndPeriod(ctx context.Context, contractID string, year, month int) (*PaySummary, error)
	// FindForUpdate takes the row lock for the period inside the caller's
	// transaction, waiting at most the session lock_timeout.
	FindForUpdate(ctx context.Context, contractID string, year, month int) (*PaySummary, error)
	Update(ctx context.Context, s *PaySummary) error
	FindAllByContract(ctx context.Context, contractID string) ([]PaySummary, error)
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

func (r *repository) FindByContractAndPeriod(ctx context.Context, contractID string, year, month int) (*PaySummary, error) {
	var s PaySummary
	err := r.db.WithContext(ctx).
		Where("contract_id = ? AND year = ? AND month = ?", contractID, year, month).
		First(&s).Error
	return &s, err
}

func (r *repository) FindForUpdate(ctx context.Context, contractID string, year, month int) (*PaySummary, error) {
	// Bounded wait: a recomputation stuck behind a long writer surfaces
	// 55P03 instead of queueing forever.
	if err := r.db.WithContext(ctx).Exec("SET LOCAL lock_timeout = '3000ms'").Error; err != nil {
		return nil, err
	}

	var s PaySummary
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("contract_id = ? AND year = ? AND month = ?", contractID, year, month).
		First(&s).Error
	return &s, err
}

func (r *repository) Update(ctx context.Context, s *PaySummary) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *repository) FindAllByContract(ctx context.Context, contractID string) ([]PaySummary, error) {
	var rows []PaySummary
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("year DESC, month DESC").
		Find(&rows).Error
	return rows, err
}
