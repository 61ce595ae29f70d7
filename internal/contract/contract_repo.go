package contract

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=contract_repo.go -destination=mock/contract_repo_mock.go -package=mock
type Repository interface {
	FindByID(ctx context.Context, id string) (*Contract, error)
	FindAllActive(ctx context.Context) ([]Contract, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id string) (*Contract, error) {
	var c Contract
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *repository) FindAllActive(ctx context.Context) ([]Contract, error) {
	var contracts []Contract
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Find(&contracts).Error
	return contracts, err
}
