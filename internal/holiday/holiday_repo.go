package holiday

import (
	"context"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=holiday_repo.go -destination=mock/holiday_repo_mock.go -package=mock
type Repository interface {
	FindDatesInYear(ctx context.Context, year int) ([]time.Time, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindDatesInYear(ctx context.Context, year int) ([]time.Time, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)

	var dates []time.Time
	err := r.db.WithContext(ctx).
		Model(&PublicHoliday{}).
		Where("holiday_date >= ? AND holiday_date < ?", start, end).
		Order("holiday_date ASC").
		Pluck("holiday_date", &dates).Error
	return dates, err
}
