package allowance

import (
	"time"

	"github.com/google/uuid"
)

// WeeklyAllowance aggregates one contract's completed work for a Monday to
// Sunday week into the statutory paid-leave allowance and the weekly
// overtime allowance. Exactly one row exists per (contract, week start).
type WeeklyAllowance struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ContractID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_allowance_contract_week"`

	WeekStart time.Time `gorm:"type:date;not null;uniqueIndex:idx_allowance_contract_week"`
	WeekEnd   time.Time `gorm:"type:date;not null"`

	TotalWorkMinutes   int64 `gorm:"type:bigint;not null;default:0"`
	PaidLeaveAllowance int64 `gorm:"type:bigint;not null;default:0"`
	OvertimeAllowance  int64 `gorm:"type:bigint;not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (WeeklyAllowance) TableName() string {
	return "weekly_allowances"
}

// WeekStartOf returns the Monday of the ISO week containing d, at midnight
// in d's location.
func WeekStartOf(d time.Time) time.Time {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	offset := int(day.Weekday()-time.Monday+7) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekEndOf returns the Sunday closing the ISO week containing d.
func WeekEndOf(d time.Time) time.Time {
	return WeekStartOf(d).AddDate(0, 0, 6)
}
