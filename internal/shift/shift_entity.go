package shift

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusScheduled       = "SCHEDULED"
	StatusCompleted       = "COMPLETED"
	StatusPendingApproval = "PENDING_APPROVAL"
	StatusDeleted         = "DELETED"
)

// Shift is one scheduled or worked block of time under a contract. Deletion
// is the DELETED status rather than a row delete, so corrected history stays
// auditable; every aggregation filters it out.
type Shift struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ContractID uuid.UUID `gorm:"type:uuid;not null;index"`

	WorkDate  time.Time `gorm:"type:date;not null;index"`
	StartTime string    `gorm:"type:varchar(5);not null"`
	EndTime   string    `gorm:"type:varchar(5);not null"`

	BreakMinutes int `gorm:"type:int;not null;default:0"`
	WorkMinutes  int `gorm:"type:int;not null;default:0"`
	NightMinutes int `gorm:"type:int;not null;default:0"`

	Status string `gorm:"type:varchar(20);not null;index"`

	BasePay    int64 `gorm:"type:bigint;not null;default:0"`
	NightPay   int64 `gorm:"type:bigint;not null;default:0"`
	HolidayPay int64 `gorm:"type:bigint;not null;default:0"`
	TotalPay   int64 `gorm:"type:bigint;not null;default:0"`

	// Monday of the ISO week this shift belongs to; keys the owning
	// weekly allowance row.
	WeekStart time.Time `gorm:"type:date;not null;index"`

	Memo       *string `gorm:"type:varchar(255)"`
	IsModified bool    `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Shift) TableName() string {
	return "shifts"
}
