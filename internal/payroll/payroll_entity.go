package payroll

import (
	"time"

	"github.com/google/uuid"
)

// PaySummary is the canonical wage statement of one contract for one target
// month. The unique index makes the single-row-per-period guarantee a
// database invariant; the upsert protocol in the service keeps concurrent
// recomputations from ever inserting twice.
type PaySummary struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ContractID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_summary_contract_period"`
	Year       int       `gorm:"not null;uniqueIndex:idx_summary_contract_period"`
	Month      int       `gorm:"not null;uniqueIndex:idx_summary_contract_period"`

	PeriodStart time.Time `gorm:"type:date;not null"`
	PeriodEnd   time.Time `gorm:"type:date;not null"`
	DueDate     time.Time `gorm:"type:date;not null"`

	TotalWorkMinutes int64 `gorm:"type:bigint;not null;default:0"`

	BasePay     int64 `gorm:"type:bigint;not null;default:0"`
	OvertimePay int64 `gorm:"type:bigint;not null;default:0"`
	NightPay    int64 `gorm:"type:bigint;not null;default:0"`
	HolidayPay  int64 `gorm:"type:bigint;not null;default:0"`
	GrossPay    int64 `gorm:"type:bigint;not null;default:0"`

	NationalPension     int64 `gorm:"type:bigint;not null;default:0"`
	HealthInsurance     int64 `gorm:"type:bigint;not null;default:0"`
	LongTermCare        int64 `gorm:"type:bigint;not null;default:0"`
	EmploymentInsurance int64 `gorm:"type:bigint;not null;default:0"`
	TotalInsurance      int64 `gorm:"type:bigint;not null;default:0"`

	IncomeTax      int64 `gorm:"type:bigint;not null;default:0"`
	LocalIncomeTax int64 `gorm:"type:bigint;not null;default:0"`
	TotalTax       int64 `gorm:"type:bigint;not null;default:0"`

	TotalDeduction int64 `gorm:"type:bigint;not null;default:0"`
	NetPay         int64 `gorm:"type:bigint;not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PaySummary) TableName() string {
	return "pay_summaries"
}
