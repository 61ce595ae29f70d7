package contract

import (
	"time"

	"github.com/Team-PayCheck/PayCheck-backend/internal/deduction"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contract holds the wage attributes payroll needs. Contract administration
// itself (CRUD, worker onboarding) lives outside this service.
type Contract struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkerName string    `gorm:"column:worker_name;type:varchar(120);not null"`

	HourlyWage int64 `gorm:"type:bigint;not null"`

	// Day of month wages are due, 1-31. Clamped to the month's last day
	// when the month is shorter.
	PaymentDay int `gorm:"type:smallint;not null"`

	DeductionPolicy deduction.Policy `gorm:"type:varchar(30);not null;default:'NONE'"`

	// Workplaces under five employees are exempt from night/holiday premiums.
	IsSmallWorkplace bool `gorm:"not null;default:false"`

	IsActive  bool `gorm:"not null;default:true;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Contract) TableName() string {
	return "worker_contracts"
}
