package holiday

import (
	"time"

	"github.com/google/uuid"
)

type PublicHoliday struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	HolidayDate time.Time `gorm:"type:date;not null;uniqueIndex"`
	Name        string    `gorm:"type:varchar(120);not null"`
	CreatedAt   time.Time
}

func (PublicHoliday) TableName() string {
	return "public_holidays"
}
