package events

import "time"

const ShiftScheduleTopic = "paycheck.shift.schedule.v1"

const (
	ShiftScheduleCreated = "shift.schedule.created"
	ShiftScheduleUpdated = "shift.schedule.updated"
	ShiftScheduleDeleted = "shift.schedule.deleted"
)

type ShiftScheduleEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	ShiftID    string    `json:"shift_id"`
	ContractID string    `json:"contract_id"`
	WorkDate   string    `json:"work_date"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}
