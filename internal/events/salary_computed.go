package events

import "time"

const SalaryComputedTopic = "paycheck.payroll.salary.computed.v1"

type SalaryComputedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	SummaryID  string    `json:"summary_id"`
	ContractID string    `json:"contract_id"`
	Year       int       `json:"year"`
	Month      int       `json:"month"`
	GrossPay   int64     `json:"gross_pay"`
	NetPay     int64     `json:"net_pay"`
	DueDate    string    `json:"due_date"`
	OccurredAt time.Time `json:"occurred_at"`
}
