package shift

import "time"

type CreateShiftRequest struct {
	ContractID   string  `json:"contract_id" binding:"required,uuid"`
	WorkDate     string  `json:"work_date" binding:"required"`
	StartTime    string  `json:"start_time" binding:"required"`
	EndTime      string  `json:"end_time" binding:"required"`
	BreakMinutes int     `json:"break_minutes" binding:"gte=0"`
	Memo         *string `json:"memo" binding:"omitempty,max=255"`
	// Worker-submitted shifts wait for approval instead of entering the
	// schedule directly.
	RequiresApproval bool `json:"requires_approval"`
}

type UpdateShiftRequest struct {
	WorkDate     *string `json:"work_date"`
	StartTime    *string `json:"start_time"`
	EndTime      *string `json:"end_time"`
	BreakMinutes *int    `json:"break_minutes" binding:"omitempty,gte=0"`
	Memo         *string `json:"memo" binding:"omitempty,max=255"`
}

type ListShiftsQuery struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`
}

type ShiftResponse struct {
	ID           string  `json:"id"`
	ContractID   string  `json:"contract_id"`
	WorkDate     string  `json:"work_date"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	BreakMinutes int     `json:"break_minutes"`
	WorkMinutes  int     `json:"work_minutes"`
	NightMinutes int     `json:"night_minutes"`
	Status       string  `json:"status"`
	BasePay      int64   `json:"base_pay"`
	NightPay     int64   `json:"night_pay"`
	HolidayPay   int64   `json:"holiday_pay"`
	TotalPay     int64   `json:"total_pay"`
	WeekStart    string  `json:"week_start"`
	Memo         *string `json:"memo,omitempty"`
	IsModified   bool    `json:"is_modified"`
}

func mapToResponse(s Shift) ShiftResponse {
	return ShiftResponse{
		ID:           s.ID.String(),
		ContractID:   s.ContractID.String(),
		WorkDate:     s.WorkDate.Format("2006-01-02"),
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		BreakMinutes: s.BreakMinutes,
		WorkMinutes:  s.WorkMinutes,
		NightMinutes: s.NightMinutes,
		Status:       s.Status,
		BasePay:      s.BasePay,
		NightPay:     s.NightPay,
		HolidayPay:   s.HolidayPay,
		TotalPay:     s.TotalPay,
		WeekStart:    s.WeekStart.Format("2006-01-02"),
		Memo:         s.Memo,
		IsModified:   s.IsModified,
	}
}

func parseDate(v string) (time.Time, error) {
	return time.Parse("2006-01-02", v)
}
