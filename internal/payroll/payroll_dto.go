package payroll

type RecomputeRequest struct {
	ContractID string `json:"contract_id" binding:"required,uuid"`
	Year       int    `json:"year" binding:"required,min=2000,max=2100"`
	Month      int    `json:"month" binding:"required,min=1,max=12"`
}

type PeriodQuery struct {
	Year  int `form:"year" binding:"required,min=2000,max=2100"`
	Month int `form:"month" binding:"required,min=1,max=12"`
}

type PaySummaryResponse struct {
	ID         string `json:"id"`
	ContractID string `json:"contract_id"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`

	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	DueDate     string `json:"due_date"`

	TotalWorkMinutes int64 `json:"total_work_minutes"`

	BasePay     int64 `json:"base_pay"`
	OvertimePay int64 `json:"overtime_pay"`
	NightPay    int64 `json:"night_pay"`
	HolidayPay  int64 `json:"holiday_pay"`
	GrossPay    int64 `json:"gross_pay"`

	NationalPension     int64 `json:"national_pension"`
	HealthInsurance     int64 `json:"health_insurance"`
	LongTermCare        int64 `json:"long_term_care"`
	EmploymentInsurance int64 `json:"employment_insurance"`
	TotalInsurance      int64 `json:"total_insurance"`

	IncomeTax      int64 `json:"income_tax"`
	LocalIncomeTax int64 `json:"local_income_tax"`
	TotalTax       int64 `json:"total_tax"`

	TotalDeduction int64 `json:"total_deduction"`
	NetPay         int64 `json:"net_pay"`
}

func mapToResponse(s PaySummary) PaySummaryResponse {
	return PaySummaryResponse{
		ID:                  s.ID.String(),
		ContractID:          s.ContractID.String(),
		Year:                s.Year,
		Month:               s.Month,
		PeriodStart:         s.PeriodStart.Format("2006-01-02"),
		PeriodEnd:           s.PeriodEnd.Format("2006-01-02"),
		DueDate:             s.DueDate.Format("2006-01-02"),
		TotalWorkMinutes:    s.TotalWorkMinutes,
		BasePay:             s.BasePay,
		OvertimePay:         s.OvertimePay,
		NightPay:            s.NightPay,
		HolidayPay:          s.HolidayPay,
		GrossPay:            s.GrossPay,
		NationalPension:     s.NationalPension,
		HealthInsurance:     s.HealthInsurance,
		LongTermCare:        s.LongTermCare,
		EmploymentInsurance: s.EmploymentInsurance,
		TotalInsurance:      s.TotalInsurance,
		IncomeTax:           s.IncomeTax,
		LocalIncomeTax:      s.LocalIncomeTax,
		TotalTax:            s.TotalTax,
		TotalDeduction:      s.TotalDeduction,
		NetPay:              s.NetPay,
	}
}
