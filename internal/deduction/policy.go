package deduction

// Policy selects how tax and social insurance are withheld from gross pay.
type Policy string

const (
	PolicyFreelancer      Policy = "FREELANCER"        // 3% income tax + 0.3% local income tax
	PolicyNone            Policy = "NONE"              // no tax, no insurance
	PolicyTaxOnly         Policy = "TAX_ONLY"          // withholding-table tax, no insurance
	PolicyTaxAndInsurance Policy = "TAX_AND_INSURANCE" // withholding-table tax + four major insurances
)

func (p Policy) Valid() bool {
	switch p {
	case PolicyFreelancer, PolicyNone, PolicyTaxOnly, PolicyTaxAndInsurance:
		return true
	}
	return false
}

// Result carries every deduction subcomponent in whole won. Each field is
// floored at the point it is first computed and never re-rounded.
type Result struct {
	NationalPension     int64 `json:"national_pension"`
	HealthInsurance     int64 `json:"health_insurance"`
	LongTermCare        int64 `json:"long_term_care"`
	EmploymentInsurance int64 `json:"employment_insurance"`
	TotalInsurance      int64 `json:"total_insurance"`

	IncomeTax      int64 `json:"income_tax"`
	LocalIncomeTax int64 `json:"local_income_tax"`
	TotalTax       int64 `json:"total_tax"`

	TotalDeduction int64 `json:"total_deduction"`
}
