package deduction

import (
	"net/http"

	"github.com/Team-PayCheck/PayCheck-backend/internal/shared/apperror"
)

const (
	defaultFamilyCount     = 1
	minFamilyCount         = 1
	maxFamilyCount         = 11
	minTableSalaryThousand = 770
	maxTableSalaryThousand = 10000

	// Minimum monthly wage used as the national pension base (390,000 won)
	minimumPensionWage = 390_000
)

// Four major insurance rates, expressed as exact fractions of won:
// national pension 4.5%, health 3.545%, long-term care 12.95% of health,
// employment 0.9%.
func nationalPensionOf(base int64) int64  { return base * 45 / 1000 }
func healthInsuranceOf(gross int64) int64 { return gross * 3545 / 100_000 }
func longTermCareOf(health int64) int64   { return health * 1295 / 10_000 }
func employmentInsuranceOf(gross int64) int64 {
	return gross * 9 / 1000
}

// Engine computes tax and insurance deductions for a gross monthly pay.
// It owns the process-wide withholding table; construct it once at startup.
type Engine struct {
	table      *WithholdingTable
	strategies map[Policy]func(*Engine, int64) Result
}

func NewEngine(tablePath string) (*Engine, error) {
	table, err := LoadTable(tablePath)
	if err != nil {
		return nil, err
	}
	return NewEngineWithTable(table), nil
}

func NewEngineWithTable(table *WithholdingTable) *Engine {
	e := &Engine{table: table}
	e.strategies = map[Policy]func(*Engine, int64) Result{
		PolicyFreelancer:      (*Engine).freelancer,
		PolicyNone:            (*Engine).none,
		PolicyTaxOnly:         (*Engine).taxOnly,
		PolicyTaxAndInsurance: (*Engine).taxAndInsurance,
	}
	return e
}

// Calculate dispatches to the per-policy strategy.
func (e *Engine) Calculate(grossPay int64, policy Policy) (Result, error) {
	strategy, ok := e.strategies[policy]
	if !ok {
		return Result{}, apperror.New(
			apperror.CodeInvalidInput,
			"unknown deduction policy: "+string(policy),
			http.StatusBadRequest,
		)
	}
	return strategy(e, grossPay), nil
}

func (e *Engine) freelancer(grossPay int64) Result {
	r := Result{
		IncomeTax:      grossPay * 3 / 100,
		LocalIncomeTax: grossPay * 3 / 1000,
	}
	r.TotalTax = r.IncomeTax + r.LocalIncomeTax
	r.TotalDeduction = r.TotalTax
	return r
}

func (e *Engine) none(int64) Result {
	return Result{}
}

func (e *Engine) taxOnly(grossPay int64) Result {
	r := Result{
		IncomeTax: e.incomeTaxFromTable(grossPay, defaultFamilyCount),
	}
	r.LocalIncomeTax = r.IncomeTax / 10
	r.TotalTax = r.IncomeTax + r.LocalIncomeTax
	r.TotalDeduction = r.TotalTax
	return r
}

func (e *Engine) taxAndInsurance(grossPay int64) Result {
	pensionBase := grossPay
	if pensionBase < minimumPensionWage {
		pensionBase = minimumPensionWage
	}
	pensionBase = pensionBase / 1000 * 1000 // truncate to whole thousands

	r := Result{
		NationalPension:     nationalPensionOf(pensionBase),
		HealthInsurance:     healthInsuranceOf(grossPay),
		EmploymentInsurance: employmentInsuranceOf(grossPay),
		IncomeTax:           e.incomeTaxFromTable(grossPay, defaultFamilyCount),
	}
	r.LongTermCare = longTermCareOf(r.HealthInsurance)
	r.TotalInsurance = r.NationalPension + r.HealthInsurance + r.LongTermCare + r.EmploymentInsurance
	r.LocalIncomeTax = r.IncomeTax / 10
	r.TotalTax = r.IncomeTax + r.LocalIncomeTax
	r.TotalDeduction = r.TotalInsurance + r.TotalTax
	return r
}

// incomeTaxFromTable resolves monthly income tax: zero below the table floor,
// the band's fixed value inside the table, zero in any uncovered gap up to the
// table ceiling, and the progressive formula above it.
func (e *Engine) incomeTaxFromTable(grossPay int64, familyCount int) int64 {
	if grossPay <= 0 {
		return 0
	}

	if familyCount < minFamilyCount {
		familyCount = minFamilyCount
	}
	if familyCount > maxFamilyCount {
		familyCount = maxFamilyCount
	}

	salaryThousand := grossPay / 1000
	if salaryThousand < minTableSalaryThousand {
		return 0
	}

	if tax, ok := e.table.Lookup(salaryThousand, familyCount); ok {
		return tax
	}
	if salaryThousand <= maxTableSalaryThousand {
		// Uncovered band inside the table's documented range. Possibly a
		// schedule coverage gap; kept as zero to match the published table.
		return 0
	}

	return e.formulaTax(grossPay, familyCount)
}

// formulaTax implements the schedule's footnote formula for salaries above the
// table ceiling: the ceiling band's value plus progressive marginal amounts.
// The three lowest brackets scale the excess by a 0.98 adjustment factor.
func (e *Engine) formulaTax(grossPay int64, familyCount int) int64 {
	baseTax, _ := e.table.Lookup(maxTableSalaryThousand, familyCount)

	const (
		tenMillion         = 10_000_000
		fourteenMillion    = 14_000_000
		twentyEightMillion = 28_000_000
		thirtyMillion      = 30_000_000
		fortyFiveMillion   = 45_000_000
		eightySevenMillion = 87_000_000
	)

	over := func(threshold int64) int64 {
		if grossPay <= threshold {
			return 0
		}
		return grossPay - threshold
	}

	switch {
	case grossPay <= fourteenMillion:
		// 0.98 * 0.35 == 343/1000
		return baseTax + over(tenMillion)*343/1000 + 25_000
	case grossPay <= twentyEightMillion:
		// 0.98 * 0.38 == 3724/10000
		return baseTax + 1_397_000 + over(fourteenMillion)*3724/10_000
	case grossPay <= thirtyMillion:
		// 0.98 * 0.40 == 392/1000
		return baseTax + 6_610_600 + over(twentyEightMillion)*392/1000
	case grossPay <= fortyFiveMillion:
		return baseTax + 7_394_600 + over(thirtyMillion)*40/100
	case grossPay <= eightySevenMillion:
		return baseTax + 13_394_600 + over(fortyFiveMillion)*42/100
	default:
		return baseTax + 31_034_600 + over(eightySevenMillion)*45/100
	}
}
