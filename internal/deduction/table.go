package deduction

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// WithholdingTable is the simplified income tax schedule, keyed by dependent
// count. Each entry holds ordered [min,max) salary bands in thousands of won.
// Loaded once at process start and treated as immutable afterwards.
type WithholdingTable struct {
	rangesByFamily map[int][]taxRange
}

type taxRange struct {
	min int64
	max int64
	tax int64
}

type tableRow struct {
	MinSalaryThousand int64 `json:"min_salary_thousand"`
	MaxSalaryThousand int64 `json:"max_salary_thousand"`
	FamilyCount       int   `json:"family_count"`
	IncomeTaxWon      int64 `json:"income_tax_won"`
}

type tableFile struct {
	Year int        `json:"year"`
	Rows []tableRow `json:"rows"`
}

// LoadTable reads the withholding table resource. Any failure here must be
// treated as fatal by the caller; the engine never falls back to zero tax.
func LoadTable(path string) (*WithholdingTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read withholding table %s: %w", path, err)
	}

	var data tableFile
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode withholding table %s: %w", path, err)
	}
	if len(data.Rows) == 0 {
		return nil, fmt.Errorf("withholding table %s has no rows", path)
	}

	return newTable(data.Rows), nil
}

func newTable(rows []tableRow) *WithholdingTable {
	byFamily := make(map[int][]taxRange)
	for _, row := range rows {
		byFamily[row.FamilyCount] = append(byFamily[row.FamilyCount], taxRange{
			min: row.MinSalaryThousand,
			max: row.MaxSalaryThousand,
			tax: row.IncomeTaxWon,
		})
	}
	for family := range byFamily {
		ranges := byFamily[family]
		sort.Slice(ranges, func(i, j int) bool { return ranges[i].min < ranges[j].min })
		byFamily[family] = ranges
	}
	return &WithholdingTable{rangesByFamily: byFamily}
}

// Lookup returns the fixed tax for a salary band. A row with min == max only
// matches that exact band (used for the table's terminal row).
func (t *WithholdingTable) Lookup(salaryThousand int64, familyCount int) (int64, bool) {
	ranges, ok := t.rangesByFamily[familyCount]
	if !ok {
		return 0, false
	}
	for _, r := range ranges {
		if r.min == r.max {
			if salaryThousand == r.min {
				return r.tax, true
			}
			continue
		}
		if salaryThousand >= r.min && salaryThousand < r.max {
			return r.tax, true
		}
	}
	return 0, false
}
