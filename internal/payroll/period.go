package payroll

import "time"

// Period is the date range whose completed work is paid out in the target
// month, plus the due date the payment lands on. For payday p and target
// month M it runs from p of M-1 through the day before p of M; paydays past
// the end of a short month clamp to its last day, so a payday-31 contract's
// March period starts on February's last day.
type Period struct {
	Start time.Time
	End   time.Time
	Due   time.Time
}

// ResolvePeriod computes the pay period of (year, month) for a contract paid
// on paymentDay.
func ResolvePeriod(paymentDay, year int, month time.Month) Period {
	prev := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)

	start := clampToMonth(prev.Year(), prev.Month(), paymentDay)
	due := clampToMonth(year, month, paymentDay)
	return Period{
		Start: start,
		End:   due.AddDate(0, 0, -1),
		Due:   due,
	}
}

// IncludesWeek reports whether a weekly allowance belongs to this period: the
// week must have closed inside it. Weeks still open at the period end carry
// over to the next period; weeks that closed just before the start were
// carried over from the previous one.
func (p Period) IncludesWeek(weekEnd time.Time) bool {
	return !weekEnd.Before(p.Start) && !weekEnd.After(p.End)
}

func clampToMonth(year int, month time.Month, day int) time.Time {
	last := daysInMonth(year, month)
	if day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
