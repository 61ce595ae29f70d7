package shift

import (
	"fmt"
	"strconv"
	"strings"

	shifterrors "github.com/Team-PayCheck/PayCheck-backend/internal/shift/errors"
)

const (
	minutesPerDay = 24 * 60
	nightStartMin = 22 * 60 // 22:00
	nightEndMin   = 6 * 60  // 06:00
)

// PayBreakdown is the decomposed pay of a single shift. All amounts are
// whole won, floored at the point each component is computed; TotalPay is
// the exact sum with no further rounding.
type PayBreakdown struct {
	WorkMinutes  int
	NightMinutes int
	BasePay      int64
	NightPay     int64
	HolidayPay   int64
	TotalPay     int64
}

// Decompose turns one shift into worked minutes and base/night/holiday pay.
// End at or before start means the shift crosses midnight. Night time is the
// overlap with [22:00, 06:00), split across the boundary when needed. Small
// workplaces (under five employees) are exempt from both premiums; the
// holiday premium additionally requires the holiday flag.
func Decompose(startTime, endTime string, breakMinutes int, hourlyWage int64, isHoliday, isSmallWorkplace bool) (PayBreakdown, error) {
	start, err := parseClock(startTime)
	if err != nil {
		return PayBreakdown{}, err
	}
	end, err := parseClock(endTime)
	if err != nil {
		return PayBreakdown{}, err
	}
	if breakMinutes < 0 {
		return PayBreakdown{}, shifterrors.ErrNegativeWorkMinutes
	}

	if end <= start {
		end += minutesPerDay
	}

	workMinutes := end - start - breakMinutes
	if workMinutes < 0 {
		return PayBreakdown{}, shifterrors.ErrNegativeWorkMinutes
	}

	nightMinutes := nightOverlap(start, end)

	b := PayBreakdown{
		WorkMinutes:  workMinutes,
		NightMinutes: nightMinutes,
	}
	b.BasePay = int64(workMinutes) * hourlyWage / 60
	if !isSmallWorkplace {
		b.NightPay = int64(nightMinutes) * hourlyWage / 120
		if isHoliday {
			b.HolidayPay = int64(workMinutes) * hourlyWage / 120
		}
	}
	b.TotalPay = b.BasePay + b.NightPay + b.HolidayPay
	return b, nil
}

// nightOverlap counts the minutes of [start, end) falling inside the night
// window. Both bounds are minutes from midnight of the work date; end may
// reach into the following day, so the window repeats across two days.
func nightOverlap(start, end int) int {
	windows := [][2]int{
		{0, nightEndMin},
		{nightStartMin, minutesPerDay + nightEndMin},
		{minutesPerDay + nightStartMin, 2 * minutesPerDay},
	}
	total := 0
	for _, w := range windows {
		lo := max(start, w[0])
		hi := min(end, w[1])
		if hi > lo {
			total += hi - lo
		}
	}
	return total
}

// Validate checks a persisted breakdown for internal consistency. Run after
// decomposition and before commit so a bad row never reaches aggregation.
func (b PayBreakdown) Validate() error {
	if b.WorkMinutes < 0 || b.BasePay < 0 || b.NightPay < 0 || b.HolidayPay < 0 {
		return shifterrors.ErrInconsistentPay
	}
	if b.TotalPay != b.BasePay+b.NightPay+b.HolidayPay {
		return shifterrors.ErrInconsistentPay
	}
	return nil
}

func parseClock(v string) (int, error) {
	parts := strings.Split(v, ":")
	if len(parts) != 2 {
		return 0, invalidClock(v)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, invalidClock(v)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, invalidClock(v)
	}
	return h*60 + m, nil
}

func invalidClock(v string) error {
	return fmt.Errorf("%w: %q", shifterrors.ErrInvalidClockFormat, v)
}
