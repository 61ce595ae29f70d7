package shift

import (
	"testing"

	shifterrors "github.com/Team-PayCheck/PayCheck-backend/internal/shift/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompose_DayShift(t *testing.T) {
	b, err := Decompose("09:00", "18:00", 60, 10000, false, false)
	require.NoError(t, err)
	assert.Equal(t, 480, b.WorkMinutes)
	assert.Equal(t, 0, b.NightMinutes)
	assert.Equal(t, int64(80000), b.BasePay)
	assert.Equal(t, int64(0), b.NightPay)
	assert.Equal(t, int64(0), b.HolidayPay)
	assert.Equal(t, int64(80000), b.TotalPay)
}

func TestDecompose_EveningIntoNightWindow(t *testing.T) {
	b, err := Decompose("18:00", "23:00", 0, 10000, false, false)
	require.NoError(t, err)
	assert.Equal(t, 300, b.WorkMinutes)
	assert.Equal(t, 60, b.NightMinutes)
	assert.Equal(t, int64(50000), b.BasePay)
	assert.Equal(t, int64(5000), b.NightPay)
}

func TestDecompose_OvernightAllNight(t *testing.T) {
	// 22:00 to 06:00 crosses midnight and sits entirely in the night window.
	b, err := Decompose("22:00", "06:00", 0, 10000, false, false)
	require.NoError(t, err)
	assert.Equal(t, 480, b.WorkMinutes)
	assert.Equal(t, 480, b.NightMinutes)
	assert.Equal(t, int64(80000), b.BasePay)
	assert.Equal(t, int64(40000), b.NightPay)
	assert.Equal(t, int64(120000), b.TotalPay)
}

func TestDecompose_EndEqualsStartIsFullDay(t *testing.T) {
	b, err := Decompose("09:00", "09:00", 0, 10000, false, false)
	require.NoError(t, err)
	assert.Equal(t, 1440, b.WorkMinutes)
	assert.Equal(t, 480, b.NightMinutes)
}

func TestDecompose_HolidayPremium(t *testing.T) {
	b, err := Decompose("09:00", "18:00", 60, 10000, true, false)
	require.NoError(t, err)
	assert.Equal(t, int64(80000), b.BasePay)
	assert.Equal(t, int64(40000), b.HolidayPay)
	assert.Equal(t, int64(120000), b.TotalPay)
}

func TestDecompose_SmallWorkplaceExemptFromPremiums(t *testing.T) {
	b, err := Decompose("22:00", "06:00", 0, 10000, true, true)
	require.NoError(t, err)
	assert.Equal(t, int64(80000), b.BasePay)
	assert.Equal(t, int64(0), b.NightPay)
	assert.Equal(t, int64(0), b.HolidayPay)
	assert.Equal(t, int64(80000), b.TotalPay)
}

func TestDecompose_FloorsEachComponent(t *testing.T) {
	// 50 minutes at 9985 won: 50*9985/60 = 8320.83..., floored per component.
	b, err := Decompose("23:00", "23:50", 0, 9985, false, false)
	require.NoError(t, err)
	assert.Equal(t, 50, b.WorkMinutes)
	assert.Equal(t, 50, b.NightMinutes)
	assert.Equal(t, int64(8320), b.BasePay)
	assert.Equal(t, int64(4160), b.NightPay)
	assert.Equal(t, b.BasePay+b.NightPay, b.TotalPay)
}

func TestDecompose_BreakExceedsSpan(t *testing.T) {
	_, err := Decompose("09:00", "10:00", 90, 10000, false, false)
	assert.ErrorIs(t, err, shifterrors.ErrNegativeWorkMinutes)

	_, err = Decompose("09:00", "18:00", -1, 10000, false, false)
	assert.ErrorIs(t, err, shifterrors.ErrNegativeWorkMinutes)
}

func TestDecompose_InvalidClock(t *testing.T) {
	for _, v := range []string{"9am", "25:00", "09:60", "0900", ""} {
		_, err := Decompose(v, "18:00", 0, 10000, false, false)
		assert.ErrorIs(t, err, shifterrors.ErrInvalidClockFormat, v)
	}
}

func TestNightOverlap_SplitAcrossMidnight(t *testing.T) {
	// 20:00 to 02:00: night portion is 22:00-02:00.
	lo, hi, err := clockSpan("20:00", "02:00")
	require.NoError(t, err)
	assert.Equal(t, 240, nightOverlap(lo, hi))

	// 04:00 to 08:00: night portion is 04:00-06:00.
	lo, hi, err = clockSpan("04:00", "08:00")
	require.NoError(t, err)
	assert.Equal(t, 120, nightOverlap(lo, hi))
}

func TestPayBreakdown_Validate(t *testing.T) {
	good := PayBreakdown{WorkMinutes: 60, BasePay: 100, NightPay: 20, HolidayPay: 0, TotalPay: 120}
	assert.NoError(t, good.Validate())

	bad := good
	bad.TotalPay = 121
	assert.ErrorIs(t, bad.Validate(), shifterrors.ErrInconsistentPay)

	neg := good
	neg.NightPay = -1
	assert.ErrorIs(t, neg.Validate(), shifterrors.ErrInconsistentPay)
}
