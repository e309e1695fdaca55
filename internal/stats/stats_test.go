package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttendanceRateEmptyInputYieldsZero(t *testing.T) {
	got := AttendanceRate(0, 0)
	assert.Equal(t, 0.0, got)
	assert.False(t, math.IsNaN(got))
	assert.Equal(t, 0.0, AttendanceRate(5, -1))
}

func TestAttendanceRate(t *testing.T) {
	assert.InDelta(t, 50.0, AttendanceRate(1, 2), 0.001)
	assert.InDelta(t, 100.0, AttendanceRate(3, 3), 0.001)
}

func TestRateZeroDenominator(t *testing.T) {
	assert.Equal(t, 0.0, Rate(10, 0))
	assert.InDelta(t, 2.5, Rate(5, 2), 0.001)
}

func TestFolds(t *testing.T) {
	type payment struct {
		Amount float64
		Method string
	}
	rows := []payment{{100, "cash"}, {250, "transfer"}, {50, "cash"}}

	assert.Equal(t, 2, CountWhere(rows, func(p payment) bool { return p.Method == "cash" }))
	assert.InDelta(t, 400.0, SumBy(rows, func(p payment) float64 { return p.Amount }), 0.001)
	assert.Equal(t, map[string]int{"cash": 2, "transfer": 1}, GroupCount(rows, func(p payment) string { return p.Method }))

	assert.Equal(t, 0, CountWhere(nil, func(p payment) bool { return true }))
	assert.Equal(t, 0.0, SumBy(nil, func(p payment) float64 { return p.Amount }))
}
