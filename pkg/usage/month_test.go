package usage_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodmoney/quota/pkg/usage"
)

func TestMonthOf(t *testing.T) {
	t.Parallel()

	t.Run("uses utc", func(t *testing.T) {
		t.Parallel()

		tokyo := time.FixedZone("JST", 9*60*60)
		// 2024-04-01 08:00 in Tokyo is still March in UTC.
		assert.Equal(t, usage.Month("2024-03"), usage.MonthOf(time.Date(2024, 4, 1, 8, 0, 0, 0, tokyo)))
	})

	t.Run("last instant of the month", func(t *testing.T) {
		t.Parallel()

		end := time.Date(2024, 3, 31, 23, 59, 59, 999_999_999, time.UTC)
		assert.Equal(t, usage.Month("2024-03"), usage.MonthOf(end))
		assert.Equal(t, usage.Month("2024-04"), usage.MonthOf(end.Add(time.Nanosecond)))
	})
}

func TestMonth_Next(t *testing.T) {
	t.Parallel()

	assert.Equal(t, usage.Month("2024-04"), usage.Month("2024-03").Next())
	assert.Equal(t, usage.Month("2025-01"), usage.Month("2024-12").Next())
	assert.Equal(t, usage.Month("2024-03"), usage.Month("2024-02").Next(), "leap february")
}

func TestParseMonth(t *testing.T) {
	t.Parallel()

	m, err := usage.ParseMonth("2024-03")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), m.Start())

	for _, bad := range []string{"", "2024-3", "2024-13", "March"} {
		_, err := usage.ParseMonth(bad)
		assert.ErrorIs(t, err, usage.ErrInvalidMonth, bad)
	}
}
