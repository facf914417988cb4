package proration

import (
	"testing"
	"time"

	ierr "github.com/kopikita/roastery/internal/errors"
	"github.com/kopikita/roastery/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalDays(t *testing.T) {
	tests := []struct {
		name          string
		start         time.Time
		end           time.Time
		expected      int
		expectedError bool
	}{
		{
			name:     "thirty_one_day_month",
			start:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			expected: 31,
		},
		{
			name:     "annual_period",
			start:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: 366, // 2024 is a leap year
		},
		{
			name:     "partial_day_counts_as_full_day",
			start:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC),
			expected: 31,
		},
		{
			name:          "end_equals_start",
			start:         time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			end:           time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			expectedError: true,
		},
		{
			name:          "end_before_start",
			start:         time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
			end:           time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TotalDays(tt.start, tt.end)
			if tt.expectedError {
				require.Error(t, err)
				assert.True(t, ierr.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestElapsedDays(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	totalDays, err := TotalDays(start, end)
	require.NoError(t, err)
	require.Equal(t, 31, totalDays)

	tests := []struct {
		name     string
		now      time.Time
		expected int
	}{
		{
			name:     "before_start_clamps_to_zero",
			now:      start.Add(-48 * time.Hour),
			expected: 0,
		},
		{
			name:     "at_start",
			now:      start,
			expected: 0,
		},
		{
			name:     "partial_first_day_counts_as_one",
			now:      start.Add(6 * time.Hour),
			expected: 1,
		},
		{
			name:     "mid_period",
			now:      start.AddDate(0, 0, 10),
			expected: 10,
		},
		{
			name:     "at_end_clamps_to_total",
			now:      end,
			expected: totalDays,
		},
		{
			name:     "past_end_clamps_to_total",
			now:      end.AddDate(0, 0, 5),
			expected: totalDays,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ElapsedDays(start, tt.now, totalDays))
		})
	}
}

func TestRemainingDays(t *testing.T) {
	end := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		now      time.Time
		expected int
	}{
		{
			name:     "full_period_remaining",
			now:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			expected: 31,
		},
		{
			name:     "partial_day_counts_in_tenants_favor",
			now:      time.Date(2024, 3, 31, 18, 0, 0, 0, time.UTC),
			expected: 1,
		},
		{
			name:     "at_end_is_zero",
			now:      end,
			expected: 0,
		},
		{
			name:     "past_end_is_zero",
			now:      end.AddDate(0, 1, 0),
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RemainingDays(end, tt.now))
		})
	}
}

// The elapsed and remaining day counts are ceiled independently, so for a
// `now` strictly inside the period their sum is either the total or total+1
// (when `now` falls mid-day both sides round the split day up). That is the
// documented ceiling behavior, not a bug.
func TestElapsedPlusRemainingPartition(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	totalDays, err := TotalDays(start, end)
	require.NoError(t, err)

	instants := []time.Time{
		start.Add(1 * time.Hour),
		start.Add(36 * time.Hour),
		start.AddDate(0, 0, 15),
		start.AddDate(0, 0, 15).Add(11 * time.Hour),
		end.Add(-1 * time.Minute),
	}

	for _, now := range instants {
		sum := ElapsedDays(start, now, totalDays) + RemainingDays(end, now)
		assert.Contains(t, []int{totalDays, totalDays + 1}, sum,
			"elapsed+remaining at %s", now)
	}
}

func TestNextPeriodEnd(t *testing.T) {
	tests := []struct {
		name          string
		start         time.Time
		interval      types.BillingInterval
		expected      time.Time
		expectedError bool
	}{
		{
			name:     "monthly_same_day",
			start:    time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
			interval: types.BILLING_INTERVAL_MONTHLY,
			expected: time.Date(2024, 4, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:     "monthly_clamps_to_last_valid_day",
			start:    time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			interval: types.BILLING_INTERVAL_MONTHLY,
			expected: time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "monthly_clamps_to_leap_day",
			start:    time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			interval: types.BILLING_INTERVAL_MONTHLY,
			expected: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "monthly_december_rolls_over_year",
			start:    time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC),
			interval: types.BILLING_INTERVAL_MONTHLY,
			expected: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "annual_same_day_next_year",
			start:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			interval: types.BILLING_INTERVAL_ANNUAL,
			expected: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:          "invalid_interval",
			start:         time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			interval:      types.BillingInterval("weekly"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextPeriodEnd(tt.start, tt.interval)
			if tt.expectedError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.expected), "expected %s got %s", tt.expected, got)
		})
	}
}
