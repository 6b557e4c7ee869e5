package formatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"

	"invitegen/internal/model"
)

func TestBuildRRule(t *testing.T) {
	loc := DefaultOptions().Location

	tests := []struct {
		name    string
		pattern *model.RecurringPattern
		want    string
	}{
		{
			name:    "weekly until end date wins over count",
			pattern: sampleTemplate().Recurring,
			want:    "FREQ=WEEKLY;BYDAY=MO,WE;UNTIL=20240501T065959Z",
		},
		{
			name:    "daily count",
			pattern: &model.RecurringPattern{Enabled: true, Frequency: model.FrequencyDaily, Occurrences: 4},
			want:    "FREQ=DAILY;COUNT=4",
		},
		{
			name:    "monthly open ended",
			pattern: &model.RecurringPattern{Enabled: true, Frequency: model.FrequencyMonthly},
			want:    "FREQ=MONTHLY",
		},
		{
			name:    "days ignored unless weekly",
			pattern: &model.RecurringPattern{Enabled: true, Frequency: model.FrequencyDaily, DaysOfWeek: []string{"Mon"}},
			want:    "FREQ=DAILY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BuildRRule(tt.pattern, loc)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)

			_, err := rrule.StrToRRule(got)
			assert.NoError(t, err)
		})
	}

	_, ok := BuildRRule(&model.RecurringPattern{Frequency: model.FrequencyDaily}, loc)
	assert.False(t, ok)
}

func TestExpandOccurrencesCount(t *testing.T) {
	opts := DefaultOptions()
	tpl := &model.EventTemplate{
		Date: "2024-06-01", Time: "09:00",
		Recurring: &model.RecurringPattern{Enabled: true, Frequency: model.FrequencyDaily, Occurrences: 3},
	}

	got, truncated, err := ExpandOccurrences(tpl, opts, 0)
	require.NoError(t, err)
	assert.False(t, truncated)
	require.Len(t, got, 3)
	assert.True(t, got[0].Equal(time.Date(2024, 6, 1, 9, 0, 0, 0, opts.Location)))
	assert.True(t, got[2].Equal(time.Date(2024, 6, 3, 9, 0, 0, 0, opts.Location)))
}

func TestExpandOccurrencesEndDateWins(t *testing.T) {
	opts := DefaultOptions()
	tpl := &model.EventTemplate{
		Date: "2024-06-03", Time: "10:00",
		Recurring: &model.RecurringPattern{
			Enabled:     true,
			Frequency:   model.FrequencyWeekly,
			DaysOfWeek:  []string{"Mon", "Wed"},
			EndDate:     "2024-06-12",
			Occurrences: 2,
		},
	}

	got, truncated, err := ExpandOccurrences(tpl, opts, 0)
	require.NoError(t, err)
	assert.False(t, truncated)

	days := make([]int, 0, len(got))
	for _, occ := range got {
		days = append(days, occ.In(opts.Location).Day())
	}
	assert.Equal(t, []int{3, 5, 10, 12}, days)
}

func TestExpandOccurrencesOpenEndedIsCapped(t *testing.T) {
	tpl := &model.EventTemplate{
		Date: "2024-01-15", Time: "08:00",
		Recurring: &model.RecurringPattern{Enabled: true, Frequency: model.FrequencyMonthly},
	}

	got, truncated, err := ExpandOccurrences(tpl, DefaultOptions(), 5)
	require.NoError(t, err)
	assert.True(t, truncated)
	assert.Len(t, got, 5)
}

func TestExpandOccurrencesFarFutureEndDate(t *testing.T) {
	opts := DefaultOptions()
	tpl := &model.EventTemplate{
		Date: "2024-01-01", Time: "09:00",
		Recurring: &model.RecurringPattern{Enabled: true, Frequency: model.FrequencyDaily, EndDate: "9999-12-31"},
	}

	start := time.Now()
	got, truncated, err := ExpandOccurrences(tpl, opts, MaxOccurrences)
	require.NoError(t, err)
	assert.True(t, truncated)
	require.Len(t, got, MaxOccurrences)
	assert.True(t, got[MaxOccurrences-1].Equal(time.Date(2024, 4, 9, 9, 0, 0, 0, opts.Location)))
	assert.Less(t, time.Since(start), time.Second)
}

func TestExpandOccurrencesExactlyLimit(t *testing.T) {
	tpl := &model.EventTemplate{
		Date: "2024-06-01", Time: "09:00",
		Recurring: &model.RecurringPattern{Enabled: true, Frequency: model.FrequencyDaily, Occurrences: 5},
	}

	got, truncated, err := ExpandOccurrences(tpl, DefaultOptions(), 5)
	require.NoError(t, err)
	assert.False(t, truncated)
	assert.Len(t, got, 5)
}

func TestExpandOccurrencesErrors(t *testing.T) {
	_, _, err := ExpandOccurrences(&model.EventTemplate{Date: "2024-01-15", Time: "08:00"}, DefaultOptions(), 5)
	assert.ErrorIs(t, err, ErrNotRecurring)

	_, _, err = ExpandOccurrences(&model.EventTemplate{Date: "2024-01-15"}, DefaultOptions(), 5)
	assert.ErrorIs(t, err, ErrMissingStart)
}
