package period_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ecolefin/internal/period"
)

var paris = mustLoad("Europe/Paris")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}

	return loc
}

func fixedClock(t time.Time) period.Clock {
	return func() time.Time { return t }
}

func at(loc *time.Location, y int, m time.Month, d, h, min, s, ms int) time.Time {
	return time.Date(y, m, d, h, min, s, ms*int(time.Millisecond), loc)
}

func TestResolver_Resolve(t *testing.T) {
	type args struct {
		descriptor period.Descriptor
	}

	type testCase struct {
		name      string
		args      args
		wantStart time.Time
		wantEnd   time.Time
	}

	utc := time.UTC

	tests := []testCase{
		{
			name:      "Day",
			args:      args{descriptor: period.Descriptor{Period: period.KindDay, ReferenceDate: "2024-03-14"}},
			wantStart: at(utc, 2024, 3, 14, 0, 0, 0, 0),
			wantEnd:   at(utc, 2024, 3, 14, 23, 59, 59, 999),
		},
		{
			name:      "WeekFromWednesday",
			args:      args{descriptor: period.Descriptor{Period: period.KindWeek, ReferenceDate: "2024-05-15"}},
			wantStart: at(utc, 2024, 5, 13, 0, 0, 0, 0),
			wantEnd:   at(utc, 2024, 5, 19, 23, 59, 59, 999),
		},
		{
			name:      "WeekFromSundayBelongsToPreviousMonday",
			args:      args{descriptor: period.Descriptor{Period: period.KindWeek, ReferenceDate: "2024-05-19"}},
			wantStart: at(utc, 2024, 5, 13, 0, 0, 0, 0),
			wantEnd:   at(utc, 2024, 5, 19, 23, 59, 59, 999),
		},
		{
			name:      "WeekFromMonday",
			args:      args{descriptor: period.Descriptor{Period: period.KindWeek, ReferenceDate: "2024-05-13"}},
			wantStart: at(utc, 2024, 5, 13, 0, 0, 0, 0),
			wantEnd:   at(utc, 2024, 5, 19, 23, 59, 59, 999),
		},
		{
			name:      "WeekAcrossYearEnd",
			args:      args{descriptor: period.Descriptor{Period: period.KindWeek, ReferenceDate: "2025-01-01"}},
			wantStart: at(utc, 2024, 12, 30, 0, 0, 0, 0),
			wantEnd:   at(utc, 2025, 1, 5, 23, 59, 59, 999),
		},
		{
			name:      "MonthLeapFebruary",
			args:      args{descriptor: period.Descriptor{Period: period.KindMonth, ReferenceDate: "2024-02-10"}},
			wantStart: at(utc, 2024, 2, 1, 0, 0, 0, 0),
			wantEnd:   at(utc, 2024, 2, 29, 23, 59, 59, 999),
		},
		{
			name:      "QuarterStartsOnFirstDay",
			args:      args{descriptor: period.Descriptor{Period: period.KindQuarter, ReferenceDate: "2024-04-01"}},
			wantStart: at(utc, 2024, 4, 1, 0, 0, 0, 0),
			wantEnd:   at(utc, 2024, 6, 30, 23, 59, 59, 999),
		},
		{
			name:      "QuarterLast",
			args:      args{descriptor: period.Descriptor{Period: period.KindQuarter, ReferenceDate: "2024-12-31"}},
			wantStart: at(utc, 2024, 10, 1, 0, 0, 0, 0),
			wantEnd:   at(utc, 2024, 12, 31, 23, 59, 59, 999),
		},
		{
			name:      "SemesterJune30IsFirstHalf",
			args:      args{descriptor: period.Descriptor{Period: period.KindSemester, ReferenceDate: "2024-06-30"}},
			wantStart: at(utc, 2024, 1, 1, 0, 0, 0, 0),
			wantEnd:   at(utc, 2024, 6, 30, 23, 59, 59, 999),
		},
		{
			name:      "SemesterJuly1IsSecondHalf",
			args:      args{descriptor: period.Descriptor{Period: period.KindSemester, ReferenceDate: "2024-07-01"}},
			wantStart: at(utc, 2024, 7, 1, 0, 0, 0, 0),
			wantEnd:   at(utc, 2024, 12, 31, 23, 59, 59, 999),
		},
		{
			name:      "Year",
			args:      args{descriptor: period.Descriptor{Period: period.KindYear, ReferenceDate: "2023-08-20"}},
			wantStart: at(utc, 2023, 1, 1, 0, 0, 0, 0),
			wantEnd:   at(utc, 2023, 12, 31, 23, 59, 59, 999),
		},
		{
			name:      "ReferenceTimestampIsAccepted",
			args:      args{descriptor: period.Descriptor{Period: period.KindDay, ReferenceDate: "2024-03-14T18:30:00.000"}},
			wantStart: at(utc, 2024, 3, 14, 0, 0, 0, 0),
			wantEnd:   at(utc, 2024, 3, 14, 23, 59, 59, 999),
		},
		{
			name:      "MissingReferenceUsesClock",
			args:      args{descriptor: period.Descriptor{Period: period.KindMonth}},
			wantStart: at(utc, 2024, 9, 1, 0, 0, 0, 0),
			wantEnd:   at(utc, 2024, 9, 30, 23, 59, 59, 999),
		},
		{
			name:      "UnparseableReferenceUsesClock",
			args:      args{descriptor: period.Descriptor{Period: period.KindDay, ReferenceDate: "yesterday"}},
			wantStart: at(utc, 2024, 9, 18, 0, 0, 0, 0),
			wantEnd:   at(utc, 2024, 9, 18, 23, 59, 59, 999),
		},
		{
			name: "CustomSnapsToWholeDays",
			args: args{descriptor: period.Descriptor{
				Period:    period.KindCustom,
				StartDate: "2024-05-01T10:00:00",
				EndDate:   "2024-05-10",
			}},
			wantStart: at(utc, 2024, 5, 1, 0, 0, 0, 0),
			wantEnd:   at(utc, 2024, 5, 10, 23, 59, 59, 999),
		},
		{
			name: "CustomSingleDay",
			args: args{descriptor: period.Descriptor{
				Period:    period.KindCustom,
				StartDate: "2024-05-01",
				EndDate:   "2024-05-01",
			}},
			wantStart: at(utc, 2024, 5, 1, 0, 0, 0, 0),
			wantEnd:   at(utc, 2024, 5, 1, 23, 59, 59, 999),
		},
	}

	now := at(utc, 2024, 9, 18, 14, 5, 0, 0)
	resolver := period.NewResolver(fixedClock(now), utc)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.Resolve(tt.args.descriptor)
			require.NoError(t, err)

			assert.True(t, tt.wantStart.Equal(got.Start), "start: want %s, got %s", tt.wantStart, got.Start)
			assert.True(t, tt.wantEnd.Equal(got.End), "end: want %s, got %s", tt.wantEnd, got.End)
			assert.False(t, got.End.Before(got.Start))
		})
	}
}

func TestResolver_Resolve_Errors(t *testing.T) {
	type testCase struct {
		name       string
		descriptor period.Descriptor
		wantErr    error
	}

	tests := []testCase{
		{
			name:       "UnknownKind",
			descriptor: period.Descriptor{Period: "fortnight"},
			wantErr:    period.ErrUnknownPeriod,
		},
		{
			name:       "EmptyKind",
			descriptor: period.Descriptor{},
			wantErr:    period.ErrUnknownPeriod,
		},
		{
			name:       "CustomStartAfterEnd",
			descriptor: period.Descriptor{Period: period.KindCustom, StartDate: "2024-05-10", EndDate: "2024-05-01"},
			wantErr:    period.ErrInvalidCustomRange,
		},
		{
			name:       "CustomMissingStart",
			descriptor: period.Descriptor{Period: period.KindCustom, EndDate: "2024-05-01"},
			wantErr:    period.ErrInvalidCustomRange,
		},
		{
			name:       "CustomMissingEnd",
			descriptor: period.Descriptor{Period: period.KindCustom, StartDate: "2024-05-01"},
			wantErr:    period.ErrInvalidCustomRange,
		},
		{
			name:       "CustomUnparseable",
			descriptor: period.Descriptor{Period: period.KindCustom, StartDate: "01/05/2024", EndDate: "2024-05-10"},
			wantErr:    period.ErrInvalidCustomRange,
		},
	}

	resolver := period.NewResolver(fixedClock(time.Now()), time.UTC)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolver.Resolve(tt.descriptor)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResolver_Resolve_AllKindsOrdered(t *testing.T) {
	resolver := period.NewResolver(fixedClock(at(paris, 2024, 3, 31, 2, 30, 0, 0)), paris)

	for _, kind := range period.Kinds() {
		got, err := resolver.Resolve(period.Descriptor{Period: kind})
		require.NoError(t, err, kind)
		assert.True(t, got.Start.Before(got.End), kind)
		assert.True(t, got.Contains(resolver.Now()), kind)
	}
}

func TestResolver_Resolve_DayKeepsCalendarDate(t *testing.T) {
	// 2024-03-31 is a 23 hour day in Paris.
	resolver := period.NewResolver(nil, paris)

	got, err := resolver.Resolve(period.Descriptor{Period: period.KindDay, ReferenceDate: "2024-03-31"})
	require.NoError(t, err)

	y1, m1, d1 := got.Start.Date()
	y2, m2, d2 := got.End.Date()
	assert.Equal(t, []int{y1, int(m1), d1}, []int{y2, int(m2), d2})
	assert.Equal(t, "2024-03-31T00:00:00.000", got.StartISO())
	assert.Equal(t, "2024-03-31T23:59:59.999", got.EndISO())
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, period.KindQuarter, period.ParseKind(" Quarter "))
	assert.Equal(t, period.Kind("nope"), period.ParseKind("nope"))
	assert.Len(t, period.Kinds(), 6)
}

func TestResolver_ParseTime(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	r := period.NewResolver(nil, paris)

	type testCase struct {
		in   string
		want time.Time
	}

	tests := []testCase{
		{in: "2024-06-15", want: time.Date(2024, 6, 15, 0, 0, 0, 0, paris)},
		{in: "2024-06-15T08:30", want: time.Date(2024, 6, 15, 8, 30, 0, 0, paris)},
		{in: "2024-06-15T08:30:05.250", want: time.Date(2024, 6, 15, 8, 30, 5, 250_000_000, paris)},
		{in: "2024-06-15T06:30:00Z", want: time.Date(2024, 6, 15, 8, 30, 0, 0, paris)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := r.ParseTime(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, paris, got.Location())
		})
	}

	_, err = r.ParseTime("15/06/2024")
	assert.ErrorIs(t, err, period.ErrInvalidTimestamp)
}
