package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInterval(t *testing.T) {
	iv, err := NewInterval("2024-06-01", "2024-06-05")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), iv.Start)
	assert.Equal(t, time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC), iv.End)
}

func TestNewIntervalBadFormat(t *testing.T) {
	_, err := NewInterval("01-06-2024", "2024-06-05")
	assert.ErrorIs(t, err, ErrInvalidDateFormat)

	_, err = NewInterval("2024-06-01", "tomorrow")
	assert.ErrorIs(t, err, ErrInvalidDateFormat)
}

func TestNormalizeDayCrossesTimezones(t *testing.T) {
	// 23:30 in UTC+10 is the previous day in UTC terms once converted
	loc := time.FixedZone("UTC+10", 10*3600)
	late := time.Date(2024, 6, 2, 23, 30, 0, 0, loc)

	normalized := NormalizeDay(late)
	assert.Equal(t, time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC), normalized)
}

func TestValidate(t *testing.T) {
	today := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	t.Run("start equals today is valid", func(t *testing.T) {
		iv, err := NewInterval("2024-06-01", "2024-06-03")
		require.NoError(t, err)
		assert.NoError(t, iv.Validate(today))
	})

	t.Run("single day is valid", func(t *testing.T) {
		iv, err := NewInterval("2024-06-02", "2024-06-02")
		require.NoError(t, err)
		assert.NoError(t, iv.Validate(today))
	})

	t.Run("end before start", func(t *testing.T) {
		iv, err := NewInterval("2024-06-05", "2024-06-01")
		require.NoError(t, err)
		assert.ErrorIs(t, iv.Validate(today), ErrInvalidInterval)
	})

	t.Run("start in the past", func(t *testing.T) {
		iv, err := NewInterval("2024-05-31", "2024-06-03")
		require.NoError(t, err)
		assert.ErrorIs(t, iv.Validate(today), ErrIntervalInPast)
	})
}

func TestOverlaps(t *testing.T) {
	mk := func(start, end string) Interval {
		iv, err := NewInterval(start, end)
		if err != nil {
			t.Fatalf("bad interval: %v", err)
		}
		return iv
	}

	cases := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"disjoint", mk("2024-06-01", "2024-06-03"), mk("2024-06-04", "2024-06-06"), false},
		{"shared boundary day", mk("2024-06-01", "2024-06-05"), mk("2024-06-05", "2024-06-07"), true},
		{"contained", mk("2024-06-01", "2024-06-10"), mk("2024-06-03", "2024-06-04"), true},
		{"identical", mk("2024-06-01", "2024-06-03"), mk("2024-06-01", "2024-06-03"), true},
		{"single day inside", mk("2024-06-02", "2024-06-02"), mk("2024-06-01", "2024-06-03"), true},
		{"adjacent days", mk("2024-06-01", "2024-06-02"), mk("2024-06-03", "2024-06-04"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Overlaps(tc.b))
			assert.Equal(t, tc.want, tc.b.Overlaps(tc.a), "overlap must be symmetric")
		})
	}
}

func TestContains(t *testing.T) {
	iv, err := NewInterval("2024-06-01", "2024-06-05")
	require.NoError(t, err)

	assert.True(t, iv.Contains(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, iv.Contains(time.Date(2024, 6, 5, 23, 0, 0, 0, time.UTC)))
	assert.False(t, iv.Contains(time.Date(2024, 6, 6, 0, 0, 0, 0, time.UTC)))
	assert.False(t, iv.Contains(time.Date(2024, 5, 31, 23, 0, 0, 0, time.UTC)))
}

func TestDays(t *testing.T) {
	single, err := NewInterval("2024-06-01", "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, 1, single.Days())

	week, err := NewInterval("2024-06-01", "2024-06-07")
	require.NoError(t, err)
	assert.Equal(t, 7, week.Days())
}

func TestConflictErrorMessage(t *testing.T) {
	bookConflict := &ConflictError{Scope: ConflictScopeBook}
	assert.Contains(t, bookConflict.Error(), "book")

	readerConflict := &ConflictError{Scope: ConflictScopeReader}
	assert.Contains(t, readerConflict.Error(), "reader")
}
