package utils

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)

func TestParseTimeExpressionDurations(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
	}{
		{"10s", 10 * time.Second},
		{"10m", 10 * time.Minute},
		{"2h", 2 * time.Hour},
		{"3d", 72 * time.Hour},
		{"1h30m", 90 * time.Minute},
		{"1d 2h 3m 4s", 26*time.Hour + 3*time.Minute + 4*time.Second},
		{"5m5m", 10 * time.Minute},
		{" 2H ", 2 * time.Hour},
		{"0s", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseTimeExpression(tt.input, fixedNow)
			require.True(t, ok)
			assert.Equal(t, fixedNow.Add(tt.expected), got)
		})
	}
}

func TestParseTimeExpressionDurationSums(t *testing.T) {
	for s := 0; s < 3; s++ {
		for m := 0; m < 3; m++ {
			for h := 0; h < 3; h++ {
				for d := 0; d < 3; d++ {
					input := fmt.Sprintf("%dd%dh%dm%ds", d, h, m, s)
					want := time.Duration(d)*24*time.Hour + time.Duration(h)*time.Hour +
						time.Duration(m)*time.Minute + time.Duration(s)*time.Second
					got, ok := ParseTimeExpression(input, fixedNow)
					require.True(t, ok, input)
					assert.Equal(t, fixedNow.Add(want), got, input)
				}
			}
		}
	}
}

func TestParseTimeExpressionClock(t *testing.T) {
	morning := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	afternoon := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)

	got, ok := ParseTimeExpression("14:30", morning)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC), got)

	got, ok = ParseTimeExpression("14:30", afternoon)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 2, 14, 30, 0, 0, time.UTC), got)

	// Exactly now rolls over to tomorrow.
	got, ok = ParseTimeExpression("15:00", afternoon)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 2, 15, 0, 0, 0, time.UTC), got)
}

func TestParseTimeExpressionDateTime(t *testing.T) {
	want := time.Date(2024, 12, 25, 15, 0, 0, 0, time.UTC)
	for _, now := range []time.Time{fixedNow, want.Add(48 * time.Hour), time.Unix(0, 0)} {
		got, ok := ParseTimeExpression("25/12/2024 15:00", now)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestParseTimeExpressionNoMatch(t *testing.T) {
	inputs := []string{
		"",
		"tomorrow",
		"10",
		"10x",
		"m10",
		"25:00",
		"12:60",
		"31/2/2024 10:00",
		"0/1/2024 10:00",
		"1/13/2024 10:00",
		"99999999999999999999s",
		"9999999999999d",
		"1h and 2m",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, ok := ParseTimeExpression(input, fixedNow)
				assert.False(t, ok)
			})
		})
	}
}

func TestResolveDeadline(t *testing.T) {
	got, err := ResolveDeadline("10m", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(10*time.Minute), got)

	_, err = ResolveDeadline("soon", fixedNow)
	assert.ErrorIs(t, err, ErrUnparseableTime)

	_, err = ResolveDeadline("0s", fixedNow)
	assert.ErrorIs(t, err, ErrDeadlineNotInFuture)

	_, err = ResolveDeadline("1/1/2020 00:00", fixedNow)
	assert.ErrorIs(t, err, ErrDeadlineNotInFuture)
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("2d")
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, d)

	d, err = ParseDuration("1h30m")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, d)

	d, err = ParseDuration("1.5h")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, d)

	_, err = ParseDuration("abc")
	assert.Error(t, err)
}
