package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fixed reference point so year rollover is deterministic.
var refNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestValidateUserDate(t *testing.T) {
	assert.True(t, ValidateUserDate("15.07"))
	assert.True(t, ValidateUserDate("01.01"))
	assert.True(t, ValidateUserDate("31.12"))
	assert.True(t, ValidateUserDate(" 15.07 "))

	assert.False(t, ValidateUserDate(""))
	assert.False(t, ValidateUserDate("15"))
	assert.False(t, ValidateUserDate("15.07.2025"))
	assert.False(t, ValidateUserDate("32.07"))
	assert.False(t, ValidateUserDate("15.13"))
	assert.False(t, ValidateUserDate("0.07"))
	assert.False(t, ValidateUserDate("aa.bb"))
}

func TestNormalizeDateAt_FutureDateStaysInCurrentYear(t *testing.T) {
	got, err := NormalizeDateAt("15.07", refNow)
	require.NoError(t, err)
	assert.Equal(t, "2025-07-15", got)
}

func TestNormalizeDateAt_TodayStaysInCurrentYear(t *testing.T) {
	got, err := NormalizeDateAt("15.06", refNow)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-15", got)
}

func TestNormalizeDateAt_PastDateRollsToNextYear(t *testing.T) {
	got, err := NormalizeDateAt("10.02", refNow)
	require.NoError(t, err)
	assert.Equal(t, "2026-02-10", got)

	got, err = NormalizeDateAt("14.06", refNow)
	require.NoError(t, err)
	assert.Equal(t, "2026-06-14", got)
}

func TestNormalizeDateAt_Malformed(t *testing.T) {
	_, err := NormalizeDateAt("2025-07-15", refNow)
	assert.Error(t, err)
}

func TestFormatDisplayDateAt(t *testing.T) {
	assert.Equal(t, "15.07.2025", FormatDisplayDateAt("15.07", refNow))
	assert.Equal(t, "10.02.2026", FormatDisplayDateAt("10.02", refNow))
	// Malformed input passes through untouched.
	assert.Equal(t, "garbage", FormatDisplayDateAt("garbage", refNow))
}

func TestFormatLinkDate(t *testing.T) {
	assert.Equal(t, "1507", FormatLinkDate("15.07"))
	assert.Equal(t, "0102", FormatLinkDate("1.2"))
	assert.Equal(t, "0101", FormatLinkDate("not a date"))
}
