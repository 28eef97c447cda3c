package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// APIDateLayout is the wire format expected by the fare provider.
const APIDateLayout = "2006-01-02"

// splitUserDate parses a DD.MM user date into day and month.
func splitUserDate(dateStr string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(dateStr), ".")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid date %q: want DD.MM", dateStr)
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid day in %q: %w", dateStr, err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month in %q: %w", dateStr, err)
	}
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("date %q out of range", dateStr)
	}
	return day, month, nil
}

// ValidateUserDate reports whether dateStr is a well-formed DD.MM date.
func ValidateUserDate(dateStr string) bool {
	_, _, err := splitUserDate(dateStr)
	return err == nil
}

// NormalizeDate converts a DD.MM user date to YYYY-MM-DD for the fare API.
// A date already past in the current year rolls over to the next year.
func NormalizeDate(dateStr string) (string, error) {
	return NormalizeDateAt(dateStr, time.Now())
}

// NormalizeDateAt is NormalizeDate with an explicit reference time.
func NormalizeDateAt(dateStr string, now time.Time) (string, error) {
	day, month, err := splitUserDate(dateStr)
	if err != nil {
		return "", err
	}
	year := resolveYear(day, month, now)
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), nil
}

// FormatDisplayDate renders a DD.MM user date as DD.MM.YYYY for replies.
// Malformed input is returned unchanged.
func FormatDisplayDate(dateStr string) string {
	return FormatDisplayDateAt(dateStr, time.Now())
}

// FormatDisplayDateAt is FormatDisplayDate with an explicit reference time.
func FormatDisplayDateAt(dateStr string, now time.Time) string {
	day, month, err := splitUserDate(dateStr)
	if err != nil {
		return dateStr
	}
	return fmt.Sprintf("%02d.%02d.%04d", day, month, resolveYear(day, month, now))
}

// FormatLinkDate renders a DD.MM user date as DDMM for deep-link routes.
func FormatLinkDate(dateStr string) string {
	day, month, err := splitUserDate(dateStr)
	if err != nil {
		return "0101"
	}
	return fmt.Sprintf("%02d%02d", day, month)
}

func resolveYear(day, month int, now time.Time) int {
	year := now.Year()
	if month < int(now.Month()) || (month == int(now.Month()) && day < now.Day()) {
		year++
	}
	return year
}
