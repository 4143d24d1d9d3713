package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MaxDueYears bounds how far ahead a due date may be set
const MaxDueYears = 50

var (
	dateRegex     = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	isoDateRegex  = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	relativeRegex = regexp.MustCompile(`^(\d+)\s*(day|days|d|week|weeks|w)$`)
)

// ParseDueDate parses various due date formats relative to now.
// Supported formats:
// - dd/mm/yyyy (e.g., "15/12/2026")
// - yyyy-mm-dd (e.g., "2026-12-15")
// - today, tomorrow
// - X days (e.g., "3 days", "1 day", "3d")
// - X weeks (e.g., "2 weeks", "1 week", "2w")
//
// The result is the end of the given day in now's location. Days before
// today and more than MaxDueYears ahead are rejected.
func ParseDueDate(input string, now time.Time) (*time.Time, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return nil, nil
	}

	var day time.Time
	switch input {
	case "today":
		day = StartOfDay(now)
	case "tomorrow":
		day = StartOfDay(now).AddDate(0, 0, 1)
	default:
		var err error
		if day, err = parseDateFormat(input, now.Location()); err != nil {
			if day, err = parseRelativeTime(input, now); err != nil {
				return nil, fmt.Errorf("invalid date format. Use: dd/mm/yyyy, yyyy-mm-dd, today, tomorrow, X days or X weeks")
			}
		}
	}

	today := StartOfDay(now)
	if day.Before(today) {
		return nil, fmt.Errorf("due date %s is in the past", day.Format("02/01/2006"))
	}
	if day.After(today.AddDate(MaxDueYears, 0, 0)) {
		return nil, fmt.Errorf("due date must be within %d years", MaxDueYears)
	}

	due := EndOfDay(day)
	return &due, nil
}

// parseDateFormat parses dd/mm/yyyy and yyyy-mm-dd
func parseDateFormat(input string, loc *time.Location) (time.Time, error) {
	var day, month, year int
	if m := dateRegex.FindStringSubmatch(input); len(m) == 4 {
		day, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		year, _ = strconv.Atoi(m[3])
	} else if m := isoDateRegex.FindStringSubmatch(input); len(m) == 4 {
		year, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		day, _ = strconv.Atoi(m[3])
	} else {
		return time.Time{}, fmt.Errorf("invalid date format")
	}

	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month must be between 1 and 12")
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)

	// Check if date is valid (handles leap years, etc.)
	if date.Day() != day || date.Month() != time.Month(month) || date.Year() != year {
		return time.Time{}, fmt.Errorf("invalid date")
	}
	return date, nil
}

// parseRelativeTime parses relative formats like "3 days" or "2w"
func parseRelativeTime(input string, now time.Time) (time.Time, error) {
	matches := relativeRegex.FindStringSubmatch(input)
	if len(matches) != 3 {
		return time.Time{}, fmt.Errorf("invalid relative time format")
	}

	amount, err := strconv.Atoi(matches[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid number")
	}

	today := StartOfDay(now)
	switch matches[2] {
	case "day", "days", "d":
		return today.AddDate(0, 0, amount), nil
	case "week", "weeks", "w":
		return today.AddDate(0, 0, amount*7), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported time unit")
	}
}

// StartOfDay returns midnight of t's day in t's location
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of t's day
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// DaysUntil counts calendar days from now to due; negative when overdue
func DaysUntil(due, now time.Time) int {
	today := StartOfDay(now)
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, now.Location())
	return int(dueDay.Sub(today).Hours() / 24)
}

// FormatDueDate formats a due date for display
func FormatDueDate(due *time.Time, now time.Time) string {
	if due == nil {
		return ""
	}

	daysDiff := DaysUntil(due.In(now.Location()), now)

	// Always show the actual date to avoid confusion
	dateStr := due.Format("02/01/2006")

	switch {
	case daysDiff < 0:
		return fmt.Sprintf("OVERDUE (%s)", dateStr)
	case daysDiff == 0:
		return fmt.Sprintf("Due today (%s)", dateStr)
	case daysDiff == 1:
		return fmt.Sprintf("Due tomorrow (%s)", dateStr)
	case daysDiff <= 7:
		return fmt.Sprintf("Due %s (in %d days)", dateStr, daysDiff)
	default:
		return fmt.Sprintf("Due %s", dateStr)
	}
}

// ShortDue is the compact label used in tables
func ShortDue(due *time.Time, now time.Time) string {
	if due == nil {
		return "-"
	}
	days := DaysUntil(due.In(now.Location()), now)
	switch {
	case days < 0:
		return "OVERDUE"
	case days == 0:
		return "TODAY"
	case days == 1:
		return "TOMORROW"
	case days <= 7:
		return fmt.Sprintf("%dd", days)
	default:
		return due.Format("02/01")
	}
}
