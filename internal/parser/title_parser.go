package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParsedTask represents a task parsed from a one-line description
type ParsedTask struct {
	Title        string
	ListName     string
	SubtaskCount int
	DueDate      *time.Time
	Errors       []string
}

var (
	listRegex     = regexp.MustCompile(`@([a-zA-Z0-9_-]+)`)
	subtaskRegex  = regexp.MustCompile(`\bsubtasks:(\S+)`)
	titleDueRegex = regexp.MustCompile(`\bdue:(\S+)`)
)

// ParseTitle extracts metadata from a task title using natural syntax
// Syntax: "Buy milk @Shopping due:tomorrow subtasks:3"
func ParseTitle(input string, now time.Time) ParsedTask {
	result := ParsedTask{
		Title:  input,
		Errors: []string{},
	}

	// Extract list (@list-name)
	if m := listRegex.FindStringSubmatch(input); len(m) > 1 {
		result.ListName = m[1]
		input = listRegex.ReplaceAllString(input, "")
	}

	// Extract subtask count (subtasks:3)
	if m := subtaskRegex.FindStringSubmatch(input); len(m) > 1 {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 0 {
			result.Errors = append(result.Errors, "Invalid subtask count '"+m[1]+"'")
		} else {
			result.SubtaskCount = n
		}
		input = subtaskRegex.ReplaceAllString(input, "")
	}

	// Extract due date (due:tomorrow, due:15/12/2026, due:3d)
	if m := titleDueRegex.FindStringSubmatch(input); len(m) > 1 {
		due, err := ParseDueDate(m[1], now)
		if err != nil {
			result.Errors = append(result.Errors, "Invalid due date '"+m[1]+"': "+err.Error())
		} else {
			result.DueDate = due
		}
		input = titleDueRegex.ReplaceAllString(input, "")
	}

	// Clean up the title (remove extra spaces)
	result.Title = strings.Join(strings.Fields(input), " ")

	return result
}
