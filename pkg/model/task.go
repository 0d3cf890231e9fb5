package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TaskType is the kind of study work a task represents.
type TaskType string

const (
	Assignment TaskType = "assignment"
	Exam       TaskType = "exam"
	Project    TaskType = "project"
	Lab        TaskType = "lab"
	Other      TaskType = "other"
)

// Known reports whether t is one of the four charted categories.
// "other" and unrecognized values are not.
func (t TaskType) Known() bool {
	switch t {
	case Assignment, Exam, Project, Lab:
		return true
	}
	return false
}

// ParseTaskType maps free text to a TaskType, falling back to Other.
func ParseTaskType(s string) TaskType {
	t := TaskType(strings.ToLower(strings.TrimSpace(s)))
	if t.Known() {
		return t
	}
	return Other
}

// DateLayout is the wire form of a calendar date (what a date input yields).
const DateLayout = "2006-01-02"

// Date is a calendar date with no time-of-day meaning. The zero value means "no date".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the calendar date of t in t's own location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a "2006-01-02" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return NewDate(t), nil
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight UTC of d. UTC keeps day arithmetic free of DST shifts.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(DateLayout)
}

// UnmarshalJSON accepts "2006-01-02", an RFC 3339 timestamp (date part kept), "" or null.
func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	if parsed, err := ParseDate(s); err == nil {
		*d = parsed
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("failed to parse date string '%s': %w", s, err)
	}
	*d = NewDate(t)
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Task is a single piece of study work.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Subject   string    `json:"subject"`
	Type      TaskType  `json:"type"`
	DueDate   Date      `json:"dueDate"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks that a decoded record is usable.
func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("task has no id")
	}
	return nil
}
