package util

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/harrisonrobin/gradary/pkg/model"
	"github.com/harrisonrobin/gradary/pkg/urgency"
	"google.golang.org/api/calendar/v3"
)

// EventTaskIDProperty is the private extended property that links an event to its task.
const EventTaskIDProperty = "gradary_id"

// FormatDate renders a due date the short way, e.g. "Oct 20".
func FormatDate(d model.Date) string {
	if d.IsZero() {
		return "No Date"
	}
	return d.Time().Format("Jan 2")
}

// SummaryPrefix marks an event title: ✓ done, ! overdue, nothing otherwise.
func SummaryPrefix(task *model.Task, now time.Time) string {
	if task.Completed {
		return "✓"
	}
	if urgency.Classify(task.DueDate, now) == urgency.Overdue {
		return "!"
	}
	return ""
}

// ConvertTaskToCalendarEvent builds the all-day event for a task on its due date.
func ConvertTaskToCalendarEvent(task *model.Task, colorID string, now time.Time) (*calendar.Event, error) {
	if task == nil {
		return nil, fmt.Errorf("could not convert nil Task")
	}
	if task.DueDate.IsZero() {
		return nil, fmt.Errorf("task has no due date: %s", task.ID)
	}

	summary := task.Title
	if prefix := SummaryPrefix(task, now); prefix != "" {
		summary = fmt.Sprintf("%s %s", prefix, task.Title)
	}

	var desc strings.Builder
	status := "pending"
	if task.Completed {
		status = "completed"
	}
	desc.WriteString(fmt.Sprintf("Status: %s\n", status))
	desc.WriteString(fmt.Sprintf("Subject: %s\n", task.Subject))
	desc.WriteString(fmt.Sprintf("Type: %s\n", task.Type))
	if !task.Completed {
		desc.WriteString(fmt.Sprintf("Urgency: %s\n", urgency.Classify(task.DueDate, now)))
	}
	desc.WriteString(fmt.Sprintf("ID: %s\n", task.ID))

	// All-day events end on the following day, exclusive.
	start := task.DueDate.Time()
	end := start.AddDate(0, 0, 1)

	return &calendar.Event{
		Summary:     summary,
		ColorId:     colorID,
		Description: desc.String(),
		Start:       &calendar.EventDateTime{Date: start.Format(model.DateLayout)},
		End:         &calendar.EventDateTime{Date: end.Format(model.DateLayout)},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				EventTaskIDProperty: task.ID,
			},
		},
	}, nil
}

// EventNeedsUpdate returns a patch holding the fields where target differs from
// existing, or nil when they match.
func EventNeedsUpdate(existing, target *calendar.Event) *calendar.Event {
	patch := &calendar.Event{}
	needsUpdate := false

	if existing.Summary != target.Summary {
		patch.Summary = target.Summary
		needsUpdate = true
	}
	if existing.Description != target.Description {
		patch.Description = target.Description
		needsUpdate = true
	}
	if existing.ColorId != target.ColorId {
		patch.ColorId = target.ColorId
		needsUpdate = true
	}
	if eventDate(existing.Start) != eventDate(target.Start) || eventDate(existing.End) != eventDate(target.End) {
		patch.Start = target.Start
		patch.End = target.End
		needsUpdate = true
	}

	if needsUpdate {
		return patch
	}
	return nil
}

func eventDate(dt *calendar.EventDateTime) string {
	if dt == nil {
		return ""
	}
	return dt.Date
}

var taskIDPattern = regexp.MustCompile(`ID: ([A-Za-z0-9\-]+)`)

// GetTaskIDFromEventDescription reads the task id back out of an event description.
func GetTaskIDFromEventDescription(description string) (string, bool) {
	matches := taskIDPattern.FindStringSubmatch(description)
	if len(matches) > 1 {
		return matches[1], true
	}
	return "", false
}
