package google

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/harrisonrobin/gradary/pkg/colors"
	"github.com/harrisonrobin/gradary/pkg/index"
	"github.com/harrisonrobin/gradary/pkg/model"
	"github.com/harrisonrobin/gradary/pkg/util"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

// Action is what SyncEvent did to the calendar.
type Action string

const (
	Created   Action = "created"
	Updated   Action = "updated"
	Unchanged Action = "unchanged"
)

// CalendarClient exports tasks to one Google Calendar.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
	index      *index.EventIndex
}

func NewCalendarClient(srv *calendar.Service, calendarID string, idx *index.EventIndex) *CalendarClient {
	return &CalendarClient{srv: srv, calendarID: calendarID, index: idx}
}

// SyncEvent creates the event for task or patches the existing one.
func (c *CalendarClient) SyncEvent(ctx context.Context, task model.Task, colorID string, now time.Time) (*calendar.Event, Action, error) {
	event, err := util.ConvertTaskToCalendarEvent(&task, colorID, now)
	if err != nil {
		return nil, "", err
	}

	var existing *calendar.Event
	// 1. Try local index first
	if c.index != nil {
		if eventID := c.index.Get(task.ID); eventID != "" {
			existing, err = c.srv.Events.Get(c.calendarID, eventID).Context(ctx).Do()
			if err != nil || existing.Status == "cancelled" {
				existing = nil
			}
		}
	}

	// 2. Fall back to searching by extended property
	if existing == nil {
		existing, err = c.GetEventByTaskID(ctx, task.ID)
		if err != nil {
			return nil, "", fmt.Errorf("error searching for event: %w", err)
		}
	}

	if existing != nil {
		patch := util.EventNeedsUpdate(existing, event)
		if patch == nil {
			c.remember(task.ID, existing.Id)
			return existing, Unchanged, nil
		}
		updated, err := c.PatchEvent(ctx, existing.Id, patch)
		if err != nil {
			return nil, "", err
		}
		c.remember(task.ID, updated.Id)
		return updated, Updated, nil
	}

	created, err := c.srv.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, "", err
	}
	c.remember(task.ID, created.Id)
	return created, Created, nil
}

func (c *CalendarClient) remember(taskID, eventID string) {
	if c.index != nil {
		c.index.Set(taskID, eventID)
	}
}

func (c *CalendarClient) PatchEvent(ctx context.Context, eventID string, patch *calendar.Event) (*calendar.Event, error) {
	return c.srv.Events.Patch(c.calendarID, eventID, patch).Context(ctx).Do()
}

func (c *CalendarClient) DeleteEvent(ctx context.Context, eventID string) error {
	return c.srv.Events.Delete(c.calendarID, eventID).Context(ctx).Do()
}

// GetEventByTaskID finds the event carrying the task's id in its private properties.
func (c *CalendarClient) GetEventByTaskID(ctx context.Context, taskID string) (*calendar.Event, error) {
	events, err := c.srv.Events.List(c.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", util.EventTaskIDProperty, taskID)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}

// SyncReport counts what a Sync did.
type SyncReport struct {
	Created   int
	Updated   int
	Unchanged int
	Deleted   int
	Skipped   int
	Failed    int
}

// Sync exports every dated task and removes events of tasks that no longer
// exist. Failures on single tasks are logged and counted, not fatal.
func (c *CalendarClient) Sync(ctx context.Context, tasks []model.Task, palette *colors.ColorCache, now time.Time) (SyncReport, error) {
	var report SyncReport
	live := make(map[string]bool, len(tasks))

	for _, task := range tasks {
		live[task.ID] = true
		if task.DueDate.IsZero() {
			report.Skipped++
			continue
		}
		colorID := colors.NoSubjectColor
		if palette != nil {
			colorID = palette.ColorID(task.Subject)
		}
		_, action, err := c.SyncEvent(ctx, task, colorID, now)
		if err != nil {
			log.Printf("Error syncing task %s: %v", task.ID, err)
			report.Failed++
			continue
		}
		switch action {
		case Created:
			report.Created++
		case Updated:
			report.Updated++
		default:
			report.Unchanged++
		}
	}

	if c.index != nil {
		for _, taskID := range c.index.TaskIDs() {
			if live[taskID] {
				continue
			}
			if err := c.DeleteEvent(ctx, c.index.Get(taskID)); err != nil && !isGone(err) {
				log.Printf("Error deleting event for removed task %s: %v", taskID, err)
				report.Failed++
				continue
			}
			c.index.Remove(taskID)
			report.Deleted++
		}
		if err := c.index.Save(); err != nil {
			return report, fmt.Errorf("failed to save event index: %w", err)
		}
	}
	if palette != nil {
		if err := palette.Save(); err != nil {
			log.Printf("Warning: failed to save subject colors: %v", err)
		}
	}
	return report, ctx.Err()
}

// isGone reports an API error meaning the event is already deleted.
func isGone(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone
	}
	return false
}
