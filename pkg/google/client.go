package google

import (
	"context"
	"fmt"

	"github.com/harrisonrobin/gradary/pkg/auth"
	"github.com/harrisonrobin/gradary/pkg/index"
)

// NewClient authenticates with the credentials in dir and opens the calendar
// whose name is calendarName.
func NewClient(ctx context.Context, dir, calendarName string, idx *index.EventIndex) (*CalendarClient, error) {
	srv, err := auth.GetCalendarService(ctx, dir)
	if err != nil {
		return nil, err
	}

	calendarList, err := srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve calendar list: %w", err)
	}

	var calendarID string
	for _, item := range calendarList.Items {
		if item.Summary == calendarName {
			calendarID = item.Id
			break
		}
	}
	if calendarID == "" {
		return nil, fmt.Errorf("calendar '%s' not found", calendarName)
	}

	return NewCalendarClient(srv, calendarID, idx), nil
}
