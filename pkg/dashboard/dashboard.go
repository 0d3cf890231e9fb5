// Package dashboard derives the overview numbers from a task snapshot.
//
// Everything is recomputed from scratch on each call; no state is kept between
// calls.
package dashboard

import (
	"math"
	"sort"
	"time"

	"github.com/harrisonrobin/gradary/pkg/model"
	"github.com/harrisonrobin/gradary/pkg/urgency"
)

// PriorityLimit is how many tasks the priority shortlist holds.
const PriorityLimit = 3

// Counts are the headline totals.
type Counts struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

// PriorityItem is one entry of the shortlist, with the badge it should show.
type PriorityItem struct {
	Task          model.Task   `json:"task"`
	Urgency       urgency.Tier `json:"urgency"`
	DaysRemaining int          `json:"daysRemaining"`
}

// TypeDistribution counts pending tasks per charted type.
type TypeDistribution struct {
	Assignment int `json:"assignment"`
	Exam       int `json:"exam"`
	Project    int `json:"project"`
	Lab        int `json:"lab"`
}

// CompletionSplit is the two-slice completed/pending view.
type CompletionSplit struct {
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

// Workload rates a subject by its pending count.
type Workload string

const (
	WorkloadLow    Workload = "Low"
	WorkloadMedium Workload = "Medium"
	WorkloadHigh   Workload = "High"
)

// WorkloadOf is independent of the urgency tiers: above 5 pending is High,
// above 2 is Medium.
func WorkloadOf(pending int) Workload {
	switch {
	case pending > 5:
		return WorkloadHigh
	case pending > 2:
		return WorkloadMedium
	default:
		return WorkloadLow
	}
}

// SubjectRollup aggregates all tasks sharing a subject string.
type SubjectRollup struct {
	Subject   string   `json:"subject"`
	Total     int      `json:"total"`
	Completed int      `json:"completed"`
	Pending   int      `json:"pending"`
	Percent   int      `json:"percent"`
	Workload  Workload `json:"workload"`
}

// Summary is the complete dashboard view.
type Summary struct {
	Counts   Counts           `json:"counts"`
	Priority []PriorityItem   `json:"priority"`
	Types    TypeDistribution `json:"types"`
	Split    CompletionSplit  `json:"split"`
	Subjects []SubjectRollup  `json:"subjects"`
}

// Summarize builds the dashboard for tasks as of now.
func Summarize(tasks []model.Task, now time.Time) Summary {
	counts := Count(tasks)
	return Summary{
		Counts:   counts,
		Priority: Priority(tasks, now, PriorityLimit),
		Types:    Types(tasks),
		Split:    CompletionSplit{Completed: counts.Completed, Pending: counts.Pending},
		Subjects: Subjects(tasks),
	}
}

func Count(tasks []model.Task) Counts {
	c := Counts{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			c.Completed++
		}
	}
	c.Pending = c.Total - c.Completed
	return c
}

// Priority returns up to limit pending tasks, soonest due first. Undated tasks
// sort last and equal dates keep collection order.
func Priority(tasks []model.Task, now time.Time, limit int) []PriorityItem {
	items := make([]PriorityItem, 0, len(tasks))
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		days := urgency.DaysRemaining(t.DueDate, now)
		items = append(items, PriorityItem{Task: t, Urgency: urgency.TierOf(days), DaysRemaining: days})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DaysRemaining < items[j].DaysRemaining
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

// Types counts pending tasks of the four charted types; others are left out.
func Types(tasks []model.Task) TypeDistribution {
	var d TypeDistribution
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		switch t.Type {
		case model.Assignment:
			d.Assignment++
		case model.Exam:
			d.Exam++
		case model.Project:
			d.Project++
		case model.Lab:
			d.Lab++
		}
	}
	return d
}

// Subjects groups tasks by exact subject string, in order of first appearance.
func Subjects(tasks []model.Task) []SubjectRollup {
	index := make(map[string]int)
	var rollups []SubjectRollup
	for _, t := range tasks {
		i, ok := index[t.Subject]
		if !ok {
			i = len(rollups)
			index[t.Subject] = i
			rollups = append(rollups, SubjectRollup{Subject: t.Subject})
		}
		rollups[i].Total++
		if t.Completed {
			rollups[i].Completed++
		}
	}

	// A group exists only once a task created it, so Total is never 0 here.
	for i := range rollups {
		r := &rollups[i]
		r.Pending = r.Total - r.Completed
		r.Percent = int(math.Floor(float64(r.Completed)/float64(r.Total)*100 + 0.5))
		r.Workload = WorkloadOf(r.Pending)
	}
	return rollups
}

// Greeting picks the salutation for the hour of now.
func Greeting(now time.Time) string {
	switch h := now.Hour(); {
	case h >= 18:
		return "Good Evening"
	case h >= 12:
		return "Good Afternoon"
	default:
		return "Good Morning"
	}
}
