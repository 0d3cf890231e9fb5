// Package urgency classifies how close a due date is.
//
// Tiers are derived on every call from the due date and the caller's notion of
// "now"; nothing here is cached, since today moves.
package urgency

import (
	"math"
	"time"

	"github.com/harrisonrobin/gradary/pkg/model"
)

// Tier is the urgency badge shown next to a task.
type Tier string

const (
	Overdue Tier = "overdue"
	High    Tier = "high"
	Medium  Tier = "medium"
	Low     Tier = "low"
)

// NoDeadline is the days-remaining value of a task without a due date.
const NoDeadline = math.MaxInt

const (
	highWithin   = 2
	mediumWithin = 5
)

const secondsPerDay = 24 * 60 * 60

// DaysRemaining counts whole calendar days from now's date to due. Due today is 0,
// tomorrow is 1, yesterday is -1, whatever the time of day.
func DaysRemaining(due model.Date, now time.Time) int {
	if due.IsZero() {
		return NoDeadline
	}
	today := model.NewDate(now)
	// Both sides are UTC midnights, so the difference is an exact multiple of a day.
	return int((due.Time().Unix() - today.Time().Unix()) / secondsPerDay)
}

// TierOf maps a days-remaining count to its tier. Boundaries 2 and 5 belong to
// the more urgent tier.
func TierOf(days int) Tier {
	switch {
	case days < 0:
		return Overdue
	case days <= highWithin:
		return High
	case days <= mediumWithin:
		return Medium
	default:
		return Low
	}
}

// Classify returns the tier of a due date as of now.
func Classify(due model.Date, now time.Time) Tier {
	return TierOf(DaysRemaining(due, now))
}

// Color returns the style token for a tier.
func Color(t Tier) string {
	switch t {
	case Overdue, High:
		return "var(--accent-red)"
	case Medium:
		return "var(--accent-orange)"
	case Low:
		return "var(--secondary-color)"
	default:
		return "var(--text-secondary)"
	}
}
