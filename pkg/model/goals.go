package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
)

// VisitLayout is how the last visit day is recorded, e.g. "Wed Oct 14 2026".
const VisitLayout = "Mon Jan 02 2006"

// Goals is the per-user singleton of study targets.
type Goals struct {
	CGPATarget      Score   `json:"cgpaTarget"`
	DailyStudyHours float64 `json:"dailyStudyHours"`
	Streak          int     `json:"streak"`
	LastVisit       string  `json:"-"`
}

// DefaultGoals is what a first visit starts with.
func DefaultGoals() Goals {
	return Goals{}
}

type goalsJSON struct {
	CGPATarget      Score   `json:"cgpaTarget"`
	DailyStudyHours float64 `json:"dailyStudyHours"`
	Streak          int     `json:"streak"`
	LastVisit       *string `json:"lastVisit"`
}

func (g Goals) MarshalJSON() ([]byte, error) {
	out := goalsJSON{
		CGPATarget:      g.CGPATarget,
		DailyStudyHours: g.DailyStudyHours,
		Streak:          g.Streak,
	}
	if g.LastVisit != "" {
		v := g.LastVisit
		out.LastVisit = &v
	}
	return json.Marshal(out)
}

func (g *Goals) UnmarshalJSON(b []byte) error {
	var in goalsJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	if in.Streak < 0 {
		in.Streak = 0
	}
	*g = Goals{
		CGPATarget:      in.CGPATarget,
		DailyStudyHours: in.DailyStudyHours,
		Streak:          in.Streak,
	}
	if in.LastVisit != nil {
		g.LastVisit = *in.LastVisit
	}
	return nil
}

// Score is a numeric target that may be empty (0). Older records stored it as the raw
// text of the form field, so both numbers and numeric strings decode.
type Score float64

// ParseScore reads a form value; blank means "no target".
func ParseScore(s string) (Score, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	if f < 0 {
		return 0, fmt.Errorf("target must not be negative: %s", s)
	}
	return Score(f), nil
}

func (s Score) IsSet() bool {
	return s > 0
}

func (s Score) String() string {
	if !s.IsSet() {
		return ""
	}
	return strconv.FormatFloat(float64(s), 'f', -1, 64)
}

func (s *Score) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*s = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var text string
		if err := json.Unmarshal(b, &text); err != nil {
			return err
		}
		v, err := ParseScore(text)
		if err != nil {
			log.Printf("Warning: ignoring stored score: %v", err)
			v = 0
		}
		*s = v
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil || f < 0 {
		log.Printf("Warning: ignoring stored score %s", b)
		f = 0
	}
	*s = Score(f)
	return nil
}
