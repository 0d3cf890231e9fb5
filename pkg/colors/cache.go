package colors

import (
	"strconv"
	"time"

	"github.com/harrisonrobin/gradary/pkg/storage"
)

// NoSubjectColor is Google Calendar's graphite, used for tasks without a subject.
const NoSubjectColor = "8"

// paletteSize is the number of Google Calendar event colors (ids 1 to 11).
const paletteSize = 11

type SubjectState struct {
	ColorID  string    `json:"color_id"`
	LastUsed time.Time `json:"last_used"`
}

// ColorCache gives each subject a stable event color. With more subjects than
// colors, the least recently used subject gives its color up.
type ColorCache struct {
	Subjects map[string]*SubjectState
	gw       *storage.Gateway
	now      func() time.Time
	dirty    bool
}

// NewColorCache loads the stored palette. Missing or corrupt data starts empty.
func NewColorCache(gw *storage.Gateway) *ColorCache {
	c := &ColorCache{
		Subjects: make(map[string]*SubjectState),
		gw:       gw,
		now:      time.Now,
	}
	if !gw.Load(storage.SubjectColorsKey, &c.Subjects) || c.Subjects == nil {
		c.Subjects = make(map[string]*SubjectState)
	}
	for name, s := range c.Subjects {
		if s == nil {
			delete(c.Subjects, name)
		}
	}
	return c
}

func (c *ColorCache) Save() error {
	if !c.dirty {
		return nil
	}
	err := c.gw.Save(storage.SubjectColorsKey, c.Subjects)
	if err == nil {
		c.dirty = false
	}
	return err
}

// ColorID returns the color for subject, assigning one on first use.
func (c *ColorCache) ColorID(subject string) string {
	if subject == "" {
		return NoSubjectColor
	}

	if state, exists := c.Subjects[subject]; exists {
		state.LastUsed = c.now()
		c.dirty = true
		return state.ColorID
	}
	return c.assignColor(subject)
}

func (c *ColorCache) assignColor(subject string) string {
	used := make(map[string]bool)
	for _, s := range c.Subjects {
		used[s.ColorID] = true
	}

	for i := 1; i <= paletteSize; i++ {
		id := strconv.Itoa(i)
		if !used[id] {
			c.claim(subject, id)
			return id
		}
	}

	// Palette is full: take the color of the least recently used subject.
	var oldest string
	var oldestTime time.Time
	first := true
	for name, s := range c.Subjects {
		if first || s.LastUsed.Before(oldestTime) || (s.LastUsed.Equal(oldestTime) && name < oldest) {
			oldest, oldestTime, first = name, s.LastUsed, false
		}
	}

	recycled := c.Subjects[oldest].ColorID
	delete(c.Subjects, oldest)
	c.claim(subject, recycled)
	return recycled
}

func (c *ColorCache) claim(subject, id string) {
	c.Subjects[subject] = &SubjectState{ColorID: id, LastUsed: c.now()}
	c.dirty = true
}
