package index

import (
	"sort"
	"sync"

	"github.com/harrisonrobin/gradary/pkg/storage"
)

// EventIndex maps task ids to the calendar event created for them.
type EventIndex struct {
	Mappings map[string]string
	gw       *storage.Gateway
	mu       sync.RWMutex
	dirty    bool
}

// NewEventIndex loads the stored mapping. Missing or corrupt data starts empty.
func NewEventIndex(gw *storage.Gateway) *EventIndex {
	idx := &EventIndex{
		Mappings: make(map[string]string),
		gw:       gw,
	}
	if !gw.Load(storage.CalendarEventsKey, &idx.Mappings) || idx.Mappings == nil {
		idx.Mappings = make(map[string]string)
	}
	return idx
}

// Save writes the mapping if it changed since the last save.
func (idx *EventIndex) Save() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if !idx.dirty {
		return nil
	}
	if err := idx.gw.Save(storage.CalendarEventsKey, idx.Mappings); err != nil {
		return err
	}
	idx.dirty = false
	return nil
}

func (idx *EventIndex) Get(taskID string) string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.Mappings[taskID]
}

func (idx *EventIndex) Set(taskID, eventID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.Mappings[taskID] != eventID {
		idx.Mappings[taskID] = eventID
		idx.dirty = true
	}
}

func (idx *EventIndex) Remove(taskID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, exists := idx.Mappings[taskID]; exists {
		delete(idx.Mappings, taskID)
		idx.dirty = true
	}
}

// TaskIDs lists every indexed task id, sorted.
func (idx *EventIndex) TaskIDs() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	ids := make([]string, 0, len(idx.Mappings))
	for id := range idx.Mappings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
