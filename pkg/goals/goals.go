// Package goals manages the study-targets singleton.
package goals

import (
	"fmt"
	"sync"
	"time"

	"github.com/harrisonrobin/gradary/pkg/model"
	"github.com/harrisonrobin/gradary/pkg/storage"
)

type Service struct {
	mu    sync.Mutex
	gw    *storage.Gateway
	now   func() time.Time
	goals model.Goals
}

// NewService loads the goals record, falling back to defaults.
func NewService(gw *storage.Gateway, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{gw: gw, now: now, goals: gw.Goals()}
}

func (s *Service) Get() model.Goals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goals
}

// SetCGPATarget stores the target as typed into the form. Blank clears it.
func (s *Service) SetCGPATarget(text string) error {
	score, err := model.ParseScore(text)
	if err != nil {
		return err
	}
	return s.update(func(g *model.Goals) { g.CGPATarget = score })
}

func (s *Service) SetDailyStudyHours(hours float64) error {
	if hours < 0 || hours > 24 {
		return fmt.Errorf("daily study hours must be between 0 and 24, got %v", hours)
	}
	return s.update(func(g *model.Goals) { g.DailyStudyHours = hours })
}

// RecordVisit stamps today as the last visit. The streak is left as stored.
// TODO: increment Streak when the previous visit was yesterday once the
// reset rule for missed days is settled.
func (s *Service) RecordVisit() error {
	today := s.now().Format(model.VisitLayout)
	s.mu.Lock()
	seen := s.goals.LastVisit == today
	s.mu.Unlock()
	if seen {
		return nil
	}
	return s.update(func(g *model.Goals) { g.LastVisit = today })
}

func (s *Service) update(change func(*model.Goals)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	change(&s.goals)
	if err := s.gw.SaveGoals(s.goals); err != nil {
		return fmt.Errorf("goals not persisted: %w", err)
	}
	return nil
}
