package game

import (
	"sync"
	"time"
)

// Task names for the room scheduler.
const (
	taskStartRace      = "startRace"
	taskFinalize       = "finalize"
	taskReset          = "reset"
	taskPeriodicRepair = "periodicRepair"
)

// scheduler owns the room's named deferred tasks. Arming a name cancels any
// previous timer under that name, so a superseded task can never fire late
// alongside its replacement. Callbacks must re-check the condition they were
// scheduled for: a stale firing against a reset room has to no-op.
type scheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func newScheduler() *scheduler {
	return &scheduler{timers: make(map[string]*time.Timer)}
}

func (s *scheduler) arm(name string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[name]; ok {
		t.Stop()
	}
	s.timers[name] = time.AfterFunc(d, fn)
}

func (s *scheduler) cancel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[name]; ok {
		t.Stop()
		delete(s.timers, name)
	}
}

func (s *scheduler) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, t := range s.timers {
		t.Stop()
		delete(s.timers, name)
	}
}
