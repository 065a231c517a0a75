package testutil

import (
	"sync"
	"time"
)

// ManualScheduler is a folio.Scheduler whose jobs only run when Tick is called.
type ManualScheduler struct {
	mu        sync.Mutex
	jobs      map[int]func()
	next      int
	intervals []time.Duration
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{jobs: make(map[int]func())}
}

func (s *ManualScheduler) Every(interval time.Duration, job func()) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.jobs[id] = job
	s.intervals = append(s.intervals, interval)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.jobs, id)
	}, nil
}

// Tick runs every registered job once.
func (s *ManualScheduler) Tick() {
	s.mu.Lock()
	jobs := make([]func(), 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	s.mu.Unlock()

	for _, job := range jobs {
		job()
	}
}

// Active returns the number of registered jobs.
func (s *ManualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Intervals returns the interval of every job ever registered.
func (s *ManualScheduler) Intervals() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.intervals...)
}
