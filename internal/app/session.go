package app

import "time"

// Session identifies one CLI invocation in the log.
type Session struct {
	ID        string
	Command   string
	StartedAt time.Time
}

// NewSession creates a session for command started at now. Its ID is the
// UTC start time, which sorts log lines by invocation.
func NewSession(command string, now time.Time) *Session {
	return &Session{
		ID:        now.UTC().Format("20060102T150405Z"),
		Command:   command,
		StartedAt: now,
	}
}

// LogID is the session column written on every log line.
func (s *Session) LogID() string {
	if s.Command == "" {
		return s.ID
	}
	return s.ID + "/" + s.Command
}
