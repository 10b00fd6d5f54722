package handlers

import (
	"net/http"
	"sync"
	"time"
)

// Stats collects process-lifetime counters. Everything here is in memory and
// resets on restart.
type Stats struct {
	mu              sync.Mutex
	startedAt       time.Time
	sessionsCreated int64
	uploads         int64
	prompts         int64
	generated       int64
	failures        int64
}

func NewStats() *Stats {
	return &Stats{startedAt: time.Now()}
}

func (s *Stats) RecordSessionCreated() { s.add(&s.sessionsCreated) }
func (s *Stats) RecordUpload()         { s.add(&s.uploads) }
func (s *Stats) RecordPrompt()         { s.add(&s.prompts) }
func (s *Stats) RecordGenerated()      { s.add(&s.generated) }
func (s *Stats) RecordFailure()        { s.add(&s.failures) }

func (s *Stats) add(field *int64) {
	s.mu.Lock()
	*field++
	s.mu.Unlock()
}

func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	live := a.Studio.SessionCount()

	a.Stats.mu.Lock()
	resp := map[string]any{
		"uptime_seconds":   int64(time.Since(a.Stats.startedAt).Seconds()),
		"sessions_created": a.Stats.sessionsCreated,
		"live_sessions":    live,
		"uploads":          a.Stats.uploads,
		"prompts":          a.Stats.prompts,
		"images_generated": a.Stats.generated,
		"actions_failed":   a.Stats.failures,
	}
	a.Stats.mu.Unlock()

	a.json(w, http.StatusOK, resp)
}
