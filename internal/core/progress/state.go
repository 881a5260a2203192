// Package progress shows a spinner and progress bar for a running job. It
// runs on its own goroutine and only reads shared state, so the work it
// reports on never waits for the terminal.
package progress

import (
	"sync"
	"time"
)

// Stages reported by the pipeline.
const (
	StageConverting   = "converting"
	StageDetecting    = "detecting"
	StageTranscribing = "transcribing"
	StageTranslating  = "translating"
	StageWriting      = "writing"
)

// state holds the shared job state read by the renderer.
type state struct {
	mu        sync.RWMutex
	stage     string
	done      int
	total     int
	finished  bool
	err       error
	startTime time.Time
	endTime   time.Time
}

func newState() *state {
	return &state{startTime: time.Now()}
}

func (s *state) setStage(stage string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stage = stage
}

func (s *state) setProgress(done, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = done
	s.total = total
}

func (s *state) finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endTime = time.Now()
	s.finished = true
	s.err = err
}

type snapshot struct {
	stage    string
	done     int
	total    int
	finished bool
	err      error
	elapsed  time.Duration
}

func (s *state) get() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	elapsed := time.Since(s.startTime)
	if !s.endTime.IsZero() {
		elapsed = s.endTime.Sub(s.startTime)
	}
	return snapshot{
		stage:    s.stage,
		done:     s.done,
		total:    s.total,
		finished: s.finished,
		err:      s.err,
		elapsed:  elapsed,
	}
}

func (s snapshot) percent() float64 {
	if s.total <= 0 {
		return 0
	}
	return float64(s.done) / float64(s.total)
}
