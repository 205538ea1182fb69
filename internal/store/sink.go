package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/gimiv/stayfull-research/internal/model"
)

// ProgressSink persists tracker transitions for one run. Publish never
// blocks on the database: updates are coalesced per source and written by
// a background goroutine, so only the latest state of each source is
// guaranteed to reach the store. Close flushes what is pending.
type ProgressSink struct {
	st    Store
	runID string

	mu      sync.Mutex
	pending map[string]model.SourceProgress
	order   []string

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewProgressSink starts a sink writing to st until Close is called.
func NewProgressSink(ctx context.Context, st Store, runID string) *ProgressSink {
	s := &ProgressSink{
		st:      st,
		runID:   runID,
		pending: make(map[string]model.SourceProgress),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.loop(ctx)
	return s
}

// Publish queues p for writing.
func (s *ProgressSink) Publish(p model.SourceProgress) {
	s.mu.Lock()
	if _, ok := s.pending[p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	p.DataFound = append([]string(nil), p.DataFound...)
	s.pending[p.ID] = p
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Close writes pending updates and stops the background writer.
func (s *ProgressSink) Close() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}

func (s *ProgressSink) loop(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-s.wake:
			s.flush(ctx)
		case <-s.stop:
			s.flush(ctx)
			return
		}
	}
}

func (s *ProgressSink) flush(ctx context.Context) {
	s.mu.Lock()
	order, pending := s.order, s.pending
	s.order = nil
	s.pending = make(map[string]model.SourceProgress)
	s.mu.Unlock()

	for _, id := range order {
		if err := s.st.UpsertProgress(ctx, s.runID, pending[id]); err != nil {
			zap.L().Warn("store: persist progress failed",
				zap.String("run_id", s.runID),
				zap.String("source", id),
				zap.Error(err),
			)
		}
	}
}
