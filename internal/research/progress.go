package research

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gimiv/stayfull-research/internal/model"
)

// ProgressSink receives every progress transition. Publish is called with
// the tracker lock held, so implementations must not block for long.
type ProgressSink interface {
	Publish(p model.SourceProgress)
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(p model.SourceProgress)

// Publish calls f(p).
func (f SinkFunc) Publish(p model.SourceProgress) { f(p) }

// Tracker keeps exactly one progress entry per provider for a run and fans
// transitions out to sinks and subscribers.
type Tracker struct {
	mu      sync.Mutex
	order   []string
	entries map[string]*model.SourceProgress
	sinks   []ProgressSink
	subs    map[int]chan model.SourceProgress
	nextSub int
	now     func() time.Time
}

// NewTracker creates a tracker publishing to the given sinks.
func NewTracker(sinks ...ProgressSink) *Tracker {
	return &Tracker{
		entries: make(map[string]*model.SourceProgress),
		sinks:   sinks,
		subs:    make(map[int]chan model.SourceProgress),
		now:     time.Now,
	}
}

// AddSink attaches another sink. Entries already published are not replayed.
func (t *Tracker) AddSink(s ProgressSink) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sinks = append(t.sinks, s)
}

// Start resets the tracker to one pending entry per id and publishes them.
func (t *Tracker) Start(ids []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.order = t.order[:0]
	t.entries = make(map[string]*model.SourceProgress, len(ids))
	for _, id := range ids {
		if _, dup := t.entries[id]; dup {
			continue
		}
		t.order = append(t.order, id)
		t.entries[id] = &model.SourceProgress{
			ID:        id,
			Name:      model.SourceDisplayName(id),
			Status:    model.StatusPending,
			DataFound: []string{},
			UpdatedAt: t.now(),
		}
		t.publishLocked(*t.entries[id])
	}
}

// Update records a transition for id. Unknown ids and updates to entries
// already in a terminal state are ignored.
func (t *Tracker) Update(id string, status model.Status, dataFound []string, errMsg string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if !ok {
		zap.L().Warn("research: progress update for unknown source", zap.String("source", id))
		return
	}
	if e.Status.Terminal() {
		zap.L().Debug("research: ignoring update after terminal state",
			zap.String("source", id),
			zap.String("status", string(status)),
		)
		return
	}

	e.Status = status
	if dataFound == nil {
		dataFound = []string{}
	}
	e.DataFound = append([]string(nil), dataFound...)
	e.ErrorMessage = errMsg
	e.UpdatedAt = t.now()
	t.publishLocked(*e)
}

// Snapshot returns a copy of all entries in start order.
func (t *Tracker) Snapshot() []model.SourceProgress {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]model.SourceProgress, 0, len(t.order))
	for _, id := range t.order {
		e := *t.entries[id]
		e.DataFound = append([]string{}, e.DataFound...)
		out = append(out, e)
	}
	return out
}

// Subscribe returns a channel receiving every subsequent transition and a
// cancel func that closes it. Slow subscribers miss updates rather than
// stalling the run.
func (t *Tracker) Subscribe(buffer int) (<-chan model.SourceProgress, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch := make(chan model.SourceProgress, buffer)
	id := t.nextSub
	t.nextSub++
	t.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			delete(t.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (t *Tracker) publishLocked(p model.SourceProgress) {
	for _, s := range t.sinks {
		s.Publish(p)
	}
	for _, ch := range t.subs {
		select {
		case ch <- p:
		default:
		}
	}
}

// LogSink writes progress transitions to the global zap logger.
type LogSink struct{}

// Publish logs p.
func (LogSink) Publish(p model.SourceProgress) {
	fields := []zap.Field{
		zap.String("source", p.ID),
		zap.String("status", string(p.Status)),
		zap.Strings("data_found", p.DataFound),
	}
	if p.ErrorMessage != "" {
		fields = append(fields, zap.String("error", p.ErrorMessage))
		zap.L().Warn("research: source progress", fields...)
		return
	}
	zap.L().Info("research: source progress", fields...)
}
