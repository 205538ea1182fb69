package research

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gimiv/stayfull-research/internal/model"
)

// DefaultTimeout bounds a whole research run.
const DefaultTimeout = 60 * time.Second

// ErrNoWebsite is recorded for the website source when no provider
// discovered a URL to extract from.
const ErrNoWebsite = "no website URL found"

// Coordinator launches every adapter concurrently under one deadline and
// collects exactly one result per adapter. It holds no per-run state, so
// one coordinator may serve concurrent runs.
type Coordinator struct {
	adapters  []Adapter
	timeout   time.Duration
	discovery []string
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithTimeout sets the overall run deadline.
func WithTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithDiscoveryOrder sets which sources may supply the website URL, most
// trusted first.
func WithDiscoveryOrder(ids ...string) CoordinatorOption {
	return func(c *Coordinator) {
		c.discovery = append([]string(nil), ids...)
	}
}

// NewCoordinator creates a coordinator over adapters. Adapters repeating an
// earlier id are dropped so every source yields exactly one result.
func NewCoordinator(adapters []Adapter, opts ...CoordinatorOption) *Coordinator {
	seen := make(map[string]bool, len(adapters))
	unique := make([]Adapter, 0, len(adapters))
	for _, a := range adapters {
		if seen[a.ID()] {
			zap.L().Warn("research: duplicate source ignored", zap.String("source", a.ID()))
			continue
		}
		seen[a.ID()] = true
		unique = append(unique, a)
	}

	c := &Coordinator{
		adapters:  unique,
		timeout:   DefaultTimeout,
		discovery: []string{SourcePerplexity, SourcePlaces},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SourceIDs returns the configured adapter ids in order.
func (c *Coordinator) SourceIDs() []string {
	ids := make([]string, 0, len(c.adapters))
	for _, a := range c.adapters {
		ids = append(ids, a.ID())
	}
	return ids
}

type outcome struct {
	res model.SourceResult
	err error
}

// board collects per-source results for one run and lets waiters block
// until the next result lands.
type board struct {
	mu      sync.Mutex
	results map[string]model.SourceResult
	running map[string]bool
	changed chan struct{}
}

func newBoard(ids []string) *board {
	running := make(map[string]bool, len(ids))
	for _, id := range ids {
		running[id] = true
	}
	return &board{
		results: make(map[string]model.SourceResult, len(ids)),
		running: running,
		changed: make(chan struct{}),
	}
}

func (b *board) record(res model.SourceResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results[res.Source] = res
	close(b.changed)
	b.changed = make(chan struct{})
}

func (b *board) lookup(id string) (model.SourceResult, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.results[id]
	return r, ok
}

// pending reports whether id was launched and has not yet recorded a result.
func (b *board) pending(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, done := b.results[id]
	return b.running[id] && !done
}

// watch returns a channel closed by the next record.
func (b *board) watch() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.changed
}

// Gather runs all adapters for q and returns one result per adapter in
// configuration order, reporting transitions to tracker. Sources that fail,
// panic or miss the deadline are represented by error-tagged results. Only
// an invalid query is an error.
func (c *Coordinator) Gather(ctx context.Context, q model.Query, tracker *Tracker) ([]model.SourceResult, error) {
	if err := q.Validate(); err != nil {
		return nil, eris.Wrap(err, "research: gather")
	}
	if tracker == nil {
		tracker = NewTracker()
	}

	log := zap.L().With(zap.String("hotel", q.Name), zap.String("location", q.Location()))
	tracker.Start(c.SourceIDs())

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var direct []string
	for _, a := range c.adapters {
		if !needsWebsite(a) || q.Website != "" {
			direct = append(direct, a.ID())
		}
	}
	b := newBoard(direct)

	g, gCtx := errgroup.WithContext(ctx)
	for _, a := range c.adapters {
		if needsWebsite(a) && q.Website == "" {
			continue
		}
		g.Go(func() error {
			b.record(c.call(gCtx, tracker, a, q))
			return nil
		})
	}

	for _, a := range c.adapters {
		if !needsWebsite(a) || q.Website != "" {
			continue
		}
		g.Go(func() error {
			url, err := c.awaitWebsite(gCtx, b)
			switch {
			case err != nil:
				msg := deadlineMessage(gCtx, c.timeout)
				tracker.Update(a.ID(), model.StatusError, nil, msg)
				b.record(model.ErrorResult(a.ID(), msg))
			case url == "":
				tracker.Update(a.ID(), model.StatusError, nil, ErrNoWebsite)
				b.record(model.ErrorResult(a.ID(), ErrNoWebsite))
			default:
				log.Debug("research: website discovered", zap.String("url", url))
				b.record(c.call(gCtx, tracker, a, q.WithWebsite(url)))
			}
			return nil
		})
	}

	_ = g.Wait()

	out := make([]model.SourceResult, 0, len(c.adapters))
	for _, a := range c.adapters {
		r, ok := b.lookup(a.ID())
		if !ok {
			r = model.ErrorResult(a.ID(), deadlineMessage(ctx, c.timeout))
		}
		out = append(out, r)
	}

	log.Info("research: sources gathered",
		zap.Int("sources", len(out)),
		zap.Int("usable", countUsable(out)),
	)
	return out, nil
}

// call invokes one adapter, abandoning it if ctx ends first. Progress is
// always moved to a terminal state before call returns.
func (c *Coordinator) call(ctx context.Context, tracker *Tracker, a Adapter, q model.Query) model.SourceResult {
	id := a.ID()
	tracker.Update(id, model.StatusInProgress, nil, "")
	start := time.Now()

	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: eris.Errorf("panic: %v", r)}
			}
		}()
		res, err := a.Fetch(ctx, q)
		ch <- outcome{res: res, err: err}
	}()

	var res model.SourceResult
	select {
	case o := <-ch:
		res = o.res
		switch {
		case o.err != nil && ctx.Err() != nil:
			res = model.ErrorResult(id, deadlineMessage(ctx, c.timeout))
		case o.err != nil:
			res = model.ErrorResult(id, o.err.Error())
		}
	case <-ctx.Done():
		res = model.ErrorResult(id, deadlineMessage(ctx, c.timeout))
	}
	res.Source = id
	res.Duration = time.Since(start)

	if res.Failed() {
		zap.L().Warn("research: source failed",
			zap.String("source", id),
			zap.Duration("duration", res.Duration),
			zap.String("error", res.Err),
		)
		tracker.Update(id, model.StatusError, nil, res.Err)
		return res
	}
	tracker.Update(id, model.StatusCompleted, res.Fields.Categories(), "")
	return res
}

// awaitWebsite returns the website URL from the most trusted discovery
// source that reports one. Sources that fail or finish without a URL are
// skipped. Once a less trusted source has a URL, the more trusted ones still
// running get half of the remaining deadline before that URL is used. It
// returns "" when no source reported a URL.
func (c *Coordinator) awaitWebsite(ctx context.Context, b *board) (string, error) {
	var grace <-chan time.Time
	for {
		changed := b.watch()

		fallback, waiting := "", false
		for _, id := range c.discovery {
			if b.pending(id) {
				waiting = true
				continue
			}
			r, ok := b.lookup(id)
			if !ok {
				continue
			}
			url := discoveredWebsite(r)
			if url == "" {
				continue
			}
			if !waiting {
				return url, nil
			}
			if fallback == "" {
				fallback = url
			}
		}
		if !waiting {
			return "", nil
		}

		if fallback != "" && grace == nil {
			t := time.NewTimer(graceFor(ctx, c.timeout))
			defer t.Stop()
			grace = t.C
		}

		select {
		case <-changed:
		case <-grace:
			return fallback, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

func discoveredWebsite(r model.SourceResult) string {
	if r.Failed() || r.Fields.Website == nil {
		return ""
	}
	return *r.Fields.Website
}

// graceFor is half of what remains of ctx's deadline.
func graceFor(ctx context.Context, timeout time.Duration) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		return time.Until(dl) / 2
	}
	return timeout / 2
}

func deadlineMessage(ctx context.Context, timeout time.Duration) string {
	if eris.Is(ctx.Err(), context.Canceled) {
		return "research canceled"
	}
	return fmt.Sprintf("timed out after %s", timeout)
}

func countUsable(results []model.SourceResult) int {
	n := 0
	for _, r := range results {
		if r.Usable() {
			n++
		}
	}
	return n
}
