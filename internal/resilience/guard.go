package resilience

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// GuardConfig configures the protection applied to one provider.
type GuardConfig struct {
	// RatePerSecond of 0 disables rate limiting.
	RatePerSecond float64
	Burst         int
	Retry         RetryConfig
	Breaker       BreakerConfig
}

// DefaultGuardConfig returns the per-provider defaults.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		RatePerSecond: 2,
		Burst:         2,
		Retry:         DefaultRetryConfig(),
		Breaker:       DefaultBreakerConfig(),
	}
}

// Guard rate limits, circuit breaks and retries calls to one provider.
// The limiter is consulted before every attempt, retries included.
type Guard struct {
	name    string
	limiter *rate.Limiter
	breaker *CircuitBreaker
	retry   RetryConfig
}

// NewGuard builds a guard for the named provider. Breaker transitions are
// logged.
func NewGuard(name string, cfg GuardConfig) *Guard {
	bc := cfg.Breaker
	user := bc.OnStateChange
	bc.OnStateChange = func(from, to CircuitState) {
		zap.L().Warn("resilience: circuit state change",
			zap.String("provider", name),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
		if user != nil {
			user(from, to)
		}
	}

	g := &Guard{
		name:    name,
		breaker: NewCircuitBreaker(bc),
		retry:   cfg.Retry,
	}
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	return g
}

// Name returns the provider name.
func (g *Guard) Name() string { return g.name }

// Breaker exposes the guard's circuit breaker.
func (g *Guard) Breaker() *CircuitBreaker { return g.breaker }

// Call runs fn under the guard.
func Call[T any](ctx context.Context, g *Guard, fn func(ctx context.Context) (T, error)) (T, error) {
	return DoVal(ctx, g.retry, func(ctx context.Context) (T, error) {
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				var zero T
				return zero, eris.Wrapf(err, "resilience: %s rate limit wait", g.name)
			}
		}
		return ExecuteVal(ctx, g.breaker, fn)
	})
}

// Guards holds one lazily created guard per provider.
type Guards struct {
	mu     sync.Mutex
	cfg    GuardConfig
	guards map[string]*Guard
}

// NewGuards creates a guard set sharing cfg.
func NewGuards(cfg GuardConfig) *Guards {
	return &Guards{cfg: cfg, guards: make(map[string]*Guard)}
}

// Get returns the guard for name, creating it on first use.
func (s *Guards) Get(name string) *Guard {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.guards[name]; ok {
		return g
	}
	g := NewGuard(name, s.cfg)
	s.guards[name] = g
	return g
}

// States returns the breaker state of every guard created so far.
func (s *Guards) States() map[string]CircuitState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]CircuitState, len(s.guards))
	for name, g := range s.guards {
		out[name] = g.breaker.State()
	}
	return out
}
