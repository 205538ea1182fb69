package adapters

import (
	"context"
	"io"
	"time"

	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gimiv/stayfull-research/internal/config"
	"github.com/gimiv/stayfull-research/internal/research"
	"github.com/gimiv/stayfull-research/internal/resilience"
	"github.com/gimiv/stayfull-research/pkg/anthropic"
	"github.com/gimiv/stayfull-research/pkg/firecrawl"
	"github.com/gimiv/stayfull-research/pkg/gemini"
	"github.com/gimiv/stayfull-research/pkg/google"
	"github.com/gimiv/stayfull-research/pkg/jina"
	"github.com/gimiv/stayfull-research/pkg/openai"
	"github.com/gimiv/stayfull-research/pkg/perplexity"
)

// Set is the adapter registry built from configuration plus the resources
// behind it.
type Set struct {
	Registry *research.Registry
	// Timezones is nil when the directory source is not configured.
	Timezones research.TimezoneLookup
	Guards    *resilience.Guards

	closers []io.Closer
}

// Close releases provider clients that hold connections.
func (s *Set) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// GuardConfig converts the research settings into per-provider guard
// settings.
func GuardConfig(rc config.ResearchConfig) resilience.GuardConfig {
	gc := resilience.DefaultGuardConfig()
	if rc.Retry.MaxAttempts > 0 {
		gc.Retry.MaxAttempts = rc.Retry.MaxAttempts
	}
	if rc.Retry.InitialBackoffMs > 0 {
		gc.Retry.InitialBackoff = time.Duration(rc.Retry.InitialBackoffMs) * time.Millisecond
	}
	if rc.Retry.MaxBackoffMs > 0 {
		gc.Retry.MaxBackoff = time.Duration(rc.Retry.MaxBackoffMs) * time.Millisecond
	}
	if rc.Retry.Multiplier > 0 {
		gc.Retry.Multiplier = rc.Retry.Multiplier
	}
	gc.Retry.JitterFraction = rc.Retry.JitterFraction
	if rc.Circuit.FailureThreshold > 0 {
		gc.Breaker.FailureThreshold = rc.Circuit.FailureThreshold
	}
	if rc.Circuit.ResetTimeoutSecs > 0 {
		gc.Breaker.ResetTimeout = time.Duration(rc.Circuit.ResetTimeoutSecs) * time.Second
	}
	gc.RatePerSecond = rc.Rate.PerSecond
	gc.Burst = rc.Rate.Burst
	return gc
}

// Build registers an adapter for every configured source that has
// credentials, in the configured order. Sources without credentials are
// skipped with a log line.
func Build(ctx context.Context, cfg *config.Config) (*Set, error) {
	set := &Set{
		Registry: research.NewRegistry(),
		Guards:   resilience.NewGuards(GuardConfig(cfg.Research)),
	}
	guards := set.Guards

	skip := func(id, reason string) {
		zap.L().Info("adapters: source disabled",
			zap.String("source", id),
			zap.String("reason", reason),
		)
	}

	for _, id := range cfg.Research.Sources {
		switch id {
		case research.SourcePerplexity:
			if cfg.Perplexity.Key == "" {
				skip(id, "perplexity.key not set")
				continue
			}
			var opts []perplexity.Option
			if cfg.Perplexity.BaseURL != "" {
				opts = append(opts, perplexity.WithBaseURL(cfg.Perplexity.BaseURL))
			}
			if cfg.Perplexity.Model != "" {
				opts = append(opts, perplexity.WithModel(cfg.Perplexity.Model))
			}
			set.Registry.Register(NewPerplexity(perplexity.NewClient(cfg.Perplexity.Key, opts...), guards.Get(id)))

		case research.SourceOpenAI:
			if cfg.OpenAI.Key == "" {
				skip(id, "openai.key not set")
				continue
			}
			client := openai.NewClient(cfg.OpenAI.Key, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
			set.Registry.Register(NewOpenAI(client, guards.Get(id)))

		case research.SourceAnthropic:
			if cfg.Anthropic.Key == "" {
				skip(id, "anthropic.key not set")
				continue
			}
			var opts []anthropicopt.RequestOption
			if cfg.Anthropic.BaseURL != "" {
				opts = append(opts, anthropicopt.WithBaseURL(cfg.Anthropic.BaseURL))
			}
			// Retries are owned by the guard.
			opts = append(opts, anthropicopt.WithMaxRetries(0))
			model := cfg.Anthropic.Model
			if model == "" {
				model = anthropic.DefaultModel
			}
			set.Registry.Register(NewAnthropic(anthropic.NewClient(cfg.Anthropic.Key, opts...), model, guards.Get(id)))

		case research.SourceGemini:
			if cfg.Gemini.Key == "" {
				skip(id, "gemini.key not set")
				continue
			}
			client, err := gemini.NewClient(ctx, cfg.Gemini.Key, cfg.Gemini.Model)
			if err != nil {
				_ = set.Close()
				return nil, eris.Wrap(err, "adapters: gemini client")
			}
			set.closers = append(set.closers, client)
			set.Registry.Register(NewGemini(client, guards.Get(id)))

		case research.SourcePlaces:
			if cfg.Google.Key == "" {
				skip(id, "google.key not set")
				continue
			}
			var opts []google.Option
			if cfg.Google.PlacesURL != "" {
				opts = append(opts, google.WithBaseURL(cfg.Google.PlacesURL))
			}
			if cfg.Google.MapsURL != "" {
				opts = append(opts, google.WithMapsBaseURL(cfg.Google.MapsURL))
			}
			places := NewPlaces(google.NewClient(cfg.Google.Key, opts...), guards.Get(id), cfg.Research.MaxPhotos, cfg.Google.PhotoWidth)
			set.Registry.Register(places)
			set.Timezones = places

		case research.SourceWebsite:
			// Extraction runs on the OpenAI model.
			if cfg.OpenAI.Key == "" {
				skip(id, "openai.key not set")
				continue
			}
			wc := WebsiteConfig{
				Reader:         jina.NewClient(cfg.Jina.Key, jinaOpts(cfg.Jina)...),
				ReaderGuard:    guards.Get("jina"),
				Extractor:      openai.NewClient(cfg.OpenAI.Key, cfg.OpenAI.Model, cfg.OpenAI.BaseURL),
				ExtractorGuard: guards.Get(research.SourceOpenAI),
				MinChars:       cfg.Research.PageMinChars,
				MaxChars:       cfg.Research.PageMaxChars,
			}
			if cfg.Firecrawl.Key != "" {
				var opts []firecrawl.Option
				if cfg.Firecrawl.BaseURL != "" {
					opts = append(opts, firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL))
				}
				wc.Scraper = firecrawl.NewClient(cfg.Firecrawl.Key, opts...)
				wc.ScraperGuard = guards.Get("firecrawl")
			}
			set.Registry.Register(NewWebsite(wc))

		default:
			_ = set.Close()
			return nil, eris.Errorf("adapters: unknown source %q", id)
		}
	}

	zap.L().Info("adapters: sources configured",
		zap.Strings("sources", set.Registry.IDs()),
	)
	return set, nil
}

func jinaOpts(c config.JinaConfig) []jina.Option {
	if c.BaseURL == "" {
		return nil
	}
	return []jina.Option{jina.WithBaseURL(c.BaseURL)}
}
