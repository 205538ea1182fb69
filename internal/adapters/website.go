package adapters

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gimiv/stayfull-research/internal/model"
	"github.com/gimiv/stayfull-research/internal/research"
	"github.com/gimiv/stayfull-research/internal/resilience"
	"github.com/gimiv/stayfull-research/pkg/firecrawl"
	"github.com/gimiv/stayfull-research/pkg/jina"
	"github.com/gimiv/stayfull-research/pkg/openai"
)

// Page length limits, in characters.
const (
	DefaultPageMinChars = 100
	DefaultPageMaxChars = 8000
)

// ErrThinPage is returned when the fetched page has too little text to
// extract from.
var ErrThinPage = eris.New("page content too short")

// WebsiteConfig wires the website adapter's collaborators.
type WebsiteConfig struct {
	Reader      jina.Client
	ReaderGuard *resilience.Guard

	// Scraper is optional. It is tried when the reader fails.
	Scraper      firecrawl.Client
	ScraperGuard *resilience.Guard

	Extractor      openai.Client
	ExtractorGuard *resilience.Guard

	MinChars int
	MaxChars int
}

// Website fetches the hotel's own site and extracts facts from its text.
// It only runs once a website URL is known.
type Website struct {
	cfg WebsiteConfig
}

// NewWebsite creates the website adapter.
func NewWebsite(cfg WebsiteConfig) *Website {
	if cfg.MinChars <= 0 {
		cfg.MinChars = DefaultPageMinChars
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = DefaultPageMaxChars
	}
	return &Website{cfg: cfg}
}

// ID returns the provider identifier.
func (w *Website) ID() string { return research.SourceWebsite }

// NeedsWebsite reports that the adapter requires Query.Website.
func (w *Website) NeedsWebsite() bool { return true }

// Fetch reads the page at q.Website and extracts hotel facts from it.
func (w *Website) Fetch(ctx context.Context, q model.Query) (model.SourceResult, error) {
	if q.Website == "" {
		return model.SourceResult{}, eris.New("website: no url")
	}

	text, err := w.page(ctx, q.Website)
	if err != nil {
		return model.SourceResult{}, err
	}
	if utf8.RuneCountInString(text) < w.cfg.MinChars {
		return model.SourceResult{}, eris.Wrapf(ErrThinPage, "website: %s", q.Website)
	}
	text = truncateRunes(text, w.cfg.MaxChars)

	resp, err := resilience.Call(ctx, w.cfg.ExtractorGuard, func(ctx context.Context) (*openai.Response, error) {
		return w.cfg.Extractor.CompleteJSON(ctx, openai.Request{
			System:      extractionSystemPrompt,
			User:        extractionPrompt(q, q.Website, text),
			Temperature: researchTemperature,
			MaxTokens:   researchMaxTokens,
		})
	})
	if err != nil {
		return model.SourceResult{}, eris.Wrap(err, "website: extract")
	}

	fields, conf, err := ParseHotel(resp.Content)
	if err != nil {
		return model.SourceResult{}, eris.Wrap(err, "website: parse extraction")
	}
	return model.SourceResult{Fields: fields, Confidence: conf}, nil
}

// page returns the page text, trying the reader first and the scraper second.
func (w *Website) page(ctx context.Context, url string) (string, error) {
	read, readErr := resilience.Call(ctx, w.cfg.ReaderGuard, func(ctx context.Context) (*jina.ReadResponse, error) {
		return w.cfg.Reader.Read(ctx, url)
	})
	if readErr == nil {
		content := strings.TrimSpace(read.Data.Content)
		blocked, kind := DetectBlock(content)
		switch {
		case blocked:
			readErr = eris.Wrapf(ErrBlocked, "website: %s (%s)", url, kind)
		case utf8.RuneCountInString(content) >= w.cfg.MinChars:
			return content, nil
		case w.cfg.Scraper == nil || ctx.Err() != nil:
			// Fetch rejects it as thin.
			return content, nil
		default:
			readErr = eris.Wrapf(ErrThinPage, "website: %s", url)
		}
	}
	if w.cfg.Scraper == nil || ctx.Err() != nil {
		return "", eris.Wrap(readErr, "website: read page")
	}

	zap.L().Debug("website: reader failed, trying scraper",
		zap.String("url", url),
		zap.Error(readErr),
	)
	scraped, err := resilience.Call(ctx, w.cfg.ScraperGuard, func(ctx context.Context) (*firecrawl.ScrapeResponse, error) {
		return w.cfg.Scraper.Scrape(ctx, firecrawl.ScrapeRequest{
			URL:             url,
			OnlyMainContent: true,
		})
	})
	if err != nil {
		return "", eris.Wrap(err, "website: scrape page")
	}
	content := strings.TrimSpace(scraped.Data.Markdown)
	if blocked, kind := DetectBlock(content); blocked {
		return "", eris.Wrapf(ErrBlocked, "website: %s (%s)", url, kind)
	}
	return content, nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
