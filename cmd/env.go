package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/gimiv/stayfull-research/internal/adapters"
	"github.com/gimiv/stayfull-research/internal/research"
	"github.com/gimiv/stayfull-research/internal/store"
)

// researchEnv holds the adapters and researcher shared by the research
// and serve commands.
type researchEnv struct {
	Adapters   *adapters.Set
	Researcher *research.Researcher
}

// Close releases provider clients.
func (re *researchEnv) Close() {
	if re.Adapters != nil {
		_ = re.Adapters.Close()
	}
}

// initResearch builds every configured adapter and the researcher over them.
// Callers should defer env.Close().
func initResearch(ctx context.Context) (*researchEnv, error) {
	rules := research.DefaultRules()
	if cfg.Research.RulesPath != "" {
		r, err := research.LoadRules(cfg.Research.RulesPath)
		if err != nil {
			return nil, err
		}
		rules = r
	}

	set, err := adapters.Build(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "build adapters")
	}
	if set.Registry.Len() == 0 {
		_ = set.Close()
		return nil, eris.New("no research sources are configured; set at least one provider key")
	}

	timeout := time.Duration(cfg.Research.TimeoutSecs) * time.Second
	return &researchEnv{
		Adapters:   set,
		Researcher: research.New(set.Registry, rules, set.Timezones, research.WithTimeout(timeout)),
	}, nil
}

// initStore opens the configured run store and applies its schema.
func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.SQLitePath
		if path == "" {
			path = "stayfull.db"
		}
		st, err = store.NewSQLite(path)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}
