package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gimiv/stayfull-research/internal/config"
	"github.com/gimiv/stayfull-research/internal/model"
	"github.com/gimiv/stayfull-research/internal/store"
)

func TestInitStore_SQLite(t *testing.T) {
	withConfig(t, &config.Config{Store: config.StoreConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "cmd.db"),
	}})

	ctx := context.Background()
	st, err := initStore(ctx)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	// Schema is applied: a run round-trips.
	run, err := st.CreateRun(ctx, model.NewQuery("Seaside Inn", "Miami", "FL"))
	require.NoError(t, err)
	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusQueued, got.Status)

	_, err = st.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestInitStore_UnknownDriver(t *testing.T) {
	withConfig(t, &config.Config{Store: config.StoreConfig{Driver: "mysql"}})

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver: mysql")
}

func TestInitResearch_NoSources(t *testing.T) {
	withConfig(t, &config.Config{Research: config.ResearchConfig{
		Sources:     []string{"perplexity", "openai"},
		TimeoutSecs: 60,
	}})

	_, err := initResearch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no research sources are configured")
}

func TestInitResearch_MissingRules(t *testing.T) {
	withConfig(t, &config.Config{Research: config.ResearchConfig{
		RulesPath: filepath.Join(t.TempDir(), "missing.yaml"),
	}})

	_, err := initResearch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read rules")
}

func TestInitResearch(t *testing.T) {
	c := &config.Config{Research: config.ResearchConfig{
		Sources:     []string{"perplexity", "anthropic"},
		TimeoutSecs: 30,
	}}
	c.Perplexity.Key = "pplx"
	c.Anthropic.Key = "sk-ant"
	withConfig(t, c)

	env, err := initResearch(context.Background())
	require.NoError(t, err)
	defer env.Close()

	assert.Equal(t, []string{"perplexity", "anthropic"}, env.Researcher.Sources())
}
