package research

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gimiv/stayfull-research/internal/model"
)

func TestLoadRules(t *testing.T) {
	yaml := `
rules:
  consensus_threshold: 3
  authority:
    phone: [website, google_places]
  photo_sources: [website]
`
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	r, err := LoadRules(path)
	require.NoError(t, err)

	assert.Equal(t, 3, r.ConsensusThreshold)
	assert.Equal(t, []string{SourceWebsite, SourcePlaces}, r.AuthorityOrder(model.FieldPhone))
	assert.Equal(t, []string{SourceWebsite}, r.PhotoSources)

	// Untouched settings keep their defaults.
	def := DefaultRules()
	assert.Equal(t, def.MinDescriptionLength, r.MinDescriptionLength)
	assert.Equal(t, def.AuthorityOrder(model.FieldAddress), r.AuthorityOrder(model.FieldAddress))
	assert.Equal(t, SourcePerplexity, r.WebSearchSource)
	assert.Equal(t, SourcePlaces, r.GeoSource)
}

func TestLoadRules_Errors(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules: [unclosed"), 0644))
	_, err = LoadRules(path)
	assert.Error(t, err)
}

func TestDefaultRules(t *testing.T) {
	t.Parallel()

	r := DefaultRules()
	assert.Equal(t, 2, r.ConsensusThreshold)
	assert.Equal(t, 50, r.MinDescriptionLength)
	assert.Equal(t, SourcePlaces, r.AuthorityOrder(model.FieldAddress)[0])
	assert.Equal(t, SourcePlaces, r.AuthorityOrder(model.FieldPhone)[0])
	assert.Equal(t, SourcePerplexity, r.AuthorityOrder(model.FieldWebsite)[0])
}
