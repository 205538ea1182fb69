package research

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/gimiv/stayfull-research/internal/model"
)

// Rules parameterizes field resolution. The zero value is not useful; start
// from DefaultRules or LoadRules.
type Rules struct {
	// Authority lists, per scalar field, the sources consulted most trusted
	// first when no consensus is reached.
	Authority map[model.Field][]string `yaml:"authority"`
	// ConsensusThreshold is the minimum number of agreeing sources.
	ConsensusThreshold int `yaml:"consensus_threshold"`
	// MinDescriptionLength is the rune count a description must reach.
	MinDescriptionLength int `yaml:"min_description_length"`
	// WebSearchSource is the exclusive room-type source when it has any.
	WebSearchSource string `yaml:"web_search_source"`
	// GeoSource is the ground truth for coordinates and the first choice for photos.
	GeoSource string `yaml:"geo_source"`
	// PhotoSources are consulted in order for the photo list.
	PhotoSources []string `yaml:"photo_sources"`
	// PolicySources are consulted in order for the policy object.
	PolicySources []string `yaml:"policy_sources"`
	// WebsiteDiscovery lists the sources whose website URL may unblock
	// website extraction, most trusted first.
	WebsiteDiscovery []string `yaml:"website_discovery"`
}

// DefaultRules returns the built-in resolution rules.
func DefaultRules() Rules {
	contact := []string{SourcePlaces, SourcePerplexity, SourceAnthropic, SourceOpenAI, SourceGemini, SourceWebsite}
	schedule := []string{SourcePerplexity, SourceOpenAI, SourceAnthropic, SourceGemini, SourceWebsite}
	return Rules{
		Authority: map[model.Field][]string{
			model.FieldName:         contact,
			model.FieldAddress:      contact,
			model.FieldPhone:        contact,
			model.FieldWebsite:      {SourcePerplexity, SourcePlaces, SourceAnthropic, SourceOpenAI, SourceGemini, SourceWebsite},
			model.FieldCheckInTime:  schedule,
			model.FieldCheckOutTime: schedule,
		},
		ConsensusThreshold:   2,
		MinDescriptionLength: 50,
		WebSearchSource:      SourcePerplexity,
		GeoSource:            SourcePlaces,
		PhotoSources:         []string{SourcePlaces, SourceWebsite},
		PolicySources:        []string{SourcePerplexity, SourceOpenAI, SourceAnthropic, SourceGemini, SourceWebsite},
		WebsiteDiscovery:     []string{SourcePerplexity, SourcePlaces},
	}
}

// LoadRules reads a YAML rules file with a top-level "rules" key. Omitted
// settings keep their defaults.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, eris.Wrapf(err, "research: read rules %s", path)
	}

	var wrapper struct {
		Rules Rules `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return Rules{}, eris.Wrap(err, "research: parse rules")
	}

	r := DefaultRules()
	override := wrapper.Rules
	for field, order := range override.Authority {
		if len(order) > 0 {
			r.Authority[field] = order
		}
	}
	if override.ConsensusThreshold > 0 {
		r.ConsensusThreshold = override.ConsensusThreshold
	}
	if override.MinDescriptionLength > 0 {
		r.MinDescriptionLength = override.MinDescriptionLength
	}
	if override.WebSearchSource != "" {
		r.WebSearchSource = override.WebSearchSource
	}
	if override.GeoSource != "" {
		r.GeoSource = override.GeoSource
	}
	if len(override.PhotoSources) > 0 {
		r.PhotoSources = override.PhotoSources
	}
	if len(override.PolicySources) > 0 {
		r.PolicySources = override.PolicySources
	}
	if len(override.WebsiteDiscovery) > 0 {
		r.WebsiteDiscovery = override.WebsiteDiscovery
	}
	return r, nil
}

// AuthorityOrder returns the authority list for field.
func (r Rules) AuthorityOrder(field model.Field) []string {
	return r.Authority[field]
}
