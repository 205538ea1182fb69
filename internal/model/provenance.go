package model

import "strings"

// Strategy names the rule that produced a resolved field value.
type Strategy string

const (
	StrategyConsensus   Strategy = "consensus"
	StrategyAuthority   Strategy = "authority"
	StrategyFirst       Strategy = "first_available"
	StrategyLongest     Strategy = "longest"
	StrategyUnion       Strategy = "union"
	StrategyExclusive   Strategy = "exclusive"
	StrategyAggregate   Strategy = "aggregate"
	StrategyMedian      Strategy = "median"
	StrategyGroundTruth Strategy = "ground_truth"
	StrategyPriority    Strategy = "priority"
	StrategyDefault     Strategy = "default"
)

// Default reasons recorded by the defaults applier.
const (
	ReasonGPSInference      = "gps inference"
	ReasonLocationInference = "location inference"
	ReasonIndustryStandard  = "industry standard"
	ReasonDefault           = "default"
)

// Provenance records how a profile field got its value.
type Provenance struct {
	Strategy Strategy `json:"strategy"`
	Sources  []string `json:"sources,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}

// Discovered builds provenance for a value found by research.
func Discovered(s Strategy, sources ...string) Provenance {
	return Provenance{Strategy: s, Sources: sources}
}

// DefaultedBy builds provenance for a value filled by a fallback.
func DefaultedBy(reason string) Provenance {
	return Provenance{Strategy: StrategyDefault, Reason: reason}
}

// Defaulted reports whether the value came from a fallback rather than a source.
func (p Provenance) Defaulted() bool {
	return p.Strategy == StrategyDefault
}

// String renders the tag stored under _source_<field>: the reason for
// defaulted values, "strategy:src1+src2" for discovered ones.
func (p Provenance) String() string {
	if p.Defaulted() {
		return p.Reason
	}
	if len(p.Sources) == 0 {
		return string(p.Strategy)
	}
	return string(p.Strategy) + ":" + strings.Join(p.Sources, "+")
}
