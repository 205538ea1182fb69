package research

import (
	"slices"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/gimiv/stayfull-research/internal/model"
)

// candidate is one source's value for a field.
type candidate[T any] struct {
	source string
	value  T
}

// rank returns the position of source in order, or len(order) if absent.
func rank(order []string, source string) int {
	if i := slices.Index(order, source); i >= 0 {
		return i
	}
	return len(order)
}

// consensusWithAuthority picks the value reported by at least threshold
// sources. With no consensus it walks the authority order, then falls back
// to the lexically first source. Each source counts once per value.
func consensusWithAuthority(cands []candidate[string], authority []string, threshold int) (string, model.Provenance, bool) {
	if len(cands) == 0 {
		return "", model.Provenance{}, false
	}

	supporters := make(map[string][]string)
	for _, c := range cands {
		if !slices.Contains(supporters[c.value], c.source) {
			supporters[c.value] = append(supporters[c.value], c.source)
		}
	}

	bestRank := func(srcs []string) int {
		r := len(authority)
		for _, s := range srcs {
			r = min(r, rank(authority, s))
		}
		return r
	}

	var (
		winner string
		found  bool
	)
	for value, srcs := range supporters {
		if len(srcs) < threshold {
			continue
		}
		if !found {
			winner, found = value, true
			continue
		}
		cur := supporters[winner]
		switch {
		case len(srcs) != len(cur):
			if len(srcs) > len(cur) {
				winner = value
			}
		case bestRank(srcs) != bestRank(cur):
			if bestRank(srcs) < bestRank(cur) {
				winner = value
			}
		case value < winner:
			winner = value
		}
	}
	if found {
		srcs := slices.Clone(supporters[winner])
		sort.Strings(srcs)
		return winner, model.Discovered(model.StrategyConsensus, srcs...), true
	}

	for _, src := range authority {
		for _, c := range cands {
			if c.source == src {
				return c.value, model.Discovered(model.StrategyAuthority, src), true
			}
		}
	}

	first := cands[0]
	for _, c := range cands[1:] {
		if c.source < first.source {
			first = c
		}
	}
	return first.value, model.Discovered(model.StrategyFirst, first.source), true
}

// longestValid returns the longest candidate of at least minLen runes.
func longestValid(cands []candidate[string], minLen int) (string, model.Provenance, bool) {
	var (
		best  candidate[string]
		bestN = -1
	)
	for _, c := range cands {
		n := utf8.RuneCountInString(c.value)
		if n < minLen {
			continue
		}
		if n > bestN || (n == bestN && (c.value < best.value || (c.value == best.value && c.source < best.source))) {
			best, bestN = c, n
		}
	}
	if bestN < 0 {
		return "", model.Provenance{}, false
	}
	return best.value, model.Discovered(model.StrategyLongest, best.source), true
}

// union merges string lists, dropping exact duplicates. Output is sorted.
func union(cands []candidate[[]string]) ([]string, model.Provenance, bool) {
	seen := make(map[string]struct{})
	var (
		out     []string
		sources []string
	)
	for _, c := range cands {
		contributed := false
		for _, v := range c.value {
			if v == "" {
				continue
			}
			contributed = true
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
		if contributed {
			sources = append(sources, c.source)
		}
	}
	if len(out) == 0 {
		return nil, model.Provenance{}, false
	}
	sort.Strings(out)
	sort.Strings(sources)
	return out, model.Discovered(model.StrategyUnion, sources...), true
}

// median returns the median of the values, averaging and truncating the
// two middle values for even counts.
func median(cands []candidate[int]) (int, model.Provenance, bool) {
	if len(cands) == 0 {
		return 0, model.Provenance{}, false
	}
	vals := make([]int, 0, len(cands))
	sources := make([]string, 0, len(cands))
	for _, c := range cands {
		vals = append(vals, c.value)
		sources = append(sources, c.source)
	}
	sort.Ints(vals)
	sort.Strings(sources)

	mid := len(vals) / 2
	m := vals[mid]
	if len(vals)%2 == 0 {
		m = (vals[mid-1] + vals[mid]) / 2
	}
	return m, model.Discovered(model.StrategyMedian, sources...), true
}

// firstInOrder returns the first candidate whose source appears earliest in order.
func firstInOrder[T any](cands []candidate[T], order []string) (T, model.Provenance, bool) {
	for _, src := range order {
		for _, c := range cands {
			if c.source == src {
				return c.value, model.Discovered(model.StrategyPriority, src), true
			}
		}
	}
	var zero T
	return zero, model.Provenance{}, false
}

var roomFolder = cases.Fold()

// roomKey normalizes a room name for cross-source matching.
func roomKey(name string) string {
	return roomFolder.String(strings.TrimSpace(name))
}

// aggregateRooms matches rooms across sources by normalized name and fills
// missing sub-fields first-write-wins. Candidates must already be in a
// deterministic order.
func aggregateRooms(cands []candidate[[]model.RoomType]) ([]model.RoomType, model.Provenance, bool) {
	index := make(map[string]int)
	var (
		out     []model.RoomType
		sources []string
	)
	for _, c := range cands {
		contributed := false
		for _, rt := range c.value {
			key := roomKey(rt.Name)
			if key == "" {
				continue
			}
			contributed = true
			i, ok := index[key]
			if !ok {
				rt.Name = strings.TrimSpace(rt.Name)
				index[key] = len(out)
				out = append(out, rt)
				continue
			}
			merged := &out[i]
			if merged.Beds == "" {
				merged.Beds = rt.Beds
			}
			if merged.Capacity == 0 {
				merged.Capacity = rt.Capacity
			}
			if merged.Description == "" {
				merged.Description = rt.Description
			}
		}
		if contributed {
			sources = append(sources, c.source)
		}
	}
	if len(out) == 0 {
		return nil, model.Provenance{}, false
	}
	return out, model.Discovered(model.StrategyAggregate, sources...), true
}
