package candidates

import (
	"cmp"
	"strings"

	"github.com/agentstation/ontomerge/pkg/errors"
	"github.com/agentstation/ontomerge/pkg/matchgraph"
)

// Cardinality limits how many admitted matches an entity may keep.
type Cardinality string

// Cardinality filters.
const (
	CardinalityNone      Cardinality = "none"
	CardinalityManyToOne Cardinality = "many-to-one"
	CardinalityOneToMany Cardinality = "one-to-many"
	CardinalityOneToOne  Cardinality = "one-to-one"
)

// ParseCardinality parses a filter name; the empty string means none.
func ParseCardinality(s string) (Cardinality, error) {
	switch c := Cardinality(strings.ToLower(strings.TrimSpace(s))); c {
	case CardinalityNone, CardinalityManyToOne, CardinalityOneToMany, CardinalityOneToOne:
		return c, nil
	case "":
		return CardinalityNone, nil
	default:
		return "", &errors.ValidationError{
			Field:   "cardinality",
			Value:   s,
			Message: "must be one of none, many-to-one, one-to-many, one-to-one",
		}
	}
}

// Filter applies the cardinality filter to the candidates rule admits.
// Candidates the rule rejects are returned untouched so the graph builder
// still counts them. Input order is preserved.
//
// many-to-one keeps the best admitted candidate per source entity,
// one-to-many the best per target entity, and one-to-one applies both in
// that order. Equal weights are broken by the lexicographically smaller
// other endpoint.
func Filter(cands []matchgraph.Candidate, rule matchgraph.Rule, card Cardinality) []matchgraph.Candidate {
	switch card {
	case CardinalityManyToOne:
		return best(cands, rule, bySource)
	case CardinalityOneToMany:
		return best(cands, rule, byTarget)
	case CardinalityOneToOne:
		return best(best(cands, rule, bySource), rule, byTarget)
	default:
		return cands
	}
}

// side returns the grouping key and the other endpoint of a candidate.
type side func(matchgraph.Candidate) (key, other string)

func bySource(c matchgraph.Candidate) (string, string) { return c.EntityA, c.EntityB }
func byTarget(c matchgraph.Candidate) (string, string) { return c.EntityB, c.EntityA }

func best(cands []matchgraph.Candidate, rule matchgraph.Rule, by side) []matchgraph.Candidate {
	winner := make(map[string]int)
	for i, c := range cands {
		if !rule.Admit(c) {
			continue
		}
		key, _ := by(c)
		j, ok := winner[key]
		if !ok || better(c, cands[j], by) {
			winner[key] = i
		}
	}

	out := make([]matchgraph.Candidate, 0, len(cands))
	for i, c := range cands {
		if !rule.Admit(c) {
			out = append(out, c)
			continue
		}
		if key, _ := by(c); winner[key] == i {
			out = append(out, c)
		}
	}
	return out
}

func better(a, b matchgraph.Candidate, by side) bool {
	if a.Weight() != b.Weight() {
		return a.Weight() > b.Weight()
	}
	_, ao := by(a)
	_, bo := by(b)
	return cmp.Less(ao, bo)
}
