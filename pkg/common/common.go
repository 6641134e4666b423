package common

import (
	"encoding/json"
	"fmt"
)

// Triple is a single (subject, relation, object) edge of an entity-relation
// graph. Subjects and objects are entity identifiers, relations are labels.
//
// On the wire a triple is a three element JSON array:
//
//	["Eiffel_Tower", "location", "Paris"]
type Triple struct {
	Subject  string
	Relation string
	Object   string
}

// MarshalJSON encodes the triple as a [subject, relation, object] array.
func (t Triple) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]string{t.Subject, t.Relation, t.Object})
}

// UnmarshalJSON decodes a [subject, relation, object] array.
func (t *Triple) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("triple must be an array of strings: %w", err)
	}
	if len(raw) != 3 {
		return fmt.Errorf("triple must have 3 elements, got %d", len(raw))
	}
	t.Subject, t.Relation, t.Object = raw[0], raw[1], raw[2]
	return nil
}

// Graph is an ordered sequence of triples. Entity identifiers may repeat
// across triples.
type Graph []Triple

// Entities returns the distinct entity identifiers of the graph in discovery
// order: triples left to right, subject before object.
func (g Graph) Entities() []string {
	seen := make(map[string]struct{}, len(g)*2)
	entities := make([]string, 0, len(g)*2)
	for _, t := range g {
		for _, e := range [2]string{t.Subject, t.Object} {
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			entities = append(entities, e)
		}
	}
	return entities
}

// ConcatMap maps an entity identifier to the surface form the generation
// service uses to realize that entity in text.
type ConcatMap map[string]string

// Plan is one candidate linearization of a graph.
//
// Rank is the 1-based position in the order the service returned the plans.
// It is assigned before any sampling and never recomputed afterwards, so it
// identifies where a plan came from rather than where it is displayed.
type Plan struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank,omitempty"`
}

// LinearizationSet is an ordered, score-descending sequence of plans.
type LinearizationSet []Plan

// Texts returns the plan texts in order.
func (s LinearizationSet) Texts() []string {
	texts := make([]string, len(s))
	for i, p := range s {
		texts[i] = p.Text
	}
	return texts
}

// PlanMode selects between exhaustive and partial plan generation.
type PlanMode string

const (
	PlanModeFull    PlanMode = "full"
	PlanModePartial PlanMode = "partial"
)

// Valid reports whether m is a known plan mode.
func (m PlanMode) Valid() bool {
	return m == PlanModeFull || m == PlanModePartial
}
