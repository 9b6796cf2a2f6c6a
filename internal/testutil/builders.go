// Package testutil provides builders shared by package tests: canned
// analysis responses, concept graphs and lesson markup.
package testutil

import (
	"encoding/json"
	"fmt"

	"github.com/eduforge/eduforge/core"
)

// Concept builds a ConceptNode.
func Concept(id, label string, cx core.Complexity, prereqs ...string) core.ConceptNode {
	return core.ConceptNode{ID: id, Label: label, Complexity: cx, PrerequisiteIDs: prereqs}
}

// Report builds an AnalysisReport over the concepts with the breakdown
// recomputed and the game count supplied by the caller.
func Report(gameCount int, concepts ...core.ConceptNode) core.AnalysisReport {
	breakdown := map[core.Complexity]int{
		core.ComplexitySimple:  0,
		core.ComplexityMedium:  0,
		core.ComplexityComplex: 0,
	}
	minutes := 0
	for _, c := range concepts {
		breakdown[c.Complexity]++
		minutes += 3 + 2*c.Complexity.Rank()
	}
	return core.AnalysisReport{
		Concepts:                     concepts,
		OptimalGameCount:             gameCount,
		ComplexityBreakdown:          breakdown,
		EstimatedLearningTimeMinutes: minutes,
	}
}

// AnalysisJSON serializes concepts into the capability response schema.
func AnalysisJSON(concepts ...core.ConceptNode) string {
	type conceptDoc struct {
		ID              string   `json:"id"`
		Label           string   `json:"label"`
		Complexity      string   `json:"complexity"`
		PrerequisiteIDs []string `json:"prerequisite_ids"`
	}
	docs := make([]conceptDoc, len(concepts))
	breakdown := map[string]int{"simple": 0, "medium": 0, "complex": 0}
	for i, c := range concepts {
		prereqs := c.PrerequisiteIDs
		if prereqs == nil {
			prereqs = []string{}
		}
		docs[i] = conceptDoc{ID: c.ID, Label: c.Label, Complexity: string(c.Complexity), PrerequisiteIDs: prereqs}
		breakdown[string(c.Complexity)]++
	}
	payload := map[string]any{
		"concepts":                        docs,
		"complexity_breakdown":            breakdown,
		"estimated_learning_time_minutes": 5 * len(concepts),
		"reasoning":                       "test fixture",
	}
	data, err := json.Marshal(payload)
	if err != nil {
		panic(fmt.Sprintf("marshal analysis fixture: %v", err))
	}
	return string(data)
}

// GradedConcepts builds nSimple + nMedium + nComplex concepts with
// sequential ids.
func GradedConcepts(nSimple, nMedium, nComplex int) []core.ConceptNode {
	var out []core.ConceptNode
	i := 0
	add := func(n int, cx core.Complexity) {
		for j := 0; j < n; j++ {
			i++
			out = append(out, Concept(fmt.Sprintf("c%d", i), fmt.Sprintf("Concept %d", i), cx))
		}
	}
	add(nSimple, core.ComplexitySimple)
	add(nMedium, core.ComplexityMedium)
	add(nComplex, core.ComplexityComplex)
	return out
}
