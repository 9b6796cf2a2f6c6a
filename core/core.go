package core

import (
	"fmt"
	"slices"
	"strings"
)

// Complexity classifies a concept's difficulty on the three-level scale used
// throughout analysis and planning.
type Complexity string

const (
	// ComplexitySimple covers definitions and basic identification.
	ComplexitySimple Complexity = "simple"
	// ComplexityMedium covers relationships and patterns.
	ComplexityMedium Complexity = "medium"
	// ComplexityComplex covers application, creation and advanced patterns.
	ComplexityComplex Complexity = "complex"
)

// Rank returns the ordinal position of the complexity level (simple first).
// Unknown values rank after complex so malformed data sorts last rather than
// silently first.
func (c Complexity) Rank() int {
	switch c {
	case ComplexitySimple:
		return 0
	case ComplexityMedium:
		return 1
	case ComplexityComplex:
		return 2
	default:
		return 3
	}
}

// Valid reports whether the value is one of the three known levels.
func (c Complexity) Valid() bool { return c.Rank() < 3 }

// Difficulty is the five-level ordered scale assigned to game specs. The
// planner guarantees the sequence of specs is non-decreasing on this scale.
type Difficulty string

const (
	DifficultyVeryEasy Difficulty = "very_easy"
	DifficultyEasy     Difficulty = "easy"
	DifficultyMedium   Difficulty = "medium"
	DifficultyHard     Difficulty = "hard"
	DifficultyVeryHard Difficulty = "very_hard"
)

// difficultyOrder is the authoritative ascending order of the scale.
var difficultyOrder = []Difficulty{
	DifficultyVeryEasy, DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyVeryHard,
}

// Rank returns the ordinal position on the scale, or len(scale) for unknown
// values.
func (d Difficulty) Rank() int {
	for i, v := range difficultyOrder {
		if v == d {
			return i
		}
	}
	return len(difficultyOrder)
}

// Label renders the difficulty for human-facing output ("Very Easy", ...).
func (d Difficulty) Label() string {
	parts := strings.Split(string(d), "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

// DifficultyForPosition maps a 0-based slot position within a plan of the
// given size onto the five-level scale, spreading levels evenly so the
// resulting sequence is non-decreasing.
func DifficultyForPosition(pos, total int) Difficulty {
	if total <= 0 {
		return DifficultyMedium
	}
	idx := pos * len(difficultyOrder) / total
	if idx >= len(difficultyOrder) {
		idx = len(difficultyOrder) - 1
	}
	return difficultyOrder[idx]
}

// ContentDocument is the normalized form of the raw educational input.
// Created once per run by the ingestor and immutable afterwards.
type ContentDocument struct {
	RawText        string   `json:"raw_text"`
	NormalizedText string   `json:"normalized_text"`
	WordCount      int      `json:"word_count"`
	DetectedTopics []string `json:"detected_topics"`
}

// ConceptNode is one atomic teachable idea extracted from the content.
// PrerequisiteIDs reference other concepts in the same report; the analyzer
// rejects reports whose prerequisite graph contains a cycle.
type ConceptNode struct {
	ID              string     `json:"id"`
	Label           string     `json:"label"`
	Complexity      Complexity `json:"complexity"`
	PrerequisiteIDs []string   `json:"prerequisite_ids,omitempty"`
}

// AnalysisReport is the analyzer's immutable output: the concept set, the
// deterministically derived game count and the complexity profile of the
// content. Downstream stages treat it as read-only input.
type AnalysisReport struct {
	Concepts                     []ConceptNode      `json:"concepts"`
	OptimalGameCount             int                `json:"optimal_game_count"`
	ComplexityBreakdown          map[Complexity]int `json:"complexity_breakdown"`
	EstimatedLearningTimeMinutes int                `json:"estimated_learning_time_minutes"`
	Reasoning                    string             `json:"reasoning,omitempty"`
}

// ConceptIDs returns the ids of all concepts in report order.
func (r AnalysisReport) ConceptIDs() []string {
	ids := make([]string, len(r.Concepts))
	for i, c := range r.Concepts {
		ids[i] = c.ID
	}
	return ids
}

// Concept looks up a node by id.
func (r AnalysisReport) Concept(id string) (ConceptNode, bool) {
	for _, c := range r.Concepts {
		if c.ID == id {
			return c, true
		}
	}
	return ConceptNode{}, false
}

// Clone deep-copies the report so callers can hand it downstream without
// sharing slices or maps.
func (r AnalysisReport) Clone() AnalysisReport {
	cp := r
	cp.Concepts = make([]ConceptNode, len(r.Concepts))
	for i, c := range r.Concepts {
		c.PrerequisiteIDs = slices.Clone(c.PrerequisiteIDs)
		cp.Concepts[i] = c
	}
	cp.ComplexityBreakdown = make(map[Complexity]int, len(r.ComplexityBreakdown))
	for k, v := range r.ComplexityBreakdown {
		cp.ComplexityBreakdown[k] = v
	}
	return cp
}

// GameSpec is the plan for one lesson: which concepts it covers, at what
// difficulty, and a hint for the interaction mechanic the generator should
// build around. Index is the 1-based position in the authoritative
// generation and navigation order.
type GameSpec struct {
	Index             int        `json:"index"`
	Title             string     `json:"title"`
	Difficulty        Difficulty `json:"difficulty"`
	CoveredConceptIDs []string   `json:"covered_concept_ids"`
	MechanicHint      string     `json:"mechanic_hint"`
	LearningObjective string     `json:"learning_objective,omitempty"`
	EstimatedMinutes  int        `json:"estimated_minutes,omitempty"`
}

// ArtifactStatus tracks an artifact through certification.
type ArtifactStatus string

const (
	// StatusRaw marks an artifact fresh out of synthesis, unvalidated.
	StatusRaw ArtifactStatus = "raw"
	// StatusCertified marks an artifact that passed (or was repaired into
	// passing) structural, containment and policy checks.
	StatusCertified ArtifactStatus = "certified"
	// StatusFailed marks an artifact the validator permanently rejected.
	StatusFailed ArtifactStatus = "failed"
)

// GameArtifact is one generated self-contained lesson document. It is
// created as raw by the synthesizer and moved to certified or failed exactly
// once by the validator; it is never mutated afterwards.
type GameArtifact struct {
	SpecIndex int            `json:"spec_index"`
	Markup    string         `json:"markup"`
	Status    ArtifactStatus `json:"status"`
}

// ManifestEntry is one navigable lesson in the published portal.
type ManifestEntry struct {
	SpecIndex  int        `json:"spec_index"`
	Title      string     `json:"title"`
	Difficulty Difficulty `json:"difficulty"`
	Path       string     `json:"path"`
}

// Gap records a planned lesson that did not make it into the portal and the
// stage that dropped it, so the manifest stays honest about partial output.
type Gap struct {
	SpecIndex int    `json:"spec_index"`
	Stage     string `json:"stage"` // "synthesis" or "validation"
	Reason    string `json:"reason"`
}

/// PortalManifest is the write-once published output: one entry per certified
// lesson in spec order, the analysis that drove the plan, and the gap list
// for lessons that permanently failed.
type PortalManifest struct {
	Entries        []ManifestEntry `json:"entries"`
	Analysis       AnalysisReport  `json:"analysis"`
	Gaps           []Gap           `json:"gaps,omitempty"`
	PlannedCount   int             `json:"planned_count"`
	CertifiedCount int             `json:"certified_count"`
}

// Summary renders the planned-versus-certified ratio for console output.
func (m PortalManifest) Summary() string {
	return fmt.Sprintf("%d/%d lessons certified", m.CertifiedCount, m.PlannedCount)
}
