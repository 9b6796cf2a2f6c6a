// Package analyze derives the concept graph and complexity profile of a
// content document. The concept extraction is delegated to the external
// analysis capability; everything after the response boundary is
// deterministic, including the optimal game count, which is computed from
// the returned complexity mix rather than re-asked from the model.
package analyze

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/eduforge/eduforge/config"
	"github.com/eduforge/eduforge/core"
	"github.com/eduforge/eduforge/internal/textutil"
	"github.com/eduforge/eduforge/logging"
)

// Analyzer issues one structured analysis request per document and parses
// the response into a strict AnalysisReport at the boundary.
type Analyzer struct {
	cap          core.Capability
	minWordCount int
	formula      config.CountFormula
	logger       logging.Logger
}

// Options configure an Analyzer beyond its capability.
type Options struct {
	MinWordCount int
	Formula      config.CountFormula
	Logger       logging.Logger
}

// New constructs an Analyzer. Zero options fall back to the config defaults.
func New(cap core.Capability, optFns ...func(o *Options)) *Analyzer {
	def := config.Default()
	opts := Options{
		MinWordCount: def.MinWordCount,
		Formula:      def.Formula,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Analyzer{cap: cap, minWordCount: opts.MinWordCount, formula: opts.Formula, logger: opts.Logger}
}

// boundary DTO: the loosely-typed model response is decoded into this shape
// and nothing else crosses into the pipeline.
type conceptPayload struct {
	ID              string   `json:"id"`
	Label           string   `json:"label"`
	Complexity      string   `json:"complexity"`
	PrerequisiteIDs []string `json:"prerequisite_ids"`
}

type analysisPayload struct {
	Concepts  []conceptPayload `json:"concepts"`
	Reasoning string           `json:"reasoning"`
}

// Analyze derives an AnalysisReport from the document. It fails with
// *core.AnalysisError when the document is below the minimum viable word
// count or the capability response cannot be parsed into the expected
// schema.
func (a *Analyzer) Analyze(ctx context.Context, doc core.ContentDocument) (core.AnalysisReport, error) {
	if doc.WordCount < a.minWordCount {
		return core.AnalysisReport{}, &core.AnalysisError{
			Msg: "content below minimum viable word count (" + strconv.Itoa(doc.WordCount) + " < " + strconv.Itoa(a.minWordCount) + ")",
		}
	}

	raw, err := a.cap.AnalyzeContent(ctx, doc.NormalizedText)
	if err != nil {
		return core.AnalysisReport{}, &core.AnalysisError{Msg: "analysis capability call failed", Cause: err}
	}

	report, err := a.parse(raw)
	if err != nil {
		return core.AnalysisReport{}, err
	}

	a.logger.Info("content analysis complete",
		"concepts", len(report.Concepts),
		"optimal_game_count", report.OptimalGameCount,
		"estimated_minutes", report.EstimatedLearningTimeMinutes)
	return report, nil
}

func (a *Analyzer) parse(raw string) (core.AnalysisReport, error) {
	body := textutil.ExtractJSON(raw)
	if body == "" {
		return core.AnalysisReport{}, &core.AnalysisError{Msg: "capability response contains no JSON object"}
	}
	if !gjson.Get(body, "concepts").IsArray() {
		return core.AnalysisReport{}, &core.AnalysisError{Msg: "capability response missing concepts array"}
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return core.AnalysisReport{}, &core.AnalysisError{Msg: "capability response does not match analysis schema", Cause: err}
	}
	if len(payload.Concepts) == 0 {
		return core.AnalysisReport{}, &core.AnalysisError{Msg: "capability response enumerated zero concepts"}
	}

	concepts := make([]core.ConceptNode, 0, len(payload.Concepts))
	seen := map[string]struct{}{}
	for _, p := range payload.Concepts {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return core.AnalysisReport{}, &core.AnalysisError{Msg: "concept with empty id"}
		}
		if _, dup := seen[id]; dup {
			return core.AnalysisReport{}, &core.AnalysisError{Msg: "duplicate concept id " + id}
		}
		seen[id] = struct{}{}
		cx := core.Complexity(strings.ToLower(strings.TrimSpace(p.Complexity)))
		if !cx.Valid() {
			return core.AnalysisReport{}, &core.AnalysisError{Msg: "unknown complexity " + strconv.Quote(p.Complexity) + " for concept " + id}
		}
		concepts = append(concepts, core.ConceptNode{
			ID:              id,
			Label:           strings.TrimSpace(p.Label),
			Complexity:      cx,
			PrerequisiteIDs: p.PrerequisiteIDs,
		})
	}

	for _, c := range concepts {
		for _, pre := range c.PrerequisiteIDs {
			if _, ok := seen[pre]; !ok {
				return core.AnalysisReport{}, &core.AnalysisError{Msg: "concept " + c.ID + " requires unknown prerequisite " + pre}
			}
		}
	}
	if cycle := findCycle(concepts); cycle != "" {
		return core.AnalysisReport{}, &core.AnalysisError{Msg: "prerequisite cycle through concept " + cycle}
	}

	// Breakdown and count are recomputed from the concept list itself so the
	// result is reproducible for a fixed concept set, regardless of whatever
	// summary numbers the model volunteered.
	breakdown := map[core.Complexity]int{
		core.ComplexitySimple:  0,
		core.ComplexityMedium:  0,
		core.ComplexityComplex: 0,
	}
	for _, c := range concepts {
		breakdown[c.Complexity]++
	}

	return core.AnalysisReport{
		Concepts:                     concepts,
		OptimalGameCount:             a.gameCount(breakdown),
		ComplexityBreakdown:          breakdown,
		EstimatedLearningTimeMinutes: estimatedMinutes(body, concepts),
		Reasoning:                    payload.Reasoning,
	}, nil
}

// gameCount applies the deterministic arithmetic mapping:
// clamp(round(simple*ws + medium*wm + complex*wc), min, max).
func (a *Analyzer) gameCount(breakdown map[core.Complexity]int) int {
	f := a.formula
	score := float64(breakdown[core.ComplexitySimple])*f.SimpleWeight +
		float64(breakdown[core.ComplexityMedium])*f.MediumWeight +
		float64(breakdown[core.ComplexityComplex])*f.ComplexWeight
	count := int(math.Round(score))
	if count < f.MinGames {
		count = f.MinGames
	}
	if count > f.MaxGames {
		count = f.MaxGames
	}
	return count
}

// estimatedMinutes tolerates both numeric and "25 minutes" style values,
// falling back to a per-complexity estimate when the field is absent.
func estimatedMinutes(body string, concepts []core.ConceptNode) int {
	v := gjson.Get(body, "estimated_learning_time_minutes")
	if !v.Exists() {
		v = gjson.Get(body, "estimated_learning_time")
	}
	switch v.Type {
	case gjson.Number:
		if n := int(v.Int()); n > 0 {
			return n
		}
	case gjson.String:
		fields := strings.Fields(v.String())
		if len(fields) > 0 {
			if n, err := strconv.Atoi(fields[0]); err == nil && n > 0 {
				return n
			}
		}
	}
	total := 0
	for _, c := range concepts {
		total += 3 + 2*c.Complexity.Rank()
	}
	return total
}

// findCycle runs a three-color depth-first search over the prerequisite
// edges and returns the id of a concept on a cycle, or "".
func findCycle(concepts []core.ConceptNode) string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	prereqs := make(map[string][]string, len(concepts))
	for _, c := range concepts {
		prereqs[c.ID] = c.PrerequisiteIDs
	}
	color := make(map[string]int, len(concepts))

	var visit func(id string) string
	visit = func(id string) string {
		color[id] = gray
		for _, pre := range prereqs[id] {
			switch color[pre] {
			case gray:
				return pre
			case white:
				if hit := visit(pre); hit != "" {
					return hit
				}
			}
		}
		color[id] = black
		return ""
	}

	for _, c := range concepts {
		if color[c.ID] == white {
			if hit := visit(c.ID); hit != "" {
				return hit
			}
		}
	}
	return ""
}
