package core

import "context"

// ArtifactRequest carries everything the generation capability needs to
// produce one self-contained lesson document: the spec plus its position in
// the overall sequence (generators tune tone and difficulty by position).
type ArtifactRequest struct {
	Spec       GameSpec
	Position   int // 1-based position in the sequence
	TotalGames int
	Concepts   []ConceptNode // resolved nodes for Spec.CoveredConceptIDs
}

// Capability is the request/response text-generation boundary the pipeline
// depends on. The two operations map onto the only non-deterministic parts
// of the system; any concrete provider (OpenAI, Anthropic, a mock) is
// swapped behind this interface without touching pipeline logic.
//
// AnalyzeContent returns the raw provider response expected to contain the
// structured concept/complexity JSON; GenerateArtifact returns the raw
// document text. Both may block pending the external service and must honor
// ctx cancellation.
type Capability interface {
	AnalyzeContent(ctx context.Context, text string) (string, error)
	GenerateArtifact(ctx context.Context, req ArtifactRequest) (string, error)
}

// ArtifactStore holds per-run artifacts between certification and the single
// portal write. Save replaces any previous artifact for the same spec index,
// which is what makes per-spec retries idempotent.
type ArtifactStore interface {
	Save(runID string, artifact GameArtifact) error
	Get(runID string, specIndex int) (GameArtifact, error)
	List(runID string) ([]GameArtifact, error)
	Delete(runID string, specIndex int) error
}
