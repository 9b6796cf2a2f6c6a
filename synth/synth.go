// Package synth turns one game spec into one raw artifact by invoking the
// generation capability. It deliberately performs no structural validation;
// that is the validator's sole responsibility, so synthesis failures and
// structural-policy failures stay independently diagnosable.
package synth

import (
	"context"
	"fmt"
	"strings"

	"github.com/eduforge/eduforge/core"
	"github.com/eduforge/eduforge/logging"
)

// Synthesizer issues a single generation request per call. Retry policy
// lives in the engine; a Synthesize call is one attempt, and each attempt
// produces a fresh artifact that replaces any previous one.
type Synthesizer struct {
	cap            core.Capability
	minMarkupBytes int
	logger         logging.Logger
}

// Options configure a Synthesizer beyond its capability.
type Options struct {
	// MinMarkupBytes is the shortest response accepted as usable content.
	MinMarkupBytes int
	Logger         logging.Logger
}

// New constructs a Synthesizer.
func New(cap core.Capability, optFns ...func(o *Options)) *Synthesizer {
	opts := Options{MinMarkupBytes: 100, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Synthesizer{cap: cap, minMarkupBytes: opts.MinMarkupBytes, logger: opts.Logger}
}

// Synthesize generates the raw artifact for a spec. The request embeds the
// spec's concepts, difficulty, mechanic hint and position in the sequence.
// An empty or too-short response is an error; the caller decides whether to
// retry.
func (s *Synthesizer) Synthesize(ctx context.Context, req core.ArtifactRequest) (core.GameArtifact, error) {
	raw, err := s.cap.GenerateArtifact(ctx, req)
	if err != nil {
		return core.GameArtifact{}, fmt.Errorf("generate artifact for spec %d: %w", req.Spec.Index, err)
	}
	if len(strings.TrimSpace(raw)) < s.minMarkupBytes {
		return core.GameArtifact{}, fmt.Errorf("generation for spec %d returned no usable content (%d bytes)", req.Spec.Index, len(raw))
	}

	s.logger.Debug("artifact synthesized", "spec_index", req.Spec.Index, "bytes", len(raw))
	return core.GameArtifact{
		SpecIndex: req.Spec.Index,
		Markup:    raw,
		Status:    core.StatusRaw,
	}, nil
}
