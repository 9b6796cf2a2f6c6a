package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eduforge/eduforge/analyze"
	"github.com/eduforge/eduforge/config"
	"github.com/eduforge/eduforge/core"
	"github.com/eduforge/eduforge/ingest"
	"github.com/eduforge/eduforge/logging"
	"github.com/eduforge/eduforge/plan"
	"github.com/eduforge/eduforge/portal"
	"github.com/eduforge/eduforge/store"
	"github.com/eduforge/eduforge/synth"
	"github.com/eduforge/eduforge/validate"
)

// Engine orchestrates one pipeline run end to end.
type Engine struct {
	cfg config.Config

	ingestor    *ingest.Ingestor
	analyzer    *analyze.Analyzer
	planner     *plan.Planner
	synthesizer *synth.Synthesizer
	validator   *validate.Validator
	assembler   *portal.Assembler

	artifacts core.ArtifactStore
	logger    logging.Logger
	backoff   time.Duration
}

// Options configure engine construction beyond the pipeline config.
type Options struct {
	// Logger defaults to the no-op logger.
	Logger logging.Logger
	// ArtifactStore defaults to the in-memory store.
	ArtifactStore core.ArtifactStore
}

// New wires the pipeline stages around the given capability. Stage settings
// (formula weights, retry budget, worker count) come from cfg.
func New(cfg config.Config, cap core.Capability, optFns ...func(o *Options)) *Engine {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.ArtifactStore == nil {
		opts.ArtifactStore = store.NewInMemoryStore()
	}

	return &Engine{
		cfg:      cfg,
		ingestor: ingest.New(),
		analyzer: analyze.New(cap, func(o *analyze.Options) {
			o.MinWordCount = cfg.MinWordCount
			o.Formula = cfg.Formula
			o.Logger = opts.Logger
		}),
		planner: plan.New(func(o *plan.Options) {
			o.MinGames = cfg.Formula.MinGames
			o.MaxGames = cfg.Formula.MaxGames
		}),
		synthesizer: synth.New(cap, func(o *synth.Options) {
			o.MinMarkupBytes = cfg.MinMarkupBytes
			o.Logger = opts.Logger
		}),
		validator: validate.New(func(o *validate.Options) {
			o.Logger = opts.Logger
		}),
		assembler: portal.New(func(o *portal.Options) {
			o.Logger = opts.Logger
		}),
		artifacts: opts.ArtifactStore,
		logger:    opts.Logger,
		backoff:   time.Duration(cfg.BackoffBaseMS) * time.Millisecond,
	}
}

// NewRun creates the run-state record for one pipeline run. Callers that
// need soft cancellation hold on to it and call Cancel.
func (e *Engine) NewRun(ctx context.Context) *core.RunContext {
	return core.NewRunContext(ctx, e.logger, e.cfg.MaxAttempts, e.cfg.MaxCapabilityCalls)
}

// Run executes the full pipeline for the given input and publishes the
// portal into outDir. It is a convenience wrapper around NewRun + Execute.
func (e *Engine) Run(ctx context.Context, input io.Reader, outDir string) (core.PortalManifest, error) {
	return e.Execute(e.NewRun(ctx), input, outDir)
}

// Execute runs the pipeline under an existing run context. Fatal errors
// (analysis, planning, assembly) abort the run; per-spec failures are
// recorded as gaps and the rest of the plan continues. Nothing is written
// to outDir unless at least one artifact certifies.
func (e *Engine) Execute(rc *core.RunContext, input io.Reader, outDir string) (core.PortalManifest, error) {
	logger := e.logger
	start := time.Now()

	doc, err := e.ingestor.Ingest(input)
	if err != nil {
		return core.PortalManifest{}, err
	}
	logger.Info("content ingested", "run_id", rc.RunID, "words", doc.WordCount, "topics", len(doc.DetectedTopics))

	report, err := e.analyzer.Analyze(rc.Context(), doc)
	if err != nil {
		return core.PortalManifest{}, err
	}

	specs, err := e.planner.Plan(report)
	if err != nil {
		return core.PortalManifest{}, err
	}
	logger.Info("plan ready", "run_id", rc.RunID, "lessons", len(specs))

	e.generateAll(rc, report, specs)

	certified, err := e.artifacts.List(rc.RunID)
	if err != nil {
		return core.PortalManifest{}, fmt.Errorf("list artifacts: %w", err)
	}

	manifest, err := e.assembler.Assemble(report, specs, certified, rc.Gaps())
	if err != nil {
		return core.PortalManifest{}, err
	}
	if err := e.assembler.Publish(outDir, manifest, certified); err != nil {
		return core.PortalManifest{}, err
	}

	logger.Info("run complete", "run_id", rc.RunID, "summary", manifest.Summary(), "duration", time.Since(start))
	return manifest, nil
}

// generateAll fans the specs out over the bounded worker pool. Results land
// in the artifact store keyed by spec index, so the manifest order is
// independent of completion order. Once the run is cancelled no further
// specs are dispatched; in-flight ones finish or fail on their own.
func (e *Engine) generateAll(rc *core.RunContext, report core.AnalysisReport, specs []core.GameSpec) {
	g := new(errgroup.Group)
	g.SetLimit(e.cfg.Workers)

	for _, spec := range specs {
		if rc.Cancelled() {
			rc.RecordGap(core.Gap{SpecIndex: spec.Index, Stage: "synthesis", Reason: "run cancelled before dispatch"})
			continue
		}
		g.Go(func() error {
			e.processSpec(rc, report, spec, len(specs))
			return nil
		})
	}
	_ = g.Wait()
}

// processSpec synthesizes one spec with bounded retries, then certifies the
// result. Failures are recorded as gaps; they never abort the run.
func (e *Engine) processSpec(rc *core.RunContext, report core.AnalysisReport, spec core.GameSpec, total int) {
	req := core.ArtifactRequest{
		Spec:       spec,
		Position:   spec.Index,
		TotalGames: total,
		Concepts:   resolveConcepts(report, spec),
	}

	artifact, err := e.synthesizeWithRetry(rc, req)
	if err != nil {
		rc.RecordGap(core.Gap{SpecIndex: spec.Index, Stage: "synthesis", Reason: err.Error()})
		e.logger.Warn("lesson skipped", "run_id", rc.RunID, "spec_index", spec.Index, "error", err)
		return
	}

	certified, failure := e.validator.Certify(artifact)
	if failure != nil {
		rc.RecordGap(core.Gap{SpecIndex: spec.Index, Stage: "validation", Reason: failure.Error()})
		e.logger.Warn("lesson rejected", "run_id", rc.RunID, "spec_index", spec.Index, "reason", failure.Reason)
		return
	}

	if err := e.artifacts.Save(rc.RunID, certified); err != nil {
		rc.RecordGap(core.Gap{SpecIndex: spec.Index, Stage: "validation", Reason: "store artifact: " + err.Error()})
		return
	}
	e.logger.Info("lesson certified", "run_id", rc.RunID, "spec_index", spec.Index, "title", spec.Title)
}

// synthesizeWithRetry issues up to MaxAttempts generation calls with
// exponential backoff. Every attempt produces a fresh artifact that replaces
// the previous one, so retries are idempotent.
func (e *Engine) synthesizeWithRetry(rc *core.RunContext, req core.ArtifactRequest) (core.GameArtifact, error) {
	var lastErr error
	for attempt := 1; attempt <= rc.MaxAttempts; attempt++ {
		if err := rc.Calls.Increment(); err != nil {
			return core.GameArtifact{}, &core.SynthesisError{SpecIndex: req.Spec.Index, Attempts: attempt - 1, Cause: err}
		}
		artifact, err := e.synthesizer.Synthesize(rc.Context(), req)
		if err == nil {
			return artifact, nil
		}
		lastErr = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			break
		}
		if attempt < rc.MaxAttempts {
			e.logger.Debug("synthesis retry", "spec_index", req.Spec.Index, "attempt", attempt, "error", err)
			if !sleep(rc.Context(), e.backoff<<(attempt-1)) {
				break
			}
		}
	}
	return core.GameArtifact{}, &core.SynthesisError{SpecIndex: req.Spec.Index, Attempts: rc.MaxAttempts, Cause: lastErr}
}

func resolveConcepts(report core.AnalysisReport, spec core.GameSpec) []core.ConceptNode {
	nodes := make([]core.ConceptNode, 0, len(spec.CoveredConceptIDs))
	for _, id := range spec.CoveredConceptIDs {
		if node, ok := report.Concept(id); ok {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// sleep waits for d or until ctx is done; it reports whether the full delay
// elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
