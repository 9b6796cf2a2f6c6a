// Package eduforge provides a high-level façade over the pipeline engine
// that turns unstructured educational text into a portal of self-contained
// interactive lessons. Most applications interact with this package by:
//  1. Creating a Forge via New() with a capability implementation
//     (OpenAI, Anthropic or the mock)
//  2. Calling Generate with the raw content and an output directory
//
// The façade delegates orchestration to engine.Engine while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing.
package eduforge

import (
	"context"
	"io"

	"github.com/eduforge/eduforge/config"
	"github.com/eduforge/eduforge/core"
	"github.com/eduforge/eduforge/engine"
	"github.com/eduforge/eduforge/logging"
)

// Options configures the Forge instance.
type Options struct {
	// Config holds the pipeline settings (formula weights, retry budget,
	// worker count). Zero value selects config.Default().
	Config config.Config
	// Logger defaults to the no-op logger.
	Logger logging.Logger
	// ArtifactStore defaults to the in-memory implementation.
	ArtifactStore core.ArtifactStore
}

// Forge is the high-level façade aggregating the underlying engine.
type Forge struct {
	engine *engine.Engine
}

// New creates a Forge around the given capability with optional overrides.
func New(cap core.Capability, optFns ...func(o *Options)) *Forge {
	opts := Options{Config: config.Default(), Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Config.Workers == 0 {
		opts.Config = config.Default()
	}

	eng := engine.New(opts.Config, cap, func(o *engine.Options) {
		o.Logger = opts.Logger
		o.ArtifactStore = opts.ArtifactStore
	})
	return &Forge{engine: eng}
}

// Generate runs the full pipeline: analyze the content, plan the lessons,
// synthesize and certify each artifact, and publish the portal into outDir.
// The returned manifest reports certified lessons and gaps.
func (f *Forge) Generate(ctx context.Context, content io.Reader, outDir string) (core.PortalManifest, error) {
	return f.engine.Run(ctx, content, outDir)
}

// NewRun exposes the run-state record for callers that need soft
// cancellation; pass it to Execute.
func (f *Forge) NewRun(ctx context.Context) *core.RunContext {
	return f.engine.NewRun(ctx)
}

// Execute runs the pipeline under an existing run context.
func (f *Forge) Execute(rc *core.RunContext, content io.Reader, outDir string) (core.PortalManifest, error) {
	return f.engine.Execute(rc, content, outDir)
}
