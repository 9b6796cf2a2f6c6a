// Package portal aggregates certified artifacts plus the analysis report
// into the navigable output set: an index page, one file per certified
// lesson and a serialized analysis report. Publication is write-once per
// run; no other pipeline stage writes published content.
package portal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/eduforge/eduforge/core"
	"github.com/eduforge/eduforge/internal/textutil"
	"github.com/eduforge/eduforge/logging"
)

// Assembler builds and publishes portal manifests.
type Assembler struct {
	logger logging.Logger
}

// Options configure an Assembler.
type Options struct {
	Logger logging.Logger
}

// New constructs an Assembler.
func New(optFns ...func(o *Options)) *Assembler {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Assembler{logger: opts.Logger}
}

// ArtifactFileName encodes a lesson's sequence index and title into its
// published file name.
func ArtifactFileName(specIndex int, title string) string {
	return fmt.Sprintf("game_%02d_%s.html", specIndex, textutil.SafeFileName(title))
}

// Assemble produces the manifest for the certified artifacts, in spec order.
// Lessons that permanently failed appear in the gap list rather than being
// silently dropped. It fails with *core.AssemblyError when zero artifacts
// certified: an empty portal is never published.
func (a *Assembler) Assemble(report core.AnalysisReport, specs []core.GameSpec, artifacts []core.GameArtifact, gaps []core.Gap) (core.PortalManifest, error) {
	specByIndex := make(map[int]core.GameSpec, len(specs))
	for _, s := range specs {
		specByIndex[s.Index] = s
	}

	var entries []core.ManifestEntry
	for _, art := range artifacts {
		if art.Status != core.StatusCertified {
			continue
		}
		spec, ok := specByIndex[art.SpecIndex]
		if !ok {
			return core.PortalManifest{}, fmt.Errorf("assemble: artifact %d has no matching spec", art.SpecIndex)
		}
		entries = append(entries, core.ManifestEntry{
			SpecIndex:  spec.Index,
			Title:      spec.Title,
			Difficulty: spec.Difficulty,
			Path:       ArtifactFileName(spec.Index, spec.Title),
		})
	}
	if len(entries) == 0 {
		return core.PortalManifest{}, &core.AssemblyError{Planned: len(specs)}
	}

	manifest := core.PortalManifest{
		Entries:        entries,
		Analysis:       report.Clone(),
		Gaps:           gaps,
		PlannedCount:   len(specs),
		CertifiedCount: len(entries),
	}
	a.logger.Info("portal assembled", "summary", manifest.Summary(), "gaps", len(gaps))
	return manifest, nil
}

// reportDoc is the serialized analysis_report.json layout: the analysis that
// drove the plan plus the completeness summary, so partial runs stay honest
// about what is missing.
type reportDoc struct {
	Analysis       core.AnalysisReport  `json:"analysis"`
	Lessons        []core.ManifestEntry `json:"lessons"`
	Gaps           []core.Gap           `json:"gaps"`
	PlannedCount   int                  `json:"planned_count"`
	CertifiedCount int                  `json:"certified_count"`
	SuccessRate    string               `json:"success_rate"`
}

// Publish writes the portal to dir in one pass: index.html, one file per
// certified lesson and analysis_report.json. It is called exactly once per
// run, after all certification completes, so a partially-written portal is
// never exposed.
func (a *Assembler) Publish(dir string, manifest core.PortalManifest, artifacts []core.GameArtifact) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("publish: create output dir: %w", err)
	}

	byIndex := make(map[int]core.GameArtifact, len(artifacts))
	for _, art := range artifacts {
		byIndex[art.SpecIndex] = art
	}
	for _, entry := range manifest.Entries {
		art, ok := byIndex[entry.SpecIndex]
		if !ok || art.Status != core.StatusCertified {
			return fmt.Errorf("publish: missing certified artifact for spec %d", entry.SpecIndex)
		}
		path := filepath.Join(dir, entry.Path)
		if err := os.WriteFile(path, []byte(art.Markup), 0o644); err != nil {
			return fmt.Errorf("publish: write %s: %w", entry.Path, err)
		}
	}

	index, err := renderIndex(manifest)
	if err != nil {
		return fmt.Errorf("publish: render index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.html"), index, 0o644); err != nil {
		return fmt.Errorf("publish: write index: %w", err)
	}

	doc := reportDoc{
		Analysis:       manifest.Analysis,
		Lessons:        manifest.Entries,
		Gaps:           manifest.Gaps,
		PlannedCount:   manifest.PlannedCount,
		CertifiedCount: manifest.CertifiedCount,
		SuccessRate:    fmt.Sprintf("%.1f%%", 100*float64(manifest.CertifiedCount)/float64(manifest.PlannedCount)),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("publish: marshal report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "analysis_report.json"), data, 0o644); err != nil {
		return fmt.Errorf("publish: write report: %w", err)
	}

	a.logger.Info("portal published", "dir", dir, "lessons", manifest.CertifiedCount)
	return nil
}
