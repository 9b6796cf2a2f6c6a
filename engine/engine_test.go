package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduforge/eduforge/capability"
	"github.com/eduforge/eduforge/config"
	"github.com/eduforge/eduforge/core"
	"github.com/eduforge/eduforge/internal/testutil"
)

const lessonText = `Fractions
A fraction names a part of a whole and is written as one number over another.
Decimals express the same quantities in base ten notation.
Percentages relate both of those ideas to a scale of one hundred.`

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Provider = "mock"
	cfg.BackoffBaseMS = 1
	return cfg
}

// sevenConceptMock returns a capability whose analysis yields 2 simple, 3
// medium and 2 complex concepts, so the count formula lands on exactly 7.
func sevenConceptMock() *capability.MockCapability {
	mock := capability.NewMock()
	mock.SetAnalysisResponse(testutil.AnalysisJSON(testutil.GradedConcepts(2, 3, 2)...))
	return mock
}

func TestRun_FullSuccess(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lessons")
	e := New(testConfig(), sevenConceptMock())

	manifest, err := e.Run(context.Background(), strings.NewReader(lessonText), dir)
	require.NoError(t, err)

	assert.Equal(t, 7, manifest.PlannedCount)
	assert.Equal(t, 7, manifest.CertifiedCount)
	assert.Empty(t, manifest.Gaps)

	for _, entry := range manifest.Entries {
		_, err := os.Stat(filepath.Join(dir, entry.Path))
		assert.NoError(t, err, "lesson file %s", entry.Path)
	}
	_, err = os.Stat(filepath.Join(dir, "index.html"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "analysis_report.json"))
	assert.NoError(t, err)
}

func TestRun_PartialSuccessOnPermanentSynthesisFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lessons")
	mock := sevenConceptMock()
	mock.FailArtifact(3, errors.New("model refused"))

	e := New(testConfig(), mock)
	manifest, err := e.Run(context.Background(), strings.NewReader(lessonText), dir)
	require.NoError(t, err)

	assert.Equal(t, 7, manifest.PlannedCount)
	assert.Equal(t, 6, manifest.CertifiedCount)
	require.Len(t, manifest.Gaps, 1)
	assert.Equal(t, 3, manifest.Gaps[0].SpecIndex)
	assert.Equal(t, "synthesis", manifest.Gaps[0].Stage)

	// The full retry budget was spent before giving up.
	assert.Equal(t, 3, mock.GenerateCalls(3))

	for _, entry := range manifest.Entries {
		assert.NotEqual(t, 3, entry.SpecIndex)
	}
}

func TestRun_TransientFailureRecoversWithinBudget(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lessons")
	mock := sevenConceptMock()
	mock.FailArtifactTimes(2, 2)

	e := New(testConfig(), mock)
	manifest, err := e.Run(context.Background(), strings.NewReader(lessonText), dir)
	require.NoError(t, err)

	assert.Equal(t, 7, manifest.CertifiedCount)
	assert.Empty(t, manifest.Gaps)
	assert.Equal(t, 3, mock.GenerateCalls(2))
}

func TestRun_ZeroCertifiedAbortsWithoutPublishing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lessons")
	mock := sevenConceptMock()
	plainText := strings.Repeat("This lesson is prose without any interactive structure. ", 5)
	for i := 1; i <= 7; i++ {
		mock.SetArtifactResponse(i, plainText)
	}

	e := New(testConfig(), mock)
	_, err := e.Run(context.Background(), strings.NewReader(lessonText), dir)

	var asmErr *core.AssemblyError
	require.ErrorAs(t, err, &asmErr)
	assert.Equal(t, 7, asmErr.Planned)
	assert.True(t, core.IsFatal(err))

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr), "nothing may be published for an empty portal")
}

func TestRun_ValidationFailuresBecomeGaps(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lessons")
	mock := sevenConceptMock()
	mock.SetArtifactResponse(5, `<!DOCTYPE html>
<html><body>
<h1>Reading only</h1>
<p>`+strings.Repeat("No score here. ", 10)+`</p>
</body></html>`)

	e := New(testConfig(), mock)
	manifest, err := e.Run(context.Background(), strings.NewReader(lessonText), dir)
	require.NoError(t, err)

	assert.Equal(t, 6, manifest.CertifiedCount)
	require.Len(t, manifest.Gaps, 1)
	assert.Equal(t, 5, manifest.Gaps[0].SpecIndex)
	assert.Equal(t, "validation", manifest.Gaps[0].Stage)
	assert.Contains(t, manifest.Gaps[0].Reason, "policy_violation")
}

func TestRun_TooShortInputIsFatal(t *testing.T) {
	e := New(testConfig(), sevenConceptMock())
	_, err := e.Run(context.Background(), strings.NewReader("way too short"), filepath.Join(t.TempDir(), "lessons"))

	var analysisErr *core.AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.True(t, core.IsFatal(err))
}

func TestExecute_CancelledRunDispatchesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lessons")
	mock := sevenConceptMock()

	e := New(testConfig(), mock)
	rc := e.NewRun(context.Background())
	rc.Cancel()

	_, err := e.Execute(rc, strings.NewReader(lessonText), dir)

	var asmErr *core.AssemblyError
	require.ErrorAs(t, err, &asmErr)

	gaps := rc.Gaps()
	require.Len(t, gaps, 7)
	for _, gap := range gaps {
		assert.Contains(t, gap.Reason, "cancelled")
	}
	for i := 1; i <= 7; i++ {
		assert.Zero(t, mock.GenerateCalls(i))
	}
	// Soft cancellation leaves the underlying context intact for calls that
	// already started; analysis went through before the fan-out stage.
	assert.Equal(t, 1, mock.AnalyzeCalls())
}

func TestRun_CallBudgetLimitsGeneration(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lessons")
	cfg := testConfig()
	cfg.MaxCapabilityCalls = 2
	cfg.Workers = 1

	e := New(cfg, sevenConceptMock())
	manifest, err := e.Run(context.Background(), strings.NewReader(lessonText), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, manifest.CertifiedCount)
	assert.Len(t, manifest.Gaps, 5)
}
