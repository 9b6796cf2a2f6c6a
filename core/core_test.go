package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduforge/eduforge/logging"
)

func TestDifficultyOrdering(t *testing.T) {
	assert.Less(t, DifficultyVeryEasy.Rank(), DifficultyEasy.Rank())
	assert.Less(t, DifficultyEasy.Rank(), DifficultyMedium.Rank())
	assert.Less(t, DifficultyMedium.Rank(), DifficultyHard.Rank())
	assert.Less(t, DifficultyHard.Rank(), DifficultyVeryHard.Rank())
	assert.Equal(t, "Very Easy", DifficultyVeryEasy.Label())
}

func TestDifficultyForPosition_NonDecreasing(t *testing.T) {
	for _, total := range []int{1, 3, 5, 7, 15} {
		prev := -1
		for pos := 0; pos < total; pos++ {
			d := DifficultyForPosition(pos, total)
			require.GreaterOrEqual(t, d.Rank(), prev, "total=%d pos=%d", total, pos)
			prev = d.Rank()
		}
	}
	assert.Equal(t, DifficultyVeryEasy, DifficultyForPosition(0, 5))
	assert.Equal(t, DifficultyVeryHard, DifficultyForPosition(4, 5))
}

func TestComplexityValidation(t *testing.T) {
	assert.True(t, ComplexitySimple.Valid())
	assert.True(t, ComplexityComplex.Valid())
	assert.False(t, Complexity("trivial").Valid())
}

func TestAnalysisReportClone_Isolation(t *testing.T) {
	report := AnalysisReport{
		Concepts: []ConceptNode{
			{ID: "a", Label: "A", Complexity: ComplexitySimple, PrerequisiteIDs: []string{"b"}},
		},
		ComplexityBreakdown: map[Complexity]int{ComplexitySimple: 1},
	}
	cp := report.Clone()
	cp.Concepts[0].Label = "mutated"
	cp.Concepts[0].PrerequisiteIDs[0] = "z"
	cp.ComplexityBreakdown[ComplexitySimple] = 99

	assert.Equal(t, "A", report.Concepts[0].Label)
	assert.Equal(t, "b", report.Concepts[0].PrerequisiteIDs[0])
	assert.Equal(t, 1, report.ComplexityBreakdown[ComplexitySimple])
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(&AnalysisError{Msg: "bad"}))
	assert.True(t, IsFatal(&PlanningError{Msg: "bad"}))
	assert.True(t, IsFatal(&AssemblyError{Planned: 3}))
	assert.False(t, IsFatal(&SynthesisError{SpecIndex: 1, Attempts: 3, Cause: errors.New("x")}))
	assert.False(t, IsFatal(&ValidationFailure{SpecIndex: 1, Reason: ReasonPolicyViolation}))
	assert.False(t, IsFatal(errors.New("other")))
}

func TestCallLimiter(t *testing.T) {
	cl := NewCallLimiter(2)
	require.NoError(t, cl.Increment())
	require.NoError(t, cl.Increment())
	require.Error(t, cl.Increment())
	assert.Equal(t, 3, cl.Count())

	unlimited := NewCallLimiter(0)
	for i := 0; i < 100; i++ {
		require.NoError(t, unlimited.Increment())
	}
	assert.Equal(t, -1, unlimited.Remaining())
}

func TestRunContext_GapsSortedBySpecIndex(t *testing.T) {
	rc := NewRunContext(context.Background(), logging.NoOpLogger{}, 3, 0)
	rc.RecordGap(Gap{SpecIndex: 5, Stage: "synthesis", Reason: "x"})
	rc.RecordGap(Gap{SpecIndex: 2, Stage: "validation", Reason: "y"})
	rc.RecordGap(Gap{SpecIndex: 9, Stage: "synthesis", Reason: "z"})

	gaps := rc.Gaps()
	require.Len(t, gaps, 3)
	assert.Equal(t, []int{2, 5, 9}, []int{gaps[0].SpecIndex, gaps[1].SpecIndex, gaps[2].SpecIndex})
}

func TestRunContext_SoftCancel(t *testing.T) {
	rc := NewRunContext(context.Background(), nil, 0, 0)
	assert.Equal(t, 1, rc.MaxAttempts)
	assert.False(t, rc.Cancelled())

	rc.Cancel()
	assert.True(t, rc.Cancelled())
	// The outbound-call context survives a soft cancel.
	require.NoError(t, rc.Context().Err())
	rc.Cancel() // second cancel is a no-op
}

func TestManifestSummary(t *testing.T) {
	m := PortalManifest{PlannedCount: 7, CertifiedCount: 6}
	assert.Equal(t, "6/7 lessons certified", m.Summary())
}
