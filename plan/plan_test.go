package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduforge/eduforge/core"
	"github.com/eduforge/eduforge/internal/testutil"
)

func coveredUnion(specs []core.GameSpec) map[string]struct{} {
	union := map[string]struct{}{}
	for _, s := range specs {
		for _, id := range s.CoveredConceptIDs {
			union[id] = struct{}{}
		}
	}
	return union
}

func assertPlanInvariants(t *testing.T, report core.AnalysisReport, specs []core.GameSpec) {
	t.Helper()
	require.Len(t, specs, report.OptimalGameCount)

	union := coveredUnion(specs)
	for _, c := range report.Concepts {
		assert.Contains(t, union, c.ID, "concept %s uncovered", c.ID)
	}

	prev := -1
	slotOf := map[string]int{}
	for i, s := range specs {
		require.Equal(t, i+1, s.Index)
		require.NotEmpty(t, s.CoveredConceptIDs)
		require.GreaterOrEqual(t, s.Difficulty.Rank(), prev, "difficulty regressed at spec %d", s.Index)
		prev = s.Difficulty.Rank()
		for _, id := range s.CoveredConceptIDs {
			if _, ok := slotOf[id]; !ok {
				slotOf[id] = i
			}
		}
	}
	for _, c := range report.Concepts {
		for _, pre := range c.PrerequisiteIDs {
			assert.LessOrEqual(t, slotOf[pre], slotOf[c.ID],
				"concept %s scheduled before prerequisite %s", c.ID, pre)
		}
	}
}

func TestPlan_FullCoverageAndMonotonicDifficulty(t *testing.T) {
	report := testutil.Report(7, testutil.GradedConcepts(2, 3, 2)...)
	specs, err := New().Plan(report)
	require.NoError(t, err)
	assertPlanInvariants(t, report, specs)
}

func TestPlan_MoreConceptsThanSlots(t *testing.T) {
	report := testutil.Report(4, testutil.GradedConcepts(4, 4, 4)...)
	specs, err := New().Plan(report)
	require.NoError(t, err)
	assertPlanInvariants(t, report, specs)

	total := 0
	for _, s := range specs {
		total += len(s.CoveredConceptIDs)
	}
	assert.Equal(t, 12, total, "every concept assigned exactly once")
}

func TestPlan_PrerequisiteNeverAfterDependent(t *testing.T) {
	report := testutil.Report(3,
		testutil.Concept("advanced", "Advanced Patterns", core.ComplexityComplex, "basics"),
		testutil.Concept("basics", "Basics", core.ComplexitySimple),
		testutil.Concept("middle", "Middle", core.ComplexityMedium, "basics"),
	)
	specs, err := New().Plan(report)
	require.NoError(t, err)
	assertPlanInvariants(t, report, specs)

	// The simple prerequisite lands in the first lesson.
	assert.Equal(t, []string{"basics"}, specs[0].CoveredConceptIDs)
}

func TestPlan_SplitsConceptsWhenPlanIsLarger(t *testing.T) {
	report := testutil.Report(5,
		testutil.Concept("frac", "Fractions", core.ComplexityComplex),
		testutil.Concept("dec", "Decimals", core.ComplexityMedium),
	)
	specs, err := New().Plan(report)
	require.NoError(t, err)
	assertPlanInvariants(t, report, specs)

	// No empty or duplicate filler specs: the extra slots are angles on the
	// existing concepts, titled distinctly.
	titles := map[string]int{}
	for _, s := range specs {
		titles[s.Title]++
	}
	for title, n := range titles {
		assert.Equal(t, 1, n, "duplicate title %q", title)
	}
	assert.Contains(t, specs[0].Title, "Introduction")
}

func TestPlan_RejectsCountOutOfBounds(t *testing.T) {
	for _, count := range []int{0, 2, 16} {
		report := testutil.Report(count, testutil.GradedConcepts(1, 1, 1)...)
		_, err := New().Plan(report)
		var pe *core.PlanningError
		require.ErrorAs(t, err, &pe, "count=%d", count)
	}
}

func TestPlan_RejectsEmptyConceptSet(t *testing.T) {
	_, err := New().Plan(core.AnalysisReport{OptimalGameCount: 3})
	var pe *core.PlanningError
	require.ErrorAs(t, err, &pe)
}

func TestPlan_Deterministic(t *testing.T) {
	report := testutil.Report(6,
		testutil.Concept("b", "B", core.ComplexityMedium, "a"),
		testutil.Concept("a", "A", core.ComplexitySimple),
		testutil.Concept("d", "D", core.ComplexityComplex, "b", "c"),
		testutil.Concept("c", "C", core.ComplexityMedium, "a"),
	)
	p := New()
	first, err := p.Plan(report)
	require.NoError(t, err)
	second, err := p.Plan(report)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assertPlanInvariants(t, report, first)
}
