// Package plan maps an analysis report onto an ordered list of game specs.
// The planner is pure and deterministic: the same report always yields the
// same plan. Its output ordering is the authoritative generation and
// navigation order.
package plan

import (
	"container/heap"
	"fmt"
	"sort"
	"strings"

	"github.com/eduforge/eduforge/core"
)

// Planner distributes concepts across the target number of lesson slots
// while honoring prerequisite ordering and full coverage.
type Planner struct {
	minGames int
	maxGames int
}

// Options configure the game-count bounds re-checked by Plan.
type Options struct {
	MinGames int
	MaxGames int
}

// New constructs a Planner. Default bounds are [3,15].
func New(optFns ...func(o *Options)) *Planner {
	opts := Options{MinGames: 3, MaxGames: 15}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Planner{minGames: opts.MinGames, maxGames: opts.MaxGames}
}

// angle names used when a high-complexity concept is split across several
// lessons instead of padding the plan with empty slots.
var angleNames = []string{"Introduction", "Application", "Practice", "Mastery", "Challenge"}

// mechanic hints by difficulty, following the interaction types of the
// generation prompt contract.
var mechanicByDifficulty = map[core.Difficulty]string{
	core.DifficultyVeryEasy: "identification",
	core.DifficultyEasy:     "pattern",
	core.DifficultyMedium:   "quiz",
	core.DifficultyHard:     "application",
	core.DifficultyVeryHard: "creation",
}

// Plan produces the ordered spec list for the report. It fails with
// *core.PlanningError when the report's game count is out of bounds or the
// concepts cannot be partitioned with full coverage.
func (p *Planner) Plan(report core.AnalysisReport) ([]core.GameSpec, error) {
	count := report.OptimalGameCount
	if count < p.minGames || count > p.maxGames {
		return nil, &core.PlanningError{Msg: fmt.Sprintf("optimal_game_count %d outside [%d,%d]", count, p.minGames, p.maxGames)}
	}
	if len(report.Concepts) == 0 {
		return nil, &core.PlanningError{Msg: "report contains no concepts"}
	}

	ordered, err := topoOrder(report.Concepts)
	if err != nil {
		return nil, err
	}

	var slots [][]core.ConceptNode
	if len(ordered) >= count {
		slots = dealRoundRobin(ordered, count)
	} else {
		slots = splitIntoAngles(ordered, count)
	}

	specs := make([]core.GameSpec, len(slots))
	for i, covered := range slots {
		difficulty := core.DifficultyForPosition(i, len(slots))
		angle, split := slotAngle(slots, i)
		specs[i] = core.GameSpec{
			Index:             i + 1,
			Title:             slotTitle(covered, angle, split),
			Difficulty:        difficulty,
			CoveredConceptIDs: conceptIDs(covered),
			MechanicHint:      slotMechanic(difficulty, angle, split),
			LearningObjective: "Master: " + joinLabels(covered),
			EstimatedMinutes:  slotMinutes(covered),
		}
	}

	if err := checkInvariants(report, specs); err != nil {
		return nil, err
	}
	return specs, nil
}

// conceptHeap orders ready concepts by (complexity rank, id) so the
// topological order prefers simple concepts first with a stable tie-break.
type conceptHeap []core.ConceptNode

func (h conceptHeap) Len() int { return len(h) }
func (h conceptHeap) Less(i, j int) bool {
	if h[i].Complexity.Rank() != h[j].Complexity.Rank() {
		return h[i].Complexity.Rank() < h[j].Complexity.Rank()
	}
	return h[i].ID < h[j].ID
}
func (h conceptHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *conceptHeap) Push(x any)        { *h = append(*h, x.(core.ConceptNode)) }
func (h *conceptHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topoOrder produces a complexity-ascending order subject to prerequisite
// edges: a concept is never emitted before any of its prerequisites.
func topoOrder(concepts []core.ConceptNode) ([]core.ConceptNode, error) {
	indegree := make(map[string]int, len(concepts))
	dependents := make(map[string][]string, len(concepts))
	byID := make(map[string]core.ConceptNode, len(concepts))
	for _, c := range concepts {
		byID[c.ID] = c
		indegree[c.ID] = len(c.PrerequisiteIDs)
		for _, pre := range c.PrerequisiteIDs {
			dependents[pre] = append(dependents[pre], c.ID)
		}
	}

	ready := &conceptHeap{}
	for _, c := range concepts {
		if indegree[c.ID] == 0 {
			heap.Push(ready, c)
		}
	}

	ordered := make([]core.ConceptNode, 0, len(concepts))
	for ready.Len() > 0 {
		c := heap.Pop(ready).(core.ConceptNode)
		ordered = append(ordered, c)
		deps := dependents[c.ID]
		sort.Strings(deps)
		for _, dep := range deps {
			indegree[dep]--
			if indegree[dep] == 0 {
				heap.Push(ready, byID[dep])
			}
		}
	}
	if len(ordered) != len(concepts) {
		// The analyzer rejects cycles, so reaching this is a defect.
		return nil, &core.PlanningError{Msg: "prerequisite graph is not acyclic"}
	}
	return ordered, nil
}

// dealRoundRobin deals ordered concepts across count slots like cards,
// bumping a concept forward when a prerequisite was dealt to a later slot.
// The first cycle touches every slot once, so no slot is left empty.
func dealRoundRobin(ordered []core.ConceptNode, count int) [][]core.ConceptNode {
	slots := make([][]core.ConceptNode, count)
	slotOf := make(map[string]int, len(ordered))
	for i, c := range ordered {
		slot := i % count
		for _, pre := range c.PrerequisiteIDs {
			if s, ok := slotOf[pre]; ok && s > slot {
				slot = s
			}
		}
		slots[slot] = append(slots[slot], c)
		slotOf[c.ID] = slot
	}
	return slots
}

// splitIntoAngles covers the case of fewer concepts than target slots:
// high-complexity concepts are taught across several lesson angles
// (introduction, application, ...) instead of emitting duplicate empty
// specs. Each concept keeps its topological position; its angles are
// consecutive slots.
func splitIntoAngles(ordered []core.ConceptNode, count int) [][]core.ConceptNode {
	extra := count - len(ordered)

	// Distribute extra lessons to the most complex concepts first, cycling
	// deterministically (tie-break: lower id).
	byComplexity := make([]core.ConceptNode, len(ordered))
	copy(byComplexity, ordered)
	sort.SliceStable(byComplexity, func(i, j int) bool {
		if byComplexity[i].Complexity.Rank() != byComplexity[j].Complexity.Rank() {
			return byComplexity[i].Complexity.Rank() > byComplexity[j].Complexity.Rank()
		}
		return byComplexity[i].ID < byComplexity[j].ID
	})

	angles := make(map[string]int, len(ordered))
	assigned := 0
	for cycle := 0; assigned < extra && cycle < len(angleNames); cycle++ {
		for _, c := range byComplexity {
			if assigned == extra {
				break
			}
			if angles[c.ID] < len(angleNames)-1 {
				angles[c.ID]++
				assigned++
			}
		}
	}

	var slots [][]core.ConceptNode
	for _, c := range ordered {
		for a := 0; a <= angles[c.ID]; a++ {
			slots = append(slots, []core.ConceptNode{c})
		}
	}
	return slots
}

// slotAngle returns the 0-based angle position of slot i among consecutive
// slots covering the same single concept, and whether the slot is part of a
// split at all.
func slotAngle(slots [][]core.ConceptNode, i int) (int, bool) {
	if len(slots[i]) != 1 {
		return 0, false
	}
	id := slots[i][0].ID
	angle := 0
	for j := i - 1; j >= 0; j-- {
		if len(slots[j]) == 1 && slots[j][0].ID == id {
			angle++
		} else {
			break
		}
	}
	split := angle > 0 || (i+1 < len(slots) && len(slots[i+1]) == 1 && slots[i+1][0].ID == id)
	return angle, split
}

func slotTitle(covered []core.ConceptNode, angle int, split bool) string {
	base := joinLabels(covered)
	if split {
		return fmt.Sprintf("%s: %s", base, angleNames[angle])
	}
	return base
}

func slotMechanic(d core.Difficulty, angle int, split bool) string {
	if split && angle == 0 {
		return "identification"
	}
	if angle == 1 {
		return "application"
	}
	if angle > 1 {
		return "creation"
	}
	return mechanicByDifficulty[d]
}

func conceptIDs(covered []core.ConceptNode) []string {
	ids := make([]string, len(covered))
	for i, c := range covered {
		ids[i] = c.ID
	}
	return ids
}

func joinLabels(covered []core.ConceptNode) string {
	labels := make([]string, len(covered))
	for i, c := range covered {
		labels[i] = c.Label
	}
	return strings.Join(labels, " & ")
}

func slotMinutes(covered []core.ConceptNode) int {
	total := 0
	for _, c := range covered {
		total += 3 + 2*c.Complexity.Rank()
	}
	if total < 3 {
		total = 3
	}
	return total
}

// checkInvariants re-validates the full-coverage and difficulty-monotonicity
// guarantees before handing the plan downstream.
func checkInvariants(report core.AnalysisReport, specs []core.GameSpec) error {
	covered := map[string]struct{}{}
	prev := -1
	for _, s := range specs {
		if len(s.CoveredConceptIDs) == 0 {
			return &core.PlanningError{Msg: fmt.Sprintf("spec %d covers no concepts", s.Index)}
		}
		r := s.Difficulty.Rank()
		if r < prev {
			return &core.PlanningError{Msg: fmt.Sprintf("difficulty regresses at spec %d", s.Index)}
		}
		prev = r
		for _, id := range s.CoveredConceptIDs {
			covered[id] = struct{}{}
		}
	}
	for _, c := range report.Concepts {
		if _, ok := covered[c.ID]; !ok {
			return &core.PlanningError{Msg: "concept " + c.ID + " left uncovered"}
		}
	}
	return nil
}
