package capability

import (
	"fmt"
	"strings"

	"github.com/eduforge/eduforge/core"
	"github.com/eduforge/eduforge/internal/textutil"
)

// analysisPromptTemplate instructs the model to enumerate concepts, classify
// complexity and estimate learning time. Only the extraction is delegated to
// the model; the game count is computed deterministically downstream and is
// therefore not requested here.
const analysisPromptTemplate = `Analyze this educational content and enumerate every distinct learning concept needed to completely teach the material.

CONTENT TO ANALYZE:
{{.content}}

Your task is to:
1. Identify ALL distinct learning concepts that need separate lessons
2. Determine the complexity level of each concept
3. List prerequisite concepts for each concept (by id)
4. Estimate total learning time in minutes

ANALYSIS CRITERIA:
- simple: definitions, basic identification
- medium: understanding relationships, patterns
- complex: application, creation, advanced patterns
- Prerequisites must reference ids from your own concept list; no circular dependencies

OUTPUT FORMAT (JSON):
{
  "concepts": [
    {"id": "c1", "label": "Concept name", "complexity": "simple|medium|complex", "prerequisite_ids": []}
  ],
  "complexity_breakdown": {"simple": 0, "medium": 0, "complex": 0},
  "estimated_learning_time_minutes": 0,
  "reasoning": "One sentence on why this concept set covers the material"
}

IMPORTANT: Return ONLY valid JSON, no explanations.`

// artifactPromptTemplate requests one fully self-contained interactive
// lesson document for a spec, with its position in the sequence so tone and
// difficulty progress across the set.
const artifactPromptTemplate = `Create a complete HTML5 educational lesson game.

GAME CONTEXT:
- This is game {{.position}} of {{.total}} in a learning sequence
- Title: {{.title}}
- Concepts: {{.concepts}}
- Difficulty: {{.difficulty}}
- Learning objective: {{.objective}}
- Game mechanic: {{.mechanic}}

TECHNICAL REQUIREMENTS:
- Single HTML file with embedded CSS and JavaScript
- No external resources of any kind: no CDN links, no image URLs, no fonts, no file paths
- Mobile-responsive layout
- A visible score or progress indicator that updates as the player acts
- Clear instructions, immediate feedback, a completion state

GAME STRUCTURE:
- Welcome screen with instructions
- Progressive challenges appropriate to the difficulty
- Real-time feedback
- Success celebration and optional replay

Generate a complete, working game that teaches the listed concepts.

IMPORTANT: Return ONLY the complete HTML document, no explanations or markdown.`

// AnalysisPrompt renders the content-analysis request for raw text.
func AnalysisPrompt(text string) (string, error) {
	return textutil.RenderTemplate(analysisPromptTemplate, map[string]any{"content": text})
}

// ArtifactPrompt renders the lesson-generation request for one spec.
func ArtifactPrompt(req core.ArtifactRequest) (string, error) {
	labels := make([]string, len(req.Concepts))
	for i, c := range req.Concepts {
		labels[i] = fmt.Sprintf("%s (%s)", c.Label, c.Complexity)
	}
	objective := req.Spec.LearningObjective
	if objective == "" {
		objective = fmt.Sprintf("Master: %s", strings.Join(labels, ", "))
	}
	return textutil.RenderTemplate(artifactPromptTemplate, map[string]any{
		"position":   req.Position,
		"total":      req.TotalGames,
		"title":      req.Spec.Title,
		"concepts":   strings.Join(labels, ", "),
		"difficulty": req.Spec.Difficulty.Label(),
		"objective":  objective,
		"mechanic":   req.Spec.MechanicHint,
	})
}
