package capability

import (
	"context"
	"fmt"
	"sync"

	"github.com/eduforge/eduforge/core"
)

// MockCapability is a lightweight in-memory Capability useful for tests and
// examples. Responses are deterministic: canned content when registered, a
// minimal valid document otherwise. Failures can be injected per operation
// and per spec index to exercise retry and gap handling.
type MockCapability struct {
	mu sync.Mutex

	analysisResponse string
	analysisErr      error

	artifactResponses map[int]string
	artifactErrs      map[int]error
	// failuresLeft counts down injected transient failures per spec index;
	// once exhausted the canned (or default) response is returned.
	failuresLeft map[int]int

	analyzeCalls  int
	generateCalls map[int]int
}

// NewMock constructs an empty mock capability.
func NewMock() *MockCapability {
	return &MockCapability{
		artifactResponses: make(map[int]string),
		artifactErrs:      make(map[int]error),
		failuresLeft:      make(map[int]int),
		generateCalls:     make(map[int]int),
	}
}

// SetAnalysisResponse registers the canned analysis JSON.
func (m *MockCapability) SetAnalysisResponse(jsonText string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analysisResponse = jsonText
}

// FailAnalysis makes AnalyzeContent return err.
func (m *MockCapability) FailAnalysis(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analysisErr = err
}

// SetArtifactResponse registers canned markup for a spec index.
func (m *MockCapability) SetArtifactResponse(specIndex int, markup string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifactResponses[specIndex] = markup
}

// FailArtifact makes GenerateArtifact for the spec index always return err.
func (m *MockCapability) FailArtifact(specIndex int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifactErrs[specIndex] = err
}

// FailArtifactTimes injects n transient failures for the spec index before
// generation starts succeeding again.
func (m *MockCapability) FailArtifactTimes(specIndex, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failuresLeft[specIndex] = n
}

// AnalyzeCalls reports how many analysis requests were issued.
func (m *MockCapability) AnalyzeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.analyzeCalls
}

// GenerateCalls reports how many generation requests were issued for a spec.
func (m *MockCapability) GenerateCalls(specIndex int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generateCalls[specIndex]
}

// AnalyzeContent implements core.Capability.
func (m *MockCapability) AnalyzeContent(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyzeCalls++
	if m.analysisErr != nil {
		return "", m.analysisErr
	}
	if m.analysisResponse != "" {
		return m.analysisResponse, nil
	}
	return `{"concepts":[{"id":"c1","label":"Core idea","complexity":"simple","prerequisite_ids":[]}],"complexity_breakdown":{"simple":1,"medium":0,"complex":0},"estimated_learning_time_minutes":5,"reasoning":"single concept"}`, nil
}

// GenerateArtifact implements core.Capability.
func (m *MockCapability) GenerateArtifact(ctx context.Context, req core.ArtifactRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generateCalls[req.Spec.Index]++
	if err, ok := m.artifactErrs[req.Spec.Index]; ok {
		return "", err
	}
	if left := m.failuresLeft[req.Spec.Index]; left > 0 {
		m.failuresLeft[req.Spec.Index] = left - 1
		return "", fmt.Errorf("mock transient generation failure for spec %d", req.Spec.Index)
	}
	if markup, ok := m.artifactResponses[req.Spec.Index]; ok {
		return markup, nil
	}
	return DefaultLessonMarkup(req.Spec.Title), nil
}

// DefaultLessonMarkup returns a minimal self-contained lesson document that
// passes certification: balanced structure, no external references, one
// score indicator.
func DefaultLessonMarkup(title string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<style>body{font-family:sans-serif;text-align:center}#score{font-weight:bold}</style>
</head>
<body>
<h1>%s</h1>
<p>Score: <span id="score">0</span></p>
<button id="answer">Answer</button>
<script>
var score=0;
document.getElementById('answer').addEventListener('click',function(){
  score++;
  document.getElementById('score').textContent=score;
});
</script>
</body>
</html>`, title, title)
}
