package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduforge/eduforge/capability"
	"github.com/eduforge/eduforge/core"
)

func raw(markup string) core.GameArtifact {
	return core.GameArtifact{SpecIndex: 1, Markup: markup, Status: core.StatusRaw}
}

func TestCertify_AcceptsValidDocument(t *testing.T) {
	v := New()
	artifact, failure := v.Certify(raw(capability.DefaultLessonMarkup("Fractions")))
	require.Nil(t, failure)
	assert.Equal(t, core.StatusCertified, artifact.Status)
}

func TestCertify_StripsMarkdownFence(t *testing.T) {
	v := New()
	fenced := "```html\n" + capability.DefaultLessonMarkup("Fractions") + "\n```"

	artifact, failure := v.Certify(raw(fenced))
	require.Nil(t, failure)
	assert.Equal(t, core.StatusCertified, artifact.Status)
	assert.False(t, strings.HasPrefix(artifact.Markup, "```"))
}

func TestCertify_RepairsTruncatedDocument(t *testing.T) {
	truncated := `<!DOCTYPE html>
<html lang="en">
<head><title>Quiz</title></head>
<body>
<div class="board">
<p>Score: <span id="score">0</span>`

	v := New()
	artifact, failure := v.Certify(raw(truncated))
	require.Nil(t, failure)
	assert.Equal(t, core.StatusCertified, artifact.Status)
	assert.Contains(t, artifact.Markup, "</div>")
	assert.Contains(t, artifact.Markup, "</html>")
}

func TestCertify_RejectsPlainText(t *testing.T) {
	v := New()
	artifact, failure := v.Certify(raw("Sure! Here is a fun lesson about fractions for your students."))
	require.NotNil(t, failure)
	assert.Equal(t, core.ReasonMalformedStructure, failure.Reason)
	assert.Equal(t, core.StatusFailed, artifact.Status)
}

func TestCertify_RejectsDuplicateIDs(t *testing.T) {
	markup := `<!DOCTYPE html>
<html><body>
<span id="score">0</span>
<span id="score">0</span>
</body></html>`

	v := New()
	artifact, failure := v.Certify(raw(markup))
	require.NotNil(t, failure)
	assert.Equal(t, core.ReasonMalformedStructure, failure.Reason)
	assert.Contains(t, failure.Detail, "duplicate id")
	assert.Equal(t, core.StatusFailed, artifact.Status)
}

func TestCertify_RejectsUnbalancedScript(t *testing.T) {
	markup := `<!DOCTYPE html>
<html><body>
<span id="score">0</span>
<script>
function play() {
  if (true) {
    if (again) {
      if (more) {
</script>
</body></html>`

	v := New()
	_, failure := v.Certify(raw(markup))
	require.NotNil(t, failure)
	assert.Equal(t, core.ReasonMalformedStructure, failure.Reason)
}

func TestCertify_RejectsExternalScript(t *testing.T) {
	markup := `<!DOCTYPE html>
<html><body>
<span id="score">0</span>
<script src="https://cdn.example.com/game.js"></script>
</body></html>`

	v := New()
	artifact, failure := v.Certify(raw(markup))
	require.NotNil(t, failure)
	assert.Equal(t, core.ReasonUnresolvedReference, failure.Reason)
	assert.Contains(t, failure.Detail, "cdn.example.com")
	assert.Equal(t, core.StatusFailed, artifact.Status)
}

func TestCertify_AllowsFragmentsAndDataURIs(t *testing.T) {
	markup := `<!DOCTYPE html>
<html><body>
<a href="#round-two">Next round</a>
<img src="data:image/png;base64,iVBORw0KGgo=" alt="star">
<span id="score">0</span>
</body></html>`

	v := New()
	artifact, failure := v.Certify(raw(markup))
	require.Nil(t, failure)
	assert.Equal(t, core.StatusCertified, artifact.Status)
}

func TestCertify_RejectsMissingProgressIndicator(t *testing.T) {
	markup := `<!DOCTYPE html>
<html><body>
<h1>Fractions</h1>
<button id="answer">Answer</button>
</body></html>`

	v := New()
	_, failure := v.Certify(raw(markup))
	require.NotNil(t, failure)
	assert.Equal(t, core.ReasonPolicyViolation, failure.Reason)
}

func TestCertify_CertifiedIsNoOp(t *testing.T) {
	v := New()
	certified, failure := v.Certify(raw(capability.DefaultLessonMarkup("Fractions")))
	require.Nil(t, failure)

	again, failure := v.Certify(certified)
	require.Nil(t, failure)
	assert.Equal(t, certified, again)
}

func TestCertify_FailedStaysFailed(t *testing.T) {
	v := New()
	rejected := core.GameArtifact{SpecIndex: 4, Markup: "broken", Status: core.StatusFailed}

	_, failure := v.Certify(rejected)
	require.NotNil(t, failure)
	assert.Equal(t, 4, failure.SpecIndex)
}

func TestRepair_AddsSkeletonAroundFragment(t *testing.T) {
	fragment := `<div class="board"><span id="score">0</span></div>`
	repaired := Repair(fragment)

	assert.Contains(t, repaired, "<!DOCTYPE html>")
	assert.Contains(t, repaired, "<body>")
	assert.Empty(t, structuralIssues(repaired))
}

func TestRepair_RemovesExternalStylesheets(t *testing.T) {
	markup := `<!DOCTYPE html>
<html><head>
<link rel="stylesheet" href="https://fonts.example.com/style.css">
</head><body><span id="score">0</span></body></html>`

	repaired := Repair(markup)
	assert.NotContains(t, repaired, "fonts.example.com")
	assert.Empty(t, externalReferences(repaired))
}
