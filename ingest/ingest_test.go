package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngest_NormalizesLineEndingsAndBlankRuns(t *testing.T) {
	in := New()
	doc, err := in.Ingest(strings.NewReader("Fractions:\r\nA fraction has a numerator.\r\n\r\n\r\n\r\nIt also has a denominator.   \n"))
	require.NoError(t, err)

	assert.NotContains(t, doc.NormalizedText, "\r")
	assert.NotContains(t, doc.NormalizedText, "\n\n\n")
	assert.Equal(t, 11, doc.WordCount)
	assert.Contains(t, doc.RawText, "\r\n")
}

func TestIngest_DetectsTopics(t *testing.T) {
	in := New()
	content := `Geometry Basics

Triangles: a triangle has three sides and three angles.
The sum of the angles is 180 degrees.

Circles: a circle is the set of points at a fixed distance from a center.
Geometry Basics
`
	doc, err := in.Ingest(strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, []string{"Geometry Basics", "Triangles", "Circles"}, doc.DetectedTopics)
}

func TestIngest_EmptyInput(t *testing.T) {
	in := New()
	doc, err := in.Ingest(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, doc.WordCount)
	assert.Empty(t, doc.DetectedTopics)
}
