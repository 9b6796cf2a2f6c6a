// Package ingest loads and normalizes raw educational text into the
// ContentDocument consumed by the analyzer.
package ingest

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/eduforge/eduforge/core"
)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// Ingestor normalizes raw UTF-8 text. It is stateless and safe for
// concurrent use.
type Ingestor struct{}

// New returns an Ingestor.
func New() *Ingestor { return &Ingestor{} }

// Ingest reads all content from r and produces an immutable ContentDocument:
// line endings unified, trailing whitespace trimmed, blank-line runs
// collapsed, words counted and headline-style topics detected.
func (in *Ingestor) Ingest(r io.Reader) (core.ContentDocument, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return core.ContentDocument{}, fmt.Errorf("ingest: read content: %w", err)
	}

	normalized := normalize(string(raw))
	return core.ContentDocument{
		RawText:        string(raw),
		NormalizedText: normalized,
		WordCount:      len(strings.Fields(normalized)),
		DetectedTopics: detectTopics(normalized),
	}, nil
}

func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	s = strings.Join(lines, "\n")
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// detectTopics scans for headline-shaped lines: short lines ending in a
// colon or written without terminal punctuation, which educational material
// uses as section markers. Order of appearance is preserved, duplicates
// dropped.
func detectTopics(s string) []string {
	var topics []string
	seen := map[string]struct{}{}
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		topic := ""
		if idx := strings.Index(line, ":"); idx > 0 && len(strings.Fields(line[:idx])) <= 4 {
			topic = strings.TrimSpace(line[:idx])
		} else if len(strings.Fields(line)) <= 8 && isTitleLike(line) {
			topic = line
		}
		if topic == "" {
			continue
		}
		key := strings.ToLower(topic)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		topics = append(topics, topic)
	}
	return topics
}

func isTitleLike(line string) bool {
	r := []rune(line)
	if len(r) == 0 || !unicode.IsUpper(r[0]) {
		return false
	}
	last := r[len(r)-1]
	return last != '.' && last != '!' && last != '?' && last != ','
}
