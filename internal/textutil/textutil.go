// Package textutil holds small text-shaping helpers shared by the pipeline
// stages: markdown fence stripping for model output, tolerant JSON
// extraction, and filesystem-safe name encoding. It lives in internal to
// avoid committing to public API stability prematurely.
package textutil

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	fenceOpen  = regexp.MustCompile(`(?mi)^\x60\x60\x60[a-z]*\s*\n?`)
	fenceClose = regexp.MustCompile(`(?mi)\n?\x60\x60\x60\s*$`)
	bareLang   = regexp.MustCompile(`(?i)^(html|json)\s*\n`)
	unsafe     = regexp.MustCompile(`[^A-Za-z0-9 _-]`)
	spaces     = regexp.MustCompile(`\s+`)
)

// StripFences removes markdown code fences (and a bare leading language tag)
// that models habitually wrap around generated documents.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = fenceOpen.ReplaceAllString(s, "")
	s = fenceClose.ReplaceAllString(s, "")
	s = bareLang.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ExtractJSON pulls the first JSON object out of a possibly chatty model
// response: fences are stripped, then the outermost balanced object is
// located and checked for validity. Returns "" when no valid object exists.
func ExtractJSON(s string) string {
	s = StripFences(s)
	if gjson.Valid(s) && strings.HasPrefix(strings.TrimSpace(s), "{") {
		return strings.TrimSpace(s)
	}
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				candidate := s[start : i+1]
				if gjson.Valid(candidate) {
					return candidate
				}
				return ""
			}
		}
	}
	return ""
}

// SafeFileName reduces a lesson title to a filesystem-safe token: unsafe
// runes dropped, whitespace collapsed to underscores.
func SafeFileName(title string) string {
	cleaned := unsafe.ReplaceAllString(title, "")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = spaces.ReplaceAllString(cleaned, "_")
	if cleaned == "" {
		cleaned = "Lesson"
	}
	return cleaned
}
