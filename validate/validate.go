// Package validate certifies raw artifacts before publication. Checks run
// in order and short-circuit at the first failure: structural
// well-formedness, self-containment, then policy. A structural failure gets
// exactly one bounded auto-repair pass before the artifact is rejected, so
// the generation capability's occasional formatting drift is absorbed
// without masking deeper defects.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/eduforge/eduforge/core"
	"github.com/eduforge/eduforge/internal/textutil"
	"github.com/eduforge/eduforge/logging"
)

// braceTolerance allows minor counting noise inside script blocks (braces in
// string literals and the like) before a block counts as malformed.
const braceTolerance = 2

// Validator applies the certification checks. It is stateless and safe for
// concurrent use.
type Validator struct {
	logger logging.Logger
}

// Options configure a Validator.
type Options struct {
	Logger logging.Logger
}

// New constructs a Validator.
func New(optFns ...func(o *Options)) *Validator {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Validator{logger: opts.Logger}
}

// Certify moves a raw artifact to certified, possibly after one repair pass,
// or returns the failure that permanently rejected it. Certifying an
// already-certified artifact is a no-op; a failed artifact stays failed.
func (v *Validator) Certify(artifact core.GameArtifact) (core.GameArtifact, *core.ValidationFailure) {
	switch artifact.Status {
	case core.StatusCertified:
		return artifact, nil
	case core.StatusFailed:
		return artifact, &core.ValidationFailure{
			SpecIndex: artifact.SpecIndex,
			Reason:    core.ReasonMalformedStructure,
			Detail:    "artifact was already rejected",
		}
	}

	markup := artifact.Markup
	if issues := structuralIssues(markup); len(issues) > 0 {
		repaired := Repair(markup)
		if remaining := structuralIssues(repaired); len(remaining) > 0 {
			v.logger.Warn("artifact rejected after repair", "spec_index", artifact.SpecIndex, "issues", strings.Join(remaining, "; "))
			return failed(artifact), &core.ValidationFailure{
				SpecIndex: artifact.SpecIndex,
				Reason:    core.ReasonMalformedStructure,
				Detail:    strings.Join(remaining, "; "),
			}
		}
		v.logger.Info("artifact repaired", "spec_index", artifact.SpecIndex, "issues", strings.Join(issues, "; "))
		markup = repaired
	}

	if refs := externalReferences(markup); len(refs) > 0 {
		return failed(artifact), &core.ValidationFailure{
			SpecIndex: artifact.SpecIndex,
			Reason:    core.ReasonUnresolvedReference,
			Detail:    "external references: " + strings.Join(refs, ", "),
		}
	}

	if !hasProgressIndicator(markup) {
		return failed(artifact), &core.ValidationFailure{
			SpecIndex: artifact.SpecIndex,
			Reason:    core.ReasonPolicyViolation,
			Detail:    "no scoring or progress indicator found",
		}
	}

	artifact.Markup = markup
	artifact.Status = core.StatusCertified
	return artifact, nil
}

func failed(a core.GameArtifact) core.GameArtifact {
	a.Status = core.StatusFailed
	return a
}

// voidElements never take a closing tag.
var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {},
	"img": {}, "input": {}, "link": {}, "meta": {}, "source": {},
	"track": {}, "wbr": {},
}

// implicitClose elements may legally be left open; browsers close them when
// the enclosing element ends.
var implicitClose = map[string]struct{}{
	"p": {}, "li": {}, "td": {}, "th": {}, "tr": {}, "option": {},
	"dt": {}, "dd": {}, "thead": {}, "tbody": {}, "tfoot": {},
}

// structuralIssues tokenizes the markup and reports unbalanced structural
// elements, duplicate id attributes and significantly unbalanced script
// blocks. An empty result means check (1) passes.
func structuralIssues(markup string) []string {
	var issues []string

	if !strings.Contains(strings.ToLower(markup), "<html") &&
		!strings.Contains(strings.ToLower(markup), "<body") {
		issues = append(issues, "no document structure found")
	}
	if fenced := strings.HasPrefix(strings.TrimSpace(markup), "```"); fenced {
		issues = append(issues, "markdown fence wrapping")
	}

	var stack []string
	ids := map[string]int{}
	inScript := false
	var scriptText strings.Builder
	scriptBlock := 0

	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			nameBytes, hasAttr := z.TagName()
			name := string(nameBytes)
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == "id" {
					ids[string(val)]++
				}
			}
			if tt == html.SelfClosingTagToken {
				continue
			}
			if _, void := voidElements[name]; void {
				continue
			}
			if name == "script" {
				inScript = true
				scriptBlock++
				scriptText.Reset()
			}
			stack = append(stack, name)
		case html.EndTagToken:
			nameBytes, _ := z.TagName()
			name := string(nameBytes)
			if name == "script" && inScript {
				inScript = false
				if issue := scriptBalance(scriptText.String(), scriptBlock); issue != "" {
					issues = append(issues, issue)
				}
			}
			// Pop to the matching open tag; anything popped over must be
			// allowed to close implicitly.
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i] != name {
					continue
				}
				for _, skipped := range stack[i+1:] {
					if _, ok := implicitClose[skipped]; !ok {
						issues = append(issues, "unclosed element <"+skipped+">")
					}
				}
				stack = stack[:i]
				break
			}
		case html.TextToken:
			if inScript {
				scriptText.Write(z.Text())
			}
		}
	}

	for _, open := range stack {
		if _, ok := implicitClose[open]; !ok {
			issues = append(issues, "unclosed element <"+open+">")
		}
	}
	for id, n := range ids {
		if n > 1 {
			issues = append(issues, fmt.Sprintf("duplicate id %q (%d occurrences)", id, n))
		}
	}
	return issues
}

func scriptBalance(js string, block int) string {
	braces := strings.Count(js, "{") - strings.Count(js, "}")
	parens := strings.Count(js, "(") - strings.Count(js, ")")
	if braces > braceTolerance || braces < -braceTolerance {
		return fmt.Sprintf("script block %d: mismatched braces (%+d)", block, braces)
	}
	if parens > braceTolerance || parens < -braceTolerance {
		return fmt.Sprintf("script block %d: mismatched parentheses (%+d)", block, parens)
	}
	return ""
}

var (
	externalAttr = regexp.MustCompile(`(?i)\b(?:src|href)\s*=\s*["']([^"']+)["']`)
	cssURL       = regexp.MustCompile(`(?i)url\(\s*["']?((?:https?:)?//[^)"']+)`)
	importRule   = regexp.MustCompile(`(?i)@import\s+["']?((?:https?:)?//[^"';]+)`)
)

// externalReferences returns every network or filesystem reference that
// breaks self-containment. Fragments, data URIs and javascript: handlers are
// allowed.
func externalReferences(markup string) []string {
	var refs []string
	for _, m := range externalAttr.FindAllStringSubmatch(markup, -1) {
		target := strings.TrimSpace(m[1])
		if isExternal(target) {
			refs = append(refs, target)
		}
	}
	for _, re := range []*regexp.Regexp{cssURL, importRule} {
		for _, m := range re.FindAllStringSubmatch(markup, -1) {
			refs = append(refs, strings.TrimSpace(m[1]))
		}
	}
	return refs
}

func isExternal(target string) bool {
	t := strings.ToLower(target)
	switch {
	case t == "", strings.HasPrefix(t, "#"),
		strings.HasPrefix(t, "data:"),
		strings.HasPrefix(t, "javascript:"),
		strings.HasPrefix(t, "about:"):
		return false
	}
	return strings.HasPrefix(t, "http://") ||
		strings.HasPrefix(t, "https://") ||
		strings.HasPrefix(t, "//") ||
		strings.HasPrefix(t, "file:") ||
		strings.HasPrefix(t, "/") ||
		strings.HasPrefix(t, "./") ||
		strings.HasPrefix(t, "../") ||
		strings.Contains(t, ".html") ||
		strings.Contains(t, ".js") ||
		strings.Contains(t, ".css")
}

var progressMarkers = []string{
	"id=\"score", "id='score", "class=\"score", "class='score",
	"id=\"progress", "id='progress", "class=\"progress", "class='progress",
	"id=\"points", "id='points", "id=\"level", "id='level",
	"<progress", "<meter",
}

// hasProgressIndicator applies the policy check: at least one scoring or
// progress element must be present for the lesson to count as interactive.
func hasProgressIndicator(markup string) bool {
	lower := strings.ToLower(markup)
	for _, marker := range progressMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Repair is the single bounded auto-repair pass: markdown fences stripped,
// missing document skeleton restored, unclosed structural elements closed,
// external references removed. It never loops; callers re-check and either
// proceed or reject.
func Repair(markup string) string {
	out := textutil.StripFences(markup)

	lower := strings.ToLower(out)
	switch {
	case strings.HasPrefix(strings.ToUpper(strings.TrimSpace(out)), "<!DOCTYPE"):
	case strings.Contains(lower, "<html"):
		out = "<!DOCTYPE html>\n" + out
	case strings.Contains(lower, "<head") || strings.Contains(lower, "<body") ||
		strings.Contains(lower, "<div") || strings.Contains(lower, "<script"):
		out = "<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"UTF-8\">\n<title>Lesson</title>\n</head>\n<body>\n" + out + "\n</body>\n</html>"
	}

	out = stripExternalReferences(out)
	out = closeUnbalanced(out)
	return out
}

// stripExternalReferences removes linked stylesheets, sourced scripts and
// external src/href attributes so a structurally repaired document is also
// self-contained.
var (
	linkTag      = regexp.MustCompile(`(?i)<link\b[^>]*>`)
	scriptSrcTag = regexp.MustCompile(`(?i)<script\b[^>]*\bsrc\s*=[^>]*>\s*</script>`)
)

func stripExternalReferences(markup string) string {
	markup = scriptSrcTag.ReplaceAllString(markup, "")
	markup = linkTag.ReplaceAllStringFunc(markup, func(tag string) string {
		if m := externalAttr.FindStringSubmatch(tag); m != nil && isExternal(m[1]) {
			return ""
		}
		return tag
	})
	markup = externalAttr.ReplaceAllStringFunc(markup, func(attr string) string {
		if m := externalAttr.FindStringSubmatch(attr); m != nil && isExternal(m[1]) {
			return ""
		}
		return attr
	})
	return markup
}

// closeUnbalanced appends closing tags for structural elements left open,
// inserting them before </body> when one exists so the document stays
// nested.
func closeUnbalanced(markup string) string {
	var stack []string
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.StartTagToken:
			nameBytes, _ := z.TagName()
			name := string(nameBytes)
			if _, void := voidElements[name]; void {
				continue
			}
			stack = append(stack, name)
		case html.EndTagToken:
			nameBytes, _ := z.TagName()
			name := string(nameBytes)
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i] == name {
					stack = stack[:i]
					break
				}
			}
		}
	}
	if len(stack) == 0 {
		return markup
	}

	var closers strings.Builder
	for i := len(stack) - 1; i >= 0; i-- {
		if _, ok := implicitClose[stack[i]]; ok {
			continue
		}
		if stack[i] == "html" || stack[i] == "body" {
			continue
		}
		closers.WriteString("</" + stack[i] + ">")
	}
	bodyClose := strings.LastIndex(strings.ToLower(markup), "</body>")
	if closers.Len() > 0 {
		if bodyClose >= 0 {
			markup = markup[:bodyClose] + closers.String() + "\n" + markup[bodyClose:]
		} else {
			markup += "\n" + closers.String()
		}
	}

	lower := strings.ToLower(markup)
	if strings.Contains(lower, "<body") && !strings.Contains(lower, "</body>") {
		markup += "\n</body>"
	}
	if strings.Contains(lower, "<html") && !strings.Contains(lower, "</html>") {
		markup += "\n</html>"
	}
	return markup
}
