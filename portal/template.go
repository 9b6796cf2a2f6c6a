package portal

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/eduforge/eduforge/core"
)

// indexTemplate renders the navigable entry point: every certified lesson in
// spec order with a difficulty badge, the analysis summary and the gap list.
var indexTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"badgeClass": func(d core.Difficulty) string {
		return strings.ReplaceAll(string(d), "_", "-")
	},
	"label": func(d core.Difficulty) string { return d.Label() },
	"breakdown": func(m map[core.Complexity]int, level string) int {
		return m[core.Complexity(level)]
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Lesson Portal</title>
<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
body { font-family: 'Segoe UI', Tahoma, sans-serif; background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); min-height: 100vh; color: #333; }
.header { background: rgba(255,255,255,0.95); padding: 30px 20px; text-align: center; }
.stats { display: flex; justify-content: center; gap: 30px; margin: 20px 0; flex-wrap: wrap; }
.stat { background: #f8f9fa; padding: 15px 25px; border-radius: 15px; text-align: center; }
.stat-number { font-size: 2em; font-weight: bold; color: #4CAF50; }
.stat-label { color: #666; font-size: 0.9em; }
.container { max-width: 1000px; margin: 0 auto; padding: 30px 20px; }
.lesson-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(300px, 1fr)); gap: 25px; }
.lesson-card { background: rgba(255,255,255,0.95); border-radius: 20px; padding: 25px; }
.lesson-header { display: flex; align-items: center; gap: 12px; margin-bottom: 12px; }
.lesson-number { background: #4CAF50; color: white; width: 36px; height: 36px; border-radius: 50%; display: flex; align-items: center; justify-content: center; font-weight: bold; }
.lesson-title { font-size: 1.2em; font-weight: bold; flex: 1; }
.difficulty { padding: 4px 12px; border-radius: 15px; font-size: 0.8em; font-weight: bold; }
.difficulty.very-easy { background: #e8f5e8; color: #2e7d32; }
.difficulty.easy { background: #e3f2fd; color: #1565c0; }
.difficulty.medium { background: #fff3e0; color: #ef6c00; }
.difficulty.hard { background: #fce4ec; color: #c2185b; }
.difficulty.very-hard { background: #f3e5f5; color: #7b1fa2; }
.play-btn { display: block; text-align: center; background: #4ECDC4; color: white; text-decoration: none; padding: 12px; border-radius: 15px; font-weight: bold; margin-top: 12px; }
.panel { background: rgba(255,255,255,0.95); border-radius: 20px; padding: 25px; margin: 25px 0; }
.gap { color: #c2185b; }
</style>
</head>
<body>
<div class="header">
<h1>Lesson Portal</h1>
<div class="stats">
<div class="stat"><div class="stat-number">{{.CertifiedCount}}</div><div class="stat-label">Lessons</div></div>
<div class="stat"><div class="stat-number">{{.Analysis.EstimatedLearningTimeMinutes}}</div><div class="stat-label">Minutes of Learning</div></div>
<div class="stat"><div class="stat-number">{{len .Analysis.Concepts}}</div><div class="stat-label">Concepts Covered</div></div>
</div>
</div>
<div class="container">
<div class="panel">
<h2>Content Analysis</h2>
{{if .Analysis.Reasoning}}<p>{{.Analysis.Reasoning}}</p>{{end}}
<ul>
<li>Simple concepts: {{breakdown .Analysis.ComplexityBreakdown "simple"}}</li>
<li>Medium concepts: {{breakdown .Analysis.ComplexityBreakdown "medium"}}</li>
<li>Complex concepts: {{breakdown .Analysis.ComplexityBreakdown "complex"}}</li>
</ul>
<p>{{.CertifiedCount}} of {{.PlannedCount}} planned lessons certified.</p>
</div>
<div class="lesson-grid">
{{range .Entries}}
<div class="lesson-card">
<div class="lesson-header">
<div class="lesson-number">{{.SpecIndex}}</div>
<div class="lesson-title">{{.Title}}</div>
<div class="difficulty {{badgeClass .Difficulty}}">{{label .Difficulty}}</div>
</div>
<a class="play-btn" href="{{.Path}}">Start Learning</a>
</div>
{{end}}
</div>
{{if .Gaps}}
<div class="panel">
<h2>Missing Lessons</h2>
<ul>
{{range .Gaps}}<li class="gap">Lesson {{.SpecIndex}} ({{.Stage}}): {{.Reason}}</li>
{{end}}</ul>
</div>
{{end}}
</div>
</body>
</html>
`))

func renderIndex(manifest core.PortalManifest) ([]byte, error) {
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, manifest); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
