package render

import (
	"fmt"
	"html/template"
	"strings"

	"trameserve/pkg/logger"
)

// fragments holds one template per selector. Heading open/close tags go
// through a funcMap because template actions cannot appear inside a tag
// name.
const fragments = `
{{define "piece_title"}}{{heading .Level}}{{.Text}}{{headingClose .Level}}{{end}}
{{define "piece_paragraph"}}<p>{{.Text}}</p>{{end}}
{{define "piece_unordered_list"}}<ul>{{range .Items}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{define "piece_code"}}<pre><code{{with .Language}} class="language-{{.}}"{{end}}>{{.Code}}</code></pre>{{end}}
{{define "piece_yaml_code"}}<pre><code class="language-yaml">{{.Code}}</code></pre>{{end}}
{{define "piece_table"}}<table>{{with .Head}}<thead>{{range .}}<tr>{{range .}}<th>{{.}}</th>{{end}}</tr>{{end}}</thead>{{end}}<tbody>{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}</tbody></table>{{end}}
{{define "piece_unknown"}}<div class="piece-unknown">[unsupported piece: {{.Label}}]</div>{{end}}
`

// Renderer turns a render plan into an HTML document body. It plays the
// template-engine collaborator role for the ingestion and preview paths.
type Renderer struct {
	templates *template.Template
}

func NewRenderer() *Renderer {
	clampLevel := func(level int) int {
		if level < 1 {
			return 1
		}
		if level > 6 {
			return 6
		}
		return level
	}
	funcs := template.FuncMap{
		"heading": func(level int) template.HTML {
			return template.HTML(fmt.Sprintf("<h%d>", clampLevel(level)))
		},
		"headingClose": func(level int) template.HTML {
			return template.HTML(fmt.Sprintf("</h%d>", clampLevel(level)))
		},
	}
	return &Renderer{
		templates: template.Must(template.New("pieces").Funcs(funcs).Parse(fragments)),
	}
}

// Render executes each plan item's fragment in order. A selector with no
// matching template degrades to the fallback fragment; rendering a
// document never aborts halfway.
func (r *Renderer) Render(plan []PlanItem) string {
	var sb strings.Builder
	for _, item := range plan {
		selector := item.Selector
		if r.templates.Lookup(selector) == nil {
			selector = SelectorFallback
			item = PlanItem{Selector: selector, Data: UnknownData{Label: item.Selector}}
		}
		if err := r.templates.ExecuteTemplate(&sb, selector, item.Data); err != nil {
			logger.Sugar.Errorf("Failed to render fragment %s: %v", selector, err)
			sb.WriteString(`<div class="piece-unknown">[render error]</div>`)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
