package admin

import "html/template"

// Minimal server-rendered admin screens. The public reading surface has
// its own rendering pipeline; these only need to carry the login flow
// and the protected dashboard navigation.
const viewSource = `
{{define "login"}}<!DOCTYPE html>
<html><head><title>{{.Brand}} admin</title></head>
<body>
<h1>{{.Brand}}</h1>
{{if .KnownAccess}}
<h2>Access: {{.DisplayName}}</h2>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="post" action="/admin/{{.AccessName}}/login">
  <input type="hidden" name="access_name" value="{{.AccessName}}">
  <input type="password" name="password" autofocus>
  <button type="submit">Enter</button>
</form>
{{else}}
<h2>Unknown access</h2>
{{end}}
</body></html>{{end}}

{{define "dashboard"}}<!DOCTYPE html>
<html><head><title>{{.Brand}} dashboard</title></head>
<body>
<h1>Dashboard — {{.DisplayName}}</h1>
<ul>
  <li><a href="/admin/{{.AccessName}}/list">Documents</a></li>
  <li><a href="/admin/{{.AccessName}}/edit">Editor</a></li>
  <li><a href="/admin/{{.AccessName}}/logout">Log out</a></li>
</ul>
</body></html>{{end}}

{{define "list"}}<!DOCTYPE html>
<html><head><title>Documents</title></head>
<body>
<h1>Documents</h1>
<ul>
{{range .Documents}}<li><a href="/admin/{{$.AccessName}}/view?slug={{.Slug}}">{{.Title}}</a> <small>{{.Slug}} · {{.PieceCount}} pieces</small></li>
{{else}}<li>No documents.</li>
{{end}}
</ul>
<p><a href="/admin/{{.AccessName}}/dashboard">Back</a></p>
</body></html>{{end}}

{{define "view"}}<!DOCTYPE html>
<html><head><title>{{.Document.Title}}</title></head>
<body>
<h1>{{.Document.Title}}</h1>
<article>{{.Rendered}}</article>
<p><a href="/admin/{{.AccessName}}/list">Back</a></p>
</body></html>{{end}}

{{define "edit"}}<!DOCTYPE html>
<html><head><title>Editor</title></head>
<body>
<h1>Editor</h1>
<textarea id="editor" rows="24" cols="80">{{with .Document}}{{.Content}}{{end}}</textarea>
<p><small>Saving and live preview are driven by the editor script over /api/documents/save and /ws/preview.</small></p>
<p><a href="/admin/{{.AccessName}}/dashboard">Back</a></p>
</body></html>{{end}}

{{define "logout_confirmed"}}<!DOCTYPE html>
<html><head><title>Logged out</title></head>
<body>
<h1>Logged out</h1>
{{if .Warning}}<p class="warning">{{.Warning}}</p>{{end}}
<p><a href="/admin/{{.AccessName}}">Log in again</a></p>
</body></html>{{end}}
`

var views = template.Must(template.New("admin").Parse(viewSource))
