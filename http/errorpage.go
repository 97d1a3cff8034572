package http

import (
	"html/template"
	"net/http"
)

var notFoundPage = template.Must(template.New("404").Parse(`<!doctype html>
<html>
<head><title>404 Not Found</title></head>
<body>
<h1>404 Not Found</h1>
<p>{{.Method}} <code>{{.Path}}</code> is not a cardfs route.</p>
<ul>
{{- range .Routes}}
<li><code>{{.}}</code></li>
{{- end}}
</ul>
</body>
</html>
`))

var knownRoutes = []string{
	"GET /list?dir=&depth=",
	"GET /download?file=",
	"GET|DELETE /delete?file=",
	"POST /delete-multi",
	"POST /upload?dir=",
	"POST /mkdir (parent, name)",
}

// writeNotFound renders the 404 page. The request path is escaped by the
// template.
func writeNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_ = notFoundPage.Execute(w, struct {
		Method string
		Path   string
		Routes []string
	}{r.Method, r.URL.Path, knownRoutes})
}
