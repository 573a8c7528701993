// Package site serves the service landing page.
package site

import (
	"net/http"
)

// Register attaches the landing page route to mux.
func Register(mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(indexHTML))
	})
}

const indexHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Lead Scoring Service</title>
    <style>
      body{font-family:sans-serif;margin:3rem auto;max-width:40rem;line-height:1.6}
      code{background:#f2f2f2;padding:0.1rem 0.3rem;border-radius:3px}
    </style>
  </head>
  <body>
    <h1>Lead Scoring Service</h1>
    <p>Real-time B2B lead conversion scoring.</p>
    <ul>
      <li><a href="/api-docs">API reference</a></li>
      <li><a href="/openapi.yaml">OpenAPI specification</a></li>
      <li><a href="/healthz">Health</a></li>
      <li><a href="/stats">Statistics</a></li>
      <li><a href="/metrics">Prometheus metrics</a></li>
    </ul>
    <p>Score a lead with <code>POST /api/v1/score</code>.</p>
  </body>
</html>`
