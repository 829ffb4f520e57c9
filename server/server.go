package server

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	v1 "github.com/bookhive/bookhive/api/v1"
	"github.com/bookhive/bookhive/config"
	"github.com/bookhive/bookhive/http/response"
	"github.com/bookhive/bookhive/store"
)

const docsPage = `<!DOCTYPE html>
<html>
<head><title>bookhive API</title></head>
<body>
<h1>bookhive API</h1>
<ul>
<li><code>GET /api/v1/health</code> &mdash; service status and row count</li>
<li><code>GET /api/v1/books</code> &mdash; list books; filters: <code>title</code>, <code>category</code>, <code>min</code>, <code>max</code>; pagination: <code>limit</code> (1&ndash;200, default 50), <code>offset</code></li>
<li><code>GET /api/v1/books/top-rated</code> &mdash; best rated books; <code>limit</code> (1&ndash;100, default 10)</li>
<li><code>GET /api/v1/books/{id}</code> &mdash; a single book</li>
<li><code>GET /api/v1/categories</code> &mdash; category names with book counts</li>
<li><code>GET /api/v1/stats/overview</code> &mdash; totals, average price, rating distribution</li>
</ul>
</body>
</html>
`

// StartServer starts the HTTP server.
func StartServer(store *store.Store) *http.Server {
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Opts.Host, config.Opts.Port),
		Handler: setupHandler(store),
	}

	startHTTPServer(server)

	return server
}

func startHTTPServer(server *http.Server) {
	go func() {
		fmt.Println("Starting HTTP server on:", server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			fmt.Println("HTTP server error", err)
			os.Exit(1)
		}
	}()
}

func setupHandler(store *store.Store) http.Handler {
	router := mux.NewRouter()
	router.Use(requestMiddleware)

	// Setup the API routes
	v1.Server(router, store)

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs", http.StatusFound)
	}).Name("root")

	router.HandleFunc("/docs", func(w http.ResponseWriter, r *http.Request) {
		response.New(w, r).
			WithHeader("Content-Type", "text/html; charset=utf-8").
			WithBody([]byte(docsPage)).
			Write()
	}).Name("docs")

	if config.Opts.MetricsCollector {
		router.Handle("/metrics", promhttp.Handler()).Name("metrics")
	}

	return router
}
