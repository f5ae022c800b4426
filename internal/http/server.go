// Package http serves the tracker's web UI: server-rendered pages plus
// form-post mutation routes that redirect back with a flash message.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/tracker"
	appweb "fintrack/web"
)

var pageNames = []string{"index", "income", "transactions", "reports", "savings", "budgets"}

type Server struct {
	http.Server
	tracker *tracker.Tracker
	pages   map[string]*template.Template

	limiter      *ratelimit.Limiter
	tracer       *trace.Middleware
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, trk *tracker.Tracker) *Server {
	mux := http.NewServeMux()

	s := &Server{
		tracker: trk,
		limiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		tracer:  trace.NewMiddleware(),
	}

	pages, err := parsePages()
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.pages = pages

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/income", s.handleIncome)
	mux.HandleFunc("/transactions", s.handleTransactions)
	mux.HandleFunc("/reports", s.handleReports)
	mux.HandleFunc("/savings", s.handleSavings)
	mux.HandleFunc("/budgets", s.handleBudgets)
	mux.HandleFunc("/records", s.handleAddRecord)
	mux.HandleFunc("/records/delete", s.handleDeleteRecord)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limited := s.limiter.Middleware(trace.ClientIP)(mux)
	s.Server = http.Server{
		Addr:    addr,
		Handler: s.tracer.Middleware(headers.Middleware(limited)),
	}

	return s
}

func parsePages() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"usd": core.FormatUSD,
	}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(
			appweb.TemplatesFS,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, err
		}
		pages[name] = t
	}
	return pages, nil
}

// Shutdown stops the HTTP server and the limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
