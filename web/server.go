// ABOUTME: Web UI server with embedded templates
// ABOUTME: Dashboard, posts, manual-posting log, reply approvals and follow-ups over HTTP
package web

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/amplify/automation"
	"github.com/harperreed/amplify/charm"
	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/logging"
	"github.com/harperreed/amplify/models"
	"github.com/harperreed/amplify/responder"
	"github.com/harperreed/amplify/viz"
)

//go:embed templates/*.html templates/partials/*.html
var templatesFS embed.FS

const listLimit = 100

type Server struct {
	db        *sql.DB
	settings  charm.Store
	responder *responder.Responder
	templates *template.Template
	generator *viz.GraphGenerator
}

func NewServer(database *sql.DB, settings charm.Store, r *responder.Responder) (*Server, error) {
	funcMap := template.FuncMap{
		"ago": func(t time.Time) string {
			return t.Local().Format("Jan 2 15:04")
		},
		"join": strings.Join,
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Server{
		db:        database,
		settings:  settings,
		responder: r,
		templates: tmpl,
		generator: viz.NewGraphGenerator(database),
	}, nil
}

// Handler returns the routes on a private mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /posts", s.handlePosts)
	mux.HandleFunc("GET /fallbacks", s.handleFallbacks)
	mux.HandleFunc("GET /responses", s.handleResponses)
	mux.HandleFunc("GET /followups", s.handleFollowups)

	// Partials for HTMX
	mux.HandleFunc("GET /partials/graph", s.handleGraphPartial)
	mux.HandleFunc("POST /responses/{id}/approve", s.handleApprove)
	mux.HandleFunc("POST /responses/{id}/reject", s.handleReject)
	mux.HandleFunc("POST /followups/log/{id}", s.handleFollowupLog)
	return mux
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	server := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logging.Info("starting web server", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data any) {
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		logging.Error("template error", "template", name, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	rules, err := automation.LoadRules(s.settings)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	stats, err := viz.GenerateDashboardStats(s.db, automation.SortedRules(rules), time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "layout.html", map[string]any{
		"Stats":           stats,
		"Title":           "Dashboard",
		"ContentTemplate": "dashboard-content",
	})
}

type postView struct {
	models.Post
	Results []models.PostResult
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	posts, err := db.ListPosts(s.db, r.URL.Query().Get("status"), listLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		results, err := db.ListPostResults(s.db, p.ID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		views = append(views, postView{Post: p, Results: results})
	}

	s.renderTemplate(w, "layout.html", map[string]any{
		"Posts":           views,
		"Title":           "Posts",
		"ContentTemplate": "posts-content",
	})
}

func (s *Server) handleFallbacks(w http.ResponseWriter, r *http.Request) {
	entries, err := db.ListFallbackEntries(s.db, listLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "layout.html", map[string]any{
		"Entries":         entries,
		"Title":           "Manual posting",
		"ContentTemplate": "fallbacks-content",
	})
}

func (s *Server) handleResponses(w http.ResponseWriter, r *http.Request) {
	pending, err := s.responder.Pending(listLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "layout.html", map[string]any{
		"Responses":       pending,
		"Title":           "Pending replies",
		"ContentTemplate": "responses-content",
	})
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	resp, err := s.responder.Approve(r.Context(), r.PathValue("id"))
	if err != nil && resp == nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	data := map[string]any{"Response": resp, "Outcome": "sent"}
	if err != nil {
		data["Outcome"] = "failed: " + err.Error()
	}
	s.renderTemplate(w, "response-row", data)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	resp, err := s.responder.Reject(r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	s.renderTemplate(w, "response-row", map[string]any{"Response": resp, "Outcome": "rejected"})
}

func (s *Server) handleGraphPartial(w http.ResponseWriter, r *http.Request) {
	var dot string
	var err error

	switch r.URL.Query().Get("type") {
	case "rules":
		rules, loadErr := automation.LoadRules(s.settings)
		if loadErr != nil {
			http.Error(w, loadErr.Error(), http.StatusInternalServerError)
			return
		}
		dot, err = s.generator.GenerateRuleGraph(r.Context(), automation.SortedRules(rules))

	case "post":
		postID := r.URL.Query().Get("id")
		if postID == "" {
			http.Error(w, "Post ID required", http.StatusBadRequest)
			return
		}
		dot, err = s.generator.GeneratePostGraph(r.Context(), postID)

	default:
		http.Error(w, "Invalid graph type", http.StatusBadRequest)
		return
	}

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "graph.html", map[string]any{"DOT": dot})
}

func (s *Server) handleFollowups(w http.ResponseWriter, r *http.Request) {
	followups, err := db.GetFollowupList(s.db, 50)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "layout.html", map[string]any{
		"Followups":       followups,
		"Title":           "Follow-ups",
		"ContentTemplate": "followups-content",
	})
}

func (s *Server) handleFollowupLog(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid contact ID", http.StatusBadRequest)
		return
	}

	interaction := &models.Interaction{
		ContactID: id,
		Type:      models.InteractionOther,
		Timestamp: time.Now(),
		Notes:     "Quick contact via web UI",
	}
	if err := db.LogInteraction(s.db, interaction); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if _, err := w.Write([]byte(`<td colspan="5" class="ok">✓ Interaction logged</td>`)); err != nil {
		logging.Warn("failed to write response", "err", err)
	}
}
