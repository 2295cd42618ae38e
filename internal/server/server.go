package server

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yourorg/packetdoc/internal/config"
	"github.com/yourorg/packetdoc/internal/generator"
	"github.com/yourorg/packetdoc/internal/store"
	"github.com/yourorg/packetdoc/pkg/types"
)

var (
	//go:embed ui.html
	uiHTML string

	uiTemplate = template.Must(template.New("ui").Parse(uiHTML))
)

// Server serves the generated pages, the run catalog UI and its API.
type Server struct {
	cfg    *config.Config
	store  store.Store
	logger *slog.Logger
	mux    *http.ServeMux
}

type uiData struct {
	IndexPage string
	IndexDir  string
	Runs      []types.Run
	Run       *types.Run
	Packets   []types.PacketRecord
}

// New constructs a new Server with routes registered.
func New(cfg *config.Config, st store.Store, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if st == nil {
		return nil, errors.New("store is nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	srv := &Server{
		cfg:    cfg,
		store:  st,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	srv.registerRoutes()
	return srv, nil
}

// Handler returns the http handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe starts the server on addr.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) registerRoutes() {
	// Generated Markdown pages.
	s.mux.Handle("/docs/", http.StripPrefix("/docs/", http.FileServer(http.Dir(s.cfg.Output.Dir))))

	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/run/", s.handleRunPage)

	s.mux.HandleFunc("/api/runs", s.handleRuns)
	s.mux.HandleFunc("/api/runs/", s.handleRunRoutes)
	s.mux.HandleFunc("/api/generate", s.handleGenerate)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	runs, err := s.store.ListRuns()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.renderUI(w, uiData{Runs: runs})
}

func (s *Server) handleRunPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, tail, ok := splitPath(r.URL.Path, "/run/")
	if !ok || id == "" || tail != "" {
		http.NotFound(w, r)
		return
	}
	run, packets, status, err := s.loadRun(id)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}
	s.renderUI(w, uiData{Run: run, Packets: packets})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	runs, err := s.store.ListRuns()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []types.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRunRoutes(w http.ResponseWriter, r *http.Request) {
	id, tail, ok := splitPath(r.URL.Path, "/api/runs/")
	if !ok || id == "" || tail != "" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		s.handleRunDetail(w, id)
	case http.MethodDelete:
		if err := s.store.DeleteRun(id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "run not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		s.logger.Info("run deleted", "run", id)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRunDetail(w http.ResponseWriter, id string) {
	run, packets, status, err := s.loadRun(id)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}
	resp := struct {
		Run     *types.Run           `json:"run"`
		Packets []types.PacketRecord `json:"packets"`
	}{
		Run:     run,
		Packets: packets,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Metadata      string `json:"metadata"`
		Documentation string `json:"documentation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Metadata) == "" || strings.TrimSpace(req.Documentation) == "" {
		http.Error(w, "metadata and documentation required", http.StatusBadRequest)
		return
	}
	run, _, err := generator.GenerateRecorded(req.Metadata, req.Documentation, s.cfg, s.store, s.logger, nil)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, generator.ErrFileNotFound) {
			status = http.StatusBadRequest
		}
		http.Error(w, "generate failed: "+err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) loadRun(id string) (*types.Run, []types.PacketRecord, int, error) {
	run, err := s.store.GetRun(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, http.StatusNotFound, errors.New("run not found")
		}
		return nil, nil, http.StatusInternalServerError, err
	}
	packets, err := s.store.GetPackets(id)
	if err != nil {
		return nil, nil, http.StatusInternalServerError, err
	}
	return run, packets, http.StatusOK, nil
}

func (s *Server) renderUI(w http.ResponseWriter, data uiData) {
	data.IndexDir = s.cfg.Output.IndexName
	data.IndexPage = s.cfg.Output.IndexName + ".md"
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := uiTemplate.Execute(w, data); err != nil {
		s.logger.Error("render ui", "error", err)
	}
}

func splitPath(fullPath, prefix string) (string, string, bool) {
	if !strings.HasPrefix(fullPath, prefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(fullPath, prefix)
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return "", "", false
	}
	parts := strings.Split(rest, "/")
	id := parts[0]
	tail := ""
	if len(parts) > 1 {
		tail = strings.Join(parts[1:], "/")
	}
	return id, tail, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
