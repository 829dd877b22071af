// Package server exposes the comparison pipeline over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/benchmark-cli/internal/config"
	"github.com/sells-group/benchmark-cli/internal/pipeline"
	"github.com/sells-group/benchmark-cli/internal/snapshot"
	"github.com/sells-group/benchmark-cli/internal/store"
	"github.com/sells-group/benchmark-cli/internal/template"
)

// maxBodyBytes caps snapshot uploads.
const maxBodyBytes = 10 << 20

// Server handles the HTTP API.
type Server struct {
	cfg      config.ServerConfig
	pipeline *pipeline.Pipeline
	limiter  *rate.Limiter
}

// New creates a Server around p.
func New(cfg config.ServerConfig, p *pipeline.Pipeline) *Server {
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}
	return &Server{
		cfg:      cfg,
		pipeline: p,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Location"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.rateLimit)

		r.Post("/compare", s.handleCompare)

		r.Get("/templates", s.handleListTemplates)
		r.Post("/templates/reload", s.handleReloadTemplates)
		r.Get("/templates/{id}", s.handleGetTemplate)

		r.Get("/reports", s.handleListReports)
		r.Get("/reports/{id}", s.handleGetReport)
	})
	return r
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("server: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCompare accepts a snapshot (JSON, or YAML with a yaml content type)
// and returns the comparison result. ?save=true persists the report and
// ?lens= overrides the deal lens.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "read request body: "+err.Error())
		return
	}

	format := "json"
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); strings.HasSuffix(mt, "yaml") {
		format = "yaml"
	}
	snap, err := snapshot.Decode(body, format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if snap.CompanyID == "" {
		writeError(w, http.StatusBadRequest, "company_id is required")
		return
	}

	opts := pipeline.RunOptions{DealLens: r.URL.Query().Get("lens")}
	if v := r.URL.Query().Get("save"); v != "" {
		save, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "save must be a boolean")
			return
		}
		if save && s.pipeline.Store() == nil {
			writeError(w, http.StatusServiceUnavailable, "report store not configured")
			return
		}
		opts.Save = save
	}

	res, err := s.pipeline.Run(r.Context(), snap, opts)
	if err != nil {
		if eris.Is(err, template.ErrNotFound) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		zap.L().Error("server: compare failed", zap.String("company", snap.CompanyID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "comparison failed")
		return
	}

	status := http.StatusOK
	if res.ReportID != "" {
		w.Header().Set("Location", "/v1/reports/"+res.ReportID)
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

type templateSummary struct {
	ID          string `json:"id"`
	Version     string `json:"version"`
	Name        string `json:"name,omitempty"`
	Industry    string `json:"industry,omitempty"`
	SubIndustry string `json:"sub_industry,omitempty"`
	Metrics     int    `json:"metrics"`
	Systems     int    `json:"systems"`
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	tpls, err := s.pipeline.Templates().List(r.Context())
	if err != nil {
		zap.L().Error("server: list templates failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load templates")
		return
	}
	out := make([]templateSummary, 0, len(tpls))
	for _, t := range tpls {
		out = append(out, templateSummary{
			ID:          t.ID,
			Version:     t.Version,
			Name:        t.Name,
			Industry:    t.Industry,
			SubIndustry: t.SubIndustry,
			Metrics:     len(t.Metrics),
			Systems:     len(t.Systems.All()),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := s.pipeline.Templates().Get(r.Context(), chi.URLParam(r, "id"))
	if eris.Is(err, template.ErrNotFound) {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load templates")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleReloadTemplates(w http.ResponseWriter, r *http.Request) {
	if err := s.pipeline.Templates().Reload(r.Context()); err != nil {
		zap.L().Error("server: reload templates failed", zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	tpls, err := s.pipeline.Templates().List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load templates")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"templates": len(tpls)})
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	st := s.pipeline.Store()
	if st == nil {
		writeError(w, http.StatusServiceUnavailable, "report store not configured")
		return
	}
	q := r.URL.Query()
	filter := store.ReportFilter{CompanyID: q.Get("company_id"), TemplateID: q.Get("template_id")}
	for key, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		if v := q.Get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, key+" must be a non-negative integer")
				return
			}
			*dst = n
		}
	}

	reports, err := st.ListReports(r.Context(), filter)
	if err != nil {
		zap.L().Error("server: list reports failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	if reports == nil {
		reports = []store.StoredReport{}
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	st := s.pipeline.Store()
	if st == nil {
		writeError(w, http.StatusServiceUnavailable, "report store not configured")
		return
	}
	rec, err := st.GetReport(r.Context(), chi.URLParam(r, "id"))
	if eris.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		zap.L().Error("server: get report failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
