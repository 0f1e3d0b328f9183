// Package server exposes a loaded dataset as a read-only JSON API.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"

	"github.com/KaramelBytes/cafesales-cli/internal/analysis"
	"github.com/KaramelBytes/cafesales-cli/internal/metrics"
)

// Server serves summaries, insights, views and outlier diagnostics of one
// snapshot.
// The snapshot is immutable, so handlers share it without locking.
type Server struct {
	ds      *analysis.Dataset
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// New creates a server over ds. m may be nil to disable /metrics.
func New(ds *analysis.Dataset, m *metrics.Metrics, log zerolog.Logger) *Server {
	return &Server{ds: ds, metrics: m, log: log.With().Str("component", "server").Logger()}
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.health)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/summary", s.summary)
		r.Get("/insights", s.insights)
		r.Get("/views", s.listViews)
		r.Get("/views/{name}", s.view)
		r.Get("/outliers", s.outliers)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Str("dataset_id", s.ds.ID()).Int("records", s.ds.Len()).Msg("API server listening")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info().Msg("shutting down API server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

func (s *Server) count(resource string, status int) {
	if s.metrics != nil {
		s.metrics.ViewRequests.WithLabelValues(resource, strconv.Itoa(status)).Inc()
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, resource string, e *APIError) {
	s.count(resource, e.StatusCode)
	if e.StatusCode >= http.StatusInternalServerError {
		s.log.Error().Str("resource", resource).Msg(e.Message)
	}
	_ = render.Render(w, r, e)
}

// scoped applies the start/end query parameters to the served snapshot.
func (s *Server) scoped(r *http.Request) (*analysis.Dataset, *APIError) {
	q := r.URL.Query()
	rng, err := analysis.ParseDateRange(q.Get("start"), q.Get("end"))
	if err != nil {
		if errors.Is(err, analysis.ErrInvertedRange) {
			return nil, toAPIError(err)
		}
		return nil, errBadRequest("invalid_date", err)
	}
	return analysis.Filter(s.ds, rng), nil
}

type healthResponse struct {
	Status    string `json:"status"`
	DatasetID string `json:"dataset_id"`
	Records   int    `json:"records"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, healthResponse{Status: "ok", DatasetID: s.ds.ID(), Records: s.ds.Len()})
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	ds, apiErr := s.scoped(r)
	if apiErr != nil {
		s.fail(w, r, "summary", apiErr)
		return
	}
	sum, err := analysis.Summarize(ds)
	if err != nil {
		s.fail(w, r, "summary", toAPIError(err))
		return
	}
	s.count("summary", http.StatusOK)
	render.JSON(w, r, sum)
}

func (s *Server) listViews(w http.ResponseWriter, r *http.Request) {
	s.count("views", http.StatusOK)
	render.JSON(w, r, analysis.ViewNames)
}

type viewResponse struct {
	Name      analysis.ViewName `json:"name"`
	DatasetID string            `json:"dataset_id"`
	Rows      analysis.View     `json:"rows"`
}

// view serves one aggregate. sort=sum orders sparse views by revenue and
// sort=key keeps their natural order; top=N keeps the first N rows, by revenue
// unless sort=key. The dense heatmap takes neither parameter.
func (s *Server) view(w http.ResponseWriter, r *http.Request) {
	ds, apiErr := s.scoped(r)
	if apiErr != nil {
		s.fail(w, r, "view", apiErr)
		return
	}
	v, err := analysis.Aggregate(chi.URLParam(r, "name"), ds)
	if err != nil {
		s.fail(w, r, "view", toAPIError(err))
		return
	}
	q := r.URL.Query()
	sortBy := q.Get("sort")
	if sortBy != "" && sortBy != "key" && sortBy != "sum" {
		s.fail(w, r, "view", errBadRequest("invalid_sort", errors.New("sort must be key or sum")))
		return
	}
	top := 0
	if raw := q.Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.fail(w, r, "view", errBadRequest("invalid_top", errors.New("top must be a non-negative integer")))
			return
		}
		top = n
	}
	if v.Name() == analysis.ViewTimeHeatmap && (q.Has("sort") || q.Has("top")) {
		s.fail(w, r, "view", errBadRequest("invalid_param", errors.New("time_heatmap is dense and does not support sort or top")))
		return
	}
	switch {
	case sortBy == "key":
		v = analysis.Head(v, top)
	case sortBy == "sum" || top > 0:
		v = analysis.TopBySum(v, top)
	}
	s.count("view", http.StatusOK)
	render.JSON(w, r, viewResponse{Name: v.Name(), DatasetID: ds.ID(), Rows: v})
}

func (s *Server) insights(w http.ResponseWriter, r *http.Request) {
	ds, apiErr := s.scoped(r)
	if apiErr != nil {
		s.fail(w, r, "insights", apiErr)
		return
	}
	s.count("insights", http.StatusOK)
	render.JSON(w, r, analysis.DeriveInsights(ds))
}

type outliersResponse struct {
	DatasetID string                   `json:"dataset_id"`
	Fields    []analysis.OutlierReport `json:"fields"`
}

func (s *Server) outliers(w http.ResponseWriter, r *http.Request) {
	ds, apiErr := s.scoped(r)
	if apiErr != nil {
		s.fail(w, r, "outliers", apiErr)
		return
	}
	s.count("outliers", http.StatusOK)
	render.JSON(w, r, outliersResponse{DatasetID: ds.ID(), Fields: analysis.DetectAllOutliers(ds)})
}
