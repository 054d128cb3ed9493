package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"pgboss-console/internal/config"
	"pgboss-console/internal/connections"
	"pgboss-console/internal/models"
	"pgboss-console/internal/ratelimit"
	"pgboss-console/internal/schema"
	"pgboss-console/internal/service"
	"pgboss-console/internal/store"
	"pgboss-console/internal/telemetry"
)

type mutationFunc func(ctx context.Context, db store.Querier, adapter schema.Adapter, jobID uuid.UUID) error
type bulkFunc func(ctx context.Context, db store.Querier, adapter schema.Adapter, ids []uuid.UUID) int
type queueWideFunc func(ctx context.Context, db store.Querier, adapter schema.Adapter, queue string) (int, error)

// Server wires HTTP handlers for the console API.
type Server struct {
	cfg      config.Config
	profiles *connections.ProfileStore
	manager  *connections.Manager
	registry *schema.Registry
	limiter  *ratelimit.TokenBucket
}

// New constructs the API server.
func New(cfg config.Config, profiles *connections.ProfileStore, manager *connections.Manager, registry *schema.Registry, limiter *ratelimit.TokenBucket) *Server {
	return &Server{
		cfg:      cfg,
		profiles: profiles,
		manager:  manager,
		registry: registry,
		limiter:  limiter,
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/metrics", telemetry.Handler())

	r.Route("/connections", func(r chi.Router) {
		r.Get("/", s.handleListConnections)
		r.Post("/", s.handleCreateConnection)

		r.Route("/{connID}", func(r chi.Router) {
			r.Get("/", s.handleGetConnection)
			r.Put("/", s.handleUpdateConnection)
			r.Delete("/", s.handleDeleteConnection)
			r.Post("/probe", s.handleProbeConnection)
			r.Get("/schema-version", s.handleSchemaVersion)

			r.Get("/queues", s.handleListQueues)
			r.Get("/schedules", s.handleListSchedules)

			r.Route("/queues/{queue}", func(r chi.Router) {
				r.Get("/jobs", s.handleListJobs)
				r.Get("/status", s.handleQueueStatus)
				r.Get("/stats", s.handleDashboardStats)
				r.Get("/throughput", s.handleThroughput)

				r.Post("/retry-failed", s.handleRetryAllFailed)
				r.Post("/cancel-pending", s.handleCancelAllPending)
				r.Post("/purge-completed", s.handlePurgeCompleted)
				r.Post("/purge-failed", s.handlePurgeFailed)
			})

			r.Post("/jobs/retry", s.handleBulkRetry)
			r.Post("/jobs/cancel", s.handleBulkCancel)
			r.Post("/jobs/delete", s.handleBulkDelete)
			r.Post("/jobs/{jobID}/retry", s.handleRetryJob)
			r.Post("/jobs/{jobID}/cancel", s.handleCancelJob)
			r.Delete("/jobs/{jobID}", s.handleDeleteJob)
		})
	})

	return r
}

// --- connection profiles ---

func (s *Server) handleListConnections(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.profiles.List(r.Context())
	if err != nil {
		http.Error(w, "failed to list connections", http.StatusInternalServerError)
		return
	}
	out := make([]connections.Profile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.Redacted())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateConnection(w http.ResponseWriter, r *http.Request) {
	var p connections.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Schema == "" {
		p.Schema = s.cfg.DefaultSchema
	}
	if !schema.IsValidSchemaName(p.Schema) {
		http.Error(w, "invalid schema name", http.StatusBadRequest)
		return
	}
	if err := s.profiles.Save(r.Context(), p); err != nil {
		http.Error(w, "failed to save connection", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, p.Redacted())
}

func (s *Server) handleGetConnection(w http.ResponseWriter, r *http.Request) {
	p, ok := s.profileFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.Redacted())
}

func (s *Server) handleUpdateConnection(w http.ResponseWriter, r *http.Request) {
	existing, ok := s.profileFromRequest(w, r)
	if !ok {
		return
	}
	var p connections.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	p.ID = existing.ID
	if p.Schema == "" {
		p.Schema = s.cfg.DefaultSchema
	}
	if !schema.IsValidSchemaName(p.Schema) {
		http.Error(w, "invalid schema name", http.StatusBadRequest)
		return
	}
	// Changed parameters may point at a different server or schema, so
	// the pool and any detected version are stale.
	if err := s.profiles.Save(r.Context(), p); err != nil {
		http.Error(w, "failed to save connection", http.StatusInternalServerError)
		return
	}
	s.manager.Invalidate(p.ID)
	s.registry.InvalidateConnection(p.ID.String())
	writeJSON(w, http.StatusOK, p.Redacted())
}

func (s *Server) handleDeleteConnection(w http.ResponseWriter, r *http.Request) {
	p, ok := s.profileFromRequest(w, r)
	if !ok {
		return
	}
	if err := s.profiles.Delete(r.Context(), p.ID); err != nil {
		http.Error(w, "failed to delete connection", http.StatusInternalServerError)
		return
	}
	s.manager.Invalidate(p.ID)
	s.registry.InvalidateConnection(p.ID.String())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProbeConnection(w http.ResponseWriter, r *http.Request) {
	p, ok := s.profileFromRequest(w, r)
	if !ok {
		return
	}
	if err := s.manager.Probe(r.Context(), p); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"status": "failed", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSchemaVersion(w http.ResponseWriter, r *http.Request) {
	p, adapter, _, ok := s.resolveAdapter(w, r)
	if !ok {
		return
	}
	version, _ := s.registry.DetectedVersion(p.ID.String(), p.Schema)
	writeJSON(w, http.StatusOK, map[string]any{
		"version":       int(version),
		"adapter_group": string(adapter.Group()),
		"schema":        p.Schema,
	})
}

// --- queues, jobs, schedules ---

func (s *Server) handleListQueues(w http.ResponseWriter, r *http.Request) {
	_, adapter, db, ok := s.resolveAdapter(w, r)
	if !ok {
		return
	}
	queues, err := service.FetchQueues(r.Context(), db, adapter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"queues": queues})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	_, adapter, db, ok := s.resolveAdapter(w, r)
	if !ok {
		return
	}
	queue := chi.URLParam(r, "queue")

	q := service.JobQuery{Queue: queue}
	params := r.URL.Query()

	if raw := params.Get("state"); raw != "" {
		state := models.JobState(raw)
		if !state.Valid() {
			http.Error(w, "invalid state filter", http.StatusBadRequest)
			return
		}
		q.State = &state
	}
	if raw := params.Get("q"); raw != "" {
		q.SearchText = raw
		q.SearchField = models.SearchByID
		if f := params.Get("search_field"); f != "" {
			field := models.JobSearchField(f)
			if !field.Valid() {
				http.Error(w, "invalid search field", http.StatusBadRequest)
				return
			}
			q.SearchField = field
		}
	}

	q.SortBy = models.SortByCreatedOn
	if raw := params.Get("sort"); raw != "" {
		field := models.JobSortField(raw)
		if !field.Valid() {
			http.Error(w, "invalid sort field", http.StatusBadRequest)
			return
		}
		q.SortBy = field
	}
	q.Order = models.SortDesc
	if raw := params.Get("order"); raw != "" {
		order := models.SortOrder(raw)
		if !order.Valid() {
			http.Error(w, "invalid sort order", http.StatusBadRequest)
			return
		}
		q.Order = order
	}

	pageSize := intParam(params.Get("page_size"), s.cfg.DefaultPageSize)
	if pageSize < 1 {
		pageSize = s.cfg.DefaultPageSize
	}
	if pageSize > s.cfg.MaxPageSize {
		pageSize = s.cfg.MaxPageSize
	}
	page := intParam(params.Get("page"), 0)

	q.Limit = pageSize
	q.Offset = page * pageSize

	jobs, total, err := service.FetchJobs(r.Context(), db, adapter, q)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// The total may have shrunk since the client paged forward; snap back
	// to the last valid page instead of serving an empty one.
	if clamped := service.ClampPage(total, pageSize, page); clamped != page {
		page = clamped
		q.Offset = page * pageSize
		jobs, total, err = service.FetchJobs(r.Context(), db, adapter, q)
		if err != nil {
			writeServiceError(w, err)
			return
		}
	}

	if jobs == nil {
		jobs = []models.Job{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"jobs":        jobs,
		"total_count": total,
		"page":        page,
		"page_size":   pageSize,
	})
}

func (s *Server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	_, adapter, db, ok := s.resolveAdapter(w, r)
	if !ok {
		return
	}
	schedules, err := service.FetchSchedules(r.Context(), db, adapter, time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"schedules": schedules})
}

// --- dashboard ---

func (s *Server) handleQueueStatus(w http.ResponseWriter, r *http.Request) {
	_, adapter, db, ok := s.resolveAdapter(w, r)
	if !ok {
		return
	}
	status, err := service.FetchQueueStatus(r.Context(), db, adapter, chi.URLParam(r, "queue"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	_, adapter, db, ok := s.resolveAdapter(w, r)
	if !ok {
		return
	}
	timeRange, ok := timeRangeParam(w, r)
	if !ok {
		return
	}
	stats, err := service.FetchDashboardStats(r.Context(), db, adapter, chi.URLParam(r, "queue"), timeRange, time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":        stats,
		"failure_rate": stats.FailureRate(),
	})
}

func (s *Server) handleThroughput(w http.ResponseWriter, r *http.Request) {
	_, adapter, db, ok := s.resolveAdapter(w, r)
	if !ok {
		return
	}
	timeRange, ok := timeRangeParam(w, r)
	if !ok {
		return
	}
	points, err := service.FetchThroughput(r.Context(), db, adapter, chi.URLParam(r, "queue"), timeRange, time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"points": points})
}

// --- job mutations ---

func (s *Server) handleRetryJob(w http.ResponseWriter, r *http.Request) {
	s.handleJobMutation(w, r, service.RetryJob)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	s.handleJobMutation(w, r, service.CancelJob)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	s.handleJobMutation(w, r, service.DeleteJob)
}

func (s *Server) handleJobMutation(w http.ResponseWriter, r *http.Request, mutate mutationFunc) {
	p, adapter, db, ok := s.resolveAdapter(w, r)
	if !ok {
		return
	}
	if !s.allowMutation(w, r, p.ID) {
		return
	}
	jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		http.Error(w, "invalid job id", http.StatusBadRequest)
		return
	}
	if err := mutate(r.Context(), db, adapter, jobID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type bulkRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleBulkRetry(w http.ResponseWriter, r *http.Request) {
	s.handleBulk(w, r, service.RetryJobs)
}

func (s *Server) handleBulkCancel(w http.ResponseWriter, r *http.Request) {
	s.handleBulk(w, r, service.CancelJobs)
}

func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	s.handleBulk(w, r, service.DeleteJobs)
}

func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request, mutate bulkFunc) {
	p, adapter, db, ok := s.resolveAdapter(w, r)
	if !ok {
		return
	}
	if !s.allowMutation(w, r, p.ID) {
		return
	}
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if len(req.IDs) == 0 {
		http.Error(w, "ids is required", http.StatusBadRequest)
		return
	}
	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid job id: "+raw, http.StatusBadRequest)
			return
		}
		ids = append(ids, id)
	}
	succeeded := mutate(r.Context(), db, adapter, ids)
	writeJSON(w, http.StatusOK, map[string]int{
		"requested": len(ids),
		"succeeded": succeeded,
	})
}

// --- queue-wide operations ---

func (s *Server) handleRetryAllFailed(w http.ResponseWriter, r *http.Request) {
	s.handleQueueWide(w, r, service.RetryAllFailed)
}

func (s *Server) handleCancelAllPending(w http.ResponseWriter, r *http.Request) {
	s.handleQueueWide(w, r, service.CancelAllPending)
}

func (s *Server) handlePurgeCompleted(w http.ResponseWriter, r *http.Request) {
	s.handleQueueWide(w, r, service.PurgeCompleted)
}

func (s *Server) handlePurgeFailed(w http.ResponseWriter, r *http.Request) {
	s.handleQueueWide(w, r, service.PurgeFailed)
}

func (s *Server) handleQueueWide(w http.ResponseWriter, r *http.Request, op queueWideFunc) {
	p, adapter, db, ok := s.resolveAdapter(w, r)
	if !ok {
		return
	}
	if !s.allowMutation(w, r, p.ID) {
		return
	}
	affected, err := op(r.Context(), db, adapter, chi.URLParam(r, "queue"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"affected": affected})
}

// --- helpers ---

func (s *Server) profileFromRequest(w http.ResponseWriter, r *http.Request) (connections.Profile, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "connID"))
	if err != nil {
		http.Error(w, "invalid connection id", http.StatusBadRequest)
		return connections.Profile{}, false
	}
	p, err := s.profiles.Get(r.Context(), id)
	if errors.Is(err, connections.ErrProfileNotFound) {
		http.Error(w, "connection not found", http.StatusNotFound)
		return connections.Profile{}, false
	}
	if err != nil {
		http.Error(w, "failed to load connection", http.StatusInternalServerError)
		return connections.Profile{}, false
	}
	return p, true
}

// resolveAdapter loads the profile, its pool and the schema adapter for
// the request, writing the error response itself on failure.
func (s *Server) resolveAdapter(w http.ResponseWriter, r *http.Request) (connections.Profile, schema.Adapter, store.Querier, bool) {
	p, ok := s.profileFromRequest(w, r)
	if !ok {
		return connections.Profile{}, nil, nil, false
	}
	pool, err := s.manager.Pool(r.Context(), p)
	if err != nil {
		log.WithField("connection", p.ID).WithError(err).Warn("pool creation failed")
		http.Error(w, "failed to connect to database", http.StatusBadGateway)
		return connections.Profile{}, nil, nil, false
	}
	adapter, err := s.registry.Adapter(r.Context(), pool, p.ID.String(), p.Schema)
	if err != nil {
		writeDetectionError(w, err)
		return connections.Profile{}, nil, nil, false
	}
	return p, adapter, pool, true
}

func (s *Server) allowMutation(w http.ResponseWriter, r *http.Request, connID uuid.UUID) bool {
	if s.limiter == nil {
		return true
	}
	allowed, _, err := s.limiter.Allow(r.Context(), connID.String())
	if err != nil {
		http.Error(w, "rate limit error", http.StatusInternalServerError)
		return false
	}
	if !allowed {
		telemetry.RateLimitRejects.Inc()
		http.Error(w, "rate limited", http.StatusTooManyRequests)
		return false
	}
	return true
}

func timeRangeParam(w http.ResponseWriter, r *http.Request) (models.TimeRange, bool) {
	timeRange := models.RangeTwentyFourHour
	if raw := r.URL.Query().Get("range"); raw != "" {
		timeRange = models.TimeRange(raw)
		if !timeRange.Valid() {
			http.Error(w, "invalid time range", http.StatusBadRequest)
			return "", false
		}
	}
	return timeRange, true
}

func intParam(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// writeDetectionError maps schema detection failures onto status codes:
// caller mistakes are 4xx, unreachable or unusable databases are 502.
func writeDetectionError(w http.ResponseWriter, err error) {
	var invalidName *schema.InvalidSchemaNameError
	var unsupported *schema.UnsupportedVersionError
	var connErr *schema.ConnectionError
	switch {
	case errors.As(err, &invalidName):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &unsupported),
		errors.Is(err, schema.ErrVersionTableNotFound),
		errors.Is(err, schema.ErrNoVersionFound):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &connErr):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrConnectionFailed):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
