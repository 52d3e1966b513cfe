// Package chi exposes the research pipeline over HTTP: agent queries,
// document listing, ingestion triggers, health and metrics.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"docsearch/internal/domain"
	"docsearch/internal/usecase/agent"
	healthuc "docsearch/internal/usecase/health"
	"docsearch/internal/usecase/ingest"
)

// Error codes returned in JSON error bodies.
const (
	CodeBadRequest        = "bad_request"
	CodeValidationFailed  = "validation_failed"
	CodeUnmappedDocument  = "unmapped_document"
	CodeUnknownStrategy   = "unknown_strategy"
	CodeGenerationFailed  = "generation_failed"
	CodeIngestUnavailable = "ingest_unavailable"
	CodeInternalError     = "internal_error"
)

// ErrorResponse is the uniform JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// QueryRouter dispatches an agent request to its strategy.
type QueryRouter interface {
	Route(ctx context.Context, req agent.Request) (domain.Result, error)
}

// DocumentLister enumerates ingestable source documents.
type DocumentLister interface {
	ListDocuments(ctx context.Context) ([]ingest.DocumentRef, error)
	Documents() []string
}

// IngestStarter launches an ingestion run and returns its workflow ID.
// Nil when no orchestrator is configured; the endpoint then returns 503.
type IngestStarter interface {
	StartIngest(ctx context.Context, pdfKeys []string) (string, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API server.
type Server struct {
	router        QueryRouter
	documents     DocumentLister
	ingest        IngestStarter
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. ingest may be nil when the
// orchestrator is not configured.
func NewServer(
	router QueryRouter,
	documents DocumentLister,
	ingestStarter IngestStarter,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		router:    router,
		documents: documents,
		ingest:    ingestStarter,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnmappedDocument, http.StatusBadRequest, CodeUnmappedDocument),
		sentinelHandler(domain.ErrUnknownStrategy, http.StatusBadRequest, CodeUnknownStrategy),
		sentinelHandler(domain.ErrGeneration, http.StatusBadGateway, CodeGenerationFailed),
	}
	return s
}

// Routes mounts all API handlers on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/agents/query", s.AgentQuery)
	r.Get("/documents", s.ListDocuments)
	r.Post("/ingest", s.TriggerIngest)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// AgentQueryRequest is the body of POST /agents/query.
type AgentQueryRequest struct {
	Document string `json:"document,omitempty"`
	Query    string `json:"query"`
	Strategy string `json:"strategy"`
}

// AgentQuery handles POST /agents/query.
func (s *Server) AgentQuery(w http.ResponseWriter, r *http.Request) {
	var req AgentQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "Query is required")
		return
	}
	if req.Strategy == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "Strategy is required")
		return
	}
	if req.Strategy == string(domain.StrategyGrounded) && req.Document == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			"Document is required for the grounded strategy")
		return
	}

	result, err := s.router.Route(r.Context(), agent.Request{
		Document: req.Document,
		Query:    req.Query,
		Strategy: domain.Strategy(req.Strategy),
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// DocumentListResponse is the body of GET /documents.
type DocumentListResponse struct {
	Sources   []ingest.DocumentRef `json:"sources"`
	Queryable []string             `json:"queryable"`
}

// ListDocuments handles GET /documents: discovered source PDFs plus the
// documents the grounded strategy can currently answer about.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	refs, err := s.documents.ListDocuments(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DocumentListResponse{
		Sources:   refs,
		Queryable: s.documents.Documents(),
	})
}

// TriggerIngestRequest is the body of POST /ingest.
type TriggerIngestRequest struct {
	PDFKeys []string `json:"pdf_keys,omitempty"`
}

// TriggerIngestResponse is the body of POST /ingest.
type TriggerIngestResponse struct {
	WorkflowID string `json:"workflow_id"`
}

// TriggerIngest handles POST /ingest. The run executes asynchronously;
// the response carries the workflow ID for progress queries.
func (s *Server) TriggerIngest(w http.ResponseWriter, r *http.Request) {
	if s.ingest == nil {
		writeError(w, http.StatusServiceUnavailable, CodeIngestUnavailable,
			"ingestion orchestrator is not configured")
		return
	}

	var req TriggerIngestRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	workflowID, err := s.ingest.StartIngest(r.Context(), req.PDFKeys)
	if err != nil {
		s.logger.Error("Failed to start ingestion", zap.Error(err))
		writeError(w, http.StatusBadGateway, CodeIngestUnavailable, "failed to start ingestion run")
		return
	}

	writeJSON(w, http.StatusAccepted, TriggerIngestResponse{WorkflowID: workflowID})
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Indexes int               `json:"indexes"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Indexes: report.Indexes,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrUnmappedDocument,
		domain.ErrUnknownStrategy,
		domain.ErrGeneration,
		domain.ErrConversion,
		domain.ErrMissingContext,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
