package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"maps"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/collector"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/config"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/dispatch"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/logger"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/params"
)

//go:embed templates/index.html
var indexTemplate string

var indexTmpl = template.Must(template.New("index").Parse(indexTemplate))

// HTTP server timeout constants
const (
	DefaultReadTimeout  = 15 * time.Second // Maximum duration for reading the entire request
	DefaultWriteTimeout = 30 * time.Second // Write deadline for everything except POST /execute
	DefaultIdleTimeout  = 60 * time.Second // Maximum amount of time to wait for the next request

	// ResponseWriteSlack is added to a batch budget to leave time for encoding the response
	ResponseWriteSlack = 10 * time.Second

	// MaxRequestBodyBytes caps the size of a POST /execute body
	MaxRequestBodyBytes = 10 << 20
)

// ReadinessCheck reports whether the server can dispatch batches
type ReadinessCheck func(ctx context.Context) error

// Option configures a Server
type Option func(*Server)

// WithReadinessCheck makes /ready and the index page status depend on check
func WithReadinessCheck(check ReadinessCheck) Option {
	return func(s *Server) {
		s.readiness = check
	}
}

// Executor runs one batch through the dispatch loop
type Executor interface {
	Execute(ctx context.Context, inv dispatch.Invocation) ([][]dispatch.Record, error)
	NodeName() string
}

// executeRequest is the body of POST /execute
type executeRequest struct {
	Items          []params.Item  `json:"items"`
	Parameters     map[string]any `json:"parameters"`
	ContinueOnFail *bool          `json:"continue_on_fail"`
}

// errorResponse is returned when a batch cannot be dispatched or is aborted
type errorResponse struct {
	Error       string `json:"error"`
	Node        string `json:"node,omitempty"`
	ItemIndex   *int   `json:"item_index,omitempty"`
	ExecutionID string `json:"execution_id,omitempty"`
}

// indexPageData holds template data for the index page
type indexPageData struct {
	StatusClass     string
	StatusText      string
	NodeName        string
	Region          string
	ContinueOnFail  bool
	BatchCount      int
	LastBatch       string
	LastBatchItems  int
	LastBatchResult string
}

// Server represents the HTTP server
type Server struct {
	server    *http.Server
	executor  Executor
	collector *collector.DispatchCollector
	readiness ReadinessCheck
	cfg       *config.Config
	logger    *logger.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, executor Executor, collector *collector.DispatchCollector, log *logger.Logger, opts ...Option) *Server {
	mux := http.NewServeMux()

	s := &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler:      mux,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			IdleTimeout:  DefaultIdleTimeout,
		},
		executor:  executor,
		collector: collector,
		cfg:       cfg,
		logger:    log,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Register handlers
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/execute", s.handleExecute)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "address", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// handleExecute dispatches the posted batch and returns the output streams
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		s.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	if s.executor == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "cost explorer client not initialised"})
		return
	}

	var req executeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	// Request parameters override the configured node parameters
	values := maps.Clone(s.cfg.Node.Parameters)
	if values == nil {
		values = map[string]any{}
	}
	maps.Copy(values, req.Parameters)

	resolver, err := params.NewResolver(params.CostExplorerSchema, values, req.Items)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	continueOnFail := s.cfg.Node.ContinueOnFail
	if req.ContinueOnFail != nil {
		continueOnFail = *req.ContinueOnFail
	}

	// Each item may take up to the API timeout, so the write deadline grows with the batch
	budget := s.batchBudget(resolver.Len())
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Now().Add(budget + ResponseWriteSlack)); err != nil {
		s.logger.Debug("Write deadline not supported by response writer", "error", err)
	}

	ctx, cancel := context.WithTimeout(r.Context(), budget)
	defer cancel()

	out, err := s.executor.Execute(ctx, dispatch.Invocation{
		ItemCount:      resolver.Len(),
		Params:         resolver,
		ContinueOnFail: continueOnFail,
	})
	if err != nil {
		var nodeErr *dispatch.NodeError
		if errors.As(err, &nodeErr) {
			s.writeJSON(w, http.StatusBadGateway, errorResponse{
				Error:       nodeErr.Error(),
				Node:        nodeErr.Node,
				ItemIndex:   &nodeErr.ItemIndex,
				ExecutionID: nodeErr.ExecutionID,
			})
			return
		}
		s.logger.Error("Batch dispatch failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	s.writeJSON(w, http.StatusOK, out)
}

// batchBudget returns how long a batch of items may dispatch
func (s *Server) batchBudget(items int) time.Duration {
	perItem := time.Duration(s.cfg.APITimeout) * time.Second
	if perItem <= 0 {
		perItem = time.Duration(config.DefaultAPITimeout) * time.Second
	}
	return time.Duration(max(items, 1)) * perItem
}

// ready runs the readiness check, if any
func (s *Server) ready(ctx context.Context) error {
	if s.executor == nil {
		return errors.New("cost explorer client not initialised")
	}
	if s.readiness == nil {
		return nil
	}
	return s.readiness(ctx)
}

// handleIndex serves a simple landing page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	statusClass := "ready"
	statusText := "Ready"
	if err := s.ready(r.Context()); err != nil {
		statusClass = "not-ready"
		statusText = "Not Ready: " + err.Error()
	}

	nodeName := s.cfg.Node.Name
	if s.executor != nil {
		nodeName = s.executor.NodeName()
	}

	data := indexPageData{
		StatusClass:     statusClass,
		StatusText:      statusText,
		NodeName:        nodeName,
		Region:          s.cfg.Credentials.Region,
		ContinueOnFail:  s.cfg.Node.ContinueOnFail,
		LastBatch:       "Never",
		LastBatchResult: "-",
	}

	if s.collector != nil {
		data.BatchCount = s.collector.BatchCount()
		data.LastBatchItems = s.collector.LastItemCount()
		if last := s.collector.LastBatchTime(); !last.IsZero() {
			data.LastBatch = last.Format("2006-01-02 15:04:05 MST")
			data.LastBatchResult = collector.BatchCompleted
			if err := s.collector.LastError(); err != nil {
				data.LastBatchResult = collector.BatchAborted + ": " + err.Error()
			}
		}
	}

	w.Header().Set("Content-Type", "text/html")
	if err := indexTmpl.Execute(w, data); err != nil {
		s.logger.Error("Failed to execute index template", "error", err)
	}
}

// handleHealth handles health check requests (always returns 200 for liveness)
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`{"status":"healthy"}`)); err != nil {
		s.logger.Error("Failed to write health response", "error", err)
	}
}

// handleReady handles readiness check requests (returns 200 once AWS credentials resolve)
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.ready(r.Context()); err != nil {
		s.logger.Warn("Readiness check failed", "error", err)
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "not ready",
			"message": err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`{"status":"ready"}`)); err != nil {
		s.logger.Error("Failed to write ready response", "error", err)
	}
}

// writeJSON writes v as a JSON response with the given status
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to write JSON response", "status", status, "error", err)
	}
}
