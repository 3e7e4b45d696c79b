// Package server exposes simulations over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/iwvelando/selic-window/internal/accrual"
	"github.com/iwvelando/selic-window/internal/simulation"
	"github.com/iwvelando/selic-window/internal/window"
	"github.com/iwvelando/selic-window/pkg/constants"
	"github.com/iwvelando/selic-window/pkg/datetime"
	"github.com/iwvelando/selic-window/pkg/output"
	"github.com/iwvelando/selic-window/pkg/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Runner executes one simulation.
type Runner interface {
	Run(ctx context.Context, params simulation.Parameters) (simulation.Result, error)
}

type handler struct {
	logger         *zap.Logger
	runner         Runner
	maxRequestSize int64
	version        string
}

// NewHandler constructs the HTTP handler that serves the simulation API.
func NewHandler(logger *zap.Logger, runner Runner, maxRequestSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxRequestSize <= 0 {
		maxRequestSize = constants.DefaultMaxRequestSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, runner: runner, maxRequestSize: maxRequestSize, version: trimmedVersion}
	return h.routes()
}

func (h *handler) routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/version", h.handleVersion).Methods(http.MethodGet)
	api.HandleFunc("/simulations", h.handleSimulation).Methods(http.MethodPost)

	return r
}

type simulationRequest struct {
	StartDate        string          `json:"startDate"`
	EndDate          string          `json:"endDate"`
	InitialCapital   decimal.Decimal `json:"initialCapital"`
	Frequency        string          `json:"frequency"`
	WindowLengthDays int             `json:"windowLengthDays"`
}

type simulationResponse struct {
	Parameters simulation.Parameters `json:"parameters"`
	RateCount  int                   `json:"rateCount"`
	Summary    accrual.Summary       `json:"summary"`
	Snapshots  []accrual.Snapshot    `json:"snapshots"`
	Window     *window.Window        `json:"window"`
	CSV        string                `json:"csv"`
	Message    string                `json:"message,omitempty"`
	Warnings   []string              `json:"warnings,omitempty"`
	Duration   string                `json:"duration"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleSimulation(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSimulation"
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)
	var req simulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxRequestSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), op)
		return
	}

	params, err := req.parameters()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	pv := validation.PeriodValidator{
		StartDate:        params.StartDate,
		EndDate:          params.EndDate,
		WindowLengthDays: params.WindowLengthDays,
	}
	warnings := pv.ValidateAll()

	result, err := h.runner.Run(r.Context(), params)
	status := http.StatusOK
	message := ""
	switch {
	case err == nil:
	case errors.Is(err, window.ErrNoWindowFound):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	case errors.Is(err, simulation.ErrSourceUnavailable), errors.Is(err, accrual.ErrMissingData):
		h.respondErrorWithOp(w, http.StatusBadGateway, err.Error(), op)
		return
	default:
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to run simulation: %v", err), op)
		return
	}

	csvData, err := output.CsvString(result)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to render CSV: %v", err), op)
		return
	}

	h.writeJSON(w, status, simulationResponse{
		Parameters: result.Parameters,
		RateCount:  result.RateCount,
		Summary:    result.Summary,
		Snapshots:  result.Snapshots,
		Window:     result.Window,
		CSV:        csvData,
		Message:    message,
		Warnings:   warnings,
		Duration:   time.Since(start).String(),
	})
}

func (req simulationRequest) parameters() (simulation.Parameters, error) {
	startDate, err := datetime.ParseDate(req.StartDate)
	if err != nil {
		return simulation.Parameters{}, fmt.Errorf("%w: startDate: %v", simulation.ErrInvalidParameters, err)
	}
	endDate, err := datetime.ParseDate(req.EndDate)
	if err != nil {
		return simulation.Parameters{}, fmt.Errorf("%w: endDate: %v", simulation.ErrInvalidParameters, err)
	}

	frequency := accrual.Day
	if strings.TrimSpace(req.Frequency) != "" {
		frequency, err = accrual.ParseFrequency(req.Frequency)
		if err != nil {
			return simulation.Parameters{}, fmt.Errorf("%w: %v", simulation.ErrInvalidParameters, err)
		}
	}

	return simulation.NewParameters(startDate, endDate, req.InitialCapital, frequency, req.WindowLengthDays)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("simulation request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

// Server runs the HTTP API until its context is cancelled.
type Server struct {
	logger *zap.Logger
	config *Config
	http   *http.Server
}

// NewServer wires the handler into an http.Server using cfg.
func NewServer(logger *zap.Logger, cfg *Config, runner Runner, version string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		logger: logger,
		config: cfg,
		http: &http.Server{
			Addr:         cfg.Address,
			Handler:      NewHandler(logger, runner, cfg.RequestSizeBytes(), version),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server",
			zap.String("op", "server.Run"),
			zap.String("address", s.config.Address),
		)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down HTTP server", zap.String("op", "server.Run"))
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
