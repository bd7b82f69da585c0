package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/wheat-yield-etl/internal/domain"
	"github.com/couchcryptid/wheat-yield-etl/internal/prediction"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 1 << 20

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Predictor produces a yield prediction and reports its readiness.
type Predictor interface {
	ReadinessChecker
	Predict(ctx context.Context, f domain.YieldFeatures) (float64, error)
}

// Server exposes the prediction endpoint plus health, readiness, and metrics.
type Server struct {
	httpServer *http.Server
	predictor  Predictor
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /predict, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, predictor Predictor, logger *slog.Logger) *Server {
	router := mux.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		predictor: predictor,
		logger:    logger,
	}

	router.HandleFunc("/predict", s.handlePredict).Methods(http.MethodPost)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/readyz", handleReady(predictor)).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// predictRequest mirrors the public JSON contract. Pointers distinguish a
// missing field from an explicit zero.
type predictRequest struct {
	N                *float64  `json:"N"`
	P                *float64  `json:"P"`
	K                *float64  `json:"K"`
	Temperatura      *float64  `json:"temperatura"`
	Opady            *float64  `json:"opady"`
	KlasterFinansowy *wholeInt `json:"klaster_finansowy"`
	KlasterPogodowy  *wholeInt `json:"klaster_pogodowy"`
}

// wholeInt accepts JSON integers and whole-valued numbers such as 2.0.
type wholeInt int

func (n *wholeInt) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("cluster must be a number: %w", err)
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return fmt.Errorf("cluster must be a whole number, got %s", b)
	}
	*n = wholeInt(f)
	return nil
}

type predictResponse struct {
	PrzewidywanyPlon float64 `json:"przewidywany_plon"`
}

func (r predictRequest) features() (domain.YieldFeatures, error) {
	var missing []string
	check := func(name string, present bool) {
		if !present {
			missing = append(missing, name)
		}
	}
	check("N", r.N != nil)
	check("P", r.P != nil)
	check("K", r.K != nil)
	check("temperatura", r.Temperatura != nil)
	check("opady", r.Opady != nil)
	check("klaster_finansowy", r.KlasterFinansowy != nil)
	check("klaster_pogodowy", r.KlasterPogodowy != nil)
	if len(missing) > 0 {
		return domain.YieldFeatures{}, fmt.Errorf("missing fields: %s", strings.Join(missing, ", "))
	}
	return domain.YieldFeatures{
		Nitrogen:         *r.N,
		Phosphorus:       *r.P,
		Potassium:        *r.K,
		Temperature:      *r.Temperatura,
		Precipitation:    *r.Opady,
		FinancialCluster: int(*r.KlasterFinansowy),
		WeatherCluster:   int(*r.KlasterPogodowy),
	}, nil
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("decode request: %w", err))
		return
	}
	features, err := req.features()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	yield, err := s.predictor.Predict(r.Context(), features)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, predictResponse{PrzewidywanyPlon: yield})
	case errors.Is(err, prediction.ErrInvalidFeatures):
		writeError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, prediction.ErrModelNotLoaded):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		s.logger.Error("prediction failed", "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("prediction failed"))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
