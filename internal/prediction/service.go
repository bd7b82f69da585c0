// Package prediction serves wheat-yield predictions from a loaded model.
package prediction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/couchcryptid/wheat-yield-etl/internal/domain"
	"github.com/couchcryptid/wheat-yield-etl/internal/model"
	"github.com/couchcryptid/wheat-yield-etl/internal/observability"
)

var (
	// ErrModelNotLoaded is returned until a model has been loaded.
	ErrModelNotLoaded = errors.New("model not loaded")
	// ErrInvalidFeatures is returned for non-finite inputs.
	ErrInvalidFeatures = errors.New("invalid features")
)

// Predictor maps a feature vector to a yield in dt/ha.
type Predictor interface {
	Predict(x []float64) (float64, error)
}

// Service wraps a Predictor with validation, logging and metrics.
type Service struct {
	mu      sync.RWMutex
	model   Predictor
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewService creates a Service with no model loaded.
func NewService(logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{logger: logger, metrics: metrics}
}

// LoadModel reads a forest from path and makes it the active model.
func (s *Service) LoadModel(path string) error {
	f, err := model.Load(path)
	if err != nil {
		return err
	}
	s.SetModel(f)
	s.logger.Info("model loaded", "path", path, "trees", len(f.Trees), "features", f.NFeatures)
	return nil
}

// SetModel replaces the active model.
func (s *Service) SetModel(p Predictor) {
	s.mu.Lock()
	s.model = p
	s.mu.Unlock()
	if p != nil {
		s.metrics.ModelLoaded.Set(1)
	} else {
		s.metrics.ModelLoaded.Set(0)
	}
}

// CheckReadiness reports ErrModelNotLoaded until a model is set.
func (s *Service) CheckReadiness(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.model == nil {
		return ErrModelNotLoaded
	}
	return nil
}

// Predict returns the predicted yield for f.
func (s *Service) Predict(ctx context.Context, f domain.YieldFeatures) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	m := s.model
	s.mu.RUnlock()
	if m == nil {
		s.metrics.Predictions.WithLabelValues("error").Inc()
		return 0, ErrModelNotLoaded
	}

	x := f.Vector()
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			s.metrics.Predictions.WithLabelValues("invalid").Inc()
			return 0, ErrInvalidFeatures
		}
	}

	start := time.Now()
	y, err := m.Predict(x)
	s.metrics.PredictionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.Predictions.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("predict: %w", err)
	}
	s.metrics.Predictions.WithLabelValues("success").Inc()
	s.logger.Debug("prediction", "features", x, "yield", y)
	return y, nil
}
