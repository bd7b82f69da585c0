package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/wheat-yield-etl/internal/domain"
	"github.com/couchcryptid/wheat-yield-etl/internal/observability"
)

// Extractor produces the output tables of one dataset.
type Extractor interface {
	Name() string
	Extract(ctx context.Context) ([]*domain.Table, error)
}

// Loader writes a table to one destination, replacing any previous copy.
type Loader interface {
	Name() string
	Load(ctx context.Context, table *domain.Table) error
}

// Summary describes a completed run.
type Summary struct {
	RunID    string
	Pipeline string
	Tables   map[string]int // table name → rows
	Duration time.Duration
}

// Pipeline runs one extractor and hands every table to every loader.
type Pipeline struct {
	extractor Extractor
	loaders   []Loader
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, loaders []Loader, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor: e,
		loaders:   loaders,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run extracts once and loads the result. Any loader failure aborts the run;
// nothing is retried.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	name := p.extractor.Name()
	summary := Summary{RunID: uuid.NewString(), Pipeline: name, Tables: map[string]int{}}
	logger := p.logger.With("run_id", summary.RunID, "pipeline", name)

	logger.Info("pipeline started", "loaders", len(p.loaders))
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	err := p.run(ctx, logger, &summary)
	summary.Duration = time.Since(start)
	p.metrics.PipelineDuration.WithLabelValues(name).Observe(summary.Duration.Seconds())

	if err != nil {
		p.metrics.PipelineRuns.WithLabelValues(name, "error").Inc()
		logger.Error("pipeline failed", "error", err, "duration", summary.Duration)
		return summary, err
	}
	p.metrics.PipelineRuns.WithLabelValues(name, "success").Inc()
	logger.Info("pipeline finished", "tables", len(summary.Tables), "duration", summary.Duration)
	return summary, nil
}

func (p *Pipeline) run(ctx context.Context, logger *slog.Logger, summary *Summary) error {
	tables, err := p.extractor.Extract(ctx)
	if err != nil {
		return fmt.Errorf("extract %s: %w", summary.Pipeline, err)
	}

	for _, t := range tables {
		p.metrics.RowsExtracted.WithLabelValues(t.Name).Add(float64(t.Len()))
		summary.Tables[t.Name] = t.Len()

		for _, l := range p.loaders {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := l.Load(ctx, t); err != nil {
				p.metrics.LoadErrors.WithLabelValues(l.Name()).Inc()
				return fmt.Errorf("load %s into %s: %w", t.Name, l.Name(), err)
			}
			p.metrics.RowsLoaded.WithLabelValues(t.Name, l.Name()).Add(float64(t.Len()))
			logger.Info("table loaded", "table", t.Name, "sink", l.Name(), "rows", t.Len())
		}
	}
	return nil
}
