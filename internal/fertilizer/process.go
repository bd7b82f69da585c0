package fertilizer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/wheat-yield-etl/internal/domain"
	"github.com/couchcryptid/wheat-yield-etl/internal/observability"
	"github.com/couchcryptid/wheat-yield-etl/internal/sheet"
)

// Result holds the three stages of the fertilizer transform.
type Result struct {
	Prices         []domain.PriceRecord
	NutrientPrices []domain.NutrientPriceRecord
	Extrapolated   []domain.NutrientPriceRecord
	SkippedBlocks  []*domain.MalformedBlockError
}

// Tables renders the result as output tables.
func (r Result) Tables() []*domain.Table {
	return []*domain.Table{
		PriceTable(r.Prices),
		NutrientPriceTable(TableNutrientPrices, r.NutrientPrices),
		NutrientPriceTable(TableExtrapolated, r.Extrapolated),
	}
}

// Transformer runs the workbook transform.
type Transformer struct {
	parser        *Parser
	nutrients     NutrientTable
	targetYears   []int
	skipMalformed bool
	logger        *slog.Logger
	metrics       *observability.Metrics
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithSkipMalformed logs and skips malformed blocks instead of failing.
func WithSkipMalformed(skip bool) Option {
	return func(t *Transformer) { t.skipMalformed = skip }
}

// NewTransformer creates a Transformer projecting prices for targetYears.
func NewTransformer(parser *Parser, nutrients NutrientTable, targetYears []int, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Transformer {
	t := &Transformer{
		parser:      parser,
		nutrients:   nutrients,
		targetYears: targetYears,
		logger:      logger,
		metrics:     metrics,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transform parses every block, converts prices to pure nutrients, drops
// unresolved fertilizers and appends projections for the target years.
func (t *Transformer) Transform(rows []sheet.Row) (Result, error) {
	var res Result

	blocks := SplitBlocks(rows)
	t.logger.Debug("workbook split", "rows", len(rows), "blocks", len(blocks))

	for _, b := range blocks {
		records, err := t.parser.ParseBlock(b)
		if err != nil {
			var malformed *domain.MalformedBlockError
			if !errors.As(err, &malformed) {
				return Result{}, err
			}
			t.metrics.MalformedBlocks.Inc()
			if !t.skipMalformed {
				return Result{}, fmt.Errorf("parse workbook: %w", err)
			}
			t.logger.Warn("skipping malformed block", "block", malformed.Block, "row", malformed.Row, "reason", malformed.Reason)
			res.SkippedBlocks = append(res.SkippedBlocks, malformed)
			continue
		}
		res.Prices = append(res.Prices, records...)
	}

	resolved, unresolved := t.nutrients.ConvertAll(res.Prices)
	for _, r := range unresolved {
		t.logger.Debug("fertilizer has no nutrient entry", "fertilizer", r.Fertilizer, "year", r.Year, "province", r.Province)
	}
	t.metrics.UnresolvedFertilizers.Add(float64(len(unresolved)))
	res.NutrientPrices = resolved

	res.Extrapolated = Extrapolate(resolved, t.targetYears)
	t.metrics.ExtrapolatedRecords.Add(float64(len(res.Extrapolated) - len(resolved)))

	t.logger.Info("fertilizer prices transformed",
		"records", len(res.Prices),
		"nutrient_records", len(res.NutrientPrices),
		"projected", len(res.Extrapolated)-len(resolved),
		"unresolved", len(unresolved),
		"skipped_blocks", len(res.SkippedBlocks),
	)
	return res, nil
}
