package fertilizer

import (
	"context"

	"github.com/couchcryptid/wheat-yield-etl/internal/domain"
	"github.com/couchcryptid/wheat-yield-etl/internal/sheet"
)

// WorkbookExtractor reads the price workbook and produces the three
// fertilizer tables. It implements pipeline.Extractor.
type WorkbookExtractor struct {
	path        string
	sheet       string
	transformer *Transformer
}

// NewWorkbookExtractor creates an extractor for the named sheet of path.
// An empty sheet name selects the first sheet.
func NewWorkbookExtractor(path, sheetName string, t *Transformer) *WorkbookExtractor {
	return &WorkbookExtractor{path: path, sheet: sheetName, transformer: t}
}

// Name identifies the pipeline in logs and metrics.
func (e *WorkbookExtractor) Name() string {
	return "fertilizers"
}

func (e *WorkbookExtractor) Extract(ctx context.Context) ([]*domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := sheet.ReadWorkbook(e.path, e.sheet)
	if err != nil {
		return nil, err
	}
	res, err := e.transformer.Transform(rows)
	if err != nil {
		return nil, err
	}
	return res.Tables(), nil
}
