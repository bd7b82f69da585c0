package fertilizer

import (
	"strings"

	"github.com/couchcryptid/wheat-yield-etl/internal/sheet"
)

// BlockMarker opens a new block when it prefixes a row's first cell.
const BlockMarker = "Województwo"

// Block is a contiguous run of sheet rows describing one year of prices.
type Block struct {
	Index    int // position among the sheet's blocks
	StartRow int // sheet row of the marker
	Rows     []sheet.Row
}

// SplitBlocks cuts rows into blocks at every marker row. Rows before the
// first marker belong to no block. No marker yields no blocks.
func SplitBlocks(rows []sheet.Row) []Block {
	var starts []int
	for i, row := range rows {
		if strings.HasPrefix(row.At(0).String(), BlockMarker) {
			starts = append(starts, i)
		}
	}

	blocks := make([]Block, 0, len(starts))
	for n, start := range starts {
		end := len(rows)
		if n+1 < len(starts) {
			end = starts[n+1]
		}
		blocks = append(blocks, Block{Index: n, StartRow: start, Rows: rows[start:end]})
	}
	return blocks
}
