// Package fertilizer turns the irregular fertilizer-price workbook into
// typed price records, converts commercial product prices to prices of pure
// N, P and K, and projects missing trailing years.
//
// The stages are pure functions over in-memory values:
//
//	rows → SplitBlocks → Parser.ParseBlock → NutrientTable.Convert → Extrapolate
//
// [Transformer] strings them together and [WorkbookExtractor] adapts the
// result to the pipeline's table-based extractor contract.
package fertilizer
