// Package domain models Polish agricultural statistics used to explain and
// predict winter-wheat yields per province (voivodeship) and year.
//
// # Data Sources
//
// Fertilizer prices come from a workbook assembled from the
// gielda-rolna.com price tables (2015-2018). The sheet has no fixed schema:
// it is a sequence of blocks, one per year, each opened by a row whose first
// cell starts with "Województwo" and whose remaining cells are abbreviated
// province codes. The next row carries the year. Category rows ("Nawozy
// azotowe", "Nawozy fosforowe", ...) switch the active category; the rows
// under them hold one fertilizer per row with prices in PLN per tonne.
//
// Yields, NPK fertilization and wheat purchase prices come from the GUS Local
// Data Bank (BDL) API at unit level 2 (provinces). Weather comes from the
// Open-Meteo archive API, sampled at each provincial capital.
//
// # Conventions
//
// Provinces:
//
//	Full upper-case Polish names as used by GUS, e.g. "DOLNOŚLĄSKIE".
//	The workbook uses abbreviations ("dol", "k.pom", "w.maz", ...) plus the
//	"śred" column, an average across provinces that is never emitted.
//
// Nutrients:
//
//	N, P and K. Commercial products are converted to the price of one
//	kilogram of pure nutrient using the product's active content fraction,
//	which already includes the P2O5 → P (0.436) and K2O → K (0.830) factors.
//
// Extrapolation:
//
//	Missing trailing years (2019, 2020) are projected per (fertilizer,
//	province, nutrient) from the difference between the two most recent
//	observations. The difference is not divided by the gap between those
//	years.
//
// Agro-meteorological indicators:
//
//	Heat day:  Tmax > 30 °C.
//	Frost day: Tmax < 0 °C (IMGW "dzień mroźny", whole-day frost).
//	Hydrothermal index (Sielianinov): monthly precipitation / (mean temp × 10).
//
// # Errors
//
// Only two conditions are errors: a malformed workbook block (no year) and a
// failed upstream request. Unrecognized fertilizers and unparsable cells are
// ordinary filtered values. See [KindOf].
package domain
