// Package ingest pulls statistics from the upstream APIs into output tables.
//
// Requests are strictly sequential with a fixed delay between consecutive
// calls. Nothing is retried: a failed request is logged, recorded in a
// [FetchReport] and its rows are left out of the tables.
package ingest
