package ingest

import (
	"errors"

	"github.com/couchcryptid/wheat-yield-etl/internal/domain"
)

// FetchReport collects the upstream failures of one extraction.
type FetchReport struct {
	Requests int
	Failures []*domain.UpstreamFetchError
}

func (r *FetchReport) record(err error) {
	r.Requests++
	if err == nil {
		return
	}
	var upstream *domain.UpstreamFetchError
	if !errors.As(err, &upstream) {
		upstream = &domain.UpstreamFetchError{Source: "unknown", Err: err}
	}
	r.Failures = append(r.Failures, upstream)
}

// Failed reports whether any request failed.
func (r *FetchReport) Failed() bool {
	return len(r.Failures) > 0
}

// Err joins every failure, or returns nil.
func (r *FetchReport) Err() error {
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}
