package domain

import (
	"errors"
	"fmt"
)

// ErrMalformedBlock matches any *MalformedBlockError via errors.Is.
var ErrMalformedBlock = errors.New("malformed block")

// ErrUpstreamFetch matches any *UpstreamFetchError via errors.Is.
var ErrUpstreamFetch = errors.New("upstream fetch failure")

// ErrorKind is the closed set of error conditions the ETL distinguishes.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindMalformedBlock
	KindUpstreamFetch
)

func (k ErrorKind) String() string {
	switch k {
	case KindMalformedBlock:
		return "malformed_block"
	case KindUpstreamFetch:
		return "upstream_fetch"
	default:
		return "unknown"
	}
}

// KindOf classifies err. Errors outside the closed set report KindUnknown.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrMalformedBlock):
		return KindMalformedBlock
	case errors.Is(err, ErrUpstreamFetch):
		return KindUpstreamFetch
	default:
		return KindUnknown
	}
}

// MalformedBlockError reports a workbook block that cannot be parsed.
type MalformedBlockError struct {
	Block  int // 0-based block index within the sheet
	Row    int // 0-based sheet row where the block starts
	Reason string
}

func (e *MalformedBlockError) Error() string {
	return fmt.Sprintf("malformed block %d at row %d: %s", e.Block, e.Row, e.Reason)
}

func (e *MalformedBlockError) Is(target error) bool {
	return target == ErrMalformedBlock
}

// UpstreamFetchError reports a failed request to an external API.
type UpstreamFetchError struct {
	Source  string // "gus" or "open-meteo"
	Request string // human-readable request key, e.g. "variable=4332 year=2016"
	Err     error
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("%s fetch %s: %v", e.Source, e.Request, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}

func (e *UpstreamFetchError) Is(target error) bool {
	return target == ErrUpstreamFetch
}
