package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	malformed := &MalformedBlockError{Block: 2, Row: 40, Reason: "no year"}
	upstream := &UpstreamFetchError{Source: "gus", Request: "variable=4332 year=2016", Err: errors.New("status 500")}

	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"malformed block", malformed, KindMalformedBlock},
		{"wrapped malformed block", fmt.Errorf("parse sheet: %w", malformed), KindMalformedBlock},
		{"upstream fetch", upstream, KindUpstreamFetch},
		{"wrapped upstream fetch", fmt.Errorf("ingest: %w", upstream), KindUpstreamFetch},
		{"other", errors.New("boom"), KindUnknown},
		{"nil", nil, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	malformed := &MalformedBlockError{Block: 1, Row: 12, Reason: "no year cell"}
	assert.Equal(t, "malformed block 1 at row 12: no year cell", malformed.Error())

	cause := errors.New("connection refused")
	upstream := &UpstreamFetchError{Source: "open-meteo", Request: "province=OPOLSKIE year=2018", Err: cause}
	assert.Equal(t, "open-meteo fetch province=OPOLSKIE year=2018: connection refused", upstream.Error())
	assert.ErrorIs(t, upstream, cause)
	assert.NotErrorIs(t, upstream, ErrMalformedBlock)
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "malformed_block", KindMalformedBlock.String())
	assert.Equal(t, "upstream_fetch", KindUpstreamFetch.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}

func TestParseNutrientKind(t *testing.T) {
	for _, s := range []string{"N", "P", "K"} {
		k, ok := ParseNutrientKind(s)
		assert.True(t, ok, s)
		assert.Equal(t, NutrientKind(s), k)
	}
	_, ok := ParseNutrientKind("n")
	assert.False(t, ok)
	_, ok = ParseNutrientKind("")
	assert.False(t, ok)
}

func TestTable(t *testing.T) {
	tbl := NewTable("prices",
		Column{Name: "rok", Kind: ColumnInt},
		Column{Name: "wojewodztwo", Kind: ColumnText},
		Column{Name: "cena", Kind: ColumnFloat},
	)
	tbl.Append(2016, "OPOLSKIE", 1234.5)
	tbl.Append(2019, "OPOLSKIE", nil)

	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"rok", "wojewodztwo", "cena"}, tbl.ColumnNames())
	assert.Equal(t, map[string]any{"rok": 2019, "wojewodztwo": "OPOLSKIE", "cena": nil}, tbl.Record(1))

	assert.Panics(t, func() { tbl.Append(2016) })
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"MAZOWIECKIE", "MAZOWIECKIE"},
		{2018, "2018"},
		{1.5, "1.5"},
		{2.0, "2"},
		{(*float64)(nil), ""},
		{Float(0.25), "0.25"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in), "%#v", tt.in)
	}
}

func TestDeref(t *testing.T) {
	assert.Nil(t, Deref(nil))
	assert.Equal(t, 3.5, Deref(Float(3.5)))
}

func TestYieldFeatures_Vector(t *testing.T) {
	f := YieldFeatures{Nitrogen: 1, Phosphorus: 2, Potassium: 3, Temperature: 4, Precipitation: 5, FinancialCluster: 6, WeatherCluster: 7}
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7}, f.Vector())
}

func TestNow_UsesInjectedClock(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	assert.Equal(t, fixed.UTC(), Now())
	assert.Equal(t, time.UTC, Now().Location())
}
