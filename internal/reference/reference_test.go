package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wheat-yield-etl/internal/domain"
)

func TestDefault(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)

	assert.Len(t, d.Provinces, 16)
	assert.Equal(t, "ŚREDNIA", d.Average.Name)
	assert.Equal(t, "4332", d.GUS.Yields.ID)
	assert.Equal(t, "4859", d.GUS.WheatPrice.ID)
	require.Len(t, d.GUS.Fertilization, 4)
	assert.Equal(t, "nawozy_ogolem_kg_ha", d.GUS.Fertilization[0].Column)
}

func TestAbbreviations(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)

	abbr := d.Abbreviations()
	assert.Len(t, abbr, 17)
	assert.Equal(t, "DOLNOŚLĄSKIE", abbr["dol"])
	assert.Equal(t, "KUJAWSKO-POMORSKIE", abbr["k.pom"])
	assert.Equal(t, "ŁÓDZKIE", abbr["łódz"])
	assert.Equal(t, "WARMIŃSKO-MAZURSKIE", abbr["w.maz"])
	assert.Equal(t, "ŚREDNIA", abbr["śred"])
}

func TestNutrientTable(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)

	tbl := d.NutrientTable()
	assert.Len(t, tbl, 7)
	assert.Equal(t, domain.NutrientContent{Kind: domain.NutrientN, Fraction: 0.34}, tbl["saletra amonowa"])
	assert.Equal(t, domain.NutrientN, tbl["mocznik"].Kind)
	assert.InDelta(t, 0.18*0.436, tbl["superfosfat poj. gran"].Fraction, 1e-12)
	assert.InDelta(t, 0.50*0.830, tbl["siarczan potasu"].Fraction, 1e-12)
	assert.Equal(t, domain.NutrientK, tbl["sól potasowa"].Kind)
}

func TestProvinceCoordinates(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)

	for _, p := range d.Provinces {
		assert.True(t, p.Lat > 49 && p.Lat < 55, "%s lat %v", p.Name, p.Lat)
		assert.True(t, p.Lon > 14 && p.Lon < 24.2, "%s lon %v", p.Name, p.Lon)
	}
	assert.Contains(t, d.ProvinceNames(), "ZACHODNIOPOMORSKIE")
}

func TestLoad_FromFile(t *testing.T) {
	doc := `
provinces:
  - {name: OPOLSKIE, abbreviation: opol, lat: 50.67, lon: 17.93}
average: {name: ŚREDNIA, abbreviation: śred}
fertilizers:
  - {name: Mocznik, nutrient: N, content: 0.46}
gus:
  yields: {id: "1", column: y}
  fertilization: [{id: "2", column: f}]
  wheat_price: {id: "3", column: p}
`
	path := filepath.Join(t.TempDir(), "ref.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"OPOLSKIE"}, d.ProvinceNames())
	assert.Equal(t, 0.46, d.NutrientTable()["mocznik"].Fraction)
}

func TestLoad_EmptyPathUsesEmbedded(t *testing.T) {
	d, err := Load("")
	require.NoError(t, err)
	assert.Len(t, d.Provinces, 16)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read reference data")
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"not yaml", "provinces: [", "decode reference data"},
		{"no provinces", "average: {name: A, abbreviation: a}", "no provinces"},
		{
			"duplicate abbreviation",
			"provinces: [{name: A, abbreviation: x}, {name: B, abbreviation: x}]",
			"duplicate abbreviation",
		},
		{
			"unknown nutrient",
			"provinces: [{name: A, abbreviation: a}]\naverage: {name: S, abbreviation: s}\nfertilizers: [{name: x, nutrient: Q, content: 1}]",
			"unknown nutrient",
		},
		{
			"missing gus",
			"provinces: [{name: A, abbreviation: a}]\naverage: {name: S, abbreviation: s}",
			"missing GUS variables",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
