// Package reference holds the immutable lookup tables shared by the loaders:
// provinces with their workbook abbreviations and capital coordinates, the
// fertilizer nutrient table, and the GUS BDL variable identifiers.
package reference

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/wheat-yield-etl/internal/domain"
)

//go:embed reference.yaml
var defaultData []byte

// Province is one of the 16 voivodeships.
type Province struct {
	Name         string  `yaml:"name"`
	Abbreviation string  `yaml:"abbreviation"`
	Lat          float64 `yaml:"lat"`
	Lon          float64 `yaml:"lon"`
}

// Average is the cross-province pseudo-column of the price workbook.
type Average struct {
	Name         string `yaml:"name"`
	Abbreviation string `yaml:"abbreviation"`
}

// Fertilizer describes the active nutrient of one commercial product.
type Fertilizer struct {
	Name       string  `yaml:"name"`
	Nutrient   string  `yaml:"nutrient"`
	Content    float64 `yaml:"content"`
	Conversion float64 `yaml:"conversion"`
}

// Fraction is the mass fraction of pure nutrient in the product.
func (f Fertilizer) Fraction() float64 {
	conv := f.Conversion
	if conv == 0 {
		conv = 1
	}
	return f.Content * conv
}

// Variable is a GUS BDL variable and the output column it populates.
type Variable struct {
	ID     string `yaml:"id"`
	Column string `yaml:"column"`
}

// GUSVariables groups the BDL variables fetched per dataset.
type GUSVariables struct {
	Yields        Variable   `yaml:"yields"`
	Fertilization []Variable `yaml:"fertilization"`
	WheatPrice    Variable   `yaml:"wheat_price"`
}

// Data is the full reference document.
type Data struct {
	Provinces   []Province   `yaml:"provinces"`
	Average     Average      `yaml:"average"`
	Fertilizers []Fertilizer `yaml:"fertilizers"`
	GUS         GUSVariables `yaml:"gus"`
}

// Default returns the embedded reference data.
func Default() (*Data, error) {
	return Parse(defaultData)
}

// Load reads reference data from path, or the embedded copy when path is empty.
func Load(path string) (*Data, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference data: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates a YAML reference document.
func Parse(raw []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode reference data: %w", err)
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (d *Data) validate() error {
	if len(d.Provinces) == 0 {
		return errors.New("reference data: no provinces")
	}
	seen := make(map[string]bool, len(d.Provinces))
	for _, p := range d.Provinces {
		if p.Name == "" || p.Abbreviation == "" {
			return fmt.Errorf("reference data: province %q needs a name and an abbreviation", p.Name)
		}
		if seen[p.Abbreviation] {
			return fmt.Errorf("reference data: duplicate abbreviation %q", p.Abbreviation)
		}
		seen[p.Abbreviation] = true
	}
	if d.Average.Name == "" || d.Average.Abbreviation == "" {
		return errors.New("reference data: average column needs a name and an abbreviation")
	}
	for _, f := range d.Fertilizers {
		if _, ok := domain.ParseNutrientKind(f.Nutrient); !ok {
			return fmt.Errorf("reference data: fertilizer %q has unknown nutrient %q", f.Name, f.Nutrient)
		}
		if f.Content < 0 || f.Conversion < 0 {
			return fmt.Errorf("reference data: fertilizer %q has a negative fraction", f.Name)
		}
	}
	if d.GUS.Yields.ID == "" || d.GUS.WheatPrice.ID == "" || len(d.GUS.Fertilization) == 0 {
		return errors.New("reference data: missing GUS variables")
	}
	return nil
}

// Abbreviations maps workbook province codes, including the average column,
// to full province names.
func (d *Data) Abbreviations() map[string]string {
	m := make(map[string]string, len(d.Provinces)+1)
	for _, p := range d.Provinces {
		m[p.Abbreviation] = p.Name
	}
	m[d.Average.Abbreviation] = d.Average.Name
	return m
}

// NutrientTable maps lowercase fertilizer names to their nutrient content.
func (d *Data) NutrientTable() map[string]domain.NutrientContent {
	m := make(map[string]domain.NutrientContent, len(d.Fertilizers))
	for _, f := range d.Fertilizers {
		kind, _ := domain.ParseNutrientKind(f.Nutrient)
		m[strings.ToLower(strings.TrimSpace(f.Name))] = domain.NutrientContent{Kind: kind, Fraction: f.Fraction()}
	}
	return m
}

// ProvinceNames returns the canonical names of the 16 provinces.
func (d *Data) ProvinceNames() []string {
	names := make([]string, len(d.Provinces))
	for i, p := range d.Provinces {
		names[i] = p.Name
	}
	return names
}
