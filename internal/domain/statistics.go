package domain

import "time"

// ProvinceValue is one GUS BDL observation for a province and year.
type ProvinceValue struct {
	UnitID   string
	Province string
	Year     int
	Value    *float64
}

// DailyWeather is one day of Open-Meteo archive data for a province.
// Any measurement may be missing.
type DailyWeather struct {
	Province      string
	Year          int
	Date          time.Time
	TempMean      *float64
	TempMax       *float64
	TempMin       *float64
	Precipitation *float64
}

// MonthlyIndicators aggregates a province's weather for one month.
type MonthlyIndicators struct {
	Province      string
	Year          int
	Month         int
	TempMean      *float64
	Precipitation float64
	TempMax       *float64
	TempMin       *float64
	Hydrothermal  float64
}

// YearlyIndicators aggregates a province's weather for one year.
type YearlyIndicators struct {
	Province      string
	Year          int
	TempMean      *float64
	Precipitation float64
	HeatDays      int
	FrostDays     int
}

// YieldFeatures is the input vector of the yield model.
type YieldFeatures struct {
	Nitrogen         float64
	Phosphorus       float64
	Potassium        float64
	Temperature      float64
	Precipitation    float64
	FinancialCluster int
	WeatherCluster   int
}

// Vector returns the features in the order the model was trained on.
func (f YieldFeatures) Vector() []float64 {
	return []float64{
		f.Nitrogen,
		f.Phosphorus,
		f.Potassium,
		f.Temperature,
		f.Precipitation,
		float64(f.FinancialCluster),
		float64(f.WeatherCluster),
	}
}
