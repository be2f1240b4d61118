package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DateLayout is the calendar-day format used on the wire and in query strings.
const DateLayout = "2006-01-02"

var ErrUnknownVariable = errors.New("unknown variable")

// Record is one day of the source dataset. Missing numeric cells are NaN.
type Record struct {
	Date           time.Time
	Month          int
	Year           int
	Season         Season
	Demand         float64
	RRP            float64
	SolarExposure  float64
	Rainfall       float64
	MaxTemperature float64
	MinTemperature float64
}

// YearMonthDemand is mean demand per (year, month).
type YearMonthDemand struct {
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	Demand float64 `json:"demand"`
}

// SeasonPriceDemand is mean RRP and demand per (season, year).
type SeasonPriceDemand struct {
	Season Season  `json:"season"`
	Year   int     `json:"year"`
	RRP    float64 `json:"RRP"`
	Demand float64 `json:"demand"`
}

// SeasonTemperature is mean demand with the extreme temperatures per (season, year).
type SeasonTemperature struct {
	Season         Season  `json:"season"`
	Year           int     `json:"year"`
	Demand         float64 `json:"demand"`
	MaxTemperature float64 `json:"max_temperature"`
	MinTemperature float64 `json:"min_temperature"`
}

// Variable names a numeric column of Record, spelled as in the source file.
type Variable string

const (
	VarDemand         Variable = "demand"
	VarRRP            Variable = "RRP"
	VarSolarExposure  Variable = "solar_exposure"
	VarRainfall       Variable = "rainfall"
	VarMaxTemperature Variable = "max_temperature"
	VarMinTemperature Variable = "min_temperature"
	VarMonth          Variable = "month"
	VarYear           Variable = "year"
)

// LineVariables are the choices offered by the time series dropdown.
var LineVariables = []Variable{VarDemand, VarRRP, VarSolarExposure}

// ScatterVariables are the choices offered by the correlation radio group.
var ScatterVariables = []Variable{VarMaxTemperature, VarMonth, VarRainfall, VarMinTemperature}

var variableLabels = map[Variable]string{
	VarDemand:         "Demand",
	VarRRP:            "RRP",
	VarSolarExposure:  "Solar Exposure",
	VarRainfall:       "Rainfall",
	VarMaxTemperature: "Max Temperature",
	VarMinTemperature: "Min Temperature",
	VarMonth:          "Month",
	VarYear:           "Year",
}

// Label returns the human readable name shown next to a control.
func (v Variable) Label() string {
	if l, ok := variableLabels[v]; ok {
		return l
	}
	return string(v)
}

// Of returns the value of v for r, or NaN for an unknown variable.
func (v Variable) Of(r Record) float64 {
	switch v {
	case VarDemand:
		return r.Demand
	case VarRRP:
		return r.RRP
	case VarSolarExposure:
		return r.SolarExposure
	case VarRainfall:
		return r.Rainfall
	case VarMaxTemperature:
		return r.MaxTemperature
	case VarMinTemperature:
		return r.MinTemperature
	case VarMonth:
		return float64(r.Month)
	case VarYear:
		return float64(r.Year)
	}
	return math.NaN()
}

// ParseVariable returns the member of allowed named s.
func ParseVariable(s string, allowed []Variable) (Variable, error) {
	for _, v := range allowed {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariable, s)
}
