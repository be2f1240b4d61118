package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Figure is a chart specification in the shape Plotly.newPlot accepts.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

const (
	TraceScatter = "scatter"
	TraceBox     = "box"

	ModeLines   = "lines"
	ModeMarkers = "markers"
)

// Trace is one series. X holds strings, numbers or dates depending on the
// chart; Y is always numeric. Box traces carry precomputed statistics.
type Trace struct {
	Type string `json:"type"`
	Mode string `json:"mode,omitempty"`
	Name string `json:"name,omitempty"`
	X    []any  `json:"x"`
	Y    Values `json:"y,omitempty"`

	Q1         Values  `json:"q1,omitempty"`
	Median     Values  `json:"median,omitempty"`
	Q3         Values  `json:"q3,omitempty"`
	LowerFence Values  `json:"lowerfence,omitempty"`
	UpperFence Values  `json:"upperfence,omitempty"`
	Marker     *Marker `json:"marker,omitempty"`
}

type Marker struct {
	Color string `json:"color,omitempty"`
}

// Values is a numeric series that encodes NaN and infinities as null, which
// Plotly draws as a gap.
type Values []float64

func (v Values) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			buf.WriteString("null")
			continue
		}
		buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// Points reports how many x values the trace carries.
func (t Trace) Points() int {
	return len(t.X)
}

type Axis struct {
	Title string
	Type  string
}

type title struct {
	Text string `json:"text"`
}

func (a Axis) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Title title  `json:"title"`
		Type  string `json:"type,omitempty"`
	}{title{a.Title}, a.Type})
}

type Annotation struct {
	Text      string  `json:"text"`
	ShowArrow bool    `json:"showarrow"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

type Layout struct {
	Title       string
	XAxis       Axis
	YAxis       Axis
	ShowLegend  bool
	LegendTitle string
	BoxMode     string
	Height      int
	Width       int
	Annotations []Annotation
}

func (l Layout) MarshalJSON() ([]byte, error) {
	type legend struct {
		Title title `json:"title"`
	}
	out := struct {
		Title       title        `json:"title"`
		XAxis       Axis         `json:"xaxis"`
		YAxis       Axis         `json:"yaxis"`
		ShowLegend  bool         `json:"showlegend"`
		Legend      *legend      `json:"legend,omitempty"`
		BoxMode     string       `json:"boxmode,omitempty"`
		Height      int          `json:"height,omitempty"`
		Width       int          `json:"width,omitempty"`
		Annotations []Annotation `json:"annotations,omitempty"`
	}{
		Title:       title{l.Title},
		XAxis:       l.XAxis,
		YAxis:       l.YAxis,
		ShowLegend:  l.ShowLegend,
		BoxMode:     l.BoxMode,
		Height:      l.Height,
		Width:       l.Width,
		Annotations: l.Annotations,
	}
	if l.LegendTitle != "" {
		out.Legend = &legend{Title: title{l.LegendTitle}}
	}
	return json.Marshal(out)
}

// Empty reports whether no trace carries any point.
func (f Figure) Empty() bool {
	for _, t := range f.Data {
		if t.Points() > 0 {
			return false
		}
	}
	return true
}
