package render

import (
	"bytes"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/vicenergy/internal/models"
)

func decode(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestPNG_LineFigure(t *testing.T) {
	fig := models.Figure{
		Data: []models.Trace{{
			Type: models.TraceScatter,
			Mode: models.ModeLines,
			Name: "demand",
			X:    []any{"2015-01-01", "2015-02-01", "2015-03-01"},
			Y:    models.Values{100, math.NaN(), 120},
		}},
		Layout: models.Layout{Title: "Line Chart"},
	}

	data, err := PNG(fig, 640, 400)
	require.NoError(t, err)
	w, h := decode(t, data)
	assert.Equal(t, 640, w)
	assert.Equal(t, 400, h)
}

func TestPNG_CategoricalFigure(t *testing.T) {
	fig := models.Figure{
		Data: []models.Trace{
			{Type: models.TraceScatter, Mode: models.ModeLines, Name: "2015", X: []any{"Summer", "Winter"}, Y: models.Values{110, 150}},
			{Type: models.TraceScatter, Mode: models.ModeLines, Name: "2016", X: []any{"Summer", "Winter"}, Y: models.Values{200, 180}},
		},
		Layout: models.Layout{Title: "Average Demand by Season and Year", ShowLegend: true},
	}

	data, err := PNG(fig, 0, 0)
	require.NoError(t, err)
	w, h := decode(t, data)
	assert.Equal(t, DefaultWidth, w)
	assert.Equal(t, DefaultHeight, h)
}

func TestPNG_EmptyFigureFallsBack(t *testing.T) {
	fig := models.Figure{
		Data:   []models.Trace{{Type: models.TraceScatter, Mode: models.ModeLines, X: []any{}, Y: models.Values{}}},
		Layout: models.Layout{Title: "Line Chart"},
	}

	data, err := PNG(fig, 300, 200)
	assert.ErrorIs(t, err, errTooFewPoints)
	require.NotEmpty(t, data, "a placeholder is returned alongside the error")
	w, h := decode(t, data)
	assert.Equal(t, 300, w)
	assert.Equal(t, 200, h)
}

func TestCategoryIndex(t *testing.T) {
	fig := models.Figure{Data: []models.Trace{
		{X: []any{"Winter", "Summer"}},
		{X: []any{"Summer", "Spring"}},
		{X: []any{"2015-01-01"}},
	}}
	assert.Equal(t, map[string]int{"Winter": 0, "Summer": 1, "Spring": 2}, categoryIndex(fig))
	assert.Nil(t, categoryIndex(models.Figure{Data: []models.Trace{{X: []any{1, 2}}}}))
}

func TestPlaceholder(t *testing.T) {
	data, err := Placeholder("Banner", "Image unavailable", 120, 60)
	require.NoError(t, err)
	w, h := decode(t, data)
	assert.Equal(t, 120, w)
	assert.Equal(t, 60, h)
}
