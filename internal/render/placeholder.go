package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Placeholder draws a plain card with a title and a message, used wherever
// a real chart or banner image is not available.
func Placeholder(title, message string, width, height int) ([]byte, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// Vertical gradient, light grey to a slightly darker grey.
	for y := 0; y < height; y++ {
		progress := float64(y) / float64(height)
		shade := uint8(245 - progress*20)
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{shade, shade, shade + 4, 255})
		}
	}

	dark := color.RGBA{40, 40, 48, 255}
	muted := color.RGBA{110, 110, 120, 255}
	if title != "" {
		drawCentered(img, title, height/2-12, dark)
	}
	drawCentered(img, message, height/2+12, muted)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode placeholder: %w", err)
	}
	return buf.Bytes(), nil
}

func drawCentered(img *image.RGBA, text string, y int, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
	}
	w := d.MeasureString(text).Ceil()
	x := (img.Bounds().Dx() - w) / 2
	if x < 8 {
		x = 8
	}
	d.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	d.DrawString(text)
}
