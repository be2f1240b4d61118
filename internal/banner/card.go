package banner

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"sync"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Open Graph image dimensions.
const (
	CardWidth  = 1200
	CardHeight = 630
)

// CardData is the text drawn over the social card.
type CardData struct {
	Title    string
	Subtitle string
	Footer   string
}

// Card composites the banner image with a text overlay. When the banner
// cannot be decoded the card is drawn on a plain background instead.
func Card(bannerImage []byte, data CardData) ([]byte, error) {
	dst := image.NewRGBA(image.Rect(0, 0, CardWidth, CardHeight))

	src, _, err := image.Decode(bytes.NewReader(bannerImage))
	if err == nil {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, coverRect(src.Bounds(), CardWidth, CardHeight), draw.Src, nil)
	} else {
		fillBackground(dst)
	}

	shadeBottom(dst, 320)

	white := color.RGBA{255, 255, 255, 255}
	grey := color.RGBA{205, 205, 205, 255}
	drawScaled(dst, data.Title, 60, CardHeight-230, 4, white)
	if data.Subtitle != "" {
		drawScaled(dst, data.Subtitle, 60, CardHeight-130, 3, grey)
	}
	if data.Footer != "" {
		drawScaled(dst, data.Footer, 60, CardHeight-60, 2, grey)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode card: %w", err)
	}
	return buf.Bytes(), nil
}

// coverRect returns the centred region of src with the aspect ratio of
// w x h, so scaling it fills the destination without distortion.
func coverRect(src image.Rectangle, w, h int) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	if sw*h > sh*w {
		cw := sh * w / h
		x0 := src.Min.X + (sw-cw)/2
		return image.Rect(x0, src.Min.Y, x0+cw, src.Max.Y)
	}
	ch := sw * h / w
	y0 := src.Min.Y + (sh-ch)/2
	return image.Rect(src.Min.X, y0, src.Max.X, y0+ch)
}

func fillBackground(img *image.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		progress := float64(y) / float64(b.Dy())
		c := color.RGBA{uint8(18 + progress*10), uint8(32 + progress*20), uint8(48 + progress*30), 255}
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// shadeBottom darkens the bottom band of img with an ease-in gradient.
func shadeBottom(img *image.RGBA, band int) {
	b := img.Bounds()
	top := b.Max.Y - band
	for y := top; y < b.Max.Y; y++ {
		progress := float64(y-top) / float64(band)
		alpha := progress * progress * 0.85
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			c.R = uint8(float64(c.R) * (1 - alpha))
			c.G = uint8(float64(c.G) * (1 - alpha))
			c.B = uint8(float64(c.B) * (1 - alpha))
			img.SetRGBA(x, y, c)
		}
	}
}

// drawScaled draws text with the 7x13 bitmap face enlarged by factor,
// baseline at (x, y).
func drawScaled(dst *image.RGBA, text string, x, y, factor int, col color.Color) {
	face := basicfont.Face7x13
	d := &font.Drawer{Face: face}
	w := d.MeasureString(text).Ceil()
	h := face.Metrics().Height.Ceil()
	if w == 0 {
		return
	}

	glyphs := image.NewRGBA(image.Rect(0, 0, w, h))
	d.Dst = glyphs
	d.Src = image.NewUniform(col)
	d.Dot = fixed.Point26_6{X: 0, Y: face.Metrics().Ascent}
	d.DrawString(text)

	top := y - face.Metrics().Ascent.Ceil()*factor
	target := image.Rect(x, top, x+w*factor, top+h*factor)
	draw.NearestNeighbor.Scale(dst, target, glyphs, glyphs.Bounds(), draw.Over, nil)
}

// CardCache holds the last rendered card for a short period.
type CardCache struct {
	mu        sync.RWMutex
	data      []byte
	expiresAt time.Time
	ttl       time.Duration
}

func NewCardCache(ttl time.Duration) *CardCache {
	return &CardCache{ttl: ttl}
}

func (c *CardCache) Get() ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data == nil || time.Now().After(c.expiresAt) {
		return nil, false
	}
	return c.data, true
}

func (c *CardCache) Set(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = data
	c.expiresAt = time.Now().Add(c.ttl)
}
