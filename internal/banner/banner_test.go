package banner

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.SetRGBA(x, h/2, color.RGBA{200, 40, 40, 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestIntro_FetchesThenCaches(t *testing.T) {
	body := pngBytes(t, 40, 20)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(body)
	}))
	defer srv.Close()

	svc := New(Config{Dir: t.TempDir(), URL: srv.URL}, zap.NewNop().Sugar())

	data, source := svc.Intro(context.Background())
	assert.Equal(t, SourceRemote, source)
	assert.Equal(t, body, data)

	data, source = svc.Intro(context.Background())
	assert.Equal(t, SourceCache, source)
	assert.Equal(t, body, data)
	assert.Equal(t, int32(1), hits.Load())
}

func TestIntro_PlaceholderWhenUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	svc := New(Config{Dir: t.TempDir(), URL: srv.URL}, zap.NewNop().Sugar())
	data, source := svc.Intro(context.Background())
	assert.Equal(t, SourcePlaceholder, source)

	_, err := png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
}

func TestIntro_StaleCacheBeatsPlaceholder(t *testing.T) {
	dir := t.TempDir()
	old := pngBytes(t, 10, 10)
	cache := NewCache(dir, time.Hour, zap.NewNop().Sugar())
	require.NoError(t, cache.Set(keyIntro, old))
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(cache.path(keyIntro), past, past))

	svc := New(Config{Dir: dir, MaxAge: time.Hour}, zap.NewNop().Sugar())
	data, source := svc.Intro(context.Background())
	assert.Equal(t, SourceStale, source)
	assert.Equal(t, old, data)
}

func TestCache(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(dir, 0, zap.NewNop().Sugar())

	_, ok := c.Get("intro")
	assert.False(t, ok)
	_, ok = c.GetAny()
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	_, ok = c.GetAny()
	assert.False(t, ok, "unrelated files are ignored")

	require.NoError(t, c.Set("intro", []byte("img")))
	data, ok := c.Get("intro")
	require.True(t, ok)
	assert.Equal(t, []byte("img"), data)
}

func TestNewGenerator_RequiresKey(t *testing.T) {
	_, err := NewGenerator("")
	assert.Error(t, err)
}

func TestCard(t *testing.T) {
	data := CardData{Title: "Victoria Energy", Subtitle: "2015-2020", Footer: "vicenergy"}

	for name, src := range map[string][]byte{
		"with banner": pngBytes(t, 300, 100),
		"no banner":   nil,
	} {
		t.Run(name, func(t *testing.T) {
			out, err := Card(src, data)
			require.NoError(t, err)
			img, err := png.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, CardWidth, img.Bounds().Dx())
			assert.Equal(t, CardHeight, img.Bounds().Dy())
		})
	}
}

func TestCoverRect(t *testing.T) {
	// Wider than the target: crop the sides.
	r := coverRect(image.Rect(0, 0, 400, 100), 200, 100)
	assert.Equal(t, image.Rect(100, 0, 300, 100), r)

	// Taller than the target: crop top and bottom.
	r = coverRect(image.Rect(0, 0, 200, 400), 200, 100)
	assert.Equal(t, image.Rect(0, 150, 200, 250), r)
}

func TestCardCache(t *testing.T) {
	c := NewCardCache(time.Minute)
	_, ok := c.Get()
	assert.False(t, ok)

	c.Set([]byte("card"))
	data, ok := c.Get()
	require.True(t, ok)
	assert.Equal(t, []byte("card"), data)
}
