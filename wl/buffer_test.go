package wl_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elliotmr/wayclient/internal/wltest"
	"github.com/elliotmr/wayclient/wl"
	"github.com/elliotmr/wayclient/wl/wlp"
)

func newBuffer(t *testing.T, c *wl.Client, width, height, stride int32, format wl.Format) *wl.Buffer {
	t.Helper()
	pool, err := c.CreateAnonymousPool(int(stride * height))
	require.NoError(t, err)
	buf, err := pool.CreateBuffer(0, width, height, stride, format)
	require.NoError(t, err)
	return buf
}

func TestBuffer_OffsetFor(t *testing.T) {
	c, _ := newClient(t, wltest.DefaultOptions())
	buf := newBuffer(t, c, 10, 10, 48, wl.FormatARGB8888)

	off, err := buf.OffsetFor(2, 3)
	require.NoError(t, err)
	assert.Equal(t, 3*48+2*4, off)

	for _, p := range []image.Point{{10, 0}, {0, 10}, {-1, 0}, {0, -1}} {
		_, err := buf.OffsetFor(p.X, p.Y)
		assert.True(t, errors.Is(err, wl.ErrOutOfBounds), "%v: got %v", p, err)
	}
}

func TestBuffer_Image(t *testing.T) {
	c, _ := newClient(t, wltest.DefaultOptions())
	buf := newBuffer(t, c, 4, 4, 16, wl.FormatARGB8888)

	img, err := buf.Image()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())

	img.Set(1, 2, color.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xff})
	off, err := buf.OffsetFor(1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xff112233), wlp.HostByteOrder().Uint32(buf.Bytes()[off:]))
	assert.Equal(t, color.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xff}, img.At(1, 2))

	// outside the bounds nothing is written
	img.Set(4, 0, color.White)
	assert.Equal(t, color.RGBA{}, img.At(4, 0))
}

func TestBuffer_ImageXRGB(t *testing.T) {
	c, _ := newClient(t, wltest.DefaultOptions())
	buf := newBuffer(t, c, 2, 2, 8, wl.FormatXRGB8888)

	require.NoError(t, buf.Fill(color.RGBA{R: 0x40, A: 0x80}))
	img, err := buf.Image()
	require.NoError(t, err)
	r, _, _, a := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), a)
	assert.Equal(t, uint32(0x4040), r)
}

func TestBuffer_Scale(t *testing.T) {
	c, _ := newClient(t, wltest.DefaultOptions())
	buf := newBuffer(t, c, 8, 8, 32, wl.FormatARGB8888)

	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range src.Pix {
		if i%4 == 1 || i%4 == 3 {
			src.Pix[i] = 0xff
		}
	}
	require.NoError(t, buf.Scale(src))

	img, err := buf.Image()
	require.NoError(t, err)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			assert.Equal(t, color.RGBA{G: 0xff, A: 0xff}, img.At(x, y))
		}
	}
}

func TestBuffer_ReleaseLifecycle(t *testing.T) {
	c, srv := newClient(t, wltest.DefaultOptions())
	buf := newBuffer(t, c, 4, 4, 16, wl.FormatARGB8888)
	s, err := c.CreateSurface()
	require.NoError(t, err)

	var released []*wl.Buffer
	buf.OnRelease(func(b *wl.Buffer) { released = append(released, b) })

	require.NoError(t, s.Attach(buf, 0, 0))
	assert.False(t, buf.Busy())
	require.NoError(t, s.Commit())
	assert.True(t, buf.Busy())
	assert.Equal(t, buf, s.Buffer())

	require.NoError(t, c.Roundtrip())
	require.NoError(t, srv.Release(srv.Last("wl_buffer")))
	require.NoError(t, c.Roundtrip())
	assert.False(t, buf.Busy())
	assert.Equal(t, []*wl.Buffer{buf}, released)
}

func TestBuffer_NoImageForRGB565(t *testing.T) {
	opts := wltest.DefaultOptions()
	opts.Formats = append(opts.Formats, wlp.ShmFormatRgb565)
	c, _ := newClient(t, opts)
	buf := newBuffer(t, c, 4, 4, 8, wl.FormatRGB565)

	off, err := buf.OffsetFor(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, off)

	_, err = buf.Image()
	assert.True(t, errors.Is(err, wl.ErrUnsupportedFormat), "got %v", err)
}
