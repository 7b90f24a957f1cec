package wl

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/elliotmr/wayclient/wl/wlp"
)

// Buffer is a region of a Pool the compositor can display.
type Buffer struct {
	pool  *Pool
	proxy *wlp.Buffer

	offset int
	width  int
	height int
	stride int
	format Format

	busy      bool
	destroyed bool
	onRelease func(*Buffer)
}

type bufferCb struct {
	b *Buffer
}

func (bcb *bufferCb) Release() {
	b := bcb.b
	Logger().Debug("buffer released", zap.Uint32("buffer", uint32(b.proxy.ID())))
	b.busy = false
	if b.onRelease != nil {
		b.onRelease(b)
	}
}

func (b *Buffer) ID() wlp.ObjectID {
	return b.proxy.ID()
}

func (b *Buffer) Width() int     { return b.width }
func (b *Buffer) Height() int    { return b.height }
func (b *Buffer) Stride() int    { return b.stride }
func (b *Buffer) Format() Format { return b.format }

// Bytes is the pixel memory of the buffer, stride*height bytes. The slice is
// invalidated by Pool.Resize.
func (b *Buffer) Bytes() []byte {
	if b.pool.data == nil {
		return nil
	}
	return b.pool.data[b.offset : b.offset+b.stride*b.height]
}

// OffsetFor returns the position of pixel (x, y) within Bytes.
func (b *Buffer) OffsetFor(x, y int) (int, error) {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return 0, errors.Wrapf(ErrOutOfBounds, "pixel (%d, %d) outside %dx%d", x, y, b.width, b.height)
	}
	return y*b.stride + x*b.format.BytesPerPixel(), nil
}

// Busy is true from the commit that showed the buffer until the compositor
// releases it. A busy buffer must not be written to.
func (b *Buffer) Busy() bool {
	return b.busy
}

// OnRelease sets f to be called when the compositor releases the buffer.
func (b *Buffer) OnRelease(f func(*Buffer)) {
	b.onRelease = f
}

// Destroy destroys the buffer. The pool memory is unmapped once the pool and
// all its buffers are gone.
func (b *Buffer) Destroy() error {
	if b.destroyed {
		return nil
	}
	if err := b.proxy.Destroy(); err != nil {
		return errors.Wrap(err, "unable to destroy buffer")
	}
	b.destroyed = true
	b.pool.forget(b)
	return nil
}

// Image returns a view of the buffer memory that can be drawn on. Only the
// 32 bit formats have a view.
func (b *Buffer) Image() (draw.Image, error) {
	img := &shmImage{
		pix:    b.Bytes(),
		stride: b.stride,
		rect:   image.Rect(0, 0, b.width, b.height),
		opaque: b.format == FormatXRGB8888 || b.format == FormatXBGR8888,
	}
	switch b.format {
	case FormatARGB8888, FormatXRGB8888:
		img.r, img.g, img.b, img.a = 16, 8, 0, 24
	case FormatABGR8888, FormatXBGR8888:
		img.r, img.g, img.b, img.a = 0, 8, 16, 24
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "no image view for %s", b.format)
	}
	if img.pix == nil {
		return nil, errors.New("buffer memory is unmapped")
	}
	return img, nil
}

// Fill paints the whole buffer with c.
func (b *Buffer) Fill(c color.Color) error {
	img, err := b.Image()
	if err != nil {
		return err
	}
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return nil
}

// Scale draws src stretched over the whole buffer.
func (b *Buffer) Scale(src image.Image) error {
	img, err := b.Image()
	if err != nil {
		return err
	}
	draw.ApproxBiLinear.Scale(img, img.Bounds(), src, src.Bounds(), draw.Src, nil)
	return nil
}

// shmImage reads and writes premultiplied pixels stored as host order 32 bit
// words. The shift fields give the bit position of each channel.
type shmImage struct {
	pix    []byte
	stride int
	rect   image.Rectangle
	opaque bool

	r, g, b, a uint
}

func (p *shmImage) ColorModel() color.Model { return color.RGBAModel }

func (p *shmImage) Bounds() image.Rectangle { return p.rect }

func (p *shmImage) Opaque() bool { return p.opaque }

func (p *shmImage) word(x, y int) []byte {
	i := y*p.stride + x*4
	return p.pix[i : i+4 : i+4]
}

func (p *shmImage) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(p.rect)) {
		return color.RGBA{}
	}
	v := wlp.HostByteOrder().Uint32(p.word(x, y))
	c := color.RGBA{
		R: uint8(v >> p.r),
		G: uint8(v >> p.g),
		B: uint8(v >> p.b),
		A: uint8(v >> p.a),
	}
	if p.opaque {
		c.A = 0xff
	}
	return c
}

func (p *shmImage) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}.In(p.rect)) {
		return
	}
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	if p.opaque {
		rgba.A = 0xff
	}
	v := uint32(rgba.R)<<p.r | uint32(rgba.G)<<p.g | uint32(rgba.B)<<p.b | uint32(rgba.A)<<p.a
	wlp.HostByteOrder().PutUint32(p.word(x, y), v)
}
