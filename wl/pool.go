package wl

import (
	"fmt"
	"math"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/elliotmr/wayclient/wl/wlp"
)

// Format is a wl_shm pixel format.
type Format uint32

const (
	FormatARGB8888 Format = wlp.ShmFormatArgb8888
	FormatXRGB8888 Format = wlp.ShmFormatXrgb8888
	FormatRGB565   Format = wlp.ShmFormatRgb565
	FormatABGR8888 Format = wlp.ShmFormatAbgr8888
	FormatXBGR8888 Format = wlp.ShmFormatXbgr8888
)

// BytesPerPixel is 0 for formats whose layout is not known here.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatARGB8888, FormatXRGB8888, FormatABGR8888, FormatXBGR8888:
		return 4
	case FormatRGB565:
		return 2
	}
	return 0
}

func (f Format) String() string {
	switch f {
	case FormatARGB8888:
		return "ARGB8888"
	case FormatXRGB8888:
		return "XRGB8888"
	}
	// every other format is a fourcc code
	b := []byte{byte(f), byte(f >> 8), byte(f >> 16), byte(f >> 24)}
	for _, c := range b {
		if c < ' ' || c > '~' {
			return fmt.Sprintf("0x%08x", uint32(f))
		}
	}
	return string(b)
}

// Pool is a shared memory region both sides have mapped. Buffers are carved
// out of it with CreateBuffer.
type Pool struct {
	c     *Client
	proxy *wlp.ShmPool

	file    *os.File
	ownFile bool
	data    []byte
	size    int

	buffers   []*Buffer
	destroyed bool
}

// CreatePool maps size bytes of f and shares them with the compositor. The
// caller keeps ownership of f and may close it once the pool is destroyed.
func (c *Client) CreatePool(f *os.File, size int) (*Pool, error) {
	return c.createPool(f, size, false)
}

// CreateAnonymousPool creates a pool backed by a fresh memory file.
func (c *Client) CreateAnonymousPool(size int) (*Pool, error) {
	if size <= 0 || size > math.MaxInt32 {
		return nil, errors.Wrapf(ErrInvalidSize, "pool size %d", size)
	}
	f, err := c.anonymousFile(size)
	if err != nil {
		return nil, err
	}
	p, err := c.createPool(f, size, true)
	if err != nil {
		f.Close()
		return nil, err
	}
	return p, nil
}

func (c *Client) anonymousFile(size int) (*os.File, error) {
	var f *os.File
	fd, err := unix.MemfdCreate("wayland-shm", unix.MFD_CLOEXEC)
	if err == nil {
		f = os.NewFile(uintptr(fd), "wayland-shm")
	} else {
		Logger().Debug("memfd_create failed, using a temp file", zap.Error(err))
		f, err = os.CreateTemp(c.runtimeDir, "wl-shm-*")
		if err != nil {
			return nil, errors.Wrap(err, "unable to create backing file")
		}
		os.Remove(f.Name())
	}
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "unable to resize backing file")
	}
	return f, nil
}

func (c *Client) createPool(f *os.File, size int, own bool) (*Pool, error) {
	if f == nil {
		return nil, errors.New("pool file is nil")
	}
	if size <= 0 || size > math.MaxInt32 {
		return nil, errors.Wrapf(ErrInvalidSize, "pool size %d", size)
	}
	fi, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "unable to stat backing file")
	}
	if fi.Size() < int64(size) {
		return nil, errors.Wrapf(ErrInvalidSize, "backing file has %d bytes, pool needs %d", fi.Size(), size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrap(err, "unable to mmap backing file")
	}
	proxy, err := c.shm.CreatePool(f, int32(size))
	if err != nil {
		unix.Munmap(data)
		return nil, errors.Wrap(err, "unable to create shm pool")
	}
	return &Pool{
		c:       c,
		proxy:   proxy,
		file:    f,
		ownFile: own,
		data:    data,
		size:    size,
	}, nil
}

// Size is the mapped size in bytes.
func (p *Pool) Size() int {
	return p.size
}

// Bytes is the whole mapping. It is nil once the pool and all its buffers are
// destroyed, and slices taken before a Resize must not be used after it.
func (p *Pool) Bytes() []byte {
	return p.data
}

// CreateBuffer carves a width x height buffer starting offset bytes into the
// pool.
func (p *Pool) CreateBuffer(offset, width, height, stride int32, format Format) (*Buffer, error) {
	if p.destroyed {
		return nil, errors.New("pool is destroyed")
	}
	if !p.c.formats[format] {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%s was not advertised", format)
	}
	bpp := format.BytesPerPixel()
	if bpp == 0 {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%s has no known layout", format)
	}
	if offset < 0 || width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrOutOfBounds, "offset %d, size %dx%d", offset, width, height)
	}
	if int64(stride) < int64(width)*int64(bpp) {
		return nil, errors.Wrapf(ErrOutOfBounds, "stride %d is too small for %d pixels of %s", stride, width, format)
	}
	if end := int64(offset) + int64(stride)*int64(height); end > int64(p.size) {
		return nil, errors.Wrapf(ErrOutOfBounds, "buffer ends at byte %d, pool has %d", end, p.size)
	}

	proxy, err := p.proxy.CreateBuffer(offset, width, height, stride, uint32(format))
	if err != nil {
		return nil, errors.Wrap(err, "unable to create buffer")
	}
	b := &Buffer{
		pool:   p,
		proxy:  proxy,
		offset: int(offset),
		width:  int(width),
		height: int(height),
		stride: int(stride),
		format: format,
	}
	proxy.SetListener(&bufferCb{b: b})
	p.buffers = append(p.buffers, b)
	return b, nil
}

// FreeOffset returns the lowest offset at which size bytes overlap no busy
// buffer. The result may lie beyond Size, in which case the pool has to be
// resized first.
func (p *Pool) FreeOffset(size int) int {
	offset := 0
	for moved := true; moved; {
		moved = false
		for _, b := range p.buffers {
			end := b.offset + b.stride*b.height
			if b.busy && offset < end && b.offset < offset+size {
				offset = end
				moved = true
			}
		}
	}
	return offset
}

func (p *Pool) forget(b *Buffer) {
	for i, o := range p.buffers {
		if o == b {
			p.buffers = append(p.buffers[:i], p.buffers[i+1:]...)
			break
		}
	}
	p.unmapIfUnused()
}

// Resize grows the pool to size bytes. Pools never shrink.
func (p *Pool) Resize(size int) error {
	if p.destroyed {
		return errors.New("pool is destroyed")
	}
	if size <= p.size || size > math.MaxInt32 {
		return errors.Wrapf(ErrInvalidSize, "pool can only grow (%d -> %d)", p.size, size)
	}
	fi, err := p.file.Stat()
	if err != nil {
		return errors.Wrap(err, "unable to stat backing file")
	}
	if fi.Size() < int64(size) {
		if err := p.file.Truncate(int64(size)); err != nil {
			return errors.Wrap(err, "unable to grow backing file")
		}
	}
	data, err := unix.Mmap(int(p.file.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return errors.Wrap(err, "unable to mmap backing file")
	}
	if err := p.proxy.Resize(int32(size)); err != nil {
		unix.Munmap(data)
		return errors.Wrap(err, "unable to resize shm pool")
	}
	unix.Munmap(p.data)
	p.data = data
	p.size = size
	return nil
}

// Destroy destroys the pool. The memory stays mapped until the last buffer
// carved from it is destroyed.
func (p *Pool) Destroy() error {
	if p.destroyed {
		return nil
	}
	if err := p.proxy.Destroy(); err != nil {
		return errors.Wrap(err, "unable to destroy shm pool")
	}
	p.destroyed = true
	p.unmapIfUnused()
	return nil
}

func (p *Pool) unmapIfUnused() {
	if !p.destroyed || len(p.buffers) > 0 || p.data == nil {
		return
	}
	if err := unix.Munmap(p.data); err != nil {
		Logger().Warn("unable to unmap pool", zap.Error(err))
	}
	p.data = nil
	if p.ownFile {
		p.file.Close()
	}
}
