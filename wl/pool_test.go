package wl_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elliotmr/wayclient/internal/wltest"
	"github.com/elliotmr/wayclient/wl"
)

func backingFile(t *testing.T, size int64) *os.File {
	t.Helper()
	f, err := os.Create(filepath.Join(t.TempDir(), "pool"))
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	t.Cleanup(func() { f.Close() })
	return f
}

func TestPool_CreateBufferBounds(t *testing.T) {
	c, srv := newClient(t, wltest.DefaultOptions())

	pool, err := c.CreatePool(backingFile(t, 100), 100)
	require.NoError(t, err)
	assert.Equal(t, 100, pool.Size())
	assert.Len(t, pool.Bytes(), 100)

	for _, tc := range []struct {
		name                          string
		offset, width, height, stride int32
	}{
		{"past end", 0, 10, 20, 40},
		{"negative offset", -4, 1, 1, 4},
		{"zero width", 0, 0, 1, 4},
		{"zero height", 0, 1, 0, 4},
		{"short stride", 0, 5, 1, 16},
		{"offset past end", 96, 1, 2, 4},
		{"overflow", 4, 1 << 30, 1 << 30, 1 << 31 - 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := pool.CreateBuffer(tc.offset, tc.width, tc.height, tc.stride, wl.FormatARGB8888)
			assert.True(t, errors.Is(err, wl.ErrOutOfBounds), "got %v", err)
		})
	}

	buf, err := pool.CreateBuffer(0, 5, 5, 20, wl.FormatARGB8888)
	require.NoError(t, err)
	assert.Len(t, buf.Bytes(), 100)

	require.NoError(t, c.Roundtrip())
	created := srv.Requests("wl_shm_pool.create_buffer")
	require.Len(t, created, 1)
	assert.Equal(t, uint32(5), created[0].Word(2))
	assert.Equal(t, uint32(20), created[0].Word(4))
	assert.Equal(t, uint32(wl.FormatARGB8888), created[0].Word(5))
}

func TestPool_UnsupportedFormat(t *testing.T) {
	c, _ := newClient(t, wltest.DefaultOptions())
	pool, err := c.CreateAnonymousPool(64)
	require.NoError(t, err)

	_, err = pool.CreateBuffer(0, 4, 4, 8, wl.FormatRGB565)
	assert.True(t, errors.Is(err, wl.ErrUnsupportedFormat), "got %v", err)

	opts := wltest.DefaultOptions()
	opts.Formats = append(opts.Formats, 0x34325258) // XR24 fourcc, layout unknown here
	c, _ = newClient(t, opts)
	pool, err = c.CreateAnonymousPool(64)
	require.NoError(t, err)
	_, err = pool.CreateBuffer(0, 4, 4, 16, wl.Format(0x34325258))
	assert.True(t, errors.Is(err, wl.ErrUnsupportedFormat), "got %v", err)
}

func TestPool_InvalidSize(t *testing.T) {
	c, _ := newClient(t, wltest.DefaultOptions())

	_, err := c.CreatePool(backingFile(t, 100), 0)
	assert.True(t, errors.Is(err, wl.ErrInvalidSize), "got %v", err)
	_, err = c.CreatePool(backingFile(t, 100), 200)
	assert.True(t, errors.Is(err, wl.ErrInvalidSize), "got %v", err)
	_, err = c.CreateAnonymousPool(-1)
	assert.True(t, errors.Is(err, wl.ErrInvalidSize), "got %v", err)
}

func TestPool_SendsDescriptor(t *testing.T) {
	c, srv := newClient(t, wltest.DefaultOptions())

	_, err := c.CreateAnonymousPool(4096)
	require.NoError(t, err)
	require.NoError(t, c.Roundtrip())

	pools := srv.Requests("wl_shm.create_pool")
	require.Len(t, pools, 1)
	assert.Equal(t, uint32(4096), pools[0].Word(1))
	require.NotNil(t, pools[0].File)
	fi, err := pools[0].File.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(4096), fi.Size())
}

func TestPool_Resize(t *testing.T) {
	c, srv := newClient(t, wltest.DefaultOptions())

	pool, err := c.CreateAnonymousPool(64)
	require.NoError(t, err)
	pool.Bytes()[0] = 0x5a

	require.NoError(t, pool.Resize(128))
	assert.Equal(t, 128, pool.Size())
	assert.Len(t, pool.Bytes(), 128)
	assert.Equal(t, byte(0x5a), pool.Bytes()[0])

	err = pool.Resize(64)
	assert.True(t, errors.Is(err, wl.ErrInvalidSize), "got %v", err)

	buf, err := pool.CreateBuffer(64, 4, 4, 16, wl.FormatXRGB8888)
	require.NoError(t, err)
	assert.Len(t, buf.Bytes(), 64)

	require.NoError(t, c.Roundtrip())
	resizes := srv.Requests("wl_shm_pool.resize")
	require.Len(t, resizes, 1)
	assert.Equal(t, uint32(128), resizes[0].Word(0))
}

func TestPool_DestroyKeepsBuffers(t *testing.T) {
	c, srv := newClient(t, wltest.DefaultOptions())

	pool, err := c.CreateAnonymousPool(64)
	require.NoError(t, err)
	buf, err := pool.CreateBuffer(0, 4, 4, 16, wl.FormatARGB8888)
	require.NoError(t, err)

	require.NoError(t, pool.Destroy())
	assert.NotNil(t, pool.Bytes())
	assert.NotNil(t, buf.Bytes())
	_, err = pool.CreateBuffer(0, 1, 1, 4, wl.FormatARGB8888)
	assert.Error(t, err)

	require.NoError(t, buf.Destroy())
	assert.Nil(t, pool.Bytes())
	assert.NoError(t, buf.Destroy())
	assert.NoError(t, pool.Destroy())

	require.NoError(t, c.Roundtrip())
	assert.Len(t, srv.Requests("wl_shm_pool.destroy"), 1)
	assert.Len(t, srv.Requests("wl_buffer.destroy"), 1)
	assert.Empty(t, srv.Objects("wl_buffer"))
}

func TestPool_FreeOffset(t *testing.T) {
	c, srv := newClient(t, wltest.DefaultOptions())
	pool, err := c.CreateAnonymousPool(128)
	require.NoError(t, err)
	s, err := c.CreateSurface()
	require.NoError(t, err)

	a, err := pool.CreateBuffer(0, 4, 4, 16, wl.FormatARGB8888)
	require.NoError(t, err)
	assert.Equal(t, 0, pool.FreeOffset(64))

	require.NoError(t, s.Attach(a, 0, 0))
	require.NoError(t, s.Commit())
	assert.Equal(t, 64, pool.FreeOffset(64))
	assert.Equal(t, 64, pool.FreeOffset(16))

	b, err := pool.CreateBuffer(64, 4, 4, 16, wl.FormatARGB8888)
	require.NoError(t, err)
	require.NoError(t, s.Attach(b, 0, 0))
	require.NoError(t, s.Commit())
	assert.Equal(t, 128, pool.FreeOffset(64))

	require.NoError(t, srv.Release(a.ID()))
	require.NoError(t, c.Roundtrip())
	assert.Equal(t, 0, pool.FreeOffset(64))
	assert.Equal(t, 128, pool.FreeOffset(65))
}
