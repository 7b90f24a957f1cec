package wl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elliotmr/wayclient/internal/wltest"
	"github.com/elliotmr/wayclient/wl"
)

var surfaceRequests = []string{
	"wl_surface.attach",
	"wl_surface.damage",
	"wl_surface.damage_buffer",
	"wl_surface.set_buffer_scale",
	"wl_surface.frame",
	"wl_surface.commit",
}

func TestSurface_HeldUntilCommit(t *testing.T) {
	c, srv := newClient(t, wltest.DefaultOptions())
	s, err := c.CreateSurface()
	require.NoError(t, err)
	buf := newBuffer(t, c, 4, 4, 16, wl.FormatARGB8888)

	require.NoError(t, s.DamageBuffer(0, 0, 4, 4))
	require.NoError(t, s.SetBufferScale(2))
	var done int
	require.NoError(t, s.Frame(func(uint32) { done++ }))
	require.NoError(t, s.Damage(0, 0, 2, 2))
	require.NoError(t, s.Attach(buf, 0, 0))
	require.NoError(t, c.Roundtrip())
	assert.Empty(t, srv.Requests(surfaceRequests...))

	require.NoError(t, s.Commit())
	require.NoError(t, c.Roundtrip())
	assert.Equal(t, []string{
		"wl_surface.attach",
		"wl_surface.damage_buffer",
		"wl_surface.damage",
		"wl_surface.set_buffer_scale",
		"wl_surface.frame",
		"wl_surface.commit",
	}, requestNames(srv, surfaceRequests...))
	assert.Equal(t, 1, done)
	assert.Equal(t, buf, s.Buffer())

	// sent requests are not repeated
	require.NoError(t, s.Commit())
	require.NoError(t, c.Roundtrip())
	assert.Len(t, srv.Requests(surfaceRequests...), 7)
	assert.NoError(t, srv.Err())
}

func TestSurface_DestroyedBuffer(t *testing.T) {
	c, srv := newClient(t, wltest.DefaultOptions())
	s, err := c.CreateSurface()
	require.NoError(t, err)
	buf := newBuffer(t, c, 4, 4, 16, wl.FormatARGB8888)

	require.NoError(t, s.Attach(buf, 0, 0))
	require.NoError(t, buf.Destroy())
	assert.Error(t, s.Commit())
	require.NoError(t, c.Roundtrip())
	assert.Empty(t, srv.Requests("wl_surface.attach", "wl_surface.commit"))

	require.NoError(t, s.Attach(nil, 0, 0))
	require.NoError(t, s.Commit())
	require.NoError(t, c.Roundtrip())
	assert.Nil(t, s.Buffer())
	assert.NoError(t, c.Err())
	assert.NoError(t, srv.Err())
}
