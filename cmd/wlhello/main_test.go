package main

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elliotmr/wayclient/internal/wltest"
	"github.com/elliotmr/wayclient/wl"
)

func TestParseColor(t *testing.T) {
	c, err := parseColor("#3366cc")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x33, G: 0x66, B: 0xcc, A: 0xff}, c)

	_, err = parseColor("blue")
	assert.Error(t, err)
}

func TestApp_DrawKeepsBusyBuffer(t *testing.T) {
	srv := wltest.New(t, wltest.DefaultOptions())
	c, err := wl.NewClient(srv.ClientConn())
	require.NoError(t, err)
	defer c.Close()

	a := &app{c: c, fill: color.RGBA{R: 0xff, A: 0xff}, log: zap.NewNop()}
	a.w, err = c.CreateWindow(nil)
	require.NoError(t, err)
	require.NoError(t, a.w.Commit())
	require.NoError(t, c.Roundtrip())

	require.NoError(t, a.draw(4, 4))
	first := a.shown
	firstBytes := append([]byte(nil), first.Bytes()...)

	a.fill = color.RGBA{B: 0xff, A: 0xff}
	require.NoError(t, a.draw(8, 8))
	assert.NotSame(t, first, a.shown)
	assert.Equal(t, firstBytes, first.Bytes())

	require.NoError(t, c.Roundtrip())
	buffers := srv.Requests("wl_shm_pool.create_buffer")
	require.Len(t, buffers, 2)
	assert.Equal(t, uint32(0), buffers[0].Word(1))
	assert.Equal(t, uint32(64), buffers[1].Word(1))

	require.NoError(t, srv.Release(first.ID()))
	require.NoError(t, c.Roundtrip())
	require.NoError(t, c.Roundtrip())
	assert.Len(t, srv.Objects("wl_buffer"), 1)
	assert.NoError(t, srv.Err())
}
