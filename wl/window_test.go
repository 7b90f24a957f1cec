package wl_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elliotmr/wayclient/event"
	"github.com/elliotmr/wayclient/internal/wltest"
	"github.com/elliotmr/wayclient/wl"
	"github.com/elliotmr/wayclient/wl/wlp"
)

type windowRecorder struct {
	configs []wl.Configure
	closes  int
}

func (r *windowRecorder) Configure(w *wl.Window, cfg wl.Configure) {
	r.configs = append(r.configs, cfg)
}

func (r *windowRecorder) Close(w *wl.Window) {
	r.closes++
}

func requestNames(srv *wltest.Server, names ...string) []string {
	var out []string
	for _, r := range srv.Requests(names...) {
		out = append(out, r.Name)
	}
	return out
}

func TestWindow_Handshake(t *testing.T) {
	c, srv := newClient(t, wltest.DefaultOptions())
	rec := &windowRecorder{}

	w, err := c.CreateWindow(rec)
	require.NoError(t, err)
	assert.Equal(t, wl.StateCreated, w.State())
	require.NoError(t, w.SetTitle("hello"))

	require.NoError(t, w.Commit())
	assert.Equal(t, wl.StateAwaitingAck, w.State())
	require.NoError(t, c.Roundtrip())

	require.Len(t, rec.configs, 1)
	cfg := rec.configs[0]
	assert.Equal(t, int32(200), cfg.Width)
	assert.Equal(t, int32(200), cfg.Height)
	assert.Equal(t, wl.States{}, cfg.States)

	require.NoError(t, w.AckConfigure(cfg.Serial))
	assert.Equal(t, wl.StateReady, w.State())
	assert.Equal(t, cfg, w.Current())

	pool, err := c.CreateAnonymousPool(200 * 200 * 4)
	require.NoError(t, err)
	assert.Equal(t, 160000, pool.Size())
	buf, err := pool.CreateBuffer(0, 200, 200, 800, wl.FormatARGB8888)
	require.NoError(t, err)
	require.NoError(t, w.Attach(buf, 0, 0))
	require.NoError(t, w.Surface().Damage(0, 0, 200, 200))
	require.NoError(t, w.Commit())
	assert.Equal(t, wl.StateCommitted, w.State())

	require.NoError(t, c.Roundtrip())
	assert.NoError(t, c.Err())
	assert.NoError(t, srv.Err())
	assert.Equal(t, []string{
		"wl_surface.commit",
		"zxdg_surface_v6.ack_configure",
		"wl_surface.attach",
		"wl_surface.damage",
		"wl_surface.commit",
	}, requestNames(srv, "wl_surface.commit", "zxdg_surface_v6.ack_configure", "wl_surface.attach", "wl_surface.damage"))
}

func TestWindow_PrematureCommit(t *testing.T) {
	c, srv := newClient(t, wltest.DefaultOptions())
	rec := &windowRecorder{}
	w, err := c.CreateWindow(rec)
	require.NoError(t, err)
	buf := newBuffer(t, c, 10, 10, 40, wl.FormatARGB8888)

	// staged before the first configure
	require.NoError(t, w.Attach(buf, 0, 0))
	require.NoError(t, w.Surface().Damage(0, 0, 10, 10))
	err = w.Commit()
	assert.True(t, errors.Is(err, wl.ErrPrematureCommit), "got %v", err)
	assert.Equal(t, wl.StateCreated, w.State())
	assert.False(t, buf.Busy())

	require.NoError(t, c.Roundtrip())
	assert.Empty(t, srv.Requests("wl_surface.attach", "wl_surface.damage", "wl_surface.commit"))

	// a configure that has not been acked yet does not help
	require.NoError(t, w.Attach(nil, 0, 0))
	require.NoError(t, w.Commit())
	require.NoError(t, c.Roundtrip())
	require.Len(t, rec.configs, 1)
	require.NoError(t, w.Attach(buf, 0, 0))
	err = w.Commit()
	assert.True(t, errors.Is(err, wl.ErrPrematureCommit), "got %v", err)

	require.NoError(t, w.AckConfigure(rec.configs[0].Serial))
	require.NoError(t, w.Commit())
	require.NoError(t, c.Roundtrip())
	assert.NoError(t, srv.Err())
}

func TestWindow_UnknownSerial(t *testing.T) {
	c, srv := newClient(t, wltest.DefaultOptions())
	rec := &windowRecorder{}
	w, err := c.CreateWindow(rec)
	require.NoError(t, err)

	err = w.AckConfigure(12345)
	assert.True(t, errors.Is(err, wl.ErrUnknownSerial), "got %v", err)

	require.NoError(t, w.Commit())
	require.NoError(t, c.Roundtrip())
	require.Len(t, rec.configs, 1)
	serial := rec.configs[0].Serial

	require.NoError(t, w.AckConfigure(serial))
	// the same serial cannot be acked twice
	err = w.AckConfigure(serial)
	assert.True(t, errors.Is(err, wl.ErrUnknownSerial), "got %v", err)

	require.NoError(t, c.Roundtrip())
	assert.Len(t, srv.Requests("zxdg_surface_v6.ack_configure"), 1)
	assert.NoError(t, srv.Err())
}

func TestWindow_LatestConfigureWins(t *testing.T) {
	c, srv := newClient(t, wltest.DefaultOptions())
	rec := &windowRecorder{}
	w, err := c.CreateWindow(rec)
	require.NoError(t, err)
	require.NoError(t, w.Commit())
	require.NoError(t, c.Roundtrip())
	require.NoError(t, w.AckConfigure(rec.configs[0].Serial))

	older, err := srv.Configure(300, 300, wlp.ZxdgToplevelV6StateResizing)
	require.NoError(t, err)
	newer, err := srv.Configure(400, 300, wlp.ZxdgToplevelV6StateMaximized, wlp.ZxdgToplevelV6StateActivated)
	require.NoError(t, err)
	require.NoError(t, c.Roundtrip())
	require.Len(t, rec.configs, 3)
	assert.True(t, rec.configs[1].States.Resizing)
	assert.Equal(t, wl.StateAwaitingAck, w.State())

	require.NoError(t, w.AckConfigure(newer))
	assert.Equal(t, wl.StateReady, w.State())
	cur := w.Current()
	assert.Equal(t, int32(400), cur.Width)
	assert.Equal(t, wl.States{Maximized: true, Activated: true}, cur.States)

	err = w.AckConfigure(older)
	assert.True(t, errors.Is(err, wl.ErrUnknownSerial), "got %v", err)

	require.NoError(t, c.Roundtrip())
	acks := srv.Requests("zxdg_surface_v6.ack_configure")
	require.Len(t, acks, 2)
	assert.Equal(t, newer, acks[1].Word(0))
	assert.NoError(t, srv.Err())
}

func TestWindow_AutoAck(t *testing.T) {
	c, srv := newClient(t, wltest.DefaultOptions())
	w, err := c.CreateWindow(nil)
	require.NoError(t, err)

	require.NoError(t, w.Commit())
	require.NoError(t, c.Roundtrip())
	assert.Equal(t, wl.StateReady, w.State())
	assert.Equal(t, int32(200), w.Current().Width)

	require.NoError(t, c.Roundtrip())
	assert.Len(t, srv.Requests("zxdg_surface_v6.ack_configure"), 1)
}

func TestWindow_Close(t *testing.T) {
	c, srv := newClient(t, wltest.DefaultOptions())
	rec := &windowRecorder{}
	w, err := c.CreateWindow(rec)
	require.NoError(t, err)
	require.NoError(t, c.Roundtrip())

	require.NoError(t, srv.CloseToplevel())
	require.NoError(t, c.Roundtrip())
	assert.True(t, w.Closed())
	assert.Equal(t, 1, rec.closes)

	// closing is only a request
	assert.Len(t, srv.Objects("zxdg_toplevel_v6"), 1)
	require.NoError(t, w.Destroy())
	require.NoError(t, c.Roundtrip())
	assert.Equal(t, []string{
		"zxdg_toplevel_v6.destroy",
		"zxdg_surface_v6.destroy",
		"wl_surface.destroy",
	}, requestNames(srv, "zxdg_toplevel_v6.destroy", "zxdg_surface_v6.destroy", "wl_surface.destroy"))
	assert.Empty(t, srv.Objects("zxdg_toplevel_v6"))
}

func TestWindow_Events(t *testing.T) {
	c, srv := newClient(t, wltest.DefaultOptions())
	q := &event.Queue{}
	w, err := c.CreateWindow(wl.WindowEvents(q))
	require.NoError(t, err)

	require.NoError(t, w.Commit())
	require.NoError(t, c.Roundtrip())
	assert.Equal(t, wl.StateReady, w.State())

	ev, ok := q.Poll()
	require.True(t, ok)
	sc, ok := ev.(event.WindowStateChangeEvent)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, uint32(w.Surface().ID()), sc.Window)
	assert.Equal(t, int32(200), sc.Width)

	require.NoError(t, srv.CloseToplevel())
	require.NoError(t, c.Roundtrip())
	ev, ok = q.Poll()
	require.True(t, ok)
	assert.Equal(t, uint32(event.WindowClose), ev.Type())
}

func TestWindow_Requests(t *testing.T) {
	c, srv := newClient(t, wltest.DefaultOptions())
	w, err := c.CreateWindow(nil)
	require.NoError(t, err)

	require.NoError(t, w.SetAppID("org.example.hello"))
	require.NoError(t, w.SetMinSize(100, 100))
	require.NoError(t, w.SetMaxSize(800, 600))
	require.NoError(t, w.SetMaximized())
	require.NoError(t, w.UnsetMaximized())
	require.NoError(t, w.SetFullscreen())
	require.NoError(t, w.UnsetFullscreen())
	require.NoError(t, w.SetMinimized())
	require.NoError(t, w.SetWindowGeometry(0, 0, 100, 100))
	require.NoError(t, w.Move(101))
	require.NoError(t, c.Roundtrip())

	assert.Equal(t, []string{
		"zxdg_toplevel_v6.set_app_id",
		"zxdg_toplevel_v6.set_min_size",
		"zxdg_toplevel_v6.set_max_size",
		"zxdg_toplevel_v6.set_maximized",
		"zxdg_toplevel_v6.unset_maximized",
		"zxdg_toplevel_v6.set_fullscreen",
		"zxdg_toplevel_v6.unset_fullscreen",
		"zxdg_toplevel_v6.set_minimized",
		"zxdg_surface_v6.set_window_geometry",
		"zxdg_toplevel_v6.move",
	}, requestNames(srv,
		"zxdg_toplevel_v6.set_app_id",
		"zxdg_toplevel_v6.set_min_size",
		"zxdg_toplevel_v6.set_max_size",
		"zxdg_toplevel_v6.set_maximized",
		"zxdg_toplevel_v6.unset_maximized",
		"zxdg_toplevel_v6.set_fullscreen",
		"zxdg_toplevel_v6.unset_fullscreen",
		"zxdg_toplevel_v6.set_minimized",
		"zxdg_surface_v6.set_window_geometry",
		"zxdg_toplevel_v6.move",
	))
	move := srv.Requests("zxdg_toplevel_v6.move")[0]
	assert.Equal(t, uint32(srv.Last("wl_seat")), move.Word(0))
	assert.Equal(t, uint32(101), move.Word(1))
}

func TestSurface_Frame(t *testing.T) {
	c, _ := newClient(t, wltest.DefaultOptions())
	s, err := c.CreateSurface()
	require.NoError(t, err)

	var times []uint32
	require.NoError(t, s.Frame(func(time uint32) { times = append(times, time) }))
	require.NoError(t, s.Commit())
	require.NoError(t, c.Roundtrip())
	assert.Len(t, times, 1)

	require.NoError(t, s.Commit())
	require.NoError(t, c.Roundtrip())
	assert.Len(t, times, 1)
}
