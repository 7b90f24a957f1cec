package wl_test

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/elliotmr/wayclient/internal/wltest"
	"github.com/elliotmr/wayclient/wl"
	"github.com/elliotmr/wayclient/wl/wlp"
)

func TestConfig_SocketPath(t *testing.T) {
	for _, tc := range []struct {
		name string
		cfg  wl.Config
		want string
	}{
		{"default", wl.Config{RuntimeDir: "/run/user/1000"}, "/run/user/1000/wayland-0"},
		{"named", wl.Config{Display: "wayland-1", RuntimeDir: "/run/user/1000"}, "/run/user/1000/wayland-1"},
		{"absolute", wl.Config{Display: "/tmp/compositor"}, "/tmp/compositor"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			path, err := tc.cfg.SocketPath()
			require.NoError(t, err)
			assert.Equal(t, tc.want, path)
		})
	}

	_, err := wl.Config{Display: "wayland-1"}.SocketPath()
	assert.True(t, errors.Is(err, wlp.ErrConnection), "got %v", err)
}

func TestConfig_FromEnv(t *testing.T) {
	t.Setenv("WAYLAND_DISPLAY", "wayland-7")
	t.Setenv("WAYLAND_SOCKET", "")
	os.Unsetenv("WAYLAND_SOCKET")

	cfg, err := wl.ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "wayland-7", cfg.Display)
	assert.Nil(t, cfg.Socket)

	t.Setenv("WAYLAND_SOCKET", "not-a-number")
	_, err = wl.ConfigFromEnv()
	assert.True(t, errors.Is(err, wlp.ErrConnection), "got %v", err)
	_, set := os.LookupEnv("WAYLAND_SOCKET")
	assert.False(t, set)
}

func TestConfig_InheritedSocket(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	require.NoError(t, err)
	defer unix.Close(fds[0])

	t.Setenv("WAYLAND_SOCKET", strconv.Itoa(fds[1]))
	cfg, err := wl.ConfigFromEnv()
	require.NoError(t, err)
	require.NotNil(t, cfg.Socket)

	conn, err := cfg.Dial()
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("ping"))
	require.NoError(t, err)
	buf := make([]byte, 4)
	n, err := unix.Read(fds[0], buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf[:n]))
}

func TestConfig_DialMissing(t *testing.T) {
	cfg := wl.Config{Display: "nope", RuntimeDir: t.TempDir()}
	_, err := cfg.Dial()
	assert.True(t, errors.Is(err, wlp.ErrConnection), "got %v", err)
}

func TestConnect(t *testing.T) {
	dir := t.TempDir()
	l, err := net.ListenUnix("unix", &net.UnixAddr{Name: filepath.Join(dir, "wayland-test"), Net: "unix"})
	require.NoError(t, err)
	defer l.Close()

	// hand the accepted socket to a test compositor
	accepted := make(chan *net.UnixConn, 1)
	go func() {
		conn, err := l.AcceptUnix()
		if err != nil {
			close(accepted)
			return
		}
		accepted <- conn
	}()

	done := make(chan error, 1)
	var c *wl.Client
	go func() {
		var err error
		c, err = wl.Connect(wl.Config{Display: "wayland-test", RuntimeDir: dir})
		done <- err
	}()

	conn, ok := <-accepted
	require.True(t, ok)
	srv, err := wltest.Serve(conn, wltest.DefaultOptions())
	require.NoError(t, err)
	defer srv.Close()

	require.NoError(t, <-done)
	defer c.Close()
	assert.True(t, c.HasShell())
}
