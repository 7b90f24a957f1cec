package wl

import (
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/elliotmr/wayclient/wl/wlp"
)

const defaultDisplay = "wayland-0"

// Config says where the compositor is.
type Config struct {
	// Display is a socket name relative to RuntimeDir or an absolute path.
	// Empty means wayland-0.
	Display string

	RuntimeDir string

	// Socket is an already connected socket handed down by the parent
	// process. It takes precedence over Display.
	Socket *os.File

	Logger *zap.Logger
}

// ConfigFromEnv reads WAYLAND_SOCKET, WAYLAND_DISPLAY and the XDG runtime
// directory. WAYLAND_SOCKET is removed from the environment so that child
// processes do not inherit it.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Display:    os.Getenv("WAYLAND_DISPLAY"),
		RuntimeDir: xdg.RuntimeDir,
	}
	if v, ok := os.LookupEnv("WAYLAND_SOCKET"); ok {
		os.Unsetenv("WAYLAND_SOCKET")
		fd, err := strconv.Atoi(v)
		if err != nil || fd < 0 {
			return cfg, errors.Wrapf(wlp.ErrConnection, "invalid WAYLAND_SOCKET %q", v)
		}
		cfg.Socket = os.NewFile(uintptr(fd), "wayland-socket")
	}
	return cfg, nil
}

// SocketPath resolves the socket the config points at.
func (cfg Config) SocketPath() (string, error) {
	name := cfg.Display
	if name == "" {
		name = defaultDisplay
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	if cfg.RuntimeDir == "" {
		return "", errors.Wrap(wlp.ErrConnection, "XDG_RUNTIME_DIR is not set in environment")
	}
	return filepath.Join(cfg.RuntimeDir, name), nil
}

// Dial opens the connection described by cfg.
func (cfg Config) Dial() (*net.UnixConn, error) {
	if cfg.Socket != nil {
		defer cfg.Socket.Close()
		c, err := net.FileConn(cfg.Socket)
		if err != nil {
			return nil, errors.Wrapf(wlp.ErrConnection, "unable to use inherited socket: %v", err)
		}
		uc, ok := c.(*net.UnixConn)
		if !ok {
			c.Close()
			return nil, errors.Wrap(wlp.ErrConnection, "inherited socket is not a unix socket")
		}
		return uc, nil
	}

	path, err := cfg.SocketPath()
	if err != nil {
		return nil, err
	}
	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return nil, errors.Wrapf(wlp.ErrConnection, "unable to resolve unix socket address (%s): %v", path, err)
	}
	conn, err := net.DialUnix("unix", nil, addr)
	if err != nil {
		return nil, errors.Wrapf(wlp.ErrConnection, "unable to connect to wayland server at (%s): %v", path, err)
	}
	return conn, nil
}
