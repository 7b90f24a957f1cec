// Command wlhello opens a window filled with a single color and keeps it up
// until the compositor closes it.
package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/elliotmr/wayclient/event"
	"github.com/elliotmr/wayclient/wl"
)

var cli struct {
	Verbose bool   `short:"v" help:"Log client activity."`
	Debug   bool   `short:"d" help:"Log every protocol message."`
	Display string `short:"D" help:"Compositor socket, overrides WAYLAND_DISPLAY." placeholder:"NAME"`
	Title   string `default:"hello" help:"Window title."`
	Color   string `default:"#3366cc" help:"Fill color as #rrggbb."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("wlhello"),
		kong.Description("Show a window on a wayland compositor."),
		kong.UsageOnError(),
	)

	log := newLogger()
	defer log.Sync()

	if err := run(log); err != nil {
		log.Error("wlhello failed", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	switch {
	case cli.Debug:
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case cli.Verbose:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func parseColor(s string) (color.RGBA, error) {
	c := color.RGBA{A: 0xff}
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, errors.Wrapf(err, "invalid color %q", s)
	}
	return c, nil
}

type app struct {
	c    *wl.Client
	w    *wl.Window
	fill color.RGBA
	log  *zap.Logger

	pool  *wl.Pool
	shown *wl.Buffer
}

func run(log *zap.Logger) error {
	fill, err := parseColor(cli.Color)
	if err != nil {
		return err
	}

	cfg, err := wl.ConfigFromEnv()
	if err != nil {
		return err
	}
	if cli.Display != "" {
		cfg.Display = cli.Display
	}
	cfg.Logger = log
	c, err := wl.Connect(cfg)
	if err != nil {
		return err
	}
	defer c.Close()
	log.Info("connected", zap.String("seat", c.SeatName()), zap.Stringers("formats", c.Formats()))

	a := &app{c: c, fill: fill, log: log}
	a.w, err = c.CreateWindow(wl.WindowEvents(event.HandlerFunc(a.handle)))
	if err != nil {
		return err
	}
	if err := a.w.SetTitle(cli.Title); err != nil {
		return err
	}
	if err := a.w.Surface().SetPointerListener(event.HandlerFunc(a.handle)); err != nil {
		return err
	}
	if err := a.w.Commit(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	err = c.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *app) handle(ev event.Event) {
	switch e := ev.(type) {
	case event.WindowStateChangeEvent:
		if err := a.draw(int(e.Width), int(e.Height)); err != nil {
			a.log.Error("unable to draw", zap.Error(err))
			a.c.Stop()
		}
	case event.WindowCloseEvent:
		a.c.Stop()
	case event.MouseEnterEvent:
		a.setCursor()
	case event.MouseButtonEvent:
		if e.Pressed && e.Button == event.ButtonLeft {
			if err := a.w.Move(e.Serial); err != nil {
				a.log.Warn("unable to move window", zap.Error(err))
			}
		}
	}
}

// draw shows a width x height buffer. A buffer the compositor still reads is
// left alone: the new one goes to a free part of the pool and the old one is
// destroyed on release.
func (a *app) draw(width, height int) error {
	if width == 0 {
		width = 320
	}
	if height == 0 {
		height = 240
	}
	if a.shown != nil && a.shown.Width() == width && a.shown.Height() == height {
		return a.w.Commit()
	}

	stride := width * 4
	size := stride * height
	var offset int
	if a.pool == nil {
		pool, err := a.c.CreateAnonymousPool(size)
		if err != nil {
			return err
		}
		a.pool = pool
	} else if offset = a.pool.FreeOffset(size); a.pool.Size() < offset+size {
		if err := a.pool.Resize(offset + size); err != nil {
			return err
		}
	}

	buf, err := a.pool.CreateBuffer(int32(offset), int32(width), int32(height), int32(stride), wl.FormatARGB8888)
	if err != nil {
		return err
	}
	buf.OnRelease(func(b *wl.Buffer) {
		if b != a.shown {
			b.Destroy()
		}
	})
	if err := buf.Fill(a.fill); err != nil {
		return err
	}
	if err := a.w.Attach(buf, 0, 0); err != nil {
		return err
	}
	if err := a.w.Surface().Damage(0, 0, int32(width), int32(height)); err != nil {
		return err
	}
	if err := a.w.Commit(); err != nil {
		return err
	}
	if old := a.shown; old != nil && !old.Busy() {
		old.Destroy()
	}
	a.shown = buf
	return nil
}

func (a *app) setCursor() {
	p, err := a.c.Pointer()
	if err != nil {
		return
	}
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x <= y; x++ {
			img.Set(x, y, color.Black)
		}
	}
	if err := p.SetCursorImage(img, 0, 0); err != nil {
		a.log.Warn("unable to set cursor", zap.Error(err))
	}
}
