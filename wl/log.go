package wl

import (
	"sync"

	"go.uber.org/zap"

	"github.com/elliotmr/wayclient/wl/wlp"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the client logger, a no-op logger until SetLogger is called.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger replaces the logger of this package and of the protocol layer.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerOnce.Do(func() {})
	logger = l
	wlp.SetLogger(l.Named("wlp"))
}
