package wlp

import (
	"encoding/hex"
	"sync"

	"github.com/serenize/snaker"
	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the protocol logger. It is a no-op logger unless SetLogger
// has been called.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger replaces the protocol logger. Call it before connecting.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerOnce.Do(func() {})
	logger = l
}

// wireName turns a Go method name into the protocol message name, for example
// (KindSurface, "DamageBuffer") -> "wl_surface.damage_buffer".
func wireName(k Kind, method string) string {
	return k.String() + "." + snaker.CamelToSnake(method)
}

func logRequest(o Object, method string, payload []byte) {
	if ce := Logger().Check(zap.DebugLevel, "request"); ce != nil {
		ce.Write(
			zap.String("name", wireName(o.Kind(), method)),
			zap.Uint32("id", uint32(o.ID())),
			zap.String("payload", hex.EncodeToString(payload)),
		)
	}
}

func logEvent(o Object, m *Message) {
	if ce := Logger().Check(zap.DebugLevel, "event"); ce != nil {
		ce.Write(
			zap.Stringer("kind", o.Kind()),
			zap.Uint32("id", uint32(o.ID())),
			zap.Uint16("opcode", m.Opcode),
			zap.String("payload", hex.EncodeToString(m.Payload())),
		)
	}
}

func logIgnored(o Object, event string) {
	Logger().Debug("ignoring event: no listener", zap.String("event", wireName(o.Kind(), event)))
}
