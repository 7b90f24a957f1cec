// Package event holds the typed input and window events produced by a
// wayland client connection.
package event

// Application Events
const (
	Quit = 0x100 + iota
)

const (
	FirstEvent = 0
	LastEvent  = 0xFFFF
)

// Event is implemented by every event value. Timestamp is the compositor
// supplied time in milliseconds, or 0 when the protocol message carries none.
type Event interface {
	Type() uint32
	Timestamp() uint32
}

// Handler receives events on the dispatching goroutine.
type Handler interface {
	Handle(ev Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ev Event)

func (f HandlerFunc) Handle(ev Event) {
	f(ev)
}

// QuitEvent asks the consumer of a queue to shut down.
type QuitEvent struct{}

func (QuitEvent) Type() uint32      { return Quit }
func (QuitEvent) Timestamp() uint32 { return 0 }
