package event

// Window Events
const (
	WindowStateChange = 0x200 + iota
	WindowClose
)

// WindowStateChangeEvent is a configure the window has already acknowledged.
// Zero Width or Height means the client picks that dimension.
type WindowStateChangeEvent struct {
	Window     uint32
	Serial     uint32
	Width      int32
	Height     int32
	Maximized  bool
	Fullscreen bool
	Resizing   bool
	Activated  bool
}

func (WindowStateChangeEvent) Type() uint32      { return WindowStateChange }
func (WindowStateChangeEvent) Timestamp() uint32 { return 0 }

type WindowCloseEvent struct {
	Window uint32
}

func (WindowCloseEvent) Type() uint32      { return WindowClose }
func (WindowCloseEvent) Timestamp() uint32 { return 0 }
