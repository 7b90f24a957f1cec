package event

// Mouse Events
const (
	MouseMotion = 0x400 + iota
	MouseButtonDown
	MouseButtonUp
	MouseWheel
	MouseEnter
	MouseLeave
	MouseFrame
	MouseWheelSource
	MouseWheelStop
	MouseWheelDiscrete
)

// Linux input event codes for the common buttons.
const (
	ButtonLeft   = 0x110
	ButtonRight  = 0x111
	ButtonMiddle = 0x112
)

const (
	AxisVertical   = 0
	AxisHorizontal = 1
)

// MouseEnterEvent is sent when the pointer enters a surface. Serial is the one
// a cursor change must quote.
type MouseEnterEvent struct {
	Serial  uint32
	Surface uint32
	X       float64
	Y       float64
}

func (MouseEnterEvent) Type() uint32      { return MouseEnter }
func (MouseEnterEvent) Timestamp() uint32 { return 0 }

type MouseLeaveEvent struct {
	Serial  uint32
	Surface uint32
}

func (MouseLeaveEvent) Type() uint32      { return MouseLeave }
func (MouseLeaveEvent) Timestamp() uint32 { return 0 }

// MouseMotionEvent carries surface local coordinates.
type MouseMotionEvent struct {
	Time uint32
	X    float64
	Y    float64
}

func (MouseMotionEvent) Type() uint32        { return MouseMotion }
func (e MouseMotionEvent) Timestamp() uint32 { return e.Time }

type MouseButtonEvent struct {
	Serial  uint32
	Time    uint32
	Button  uint32
	Pressed bool
}

func (e MouseButtonEvent) Type() uint32 {
	if e.Pressed {
		return MouseButtonDown
	}
	return MouseButtonUp
}

func (e MouseButtonEvent) Timestamp() uint32 { return e.Time }

// MouseWheelEvent is a scroll along one axis, in surface local units.
type MouseWheelEvent struct {
	Time  uint32
	Axis  uint32
	Value float64
}

func (MouseWheelEvent) Type() uint32        { return MouseWheel }
func (e MouseWheelEvent) Timestamp() uint32 { return e.Time }

// MouseFrameEvent ends a group of events that belong together.
type MouseFrameEvent struct{}

func (MouseFrameEvent) Type() uint32      { return MouseFrame }
func (MouseFrameEvent) Timestamp() uint32 { return 0 }

type MouseWheelSourceEvent struct {
	Source uint32
}

func (MouseWheelSourceEvent) Type() uint32      { return MouseWheelSource }
func (MouseWheelSourceEvent) Timestamp() uint32 { return 0 }

type MouseWheelStopEvent struct {
	Time uint32
	Axis uint32
}

func (MouseWheelStopEvent) Type() uint32        { return MouseWheelStop }
func (e MouseWheelStopEvent) Timestamp() uint32 { return e.Time }

// MouseWheelDiscreteEvent counts wheel clicks. It precedes the matching
// MouseWheelEvent in the same frame.
type MouseWheelDiscreteEvent struct {
	Axis     uint32
	Discrete int32
}

func (MouseWheelDiscreteEvent) Type() uint32      { return MouseWheelDiscrete }
func (MouseWheelDiscreteEvent) Timestamp() uint32 { return 0 }
