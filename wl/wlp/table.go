package wlp

import (
	"github.com/pkg/errors"
)

// ObjectID identifies an object on one connection.
type ObjectID uint32

const (
	// DisplayID is always the wl_display singleton.
	DisplayID ObjectID = 1

	// Ids from here on are allocated by the server.
	serverIDBase ObjectID = 0xff000000
)

// Kind is the interface an object implements.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindDisplay
	KindRegistry
	KindCallback
	KindCompositor
	KindShm
	KindSeat
	KindShell
	KindSurface
	KindShmPool
	KindBuffer
	KindShellSurface
	KindToplevel
	KindPointer
)

var kindNames = [...]string{
	KindUnknown:      "unknown",
	KindDisplay:      "wl_display",
	KindRegistry:     "wl_registry",
	KindCallback:     "wl_callback",
	KindCompositor:   "wl_compositor",
	KindShm:          "wl_shm",
	KindSeat:         "wl_seat",
	KindShell:        "zxdg_shell_v6",
	KindSurface:      "wl_surface",
	KindShmPool:      "wl_shm_pool",
	KindBuffer:       "wl_buffer",
	KindShellSurface: "zxdg_surface_v6",
	KindToplevel:     "zxdg_toplevel_v6",
	KindPointer:      "wl_pointer",
}

// highest version of each bindable global implemented here
var kindVersions = map[Kind]uint32{
	KindCompositor: 4,
	KindShm:        1,
	KindSeat:       5,
	KindShell:      1,
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindUnknown]
}

// MaxVersion is the highest version of a global kind this package can speak,
// or 0 when the kind is not a bindable global.
func (k Kind) MaxVersion() uint32 {
	return kindVersions[k]
}

// KindOf maps an advertised interface name to a Kind. The stable xdg_wm_base
// uses the same opcodes as zxdg_shell_v6 for everything used here, so both
// map to KindShell.
func KindOf(iface string) Kind {
	if iface == "xdg_wm_base" {
		return KindShell
	}
	for k, name := range kindNames {
		if name == iface && Kind(k) != KindUnknown {
			return Kind(k)
		}
	}
	return KindUnknown
}

// Object is a client side proxy for a protocol object.
type Object interface {
	ID() ObjectID
	Kind() Kind
	Version() uint32
	dispatch(m *Message) error
}

// Table maps client ids to live proxies. Destroyed ids stay reserved until
// the server confirms the deletion with wl_display.delete_id.
type Table struct {
	live    map[ObjectID]Object
	zombies map[ObjectID]Kind
	free    []ObjectID
	last    ObjectID
}

func NewTable() *Table {
	return &Table{
		live:    make(map[ObjectID]Object),
		zombies: make(map[ObjectID]Kind),
	}
}

// Allocate reserves an id. Confirmed deleted ids are reused first, most
// recently freed first.
func (t *Table) Allocate() ObjectID {
	if n := len(t.free); n > 0 {
		id := t.free[n-1]
		t.free = t.free[:n-1]
		return id
	}
	t.last++
	return t.last
}

// Insert makes an allocated id live.
func (t *Table) Insert(o Object) error {
	id := o.ID()
	if id == 0 || id >= serverIDBase {
		return errors.Errorf("id %d is not in the client range", id)
	}
	if _, exists := t.live[id]; exists {
		return errors.Errorf("id %d is already live", id)
	}
	if _, exists := t.zombies[id]; exists {
		return errors.Errorf("id %d is awaiting delete confirmation", id)
	}
	t.live[id] = o
	if id > t.last {
		t.last = id
	}
	return nil
}

// Resolve returns the live object with the given id.
func (t *Table) Resolve(id ObjectID) (Object, error) {
	o, exists := t.live[id]
	if !exists {
		return nil, errors.Wrapf(ErrUnknownObject, "id %d", id)
	}
	return o, nil
}

// Destroy retires a live id. Events still in flight for it are dropped.
func (t *Table) Destroy(id ObjectID) {
	o, exists := t.live[id]
	if !exists || id == DisplayID {
		return
	}
	delete(t.live, id)
	t.zombies[id] = o.Kind()
}

// Zombie reports whether id was destroyed and is waiting for delete_id.
func (t *Table) Zombie(id ObjectID) bool {
	_, exists := t.zombies[id]
	return exists
}

// Len is the number of live objects.
func (t *Table) Len() int {
	return len(t.live)
}

func (t *Table) confirmDelete(id ObjectID) {
	if _, exists := t.zombies[id]; exists {
		delete(t.zombies, id)
		t.free = append(t.free, id)
		return
	}
	// the server may delete objects it destroyed itself without the client
	// ever having called destroy, as for wl_callback
	if _, exists := t.live[id]; exists && id != DisplayID {
		delete(t.live, id)
		t.free = append(t.free, id)
	}
}

// forget returns an id whose creating request was never sent.
func (t *Table) forget(id ObjectID) {
	delete(t.live, id)
	t.free = append(t.free, id)
}
