package wlp

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubObject struct {
	proxy
	kind Kind
}

func (s *stubObject) Kind() Kind                { return s.kind }
func (s *stubObject) dispatch(m *Message) error { return nil }

func newStub(t *Table, kind Kind) *stubObject {
	return &stubObject{proxy: proxy{id: t.Allocate(), version: 1}, kind: kind}
}

func newTable(t *testing.T) *Table {
	tbl := NewTable()
	require.NoError(t, tbl.Insert(&stubObject{proxy: proxy{id: DisplayID}, kind: KindDisplay}))
	return tbl
}

func TestTable_Allocate(t *testing.T) {
	tbl := newTable(t)

	a := newStub(tbl, KindSurface)
	require.NoError(t, tbl.Insert(a))
	b := newStub(tbl, KindBuffer)
	require.NoError(t, tbl.Insert(b))
	assert.Equal(t, ObjectID(2), a.ID())
	assert.Equal(t, ObjectID(3), b.ID())
	assert.Equal(t, 3, tbl.Len())

	o, err := tbl.Resolve(3)
	require.NoError(t, err)
	assert.Equal(t, KindBuffer, o.Kind())
}

func TestTable_Resolve(t *testing.T) {
	tbl := NewTable()
	for _, id := range []ObjectID{0, 5, serverIDBase, 0xffffffff} {
		_, err := tbl.Resolve(id)
		assert.True(t, errors.Is(err, ErrUnknownObject), "id %d", id)
	}
	assert.Error(t, tbl.Insert(&stubObject{proxy: proxy{id: serverIDBase + 1}}))
	assert.Error(t, tbl.Insert(&stubObject{proxy: proxy{id: 0}}))
}

func TestTable_Recycling(t *testing.T) {
	tbl := newTable(t)
	a := newStub(tbl, KindSurface)
	require.NoError(t, tbl.Insert(a))
	b := newStub(tbl, KindSurface)
	require.NoError(t, tbl.Insert(b))

	tbl.Destroy(a.ID())
	assert.True(t, tbl.Zombie(a.ID()))
	_, err := tbl.Resolve(a.ID())
	assert.True(t, errors.Is(err, ErrUnknownObject))

	// not reissued before the server confirms
	c := newStub(tbl, KindBuffer)
	assert.NotEqual(t, a.ID(), c.ID())
	require.NoError(t, tbl.Insert(c))
	assert.Error(t, tbl.Insert(&stubObject{proxy: proxy{id: a.ID()}}))

	tbl.confirmDelete(a.ID())
	assert.False(t, tbl.Zombie(a.ID()))
	tbl.Destroy(b.ID())
	tbl.confirmDelete(b.ID())

	// most recently freed first
	assert.Equal(t, b.ID(), tbl.Allocate())
	assert.Equal(t, a.ID(), tbl.Allocate())
	assert.Equal(t, c.ID()+1, tbl.Allocate())
}

func TestTable_DisplayIsPermanent(t *testing.T) {
	tbl := newTable(t)
	tbl.Destroy(DisplayID)
	tbl.confirmDelete(DisplayID)
	_, err := tbl.Resolve(DisplayID)
	assert.NoError(t, err)
}

func TestTable_ServerDestroyed(t *testing.T) {
	tbl := newTable(t)
	cb := newStub(tbl, KindCallback)
	require.NoError(t, tbl.Insert(cb))
	tbl.confirmDelete(cb.ID())
	_, err := tbl.Resolve(cb.ID())
	assert.Error(t, err)
	assert.Equal(t, cb.ID(), tbl.Allocate())
}

func TestKind(t *testing.T) {
	assert.Equal(t, "wl_surface", KindSurface.String())
	assert.Equal(t, KindShell, KindOf("zxdg_shell_v6"))
	assert.Equal(t, KindShell, KindOf("xdg_wm_base"))
	assert.Equal(t, KindUnknown, KindOf("wl_output"))
	assert.Equal(t, KindUnknown, KindOf("unknown"))
	assert.Equal(t, uint32(4), KindCompositor.MaxVersion())
	assert.Equal(t, uint32(0), KindSurface.MaxVersion())
}

func TestWireName(t *testing.T) {
	assert.Equal(t, "wl_surface.damage_buffer", wireName(KindSurface, "DamageBuffer"))
	assert.Equal(t, "zxdg_surface_v6.ack_configure", wireName(KindShellSurface, "AckConfigure"))
	assert.Equal(t, "wl_display.get_registry", wireName(KindDisplay, "GetRegistry"))
}
