package wlp

// Reissue puts id on the free list even if it is still live.
func (t *Table) Reissue(id ObjectID) {
	t.free = append(t.free, id)
}
