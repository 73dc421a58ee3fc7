package storage

// NilSlot means "no pivot": CompactPage just squeezes out holes without
// reserving a final position for any particular object.
const NilSlot = -1

// CompactPage rewrites the data region of p so that no holes remain
// (§4.B). Live slots keep their (index, unique) identity; only their
// offset changes. If pivot is not NilSlot, the object at that slot is
// written last, so a caller can immediately grow or append after it.
//
// CompactPage never fails: it operates purely on the bytes already
// present in p.
func CompactPage(p *Page, pivot int) {
	// Snapshot the current data region before overwriting it in place.
	scratch := make([]byte, PageSize)
	copy(scratch, p.Buf)
	src, _ := Wrap(scratch)

	nSlots := p.NSlots()
	cursor := HeaderSize

	for i := 0; i < nSlots; i++ {
		if i == pivot {
			continue
		}
		off, unique, err := src.Slot(i)
		if err != nil || off == EmptySlot {
			continue
		}
		span := src.objectSpan(int(off))
		copy(p.Buf[cursor:cursor+span], src.Buf[off:int(off)+span])
		p.setSlot(i, int32(cursor), unique)
		cursor += span
	}

	if pivot != NilSlot {
		off, unique, err := src.Slot(pivot)
		if err == nil && off != EmptySlot {
			span := src.objectSpan(int(off))
			copy(p.Buf[cursor:cursor+span], src.Buf[off:int(off)+span])
			p.setSlot(pivot, int32(cursor), unique)
			cursor += span
		}
	}

	p.SetFree(cursor)
	p.SetUnused(0)
}
