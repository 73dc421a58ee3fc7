package om

import (
	"github.com/kywhang-go/eduom/internal/bufferpool"
	"github.com/kywhang-go/eduom/internal/catalog"
	"github.com/kywhang-go/eduom/internal/storage"
)

// NextObject returns the object immediately after cur in forward chain
// order, skipping tombstoned slots and crossing page boundaries as
// needed. cur == nil starts the scan at the file's first page. Only one
// page is ever pinned at a time. Returns EndOfScan once the chain is
// exhausted.
func NextObject(bp bufferpool.Manager, entry *catalog.Entry, cur *OID) (OID, storage.ObjectHdr, []byte, error) {
	if entry == nil {
		return OID{}, storage.ObjectHdr{}, nil, ErrBadCatalog
	}
	var pid storage.PageID
	startSlot := 0
	haveStart := false
	if cur == nil {
		pid = entry.FirstPageID()
	} else {
		pid = cur.PageID
		startSlot = int(cur.Slot) + 1
		haveStart = true
	}

	for {
		page, err := bp.Get(pid)
		if err != nil {
			return OID{}, storage.ObjectHdr{}, nil, err
		}

		s := 0
		if haveStart {
			s = startSlot
			haveStart = false
		}

		for ; s < page.NSlots(); s++ {
			if page.IsTombstone(s) {
				continue
			}
			off, unique, err := page.Slot(s)
			if err != nil {
				bp.Free(page)
				return OID{}, storage.ObjectHdr{}, nil, err
			}
			hdr, raw := page.ObjectAt(int(off))
			data := append([]byte(nil), raw...)
			out := OID{PageID: pid, Slot: int32(s), Unique: unique}
			bp.Free(page)
			return out, hdr, data, nil
		}

		next := page.NextPage()
		bp.Free(page)
		if next == storage.NilPageNo {
			return OID{}, storage.ObjectHdr{}, nil, EndOfScan
		}
		pid = storage.PageID{Volume: pid.Volume, PageNo: next}
	}
}

// PrevObject is the mirror of NextObject, walking backward from cur (or
// from the file's last page when cur == nil).
func PrevObject(bp bufferpool.Manager, entry *catalog.Entry, cur *OID) (OID, storage.ObjectHdr, []byte, error) {
	if entry == nil {
		return OID{}, storage.ObjectHdr{}, nil, ErrBadCatalog
	}
	var pid storage.PageID
	startSlot := -1
	haveStart := false
	if cur == nil {
		pid = entry.LastPageID()
	} else {
		pid = cur.PageID
		startSlot = int(cur.Slot) - 1
		haveStart = true
	}

	for {
		page, err := bp.Get(pid)
		if err != nil {
			return OID{}, storage.ObjectHdr{}, nil, err
		}

		s := page.NSlots() - 1
		if haveStart {
			s = startSlot
			haveStart = false
		}

		for ; s >= 0; s-- {
			if page.IsTombstone(s) {
				continue
			}
			off, unique, err := page.Slot(s)
			if err != nil {
				bp.Free(page)
				return OID{}, storage.ObjectHdr{}, nil, err
			}
			hdr, raw := page.ObjectAt(int(off))
			data := append([]byte(nil), raw...)
			out := OID{PageID: pid, Slot: int32(s), Unique: unique}
			bp.Free(page)
			return out, hdr, data, nil
		}

		prev := page.PrevPage()
		bp.Free(page)
		if prev == storage.NilPageNo {
			return OID{}, storage.ObjectHdr{}, nil, EndOfScan
		}
		pid = storage.PageID{Volume: pid.Volume, PageNo: prev}
	}
}
