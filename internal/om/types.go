package om

import "github.com/kywhang-go/eduom/internal/storage"

// OID identifies an object uniquely and persistently: its page, slot
// index, and the page-local unique stamp recorded at insertion time.
// Unique guards against a destroyed-and-reused slot index comparing equal
// to a stale caller-held identifier.
type OID struct {
	PageID storage.PageID
	Slot   int32
	Unique uint32
}

func (o OID) IsNil() bool { return o.PageID.IsNil() }

// DeallocElem links one emptied, non-first page onto a file's
// deallocation pool (§6.1) until the extent allocator reclaims it.
type DeallocElem struct {
	Page storage.PageID
	next *DeallocElem
}

// DeallocPool is a LIFO list of pages that DestroyObject has unlinked
// from a file's chain because they went empty. The extent allocator (out
// of scope here) drains this pool to actually return the pages to free
// storage.
type DeallocPool struct {
	head *DeallocElem
}

func (d *DeallocPool) Push(pid storage.PageID) {
	d.head = &DeallocElem{Page: pid, next: d.head}
}

func (d *DeallocPool) Pop() (storage.PageID, bool) {
	if d.head == nil {
		return storage.NilPage, false
	}
	pid := d.head.Page
	d.head = d.head.next
	return pid, true
}

func (d *DeallocPool) Empty() bool { return d.head == nil }
