package om

import (
	"github.com/kywhang-go/eduom/internal/bufferpool"
	"github.com/kywhang-go/eduom/internal/catalog"
)

// DestroyObject removes oid from its page (§4.F): the slot is tombstoned
// and, per the boundary rule, either reclaimed into the forward free
// region (trailing slot) or left as a hole counted in Unused (middle
// slot). If the page becomes empty and is not the file's first page, it
// is unlinked from the chain and pushed onto dl for the extent allocator
// to eventually reclaim; otherwise the page is re-bucketed against its
// new free-space total.
func DestroyObject(bp bufferpool.Manager, entry *catalog.Entry, dl *DeallocPool, oid OID) error {
	if entry == nil {
		return ErrBadCatalog
	}
	page, err := bp.Get(oid.PageID)
	if err != nil {
		return err
	}

	if int(oid.Slot) < 0 || int(oid.Slot) >= page.NSlots() || page.IsTombstone(int(oid.Slot)) {
		bp.Free(page)
		return ErrBadObjectID
	}
	_, unique, err := page.Slot(int(oid.Slot))
	if err != nil {
		bp.Free(page)
		return err
	}
	if unique != oid.Unique {
		bp.Free(page)
		return ErrBadObjectID
	}

	oldBucket, hadBucket := BucketIndex(page.TotalFree())

	if _, err := page.DestroySlot(int(oid.Slot)); err != nil {
		bp.Free(page)
		return err
	}
	if err := bp.MarkDirty(oid.PageID); err != nil {
		bp.Free(page)
		return err
	}

	empty := page.IsEmpty()
	isFirst := oid.PageID.PageNo == entry.FirstPage
	bp.Free(page)

	if empty && !isFirst {
		if hadBucket {
			if err := RemoveFromBucket(bp, entry, oldBucket, oid.PageID); err != nil {
				return err
			}
		}
		if err := Unlink(bp, entry, oid.PageID); err != nil {
			return err
		}
		dl.Push(oid.PageID)
		return nil
	}

	return Rebucket(bp, entry, oid.PageID, oldBucket, hadBucket)
}
