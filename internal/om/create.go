package om

import (
	"github.com/kywhang-go/eduom/internal/bufferpool"
	"github.com/kywhang-go/eduom/internal/catalog"
	"github.com/kywhang-go/eduom/internal/extent"
	"github.com/kywhang-go/eduom/internal/storage"
)

func spaceNeeded(dataLen int) int {
	return storage.ObjectHdrSize + storage.AlignedLength(dataLen) + storage.SlotSize
}

// CreateObject places data on a page chosen by the near-object heuristic
// (§4.E): if near is given, prefer its page (compacting it in place if
// the hole is there but fragmented); otherwise scan the five
// available-space buckets ascending, falling back to a freshly allocated
// page appended at the tail of the file.
func CreateObject(bp bufferpool.Manager, alloc extent.Allocator, entry *catalog.Entry, near *OID, tag int16, properties uint8, data []byte) (OID, error) {
	if entry == nil {
		return OID{}, ErrBadCatalog
	}
	if len(data) < 0 {
		return OID{}, ErrBadLength
	}
	if storage.AlignedLength(len(data)) > storage.LrgObjThreshold {
		return OID{}, ErrNotSupported
	}
	needed := spaceNeeded(len(data))

	if near != nil {
		return createNear(bp, alloc, entry, *near, tag, properties, data, needed)
	}
	return createNoNear(bp, alloc, entry, tag, properties, data, needed)
}

func createNear(bp bufferpool.Manager, alloc extent.Allocator, entry *catalog.Entry, near OID, tag int16, properties uint8, data []byte, needed int) (OID, error) {
	page, err := bp.Get(near.PageID)
	if err != nil {
		return OID{}, err
	}

	oldBucket, hadBucket := BucketIndex(page.TotalFree())

	if page.FreeWindow() < needed && page.TotalFree() >= needed {
		storage.CompactPage(page, storage.NilSlot)
	}

	if page.FreeWindow() >= needed {
		slot, unique, err := page.InsertAt(tag, properties, data)
		if err != nil {
			bp.Free(page)
			return OID{}, err
		}
		if err := bp.MarkDirty(near.PageID); err != nil {
			bp.Free(page)
			return OID{}, err
		}
		bp.Free(page)
		if err := Rebucket(bp, entry, near.PageID, oldBucket, hadBucket); err != nil {
			return OID{}, err
		}
		return OID{PageID: near.PageID, Slot: int32(slot), Unique: unique}, nil
	}

	bp.Free(page)
	anchor := near.PageID
	return allocateAndInsert(bp, alloc, entry, &anchor, tag, properties, data, needed)
}

func createNoNear(bp bufferpool.Manager, alloc extent.Allocator, entry *catalog.Entry, tag int16, properties uint8, data []byte, needed int) (OID, error) {
	for b := 0; b < catalog.NumBuckets; b++ {
		headNo := entry.AvailList[b]
		if headNo == storage.NilPageNo {
			continue
		}
		pid := storage.PageID{Volume: entry.Volume, PageNo: headNo}
		page, err := bp.Get(pid)
		if err != nil {
			return OID{}, err
		}

		if page.FreeWindow() < needed && page.TotalFree() >= needed {
			storage.CompactPage(page, storage.NilSlot)
		}

		if page.FreeWindow() >= needed {
			slot, unique, err := page.InsertAt(tag, properties, data)
			if err != nil {
				bp.Free(page)
				return OID{}, err
			}
			if err := bp.MarkDirty(pid); err != nil {
				bp.Free(page)
				return OID{}, err
			}
			bp.Free(page)
			if err := Rebucket(bp, entry, pid, b, true); err != nil {
				return OID{}, err
			}
			return OID{PageID: pid, Slot: int32(slot), Unique: unique}, nil
		}
		bp.Free(page)
	}

	return allocateAndInsert(bp, alloc, entry, nil, tag, properties, data, needed)
}

// allocateAndInsert asks the extent allocator for one fresh page, splices
// it into the chain (right after anchor, or at the tail if anchor is
// nil), and writes the object there. A freshly allocated page is always
// large enough for anything under storage.LrgObjThreshold.
func allocateAndInsert(bp bufferpool.Manager, alloc extent.Allocator, entry *catalog.Entry, anchor *storage.PageID, tag int16, properties uint8, data []byte, needed int) (OID, error) {
	pids, err := alloc.AllocTrains(entry.Volume, anchor, entry.Eff, 1)
	if err != nil {
		return OID{}, err
	}
	newPID := pids[0]

	newPage, err := bp.GetNew(newPID, storage.Slotted)
	if err != nil {
		return OID{}, err
	}

	if anchor != nil {
		err = InsertAfter(bp, entry, *anchor, newPID)
	} else {
		err = Append(bp, entry, newPID)
	}
	if err != nil {
		bp.Free(newPage)
		return OID{}, err
	}

	slot, unique, err := newPage.InsertAt(tag, properties, data)
	if err != nil {
		bp.Free(newPage)
		return OID{}, err
	}
	if err := bp.MarkDirty(newPID); err != nil {
		bp.Free(newPage)
		return OID{}, err
	}
	total := newPage.TotalFree()
	bp.Free(newPage)

	if bucket, ok := BucketIndex(total); ok {
		if err := InsertIntoBucket(bp, entry, bucket, newPID); err != nil {
			return OID{}, err
		}
	}
	return OID{PageID: newPID, Slot: int32(slot), Unique: unique}, nil
}
