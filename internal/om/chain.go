package om

import (
	"fmt"

	"github.com/kywhang-go/eduom/internal/bufferpool"
	"github.com/kywhang-go/eduom/internal/catalog"
	"github.com/kywhang-go/eduom/internal/extent"
	"github.com/kywhang-go/eduom/internal/storage"
)

// CreateFile allocates the first page of a brand-new file and returns its
// catalog entry. The first page starts out registered in whatever
// availability bucket its (entirely free) space qualifies for, exactly as
// any other page would be once its free space is known (§4.C, §4.D).
func CreateFile(bp bufferpool.Manager, alloc extent.Allocator, volume int32, eff int16) (catalog.Entry, error) {
	pids, err := alloc.AllocTrains(volume, nil, eff, 1)
	if err != nil {
		return catalog.Entry{}, fmt.Errorf("om: create file: %w", err)
	}
	firstPID := pids[0]

	page, err := bp.GetNew(firstPID, storage.Slotted)
	if err != nil {
		return catalog.Entry{}, err
	}
	total := page.TotalFree()
	bp.Free(page)

	entry := catalog.NewEntry(volume, firstPID.PageNo, eff)
	if bucket, ok := BucketIndex(total); ok {
		if err := InsertIntoBucket(bp, &entry, bucket, firstPID); err != nil {
			return catalog.Entry{}, err
		}
	}
	return entry, nil
}

// InsertAfter splices newPage into the file's page chain immediately
// after anchor, fixing up entry.LastPage if anchor was the tail (§4.D).
func InsertAfter(bp bufferpool.Manager, entry *catalog.Entry, anchor, newPage storage.PageID) error {
	anchorPg, err := bp.Get(anchor)
	if err != nil {
		return fmt.Errorf("om: insert after: %w", err)
	}
	next := anchorPg.NextPage()
	anchorPg.SetNextPage(newPage.PageNo)
	err = bp.MarkDirty(anchor)
	bp.Free(anchorPg)
	if err != nil {
		return err
	}

	newPg, err := bp.Get(newPage)
	if err != nil {
		return err
	}
	newPg.SetPrevPage(anchor.PageNo)
	newPg.SetNextPage(next)
	err = bp.MarkDirty(newPage)
	bp.Free(newPg)
	if err != nil {
		return err
	}

	if next == storage.NilPageNo {
		entry.LastPage = newPage.PageNo
		return nil
	}

	nextPID := storage.PageID{Volume: anchor.Volume, PageNo: next}
	nextPg, err := bp.Get(nextPID)
	if err != nil {
		return err
	}
	nextPg.SetPrevPage(newPage.PageNo)
	err = bp.MarkDirty(nextPID)
	bp.Free(nextPg)
	return err
}

// Append splices newPage onto the tail of the file's chain.
func Append(bp bufferpool.Manager, entry *catalog.Entry, newPage storage.PageID) error {
	return InsertAfter(bp, entry, entry.LastPageID(), newPage)
}

// Unlink splices a non-first page out of the file's chain. The first
// page of a file is never deallocated and must never be passed here
// (§4.F, §6 Non-goals).
func Unlink(bp bufferpool.Manager, entry *catalog.Entry, pid storage.PageID) error {
	page, err := bp.Get(pid)
	if err != nil {
		return fmt.Errorf("om: unlink: %w", err)
	}
	prev := page.PrevPage()
	next := page.NextPage()
	bp.Free(page)

	if prev == storage.NilPageNo {
		return fmt.Errorf("om: cannot unlink the first page of a file (%s)", pid)
	}

	prevPID := storage.PageID{Volume: pid.Volume, PageNo: prev}
	prevPg, err := bp.Get(prevPID)
	if err != nil {
		return err
	}
	prevPg.SetNextPage(next)
	err = bp.MarkDirty(prevPID)
	bp.Free(prevPg)
	if err != nil {
		return err
	}

	if next == storage.NilPageNo {
		entry.LastPage = prev
		return nil
	}

	nextPID := storage.PageID{Volume: pid.Volume, PageNo: next}
	nextPg, err := bp.Get(nextPID)
	if err != nil {
		return err
	}
	nextPg.SetPrevPage(prev)
	err = bp.MarkDirty(nextPID)
	bp.Free(nextPg)
	return err
}
