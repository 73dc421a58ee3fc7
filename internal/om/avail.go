package om

import (
	"fmt"

	"github.com/kywhang-go/eduom/internal/bufferpool"
	"github.com/kywhang-go/eduom/internal/catalog"
	"github.com/kywhang-go/eduom/internal/storage"
)

// bucketThreshold returns the minimum total-free-byte count a page must
// have to belong to bucket i: 10%, 20%, 30%, 40%, 50% of a page for
// i = 0..4 (§4.C).
func bucketThreshold(i int) int {
	return (i + 1) * storage.PageSize / 10
}

// BucketIndex returns the highest bucket a page with totalFree bytes free
// qualifies for. A page with less than 10% free belongs to no bucket at
// all, since it is not worth tracking for reuse.
func BucketIndex(totalFree int) (int, bool) {
	for i := catalog.NumBuckets - 1; i >= 0; i-- {
		if totalFree >= bucketThreshold(i) {
			return i, true
		}
	}
	return 0, false
}

// RemoveFromBucket splices pid out of bucket's doubly-linked list,
// updating the catalog head if pid was at the front.
func RemoveFromBucket(bp bufferpool.Manager, entry *catalog.Entry, bucket int, pid storage.PageID) error {
	page, err := bp.Get(pid)
	if err != nil {
		return fmt.Errorf("om: remove from bucket: %w", err)
	}
	prev := page.SpaceListPrev()
	next := page.SpaceListNext()
	page.SetSpaceListPrev(storage.NilPageNo)
	page.SetSpaceListNext(storage.NilPageNo)
	if err := bp.MarkDirty(pid); err != nil {
		bp.Free(page)
		return err
	}
	bp.Free(page)

	if prev == storage.NilPageNo {
		entry.AvailList[bucket] = next
	} else {
		prevPID := storage.PageID{Volume: pid.Volume, PageNo: prev}
		prevPage, err := bp.Get(prevPID)
		if err != nil {
			return err
		}
		prevPage.SetSpaceListNext(next)
		err = bp.MarkDirty(prevPID)
		bp.Free(prevPage)
		if err != nil {
			return err
		}
	}

	if next != storage.NilPageNo {
		nextPID := storage.PageID{Volume: pid.Volume, PageNo: next}
		nextPage, err := bp.Get(nextPID)
		if err != nil {
			return err
		}
		nextPage.SetSpaceListPrev(prev)
		err = bp.MarkDirty(nextPID)
		bp.Free(nextPage)
		if err != nil {
			return err
		}
	}
	return nil
}

// InsertIntoBucket pushes pid onto the head of bucket's list.
func InsertIntoBucket(bp bufferpool.Manager, entry *catalog.Entry, bucket int, pid storage.PageID) error {
	oldHead := entry.AvailList[bucket]

	page, err := bp.Get(pid)
	if err != nil {
		return fmt.Errorf("om: insert into bucket: %w", err)
	}
	page.SetSpaceListPrev(storage.NilPageNo)
	page.SetSpaceListNext(oldHead)
	err = bp.MarkDirty(pid)
	bp.Free(page)
	if err != nil {
		return err
	}

	if oldHead != storage.NilPageNo {
		headPID := storage.PageID{Volume: pid.Volume, PageNo: oldHead}
		headPage, err := bp.Get(headPID)
		if err != nil {
			return err
		}
		headPage.SetSpaceListPrev(pid.PageNo)
		err = bp.MarkDirty(headPID)
		bp.Free(headPage)
		if err != nil {
			return err
		}
	}

	entry.AvailList[bucket] = pid.PageNo
	return nil
}

// Rebucket re-evaluates pid's bucket membership after its free space has
// changed, removing it from oldBucket (if it had one) and inserting it
// into whatever bucket its new total free space qualifies for.
func Rebucket(bp bufferpool.Manager, entry *catalog.Entry, pid storage.PageID, oldBucket int, hadBucket bool) error {
	page, err := bp.Get(pid)
	if err != nil {
		return err
	}
	total := page.TotalFree()
	bp.Free(page)

	if hadBucket {
		if err := RemoveFromBucket(bp, entry, oldBucket, pid); err != nil {
			return err
		}
	}
	if newBucket, ok := BucketIndex(total); ok {
		return InsertIntoBucket(bp, entry, newBucket, pid)
	}
	return nil
}
