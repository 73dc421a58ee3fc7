// Package extent implements the raw disk / extent allocator collaborator
// (§6.1): it hands out fresh page numbers in "trains" of one or more
// physically contiguous pages, and can map a page back to the extent that
// contains it. The object manager never decides where bytes live on
// disk; it only asks this package for pages.
package extent

import (
	"errors"
	"fmt"

	"github.com/kywhang-go/eduom/internal/storage"
)

// ErrUnknownVolume is returned when AllocTrains is asked to grow a volume
// that was never registered with the allocator.
var ErrUnknownVolume = errors.New("extent: unknown volume")

// PagesPerExtent is the number of pages grouped into one extent. An
// extent is the allocator's bookkeeping unit (PageToExtent maps a page to
// PageNo / PagesPerExtent). SimpleAllocator does not align trains to
// extent boundaries, so a train of more than one page can span two
// extents.
const PagesPerExtent = 32

// Allocator is the extent-allocator contract from §6.1.
type Allocator interface {
	// PageToExtent returns the extent number containing pid.
	PageToExtent(pid storage.PageID) (int32, error)

	// AllocTrains allocates count physically contiguous pages from the
	// extent containing near (or from a fresh extent if near is nil),
	// and returns their PageIDs in order. eff is the extent fill factor
	// hint; this educational allocator does not need it beyond
	// preserving the contract.
	AllocTrains(volume int32, near *storage.PageID, eff int16, count int) ([]storage.PageID, error)
}

var _ Allocator = (*SimpleAllocator)(nil)

// SimpleAllocator is a bump allocator: the next free page number for a
// volume is simply the current page count on disk. It is sufficient for
// an educational single-writer engine where no concurrent allocation
// races are possible (§5).
type SimpleAllocator struct {
	sm  *storage.Manager
	vol map[int32]storage.FileSet
}

func NewSimpleAllocator(sm *storage.Manager) *SimpleAllocator {
	return &SimpleAllocator{sm: sm, vol: make(map[int32]storage.FileSet)}
}

func (a *SimpleAllocator) RegisterVolume(volume int32, fs storage.FileSet) {
	a.vol[volume] = fs
}

func (a *SimpleAllocator) PageToExtent(pid storage.PageID) (int32, error) {
	return int32(pid.PageNo) / PagesPerExtent, nil
}

// AllocTrains hands out count fresh, contiguous page numbers. near is
// accepted for interface compatibility with a real extent allocator
// (which would try to place the train inside near's extent for
// locality); this allocator always appends at the end of the volume,
// which keeps pages from one file physically close in the common case
// where a file grows monotonically.
func (a *SimpleAllocator) AllocTrains(volume int32, near *storage.PageID, eff int16, count int) ([]storage.PageID, error) {
	if count <= 0 {
		return nil, nil
	}
	fs, ok := a.vol[volume]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVolume, volume)
	}

	n, err := a.sm.CountPages(fs)
	if err != nil {
		return nil, err
	}

	out := make([]storage.PageID, count)
	for i := 0; i < count; i++ {
		out[i] = storage.PageID{Volume: volume, PageNo: n + uint32(i)}
	}

	// Reserve the pages on disk immediately so a subsequent CountPages
	// call (e.g. for the next AllocTrains) does not hand out the same
	// numbers again before the buffer pool writes them back.
	zero := make([]byte, storage.PageSize)
	for _, pid := range out {
		if err := a.sm.WritePage(fs, pid.PageNo, zero); err != nil {
			return nil, err
		}
	}
	return out, nil
}
