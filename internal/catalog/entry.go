// Package catalog models the read-only catalog overlay the object
// manager consults for a file's identity and free-space bookkeeping
// (§6.1): fid, firstPage/lastPage, the extent fill factor, and the five
// available-space bucket heads. In this educational engine a catalog
// entry is itself stored as an ordinary object inside a directory-typed
// page, so bootstrapping one goes through the same page-write mechanics
// as any other object.
package catalog

import (
	"github.com/kywhang-go/eduom/internal/alias/bx"
	"github.com/kywhang-go/eduom/internal/storage"
)

// NumBuckets is the number of available-space lists a file catalog
// tracks (§4.C).
const NumBuckets = 5

// EncodedSize is the fixed number of bytes an Entry occupies once
// serialized.
const EncodedSize = 4 + 4 + 4 + 2 + NumBuckets*4

// Entry is the per-file catalog overlay (§6.1, §3 "Lifecycle").
type Entry struct {
	Volume    int32
	FirstPage uint32
	LastPage  uint32
	Eff       int16 // extent fill factor hint handed to the allocator

	// AvailList holds the head PageNo of each of the five available
	// space buckets (§4.C), or storage.NilPageNo if that bucket is
	// empty.
	AvailList [NumBuckets]uint32
}

// NewEntry returns the catalog entry for a brand-new, single-page file.
func NewEntry(volume int32, firstPage uint32, eff int16) Entry {
	e := Entry{Volume: volume, FirstPage: firstPage, LastPage: firstPage, Eff: eff}
	for i := range e.AvailList {
		e.AvailList[i] = storage.NilPageNo
	}
	return e
}

func (e Entry) encode() []byte {
	buf := make([]byte, EncodedSize)
	bx.PutU32At(buf, 0, uint32(e.Volume))
	bx.PutU32At(buf, 4, e.FirstPage)
	bx.PutU32At(buf, 8, e.LastPage)
	bx.PutU16At(buf, 12, uint16(e.Eff))
	for i, v := range e.AvailList {
		bx.PutU32At(buf, 14+i*4, v)
	}
	return buf
}

func decodeEntry(buf []byte) Entry {
	var e Entry
	e.Volume = int32(bx.U32At(buf, 0))
	e.FirstPage = bx.U32At(buf, 4)
	e.LastPage = bx.U32At(buf, 8)
	e.Eff = int16(bx.U16At(buf, 12))
	for i := range e.AvailList {
		e.AvailList[i] = bx.U32At(buf, 14+i*4)
	}
	return e
}

// FirstPageID / LastPageID are convenience constructors for the two chain
// endpoints as full PageIDs.
func (e Entry) FirstPageID() storage.PageID { return storage.PageID{Volume: e.Volume, PageNo: e.FirstPage} }
func (e Entry) LastPageID() storage.PageID  { return storage.PageID{Volume: e.Volume, PageNo: e.LastPage} }
