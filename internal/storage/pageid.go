package storage

import "fmt"

// PageID identifies a page within a volume. It is stable once the page has
// been allocated by the extent allocator.
type PageID struct {
	Volume int32
	PageNo uint32
}

// NilPageNo marks the absence of a page link (end of chain, no bucket
// membership, ...).
const NilPageNo uint32 = 0xFFFFFFFF

// NilPage is the zero-value-free "no page" sentinel.
var NilPage = PageID{Volume: -1, PageNo: NilPageNo}

func (p PageID) IsNil() bool {
	return p.PageNo == NilPageNo
}

func (p PageID) String() string {
	if p.IsNil() {
		return "page(nil)"
	}
	return fmt.Sprintf("page(%d:%d)", p.Volume, p.PageNo)
}
