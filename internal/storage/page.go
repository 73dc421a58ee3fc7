package storage

import (
	"errors"
	"fmt"

	"github.com/kywhang-go/eduom/internal/alias/bx"
)

// Page size and on-disk layout constants. The layout is bit-stable: slot
// array entries are addressed from the high end of the page toward the
// low end, while object storage grows from the low end upward, exactly as
// described by the object store's wire format.
const (
	PageSize = 4 * OneKB

	// Header layout offsets.
	hdrOffVolume        = 0
	hdrOffPageNo        = 4
	hdrOffNSlots        = 8
	hdrOffFree          = 10
	hdrOffUnused        = 12
	hdrOffPageType      = 14
	hdrOffPrevPage      = 16
	hdrOffNextPage      = 20
	hdrOffSpaceListPrev = 24
	hdrOffSpaceListNext = 28
	hdrOffUniqueCounter = 32

	HeaderSize = 40
	SlotSize   = 8 // int32 offset + uint32 unique

	ObjectHdrSize = 8 // int32 length + int16 tag + uint8 properties + pad
	AlignSize     = 8 // payloads are rounded up to this many bytes

	// LrgObjThreshold bounds the aligned payload length this core will
	// accept; anything larger belongs to the (out of scope) large-object
	// store.
	LrgObjThreshold = PageSize / 4
)

const (
	OneKB = 1024
	OneMB = OneKB * 1024
	OneGB = OneMB * 1024
)

// EmptySlot is the tombstone sentinel for a slot's offset field.
const EmptySlot int32 = -1

// PageType distinguishes the few physical page kinds the store uses; the
// object manager only ever writes Slotted and Directory pages.
type PageType uint8

const (
	Slotted PageType = iota + 1
	Directory
)

var (
	ErrBadSlot      = errors.New("storage: slot index out of range or empty")
	ErrPageTooSmall = errors.New("storage: buffer is not exactly PageSize bytes")
	ErrNoSpace      = errors.New("storage: not enough contiguous free space")
)

// AlignedLength rounds length up to the next machine-word boundary.
func AlignedLength(length int) int {
	if length <= 0 {
		return 0
	}
	return (length + AlignSize - 1) / AlignSize * AlignSize
}

// Page is a fixed-size slotted page backed by a caller-owned byte buffer.
// All mutation happens in place through the accessors below; Page never
// allocates a second copy of Buf.
type Page struct {
	Buf []byte
}

// NewPage wraps buf (which must be exactly PageSize bytes) as a freshly
// initialized page for pid. The data region starts empty and the slot
// array is empty.
func NewPage(buf []byte, pid PageID, typ PageType) (*Page, error) {
	p, err := Wrap(buf)
	if err != nil {
		return nil, err
	}
	p.Init(pid, typ)
	return p, nil
}

// Init zero-initializes an already-wrapped buffer into a fresh, empty
// page for pid. Used by the buffer pool when handing out a page that was
// allocated but never read from disk.
func (p *Page) Init(pid PageID, typ PageType) {
	for i := range p.Buf {
		p.Buf[i] = 0
	}
	p.SetPID(pid)
	p.setNSlots(0)
	p.SetFree(HeaderSize)
	p.SetUnused(0)
	p.SetPageType(typ)
	p.SetPrevPage(NilPageNo)
	p.SetNextPage(NilPageNo)
	p.SetSpaceListPrev(NilPageNo)
	p.SetSpaceListNext(NilPageNo)
	p.setUniqueCounter(0)
}

// Wrap views an already-initialized buffer as a Page without touching its
// contents (used when loading a page back from disk or from the buffer
// pool).
func Wrap(buf []byte) (*Page, error) {
	if len(buf) != PageSize {
		return nil, ErrPageTooSmall
	}
	return &Page{Buf: buf}, nil
}

// ---- header accessors ----

func (p *Page) PID() PageID {
	return PageID{
		Volume: int32(bx.U32At(p.Buf, hdrOffVolume)),
		PageNo: bx.U32At(p.Buf, hdrOffPageNo),
	}
}

func (p *Page) SetPID(pid PageID) {
	bx.PutU32At(p.Buf, hdrOffVolume, uint32(pid.Volume))
	bx.PutU32At(p.Buf, hdrOffPageNo, pid.PageNo)
}

func (p *Page) NSlots() int { return int(bx.U16At(p.Buf, hdrOffNSlots)) }

func (p *Page) setNSlots(n int) { bx.PutU16At(p.Buf, hdrOffNSlots, uint16(n)) }

func (p *Page) Free() int { return int(bx.U16At(p.Buf, hdrOffFree)) }

func (p *Page) SetFree(v int) { bx.PutU16At(p.Buf, hdrOffFree, uint16(v)) }

func (p *Page) Unused() int { return int(bx.U16At(p.Buf, hdrOffUnused)) }

func (p *Page) SetUnused(v int) { bx.PutU16At(p.Buf, hdrOffUnused, uint16(v)) }

func (p *Page) PageType() PageType { return PageType(p.Buf[hdrOffPageType]) }

func (p *Page) SetPageType(t PageType) { p.Buf[hdrOffPageType] = byte(t) }

func (p *Page) PrevPage() uint32 { return bx.U32At(p.Buf, hdrOffPrevPage) }

func (p *Page) SetPrevPage(v uint32) { bx.PutU32At(p.Buf, hdrOffPrevPage, v) }

func (p *Page) NextPage() uint32 { return bx.U32At(p.Buf, hdrOffNextPage) }

func (p *Page) SetNextPage(v uint32) { bx.PutU32At(p.Buf, hdrOffNextPage, v) }

func (p *Page) SpaceListPrev() uint32 { return bx.U32At(p.Buf, hdrOffSpaceListPrev) }

func (p *Page) SetSpaceListPrev(v uint32) { bx.PutU32At(p.Buf, hdrOffSpaceListPrev, v) }

func (p *Page) SpaceListNext() uint32 { return bx.U32At(p.Buf, hdrOffSpaceListNext) }

func (p *Page) SetSpaceListNext(v uint32) { bx.PutU32At(p.Buf, hdrOffSpaceListNext, v) }

func (p *Page) uniqueCounter() uint32 { return bx.U32At(p.Buf, hdrOffUniqueCounter) }

func (p *Page) setUniqueCounter(v uint32) { bx.PutU32At(p.Buf, hdrOffUniqueCounter, v) }

// NextUnique returns the next value of the page-local monotone counter,
// persisting the bump so that it survives eviction and reload.
func (p *Page) NextUnique() uint32 {
	v := p.uniqueCounter() + 1
	p.setUniqueCounter(v)
	return v
}

// ---- derived quantities (§4.A) ----

// FreeWindow is the contiguous free space between the data region and the
// slot array.
func (p *Page) FreeWindow() int {
	return PageSize - p.Free() - p.NSlots()*SlotSize
}

// TotalFree is the contiguous window plus any scattered holes left by
// destroyed objects; it is what a compaction would make available.
func (p *Page) TotalFree() int {
	return p.FreeWindow() + p.Unused()
}

// ---- slot array (grows backward from the end of the page) ----

func slotByteOffset(i int) int {
	return PageSize - (i+1)*SlotSize
}

func (p *Page) slotOffsetField(i int) int32 {
	o := slotByteOffset(i)
	return int32(bx.U32At(p.Buf, o))
}

func (p *Page) slotUniqueField(i int) uint32 {
	o := slotByteOffset(i)
	return bx.U32At(p.Buf, o+4)
}

func (p *Page) setSlot(i int, offset int32, unique uint32) {
	o := slotByteOffset(i)
	bx.PutU32At(p.Buf, o, uint32(offset))
	bx.PutU32At(p.Buf, o+4, unique)
}

// Slot returns the (offset, unique) pair stored at index i.
func (p *Page) Slot(i int) (offset int32, unique uint32, err error) {
	if i < 0 || i >= p.NSlots() {
		return 0, 0, ErrBadSlot
	}
	return p.slotOffsetField(i), p.slotUniqueField(i), nil
}

// IsTombstone reports whether slot i is a destroyed-but-not-yet-reclaimed
// entry.
func (p *Page) IsTombstone(i int) bool {
	if i < 0 || i >= p.NSlots() {
		return true
	}
	return p.slotOffsetField(i) == EmptySlot
}

// IsEmpty reports whether the page holds no live objects. A page can
// reach this state with NSlots() still positive, since only a trailing
// slot's destruction shrinks the slot array; middle slots are left as
// tombstones (§4.F).
func (p *Page) IsEmpty() bool {
	for i := 0; i < p.NSlots(); i++ {
		if !p.IsTombstone(i) {
			return false
		}
	}
	return true
}

// ---- object region ----

// ObjectHdr is the fixed-size header stored immediately before an
// object's payload.
type ObjectHdr struct {
	Length     int32
	Tag        int16
	Properties uint8
}

func readObjectHdr(buf []byte, offset int) ObjectHdr {
	return ObjectHdr{
		Length:     int32(bx.U32At(buf, offset)),
		Tag:        int16(bx.U16At(buf, offset+4)),
		Properties: buf[offset+6],
	}
}

func writeObjectHdr(buf []byte, offset int, hdr ObjectHdr) {
	bx.PutU32At(buf, offset, uint32(hdr.Length))
	bx.PutU16At(buf, offset+4, uint16(hdr.Tag))
	buf[offset+6] = hdr.Properties
	buf[offset+7] = 0
}

// ObjectAt decodes the object header at a data-region offset and returns
// it together with a slice over its payload bytes. The returned slice
// aliases the page buffer.
func (p *Page) ObjectAt(offset int) (ObjectHdr, []byte) {
	hdr := readObjectHdr(p.Buf, offset)
	start := offset + ObjectHdrSize
	end := start + int(hdr.Length)
	return hdr, p.Buf[start:end]
}

// objectSpan is the number of bytes (header + aligned payload) occupied by
// the object whose header starts at offset.
func (p *Page) objectSpan(offset int) int {
	hdr := readObjectHdr(p.Buf, offset)
	return ObjectHdrSize + AlignedLength(int(hdr.Length))
}

// InsertAt performs the mechanical write path of object creation (§4.E
// steps 1-4): it appends a new slot, writes the object at the current
// free offset, and advances free. The caller must already have ensured
// neededSpace <= FreeWindow().
func (p *Page) InsertAt(tag int16, properties uint8, data []byte) (slot int, unique uint32, err error) {
	alignedLen := AlignedLength(len(data))
	needed := ObjectHdrSize + alignedLen + SlotSize
	if needed > p.FreeWindow() {
		return 0, 0, ErrNoSpace
	}

	i := p.NSlots()
	p.setNSlots(i + 1)

	off := p.Free()
	writeObjectHdr(p.Buf, off, ObjectHdr{Length: int32(len(data)), Tag: tag, Properties: properties})
	copy(p.Buf[off+ObjectHdrSize:off+ObjectHdrSize+len(data)], data)
	p.SetFree(off + ObjectHdrSize + alignedLen)

	u := p.NextUnique()
	p.setSlot(i, int32(off), u)
	return i, u, nil
}

// DestroySlot implements the boundary rule of §4.F steps 3-5: it
// tombstones the slot and either reclaims its bytes into the forward
// region (if it was the last slot) or counts them as a hole.
func (p *Page) DestroySlot(slot int) (reclaimed int, err error) {
	if slot < 0 || slot >= p.NSlots() || p.IsTombstone(slot) {
		return 0, ErrBadSlot
	}

	off, _, _ := p.Slot(slot)
	span := p.objectSpan(int(off))

	p.setSlot(slot, EmptySlot, p.slotUniqueField(slot))

	if slot == p.NSlots()-1 {
		p.setNSlots(slot)
		// Only the data-region cursor moves back here; the slot array's
		// own shrink is already reflected by the lower nSlots in
		// FreeWindow(), so SlotSize must not be subtracted a second time.
		p.SetFree(p.Free() - span)
	} else {
		p.SetUnused(p.Unused() + span)
	}
	return span, nil
}

func (p *Page) String() string {
	return fmt.Sprintf("page(%s nSlots=%d free=%d unused=%d)", p.PID(), p.NSlots(), p.Free(), p.Unused())
}
