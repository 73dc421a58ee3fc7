package catalog

import (
	"fmt"

	"github.com/kywhang-go/eduom/internal/bufferpool"
	"github.com/kywhang-go/eduom/internal/storage"
)

// CreateEntry allocates a fresh catalog entry for a new file inside an
// already-existing directory page, and returns the slot it landed at. The
// caller is responsible for persisting (catalogPage, slot) as the file's
// catalog OID.
func CreateEntry(bp bufferpool.Manager, catalogPID storage.PageID, volume int32, firstPage uint32, eff int16) (slot int, err error) {
	page, err := bp.Get(catalogPID)
	if err != nil {
		return 0, fmt.Errorf("catalog: pin directory page: %w", err)
	}
	defer bp.Free(page)

	entry := NewEntry(volume, firstPage, eff)
	slot, _, err = page.InsertAt(0, 0, entry.encode())
	if err != nil {
		return 0, fmt.Errorf("catalog: write entry: %w", err)
	}
	if err := bp.MarkDirty(catalogPID); err != nil {
		return 0, err
	}
	return slot, nil
}

// ReadEntry pins the catalog page, decodes the entry at slot, and unpins
// before returning. Per the object manager's pinning discipline, every
// lookup of the catalog overlay is its own short-lived pin (§9 Open
// Question #2).
func ReadEntry(bp bufferpool.Manager, pid storage.PageID, slot int) (Entry, error) {
	page, err := bp.Get(pid)
	if err != nil {
		return Entry{}, fmt.Errorf("catalog: pin directory page: %w", err)
	}
	defer bp.Free(page)

	if slot < 0 || slot >= page.NSlots() || page.IsTombstone(slot) {
		return Entry{}, fmt.Errorf("catalog: bad catalog slot %d on %s", slot, pid)
	}
	off, _, err := page.Slot(slot)
	if err != nil {
		return Entry{}, err
	}
	hdr, payload := page.ObjectAt(int(off))
	if int(hdr.Length) != EncodedSize {
		return Entry{}, fmt.Errorf("catalog: entry at %s/%d has unexpected size %d", pid, slot, hdr.Length)
	}
	return decodeEntry(payload), nil
}

// WriteEntry overwrites the entry at slot in place. The encoded form is
// fixed-size, so this never needs to move the object or touch the slot
// array; the bytes are simply copied over the existing payload.
func WriteEntry(bp bufferpool.Manager, pid storage.PageID, slot int, e Entry) error {
	page, err := bp.Get(pid)
	if err != nil {
		return fmt.Errorf("catalog: pin directory page: %w", err)
	}
	defer bp.Free(page)

	if slot < 0 || slot >= page.NSlots() || page.IsTombstone(slot) {
		return fmt.Errorf("catalog: bad catalog slot %d on %s", slot, pid)
	}
	off, _, err := page.Slot(slot)
	if err != nil {
		return err
	}
	hdr, payload := page.ObjectAt(int(off))
	if int(hdr.Length) != EncodedSize {
		return fmt.Errorf("catalog: entry at %s/%d has unexpected size %d", pid, slot, hdr.Length)
	}
	copy(payload, e.encode())
	return bp.MarkDirty(pid)
}
