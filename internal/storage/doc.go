// Package storage implements the physical layer of the object store: the
// slotted-page layout, its bidirectional (forward data / backward slot
// array) growth, and the page compactor that reclaims scattered holes. It
// also owns the on-disk representation of pages, grouped into per-volume
// segment files.
//
// Everything above this package (buffer pool, extent allocator, object
// manager) treats a Page as an opaque, fixed-size byte buffer manipulated
// only through the accessors defined here.
package storage
