// Package om is the object manager core: it places, removes, and scans
// variable-length objects inside the slotted pages maintained by
// internal/storage, using internal/bufferpool for page residency,
// internal/extent for fresh page allocation, and internal/catalog for a
// file's identity and free-space bookkeeping. It owns none of those
// resources itself; it only orchestrates them per the object-placement
// and object-removal algorithms.
package om
