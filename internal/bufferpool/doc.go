// Package bufferpool implements the buffered-page cache collaborator the
// object manager depends on (§6.1): pin-on-get, unpin-on-free, and
// explicit dirty marking. It is deliberately outside the object manager's
// own package so the manager only ever talks to the narrow Manager
// interface, never to eviction or I/O details.
package bufferpool
