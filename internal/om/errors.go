package om

import "errors"

var (
	// ErrBadCatalog is returned when an operation is given no catalog
	// entry (a nil *catalog.Entry). The fields of a non-nil entry are not
	// checked for consistency.
	ErrBadCatalog = errors.New("om: bad catalog entry")

	// ErrBadObjectID is returned when an OID's slot is out of range,
	// already destroyed, or its unique stamp no longer matches the slot.
	ErrBadObjectID = errors.New("om: bad object id")

	// ErrBadLength is returned for a negative length. Payloads beyond
	// storage.LrgObjThreshold are rejected with ErrNotSupported instead.
	ErrBadLength = errors.New("om: bad object length")

	// ErrBadUserBuf is returned when a caller-supplied buffer does not
	// match the length an operation expects to fill.
	ErrBadUserBuf = errors.New("om: bad user buffer")

	// ErrNotSupported is returned by CreateObject for a payload whose
	// aligned length exceeds storage.LrgObjThreshold; such objects belong
	// to the large-object store, which this core does not implement.
	ErrNotSupported = errors.New("om: not supported")

	// EndOfScan is a distinguished, non-error sentinel: NextObject and
	// PrevObject return it once the chain is exhausted in that
	// direction.
	EndOfScan = errors.New("om: end of scan")
)
