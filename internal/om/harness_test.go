package om

import (
	"testing"

	"github.com/kywhang-go/eduom/internal/bufferpool"
	"github.com/kywhang-go/eduom/internal/catalog"
	"github.com/kywhang-go/eduom/internal/extent"
	"github.com/kywhang-go/eduom/internal/storage"
	"github.com/stretchr/testify/require"
)

// newTestFile wires a buffer pool and extent allocator over a fresh
// temp-dir volume, allocates the file's first page, and returns a
// catalog entry describing a brand-new, empty, single-page file.
func newTestFile(t *testing.T) (*bufferpool.Pool, *extent.SimpleAllocator, *catalog.Entry) {
	t.Helper()
	dir := t.TempDir()
	sm := storage.NewManager()
	fs := storage.LocalFileSet{Dir: dir, Base: "data"}

	bp := bufferpool.NewPool(sm, 16)
	bp.RegisterVolume(1, fs)
	alloc := extent.NewSimpleAllocator(sm)
	alloc.RegisterVolume(1, fs)

	entry, err := CreateFile(bp, alloc, 1, 100)
	require.NoError(t, err)
	return bp, alloc, &entry
}

func payload(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('a' + i%26)
	}
	return b
}
