package om

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDestroyObject_TailSlotShrinksPage(t *testing.T) {
	bp, alloc, entry := newTestFile(t)

	first, err := CreateObject(bp, alloc, entry, nil, 1, 0, []byte("a"))
	require.NoError(t, err)
	second, err := CreateObject(bp, alloc, entry, &first, 1, 0, []byte("b"))
	require.NoError(t, err)

	dl := &DeallocPool{}
	require.NoError(t, DestroyObject(bp, entry, dl, second))

	page, err := bp.Get(first.PageID)
	require.NoError(t, err)
	defer bp.Free(page)
	require.Equal(t, 1, page.NSlots())
}

func TestDestroyObject_MiddleSlotLeavesHole(t *testing.T) {
	bp, alloc, entry := newTestFile(t)

	a, err := CreateObject(bp, alloc, entry, nil, 1, 0, []byte("a"))
	require.NoError(t, err)
	b, err := CreateObject(bp, alloc, entry, &a, 1, 0, []byte("b"))
	require.NoError(t, err)
	_, err = CreateObject(bp, alloc, entry, &b, 1, 0, []byte("c"))
	require.NoError(t, err)

	dl := &DeallocPool{}
	require.NoError(t, DestroyObject(bp, entry, dl, b))

	page, err := bp.Get(a.PageID)
	require.NoError(t, err)
	defer bp.Free(page)
	require.Equal(t, 3, page.NSlots())
	require.True(t, page.IsTombstone(int(b.Slot)))
}

func TestDestroyObject_BadUniqueRejected(t *testing.T) {
	bp, alloc, entry := newTestFile(t)

	oid, err := CreateObject(bp, alloc, entry, nil, 1, 0, []byte("a"))
	require.NoError(t, err)

	stale := oid
	stale.Unique++

	dl := &DeallocPool{}
	err = DestroyObject(bp, entry, dl, stale)
	require.ErrorIs(t, err, ErrBadObjectID)
}

func TestDestroyObject_DoubleDestroyRejected(t *testing.T) {
	bp, alloc, entry := newTestFile(t)

	oid, err := CreateObject(bp, alloc, entry, nil, 1, 0, []byte("a"))
	require.NoError(t, err)

	dl := &DeallocPool{}
	require.NoError(t, DestroyObject(bp, entry, dl, oid))
	err = DestroyObject(bp, entry, dl, oid)
	require.ErrorIs(t, err, ErrBadObjectID)
}

func TestDestroyObject_EmptyNonFirstPageIsUnlinkedAndPooled(t *testing.T) {
	bp, alloc, entry := newTestFile(t)

	big := payload(1000)
	var oids []OID
	for i := 0; i < 5; i++ {
		oid, err := CreateObject(bp, alloc, entry, nil, 1, 0, big)
		require.NoError(t, err)
		oids = append(oids, oid)
	}
	require.NotEqual(t, entry.FirstPage, entry.LastPage)

	// Destroy every object that landed on the (non-first) last page.
	lastPage := entry.LastPageID()
	dl := &DeallocPool{}
	for _, oid := range oids {
		if oid.PageID != lastPage {
			continue
		}
		require.NoError(t, DestroyObject(bp, entry, dl, oid))
	}

	require.False(t, dl.Empty())
	popped, ok := dl.Pop()
	require.True(t, ok)
	require.Equal(t, lastPage, popped)
	require.NotEqual(t, lastPage.PageNo, entry.LastPage)
}

func TestDestroyObject_RejectsNilCatalogEntry(t *testing.T) {
	bp, _, _ := newTestFile(t)

	dl := &DeallocPool{}
	err := DestroyObject(bp, nil, dl, OID{})
	require.ErrorIs(t, err, ErrBadCatalog)
}

func TestDestroyObject_EmptyFirstPageSurvives(t *testing.T) {
	bp, alloc, entry := newTestFile(t)

	oid, err := CreateObject(bp, alloc, entry, nil, 1, 0, []byte("only"))
	require.NoError(t, err)

	dl := &DeallocPool{}
	require.NoError(t, DestroyObject(bp, entry, dl, oid))

	require.True(t, dl.Empty())
	require.Equal(t, entry.FirstPage, entry.LastPage)

	page, err := bp.Get(entry.FirstPageID())
	require.NoError(t, err)
	defer bp.Free(page)
	require.Equal(t, 0, page.NSlots())
}
