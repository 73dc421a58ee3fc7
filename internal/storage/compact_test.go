package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompactPage_PreservesLiveSlotIdentity(t *testing.T) {
	p := newTestPage(t)

	var uniques [3]uint32
	for i, s := range []string{"aaaa", "bbbb", "cccc"} {
		_, u, err := p.InsertAt(0, 0, []byte(s))
		require.NoError(t, err)
		uniques[i] = u
	}

	_, err := p.DestroySlot(1) // punch a hole in the middle
	require.NoError(t, err)
	holeBytes := p.Unused()
	require.Greater(t, holeBytes, 0)

	CompactPage(p, NilSlot)

	require.Equal(t, 0, p.Unused())
	require.Equal(t, 3, p.NSlots())
	require.True(t, p.IsTombstone(1))

	for _, i := range []int{0, 2} {
		off, u, err := p.Slot(i)
		require.NoError(t, err)
		require.Equal(t, uniques[i], u)
		_, data := p.ObjectAt(int(off))
		require.NotEmpty(t, data)
	}
}

func TestCompactPage_PivotPlacedLast(t *testing.T) {
	p := newTestPage(t)

	for _, s := range []string{"one", "two", "three"} {
		_, _, err := p.InsertAt(0, 0, []byte(s))
		require.NoError(t, err)
	}

	pivotOff, pivotUnique, err := p.Slot(0)
	require.NoError(t, err)
	_, pivotData := p.ObjectAt(int(pivotOff))
	pivotCopy := append([]byte(nil), pivotData...)

	CompactPage(p, 0)

	off, unique, err := p.Slot(0)
	require.NoError(t, err)
	require.Equal(t, pivotUnique, unique)
	_, data := p.ObjectAt(int(off))
	require.Equal(t, pivotCopy, data)

	// pivot's bytes must be the last thing written into the data region.
	require.Equal(t, int(off)+ObjectHdrSize+AlignedLength(len(pivotCopy)), p.Free())
}

func TestCompactPage_NoLiveSlotsResetsToEmpty(t *testing.T) {
	p := newTestPage(t)
	_, _, err := p.InsertAt(0, 0, []byte("solo"))
	require.NoError(t, err)
	_, err = p.DestroySlot(0)
	require.NoError(t, err)

	CompactPage(p, NilSlot)
	require.Equal(t, 0, p.Unused())
	require.Equal(t, HeaderSize, p.Free())
}
