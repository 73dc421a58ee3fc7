package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kywhang-go/eduom/internal/alias/util"
)

// SegmentSize bounds how many bytes live in one on-disk segment file
// before a volume rolls over to the next one.
const SegmentSize = 1 * OneGB

// FileSet opens the on-disk segment files backing one volume.
type FileSet interface {
	OpenSegment(segNo int32) (*os.File, error)
}

var _ FileSet = (*LocalFileSet)(nil)

// LocalFileSet stores a volume as Base, Base.1, Base.2, ... inside Dir.
type LocalFileSet struct {
	Dir  string
	Base string
}

func (lfs LocalFileSet) OpenSegment(segNo int32) (*os.File, error) {
	name := lfs.Base
	if segNo > 0 {
		name = fmt.Sprintf("%s.%d", lfs.Base, segNo)
	}
	path := filepath.Join(lfs.Dir, name)
	if err := os.MkdirAll(lfs.Dir, FileMode0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_RDWR|os.O_CREATE, FileMode0644)
}

const (
	FileMode0644 = 0o644
	FileMode0755 = 0o755
)

// Manager maps a logical (volume, pageNo) to a byte offset inside a
// volume's segment files and performs the raw reads/writes. It has no
// knowledge of page contents beyond their fixed size.
type Manager struct{}

func NewManager() *Manager { return &Manager{} }

func (m *Manager) pagesPerSegment() int {
	return SegmentSize / PageSize
}

func (m *Manager) locate(pageNo uint32) (segNo int32, offset int64) {
	pps := int64(m.pagesPerSegment())
	segNo = int32(int64(pageNo) / pps)
	pageInSeg := int64(pageNo) % pps
	offset = pageInSeg * PageSize
	return segNo, offset
}

// ReadPage reads exactly one page into dst, zero-filling any portion that
// lies past the current end of file (a page that was never written is
// treated as an all-zero, uninitialized page).
func (m *Manager) ReadPage(fs FileSet, pageNo uint32, dst []byte) error {
	if len(dst) != PageSize {
		return ErrPageTooSmall
	}
	segNo, off := m.locate(pageNo)
	f, err := fs.OpenSegment(segNo)
	if err != nil {
		return err
	}
	defer util.CloseFileFunc(f)

	n, err := f.ReadAt(dst, off)
	if err != nil && err != io.EOF {
		return err
	}
	for i := n; i < PageSize; i++ {
		dst[i] = 0
	}
	return nil
}

// WritePage writes exactly one page to disk at the location computed from
// pageNo.
func (m *Manager) WritePage(fs FileSet, pageNo uint32, src []byte) error {
	if len(src) != PageSize {
		return ErrPageTooSmall
	}
	segNo, off := m.locate(pageNo)
	f, err := fs.OpenSegment(segNo)
	if err != nil {
		return err
	}
	defer util.CloseFileFunc(f)

	n, err := f.WriteAt(src, off)
	if err != nil {
		return err
	}
	if n != PageSize {
		return io.ErrShortWrite
	}
	return nil
}

// CountPages scans every segment file of fs and returns the total number
// of pages currently occupying disk, used by the extent allocator to hand
// out fresh page numbers.
//
// It stats segment files without creating them; OpenSegment itself always
// creates the file it is asked for, so segment existence is checked
// through os.Stat on LocalFileSet's own path computation instead.
func (m *Manager) CountPages(fs FileSet) (uint32, error) {
	lfs, ok := fs.(LocalFileSet)
	if !ok {
		return 0, fmt.Errorf("storage: CountPages requires a LocalFileSet")
	}

	var total uint32
	for segNo := int32(0); ; segNo++ {
		name := lfs.Base
		if segNo > 0 {
			name = fmt.Sprintf("%s.%d", lfs.Base, segNo)
		}
		info, err := os.Stat(filepath.Join(lfs.Dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				break
			}
			return 0, err
		}
		total += uint32(info.Size() / PageSize)
	}
	return total, nil
}
