package bufferpool

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kywhang-go/eduom/internal/lock"
	"github.com/kywhang-go/eduom/internal/storage"
	"github.com/kywhang-go/eduom/pkg/clockx"
)

var (
	// ErrNoFreeFrame is returned when every frame is pinned and none can
	// be evicted to make room for a new page.
	ErrNoFreeFrame = errors.New("bufferpool: no free frame available (all pinned)")

	// ErrPagePinned is returned when an operation requires a page to be
	// unpinned but it is still in use.
	ErrPagePinned = errors.New("bufferpool: page is pinned")

	// ErrUnknownVolume is returned for a PageID whose volume was never
	// registered with the pool.
	ErrUnknownVolume = errors.New("bufferpool: unknown volume")

	DefaultCapacity = 128
)

// Manager is the buffered-page cache contract the object manager is
// written against (§6.1): Get/GetNew pin, Free unpins, MarkDirty flags a
// pinned page for write-back.
type Manager interface {
	// Get returns a pinned page, reading it from disk if it is not
	// already cached.
	Get(pid storage.PageID) (*storage.Page, error)

	// GetNew pins a page without reading it, formatting it as a fresh,
	// empty page of the given type. Used right after the extent
	// allocator hands out a new PageID.
	GetNew(pid storage.PageID, typ storage.PageType) (*storage.Page, error)

	// Free unpins a page (the inverse of Get/GetNew).
	Free(p *storage.Page) error

	// MarkDirty flags a pinned page as modified so it is written back on
	// eviction or FlushAll.
	MarkDirty(pid storage.PageID) error

	// FlushAll writes every dirty frame back to disk.
	FlushAll() error
}

// frame holds one cached page and its pool-local bookkeeping.
type frame struct {
	pid   storage.PageID
	page  *storage.Page
	fs    storage.FileSet
	dirty bool
	pin   *lock.RefCount
}

var _ Manager = (*Pool)(nil)

// Pool is a fixed-capacity buffer pool shared by every volume registered
// with it. It uses CLOCK (second-chance) replacement, mirroring how a
// real buffer manager amortizes eviction cost across many pinned pages.
type Pool struct {
	sm  *storage.Manager
	mu  sync.Mutex
	vol map[int32]storage.FileSet

	frames []*frame
	table  map[storage.PageID]int
	repl   *clockx.Clock
}

// NewPool creates a pool with the given frame capacity (DefaultCapacity
// if capacity <= 0).
func NewPool(sm *storage.Manager, capacity int) *Pool {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Pool{
		sm:     sm,
		vol:    make(map[int32]storage.FileSet),
		frames: make([]*frame, capacity),
		table:  make(map[storage.PageID]int),
		repl:   clockx.New(capacity),
	}
}

// RegisterVolume binds a volume number to the FileSet that stores it.
func (p *Pool) RegisterVolume(volume int32, fs storage.FileSet) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vol[volume] = fs
}

func (p *Pool) fileSetLocked(volume int32) (storage.FileSet, error) {
	fs, ok := p.vol[volume]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVolume, volume)
	}
	return fs, nil
}

func (p *Pool) Get(pid storage.PageID) (*storage.Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if idx, ok := p.table[pid]; ok {
		f := p.frames[idx]
		f.pin.Inc()
		p.repl.Touch(idx)
		p.repl.SetEvictable(idx, false)
		return f.page, nil
	}

	fs, err := p.fileSetLocked(pid.Volume)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, storage.PageSize)
	if err := p.sm.ReadPage(fs, pid.PageNo, buf); err != nil {
		return nil, err
	}
	page, err := storage.Wrap(buf)
	if err != nil {
		return nil, err
	}

	return p.installLocked(pid, fs, page, false)
}

func (p *Pool) GetNew(pid storage.PageID, typ storage.PageType) (*storage.Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.table[pid]; ok {
		return nil, fmt.Errorf("bufferpool: GetNew on already-cached page %s", pid)
	}

	fs, err := p.fileSetLocked(pid.Volume)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, storage.PageSize)
	page, err := storage.NewPage(buf, pid, typ)
	if err != nil {
		return nil, err
	}

	return p.installLocked(pid, fs, page, true)
}

// installLocked places page into a frame (free slot or CLOCK victim) and
// returns it pinned. Caller holds p.mu.
func (p *Pool) installLocked(pid storage.PageID, fs storage.FileSet, page *storage.Page, dirty bool) (*storage.Page, error) {
	freeIdx := -1
	for i, f := range p.frames {
		if f == nil {
			freeIdx = i
			break
		}
	}

	if freeIdx != -1 {
		p.frames[freeIdx] = &frame{pid: pid, page: page, fs: fs, dirty: dirty, pin: lock.NewRefCount()}
		p.table[pid] = freeIdx
		p.repl.Touch(freeIdx)
		p.repl.SetEvictable(freeIdx, false)
		return page, nil
	}

	victimIdx, ok := p.repl.Evict()
	if !ok {
		return nil, ErrNoFreeFrame
	}
	victim := p.frames[victimIdx]
	if victim.dirty {
		if err := p.sm.WritePage(victim.fs, victim.pid.PageNo, victim.page.Buf); err != nil {
			p.repl.Touch(victimIdx)
			p.repl.SetEvictable(victimIdx, true)
			return nil, err
		}
	}
	delete(p.table, victim.pid)

	slog.Debug("bufferpool: evicted frame", "victim", victim.pid, "loaded", pid)

	p.frames[victimIdx] = &frame{pid: pid, page: page, fs: fs, dirty: dirty, pin: lock.NewRefCount()}
	p.table[pid] = victimIdx
	p.repl.Touch(victimIdx)
	p.repl.SetEvictable(victimIdx, false)
	return page, nil
}

func (p *Pool) Free(page *storage.Page) error {
	if page == nil {
		return nil
	}
	pid := page.PID()

	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.table[pid]
	if !ok {
		return nil
	}
	f := p.frames[idx]
	if f.pin.Dec() {
		p.repl.SetEvictable(idx, true)
	}
	return nil
}

func (p *Pool) MarkDirty(pid storage.PageID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.table[pid]
	if !ok {
		return fmt.Errorf("bufferpool: MarkDirty on uncached page %s", pid)
	}
	p.frames[idx].dirty = true
	return nil
}

func (p *Pool) FlushAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, f := range p.frames {
		if f == nil || !f.dirty {
			continue
		}
		if err := p.sm.WritePage(f.fs, f.pid.PageNo, f.page.Buf); err != nil {
			return err
		}
		f.dirty = false
	}
	return nil
}
