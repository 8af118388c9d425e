// Package buffer implements the fixed-size page buffer pool: a
// clock-replacement cache over disk pages with pin-count lifecycle,
// dirty writeback, and hash-indexed frame lookup.
package buffer

import (
	"sync"

	"minidb/pkg/storage/disk"
	"minidb/pkg/storage/page"
)

// BufferPoolManager is a fixed-size cache of disk pages. Frames are
// allocated once at construction and evicted via a clock (second
// chance) sweep. The pool is single-threaded by the surrounding
// system's design; the mutex exists so a later caller is free to
// expose it concurrently without changing behavior today.
type BufferPoolManager struct {
	mu        sync.Mutex
	frames    []frame
	pages     []page.Page
	hash      *frameHashIndex
	clockHand int
}

// NewBufferPoolManager constructs a pool of numFrames frames. The
// clock hand starts at numFrames-1 so the first sweep begins at 0.
func NewBufferPoolManager(numFrames int) *BufferPoolManager {
	b := &BufferPoolManager{
		frames:    make([]frame, numFrames),
		pages:     make([]page.Page, numFrames),
		hash:      newFrameHashIndex(numFrames),
		clockHand: numFrames - 1,
	}
	for i := range b.frames {
		b.frames[i].index = i
	}
	return b
}

// allocBuf runs the clock sweep to find an evictable frame, writing
// back a dirty victim before reclaiming it. Must be called with mu
// held.
func (b *BufferPoolManager) allocBuf() (int, error) {
	skippedPinned := 0
	for {
		if skippedPinned == len(b.frames) {
			return 0, &BufferExceededError{}
		}
		b.clockHand = (b.clockHand + 1) % len(b.frames)
		f := &b.frames[b.clockHand]
		if !f.valid {
			return f.index, nil
		}
		if f.refBit {
			f.refBit = false
			continue
		}
		if f.pinCount > 0 {
			skippedPinned++
			continue
		}
		if f.dirty {
			if err := f.file.WritePage(&b.pages[f.index]); err != nil {
				return 0, err
			}
		}
		b.hash.remove(f.file.Filename(), f.pageID)
		f.clear()
		return f.index, nil
	}
}

// ReadPage returns the cached bytes for (file, id), fetching them
// from disk on a miss. A hit sets the frame's ref bit and increments
// its pin count; a miss evicts a frame via the clock sweep, reads the
// page from file, and seats it with pin count 1.
func (b *BufferPoolManager) ReadPage(file *disk.File, id page.ID) (*page.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if idx, ok := b.hash.lookup(file.Filename(), id); ok {
		f := &b.frames[idx]
		f.refBit = true
		f.pinCount++
		return &b.pages[idx], nil
	}

	idx, err := b.allocBuf()
	if err != nil {
		return nil, err
	}
	bytes, err := file.ReadPage(id)
	if err != nil {
		return nil, err
	}
	b.pages[idx] = *bytes
	b.hash.insert(file.Filename(), id, idx)
	b.frames[idx].seat(file, id)
	return &b.pages[idx], nil
}

// AllocPage asks file for a freshly allocated page, evicts a frame
// for it via the clock sweep, and seats it with pin count 1.
func (b *BufferPoolManager) AllocPage(file *disk.File) (page.ID, *page.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id, newPage := file.AllocatePage()
	idx, err := b.allocBuf()
	if err != nil {
		return page.InvalidID, nil, err
	}
	b.pages[idx] = *newPage
	b.hash.insert(file.Filename(), id, idx)
	b.frames[idx].seat(file, id)
	return id, &b.pages[idx], nil
}

// UnpinPage decrements the pin count of the cached (file, id), and if
// dirty is true marks the frame dirty first. Unpinning a page that
// was never cached silently succeeds.
func (b *BufferPoolManager) UnpinPage(file *disk.File, id page.ID, dirty bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx, ok := b.hash.lookup(file.Filename(), id)
	if !ok {
		return nil
	}
	f := &b.frames[idx]
	if dirty {
		f.dirty = true
	}
	if f.pinCount == 0 {
		return &PageNotPinnedError{Filename: file.Filename(), PageID: id, FrameIndex: idx}
	}
	f.pinCount--
	return nil
}

// FlushFile writes back every dirty frame belonging to file and
// removes their hash entries. It does not advance the clock hand and
// visits frames in ascending index order.
func (b *BufferPoolManager) FlushFile(file *disk.File) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.frames {
		f := &b.frames[i]
		if f.file == nil || f.file.Filename() != file.Filename() {
			continue
		}
		if !f.valid {
			return &BadBufferError{FrameIndex: f.index, Dirty: f.dirty, Valid: false, RefBit: f.refBit}
		}
		if f.pinCount > 0 {
			return &PagePinnedError{Filename: file.Filename(), PageID: f.pageID, FrameIndex: f.index}
		}
		if f.dirty {
			if err := file.WritePage(&b.pages[f.index]); err != nil {
				return err
			}
			f.dirty = false
		}
		b.hash.remove(file.Filename(), f.pageID)
		f.clear()
	}
	return nil
}

// DisposePage evicts (file, id) from the pool if cached and instructs
// file to delete it on disk.
func (b *BufferPoolManager) DisposePage(file *disk.File, id page.ID) error {
	b.mu.Lock()
	idx, ok := b.hash.lookup(file.Filename(), id)
	if ok {
		b.frames[idx].clear()
		b.hash.remove(file.Filename(), id)
	}
	b.mu.Unlock()
	return file.DeletePage(id)
}

// Close flushes every dirty frame still held by the pool, regardless
// of which file it belongs to. The test driver relies on data having
// reached disk before it scans result files, so callers should flush
// per-file with FlushFile during normal operation and only rely on
// Close as a teardown backstop.
func (b *BufferPoolManager) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.frames {
		f := &b.frames[i]
		if f.valid && f.dirty {
			if err := f.file.WritePage(&b.pages[f.index]); err != nil {
				return err
			}
			f.dirty = false
		}
	}
	return nil
}
