package buffer

import (
	"fmt"

	"minidb/pkg/storage/page"
)

// BufferExceededError is returned when the clock sweep completes a
// full pass without finding an evictable frame: every frame is
// pinned.
type BufferExceededError struct{}

func (e *BufferExceededError) Error() string {
	return "buffer: no free frame available, all frames pinned"
}

// PageNotPinnedError is returned by UnpinPage when the cached page's
// pin count is already zero.
type PageNotPinnedError struct {
	Filename   string
	PageID     page.ID
	FrameIndex int
}

func (e *PageNotPinnedError) Error() string {
	return fmt.Sprintf("buffer: page %d of %s (frame %d) is not pinned", e.PageID, e.Filename, e.FrameIndex)
}

// PagePinnedError is returned by FlushFile when a frame belonging to
// the target file is still pinned.
type PagePinnedError struct {
	Filename   string
	PageID     page.ID
	FrameIndex int
}

func (e *PagePinnedError) Error() string {
	return fmt.Sprintf("buffer: page %d of %s (frame %d) is pinned", e.PageID, e.Filename, e.FrameIndex)
}

// BadBufferError signals a frame invariant violation encountered
// during flush: a frame whose owning file matches by filename but
// which is not valid. Under the pool's stated invariants this is
// unreachable; it exists as a defensive assertion.
type BadBufferError struct {
	FrameIndex int
	Dirty      bool
	Valid      bool
	RefBit     bool
}

func (e *BadBufferError) Error() string {
	return fmt.Sprintf("buffer: corrupted frame %d (dirty=%v valid=%v ref=%v)", e.FrameIndex, e.Dirty, e.Valid, e.RefBit)
}
