package buffer

import (
	"minidb/pkg/storage/disk"
	"minidb/pkg/storage/page"
)

// frame is one slot of the buffer pool's frame descriptor table. It
// holds a weak (non-owning) reference to the file a cached page
// belongs to. File identity throughout the pool is the file's
// filename, not this pointer.
type frame struct {
	index    int
	valid    bool
	file     *disk.File
	pageID   page.ID
	pinCount int
	dirty    bool
	refBit   bool
}

// clear resets a frame to the empty state. Called on eviction, flush,
// and dispose.
func (f *frame) clear() {
	f.valid = false
	f.file = nil
	f.pageID = 0
	f.pinCount = 0
	f.dirty = false
	f.refBit = false
}

// seat transitions an empty frame to Seated(pin=1, clean, ref=true)
// after a miss-fill.
func (f *frame) seat(file *disk.File, id page.ID) {
	f.valid = true
	f.file = file
	f.pageID = id
	f.pinCount = 1
	f.dirty = false
	f.refBit = true
}
