package buffer

import (
	"encoding/binary"

	"github.com/OneOfOne/xxhash"

	"minidb/pkg/storage/page"
)

// frameKey identifies a cached page by the filename of its owning
// file and its page id. File identity is filename equality, never
// pointer equality. Two *disk.File handles opened on the same path
// are the same file as far as the pool is concerned.
type frameKey struct {
	filename string
	pageID   page.ID
}

type hashEntry struct {
	key   frameKey
	frame int
	next  *hashEntry
}

// frameHashIndex is a chained bucket array mapping (filename, pageID)
// to a frame index, sized to roughly 1.2x the pool size as the
// original buffer manager does.
type frameHashIndex struct {
	buckets []*hashEntry
}

func newFrameHashIndex(poolSize int) *frameHashIndex {
	size := int(float64(poolSize)*1.2) + 1
	if size < 1 {
		size = 1
	}
	return &frameHashIndex{buckets: make([]*hashEntry, size)}
}

func (h *frameHashIndex) bucketOf(filename string, id page.ID) int {
	hasher := xxhash.New64()
	hasher.Write([]byte(filename))
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(id))
	hasher.Write(buf[:])
	return int(hasher.Sum64() % uint64(len(h.buckets)))
}

// insert adds a mapping. Keys are compared by filename equality for
// file identity and exact equality for page id.
func (h *frameHashIndex) insert(filename string, id page.ID, frameIndex int) {
	b := h.bucketOf(filename, id)
	h.buckets[b] = &hashEntry{key: frameKey{filename, id}, frame: frameIndex, next: h.buckets[b]}
}

// lookup returns the frame index for (filename, id), or false if
// absent.
func (h *frameHashIndex) lookup(filename string, id page.ID) (int, bool) {
	b := h.bucketOf(filename, id)
	for e := h.buckets[b]; e != nil; e = e.next {
		if e.key.filename == filename && e.key.pageID == id {
			return e.frame, true
		}
	}
	return 0, false
}

// remove deletes the mapping for (filename, id). Removing an absent
// key is a no-op.
func (h *frameHashIndex) remove(filename string, id page.ID) {
	b := h.bucketOf(filename, id)
	var prev *hashEntry
	for e := h.buckets[b]; e != nil; e = e.next {
		if e.key.filename == filename && e.key.pageID == id {
			if prev == nil {
				h.buckets[b] = e.next
			} else {
				prev.next = e.next
			}
			return
		}
		prev = e
	}
}
