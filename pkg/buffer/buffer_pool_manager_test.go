package buffer

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minidb/pkg/storage/disk"
)

func newTestFile(t *testing.T, path string) *disk.File {
	t.Helper()
	os.Remove(path)
	f, err := disk.Create(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		f.Close()
		os.Remove(path)
	})
	return f
}

func allocN(t *testing.T, f *disk.File, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, p := f.AllocatePage()
		require.NoError(t, f.WritePage(p))
	}
}

// A pool of size 2 with both frames pinned fails a third distinct
// miss with BufferExceeded.
func TestBufferExceeded(t *testing.T) {
	f := newTestFile(t, "test_exceeded.tbl")
	allocN(t, f, 3)
	pool := NewBufferPoolManager(2)

	_, err := pool.ReadPage(f, 0)
	require.NoError(t, err)
	_, err = pool.ReadPage(f, 1)
	require.NoError(t, err)
	_, err = pool.ReadPage(f, 2)
	assert.Error(t, err)
	assert.IsType(t, &BufferExceededError{}, err)
}

func TestUnpinCleanThenFlushCausesNoWriteback(t *testing.T) {
	f := newTestFile(t, "test_clean.tbl")
	allocN(t, f, 1)
	pool := NewBufferPoolManager(4)

	p, err := pool.ReadPage(f, 0)
	require.NoError(t, err)
	_, err = p.InsertRecord("r\tr0\t0")
	require.NoError(t, err)
	// Unpin clean: the insert above never gets flushed.
	require.NoError(t, pool.UnpinPage(f, 0, false))
	require.NoError(t, pool.FlushFile(f))

	back, err := disk.Open(f.Filename())
	require.NoError(t, err)
	defer back.Close()
	raw, err := back.ReadPage(0)
	require.NoError(t, err)
	_, ok := raw.Begin().Next()
	assert.False(t, ok, "unpin(dirty=false) must not have written the insert back")
}

func TestUnpinDirtyThenFlushWritesBack(t *testing.T) {
	f := newTestFile(t, "test_dirty.tbl")
	allocN(t, f, 1)
	pool := NewBufferPoolManager(4)

	p, err := pool.ReadPage(f, 0)
	require.NoError(t, err)
	_, err = p.InsertRecord("r\tr0\t0")
	require.NoError(t, err)
	require.NoError(t, pool.UnpinPage(f, 0, true))
	require.NoError(t, pool.FlushFile(f))

	back, err := disk.Open(f.Filename())
	require.NoError(t, err)
	defer back.Close()
	raw, err := back.ReadPage(0)
	require.NoError(t, err)
	rec, ok := raw.Begin().Next()
	require.True(t, ok)
	assert.Equal(t, "r\tr0\t0", rec)
}

func TestSecondFlushIsNoop(t *testing.T) {
	f := newTestFile(t, "test_double_flush.tbl")
	allocN(t, f, 1)
	pool := NewBufferPoolManager(4)

	p, err := pool.ReadPage(f, 0)
	require.NoError(t, err)
	require.NoError(t, pool.UnpinPage(f, 0, true))
	require.NoError(t, pool.FlushFile(f))
	// Nothing cached for f any more; second flush is a no-op.
	require.NoError(t, pool.FlushFile(f))
	_ = p
}

func TestDisposeRemovesFromCache(t *testing.T) {
	f := newTestFile(t, "test_dispose.tbl")
	pool := NewBufferPoolManager(4)

	id, _, err := pool.AllocPage(f)
	require.NoError(t, err)
	require.NoError(t, pool.UnpinPage(f, id, false))
	require.NoError(t, pool.DisposePage(f, id))

	// A fresh read must be a genuine miss (no dangling hash entry).
	p2, err := pool.ReadPage(f, id)
	require.NoError(t, err)
	_, ok := p2.Begin().Next()
	assert.False(t, ok)
}

// Unpinning a page that was never cached is silent.
func TestUnpinUncachedPageIsSilent(t *testing.T) {
	f := newTestFile(t, "test_uncached.tbl")
	pool := NewBufferPoolManager(4)
	assert.NoError(t, pool.UnpinPage(f, 7, false))
}

func TestUnpinAlreadyUnpinnedFails(t *testing.T) {
	f := newTestFile(t, "test_unpinned.tbl")
	allocN(t, f, 1)
	pool := NewBufferPoolManager(4)

	_, err := pool.ReadPage(f, 0)
	require.NoError(t, err)
	require.NoError(t, pool.UnpinPage(f, 0, false))

	err = pool.UnpinPage(f, 0, false)
	assert.Error(t, err)
	assert.IsType(t, &PageNotPinnedError{}, err)
}

func TestFlushEmptyFileIsNoop(t *testing.T) {
	f := newTestFile(t, "test_flush_empty.tbl")
	pool := NewBufferPoolManager(4)
	assert.NoError(t, pool.FlushFile(f))
}

// PagePinned: flush fails if a matching frame is still pinned.
func TestFlushFailsWhilePagePinned(t *testing.T) {
	f := newTestFile(t, "test_flush_pinned.tbl")
	allocN(t, f, 1)
	pool := NewBufferPoolManager(4)

	_, err := pool.ReadPage(f, 0)
	require.NoError(t, err)

	err = pool.FlushFile(f)
	assert.Error(t, err)
	assert.IsType(t, &PagePinnedError{}, err)
}

// With a pool of 3 and every ref bit set on fetch, the clock sweep
// needs a second pass before it can evict, and the surviving frame
// lands where the hand stops.
func TestClockSweepSecondChance(t *testing.T) {
	f := newTestFile(t, "test_clock.tbl")
	allocN(t, f, 4)
	pool := NewBufferPoolManager(3)

	_, err := pool.ReadPage(f, 0)
	require.NoError(t, err)
	require.NoError(t, pool.UnpinPage(f, 0, false))
	_, err = pool.ReadPage(f, 1)
	require.NoError(t, err)
	require.NoError(t, pool.UnpinPage(f, 1, false))
	_, err = pool.ReadPage(f, 2)
	require.NoError(t, err)
	require.NoError(t, pool.UnpinPage(f, 2, false))

	// All three frames are valid, unpinned, ref_bit=true. A 4th fetch
	// must force a second sweep pass (clearing ref bits) before it can
	// evict frame 0 and land page 3 there.
	p3, err := pool.ReadPage(f, 3)
	require.NoError(t, err)
	require.NotNil(t, p3)

	idx, ok := pool.hash.lookup(f.Filename(), 3)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

// A pool of size 1 still honors hit/miss.
func TestPoolSizeOneHitAndMiss(t *testing.T) {
	f := newTestFile(t, "test_size_one.tbl")
	allocN(t, f, 2)
	pool := NewBufferPoolManager(1)

	_, err := pool.ReadPage(f, 0)
	require.NoError(t, err)
	require.NoError(t, pool.UnpinPage(f, 0, false))

	_, err = pool.ReadPage(f, 1)
	require.NoError(t, err)

	_, ok := pool.hash.lookup(f.Filename(), 0)
	assert.False(t, ok, "page 0 must have been evicted to make room for page 1")
}

// Evicting a dirty frame triggers exactly one writeback.
func TestDirtyEvictionWritesBackOnce(t *testing.T) {
	f := newTestFile(t, "test_evict_dirty.tbl")
	allocN(t, f, 1) // page 0 pre-allocated on disk so the pool can later miss-fetch it
	pool := NewBufferPoolManager(1)

	id, p, err := pool.AllocPage(f)
	require.NoError(t, err)
	require.Equal(t, 1, int(id))
	_, err = p.InsertRecord("r\tr0\t0")
	require.NoError(t, err)
	require.NoError(t, pool.UnpinPage(f, id, true))

	// The only frame is now dirty and unpinned; fetching page 0 must
	// evict it, writing page 1's record back to disk first.
	_, err = pool.ReadPage(f, 0)
	require.NoError(t, err)

	back, err := disk.Open(f.Filename())
	require.NoError(t, err)
	defer back.Close()
	raw, err := back.ReadPage(1)
	require.NoError(t, err)
	rec, ok := raw.Begin().Next()
	require.True(t, ok)
	assert.Equal(t, "r\tr0\t0", rec)
}
