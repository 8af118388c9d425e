package db

import (
	"github.com/sirupsen/logrus"

	"minidb/pkg/buffer"
	"minidb/pkg/storage/disk"
	"minidb/pkg/storage/page"
)

// isPoolVisibleError reports whether err is one of the four buffer
// pool error kinds this layer's diagnostic contract catches.
func isPoolVisibleError(err error) bool {
	switch err.(type) {
	case *buffer.BufferExceededError, *buffer.PageNotPinnedError,
		*buffer.PagePinnedError, *buffer.BadBufferError:
		return true
	default:
		return false
	}
}

func logPoolError(op string, err error) {
	logrus.WithError(err).WithField("op", op).Warn("heapfile: buffer pool operation failed")
}

// InsertTuple allocates a fresh page, appends tuple to it, and
// flushes the file. It always allocates a new page per tuple.
//
// Errors raised by the buffer pool are caught and logged; the call
// then returns a zero-value RecordID rather than propagating, matching
// this layer's diagnostic-only error contract.
func InsertTuple(tuple string, file *disk.File, pool *buffer.BufferPoolManager) page.RecordID {
	id, p, err := pool.AllocPage(file)
	if err != nil {
		if isPoolVisibleError(err) {
			logPoolError("insert_tuple.alloc", err)
			return page.RecordID{}
		}
		panic(err)
	}

	rid, err := p.InsertRecord(tuple)
	if err != nil {
		// ErrPageFull is a storage-layer error, not a pool-visible one;
		// it is not part of this layer's catch contract.
		panic(err)
	}

	if err := pool.UnpinPage(file, id, true); err != nil {
		if isPoolVisibleError(err) {
			logPoolError("insert_tuple.unpin", err)
			return page.RecordID{}
		}
		panic(err)
	}
	if err := pool.FlushFile(file); err != nil {
		if isPoolVisibleError(err) {
			logPoolError("insert_tuple.flush", err)
			return page.RecordID{}
		}
		panic(err)
	}
	return rid
}

// DeleteTuple reads rid's page, tombstones the record, and flushes the
// file. Like InsertTuple, pool errors are caught and logged rather
// than propagated.
func DeleteTuple(rid page.RecordID, file *disk.File, pool *buffer.BufferPoolManager) {
	p, err := pool.ReadPage(file, rid.PageNum)
	if err != nil {
		if isPoolVisibleError(err) {
			logPoolError("delete_tuple.read", err)
			return
		}
		panic(err)
	}

	if err := p.DeleteRecord(rid); err != nil {
		panic(err)
	}

	if err := pool.UnpinPage(file, rid.PageNum, true); err != nil {
		if isPoolVisibleError(err) {
			logPoolError("delete_tuple.unpin", err)
			return
		}
		panic(err)
	}
	if err := pool.FlushFile(file); err != nil {
		if isPoolVisibleError(err) {
			logPoolError("delete_tuple.flush", err)
		} else {
			panic(err)
		}
	}
}
