package db

import (
	"minidb/pkg/buffer"
	"minidb/pkg/storage/disk"
	"minidb/pkg/storage/page"
)

// TableScanner walks a heap file's records in page order through the
// buffer pool, pinning each page for the duration of its own records
// and unpinning clean once exhausted.
type TableScanner struct {
	file *disk.File
	pool *buffer.BufferPoolManager
}

// NewTableScanner returns a scanner over file, reading pages through
// pool.
func NewTableScanner(file *disk.File, pool *buffer.BufferPoolManager) *TableScanner {
	return &TableScanner{file: file, pool: pool}
}

// Each invokes fn once per live record in file order. If fn returns an
// error, the scan stops immediately (after unpinning the current
// page) and returns that error; a pool error aborts the scan the same
// way.
func (s *TableScanner) Each(fn func(record string) error) error {
	for id := page.ID(0); id < s.file.PageCount(); id++ {
		p, err := s.pool.ReadPage(s.file, id)
		if err != nil {
			return err
		}
		it := p.Begin()
		for {
			rec, ok := it.Next()
			if !ok {
				break
			}
			if err := fn(rec); err != nil {
				s.pool.UnpinPage(s.file, id, false)
				return err
			}
		}
		if err := s.pool.UnpinPage(s.file, id, false); err != nil {
			return err
		}
	}
	return nil
}
