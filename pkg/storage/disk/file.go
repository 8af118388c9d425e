// Package disk implements the heap-file collaborator the buffer pool
// seats pages from: a thin os.File wrapper addressing fixed-size pages
// by sequential id, with allocation and deletion kept deliberately
// dumb (no free-space reuse) to match the teaching-grade storage layer
// this lab targets.
package disk

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"minidb/pkg/storage/page"
)

// ErrFileNotFound is returned by Open and Remove when the path does
// not exist.
var ErrFileNotFound = errors.New("disk: file not found")

// ErrFileExists is returned by Create when the path already exists.
var ErrFileExists = errors.New("disk: file already exists")

// ErrInvalidPage is returned by ReadPage when the requested id was
// never allocated.
var ErrInvalidPage = errors.New("disk: invalid page id")

// File is a heap file: an append-only sequence of fixed-size pages.
// Its filename is the identity the buffer pool uses throughout (frame
// ownership, the hash index, flush scoping). Two *File values opened
// on the same path are interchangeable as far as the pool is
// concerned.
type File struct {
	path       string
	f          *os.File
	nextPageID page.ID
}

// Create makes a new, empty heap file at path. It fails with
// ErrFileExists if the path is already occupied.
func Create(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrFileExists
		}
		return nil, errors.Wrapf(err, "disk: create %s", path)
	}
	return &File{path: path, f: f}, nil
}

// Open opens an existing heap file, recovering its page count from
// its current size on disk.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, errors.Wrapf(err, "disk: open %s", path)
	}
	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "disk: stat %s", path)
	}
	return &File{path: path, f: f, nextPageID: page.ID(info.Size() / page.Size)}, nil
}

// Remove deletes the heap file at path. It fails with ErrFileNotFound
// if the path does not exist.
func Remove(path string) error {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrFileNotFound
		}
		return errors.Wrapf(err, "disk: remove %s", path)
	}
	return nil
}

// Filename returns the path this file was created or opened with.
func (f *File) Filename() string { return f.path }

// Close releases the underlying OS file handle.
func (f *File) Close() error { return f.f.Close() }

// PageCount returns the number of pages ever allocated in this file,
// i.e. the exclusive upper bound of valid page ids.
func (f *File) PageCount() page.ID { return f.nextPageID }

// AllocatePage hands out the next sequential page id and a freshly
// initialized in-memory page carrying it. No disk I/O happens here;
// the buffer pool writes the page back on eviction or flush once it
// has been unpinned dirty.
func (f *File) AllocatePage() (page.ID, *page.Page) {
	id := f.nextPageID
	f.nextPageID++
	return id, page.New(id)
}

// ReadPage reads the page at id from disk. An allocated page that was
// never written back reads as a fresh empty page.
func (f *File) ReadPage(id page.ID) (*page.Page, error) {
	if id < 0 || id >= f.nextPageID {
		return nil, ErrInvalidPage
	}
	p := page.New(id)
	if _, err := f.f.Seek(int64(id)*int64(page.Size), io.SeekStart); err != nil {
		return nil, errors.Wrapf(err, "disk: seek %s", f.path)
	}
	if _, err := io.ReadFull(f.f, p.Data[:]); err != nil {
		if err == io.EOF {
			return p, nil
		}
		return nil, errors.Wrapf(err, "disk: read page %d of %s", id, f.path)
	}
	return p, nil
}

// WritePage writes p back to its own page number's slot on disk.
func (f *File) WritePage(p *page.Page) error {
	if _, err := f.f.Seek(int64(p.PageNumber())*int64(page.Size), io.SeekStart); err != nil {
		return errors.Wrapf(err, "disk: seek %s", f.path)
	}
	if _, err := f.f.Write(p.Data[:]); err != nil {
		return errors.Wrapf(err, "disk: write page %d of %s", p.PageNumber(), f.path)
	}
	return nil
}

// DeletePage is a deliberate no-op: heap files in this lab never
// reclaim disk space, matching the original insert-only workload.
func (f *File) DeletePage(page.ID) error {
	return nil
}
