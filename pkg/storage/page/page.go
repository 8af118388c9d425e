// Package page implements the slotted heap page used as the unit of
// storage underneath the buffer pool: a fixed-size byte array holding
// a header, a slot directory, and variable-length record bodies.
package page

import (
	"encoding/binary"
	"errors"
)

// Size is the fixed size of every page on disk and in the pool.
const Size = 4096

// ID identifies a page within a single file. -1 denotes no page.
type ID int32

// InvalidID is the id of a page that does not exist.
const InvalidID ID = -1

// RecordID locates a record within a file: the page it lives on and
// its slot within that page's directory.
type RecordID struct {
	PageNum ID
	SlotNum int32
}

const (
	offSlotCount  = 0
	offFreeOffset = 4
	slotDirStart  = 8
	slotEntrySize = 8 // bodyOffset int32 + length int32

	tombstoneLength = -1
)

// ErrPageFull is returned by InsertRecord when the free region cannot
// hold the new record's body plus a new slot entry.
var ErrPageFull = errors.New("page: not enough free space for record")

// ErrSlotOutOfRange is returned when a RecordID addresses a slot this
// page's directory does not contain.
var ErrSlotOutOfRange = errors.New("page: slot number out of range")

// Page is an in-memory, byte-identical snapshot of an on-disk page
// plus its stable identifier. The pool treats this as the authoritative
// copy of the page's bytes until it is evicted or flushed.
type Page struct {
	id   ID
	Data [Size]byte
}

// New returns a freshly initialized, empty page with the given id.
func New(id ID) *Page {
	p := &Page{id: id}
	p.Init()
	return p
}

// Init resets the page to the empty state: zero slots, free region
// spanning the whole body.
func (p *Page) Init() {
	p.setSlotCount(0)
	p.setFreeOffset(Size)
}

// PageNumber returns this page's stable identifier.
func (p *Page) PageNumber() ID {
	return p.id
}

// SetPageNumber overwrites the page's identifier.
func (p *Page) SetPageNumber(id ID) {
	p.id = id
}

func (p *Page) slotCount() int32 {
	return int32(binary.LittleEndian.Uint32(p.Data[offSlotCount:]))
}

func (p *Page) setSlotCount(n int32) {
	binary.LittleEndian.PutUint32(p.Data[offSlotCount:], uint32(n))
}

func (p *Page) freeOffset() int32 {
	return int32(binary.LittleEndian.Uint32(p.Data[offFreeOffset:]))
}

func (p *Page) setFreeOffset(off int32) {
	binary.LittleEndian.PutUint32(p.Data[offFreeOffset:], uint32(off))
}

func slotEntryOffset(slot int32) int32 {
	return slotDirStart + slot*slotEntrySize
}

func (p *Page) slotBody(slot int32) (offset, length int32) {
	o := slotEntryOffset(slot)
	offset = int32(binary.LittleEndian.Uint32(p.Data[o:]))
	length = int32(binary.LittleEndian.Uint32(p.Data[o+4:]))
	return
}

func (p *Page) setSlotBody(slot, offset, length int32) {
	o := slotEntryOffset(slot)
	binary.LittleEndian.PutUint32(p.Data[o:], uint32(offset))
	binary.LittleEndian.PutUint32(p.Data[o+4:], uint32(length))
}

// InsertRecord appends record to the page's free region and returns
// its slot's RecordID. Record bodies grow downward from the end of the
// page; the slot directory grows upward from offset 8.
func (p *Page) InsertRecord(record string) (RecordID, error) {
	slotCount := p.slotCount()
	dirEnd := slotEntryOffset(slotCount + 1)
	need := int32(len(record))
	newFree := p.freeOffset() - need
	if newFree < dirEnd {
		return RecordID{}, ErrPageFull
	}
	copy(p.Data[newFree:newFree+need], record)
	p.setSlotBody(slotCount, newFree, need)
	p.setFreeOffset(newFree)
	p.setSlotCount(slotCount + 1)
	return RecordID{PageNum: p.id, SlotNum: slotCount}, nil
}

// DeleteRecord tombstones the record at rid's slot; the slot number
// stays allocated (and the space is not reclaimed), matching the
// teaching-grade implementation's deliberate simplicity.
func (p *Page) DeleteRecord(rid RecordID) error {
	if rid.SlotNum < 0 || rid.SlotNum >= p.slotCount() {
		return ErrSlotOutOfRange
	}
	offset, _ := p.slotBody(rid.SlotNum)
	p.setSlotBody(rid.SlotNum, offset, tombstoneLength)
	return nil
}

// Record returns the live record stored at slot, or false if the slot
// is out of range or tombstoned.
func (p *Page) Record(slot int32) (string, bool) {
	if slot < 0 || slot >= p.slotCount() {
		return "", false
	}
	offset, length := p.slotBody(slot)
	if length == tombstoneLength {
		return "", false
	}
	return string(p.Data[offset : offset+length]), true
}

// Iterator walks the page's live records in slot order.
type Iterator struct {
	page *Page
	slot int32
}

// Begin returns an iterator positioned before the first live record.
func (p *Page) Begin() *Iterator {
	return &Iterator{page: p, slot: -1}
}

// Next advances to the next live record and returns it, or ("", false)
// once the directory is exhausted.
func (it *Iterator) Next() (string, bool) {
	count := it.page.slotCount()
	for {
		it.slot++
		if it.slot >= count {
			return "", false
		}
		if rec, ok := it.page.Record(it.slot); ok {
			return rec, true
		}
	}
}
