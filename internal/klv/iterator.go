package klv

import "encoding/binary"

// Iterator is a restartable lazy walk over a table buffer. It performs the
// same bounds checks as Validate so an unvalidated or corrupted buffer stops
// the walk with Err set instead of reading out of range.
type Iterator struct {
	buf    []byte
	offset int
	err    error
}

// NewIterator returns an iterator positioned at the first record.
func NewIterator(buf []byte) *Iterator {
	return &Iterator{buf: buf}
}

// Next returns the next record. It reports false at end of table or on the
// first structural violation; the two cases are distinguished by Err.
func (it *Iterator) Next() (Record, bool) {
	if it.err != nil || it.offset >= len(it.buf) {
		return Record{}, false
	}
	remaining := len(it.buf) - it.offset
	if remaining < HeaderSize {
		it.err = &FormatError{Offset: it.offset, Err: ErrTruncatedHeader}
		return Record{}, false
	}
	key := binary.LittleEndian.Uint32(it.buf[it.offset : it.offset+4])
	length := binary.LittleEndian.Uint32(it.buf[it.offset+4 : it.offset+8])
	itemSize := uint64(HeaderSize) + uint64(length)*WordSize
	if itemSize > uint64(remaining) {
		it.err = &FormatError{Offset: it.offset, Err: ErrPayloadOverrun}
		return Record{}, false
	}
	value := it.buf[it.offset+HeaderSize : it.offset+int(itemSize)]
	it.offset += int(itemSize)
	return Record{Key: key, Length: length, Value: value}, true
}

// Reset rewinds the iterator to the first record and clears Err.
func (it *Iterator) Reset() {
	it.offset = 0
	it.err = nil
}

// Err reports the structural violation that stopped the walk, if any.
func (it *Iterator) Err() error { return it.err }
