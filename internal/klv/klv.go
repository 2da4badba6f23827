package klv

import "encoding/binary"

const (
	// HeaderSize is the fixed record header: key u32 + length u32.
	HeaderSize = 8
	// WordSize is the size of one value word in bytes.
	WordSize = 4
)

// Record is one decoded table entry. Value aliases the table buffer and
// holds exactly Length words.
type Record struct {
	Key    uint32
	Length uint32
	Value  []byte
}

// Word returns value word i.
func (r Record) Word(i int) uint32 {
	return binary.LittleEndian.Uint32(r.Value[i*WordSize:])
}

// Words decodes the full value payload.
func (r Record) Words() []uint32 {
	out := make([]uint32, r.Length)
	for i := range out {
		out[i] = r.Word(i)
	}
	return out
}

// Validate scans buf as a record sequence and reports the first structural
// violation. The scan never reads past len(buf): every partial header and
// partial payload is rejected before any access. A nil or empty buffer is a
// valid table of zero records.
func Validate(buf []byte) error {
	if len(buf)%WordSize != 0 {
		return &FormatError{Offset: len(buf), Err: ErrMisalignedSize}
	}
	offset := 0
	for offset < len(buf) {
		remaining := len(buf) - offset
		if remaining < HeaderSize {
			return &FormatError{Offset: offset, Err: ErrTruncatedHeader}
		}
		length := binary.LittleEndian.Uint32(buf[offset+4 : offset+8])
		// 64-bit arithmetic so a pathological length cannot wrap.
		itemSize := uint64(HeaderSize) + uint64(length)*WordSize
		if itemSize > uint64(remaining) {
			return &FormatError{Offset: offset, Err: ErrPayloadOverrun}
		}
		offset += int(itemSize)
	}
	return nil
}

// Lookup scans buf for the first record with the given key. The buffer must
// already have passed Validate; a malformed tail terminates the scan early
// with no match.
func Lookup(buf []byte, key uint32) (Record, bool) {
	it := NewIterator(buf)
	for {
		rec, ok := it.Next()
		if !ok {
			return Record{}, false
		}
		if rec.Key == key {
			return rec, true
		}
	}
}

// AppendRecord appends one encoded record to dst and returns the extended
// slice. Used by device simulators and tests to build well-formed tables.
func AppendRecord(dst []byte, key uint32, words []uint32) []byte {
	var header [HeaderSize]byte
	binary.LittleEndian.PutUint32(header[0:4], key)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(words)))
	dst = append(dst, header[:]...)
	for _, w := range words {
		var word [WordSize]byte
		binary.LittleEndian.PutUint32(word[:], w)
		dst = append(dst, word[:]...)
	}
	return dst
}
