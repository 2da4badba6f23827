// Package klv owns the Key-Length-Value table format.
//
// Ownership boundary:
// - structural validation of fetched tables
// - lazy record iteration over validated buffers
// - record construction helpers for simulators and tests
//
// A table is a back-to-back concatenation of records with no padding, no
// terminator, and no record count. Each record is an 8-byte header (key u32,
// length u32) followed by length 32-bit words of value. Words are
// little-endian. End of table is exactly offset == len(buffer).
package klv
