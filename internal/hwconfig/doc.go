// Package hwconfig owns retrieval and lifecycle of the hardware config
// table.
//
// Ownership boundary:
// - the two-round size-discovery-then-fetch handshake
// - staging window lifecycle during a fetch
// - the owned, validated table buffer and its read surface
//
// A Table moves Absent -> Populated exactly once on a successful
// Init and back to Absent on Fini. Every Init failure unwinds to Absent
// with no retained allocations. Once Populated the buffer is immutable and
// safe for unsynchronized concurrent reads.
package hwconfig
