// Package device owns the host-to-companion action contract.
//
// Ownership boundary:
// - action and status code definitions
// - the blocking Transport round-trip interface
// - status to error mapping
//
// One action shape serves both size discovery and the actual transfer: a
// request carrying a zero destination size asks the device for the required
// table size, a request carrying a real descriptor asks it to write the
// table there. The device reports the required size whenever the caller
// under-provisions, which doubles as the discovery mechanism.
package device
