// Package devicesim implements the device side of the config table action
// contract.
//
// Ownership boundary:
// - in-process loopback transport for tests and offline use
// - the wire-framed server loop for serving a table over a listener
//
// The simulated device holds a fixed blob. Any request whose destination
// descriptor is smaller than the blob is answered with the required size
// and no data, which is how hosts discover the size in round one.
package devicesim
