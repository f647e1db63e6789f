package zfs

import "errors"

// Common errors returned by property store operations.
//
// These can be checked with errors.Is:
//
//	if errors.Is(err, zfs.ErrZFSNotAvailable) {
//	    // zfs/zpool binaries are not installed
//	}
var (
	// ErrZFSNotAvailable is returned when the zfs or zpool binary is
	// not installed or not in PATH.
	ErrZFSNotAvailable = errors.New("zfs binary not available")

	// ErrNoPools is returned when no storage pools exist on the host.
	ErrNoPools = errors.New("no storage pools found")
)
