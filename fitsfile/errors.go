package fitsfile

import "fmt"

// Status is a condition code describing why a lifecycle call failed.  It
// implements error so codes can be returned bare or wrapped with context and
// still be matched with errors.Is.
type Status int

// Failure classes.  Zero is success and never surfaces as an error.
const (
	// ErrNotSupported covers reading, append/read open modes, and other
	// operations outside the write-one-new-file contract.
	ErrNotSupported Status = iota + 1

	// ErrBadGeometry covers dimensionless arrays and buffers that do not
	// match the geometry the file was opened with.
	ErrBadGeometry

	// ErrAllocation is reserved for scratch or axis buffer allocation
	// failures.  Allocation does not fail recoverably in Go; the code
	// exists so the published taxonomy is complete.
	ErrAllocation

	// ErrBadType covers sample or attribute types outside the fixed
	// mapping tables.
	ErrBadType

	// ErrBackend covers file creation, header encoding and pixel
	// serialization failures reported by the storage layer.
	ErrBackend
)

var statusText = map[Status]string{
	ErrNotSupported: "operation not supported",
	ErrBadGeometry:  "invalid array geometry",
	ErrAllocation:   "buffer allocation failed",
	ErrBadType:      "type outside fixed mapping",
	ErrBackend:      "storage backend failure",
}

func (s Status) Error() string {
	if msg, ok := statusText[s]; ok {
		return msg
	}
	return fmt.Sprintf("fitsfile: unknown status %d", int(s))
}

// AsError converts a numeric status to an error, nil for zero.
func AsError(code int) error {
	if code == 0 {
		return nil
	}
	return Status(code)
}
