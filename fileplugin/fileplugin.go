// Package fileplugin holds the host side of file-format plugins: the
// capability interface a format writer implements, the open-mode mask, a
// filename-managing recorder and a queue-fed capture pump.
package fileplugin

import "github.com/lcavalli/ADCore/ndarray"

// Mode is a bitmask describing how a plugin should open a file.
type Mode int

// Open modes.  Writers are free to reject modes they do not support.
const (
	ModeRead Mode = 1 << iota
	ModeWrite
	ModeAppend
	// ModeMultiple asks for several arrays in one file.  No current
	// plugin grants it.
	ModeMultiple
)

// FileWriter is the capability interface a file-format plugin implements.
// The host guarantees Open, Write and Close are called strictly in sequence
// for one file and never concurrently on the same value.
type FileWriter interface {
	// Open starts a new file cycle.  The array supplies the geometry and
	// metadata the file is declared with.
	Open(path string, mode Mode, arr *ndarray.Array) error

	// Write commits the array's samples as the file payload.
	Write(arr *ndarray.Array) error

	// Read fills dest from an open file, on plugins that support it.
	Read(dest *ndarray.Array) error

	// Close finalizes the cycle and releases the file handle.
	Close() error
}
