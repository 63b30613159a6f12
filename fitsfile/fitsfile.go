// Package fitsfile converts in-memory N-dimensional arrays to single-HDU
// FITS image files.  One Writer runs one open/write/close cycle at a time;
// scheduling and filename policy belong to the fileplugin host layer.
package fitsfile

import (
	"fmt"
	"os"

	"github.com/astrogo/fitsio"

	"github.com/lcavalli/ADCore/fileplugin"
	"github.com/lcavalli/ADCore/ndarray"
)

// Options configure optional behaviors of a Writer.  The zero value is the
// full-featured contract: bottom-up row flip plus attribute cards.
type Options struct {
	// PreserveRowOrder writes the sample buffer in its given row order
	// instead of flipping each plane to the FITS bottom-up convention.
	PreserveRowOrder bool

	// SkipAttributes drops array attributes instead of recording one
	// header card per attribute.
	SkipAttributes bool
}

// Writer writes arrays to FITS files.  Not safe for concurrent use; the
// host serializes lifecycle calls per cycle.
type Writer struct {
	opts Options

	// per-cycle state, cleared by Close
	fd     *os.File
	path   string
	bitpix int
	axes   []int
	dtype  ndarray.DType
	cards  []fitsio.Card
	wrote  bool
}

var _ fileplugin.FileWriter = (*Writer)(nil)

// NewWriter returns a Writer with the given options.
func NewWriter(opts Options) *Writer {
	return &Writer{opts: opts}
}

// Open creates the file at path and stages the header the array describes:
// geometry, BZERO/BSCALE cards for shifted integer types, and one card per
// supported attribute (undefined attributes are skipped, any other unmapped
// type aborts).  Only plain write mode is accepted.  The file is created
// before the geometry is validated, so a failed Open can leave an empty
// file on disk; callers own that file.
func (w *Writer) Open(path string, mode fileplugin.Mode, arr *ndarray.Array) error {
	if w.fd != nil {
		return fmt.Errorf("%w: a file cycle is already open", ErrNotSupported)
	}
	if mode&(fileplugin.ModeRead|fileplugin.ModeAppend) != 0 {
		return fmt.Errorf("%w: only write mode is supported", ErrNotSupported)
	}
	fd, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0666)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	if len(arr.Dims) == 0 {
		fd.Close()
		return fmt.Errorf("%w: array has no dimensions", ErrBadGeometry)
	}
	for _, d := range arr.Dims {
		if d < 1 {
			fd.Close()
			return fmt.Errorf("%w: axis size %d", ErrBadGeometry, d)
		}
	}
	bitpix, ok := bitpixOf(arr.DType)
	if !ok {
		fd.Close()
		return fmt.Errorf("%w: sample type %v", ErrBadType, arr.DType)
	}
	cards := append([]fitsio.Card(nil), scaleCards(arr.DType)...)
	if !w.opts.SkipAttributes {
		for _, a := range arr.Attrs.All() {
			c, keep, err := cardOf(a)
			if err != nil {
				fd.Close()
				return err
			}
			if keep {
				cards = append(cards, c)
			}
		}
	}
	w.fd = fd
	w.path = path
	w.bitpix = bitpix
	w.axes = append([]int(nil), arr.Dims...)
	w.dtype = arr.DType
	w.cards = cards
	w.wrote = false
	return nil
}

// Write commits the array as the pixel payload of the open file.  The
// array's sample type and element count must match what Open staged.  Rows
// of each plane are flipped to bottom-up order unless PreserveRowOrder is
// set; the flip scratch lives only for the duration of the call.  One
// write per cycle.
func (w *Writer) Write(arr *ndarray.Array) error {
	if w.fd == nil {
		return fmt.Errorf("%w: no open file", ErrNotSupported)
	}
	if w.wrote {
		return fmt.Errorf("%w: multiple arrays per file", ErrNotSupported)
	}
	if arr.DType != w.dtype {
		return fmt.Errorf("%w: file opened for %v, array is %v", ErrBadType, w.dtype, arr.DType)
	}
	want := 1
	for _, ax := range w.axes {
		want *= ax
	}
	width := arr.DType.Size()
	if arr.NumElements() != want || len(arr.Data) != want*width {
		return fmt.Errorf("%w: array does not match staged geometry %v", ErrBadGeometry, w.axes)
	}
	raw := arr.Data
	if !w.opts.PreserveRowOrder {
		scratch := make([]byte, len(arr.Data))
		flipRows(scratch, arr.Data, arr.Dims, width)
		raw = scratch
	}
	data, err := payload(w.dtype, raw)
	if err != nil {
		return err
	}
	if err := writeImage(w.fd, w.bitpix, w.axes, w.cards, data); err != nil {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	w.wrote = true
	return nil
}

// Read is present for lifecycle symmetry; reading is not implemented and
// dest is never touched.
func (w *Writer) Read(dest *ndarray.Array) error {
	return fmt.Errorf("%w: reading FITS files is not implemented", ErrNotSupported)
}

// Close finalizes the cycle and clears the handle.  A file that was opened
// but never written receives its declared geometry zero-filled, matching
// the zero-fill-on-close behavior of the C FITS library.  Close never
// reports failure; closing an idle writer is a no-op.
func (w *Writer) Close() error {
	if w.fd == nil {
		return nil
	}
	if !w.wrote {
		n := 1
		for _, ax := range w.axes {
			n *= ax
		}
		raw := make([]byte, n*w.dtype.Size())
		if data, err := payload(w.dtype, raw); err == nil {
			writeImage(w.fd, w.bitpix, w.axes, w.cards, data)
		}
	}
	w.fd.Close()
	w.fd = nil
	w.path = ""
	w.axes = nil
	w.cards = nil
	w.wrote = false
	return nil
}

// Path returns the destination of the current cycle, empty when idle.
func (w *Writer) Path() string { return w.path }
