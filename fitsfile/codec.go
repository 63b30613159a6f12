package fitsfile

import (
	"fmt"
	"io"

	"github.com/astrogo/fitsio"

	"github.com/lcavalli/ADCore/ndarray"
)

// maxStringValue bounds attribute string values, matching the 80-byte card
// value buffer of the host framework.
const maxStringValue = 80

// bitpixOf maps a sample type to its FITS BITPIX code.
func bitpixOf(d ndarray.DType) (int, bool) {
	switch d {
	case ndarray.Int8, ndarray.Uint8:
		return 8, true
	case ndarray.Int16, ndarray.Uint16:
		return 16, true
	case ndarray.Int32, ndarray.Uint32:
		return 32, true
	case ndarray.Float32:
		return -32, true
	case ndarray.Float64:
		return -64, true
	}
	return 0, false
}

// scaleCards returns the BZERO/BSCALE cards declaring the shifted-integer
// convention used to store signed bytes and unsigned integers, nil when the
// type stores verbatim.
func scaleCards(d ndarray.DType) []fitsio.Card {
	switch d {
	case ndarray.Int8:
		return []fitsio.Card{
			{Name: "BZERO", Value: -128},
			{Name: "BSCALE", Value: 1.0},
		}
	case ndarray.Uint16:
		return []fitsio.Card{
			{Name: "BZERO", Value: 32768},
			{Name: "BSCALE", Value: 1.0},
		}
	case ndarray.Uint32:
		return []fitsio.Card{
			{Name: "BZERO", Value: int64(2147483648)},
			{Name: "BSCALE", Value: 1.0},
		}
	}
	return nil
}

// cardOf converts one attribute to a header card.  ok is false when the
// attribute is undefined and produces no card.  An attribute type outside
// the mapping, or a value that does not match its tag, is an error.
func cardOf(a *ndarray.Attribute) (fitsio.Card, bool, error) {
	c := fitsio.Card{Name: a.Name, Comment: a.Description}
	bad := func() (fitsio.Card, bool, error) {
		return c, false, fmt.Errorf("%w: attribute %s tagged %v holds %T", ErrBadType, a.Name, a.DType, a.Value)
	}
	switch a.DType {
	case ndarray.AttrUndefined:
		return c, false, nil
	case ndarray.AttrInt8:
		v, ok := a.Value.(int8)
		if !ok {
			return bad()
		}
		c.Value = int(v)
	case ndarray.AttrUint8:
		v, ok := a.Value.(uint8)
		if !ok {
			return bad()
		}
		c.Value = int(v)
	case ndarray.AttrInt16:
		v, ok := a.Value.(int16)
		if !ok {
			return bad()
		}
		c.Value = int(v)
	case ndarray.AttrUint16:
		v, ok := a.Value.(uint16)
		if !ok {
			return bad()
		}
		c.Value = int(v)
	case ndarray.AttrInt32:
		v, ok := a.Value.(int32)
		if !ok {
			return bad()
		}
		c.Value = int(v)
	case ndarray.AttrUint32:
		v, ok := a.Value.(uint32)
		if !ok {
			return bad()
		}
		c.Value = int64(v)
	case ndarray.AttrFloat32:
		v, ok := a.Value.(float32)
		if !ok {
			return bad()
		}
		c.Value = float64(v)
	case ndarray.AttrFloat64:
		v, ok := a.Value.(float64)
		if !ok {
			return bad()
		}
		c.Value = v
	case ndarray.AttrString:
		v, ok := a.Value.(string)
		if !ok {
			return bad()
		}
		if len(v) > maxStringValue {
			v = v[:maxStringValue]
		}
		c.Value = v
	default:
		return c, false, fmt.Errorf("%w: attribute %s has type %v", ErrBadType, a.Name, a.DType)
	}
	return c, true, nil
}

// flipRows copies src to dst reversing each plane's row order.  Axis 0 is
// the row direction, axis 1 counts rows per plane, axis 2 counts planes.
// Rank 4 and above, and any geometry with a single row, copies verbatim.
// width is the sample width in bytes; the routine is type-blind.
func flipRows(dst, src []byte, dims []int, width int) {
	w, h, d := 1, 1, 1
	switch len(dims) {
	case 1:
		w = dims[0]
	case 2:
		w, h = dims[0], dims[1]
	case 3:
		w, h, d = dims[0], dims[1], dims[2]
	}
	if h <= 1 {
		copy(dst, src)
		return
	}
	rowBytes := w * width
	planeBytes := h * rowBytes
	for z := 0; z < d; z++ {
		plane := z * planeBytes
		for y := 0; y < h; y++ {
			src0 := plane + y*rowBytes
			dst0 := plane + (h-1-y)*rowBytes
			copy(dst[dst0:dst0+rowBytes], src[src0:src0+rowBytes])
		}
	}
}

// payload reinterprets raw samples as the canonical signed slice FITS
// serializes for the type: unsigned integers shift by half their range
// (the BZERO convention), signed and float types pass through.
func payload(dtype ndarray.DType, raw []byte) (interface{}, error) {
	view := &ndarray.Array{DType: dtype, Data: raw}
	switch dtype {
	case ndarray.Int8:
		src := view.Int8s()
		out := make([]int8, len(src))
		for i, v := range src {
			out[i] = int8(uint8(v) + 0x80)
		}
		return out, nil
	case ndarray.Uint8:
		out := make([]int8, len(raw))
		for i, b := range raw {
			out[i] = int8(b)
		}
		return out, nil
	case ndarray.Int16:
		return view.Int16s(), nil
	case ndarray.Uint16:
		src := view.Uint16s()
		out := make([]int16, len(src))
		for i, v := range src {
			out[i] = int16(v - 32768)
		}
		return out, nil
	case ndarray.Int32:
		return view.Int32s(), nil
	case ndarray.Uint32:
		src := view.Uint32s()
		out := make([]int32, len(src))
		for i, v := range src {
			out[i] = int32(v - 2147483648)
		}
		return out, nil
	case ndarray.Float32:
		return view.Float32s(), nil
	case ndarray.Float64:
		return view.Float64s(), nil
	}
	return nil, fmt.Errorf("%w: sample type %v", ErrBadType, dtype)
}

// writeImage serializes one complete image HDU to w.
func writeImage(w io.Writer, bitpix int, axes []int, cards []fitsio.Card, data interface{}) error {
	fits, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	defer fits.Close()
	im := fitsio.NewImage(bitpix, axes)
	defer im.Close()
	if err := im.Header().Append(cards...); err != nil {
		return err
	}
	if err := im.Write(data); err != nil {
		return err
	}
	return fits.Write(im)
}
