// Package ndarray provides the in-memory N-dimensional array and typed
// attribute model shared by frame producers and file writers.
package ndarray

import (
	"fmt"
	"unsafe"
)

// DType describes the sample type of an Array buffer.
type DType int

// Sample types, in the host enumeration order.
const (
	Int8 DType = iota
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Float32
	Float64
)

// Size returns the width of one sample in bytes, or 0 for an unknown type.
func (d DType) Size() int {
	switch d {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Float64:
		return 8
	}
	return 0
}

func (d DType) String() string {
	switch d {
	case Int8:
		return "int8"
	case Uint8:
		return "uint8"
	case Int16:
		return "int16"
	case Uint16:
		return "uint16"
	case Int32:
		return "int32"
	case Uint32:
		return "uint32"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	}
	return fmt.Sprintf("DType(%d)", int(d))
}

// ParseDType maps a type name as used on the wire and in CLI flags ("uint16",
// "float32", ...) back to its tag.
func ParseDType(s string) (DType, error) {
	for d := Int8; d <= Float64; d++ {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("ndarray: unknown sample type %q", s)
}

// Array is an N-dimensional sample buffer with optional typed metadata.
// Producers own the buffer; consumers treat it as read-only.
type Array struct {
	// Dims holds the size of each axis.  Dims[0] varies fastest in Data,
	// i.e. Data is stored row-major with axis 0 as the row direction.
	Dims []int

	// DType is the sample type of Data.
	DType DType

	// Data is the raw contiguous sample buffer in native byte order.
	// Its length is NumElements() * DType.Size().
	Data []byte

	// Attrs is the optional attribute list attached to the array.  Nil
	// means no attributes.
	Attrs *AttributeList
}

// New allocates a zeroed array with the given sample type and axis sizes.
func New(dtype DType, dims ...int) (*Array, error) {
	if dtype.Size() == 0 {
		return nil, fmt.Errorf("ndarray: unknown sample type %d", int(dtype))
	}
	n := 1
	for _, d := range dims {
		if d < 1 {
			return nil, fmt.Errorf("ndarray: invalid axis size %d", d)
		}
		n *= d
	}
	if len(dims) == 0 {
		n = 0
	}
	a := &Array{
		Dims:  append([]int(nil), dims...),
		DType: dtype,
		Data:  make([]byte, n*dtype.Size()),
	}
	return a, nil
}

// NumElements returns the product of the axis sizes, or 0 for a
// dimensionless array.
func (a *Array) NumElements() int {
	if len(a.Dims) == 0 {
		return 0
	}
	n := 1
	for _, d := range a.Dims {
		n *= d
	}
	return n
}

// Validate checks that the geometry is well formed and that the buffer
// length matches it.
func (a *Array) Validate() error {
	if len(a.Dims) == 0 {
		return fmt.Errorf("ndarray: array has no dimensions")
	}
	for _, d := range a.Dims {
		if d < 1 {
			return fmt.Errorf("ndarray: invalid axis size %d", d)
		}
	}
	if a.DType.Size() == 0 {
		return fmt.Errorf("ndarray: unknown sample type %d", int(a.DType))
	}
	want := a.NumElements() * a.DType.Size()
	if len(a.Data) != want {
		return fmt.Errorf("ndarray: buffer is %d bytes, geometry needs %d", len(a.Data), want)
	}
	return nil
}

// The typed views below reinterpret Data in place without copying.  They
// follow the buffer, not DType; callers are expected to pick the view that
// matches the sample type.

// Int8s reinterprets Data as []int8.
func (a *Array) Int8s() []int8 {
	if len(a.Data) == 0 {
		return nil
	}
	return unsafe.Slice((*int8)(unsafe.Pointer(&a.Data[0])), len(a.Data))
}

// Uint8s returns the raw buffer.
func (a *Array) Uint8s() []uint8 { return a.Data }

// Int16s reinterprets Data as []int16.
func (a *Array) Int16s() []int16 {
	if len(a.Data) < 2 {
		return nil
	}
	return unsafe.Slice((*int16)(unsafe.Pointer(&a.Data[0])), len(a.Data)/2)
}

// Uint16s reinterprets Data as []uint16.
func (a *Array) Uint16s() []uint16 {
	if len(a.Data) < 2 {
		return nil
	}
	return unsafe.Slice((*uint16)(unsafe.Pointer(&a.Data[0])), len(a.Data)/2)
}

// Int32s reinterprets Data as []int32.
func (a *Array) Int32s() []int32 {
	if len(a.Data) < 4 {
		return nil
	}
	return unsafe.Slice((*int32)(unsafe.Pointer(&a.Data[0])), len(a.Data)/4)
}

// Uint32s reinterprets Data as []uint32.
func (a *Array) Uint32s() []uint32 {
	if len(a.Data) < 4 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&a.Data[0])), len(a.Data)/4)
}

// Float32s reinterprets Data as []float32.
func (a *Array) Float32s() []float32 {
	if len(a.Data) < 4 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&a.Data[0])), len(a.Data)/4)
}

// Float64s reinterprets Data as []float64.
func (a *Array) Float64s() []float64 {
	if len(a.Data) < 8 {
		return nil
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&a.Data[0])), len(a.Data)/8)
}
