package framesource

import (
	"fmt"

	"github.com/lcavalli/ADCore/ndarray"
)

// markerValue is written at the walking pixel.  It fits every sample type,
// int8 included, and is exact in float32.
const markerValue = 125

// Pattern deterministically generates 2D frames: a diagonal gradient with a
// single marker pixel that walks one position per frame.  Frame n is the
// same bytes no matter which generator produced it.
type Pattern struct {
	// Width and Height are the axis sizes, width varying fastest.
	Width, Height int

	// DType is the sample type of generated frames.
	DType ndarray.DType

	seq uint32
}

// NewPattern returns a generator producing w by h frames of the given type.
func NewPattern(w, h int, dtype ndarray.DType) (*Pattern, error) {
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("framesource: invalid pattern geometry %dx%d", w, h)
	}
	if dtype.Size() == 0 {
		return nil, fmt.Errorf("framesource: unknown sample type %d", int(dtype))
	}
	return &Pattern{Width: w, Height: h, DType: dtype}, nil
}

// FrameAt builds frame n without advancing the generator.
func (p *Pattern) FrameAt(n uint32) (Frame, error) {
	arr, err := ndarray.New(p.DType, p.Width, p.Height)
	if err != nil {
		return Frame{}, err
	}
	pos := int(n) % (p.Width * p.Height)
	mx, my := pos%p.Width, pos/p.Width
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			v := float64((x + y) % 100)
			if x == mx && y == my {
				v = markerValue
			}
			p.store(arr, y*p.Width+x, v)
		}
	}
	return Frame{Seq: n, Arr: arr}, nil
}

// Next builds the next frame and advances the sequence.
func (p *Pattern) Next() (Frame, error) {
	f, err := p.FrameAt(p.seq)
	if err != nil {
		return Frame{}, err
	}
	p.seq++
	return f, nil
}

func (p *Pattern) store(arr *ndarray.Array, idx int, v float64) {
	switch p.DType {
	case ndarray.Int8:
		arr.Int8s()[idx] = int8(v)
	case ndarray.Uint8:
		arr.Uint8s()[idx] = uint8(v)
	case ndarray.Int16:
		arr.Int16s()[idx] = int16(v)
	case ndarray.Uint16:
		arr.Uint16s()[idx] = uint16(v)
	case ndarray.Int32:
		arr.Int32s()[idx] = int32(v)
	case ndarray.Uint32:
		arr.Uint32s()[idx] = uint32(v)
	case ndarray.Float32:
		arr.Float32s()[idx] = float32(v)
	case ndarray.Float64:
		arr.Float64s()[idx] = v
	}
}
