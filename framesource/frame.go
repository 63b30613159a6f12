package framesource

import (
	"errors"
	"fmt"

	"github.com/lcavalli/ADCore/ndarray"
)

// Frame is one array in flight with its sequence stamp.
type Frame struct {
	// Seq is the producer's frame counter; it wraps at 2^32.
	Seq uint32

	// Arr holds the samples.
	Arr *ndarray.Array
}

// headerLen is the fixed part of a frame body: sequence, dtype, ndims.
const headerLen = 6

// Marshal packs a frame into a telegram body.
func Marshal(f Frame) ([]byte, error) {
	if f.Arr == nil {
		return nil, errors.New("framesource: frame carries no array")
	}
	if err := f.Arr.Validate(); err != nil {
		return nil, err
	}
	if len(f.Arr.Dims) > 255 {
		return nil, fmt.Errorf("framesource: %d axes do not fit the header", len(f.Arr.Dims))
	}
	body := make([]byte, headerLen+4*len(f.Arr.Dims), headerLen+4*len(f.Arr.Dims)+len(f.Arr.Data))
	dataOrder.PutUint32(body[0:4], f.Seq)
	body[4] = byte(f.Arr.DType)
	body[5] = byte(len(f.Arr.Dims))
	for i, d := range f.Arr.Dims {
		dataOrder.PutUint32(body[headerLen+4*i:], uint32(d))
	}
	return append(body, f.Arr.Data...), nil
}

// Unmarshal unpacks a telegram body into a frame with a freshly allocated
// array.
func Unmarshal(body []byte) (Frame, error) {
	if len(body) < headerLen {
		return Frame{}, fmt.Errorf("framesource: body of %d bytes is shorter than a header", len(body))
	}
	seq := dataOrder.Uint32(body[0:4])
	dtype := ndarray.DType(body[4])
	ndims := int(body[5])
	if len(body) < headerLen+4*ndims {
		return Frame{}, fmt.Errorf("framesource: header declares %d axes but the body ends early", ndims)
	}
	dims := make([]int, ndims)
	for i := range dims {
		dims[i] = int(dataOrder.Uint32(body[headerLen+4*i:]))
	}
	arr, err := ndarray.New(dtype, dims...)
	if err != nil {
		return Frame{}, err
	}
	payload := body[headerLen+4*ndims:]
	if len(payload) != len(arr.Data) {
		return Frame{}, fmt.Errorf("framesource: payload is %d bytes, geometry wants %d", len(payload), len(arr.Data))
	}
	copy(arr.Data, payload)
	return Frame{Seq: seq, Arr: arr}, nil
}

// Encode packs a frame and wraps it as a telegram.
func Encode(f Frame) ([]byte, error) {
	body, err := Marshal(f)
	if err != nil {
		return nil, err
	}
	return EncodeTelegram(body), nil
}

// Decode unwraps a telegram and unpacks the frame inside.
func Decode(tele []byte) (Frame, error) {
	body, err := DecodeTelegram(tele)
	if err != nil {
		return Frame{}, err
	}
	return Unmarshal(body)
}
