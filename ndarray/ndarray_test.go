package ndarray_test

import (
	"fmt"
	"testing"

	"github.com/lcavalli/ADCore/ndarray"
)

func TestNewAllocatesGeometry(t *testing.T) {
	a, err := ndarray.New(ndarray.Uint16, 4, 3, 2)
	if err != nil {
		t.Fatalf("expected nil error got %v", err)
	}
	if n := a.NumElements(); n != 24 {
		t.Errorf("expected 24 elements got %d", n)
	}
	if len(a.Data) != 48 {
		t.Errorf("expected 48 byte buffer got %d", len(a.Data))
	}
	if err := a.Validate(); err != nil {
		t.Errorf("expected valid array got %v", err)
	}
}

func TestNewRejectsBadAxis(t *testing.T) {
	if _, err := ndarray.New(ndarray.Int32, 4, 0); err == nil {
		t.Errorf("expected error for zero axis got nil")
	}
	if _, err := ndarray.New(ndarray.DType(42), 4); err == nil {
		t.Errorf("expected error for unknown sample type got nil")
	}
}

func TestValidateCatchesShortBuffer(t *testing.T) {
	a, err := ndarray.New(ndarray.Float64, 3, 3)
	if err != nil {
		t.Fatalf("expected nil error got %v", err)
	}
	a.Data = a.Data[:len(a.Data)-8]
	if err := a.Validate(); err == nil {
		t.Errorf("expected error for short buffer got nil")
	}
}

func TestValidateCatchesNoDims(t *testing.T) {
	a := &ndarray.Array{DType: ndarray.Int16}
	if err := a.Validate(); err == nil {
		t.Errorf("expected error for dimensionless array got nil")
	}
	if n := a.NumElements(); n != 0 {
		t.Errorf("expected 0 elements got %d", n)
	}
}

func TestTypedViewsShareMemory(t *testing.T) {
	a, err := ndarray.New(ndarray.Float32, 4)
	if err != nil {
		t.Fatalf("expected nil error got %v", err)
	}
	a.Float32s()[2] = 1.5
	dirty := false
	for _, b := range a.Data {
		if b != 0 {
			dirty = true
		}
	}
	if !dirty {
		t.Errorf("expected view write to land in Data, buffer still zero")
	}
	if v := a.Float32s()[2]; v != 1.5 {
		t.Errorf("expected 1.5 got %v", v)
	}
}

func TestViewLengths(t *testing.T) {
	a, err := ndarray.New(ndarray.Uint32, 6)
	if err != nil {
		t.Fatalf("expected nil error got %v", err)
	}
	if n := len(a.Uint32s()); n != 6 {
		t.Errorf("expected 6 got %d", n)
	}
	if n := len(a.Uint16s()); n != 12 {
		t.Errorf("expected 12 got %d", n)
	}
	if n := len(a.Int8s()); n != 24 {
		t.Errorf("expected 24 got %d", n)
	}
}

func TestParseDType(t *testing.T) {
	d, err := ndarray.ParseDType("uint16")
	if err != nil {
		t.Fatalf("expected nil error got %v", err)
	}
	if d != ndarray.Uint16 {
		t.Errorf("expected Uint16 got %v", d)
	}
	if _, err := ndarray.ParseDType("complex64"); err == nil {
		t.Errorf("expected error for complex64 got nil")
	}
}

func TestDTypeSizes(t *testing.T) {
	if s := ndarray.Int8.Size(); s != 1 {
		t.Errorf("expected 1 got %d", s)
	}
	if s := ndarray.Float64.Size(); s != 8 {
		t.Errorf("expected 8 got %d", s)
	}
	if s := ndarray.DType(42).Size(); s != 0 {
		t.Errorf("expected 0 got %d", s)
	}
}

func TestNewAttrInference(t *testing.T) {
	a, err := ndarray.NewAttr("EXPTIME", "exposure time", float64(0.25))
	if err != nil {
		t.Fatalf("expected nil error got %v", err)
	}
	if a.DType != ndarray.AttrFloat64 {
		t.Errorf("expected AttrFloat64 got %v", a.DType)
	}
	if _, err := ndarray.NewAttr("BAD", "", complex(1, 2)); err == nil {
		t.Errorf("expected error for complex value got nil")
	}
}

func TestAttributeListReplacesByName(t *testing.T) {
	l := &ndarray.AttributeList{}
	first, _ := ndarray.NewAttr("GAIN", "", int32(1))
	second, _ := ndarray.NewAttr("OFFSET", "", int32(7))
	update, _ := ndarray.NewAttr("GAIN", "", int32(4))
	l.Add(first)
	l.Add(second)
	l.Add(update)
	if n := l.Len(); n != 2 {
		t.Fatalf("expected 2 attributes got %d", n)
	}
	if got := l.All()[0].Value.(int32); got != 4 {
		t.Errorf("expected replacement in place with value 4 got %d", got)
	}
	if l.Get("OFFSET") == nil {
		t.Errorf("expected OFFSET to be present")
	}
}

func TestNilAttributeListReads(t *testing.T) {
	var l *ndarray.AttributeList
	if n := l.Len(); n != 0 {
		t.Errorf("expected 0 got %d", n)
	}
	if l.Get("anything") != nil {
		t.Errorf("expected nil attribute from nil list")
	}
	if l.All() != nil {
		t.Errorf("expected nil slice from nil list")
	}
}

func TestParseAttr(t *testing.T) {
	cases := []struct {
		typeName, value string
		want            interface{}
	}{
		{"int8", "-12", int8(-12)},
		{"uint8", "200", uint8(200)},
		{"int16", "-30000", int16(-30000)},
		{"uint16", "65535", uint16(65535)},
		{"int32", "-70000", int32(-70000)},
		{"uint32", "3000000000", uint32(3000000000)},
		{"float32", "1.5", float32(1.5)},
		{"float64", "2.25", 2.25},
		{"string", "dark frame", "dark frame"},
	}
	for _, tc := range cases {
		a, err := ndarray.ParseAttr("K", "", tc.typeName, tc.value)
		if err != nil {
			t.Fatalf("%s: expected nil error got %v", tc.typeName, err)
		}
		if a.Value != tc.want {
			t.Errorf("%s: expected %v got %v", tc.typeName, tc.want, a.Value)
		}
	}
}

func TestParseAttrRejections(t *testing.T) {
	if _, err := ndarray.ParseAttr("K", "", "complex64", "1"); err == nil {
		t.Error("expected error for unknown type, got nil")
	}
	if _, err := ndarray.ParseAttr("K", "", "uint8", "300"); err == nil {
		t.Error("expected error for out of range value, got nil")
	}
	if _, err := ndarray.ParseAttr("K", "", "int32", "abc"); err == nil {
		t.Error("expected error for non-numeric value, got nil")
	}
	a, err := ndarray.ParseAttr("K", "ignored value", "undefined", "anything")
	if err != nil {
		t.Fatalf("expected nil error got %v", err)
	}
	if a.DType != ndarray.AttrUndefined || a.Value != nil {
		t.Errorf("expected undefined attribute, got %v %v", a.DType, a.Value)
	}
}

func ExampleAttributeList_Add() {
	l := &ndarray.AttributeList{}
	a, _ := ndarray.NewAttr("CAMERA", "detector head", "simcam")
	b, _ := ndarray.NewAttr("GAIN", "adc gain", int32(2))
	l.Add(a)
	l.Add(b)
	for _, attr := range l.All() {
		fmt.Println(attr.Name, attr.DType)
	}
	// Output:
	// CAMERA string
	// GAIN int32
}
