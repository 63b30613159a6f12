package ndarray

import (
	"fmt"
	"strconv"
)

// AttrDType describes the value type of an Attribute.  It is a separate
// enumeration from DType because attributes admit strings and an undefined
// state that sample buffers do not.
type AttrDType int

// Attribute value types, in the host enumeration order.
const (
	AttrInt8 AttrDType = iota
	AttrUint8
	AttrInt16
	AttrUint16
	AttrInt32
	AttrUint32
	AttrFloat32
	AttrFloat64
	AttrString
	AttrUndefined
)

func (d AttrDType) String() string {
	switch d {
	case AttrInt8:
		return "int8"
	case AttrUint8:
		return "uint8"
	case AttrInt16:
		return "int16"
	case AttrUint16:
		return "uint16"
	case AttrInt32:
		return "int32"
	case AttrUint32:
		return "uint32"
	case AttrFloat32:
		return "float32"
	case AttrFloat64:
		return "float64"
	case AttrString:
		return "string"
	case AttrUndefined:
		return "undefined"
	}
	return fmt.Sprintf("AttrDType(%d)", int(d))
}

// Attribute is one named, typed, described metadata entry.
type Attribute struct {
	// Name is the key the attribute is recorded under.
	Name string

	// Description is free-form human context for the value.
	Description string

	// DType tags the dynamic type of Value.
	DType AttrDType

	// Value holds the attribute value.  Its dynamic type matches DType
	// (int8, uint8, int16, uint16, int32, uint32, float32, float64 or
	// string); it is nil for an undefined attribute.
	Value interface{}
}

// NewAttr builds an attribute with the type tag inferred from v, which must
// be one of the nine supported value types.
func NewAttr(name, description string, v interface{}) (*Attribute, error) {
	a := &Attribute{Name: name, Description: description, Value: v}
	switch v.(type) {
	case int8:
		a.DType = AttrInt8
	case uint8:
		a.DType = AttrUint8
	case int16:
		a.DType = AttrInt16
	case uint16:
		a.DType = AttrUint16
	case int32:
		a.DType = AttrInt32
	case uint32:
		a.DType = AttrUint32
	case float32:
		a.DType = AttrFloat32
	case float64:
		a.DType = AttrFloat64
	case string:
		a.DType = AttrString
	default:
		return nil, fmt.Errorf("ndarray: unsupported attribute value type %T", v)
	}
	return a, nil
}

// NewUndefinedAttr builds an attribute that carries no value.
func NewUndefinedAttr(name, description string) *Attribute {
	return &Attribute{Name: name, Description: description, DType: AttrUndefined}
}

// ParseAttrDType maps a type name ("uint16", "string", ...) to its tag.
func ParseAttrDType(s string) (AttrDType, error) {
	for d := AttrInt8; d <= AttrUndefined; d++ {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("ndarray: unknown attribute type %q", s)
}

// ParseAttr builds an attribute from the textual form used in config files
// and CLI flags: a type name and a value rendered as a string.
func ParseAttr(name, description, typeName, value string) (*Attribute, error) {
	d, err := ParseAttrDType(typeName)
	if err != nil {
		return nil, err
	}
	bad := func() error {
		return fmt.Errorf("ndarray: attribute %s: cannot parse %q as %s", name, value, typeName)
	}
	switch d {
	case AttrInt8:
		v, err := strconv.ParseInt(value, 10, 8)
		if err != nil {
			return nil, bad()
		}
		return NewAttr(name, description, int8(v))
	case AttrUint8:
		v, err := strconv.ParseUint(value, 10, 8)
		if err != nil {
			return nil, bad()
		}
		return NewAttr(name, description, uint8(v))
	case AttrInt16:
		v, err := strconv.ParseInt(value, 10, 16)
		if err != nil {
			return nil, bad()
		}
		return NewAttr(name, description, int16(v))
	case AttrUint16:
		v, err := strconv.ParseUint(value, 10, 16)
		if err != nil {
			return nil, bad()
		}
		return NewAttr(name, description, uint16(v))
	case AttrInt32:
		v, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return nil, bad()
		}
		return NewAttr(name, description, int32(v))
	case AttrUint32:
		v, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return nil, bad()
		}
		return NewAttr(name, description, uint32(v))
	case AttrFloat32:
		v, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return nil, bad()
		}
		return NewAttr(name, description, float32(v))
	case AttrFloat64:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, bad()
		}
		return NewAttr(name, description, v)
	case AttrString:
		return NewAttr(name, description, value)
	default:
		return NewUndefinedAttr(name, description), nil
	}
}

// AttributeList is an ordered collection of attributes.  The zero value is
// ready to use.  A nil list behaves as an empty one for reads.
type AttributeList struct {
	attrs []*Attribute
}

// Add appends a to the list.  When an attribute of the same name already
// exists it is replaced in place, keeping its position.
func (l *AttributeList) Add(a *Attribute) {
	for i, old := range l.attrs {
		if old.Name == a.Name {
			l.attrs[i] = a
			return
		}
	}
	l.attrs = append(l.attrs, a)
}

// Len returns the number of attributes held.
func (l *AttributeList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.attrs)
}

// Get returns the attribute with the given name, or nil.
func (l *AttributeList) Get(name string) *Attribute {
	if l == nil {
		return nil
	}
	for _, a := range l.attrs {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// All returns the attributes in insertion order.  The slice is shared with
// the list; callers must not mutate it.
func (l *AttributeList) All() []*Attribute {
	if l == nil {
		return nil
	}
	return l.attrs
}
