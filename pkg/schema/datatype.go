// Package schema defines the schema contract for a tessera array: the
// declaration that fixes an array's coordinate space, attribute set,
// physical tiling/ordering, and compression policy before any data is
// written. The schema is the single source of truth that storage layout
// and query planning honor; everything accepted here becomes an on-disk
// invariant once the array is created.
package schema

import (
	"encoding/json"
	"fmt"
)

// Datatype identifies the primitive type of a dimension coordinate or
// attribute cell value.
type Datatype uint8

const (
	TypeInt8 Datatype = iota
	TypeInt16
	TypeInt32
	TypeInt64
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeFloat32
	TypeFloat64
	TypeChar
)

// Valid reports whether the datatype is a recognized enum member.
func (t Datatype) Valid() bool {
	return t <= TypeChar
}

// IsInteger reports whether the datatype is a signed integer type.
func (t Datatype) IsInteger() bool {
	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		return true
	}
	return false
}

// IsUnsigned reports whether the datatype is an unsigned integer type.
func (t Datatype) IsUnsigned() bool {
	switch t {
	case TypeUint8, TypeUint16, TypeUint32, TypeUint64:
		return true
	}
	return false
}

// IsReal reports whether the datatype is a floating point type.
func (t Datatype) IsReal() bool {
	return t == TypeFloat32 || t == TypeFloat64
}

// String returns the canonical name of the datatype.
func (t Datatype) String() string {
	switch t {
	case TypeInt8:
		return "INT8"
	case TypeInt16:
		return "INT16"
	case TypeInt32:
		return "INT32"
	case TypeInt64:
		return "INT64"
	case TypeUint8:
		return "UINT8"
	case TypeUint16:
		return "UINT16"
	case TypeUint32:
		return "UINT32"
	case TypeUint64:
		return "UINT64"
	case TypeFloat32:
		return "FLOAT32"
	case TypeFloat64:
		return "FLOAT64"
	case TypeChar:
		return "CHAR"
	default:
		return "UNKNOWN"
	}
}

// DatatypeFromString parses a canonical datatype name as produced by String.
func DatatypeFromString(s string) (Datatype, bool) {
	for t := TypeInt8; t <= TypeChar; t++ {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// MarshalJSON encodes the datatype by its canonical name.
func (t Datatype) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a datatype from its canonical name.
func (t *Datatype) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, ok := DatatypeFromString(s)
	if !ok {
		return fmt.Errorf("unknown datatype %q", s)
	}
	*t = v
	return nil
}
