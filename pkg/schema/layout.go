package schema

import (
	"encoding/json"
	"fmt"
)

// ArrayType distinguishes dense arrays (every coordinate holds a cell)
// from sparse arrays (cells exist only at written coordinates).
type ArrayType uint8

const (
	Dense ArrayType = iota
	Sparse
)

// Valid reports whether the array type is a recognized enum member.
func (t ArrayType) Valid() bool {
	return t == Dense || t == Sparse
}

// String returns the canonical name of the array type.
func (t ArrayType) String() string {
	switch t {
	case Dense:
		return "DENSE"
	case Sparse:
		return "SPARSE"
	default:
		return "UNKNOWN"
	}
}

// ArrayTypeFromString parses a canonical array type name as produced by String.
func ArrayTypeFromString(s string) (ArrayType, bool) {
	switch s {
	case "DENSE":
		return Dense, true
	case "SPARSE":
		return Sparse, true
	}
	return 0, false
}

// MarshalJSON encodes the array type by its canonical name.
func (t ArrayType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes an array type from its canonical name.
func (t *ArrayType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, ok := ArrayTypeFromString(s)
	if !ok {
		return fmt.Errorf("unknown array type %q", s)
	}
	*t = v
	return nil
}

// Layout is the physical iteration order used when writing tiles, and
// cells within a tile.
type Layout uint8

const (
	RowMajor Layout = iota
	ColMajor
	GlobalOrder
	Unordered
)

// ValidTileOrder reports whether the layout is admissible as a tile order.
// Tiles are laid out row-major or column-major only.
func (l Layout) ValidTileOrder() bool {
	return l == RowMajor || l == ColMajor
}

// ValidCellOrder reports whether the layout is admissible as a cell order.
func (l Layout) ValidCellOrder() bool {
	return l <= Unordered
}

// String returns the canonical name of the layout.
func (l Layout) String() string {
	switch l {
	case RowMajor:
		return "ROW_MAJOR"
	case ColMajor:
		return "COL_MAJOR"
	case GlobalOrder:
		return "GLOBAL_ORDER"
	case Unordered:
		return "UNORDERED"
	default:
		return "UNKNOWN"
	}
}

// LayoutFromString parses a canonical layout name as produced by String.
func LayoutFromString(s string) (Layout, bool) {
	for l := RowMajor; l <= Unordered; l++ {
		if l.String() == s {
			return l, true
		}
	}
	return 0, false
}

// MarshalJSON encodes the layout by its canonical name.
func (l Layout) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes a layout from its canonical name.
func (l *Layout) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, ok := LayoutFromString(s)
	if !ok {
		return fmt.Errorf("unknown layout %q", s)
	}
	*l = v
	return nil
}
