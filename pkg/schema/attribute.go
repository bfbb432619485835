package schema

import "fmt"

// VarNum marks an attribute as variable-length: the number of values per
// cell is not fixed and each cell carries its own offset.
const VarNum = ^uint32(0)

// Attribute is a named, typed data field stored per cell, independent of
// coordinates. CellValNum is the fixed number of values per cell, or
// VarNum for variable-length cells.
type Attribute struct {
	Name       string     `json:"name"`
	Type       Datatype   `json:"type"`
	CellValNum uint32     `json:"cell_val_num"`
	Compressor Compressor `json:"compressor"`
}

// NewAttribute returns a fixed-length scalar attribute (one value per
// cell) with no compression.
func NewAttribute(name string, t Datatype) Attribute {
	return Attribute{
		Name:       name,
		Type:       t,
		CellValNum: 1,
		Compressor: NewCompressor(CompressorNone, -1),
	}
}

// WithCellValNum returns a copy of the attribute with the given number of
// values per cell. Pass VarNum for variable-length cells.
func (a Attribute) WithCellValNum(n uint32) Attribute {
	a.CellValNum = n
	return a
}

// WithCompressor returns a copy of the attribute with the given compressor.
func (a Attribute) WithCompressor(c Compressor) Attribute {
	a.Compressor = c
	return a
}

// Validate checks the attribute invariants: non-empty name, positive cell
// value count (or the VarNum sentinel), recognized datatype and codec.
func (a Attribute) Validate() error {
	if a.Name == "" {
		return newError(KindInvalidAttributeName, "attribute name must be non-empty")
	}
	if a.CellValNum == 0 {
		return newError(KindInvalidCellValNum, "attribute %q: cell value count must be positive or VarNum", a.Name)
	}
	if !a.Type.Valid() {
		return newError(KindInvalidAttributeName, "attribute %q: unknown datatype", a.Name)
	}
	return nil
}

// Equal reports field-for-field equality with another attribute.
func (a Attribute) Equal(o Attribute) bool {
	return a == o
}

// String renders the attribute for diagnostics.
func (a Attribute) String() string {
	cvn := fmt.Sprintf("%d", a.CellValNum)
	if a.CellValNum == VarNum {
		cvn = "var"
	}
	return fmt.Sprintf("%s %s cells=%s compressor=%s", a.Name, a.Type, cvn, a.Compressor)
}
