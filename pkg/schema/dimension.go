package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Dimension is one coordinate axis of an array: a name, a datatype, an
// inclusive [min, max] value range, and an optional tile extent.
//
// Bounds and extent are carried as opaque typed values: int64 for signed
// integer datatypes, uint64 for unsigned, float64 for real. Inputs in any
// native Go numeric type are widened on construction; agreement with the
// declared datatype is checked at validation time, not at construction.
type Dimension struct {
	Name   string
	Type   Datatype
	Min    interface{}
	Max    interface{}
	Extent interface{} // nil when absent
}

// NewDimension returns a dimension with the given name, datatype and
// inclusive domain range. No validation is performed here beyond numeric
// widening; call Validate (or rely on ArraySchema.Check) to enforce the
// contract.
func NewDimension(name string, t Datatype, min, max interface{}) Dimension {
	return Dimension{
		Name: name,
		Type: t,
		Min:  normalizeValue(t, min),
		Max:  normalizeValue(t, max),
	}
}

// WithTileExtent returns a copy of the dimension carrying a tile extent.
// Dense arrays require every dimension to carry one; sparse arrays may
// omit it.
func (d Dimension) WithTileExtent(extent interface{}) Dimension {
	d.Extent = normalizeValue(d.Type, extent)
	return d
}

// HasTileExtent reports whether the dimension carries a tile extent.
func (d Dimension) HasTileExtent() bool {
	return d.Extent != nil
}

// Validate checks the dimension against the engine rules: the datatype
// must be a numeric type, bounds must agree with it, min <= max, and a
// tile extent (if present) must evenly tile the domain range. Integer
// dimensions require the extent to divide the inclusive span exactly;
// real dimensions require only a positive extent.
func (d Dimension) Validate() error {
	if d.Name == "" {
		return newError(KindInvalidDimension, "dimension name must be non-empty")
	}
	if !d.Type.Valid() || d.Type == TypeChar {
		return newError(KindInvalidDimension, "dimension %q: datatype %s is not a valid coordinate type", d.Name, d.Type)
	}
	if err := d.checkValueType(d.Min, "min"); err != nil {
		return err
	}
	if err := d.checkValueType(d.Max, "max"); err != nil {
		return err
	}
	if compareValues(d.Min, d.Max) > 0 {
		return newError(KindInvalidDimension, "dimension %q: domain lower bound exceeds upper bound", d.Name)
	}
	if d.Extent == nil {
		return nil
	}
	if err := d.checkValueType(d.Extent, "extent"); err != nil {
		return err
	}
	return d.checkTiling()
}

// checkValueType verifies that a bound value matches the datatype class.
func (d Dimension) checkValueType(v interface{}, field string) error {
	if v == nil {
		return newError(KindInvalidDimension, "dimension %q: %s bound is not set", d.Name, field)
	}
	switch v.(type) {
	case int64:
		if d.Type.IsInteger() {
			return nil
		}
	case uint64:
		if d.Type.IsUnsigned() {
			return nil
		}
	case float64:
		if d.Type.IsReal() {
			return nil
		}
	}
	return newError(KindInvalidDimension, "dimension %q: %s value %v does not match datatype %s", d.Name, field, v, d.Type)
}

// checkTiling enforces the even-tiling engine rule for the extent.
func (d Dimension) checkTiling() error {
	switch min := d.Min.(type) {
	case int64:
		max := d.Max.(int64)
		ext := d.Extent.(int64)
		if ext <= 0 {
			return newError(KindInvalidDimension, "dimension %q: tile extent must be positive", d.Name)
		}
		if !evenlyTiles(uint64(max)-uint64(min), uint64(ext)) {
			return newError(KindInvalidDimension, "dimension %q: tile extent %d does not evenly tile domain [%d,%d]", d.Name, ext, min, max)
		}
	case uint64:
		max := d.Max.(uint64)
		ext := d.Extent.(uint64)
		if ext == 0 {
			return newError(KindInvalidDimension, "dimension %q: tile extent must be positive", d.Name)
		}
		if !evenlyTiles(max-min, ext) {
			return newError(KindInvalidDimension, "dimension %q: tile extent %d does not evenly tile domain [%d,%d]", d.Name, ext, min, max)
		}
	case float64:
		ext := d.Extent.(float64)
		if ext <= 0 {
			return newError(KindInvalidDimension, "dimension %q: tile extent must be positive", d.Name)
		}
	}
	return nil
}

// evenlyTiles reports whether ext divides the inclusive span span1+1.
// span1 is the span minus one, which always fits in uint64 even for
// full-range domains; the modulus is taken before adding the final cell
// back so the computation never wraps.
func evenlyTiles(span1, ext uint64) bool {
	return (span1%ext+1)%ext == 0
}

// Equal reports field-for-field equality with another dimension.
func (d Dimension) Equal(o Dimension) bool {
	return d.Name == o.Name && d.Type == o.Type &&
		d.Min == o.Min && d.Max == o.Max && d.Extent == o.Extent
}

// String renders the dimension for diagnostics.
func (d Dimension) String() string {
	if d.Extent != nil {
		return fmt.Sprintf("%s %s [%v,%v] extent=%v", d.Name, d.Type, d.Min, d.Max, d.Extent)
	}
	return fmt.Sprintf("%s %s [%v,%v]", d.Name, d.Type, d.Min, d.Max)
}

// dimensionJSON is the persisted form. Bounds travel as json.Number so
// 64-bit integer precision survives the round-trip.
type dimensionJSON struct {
	Name   string       `json:"name"`
	Type   Datatype     `json:"type"`
	Min    json.Number  `json:"min"`
	Max    json.Number  `json:"max"`
	Extent *json.Number `json:"extent,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (d Dimension) MarshalJSON() ([]byte, error) {
	dj := dimensionJSON{
		Name: d.Name,
		Type: d.Type,
		Min:  formatValue(d.Min),
		Max:  formatValue(d.Max),
	}
	if d.Extent != nil {
		n := formatValue(d.Extent)
		dj.Extent = &n
	}
	return json.Marshal(dj)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Dimension) UnmarshalJSON(data []byte) error {
	var dj dimensionJSON
	if err := json.Unmarshal(data, &dj); err != nil {
		return err
	}
	min, err := parseValue(dj.Type, dj.Min)
	if err != nil {
		return fmt.Errorf("dimension %q: %w", dj.Name, err)
	}
	max, err := parseValue(dj.Type, dj.Max)
	if err != nil {
		return fmt.Errorf("dimension %q: %w", dj.Name, err)
	}
	d.Name = dj.Name
	d.Type = dj.Type
	d.Min = min
	d.Max = max
	d.Extent = nil
	if dj.Extent != nil {
		ext, err := parseValue(dj.Type, *dj.Extent)
		if err != nil {
			return fmt.Errorf("dimension %q: %w", dj.Name, err)
		}
		d.Extent = ext
	}
	return nil
}

// normalizeValue widens a native Go numeric value to the canonical carrier
// type for the given datatype class. Values that cannot be widened are
// kept as-is and rejected later by Validate.
func normalizeValue(t Datatype, v interface{}) interface{} {
	if v == nil {
		return nil
	}
	var i int64
	var u uint64
	var f float64
	var isInt, isUint, isFloat bool
	switch x := v.(type) {
	case int:
		i, isInt = int64(x), true
	case int8:
		i, isInt = int64(x), true
	case int16:
		i, isInt = int64(x), true
	case int32:
		i, isInt = int64(x), true
	case int64:
		i, isInt = x, true
	case uint:
		u, isUint = uint64(x), true
	case uint8:
		u, isUint = uint64(x), true
	case uint16:
		u, isUint = uint64(x), true
	case uint32:
		u, isUint = uint64(x), true
	case uint64:
		u, isUint = x, true
	case float32:
		f, isFloat = float64(x), true
	case float64:
		f, isFloat = x, true
	default:
		return v
	}
	switch {
	case t.IsInteger():
		if isInt {
			return i
		}
		if isUint && u <= uint64(1)<<63-1 {
			return int64(u)
		}
	case t.IsUnsigned():
		if isUint {
			return u
		}
		if isInt && i >= 0 {
			return uint64(i)
		}
	case t.IsReal():
		if isFloat {
			return f
		}
		if isInt {
			return float64(i)
		}
		if isUint {
			return float64(u)
		}
	}
	return v
}

// compareValues compares two normalized bound values of the same carrier
// type. Returns -1, 0, or 1. Mismatched carriers compare as equal; the
// type check runs before any comparison.
func compareValues(a, b interface{}) int {
	switch x := a.(type) {
	case int64:
		if y, ok := b.(int64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
		}
	case uint64:
		if y, ok := b.(uint64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
		}
	case float64:
		if y, ok := b.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
		}
	}
	return 0
}

// formatValue renders a normalized bound value as a json.Number.
func formatValue(v interface{}) json.Number {
	switch x := v.(type) {
	case int64:
		return json.Number(strconv.FormatInt(x, 10))
	case uint64:
		return json.Number(strconv.FormatUint(x, 10))
	case float64:
		return json.Number(strconv.FormatFloat(x, 'g', -1, 64))
	default:
		return json.Number(fmt.Sprintf("%v", v))
	}
}

// parseValue converts a json.Number into the carrier type for a datatype.
func parseValue(t Datatype, n json.Number) (interface{}, error) {
	switch {
	case t.IsInteger():
		v, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s bound %q", t, n)
		}
		return v, nil
	case t.IsUnsigned():
		v, err := strconv.ParseUint(n.String(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s bound %q", t, n)
		}
		return v, nil
	case t.IsReal():
		v, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s bound %q", t, n)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("datatype %s does not admit coordinate bounds", t)
	}
}
