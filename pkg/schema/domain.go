package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Domain is the ordered, non-empty set of dimensions that defines an
// array's coordinate space. Order is semantically significant: it fixes
// the coordinate tuple order for every cell in the array.
type Domain struct {
	dims  []Dimension
	index map[string]int
}

// NewDomain returns an empty domain. Dimensions are added with
// AddDimension; a domain with no dimensions never passes validation.
func NewDomain() *Domain {
	return &Domain{index: make(map[string]int)}
}

// AddDimension appends a dimension, preserving insertion order.
// Fails with DuplicateDimensionName if a dimension with the same name is
// already present; the domain is left unchanged on failure.
func (d *Domain) AddDimension(dim Dimension) error {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if _, exists := d.index[dim.Name]; exists {
		return newError(KindDuplicateDimensionName, "dimension %q already exists in domain", dim.Name)
	}
	d.index[dim.Name] = len(d.dims)
	d.dims = append(d.dims, dim)
	return nil
}

// Dimensions returns the ordered dimension sequence. The returned slice
// is a copy; mutating it does not affect the domain.
func (d *Domain) Dimensions() []Dimension {
	out := make([]Dimension, len(d.dims))
	copy(out, d.dims)
	return out
}

// NDim returns the number of dimensions.
func (d *Domain) NDim() int {
	if d == nil {
		return 0
	}
	return len(d.dims)
}

// Dimension returns the dimension with the given name.
func (d *Domain) Dimension(name string) (Dimension, bool) {
	i, ok := d.index[name]
	if !ok {
		return Dimension{}, false
	}
	return d.dims[i], true
}

// Validate checks every dimension and, for dense arrays, requires each
// dimension to carry a tile extent. Sparse arrays may omit extents.
func (d *Domain) Validate(arrayType ArrayType) error {
	if d.NDim() == 0 {
		return newError(KindMissingDomain, "domain has no dimensions")
	}
	for _, dim := range d.dims {
		if err := dim.Validate(); err != nil {
			return err
		}
		if arrayType == Dense && !dim.HasTileExtent() {
			return newError(KindMissingTileExtent, "dense array dimension %q has no tile extent", dim.Name)
		}
	}
	return nil
}

// Equal reports field-for-field equality with another domain, including
// dimension order.
func (d *Domain) Equal(o *Domain) bool {
	if d.NDim() != o.NDim() {
		return false
	}
	for i := range d.dims {
		if !d.dims[i].Equal(o.dims[i]) {
			return false
		}
	}
	return true
}

// clone returns a deep copy of the domain.
func (d *Domain) clone() *Domain {
	c := NewDomain()
	for _, dim := range d.dims {
		c.index[dim.Name] = len(c.dims)
		c.dims = append(c.dims, dim)
	}
	return c
}

// String renders the domain for diagnostics.
func (d *Domain) String() string {
	parts := make([]string, len(d.dims))
	for i, dim := range d.dims {
		parts[i] = dim.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}

// MarshalJSON implements json.Marshaler; a domain persists as its ordered
// dimension list.
func (d *Domain) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.dims)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Domain) UnmarshalJSON(data []byte) error {
	var dims []Dimension
	if err := json.Unmarshal(data, &dims); err != nil {
		return err
	}
	*d = Domain{index: make(map[string]int)}
	for _, dim := range dims {
		if err := d.AddDimension(dim); err != nil {
			return err
		}
	}
	return nil
}
