package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Reserved attribute names injected by SetKV. A key-value schema carries
// exactly these two variable-length char attributes and nothing else.
const (
	KVKeyAttribute   = "__key"
	KVValueAttribute = "__value"
)

// schemaFormatVersion tracks the persisted document layout for forward
// compatibility.
const schemaFormatVersion = 1

// DefaultCapacity is the default sparse-array tiling hint (cells per tile).
const DefaultCapacity = 10000

// ArraySchema aggregates everything that defines an array before any data
// is written: array kind, domain, attribute set, capacity, tile and cell
// orders, and the coordinate/offset compressors.
//
// A schema moves through a simple lifecycle: unbound (freshly constructed
// against a processing context), building (mutators populate fields in
// any order), validated (Check), then persisted via Create or
// reconstructed via Load. Mutation is single-owner and unsynchronized;
// once a schema has been created, loaded, or handed to concurrent
// readers it must be treated as immutable. Calling a mutator on a shared
// schema is a precondition violation, not something this type serializes.
type ArraySchema struct {
	ctx *Context

	arrayType  ArrayType
	domain     *Domain
	attrs      []Attribute
	attrIndex  map[string]int
	capacity   uint64
	tileOrder  Layout
	cellOrder  Layout
	coordComp  Compressor
	offsetComp Compressor
	kv         bool

	uri     string
	defined bool
}

// NewArraySchema returns an unbound schema attached to the given
// processing context, carrying engine defaults: dense, row-major tile
// and cell orders, ZSTD coordinate and offset compressors, and the
// default sparse capacity hint.
func NewArraySchema(ctx *Context) *ArraySchema {
	return &ArraySchema{
		ctx:        ctx,
		arrayType:  Dense,
		attrIndex:  make(map[string]int),
		capacity:   DefaultCapacity,
		tileOrder:  RowMajor,
		cellOrder:  RowMajor,
		coordComp:  NewCompressor(CompressorZSTD, -1),
		offsetComp: NewCompressor(CompressorZSTD, -1),
	}
}

// SetType sets the array kind. The kind is not validated against the
// rest of the schema until Check.
func (s *ArraySchema) SetType(t ArrayType) *ArraySchema {
	s.arrayType = t
	s.defined = true
	return s
}

// SetDomain stores the domain by value. A domain can be set exactly
// once: a second call on a schema that already has a non-empty domain
// fails with DomainAlreadySet.
func (s *ArraySchema) SetDomain(d *Domain) error {
	if s.domain != nil && s.domain.NDim() > 0 {
		return newError(KindDomainAlreadySet, "domain is already set")
	}
	s.domain = d.clone()
	s.defined = true
	return nil
}

// AddAttribute adds a cell attribute. Fails with DuplicateAttributeName
// if the name collides with an existing attribute, or with KVConflict if
// the schema is in key-value mode and the attribute is not part of the
// reserved convention. The schema is unchanged on failure.
func (s *ArraySchema) AddAttribute(a Attribute) error {
	if s.kv && a.Name != KVKeyAttribute && a.Name != KVValueAttribute {
		return newError(KindKVConflict, "attribute %q conflicts with key-value convention", a.Name)
	}
	if _, exists := s.attrIndex[a.Name]; exists {
		return newError(KindDuplicateAttributeName, "attribute %q already exists", a.Name)
	}
	s.attrIndex[a.Name] = len(s.attrs)
	s.attrs = append(s.attrs, a)
	s.defined = true
	return nil
}

// SetCapacity stores the sparse-array tiling hint (target cells per
// tile). Validated against the array kind at Check.
func (s *ArraySchema) SetCapacity(n uint64) *ArraySchema {
	s.capacity = n
	s.defined = true
	return s
}

// SetTileOrder stores the tile layout. Validated at Check.
func (s *ArraySchema) SetTileOrder(l Layout) *ArraySchema {
	s.tileOrder = l
	s.defined = true
	return s
}

// SetCellOrder stores the cell layout. Validated at Check.
func (s *ArraySchema) SetCellOrder(l Layout) *ArraySchema {
	s.cellOrder = l
	s.defined = true
	return s
}

// SetOrder sets the tile and cell layouts atomically. If either value is
// out of range for its slot the schema is left unchanged and
// InvalidLayout is returned.
func (s *ArraySchema) SetOrder(tile, cell Layout) error {
	if !tile.ValidTileOrder() {
		return newError(KindInvalidLayout, "layout %s is not a valid tile order", tile)
	}
	if !cell.ValidCellOrder() {
		return newError(KindInvalidLayout, "layout %s is not a valid cell order", cell)
	}
	s.tileOrder = tile
	s.cellOrder = cell
	s.defined = true
	return nil
}

// SetCoordCompressor sets the compressor for coordinate tiles.
func (s *ArraySchema) SetCoordCompressor(c Compressor) *ArraySchema {
	s.coordComp = c
	s.defined = true
	return s
}

// SetOffsetCompressor sets the compressor for variable-length cell offsets.
func (s *ArraySchema) SetOffsetCompressor(c Compressor) *ArraySchema {
	s.offsetComp = c
	s.defined = true
	return s
}

// SetKV marks the schema as a key-value convenience schema and injects
// the two reserved attributes if not already present. Fails with
// KVConflict if custom attributes incompatible with the convention
// already exist; the schema is unchanged on failure.
func (s *ArraySchema) SetKV() error {
	for _, a := range s.attrs {
		if a.Name != KVKeyAttribute && a.Name != KVValueAttribute {
			return newError(KindKVConflict, "existing attribute %q conflicts with key-value convention", a.Name)
		}
	}
	for _, name := range []string{KVKeyAttribute, KVValueAttribute} {
		if _, exists := s.attrIndex[name]; exists {
			continue
		}
		a := NewAttribute(name, TypeChar).WithCellValNum(VarNum)
		s.attrIndex[a.Name] = len(s.attrs)
		s.attrs = append(s.attrs, a)
	}
	s.kv = true
	s.defined = true
	return nil
}

// Type returns the array kind.
func (s *ArraySchema) Type() ArrayType { return s.arrayType }

// Domain returns the array's domain, or nil if none has been set.
func (s *ArraySchema) Domain() *Domain {
	if s.domain == nil {
		return nil
	}
	return s.domain.clone()
}

// Attributes returns the attribute set in insertion order.
func (s *ArraySchema) Attributes() []Attribute {
	out := make([]Attribute, len(s.attrs))
	copy(out, s.attrs)
	return out
}

// Attribute returns the attribute with the given name.
func (s *ArraySchema) Attribute(name string) (Attribute, bool) {
	i, ok := s.attrIndex[name]
	if !ok {
		return Attribute{}, false
	}
	return s.attrs[i], true
}

// Capacity returns the sparse-array tiling hint.
func (s *ArraySchema) Capacity() uint64 { return s.capacity }

// TileOrder returns the tile layout.
func (s *ArraySchema) TileOrder() Layout { return s.tileOrder }

// CellOrder returns the cell layout.
func (s *ArraySchema) CellOrder() Layout { return s.cellOrder }

// CoordCompressor returns the coordinate tile compressor.
func (s *ArraySchema) CoordCompressor() Compressor { return s.coordComp }

// OffsetCompressor returns the offset tile compressor.
func (s *ArraySchema) OffsetCompressor() Compressor { return s.offsetComp }

// IsKV reports whether the schema follows the key-value convention.
func (s *ArraySchema) IsKV() bool { return s.kv }

// URI returns the array location after a successful Create or Load,
// otherwise the empty string.
func (s *ArraySchema) URI() string { return s.uri }

// Good reports whether the schema wraps a concrete (built or loaded)
// definition rather than being in the unbound state.
func (s *ArraySchema) Good() bool { return s.defined }

// Check validates the schema, reporting the first violated invariant in
// a fixed order: domain presence, per-dimension rules (including the
// dense tile-extent requirement), attribute validity and uniqueness, the
// sparse capacity rule, layout validity, and key-value consistency.
// Check never mutates the schema.
func (s *ArraySchema) Check() error {
	if s.domain == nil || s.domain.NDim() == 0 {
		return newError(KindMissingDomain, "schema has no domain")
	}
	if err := s.domain.Validate(s.arrayType); err != nil {
		return err
	}
	seen := make(map[string]bool, len(s.attrs))
	for _, a := range s.attrs {
		if err := a.Validate(); err != nil {
			return err
		}
		if seen[a.Name] {
			return newError(KindDuplicateAttributeName, "attribute %q appears more than once", a.Name)
		}
		seen[a.Name] = true
	}
	if s.arrayType == Sparse && s.capacity == 0 {
		return newError(KindInvalidCapacity, "sparse array capacity must be positive")
	}
	if !s.tileOrder.ValidTileOrder() {
		return newError(KindInvalidLayout, "layout %s is not a valid tile order", s.tileOrder)
	}
	if !s.cellOrder.ValidCellOrder() {
		return newError(KindInvalidLayout, "layout %s is not a valid cell order", s.cellOrder)
	}
	if s.kv {
		if err := s.checkKV(); err != nil {
			return err
		}
	}
	return nil
}

// checkKV asserts the key-value convention: exactly the two reserved
// variable-length char attributes.
func (s *ArraySchema) checkKV() error {
	if len(s.attrs) != 2 {
		return newError(KindKVConflict, "key-value schema must carry exactly the reserved attributes")
	}
	for _, name := range []string{KVKeyAttribute, KVValueAttribute} {
		a, ok := s.Attribute(name)
		if !ok {
			return newError(KindKVConflict, "key-value schema is missing reserved attribute %q", name)
		}
		if a.Type != TypeChar || a.CellValNum != VarNum {
			return newError(KindKVConflict, "reserved attribute %q does not follow the key-value convention", name)
		}
	}
	return nil
}

// Create validates the schema and persists it as a new array at uri via
// the bound engine. Engine-reported failures (including an array already
// registered at uri) are surfaced as the EngineError kind and routed
// through the context's error handler. On success the schema is
// finalized and safe to share read-only.
func (s *ArraySchema) Create(ctx context.Context, uri string) error {
	if err := s.Check(); err != nil {
		return s.ctx.handleError(err)
	}
	if s.ctx.engine == nil {
		return s.ctx.handleError(wrapEngineError("create "+uri, errNoEngine))
	}
	doc, err := s.marshalDoc()
	if err != nil {
		return s.ctx.handleError(wrapEngineError("encode schema for "+uri, err))
	}
	if err := s.ctx.engine.CreateArray(ctx, uri, doc); err != nil {
		return s.ctx.handleError(wrapEngineError("create "+uri, err))
	}
	s.uri = uri
	return nil
}

// Load reconstructs the schema from the persisted definition at uri,
// replacing any in-memory state. The result is field-for-field equal to
// the schema originally used to create the array.
func (s *ArraySchema) Load(ctx context.Context, uri string) error {
	if s.ctx.engine == nil {
		return s.ctx.handleError(wrapEngineError("load "+uri, errNoEngine))
	}
	doc, err := s.ctx.engine.LoadArray(ctx, uri)
	if err != nil {
		return s.ctx.handleError(wrapEngineError("load "+uri, err))
	}
	if err := s.unmarshalDoc(doc); err != nil {
		return s.ctx.handleError(wrapEngineError("decode schema at "+uri, err))
	}
	s.uri = uri
	s.defined = true
	return nil
}

// LoadArraySchema loads the schema of an existing array at uri.
func LoadArraySchema(ctx context.Context, tctx *Context, uri string) (*ArraySchema, error) {
	s := NewArraySchema(tctx)
	if err := s.Load(ctx, uri); err != nil {
		return nil, err
	}
	return s, nil
}

// Equal reports field-for-field equality of the persisted field set,
// including attribute and dimension order.
func (s *ArraySchema) Equal(o *ArraySchema) bool {
	if s.arrayType != o.arrayType || s.capacity != o.capacity ||
		s.tileOrder != o.tileOrder || s.cellOrder != o.cellOrder ||
		s.coordComp != o.coordComp || s.offsetComp != o.offsetComp ||
		s.kv != o.kv {
		return false
	}
	if (s.domain == nil) != (o.domain == nil) {
		return false
	}
	if s.domain != nil && !s.domain.Equal(o.domain) {
		return false
	}
	if len(s.attrs) != len(o.attrs) {
		return false
	}
	for i := range s.attrs {
		if !s.attrs[i].Equal(o.attrs[i]) {
			return false
		}
	}
	return true
}

// String produces a deterministic human-readable rendering of all fields.
// It is a diagnostic format, not a parseable one.
func (s *ArraySchema) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ArraySchema<%s", s.arrayType)
	if s.kv {
		b.WriteString(" kv")
	}
	b.WriteString(">\n")
	if s.domain != nil && s.domain.NDim() > 0 {
		fmt.Fprintf(&b, "  domain: %s\n", s.domain)
	} else {
		b.WriteString("  domain: <unset>\n")
	}
	for _, a := range s.attrs {
		fmt.Fprintf(&b, "  attribute: %s\n", a)
	}
	fmt.Fprintf(&b, "  capacity: %d\n", s.capacity)
	fmt.Fprintf(&b, "  tile order: %s\n", s.tileOrder)
	fmt.Fprintf(&b, "  cell order: %s\n", s.cellOrder)
	fmt.Fprintf(&b, "  coord compressor: %s\n", s.coordComp)
	fmt.Fprintf(&b, "  offset compressor: %s\n", s.offsetComp)
	return b.String()
}

var errNoEngine = fmt.Errorf("no storage engine bound to context")

// schemaJSON is the persisted field set handed to the engine.
type schemaJSON struct {
	Version          int         `json:"version"`
	ArrayType        ArrayType   `json:"array_type"`
	Domain           *Domain     `json:"domain"`
	Attributes       []Attribute `json:"attributes"`
	Capacity         uint64      `json:"capacity"`
	TileOrder        Layout      `json:"tile_order"`
	CellOrder        Layout      `json:"cell_order"`
	CoordCompressor  Compressor  `json:"coord_compressor"`
	OffsetCompressor Compressor  `json:"offset_compressor"`
	KV               bool        `json:"kv"`
}

// marshalDoc encodes the full field set.
func (s *ArraySchema) marshalDoc() ([]byte, error) {
	return json.Marshal(schemaJSON{
		Version:          schemaFormatVersion,
		ArrayType:        s.arrayType,
		Domain:           s.domain,
		Attributes:       s.attrs,
		Capacity:         s.capacity,
		TileOrder:        s.tileOrder,
		CellOrder:        s.cellOrder,
		CoordCompressor:  s.coordComp,
		OffsetCompressor: s.offsetComp,
		KV:               s.kv,
	})
}

// unmarshalDoc replaces the schema's field set with the decoded document.
// All checks run against scratch state first; on any failure the schema
// keeps its previous field set.
func (s *ArraySchema) unmarshalDoc(doc []byte) error {
	var sj schemaJSON
	if err := json.Unmarshal(doc, &sj); err != nil {
		return err
	}
	if sj.Version > schemaFormatVersion {
		return fmt.Errorf("schema document version %d is newer than supported version %d", sj.Version, schemaFormatVersion)
	}
	attrs := make([]Attribute, 0, len(sj.Attributes))
	attrIndex := make(map[string]int, len(sj.Attributes))
	for _, a := range sj.Attributes {
		if _, exists := attrIndex[a.Name]; exists {
			return fmt.Errorf("persisted schema has duplicate attribute %q", a.Name)
		}
		attrIndex[a.Name] = len(attrs)
		attrs = append(attrs, a)
	}
	s.arrayType = sj.ArrayType
	s.domain = sj.Domain
	s.attrs = attrs
	s.attrIndex = attrIndex
	s.capacity = sj.Capacity
	s.tileOrder = sj.TileOrder
	s.cellOrder = sj.CellOrder
	s.coordComp = sj.CoordCompressor
	s.offsetComp = sj.OffsetCompressor
	s.kv = sj.KV
	return nil
}
