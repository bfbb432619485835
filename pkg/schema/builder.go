package schema

// Builder is the fluent construction surface over ArraySchema. Each
// append method applies the corresponding ArraySchema mutator and
// returns the same builder, so a sequence of appends reads as an ordered
// build pipeline:
//
//	s, err := schema.NewBuilder(tctx).
//	    Type(schema.Sparse).
//	    Domain(dom).
//	    Attribute(schema.NewAttribute("value", schema.TypeFloat64)).
//	    Order(schema.RowMajor, schema.RowMajor).
//	    Capacity(5000).
//	    Build()
//
// The builder carries no state of its own beyond the schema handle and
// the first error encountered; it bypasses no validation rule. A failed
// append makes the builder sticky: later appends are ignored and Build
// returns the first error.
type Builder struct {
	schema *ArraySchema
	err    error
}

// NewBuilder returns a builder over a fresh schema bound to the given
// processing context.
func NewBuilder(ctx *Context) *Builder {
	return &Builder{schema: NewArraySchema(ctx)}
}

// Type appends the array kind.
func (b *Builder) Type(t ArrayType) *Builder {
	if b.err == nil {
		b.schema.SetType(t)
	}
	return b
}

// Domain appends the domain.
func (b *Builder) Domain(d *Domain) *Builder {
	if b.err == nil {
		b.err = b.schema.SetDomain(d)
	}
	return b
}

// Attribute appends a cell attribute.
func (b *Builder) Attribute(a Attribute) *Builder {
	if b.err == nil {
		b.err = b.schema.AddAttribute(a)
	}
	return b
}

// Order appends the tile/cell layout pair atomically.
func (b *Builder) Order(tile, cell Layout) *Builder {
	if b.err == nil {
		b.err = b.schema.SetOrder(tile, cell)
	}
	return b
}

// Capacity appends the sparse tiling hint.
func (b *Builder) Capacity(n uint64) *Builder {
	if b.err == nil {
		b.schema.SetCapacity(n)
	}
	return b
}

// CoordCompressor appends the coordinate tile compressor.
func (b *Builder) CoordCompressor(c Compressor) *Builder {
	if b.err == nil {
		b.schema.SetCoordCompressor(c)
	}
	return b
}

// OffsetCompressor appends the offset tile compressor.
func (b *Builder) OffsetCompressor(c Compressor) *Builder {
	if b.err == nil {
		b.schema.SetOffsetCompressor(c)
	}
	return b
}

// KV appends key-value convenience mode.
func (b *Builder) KV() *Builder {
	if b.err == nil {
		b.err = b.schema.SetKV()
	}
	return b
}

// Err returns the first error recorded by an append, if any.
func (b *Builder) Err() error {
	return b.err
}

// Build validates the assembled schema and returns it. The first append
// error, or the first violated Check invariant, is returned instead.
func (b *Builder) Build() (*ArraySchema, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.schema.Check(); err != nil {
		return nil, err
	}
	return b.schema, nil
}
