package schema

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memEngine keeps persisted schema documents in a map. It mimics the
// create-exclusive behavior of the real engine.
type memEngine struct {
	docs    map[string][]byte
	loadErr error
}

func newMemEngine() *memEngine {
	return &memEngine{docs: make(map[string][]byte)}
}

func (e *memEngine) CreateArray(_ context.Context, uri string, doc []byte) error {
	if _, exists := e.docs[uri]; exists {
		return fmt.Errorf("array already exists at %s", uri)
	}
	cp := make([]byte, len(doc))
	copy(cp, doc)
	e.docs[uri] = cp
	return nil
}

func (e *memEngine) LoadArray(_ context.Context, uri string) ([]byte, error) {
	if e.loadErr != nil {
		return nil, e.loadErr
	}
	doc, ok := e.docs[uri]
	if !ok {
		return nil, fmt.Errorf("no array at %s", uri)
	}
	return doc, nil
}

func denseTestSchema(t *testing.T, tctx *Context) *ArraySchema {
	t.Helper()
	s := NewArraySchema(tctx)

	dom := NewDomain()
	require.NoError(t, dom.AddDimension(NewDimension("rows", TypeInt64, 0, 99).WithTileExtent(10)))
	require.NoError(t, dom.AddDimension(NewDimension("cols", TypeInt64, 0, 99).WithTileExtent(10)))
	require.NoError(t, s.SetDomain(dom))

	require.NoError(t, s.AddAttribute(NewAttribute("value", TypeFloat64)))
	require.NoError(t, s.AddAttribute(
		NewAttribute("label", TypeChar).
			WithCellValNum(VarNum).
			WithCompressor(NewCompressor(CompressorGZIP, 6))))
	return s
}

func TestNewArraySchemaDefaults(t *testing.T) {
	s := NewArraySchema(NewContext(nil))

	assert.Equal(t, Dense, s.Type())
	assert.Equal(t, uint64(DefaultCapacity), s.Capacity())
	assert.Equal(t, RowMajor, s.TileOrder())
	assert.Equal(t, RowMajor, s.CellOrder())
	assert.Equal(t, CompressorZSTD, s.CoordCompressor().Type)
	assert.Equal(t, CompressorZSTD, s.OffsetCompressor().Type)
	assert.False(t, s.IsKV())
	assert.False(t, s.Good())
	assert.Empty(t, s.URI())
}

func TestSetDomainOnlyOnce(t *testing.T) {
	s := NewArraySchema(NewContext(nil))

	dom := NewDomain()
	require.NoError(t, dom.AddDimension(NewDimension("x", TypeInt64, 0, 9).WithTileExtent(1)))
	require.NoError(t, s.SetDomain(dom))

	other := NewDomain()
	require.NoError(t, other.AddDimension(NewDimension("y", TypeInt64, 0, 9).WithTileExtent(1)))
	err := s.SetDomain(other)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindDomainAlreadySet))

	// The original domain must survive.
	_, ok := s.Domain().Dimension("x")
	assert.True(t, ok)
}

func TestSetDomainStoresCopy(t *testing.T) {
	s := NewArraySchema(NewContext(nil))

	dom := NewDomain()
	require.NoError(t, dom.AddDimension(NewDimension("x", TypeInt64, 0, 9).WithTileExtent(1)))
	require.NoError(t, s.SetDomain(dom))

	// Mutating the caller's domain must not reach the schema.
	require.NoError(t, dom.AddDimension(NewDimension("y", TypeInt64, 0, 9).WithTileExtent(1)))
	assert.Equal(t, 1, s.Domain().NDim())
}

func TestAddAttributeDuplicate(t *testing.T) {
	s := NewArraySchema(NewContext(nil))
	require.NoError(t, s.AddAttribute(NewAttribute("v", TypeInt32)))

	err := s.AddAttribute(NewAttribute("v", TypeFloat64))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindDuplicateAttributeName))

	// The failed add must not change the stored attribute.
	a, ok := s.Attribute("v")
	require.True(t, ok)
	assert.Equal(t, TypeInt32, a.Type)
	assert.Len(t, s.Attributes(), 1)
}

func TestSetOrderAtomic(t *testing.T) {
	s := NewArraySchema(NewContext(nil))
	require.NoError(t, s.SetOrder(ColMajor, GlobalOrder))
	assert.Equal(t, ColMajor, s.TileOrder())
	assert.Equal(t, GlobalOrder, s.CellOrder())

	// GlobalOrder is not a valid tile order; neither slot may change.
	err := s.SetOrder(GlobalOrder, RowMajor)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidLayout))
	assert.Equal(t, ColMajor, s.TileOrder())
	assert.Equal(t, GlobalOrder, s.CellOrder())
}

func TestSetKVInjectsReservedAttributes(t *testing.T) {
	s := NewArraySchema(NewContext(nil))
	require.NoError(t, s.SetKV())
	assert.True(t, s.IsKV())

	attrs := s.Attributes()
	require.Len(t, attrs, 2)
	for _, a := range attrs {
		assert.Equal(t, TypeChar, a.Type)
		assert.Equal(t, VarNum, a.CellValNum)
	}

	// Further custom attributes are rejected.
	err := s.AddAttribute(NewAttribute("extra", TypeInt32))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindKVConflict))
}

func TestSetKVConflictsWithCustomAttributes(t *testing.T) {
	s := NewArraySchema(NewContext(nil))
	require.NoError(t, s.AddAttribute(NewAttribute("custom", TypeInt32)))

	err := s.SetKV()
	require.Error(t, err)
	assert.True(t, IsKind(err, KindKVConflict))
	assert.False(t, s.IsKV())
	assert.Len(t, s.Attributes(), 1)
}

func TestCheckOrder(t *testing.T) {
	tctx := NewContext(nil)

	t.Run("missing domain reported first", func(t *testing.T) {
		s := NewArraySchema(tctx)
		// Even with an invalid attribute present, the missing domain wins.
		require.NoError(t, s.AddAttribute(NewAttribute("v", TypeInt32).WithCellValNum(0)))
		err := s.Check()
		require.Error(t, err)
		assert.True(t, IsKind(err, KindMissingDomain))
	})

	t.Run("domain rules before attribute rules", func(t *testing.T) {
		s := NewArraySchema(tctx)
		dom := NewDomain()
		require.NoError(t, dom.AddDimension(NewDimension("x", TypeInt64, 0, 9)))
		require.NoError(t, s.SetDomain(dom))
		require.NoError(t, s.AddAttribute(NewAttribute("v", TypeInt32).WithCellValNum(0)))

		err := s.Check()
		require.Error(t, err)
		assert.True(t, IsKind(err, KindMissingTileExtent))
	})

	t.Run("attribute rules before capacity", func(t *testing.T) {
		s := NewArraySchema(tctx).SetType(Sparse).SetCapacity(0)
		dom := NewDomain()
		require.NoError(t, dom.AddDimension(NewDimension("x", TypeInt64, 0, 9)))
		require.NoError(t, s.SetDomain(dom))
		require.NoError(t, s.AddAttribute(NewAttribute("v", TypeInt32).WithCellValNum(0)))

		err := s.Check()
		require.Error(t, err)
		assert.True(t, IsKind(err, KindInvalidCellValNum))
	})

	t.Run("sparse zero capacity", func(t *testing.T) {
		s := NewArraySchema(tctx).SetType(Sparse).SetCapacity(0)
		dom := NewDomain()
		require.NoError(t, dom.AddDimension(NewDimension("x", TypeInt64, 0, 9)))
		require.NoError(t, s.SetDomain(dom))
		require.NoError(t, s.AddAttribute(NewAttribute("v", TypeInt32)))

		err := s.Check()
		require.Error(t, err)
		assert.True(t, IsKind(err, KindInvalidCapacity))
	})

	t.Run("dense zero capacity passes", func(t *testing.T) {
		s := denseTestSchema(t, tctx).SetCapacity(0)
		require.NoError(t, s.Check())
	})

	t.Run("invalid cell order", func(t *testing.T) {
		s := denseTestSchema(t, tctx)
		// Bypass SetOrder to plant an out-of-range value in one slot.
		s.SetCellOrder(Layout(99))
		err := s.Check()
		require.Error(t, err)
		assert.True(t, IsKind(err, KindInvalidLayout))
	})
}

func TestCheckDoesNotMutate(t *testing.T) {
	s := denseTestSchema(t, NewContext(nil))
	before := s.String()
	require.NoError(t, s.Check())
	require.NoError(t, s.Check())
	assert.Equal(t, before, s.String())
}

func TestCreateLoadRoundTrip(t *testing.T) {
	eng := newMemEngine()
	tctx := NewContext(eng)
	ctx := context.Background()

	s := denseTestSchema(t, tctx).
		SetCapacity(2500).
		SetCoordCompressor(NewCompressor(CompressorLZ4, -1)).
		SetOffsetCompressor(NewCompressor(CompressorGZIP, 9))
	require.NoError(t, s.SetOrder(RowMajor, ColMajor))

	require.NoError(t, s.Create(ctx, "arrays/grid"))
	assert.Equal(t, "arrays/grid", s.URI())

	loaded, err := LoadArraySchema(ctx, tctx, "arrays/grid")
	require.NoError(t, err)
	assert.True(t, s.Equal(loaded))
	assert.True(t, loaded.Good())
	assert.Equal(t, "arrays/grid", loaded.URI())
}

func TestCreateRejectsInvalidSchema(t *testing.T) {
	eng := newMemEngine()
	tctx := NewContext(eng)

	s := NewArraySchema(tctx)
	err := s.Create(context.Background(), "arrays/bad")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindMissingDomain))
	assert.Empty(t, eng.docs)
	assert.Empty(t, s.URI())
}

func TestCreateSurfacesEngineError(t *testing.T) {
	eng := newMemEngine()
	tctx := NewContext(eng)
	ctx := context.Background()

	s := denseTestSchema(t, tctx)
	require.NoError(t, s.Create(ctx, "arrays/dup"))

	other := denseTestSchema(t, tctx)
	err := other.Create(ctx, "arrays/dup")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindEngine))
	assert.Empty(t, other.URI())
}

func TestErrorHandlerObservesFailures(t *testing.T) {
	eng := newMemEngine()
	tctx := NewContext(eng)

	var seen []error
	tctx.SetErrorHandler(func(err error) { seen = append(seen, err) })

	s := NewArraySchema(tctx)
	err := s.Create(context.Background(), "arrays/x")
	require.Error(t, err)

	require.Len(t, seen, 1)
	assert.Equal(t, err, seen[0])
}

func TestLoadSurfacesEngineError(t *testing.T) {
	eng := newMemEngine()
	eng.loadErr = fmt.Errorf("backend unavailable")
	tctx := NewContext(eng)

	_, err := LoadArraySchema(context.Background(), tctx, "arrays/x")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindEngine))
}

func TestLoadFailurePreservesPriorState(t *testing.T) {
	eng := newMemEngine()
	tctx := NewContext(eng)
	ctx := context.Background()

	s := denseTestSchema(t, tctx)
	require.NoError(t, s.Create(ctx, "arrays/good"))
	before := s.String()

	// Plant a persisted document carrying a duplicated attribute name.
	eng.docs["arrays/bad"] = []byte(`{
		"version": 1,
		"array_type": "SPARSE",
		"domain": [{"name":"z","type":"INT64","min":0,"max":9}],
		"attributes": [
			{"name":"dup","type":"INT32","cell_val_num":1,"compressor":{"type":"NONE","level":-1}},
			{"name":"dup","type":"INT32","cell_val_num":1,"compressor":{"type":"NONE","level":-1}}
		],
		"capacity": 5,
		"tile_order": "ROW_MAJOR",
		"cell_order": "ROW_MAJOR",
		"coord_compressor": {"type":"ZSTD","level":-1},
		"offset_compressor": {"type":"ZSTD","level":-1},
		"kv": false
	}`)

	err := s.Load(ctx, "arrays/bad")
	require.Error(t, err)

	// The failed load must leave every field in its last valid state.
	assert.Equal(t, before, s.String())
	assert.Equal(t, "arrays/good", s.URI())
	assert.Equal(t, Dense, s.Type())
	_, ok := s.Attribute("value")
	assert.True(t, ok)
	_, ok = s.Attribute("dup")
	assert.False(t, ok)
}

func TestCreateWithoutEngine(t *testing.T) {
	s := denseTestSchema(t, NewContext(nil))
	err := s.Create(context.Background(), "arrays/x")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindEngine))
}

func TestKVRoundTrip(t *testing.T) {
	eng := newMemEngine()
	tctx := NewContext(eng)
	ctx := context.Background()

	s := NewArraySchema(tctx).SetType(Sparse)
	dom := NewDomain()
	require.NoError(t, dom.AddDimension(NewDimension("coords", TypeUint64, uint64(0), uint64(18446744073709551615))))
	require.NoError(t, s.SetDomain(dom))
	require.NoError(t, s.SetKV())

	require.NoError(t, s.Create(ctx, "arrays/kv"))

	loaded, err := LoadArraySchema(ctx, tctx, "arrays/kv")
	require.NoError(t, err)
	assert.True(t, loaded.IsKV())
	assert.True(t, s.Equal(loaded))
}

func TestSchemaStringDeterministic(t *testing.T) {
	s := denseTestSchema(t, NewContext(nil))
	first := s.String()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, s.String())
	}
	assert.Contains(t, first, "ArraySchema<DENSE>")
	assert.Contains(t, first, "rows")
	assert.Contains(t, first, "label")
}

func TestSchemaEqual(t *testing.T) {
	tctx := NewContext(nil)
	a := denseTestSchema(t, tctx)
	b := denseTestSchema(t, tctx)
	assert.True(t, a.Equal(b))

	b.SetCapacity(1)
	assert.False(t, a.Equal(b))
}
