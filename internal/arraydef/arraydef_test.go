package arraydef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-db/tessera/pkg/schema"
)

const denseDef = `
type: dense
tile_order: row_major
cell_order: col_major
dimensions:
  - name: rows
    type: int64
    min: 0
    max: 99
    extent: 10
  - name: cols
    type: int64
    min: 0
    max: 99
    extent: 10
attributes:
  - name: value
    type: float64
    compressor:
      type: gzip
      level: 6
  - name: label
    type: char
    cell_val_num: var
`

func TestBuildDenseDefinition(t *testing.T) {
	def, err := Parse([]byte(denseDef))
	require.NoError(t, err)

	s, err := def.Build(schema.NewContext(nil))
	require.NoError(t, err)

	assert.Equal(t, schema.Dense, s.Type())
	assert.Equal(t, 2, s.Domain().NDim())
	assert.Equal(t, schema.RowMajor, s.TileOrder())
	assert.Equal(t, schema.ColMajor, s.CellOrder())

	rows, ok := s.Domain().Dimension("rows")
	require.True(t, ok)
	assert.Equal(t, int64(0), rows.Min)
	assert.Equal(t, int64(99), rows.Max)
	assert.Equal(t, int64(10), rows.Extent)

	value, ok := s.Attribute("value")
	require.True(t, ok)
	assert.Equal(t, schema.CompressorGZIP, value.Compressor.Type)
	assert.Equal(t, 6, value.Compressor.Level)

	label, ok := s.Attribute("label")
	require.True(t, ok)
	assert.Equal(t, schema.VarNum, label.CellValNum)
}

func TestBuildSparseDefinition(t *testing.T) {
	def, err := Parse([]byte(`
type: sparse
capacity: 500
dimensions:
  - name: x
    type: float64
    min: -180.0
    max: 180.0
attributes:
  - name: reading
    type: int32
`))
	require.NoError(t, err)

	s, err := def.Build(schema.NewContext(nil))
	require.NoError(t, err)

	assert.Equal(t, schema.Sparse, s.Type())
	assert.Equal(t, uint64(500), s.Capacity())

	x, ok := s.Domain().Dimension("x")
	require.True(t, ok)
	assert.Equal(t, float64(-180), x.Min)
	assert.Equal(t, float64(180), x.Max)
}

func TestBuildKVDefinition(t *testing.T) {
	def, err := Parse([]byte(`
type: sparse
kv: true
dimensions:
  - name: coords
    type: uint64
    min: 0
    max: 18446744073709551615
`))
	require.NoError(t, err)

	s, err := def.Build(schema.NewContext(nil))
	require.NoError(t, err)
	assert.True(t, s.IsKV())

	_, ok := s.Attribute(schema.KVKeyAttribute)
	assert.True(t, ok)
	_, ok = s.Attribute(schema.KVValueAttribute)
	assert.True(t, ok)
}

func TestBuildLargeUnsignedBounds(t *testing.T) {
	def, err := Parse([]byte(`
type: sparse
dimensions:
  - name: id
    type: uint64
    min: 0
    max: 18446744073709551615
attributes:
  - name: v
    type: int8
`))
	require.NoError(t, err)

	s, err := def.Build(schema.NewContext(nil))
	require.NoError(t, err)

	id, ok := s.Domain().Dimension("id")
	require.True(t, ok)
	assert.Equal(t, uint64(18446744073709551615), id.Max)
}

func TestBuildRejectsUnknownDatatype(t *testing.T) {
	def, err := Parse([]byte(`
type: dense
dimensions:
  - name: x
    type: decimal
    min: 0
    max: 9
    extent: 1
attributes:
  - name: v
    type: int8
`))
	require.NoError(t, err)

	_, err = def.Build(schema.NewContext(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown datatype")
}

func TestBuildRejectsUnknownLayout(t *testing.T) {
	def, err := Parse([]byte(`
type: sparse
tile_order: hilbert
dimensions:
  - name: x
    type: int32
    min: 0
    max: 9
attributes:
  - name: v
    type: int8
`))
	require.NoError(t, err)

	_, err = def.Build(schema.NewContext(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown layout")
}

func TestBuildSurfacesCheckFailure(t *testing.T) {
	// A dense dimension without a tile extent fails the schema check.
	def, err := Parse([]byte(`
type: dense
dimensions:
  - name: x
    type: int64
    min: 0
    max: 99
attributes:
  - name: v
    type: int8
`))
	require.NoError(t, err)

	_, err = def.Build(schema.NewContext(nil))
	require.Error(t, err)
	assert.True(t, schema.IsKind(err, schema.KindMissingTileExtent))
}
