package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDomain(t *testing.T, dims ...Dimension) *Domain {
	t.Helper()
	d := NewDomain()
	for _, dim := range dims {
		require.NoError(t, d.AddDimension(dim))
	}
	return d
}

func TestDomainAddAndLookup(t *testing.T) {
	d := testDomain(t,
		NewDimension("rows", TypeInt64, 0, 99).WithTileExtent(10),
		NewDimension("cols", TypeInt64, 0, 99).WithTileExtent(10),
	)

	assert.Equal(t, 2, d.NDim())

	dims := d.Dimensions()
	require.Len(t, dims, 2)
	assert.Equal(t, "rows", dims[0].Name)
	assert.Equal(t, "cols", dims[1].Name)

	cols, ok := d.Dimension("cols")
	require.True(t, ok)
	assert.Equal(t, int64(99), cols.Max)

	_, ok = d.Dimension("depth")
	assert.False(t, ok)
}

func TestDomainRejectsDuplicateName(t *testing.T) {
	d := testDomain(t, NewDimension("x", TypeInt64, 0, 9).WithTileExtent(1))

	err := d.AddDimension(NewDimension("x", TypeFloat64, 0.0, 1.0))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindDuplicateDimensionName))

	// The failed add must leave the domain untouched.
	assert.Equal(t, 1, d.NDim())
	x, _ := d.Dimension("x")
	assert.Equal(t, TypeInt64, x.Type)
}

func TestDomainValidateEmpty(t *testing.T) {
	err := NewDomain().Validate(Dense)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindMissingDomain))
}

func TestDomainValidateDenseRequiresExtents(t *testing.T) {
	d := testDomain(t,
		NewDimension("x", TypeInt64, 0, 9).WithTileExtent(2),
		NewDimension("y", TypeInt64, 0, 9),
	)

	err := d.Validate(Dense)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindMissingTileExtent))

	// Sparse arrays may omit extents.
	require.NoError(t, d.Validate(Sparse))
}

func TestDomainValidateSurfacesDimensionError(t *testing.T) {
	d := testDomain(t, NewDimension("x", TypeInt64, 9, 0).WithTileExtent(1))
	err := d.Validate(Dense)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidDimension))
}

func TestDomainDimensionsReturnsCopy(t *testing.T) {
	d := testDomain(t, NewDimension("x", TypeInt64, 0, 9).WithTileExtent(1))

	dims := d.Dimensions()
	dims[0].Name = "mutated"

	x := d.Dimensions()[0]
	assert.Equal(t, "x", x.Name)
}

func TestDomainEqual(t *testing.T) {
	a := testDomain(t,
		NewDimension("x", TypeInt64, 0, 9).WithTileExtent(1),
		NewDimension("y", TypeInt64, 0, 9).WithTileExtent(1),
	)
	b := testDomain(t,
		NewDimension("x", TypeInt64, 0, 9).WithTileExtent(1),
		NewDimension("y", TypeInt64, 0, 9).WithTileExtent(1),
	)
	assert.True(t, a.Equal(b))

	// Dimension order is part of domain identity.
	c := testDomain(t,
		NewDimension("y", TypeInt64, 0, 9).WithTileExtent(1),
		NewDimension("x", TypeInt64, 0, 9).WithTileExtent(1),
	)
	assert.False(t, a.Equal(c))
}

func TestDomainJSONRoundTrip(t *testing.T) {
	d := testDomain(t,
		NewDimension("rows", TypeInt64, -100, 99).WithTileExtent(10),
		NewDimension("lat", TypeFloat64, -90.0, 90.0),
	)

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var back Domain
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, d.Equal(&back))
}
