// Package arraydef parses YAML array definition files into array schemas.
// Definition files are the input to the tessera-create command.
package arraydef

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tessera-db/tessera/pkg/schema"
)

// Definition mirrors the structure of an array definition file.
type Definition struct {
	Type             string           `yaml:"type"`
	KV               bool             `yaml:"kv"`
	Capacity         uint64           `yaml:"capacity"`
	TileOrder        string           `yaml:"tile_order"`
	CellOrder        string           `yaml:"cell_order"`
	CoordCompressor  *CompressorDef   `yaml:"coord_compressor"`
	OffsetCompressor *CompressorDef   `yaml:"offset_compressor"`
	Dimensions       []DimensionDef   `yaml:"dimensions"`
	Attributes       []AttributeDef   `yaml:"attributes"`
}

// DimensionDef is a single dimension entry.
type DimensionDef struct {
	Name   string   `yaml:"name"`
	Type   string   `yaml:"type"`
	Min    yamlNum  `yaml:"min"`
	Max    yamlNum  `yaml:"max"`
	Extent *yamlNum `yaml:"extent"`
}

// AttributeDef is a single attribute entry. CellValNum accepts a positive
// integer or the string "var".
type AttributeDef struct {
	Name       string         `yaml:"name"`
	Type       string         `yaml:"type"`
	CellValNum string         `yaml:"cell_val_num"`
	Compressor *CompressorDef `yaml:"compressor"`
}

// CompressorDef selects a codec and level.
type CompressorDef struct {
	Type  string `yaml:"type"`
	Level int    `yaml:"level"`
}

// yamlNum defers numeric interpretation until the dimension datatype is
// known, so int64 and uint64 bounds survive without float rounding.
type yamlNum struct {
	raw string
}

func (n *yamlNum) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("expected scalar numeric value, got %v", node.Kind)
	}
	n.raw = node.Value
	return nil
}

func (n yamlNum) value(t schema.Datatype) (interface{}, error) {
	if n.raw == "" {
		return nil, fmt.Errorf("missing numeric value")
	}
	var v interface{}
	switch {
	case t.IsReal():
		var f float64
		if _, err := fmt.Sscanf(n.raw, "%g", &f); err != nil {
			return nil, fmt.Errorf("invalid %s value %q", t, n.raw)
		}
		v = f
	case t.IsUnsigned():
		var u uint64
		if _, err := fmt.Sscanf(n.raw, "%d", &u); err != nil {
			return nil, fmt.Errorf("invalid %s value %q", t, n.raw)
		}
		v = u
	default:
		var i int64
		if _, err := fmt.Sscanf(n.raw, "%d", &i); err != nil {
			return nil, fmt.Errorf("invalid %s value %q", t, n.raw)
		}
		v = i
	}
	return v, nil
}

// LoadFile reads and parses a definition file.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition file: %w", err)
	}
	return Parse(data)
}

// Parse parses a YAML definition document.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse definition: %w", err)
	}
	return &def, nil
}

// Build converts the definition into a checked array schema bound to tctx.
func (def *Definition) Build(tctx *schema.Context) (*schema.ArraySchema, error) {
	b := schema.NewBuilder(tctx)

	if def.Type != "" {
		at, ok := schema.ArrayTypeFromString(strings.ToUpper(def.Type))
		if !ok {
			return nil, fmt.Errorf("unknown array type %q", def.Type)
		}
		b.Type(at)
	}

	if def.KV {
		b.KV()
	}

	if len(def.Dimensions) > 0 {
		dom := schema.NewDomain()
		for _, dd := range def.Dimensions {
			dim, err := dd.dimension()
			if err != nil {
				return nil, err
			}
			if err := dom.AddDimension(dim); err != nil {
				return nil, err
			}
		}
		b.Domain(dom)
	}

	for _, ad := range def.Attributes {
		attr, err := ad.attribute()
		if err != nil {
			return nil, err
		}
		b.Attribute(attr)
	}

	if def.Capacity > 0 {
		b.Capacity(def.Capacity)
	}

	if def.TileOrder != "" || def.CellOrder != "" {
		tile, err := parseLayout(def.TileOrder, schema.RowMajor)
		if err != nil {
			return nil, err
		}
		cell, err := parseLayout(def.CellOrder, schema.RowMajor)
		if err != nil {
			return nil, err
		}
		b.Order(tile, cell)
	}

	if def.CoordCompressor != nil {
		c, err := def.CoordCompressor.compressor()
		if err != nil {
			return nil, err
		}
		b.CoordCompressor(c)
	}
	if def.OffsetCompressor != nil {
		c, err := def.OffsetCompressor.compressor()
		if err != nil {
			return nil, err
		}
		b.OffsetCompressor(c)
	}

	return b.Build()
}

func (dd DimensionDef) dimension() (schema.Dimension, error) {
	t, ok := schema.DatatypeFromString(strings.ToUpper(dd.Type))
	if !ok {
		return schema.Dimension{}, fmt.Errorf("dimension %s: unknown datatype %q", dd.Name, dd.Type)
	}

	min, err := dd.Min.value(t)
	if err != nil {
		return schema.Dimension{}, fmt.Errorf("dimension %s: min: %w", dd.Name, err)
	}
	max, err := dd.Max.value(t)
	if err != nil {
		return schema.Dimension{}, fmt.Errorf("dimension %s: max: %w", dd.Name, err)
	}

	dim := schema.NewDimension(dd.Name, t, min, max)
	if dd.Extent != nil {
		extent, err := dd.Extent.value(t)
		if err != nil {
			return schema.Dimension{}, fmt.Errorf("dimension %s: extent: %w", dd.Name, err)
		}
		dim = dim.WithTileExtent(extent)
	}
	return dim, nil
}

func (ad AttributeDef) attribute() (schema.Attribute, error) {
	t, ok := schema.DatatypeFromString(strings.ToUpper(ad.Type))
	if !ok {
		return schema.Attribute{}, fmt.Errorf("attribute %s: unknown datatype %q", ad.Name, ad.Type)
	}

	attr := schema.NewAttribute(ad.Name, t)

	switch strings.ToLower(ad.CellValNum) {
	case "", "1":
		// fixed single value, the default
	case "var":
		attr = attr.WithCellValNum(schema.VarNum)
	default:
		var n uint32
		if _, err := fmt.Sscanf(ad.CellValNum, "%d", &n); err != nil {
			return schema.Attribute{}, fmt.Errorf("attribute %s: invalid cell_val_num %q", ad.Name, ad.CellValNum)
		}
		attr = attr.WithCellValNum(n)
	}

	if ad.Compressor != nil {
		c, err := ad.Compressor.compressor()
		if err != nil {
			return schema.Attribute{}, fmt.Errorf("attribute %s: %w", ad.Name, err)
		}
		attr = attr.WithCompressor(c)
	}
	return attr, nil
}

func (cd CompressorDef) compressor() (schema.Compressor, error) {
	t, ok := schema.CompressorTypeFromString(strings.ToUpper(cd.Type))
	if !ok {
		return schema.Compressor{}, fmt.Errorf("unknown compressor %q", cd.Type)
	}
	level := cd.Level
	if level == 0 {
		level = -1
	}
	return schema.NewCompressor(t, level), nil
}

func parseLayout(s string, fallback schema.Layout) (schema.Layout, error) {
	if s == "" {
		return fallback, nil
	}
	l, ok := schema.LayoutFromString(strings.ToUpper(s))
	if !ok {
		return 0, fmt.Errorf("unknown layout %q", s)
	}
	return l, nil
}
