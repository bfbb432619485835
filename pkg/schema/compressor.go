package schema

import (
	"encoding/json"
	"fmt"
)

// CompressorType identifies a compression codec. The schema layer carries
// the codec/level pair opaquely; codec implementations live in the engine.
type CompressorType uint8

const (
	CompressorNone CompressorType = iota
	CompressorGZIP
	CompressorZSTD
	CompressorLZ4
	CompressorRLE
	CompressorBZIP2
	CompressorDoubleDelta
)

// Valid reports whether the compressor type is a recognized enum member.
func (t CompressorType) Valid() bool {
	return t <= CompressorDoubleDelta
}

// String returns the canonical name of the compressor type.
func (t CompressorType) String() string {
	switch t {
	case CompressorNone:
		return "NONE"
	case CompressorGZIP:
		return "GZIP"
	case CompressorZSTD:
		return "ZSTD"
	case CompressorLZ4:
		return "LZ4"
	case CompressorRLE:
		return "RLE"
	case CompressorBZIP2:
		return "BZIP2"
	case CompressorDoubleDelta:
		return "DOUBLE_DELTA"
	default:
		return "UNKNOWN"
	}
}

// CompressorTypeFromString parses a canonical codec name as produced by String.
func CompressorTypeFromString(s string) (CompressorType, bool) {
	for t := CompressorNone; t <= CompressorDoubleDelta; t++ {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// MarshalJSON encodes the compressor type by its canonical name.
func (t CompressorType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a compressor type from its canonical name.
func (t *CompressorType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, ok := CompressorTypeFromString(s)
	if !ok {
		return fmt.Errorf("unknown compressor type %q", s)
	}
	*t = v
	return nil
}

// Compressor pairs a codec with a compression level. It is an immutable
// value type; equality is structural. Level semantics are codec-specific
// and are not interpreted here (-1 means codec default).
type Compressor struct {
	Type  CompressorType `json:"type"`
	Level int            `json:"level"`
}

// NewCompressor returns a compressor descriptor for the given codec and level.
func NewCompressor(t CompressorType, level int) Compressor {
	return Compressor{Type: t, Level: level}
}

// String renders the descriptor as "CODEC:level".
func (c Compressor) String() string {
	return fmt.Sprintf("%s:%d", c.Type, c.Level)
}
