// Package codec provides the block codecs the engine uses to compress
// persisted schema documents. These codecs cover the storage envelope
// only; array tile compression is a separate concern outside this
// repository.
package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ID identifies a codec in the persisted envelope. Values are stable;
// never renumber.
type ID uint8

const (
	None ID = iota
	Snappy
	Gzip
	Zstd
	LZ4
)

// Codec compresses and decompresses whole blobs.
type Codec interface {
	ID() ID
	Name() string
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

// ByID returns the codec for a persisted envelope ID.
func ByID(id ID) (Codec, error) {
	switch id {
	case None:
		return noneCodec{}, nil
	case Snappy:
		return snappyCodec{}, nil
	case Gzip:
		return gzipCodec{}, nil
	case Zstd:
		return newZstdCodec()
	case LZ4:
		return lz4Codec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec id %d", id)
	}
}

// ByName returns the codec for a configuration name.
func ByName(name string) (Codec, error) {
	switch name {
	case "none":
		return noneCodec{}, nil
	case "snappy", "":
		return snappyCodec{}, nil
	case "gzip":
		return gzipCodec{}, nil
	case "zstd":
		return newZstdCodec()
	case "lz4":
		return lz4Codec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

// Names returns the configuration names of all supported codecs.
func Names() []string {
	return []string{"none", "snappy", "gzip", "zstd", "lz4"}
}

type noneCodec struct{}

func (noneCodec) ID() ID                             { return None }
func (noneCodec) Name() string                       { return "none" }
func (noneCodec) Encode(data []byte) ([]byte, error) { return data, nil }
func (noneCodec) Decode(data []byte) ([]byte, error) { return data, nil }

type snappyCodec struct{}

func (snappyCodec) ID() ID       { return Snappy }
func (snappyCodec) Name() string { return "snappy" }

func (snappyCodec) Encode(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (snappyCodec) Decode(data []byte) ([]byte, error) {
	out, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("snappy decode: %w", err)
	}
	return out, nil
}

type gzipCodec struct{}

func (gzipCodec) ID() ID       { return Gzip }
func (gzipCodec) Name() string { return "gzip" }

func (gzipCodec) Encode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("gzip encode: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gzip encode: %w", err)
	}
	return buf.Bytes(), nil
}

func (gzipCodec) Decode(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip decode: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gzip decode: %w", err)
	}
	return out, nil
}

type zstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newZstdCodec() (*zstdCodec, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd init: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd init: %w", err)
	}
	return &zstdCodec{enc: enc, dec: dec}, nil
}

func (*zstdCodec) ID() ID       { return Zstd }
func (*zstdCodec) Name() string { return "zstd" }

func (c *zstdCodec) Encode(data []byte) ([]byte, error) {
	return c.enc.EncodeAll(data, nil), nil
}

func (c *zstdCodec) Decode(data []byte) ([]byte, error) {
	out, err := c.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	return out, nil
}

type lz4Codec struct{}

func (lz4Codec) ID() ID       { return LZ4 }
func (lz4Codec) Name() string { return "lz4" }

func (lz4Codec) Encode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 encode: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lz4 encode: %w", err)
	}
	return buf.Bytes(), nil
}

func (lz4Codec) Decode(data []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(data))
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("lz4 decode: %w", err)
	}
	return out, nil
}
