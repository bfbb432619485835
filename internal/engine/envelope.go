package engine

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/spaolacci/murmur3"

	"github.com/tessera-db/tessera/internal/codec"
	terrors "github.com/tessera-db/tessera/internal/errors"
)

// Envelope format for persisted schema documents:
//
//	[0:4]   magic "TSRA"
//	[4]     format version
//	[5]     codec id
//	[6:14]  murmur3-64 checksum of the compressed body (big endian)
//	[14:]   compressed body
//
// The checksum covers the compressed bytes so corruption is detected
// before decompression runs on the payload.

const (
	envelopeVersion    = 1
	envelopeHeaderSize = 14
)

var envelopeMagic = [4]byte{'T', 'S', 'R', 'A'}

// sealEnvelope compresses doc with c and wraps it in a checksummed envelope.
func sealEnvelope(c codec.Codec, doc []byte) ([]byte, uint64, error) {
	body, err := c.Encode(doc)
	if err != nil {
		return nil, 0, terrors.NewEncodingError(terrors.CodeUnexpected,
			fmt.Sprintf("failed to compress schema document with %s", c.Name()), err)
	}

	sum := murmur3.Sum64(body)

	buf := make([]byte, envelopeHeaderSize+len(body))
	copy(buf[0:4], envelopeMagic[:])
	buf[4] = envelopeVersion
	buf[5] = byte(c.ID())
	binary.BigEndian.PutUint64(buf[6:14], sum)
	copy(buf[envelopeHeaderSize:], body)
	return buf, sum, nil
}

// openEnvelope validates and unwraps a persisted envelope, returning the
// original schema document.
func openEnvelope(data []byte) ([]byte, error) {
	if len(data) < envelopeHeaderSize {
		return nil, terrors.NewEncodingError(terrors.CodeBadEnvelope,
			fmt.Sprintf("envelope truncated: %d bytes", len(data)), nil)
	}
	if !bytes.Equal(data[0:4], envelopeMagic[:]) {
		return nil, terrors.NewEncodingError(terrors.CodeBadEnvelope,
			"bad envelope magic", nil)
	}
	if data[4] != envelopeVersion {
		return nil, terrors.NewEncodingError(terrors.CodeBadEnvelope,
			fmt.Sprintf("unsupported envelope version %d", data[4]), nil)
	}

	c, err := codec.ByID(codec.ID(data[5]))
	if err != nil {
		return nil, terrors.NewEncodingError(terrors.CodeUnsupportedCodec,
			fmt.Sprintf("unknown codec id %d in envelope", data[5]), err)
	}

	body := data[envelopeHeaderSize:]
	want := binary.BigEndian.Uint64(data[6:14])
	if got := murmur3.Sum64(body); got != want {
		return nil, terrors.NewEncodingError(terrors.CodeCorruptionDetected,
			fmt.Sprintf("checksum mismatch: stored %x, computed %x", want, got), nil)
	}

	doc, err := c.Decode(body)
	if err != nil {
		return nil, terrors.NewEncodingError(terrors.CodeCorruptionDetected,
			fmt.Sprintf("failed to decompress schema document with %s", c.Name()), err)
	}
	return doc, nil
}
