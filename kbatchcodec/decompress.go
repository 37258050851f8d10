// Package kbatchcodec inflates the compressed payload carried inside a
// record batch's Records bytes. It sits downstream of the core codec:
// package krecordbatch and package kcodec never decompress anything, they
// only validate framing and hand the opaque bytes back to the caller. A
// caller that actually needs record contents goes through this package
// instead.
package kbatchcodec

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/tansu-io/kafkawire/krecordbatch"
)

// Codec identifies the compression algorithm named in a record batch's
// lowest three attribute bits.
type Codec int8

const (
	CodecNone Codec = iota
	CodecGzip
	CodecSnappy
	CodecLz4
	CodecZstd
)

// ErrUnsupportedCodec is returned for a codec this package does not
// implement. Snappy is named in the protocol but deliberately
// unimplemented here; see DESIGN.md.
var ErrUnsupportedCodec = errors.New("kbatchcodec: unsupported compression codec")

// CodecFromAttributes extracts the compression codec from a record
// batch's Attributes field.
func CodecFromAttributes(attributes int16) Codec {
	return Codec(int(attributes) & krecordbatch.CompressionCodecMask)
}

// Inflate decompresses compressed per codec. CodecNone returns compressed
// unchanged.
func Inflate(codec Codec, compressed []byte) ([]byte, error) {
	switch codec {
	case CodecNone:
		return compressed, nil
	case CodecGzip:
		zr, err := gzip.NewReader(bytes.NewReader(compressed))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case CodecLz4:
		zr := lz4.NewReader(bytes.NewReader(compressed))
		return io.ReadAll(zr)
	case CodecZstd:
		zr, err := zstd.NewReader(bytes.NewReader(compressed))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	default:
		return nil, ErrUnsupportedCodec
	}
}
