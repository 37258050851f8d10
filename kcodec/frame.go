package kcodec

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tansu-io/kafkawire/kerr"
)

// ReadFrame reads one length-prefixed frame from r: a 4-byte big-endian
// length followed by that many bytes of header+body. It fails with
// kerr.FrameTooLarge, without allocating a buffer, if the declared length
// exceeds maxFrameBytes.
func ReadFrame(r io.Reader, maxFrameBytes int32) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := int32(binary.BigEndian.Uint32(lenBuf[:]))
	if n < 0 || n > maxFrameBytes {
		return nil, kerr.Newf(kerr.FrameTooLarge, "Frame", 0,
			fmt.Sprintf("<= %d", maxFrameBytes), fmt.Sprintf("%d", n))
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteFrame writes payload to w prefixed with its big-endian length.
func WriteFrame(w io.Writer, payload []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}
