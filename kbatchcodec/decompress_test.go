package kbatchcodec

import (
	"bytes"
	"compress/gzip"
	"testing"
)

func TestInflateNone(t *testing.T) {
	got, err := Inflate(CodecNone, []byte("raw"))
	if err != nil {
		t.Fatalf("Inflate() error = %v", err)
	}
	if string(got) != "raw" {
		t.Fatalf("got %q", got)
	}
}

func TestInflateGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte("hello record batch")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := Inflate(CodecGzip, buf.Bytes())
	if err != nil {
		t.Fatalf("Inflate() error = %v", err)
	}
	if string(got) != "hello record batch" {
		t.Fatalf("got %q", got)
	}
}

func TestInflateUnsupportedCodec(t *testing.T) {
	_, err := Inflate(CodecSnappy, []byte("x"))
	if err != ErrUnsupportedCodec {
		t.Fatalf("error = %v, want ErrUnsupportedCodec", err)
	}
}

func TestCodecFromAttributes(t *testing.T) {
	if c := CodecFromAttributes(int16(CodecZstd)); c != CodecZstd {
		t.Fatalf("CodecFromAttributes = %v, want CodecZstd", c)
	}
}
