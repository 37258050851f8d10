// Package kcodec is the generic, schema-driven Kafka wire codec: one
// decoder and one encoder that interpret the tables in package kschema
// directly, instead of a per-message generated Go type for each of the
// protocol's ~70 RPCs. A Codec is built once with options (in the client
// library's own functional-options style) and is safe for concurrent use
// by any number of goroutines once built, since it holds no per-call
// state beyond its immutable cfg.
package kcodec

import (
	"fmt"
	"time"

	"github.com/tansu-io/kafkawire/kbin"
	"github.com/tansu-io/kafkawire/kerr"
	"github.com/tansu-io/kafkawire/kmetrics"
	"github.com/tansu-io/kafkawire/kschema"
	"github.com/tansu-io/kafkawire/kvalue"
)

// Codec decodes and encodes request/response frames against a kschema
// registry.
type Codec struct {
	cfg cfg
}

// New builds a Codec. With no options it uses kschema.Default, a 100MiB
// frame cap, a no-op logger and no metrics collector.
func New(opts ...Opt) *Codec {
	c := defaultCfg()
	for _, o := range opts {
		o.apply(&c)
	}
	return &Codec{cfg: c}
}

// MaxFrameBytes returns the configured frame size cap, for callers that
// drive their own ReadFrame loop.
func (c *Codec) MaxFrameBytes() int32 { return c.cfg.maxFrameBytes }

// DecodeRequest decodes a single request frame (header and body, with the
// 4-byte length prefix already stripped by ReadFrame). The api key and
// version are read from the frame itself, since a request is
// self-describing.
func (c *Codec) DecodeRequest(frame []byte) (RequestHeader, kvalue.Value, error) {
	start := time.Now()
	r := kbin.NewReader(frame)
	apiKey := r.Int16()
	apiVersion := r.Int16()
	if err := readErr(r, "Header"); err != nil {
		return RequestHeader{}, kvalue.Value{}, c.failDecode(err, apiKey, kschema.Request)
	}

	meta, ok := c.cfg.registry.Lookup(apiKey, kschema.Request)
	if !ok {
		err := kerr.Newf(kerr.UnknownApiKey, "Header.ApiKey", 0, "registered request api key", fmt.Sprintf("%d", apiKey))
		return RequestHeader{}, kvalue.Value{}, c.failDecode(err, apiKey, kschema.Request)
	}
	if apiVersion < 0 || apiVersion > meta.MaxVersion {
		err := kerr.Newf(kerr.UnsupportedApiVersion, "Header.ApiVersion", 2,
			fmt.Sprintf("0..%d", meta.MaxVersion), fmt.Sprintf("%d", apiVersion))
		return RequestHeader{}, kvalue.Value{}, c.failDecode(err, apiKey, kschema.Request)
	}

	flexible := meta.IsFlexible(apiVersion)
	h := decodeRequestHeader(r, apiKey, apiVersion, flexible)
	if err := readErr(r, "Header"); err != nil {
		return RequestHeader{}, kvalue.Value{}, c.failDecode(err, apiKey, kschema.Request)
	}

	sv, err := decodeStruct(r, meta, meta.Root, apiVersion, flexible, "Body")
	if err != nil {
		return h, kvalue.Value{}, c.failDecode(err, apiKey, kschema.Request)
	}
	if err := r.Complete(); err != nil {
		cerr := translateErr(err, "Body", r.Offset())
		return h, kvalue.Value{}, c.failDecode(cerr, apiKey, kschema.Request)
	}

	c.okDecode(apiKey, kschema.Request, start)
	return h, kvalue.Value{Kind: kschema.KindStruct, Struct: sv}, nil
}

// EncodeRequest encodes a request header and body into a frame (without a
// length prefix; pass the result to WriteFrame).
func (c *Codec) EncodeRequest(h RequestHeader, body kvalue.Value) ([]byte, error) {
	start := time.Now()
	meta, ok := c.cfg.registry.Lookup(h.ApiKey, kschema.Request)
	if !ok {
		err := kerr.Newf(kerr.UnknownApiKey, "Header.ApiKey", 0, "registered request api key", fmt.Sprintf("%d", h.ApiKey))
		return nil, c.failEncode(err, h.ApiKey, kschema.Request)
	}
	if h.ApiVersion < 0 || h.ApiVersion > meta.MaxVersion {
		err := kerr.Newf(kerr.UnsupportedApiVersion, "Header.ApiVersion", 0,
			fmt.Sprintf("0..%d", meta.MaxVersion), fmt.Sprintf("%d", h.ApiVersion))
		return nil, c.failEncode(err, h.ApiKey, kschema.Request)
	}

	flexible := meta.IsFlexible(h.ApiVersion)
	var w kbin.Writer
	encodeRequestHeader(&w, h, flexible)

	sv := body.Struct
	if sv == nil {
		sv = &kvalue.StructValue{}
	}
	if err := encodeStruct(&w, meta, meta.Root, h.ApiVersion, flexible, "Body", sv); err != nil {
		return nil, c.failEncode(err, h.ApiKey, kschema.Request)
	}

	c.okEncode(h.ApiKey, kschema.Request, start)
	return w.B, nil
}

// DecodeResponse decodes a single response frame. Unlike a request, a
// response is not self-describing: the caller must supply the api key and
// version of the request it answers.
func (c *Codec) DecodeResponse(apiKey, apiVersion int16, frame []byte) (ResponseHeader, kvalue.Value, error) {
	start := time.Now()
	meta, ok := c.cfg.registry.Lookup(apiKey, kschema.Response)
	if !ok {
		err := kerr.Newf(kerr.UnknownApiKey, "Header", 0, "registered response api key", fmt.Sprintf("%d", apiKey))
		return ResponseHeader{}, kvalue.Value{}, c.failDecode(err, apiKey, kschema.Response)
	}
	if apiVersion < 0 || apiVersion > meta.MaxVersion {
		err := kerr.Newf(kerr.UnsupportedApiVersion, "Header", 0,
			fmt.Sprintf("0..%d", meta.MaxVersion), fmt.Sprintf("%d", apiVersion))
		return ResponseHeader{}, kvalue.Value{}, c.failDecode(err, apiKey, kschema.Response)
	}

	bodyFlexible := meta.IsFlexible(apiVersion)
	headerFlexible := bodyFlexible && !kschema.ResponseHeaderNeverFlexible(apiKey)

	r := kbin.NewReader(frame)
	h := decodeResponseHeader(r, headerFlexible)
	if err := readErr(r, "Header"); err != nil {
		return ResponseHeader{}, kvalue.Value{}, c.failDecode(err, apiKey, kschema.Response)
	}

	sv, err := decodeStruct(r, meta, meta.Root, apiVersion, bodyFlexible, "Body")
	if err != nil {
		return h, kvalue.Value{}, c.failDecode(err, apiKey, kschema.Response)
	}
	if err := r.Complete(); err != nil {
		cerr := translateErr(err, "Body", r.Offset())
		return h, kvalue.Value{}, c.failDecode(cerr, apiKey, kschema.Response)
	}

	c.okDecode(apiKey, kschema.Response, start)
	return h, kvalue.Value{Kind: kschema.KindStruct, Struct: sv}, nil
}

// EncodeResponse encodes a response header and body into a frame (without
// a length prefix).
func (c *Codec) EncodeResponse(apiKey, apiVersion int16, h ResponseHeader, body kvalue.Value) ([]byte, error) {
	start := time.Now()
	meta, ok := c.cfg.registry.Lookup(apiKey, kschema.Response)
	if !ok {
		err := kerr.Newf(kerr.UnknownApiKey, "Header", 0, "registered response api key", fmt.Sprintf("%d", apiKey))
		return nil, c.failEncode(err, apiKey, kschema.Response)
	}
	if apiVersion < 0 || apiVersion > meta.MaxVersion {
		err := kerr.Newf(kerr.UnsupportedApiVersion, "Header", 0,
			fmt.Sprintf("0..%d", meta.MaxVersion), fmt.Sprintf("%d", apiVersion))
		return nil, c.failEncode(err, apiKey, kschema.Response)
	}

	bodyFlexible := meta.IsFlexible(apiVersion)
	headerFlexible := bodyFlexible && !kschema.ResponseHeaderNeverFlexible(apiKey)

	var w kbin.Writer
	encodeResponseHeader(&w, h, headerFlexible)

	sv := body.Struct
	if sv == nil {
		sv = &kvalue.StructValue{}
	}
	if err := encodeStruct(&w, meta, meta.Root, apiVersion, bodyFlexible, "Body", sv); err != nil {
		return nil, c.failEncode(err, apiKey, kschema.Response)
	}

	c.okEncode(apiKey, kschema.Response, start)
	return w.B, nil
}

func (c *Codec) failDecode(err error, apiKey int16, dir kschema.Direction) error {
	if ce, ok := err.(*kerr.Error); ok {
		c.cfg.logger.Error("decode failed", "api_key", apiKey, "direction", dir.String(), "kind", ce.Kind.String(), "path", ce.Path)
		if c.cfg.metrics != nil {
			c.cfg.metrics.DecodeErrors.WithLabelValues(ce.Kind.String()).Inc()
			if ce.Kind == kerr.BatchCrcMismatch {
				c.cfg.metrics.BatchCRCMismatches.Inc()
			}
		}
	}
	return err
}

func (c *Codec) failEncode(err error, apiKey int16, dir kschema.Direction) error {
	if ce, ok := err.(*kerr.Error); ok {
		c.cfg.logger.Error("encode failed", "api_key", apiKey, "direction", dir.String(), "kind", ce.Kind.String(), "path", ce.Path)
		if c.cfg.metrics != nil {
			c.cfg.metrics.EncodeErrors.WithLabelValues(ce.Kind.String()).Inc()
		}
	}
	return err
}

func (c *Codec) okDecode(apiKey int16, dir kschema.Direction, start time.Time) {
	c.cfg.logger.Debug("decoded frame", "api_key", apiKey, "direction", dir.String())
	if c.cfg.metrics == nil {
		return
	}
	label := kmetrics.ApiKeyLabel(apiKey)
	c.cfg.metrics.FramesDecoded.WithLabelValues(label, dir.String()).Inc()
	c.cfg.metrics.DecodeDuration.WithLabelValues(label, dir.String()).Observe(time.Since(start).Seconds())
}

func (c *Codec) okEncode(apiKey int16, dir kschema.Direction, start time.Time) {
	c.cfg.logger.Debug("encoded frame", "api_key", apiKey, "direction", dir.String())
	if c.cfg.metrics == nil {
		return
	}
	label := kmetrics.ApiKeyLabel(apiKey)
	c.cfg.metrics.FramesEncoded.WithLabelValues(label, dir.String()).Inc()
	c.cfg.metrics.EncodeDuration.WithLabelValues(label, dir.String()).Observe(time.Since(start).Seconds())
}
