package kcodec

import (
	"github.com/tansu-io/kafkawire/kbin"
	"github.com/tansu-io/kafkawire/ktag"
)

// RequestHeader is the header every request carries ahead of its body.
// ClientId is always a non-compact nullable string regardless of whether
// the body is flexible; Tags is only populated (and only written back)
// when the body version is flexible.
type RequestHeader struct {
	ApiKey        int16
	ApiVersion    int16
	CorrelationId int32
	ClientId      *string
	Tags          ktag.Tags
}

func decodeRequestHeader(r *kbin.Reader, apiKey, apiVersion int16, flexible bool) RequestHeader {
	h := RequestHeader{ApiKey: apiKey, ApiVersion: apiVersion}
	h.CorrelationId = r.Int32()
	h.ClientId = r.NullableString()
	if flexible {
		h.Tags = ktag.ReadFrom(r)
	}
	return h
}

func encodeRequestHeader(w *kbin.Writer, h RequestHeader, flexible bool) {
	w.AppendInt16(h.ApiKey)
	w.AppendInt16(h.ApiVersion)
	w.AppendInt32(h.CorrelationId)
	w.AppendNullableString(h.ClientId)
	if flexible {
		h.Tags.AppendTo(w)
	}
}

// ResponseHeader is the header every response carries ahead of its body.
// Tags is only populated when the body is flexible and the api key does
// not fall under the ApiVersions header quirk (see
// kschema.ResponseHeaderNeverFlexible).
type ResponseHeader struct {
	CorrelationId int32
	Tags          ktag.Tags
}

func decodeResponseHeader(r *kbin.Reader, flexible bool) ResponseHeader {
	var h ResponseHeader
	h.CorrelationId = r.Int32()
	if flexible {
		h.Tags = ktag.ReadFrom(r)
	}
	return h
}

func encodeResponseHeader(w *kbin.Writer, h ResponseHeader, flexible bool) {
	w.AppendInt32(h.CorrelationId)
	if flexible {
		h.Tags.AppendTo(w)
	}
}
