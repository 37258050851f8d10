// Package kmetrics wraps github.com/prometheus/client_golang, in the shape
// of the client library's own plugin/kprom: a struct holding pre-registered
// collectors, with a constructor that optionally takes a custom
// prometheus.Registerer.
package kmetrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the metrics a kcodec.Codec reports into.
type Collector struct {
	FramesDecoded       *prometheus.CounterVec
	FramesEncoded       *prometheus.CounterVec
	DecodeErrors        *prometheus.CounterVec
	EncodeErrors        *prometheus.CounterVec
	BatchCRCMismatches  prometheus.Counter
	DecodeDuration      *prometheus.HistogramVec
	EncodeDuration      *prometheus.HistogramVec
}

// Opt configures a Collector.
type Opt func(*options)

type options struct {
	reg prometheus.Registerer
}

// WithRegisterer registers the collector's metrics against reg instead of
// the default global registry.
func WithRegisterer(reg prometheus.Registerer) Opt {
	return func(o *options) { o.reg = reg }
}

// NewCollector builds and registers a Collector. If no WithRegisterer
// option is given, metrics are registered against
// prometheus.DefaultRegisterer.
func NewCollector(opts ...Opt) *Collector {
	o := options{reg: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Collector{
		FramesDecoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kafkawire",
			Name:      "frames_decoded_total",
			Help:      "Number of frames successfully decoded, by api key and direction.",
		}, []string{"api_key", "direction"}),
		FramesEncoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kafkawire",
			Name:      "frames_encoded_total",
			Help:      "Number of frames successfully encoded, by api key and direction.",
		}, []string{"api_key", "direction"}),
		DecodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kafkawire",
			Name:      "decode_errors_total",
			Help:      "Number of decode failures, by kerr.Kind.",
		}, []string{"kind"}),
		EncodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kafkawire",
			Name:      "encode_errors_total",
			Help:      "Number of encode failures, by kerr.Kind.",
		}, []string{"kind"}),
		BatchCRCMismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kafkawire",
			Name:      "batch_crc_mismatches_total",
			Help:      "Number of record batches rejected for a CRC mismatch.",
		}),
		DecodeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kafkawire",
			Name:      "decode_duration_seconds",
			Help:      "Time spent decoding one frame.",
		}, []string{"api_key", "direction"}),
		EncodeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kafkawire",
			Name:      "encode_duration_seconds",
			Help:      "Time spent encoding one frame.",
		}, []string{"api_key", "direction"}),
	}

	for _, coll := range []prometheus.Collector{
		c.FramesDecoded, c.FramesEncoded, c.DecodeErrors, c.EncodeErrors,
		c.BatchCRCMismatches, c.DecodeDuration, c.EncodeDuration,
	} {
		_ = o.reg.Register(coll)
	}
	return c
}

// ApiKeyLabel formats an api key for use as a metric label value.
func ApiKeyLabel(apiKey int16) string {
	return strconv.Itoa(int(apiKey))
}
