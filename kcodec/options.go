package kcodec

import (
	"github.com/tansu-io/kafkawire/klog"
	"github.com/tansu-io/kafkawire/kmetrics"
	"github.com/tansu-io/kafkawire/kschema"
)

// defaultMaxFrameBytes mirrors the client library's own
// maxBrokerWriteBytes default (100<<20, "Kafka socket.request.max.bytes
// default").
const defaultMaxFrameBytes = 100 << 20

type cfg struct {
	maxFrameBytes int32
	logger        klog.Logger
	metrics       *kmetrics.Collector
	registry      *kschema.Registry
}

func defaultCfg() cfg {
	return cfg{
		maxFrameBytes: defaultMaxFrameBytes,
		logger:        klog.NoOp{},
		registry:      kschema.Default,
	}
}

// Opt configures a Codec.
type Opt interface {
	apply(*cfg)
}

type optFunc func(*cfg)

func (f optFunc) apply(c *cfg) { f(c) }

// WithMaxFrameBytes caps the size of a single frame's payload. A frame
// whose declared length exceeds this cap fails with kerr.FrameTooLarge
// instead of allocating an attacker-controlled amount of memory.
func WithMaxFrameBytes(n int32) Opt {
	return optFunc(func(c *cfg) { c.maxFrameBytes = n })
}

// WithLogger attaches a diagnostic logger. The default is a no-op logger,
// so a Codec never requires one to function.
func WithLogger(l klog.Logger) Opt {
	return optFunc(func(c *cfg) { c.logger = l })
}

// WithMetrics attaches a Prometheus collector. The default is nil, which
// Codec treats as "do not record metrics".
func WithMetrics(m *kmetrics.Collector) Opt {
	return optFunc(func(c *cfg) { c.metrics = m })
}

// WithRegistry overrides the schema registry, primarily for tests that
// register a private schema rather than mutating kschema.Default.
func WithRegistry(r *kschema.Registry) Opt {
	return optFunc(func(c *cfg) { c.registry = r })
}
