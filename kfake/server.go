// Package kfake is a minimal in-process broker: an actual TCP listener
// that decodes requests with package kcodec and dispatches them to a
// small table of canned handlers, in the shape of the client library's
// own kfake.NewCluster(kfake.Ports(...)) test double. It exists for tests
// that want a real socket round trip instead of calling kcodec directly.
package kfake

import (
	"fmt"
	"net"
	"sync"

	"github.com/tansu-io/kafkawire/kcodec"
	"github.com/tansu-io/kafkawire/klog"
	"github.com/tansu-io/kafkawire/kvalue"
)

// Handler answers one decoded request with a response body. h.ApiVersion is
// the version the client requested; the codec re-applies the matching
// response schema version when encoding the return value.
type Handler func(h kcodec.RequestHeader, body kvalue.Value) (kvalue.Value, error)

// Cluster is a running fake broker.
type Cluster struct {
	codec    *kcodec.Codec
	logger   klog.Logger
	handlers map[int16]Handler

	listeners []net.Listener
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Opt configures a Cluster.
type Opt func(*Cluster) error

// Ports binds the cluster to the given TCP ports on localhost, one
// listener per port. With no Ports option, NewCluster binds a single
// listener on an OS-assigned port.
func Ports(ports ...int) Opt {
	return func(c *Cluster) error {
		for _, p := range ports {
			l, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", p))
			if err != nil {
				return err
			}
			c.listeners = append(c.listeners, l)
		}
		return nil
	}
}

// WithLogger attaches a diagnostic logger to the cluster and the codec it
// drives.
func WithLogger(l klog.Logger) Opt {
	return func(c *Cluster) error {
		c.logger = l
		return nil
	}
}

// WithHandler overrides (or adds) the handler for apiKey. Without an
// override, NewCluster installs the default handlers for ApiVersions (18),
// CreateTopics (19), Fetch (1) and Produce (0).
func WithHandler(apiKey int16, h Handler) Opt {
	return func(c *Cluster) error {
		c.handlers[apiKey] = h
		return nil
	}
}

// NewCluster starts a fake broker and begins accepting connections on
// every configured listener.
func NewCluster(opts ...Opt) (*Cluster, error) {
	c := &Cluster{
		logger:   klog.NoOp{},
		handlers: make(map[int16]Handler),
	}
	installDefaultHandlers(c)

	for _, o := range opts {
		if err := o(c); err != nil {
			c.closeListeners()
			return nil, err
		}
	}
	if len(c.listeners) == 0 {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return nil, err
		}
		c.listeners = append(c.listeners, l)
	}

	c.codec = kcodec.New(kcodec.WithLogger(c.logger))

	for _, l := range c.listeners {
		c.wg.Add(1)
		go c.acceptLoop(l)
	}
	return c, nil
}

// ListenAddrs returns the address of every listener the cluster bound.
func (c *Cluster) ListenAddrs() []string {
	addrs := make([]string, len(c.listeners))
	for i, l := range c.listeners {
		addrs[i] = l.Addr().String()
	}
	return addrs
}

// Close stops accepting connections and closes every listener, then waits
// for every connection already being served to end; it does not close those
// connections itself, so it returns only after their clients disconnect. It
// is safe to call more than once.
func (c *Cluster) Close() error {
	c.closeOnce.Do(func() {
		c.closeListeners()
		c.wg.Wait()
	})
	return nil
}

func (c *Cluster) closeListeners() {
	for _, l := range c.listeners {
		_ = l.Close()
	}
}

func (c *Cluster) acceptLoop(l net.Listener) {
	defer c.wg.Done()
	for {
		conn, err := l.Accept()
		if err != nil {
			return // listener closed
		}
		c.wg.Add(1)
		go c.serveConn(conn)
	}
}

func (c *Cluster) serveConn(conn net.Conn) {
	defer c.wg.Done()
	defer conn.Close()

	for {
		frame, err := kcodec.ReadFrame(conn, c.codec.MaxFrameBytes())
		if err != nil {
			return
		}

		h, body, err := c.codec.DecodeRequest(frame)
		if err != nil {
			c.logger.Error("fake broker: decode failed", "err", err.Error())
			return
		}

		handler, ok := c.handlers[h.ApiKey]
		if !ok {
			c.logger.Warn("fake broker: no handler", "api_key", h.ApiKey)
			return
		}

		respBody, err := handler(h, body)
		if err != nil {
			c.logger.Error("fake broker: handler failed", "api_key", h.ApiKey, "err", err.Error())
			return
		}

		respHeader := kcodec.ResponseHeader{CorrelationId: h.CorrelationId}
		encoded, err := c.codec.EncodeResponse(h.ApiKey, h.ApiVersion, respHeader, respBody)
		if err != nil {
			c.logger.Error("fake broker: encode failed", "api_key", h.ApiKey, "err", err.Error())
			return
		}
		if err := kcodec.WriteFrame(conn, encoded); err != nil {
			return
		}
	}
}
