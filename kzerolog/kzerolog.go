// Package kzerolog adapts github.com/rs/zerolog to klog.Logger, the same
// way the client library's own plugin/kzerolog adapts zerolog to its
// kgo.Logger interface.
package kzerolog

import "github.com/rs/zerolog"

// Logger wraps a zerolog.Logger to satisfy klog.Logger.
type Logger struct {
	Z zerolog.Logger
}

// New returns a klog.Logger backed by z.
func New(z zerolog.Logger) Logger {
	return Logger{Z: z}
}

func (l Logger) Debug(msg string, keyvals ...any) { l.log(l.Z.Debug(), msg, keyvals) }
func (l Logger) Info(msg string, keyvals ...any)  { l.log(l.Z.Info(), msg, keyvals) }
func (l Logger) Warn(msg string, keyvals ...any)  { l.log(l.Z.Warn(), msg, keyvals) }
func (l Logger) Error(msg string, keyvals ...any) { l.log(l.Z.Error(), msg, keyvals) }

func (l Logger) log(ev *zerolog.Event, msg string, keyvals []any) {
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, keyvals[i+1])
	}
	ev.Msg(msg)
}
