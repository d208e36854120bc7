// Package trace implements vm.Tracer on top of zap, per SPEC_FULL.md §4.10.
// Grounded on the rcornwell-S370-style CPU-emulator manifest's use of a
// structured logger for per-instruction tracing: one log record per
// executed step rather than a raw Printf, so a trace can be filtered,
// sampled, or shipped the same way the rest of the host's logs are.
package trace

import "go.uber.org/zap"

// ZapTracer adapts a *zap.Logger to vm.Tracer. The formatted line (built by
// internal/vm's own formatTrace) becomes a single structured field rather
// than the log message itself, keeping the message constant and therefore
// cheap to filter on.
type ZapTracer struct {
	logger *zap.Logger
}

// NewZapTracer wraps logger. Passing zap.NewNop() disables tracing without
// the VM needing a nil check beyond the one it already does for a nil
// Tracer.
func NewZapTracer(logger *zap.Logger) *ZapTracer {
	return &ZapTracer{logger: logger}
}

// Trace implements vm.Tracer.
func (t *ZapTracer) Trace(line string) {
	t.logger.Debug("step", zap.String("trace", line))
}
