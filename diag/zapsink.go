package diag

import (
	"fmt"

	"go.uber.org/zap"
)

// ZapSink routes diagnostic events through a *zap.Logger, for hosts that
// want structured, leveled output instead of Printf's bare stdout lines.
// Grounded on the zap dependency surfaced across the pack's manifests
// (_examples/other_examples/manifests/{grafana-tempo,perkeep-perkeep,AKJUS-bsc-erigon}/go.mod)
// as the ecosystem's default structured-logging library.
type ZapSink struct {
	Logger *zap.Logger
}

// NewZapSink wraps an existing *zap.Logger.
func NewZapSink(logger *zap.Logger) ZapSink {
	return ZapSink{Logger: logger}
}

// Event logs one diagnostic line at Debug if level is high (verbose,
// matching conc_tree.cpp's debug_level >= 5/6 sites) or Info otherwise.
func (z ZapSink) Event(level int, sessionID string, format string, args ...any) {
	fields := []zap.Field{zap.String("session", sessionID), zap.Int("level", level)}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	if level >= 5 {
		z.Logger.Debug(msg, fields...)
		return
	}
	z.Logger.Info(msg, fields...)
}
