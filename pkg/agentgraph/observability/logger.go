// Package observability provides the logging, metrics and tracing hooks
// used across agentgraph.
//
//   - Structured logging via slog
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// Every hook is optional. Helpers accept a nil logger, and NoopMetrics and
// NoopSpanManager stand in when metrics or tracing are disabled.
package observability

import (
	"log/slog"
	"time"
)

// LogRepair logs the outcome of a repair pass.
func LogRepair(logger *slog.Logger, workflow string, nodes, edges, pruned int) {
	if logger == nil {
		return
	}
	logger.Debug("workflow repaired",
		slog.String("workflow", workflow),
		slog.Int("nodes", nodes),
		slog.Int("edges", edges),
		slog.Int("pruned_refs", pruned),
	)
}

// LogIDCollision logs a node ID that had to be disambiguated during repair.
func LogIDCollision(logger *slog.Logger, rawID, canonical, assigned string) {
	if logger == nil {
		return
	}
	logger.Warn("node ID collision",
		slog.String("raw_id", rawID),
		slog.String("canonical", canonical),
		slog.String("assigned", assigned),
	)
}

// LogPrunedReference logs a dropped next entry.
func LogPrunedReference(logger *slog.Logger, nodeID, ref string) {
	if logger == nil {
		return
	}
	logger.Debug("dropped dangling reference",
		slog.String("node_id", nodeID),
		slog.String("ref", ref),
	)
}

// LogImportPruned logs edges dropped while importing a document.
func LogImportPruned(logger *slog.Logger, edgeID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("dropped invalid edge on import",
		slog.String("edge_id", edgeID),
		slog.String("error", err.Error()),
	)
}

// LogGenerationStart logs the start of a collaborator call.
func LogGenerationStart(logger *slog.Logger, op, lang string) {
	if logger == nil {
		return
	}
	logger.Info("generation starting",
		slog.String("op", op),
		slog.String("lang", lang),
	)
}

// LogGenerationRetry logs a transient failure that will be retried.
func LogGenerationRetry(logger *slog.Logger, op string, attempt int, err error, wait time.Duration) {
	if logger == nil {
		return
	}
	logger.Warn("generation retrying",
		slog.String("op", op),
		slog.Int("attempt", attempt),
		slog.String("error", err.Error()),
		slog.Duration("wait", wait),
	)
}

// LogGenerationComplete logs a successful collaborator call.
func LogGenerationComplete(logger *slog.Logger, op string, durationMs float64, attempts int) {
	if logger == nil {
		return
	}
	logger.Info("generation completed",
		slog.String("op", op),
		slog.Float64("duration_ms", durationMs),
		slog.Int("attempts", attempts),
	)
}

// LogGenerationError logs a failed collaborator call.
func LogGenerationError(logger *slog.Logger, op string, err error, durationMs float64, attempts int) {
	if logger == nil {
		return
	}
	logger.Error("generation failed",
		slog.String("op", op),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
		slog.Int("attempts", attempts),
	)
}

// TimedOperation returns a function reporting elapsed milliseconds.
//
//	done := TimedOperation()
//	// ... call the model ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
