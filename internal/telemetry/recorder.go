package telemetry

// Each Record function emits an OTel log event and updates the metric
// instruments. Without Init both go to no-op providers.

import (
	"context"
	"sync"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterRecorderName = "github.com/steveyegge/srmauto"
	loggerName        = "srmauto"
)

// recorderInstruments holds all lazy-initialized OTel metric instruments.
type recorderInstruments struct {
	// Counters
	workflowTotal    metric.Int64Counter
	stateChangeTotal metric.Int64Counter
	terminateTotal   metric.Int64Counter
	processTotal     metric.Int64Counter
	toolRunTotal     metric.Int64Counter

	// Histograms
	workflowDurationHist metric.Float64Histogram
	toolDurationHist     metric.Float64Histogram
}

var (
	instOnce sync.Once
	inst     recorderInstruments
)

// initInstruments registers all recorder metric instruments against the current
// global MeterProvider. Must be called after telemetry.Init so the real
// provider is set. Also called lazily on first use as a safety net.
func initInstruments() {
	instOnce.Do(func() {
		m := otel.GetMeterProvider().Meter(meterRecorderName)

		inst.workflowTotal, _ = m.Int64Counter("srmauto.workflow.runs.total",
			metric.WithDescription("Total workflow runs by outcome"),
		)
		inst.stateChangeTotal, _ = m.Int64Counter("srmauto.workflow.state_changes.total",
			metric.WithDescription("Total workflow state transitions"),
		)
		inst.terminateTotal, _ = m.Int64Counter("srmauto.steam.terminations.total",
			metric.WithDescription("Total Steam termination passes"),
		)
		inst.processTotal, _ = m.Int64Counter("srmauto.steam.processes.total",
			metric.WithDescription("Processes handled by termination passes, by result"),
		)
		inst.toolRunTotal, _ = m.Int64Counter("srmauto.tool.runs.total",
			metric.WithDescription("Total external tool invocations"),
		)

		inst.workflowDurationHist, _ = m.Float64Histogram("srmauto.workflow.duration_ms",
			metric.WithDescription("Workflow run wall-clock time in milliseconds"),
			metric.WithUnit("ms"),
		)
		inst.toolDurationHist, _ = m.Float64Histogram("srmauto.tool.duration_ms",
			metric.WithDescription("External tool run time in milliseconds"),
			metric.WithUnit("ms"),
		)
	})
}

// statusStr returns "ok" or "error" depending on whether err is nil.
func statusStr(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// emit sends an OTel log event with the given body and key-value attributes.
func emit(ctx context.Context, body string, sev otellog.Severity, attrs ...otellog.KeyValue) {
	logger := global.GetLoggerProvider().Logger(loggerName)
	var r otellog.Record
	r.SetBody(otellog.StringValue(body))
	r.SetSeverity(sev)
	r.AddAttributes(attrs...)
	logger.Emit(ctx, r)
}

// errKV returns a log KeyValue with the error message, or empty string if nil.
func errKV(err error) otellog.KeyValue {
	if err != nil {
		return otellog.String("error", truncateOutput(err.Error(), maxErrorLog))
	}
	return otellog.String("error", "")
}

// severity returns SeverityInfo on success, SeverityError on failure.
func severity(err error) otellog.Severity {
	if err != nil {
		return otellog.SeverityError
	}
	return otellog.SeverityInfo
}

// maxErrorLog is the maximum number of bytes of an error captured in logs.
const maxErrorLog = 1024

// truncateOutput trims s to max bytes and appends "…" when truncated.
// Avoids splitting multi-byte UTF-8 characters at the boundary.
func truncateOutput(s string, max int) string {
	if len(s) <= max {
		return s
	}
	truncated := s[:max]
	for len(truncated) > 0 && !utf8.ValidString(truncated) {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated + "…"
}

// RecordTermination records one Steam termination pass (metrics + log event).
// err is the process listing error, if the pass could not run at all.
func RecordTermination(ctx context.Context, matched, terminated, forceKilled, failed int, err error) {
	initInstruments()
	status := statusStr(err)
	if err == nil && failed > 0 {
		status = "partial"
	}
	inst.terminateTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
	for result, n := range map[string]int{
		"terminated":   terminated,
		"force_killed": forceKilled,
		"failed":       failed,
	} {
		if n > 0 {
			inst.processTotal.Add(ctx, int64(n),
				metric.WithAttributes(attribute.String("result", result)),
			)
		}
	}
	sev := severity(err)
	if failed > 0 {
		sev = otellog.SeverityWarn
	}
	emit(ctx, "steam.terminate", sev,
		otellog.Int64("matched", int64(matched)),
		otellog.Int64("terminated", int64(terminated)),
		otellog.Int64("force_killed", int64(forceKilled)),
		otellog.Int64("failed", int64(failed)),
		otellog.String("status", status),
		errKV(err),
	)
}

// RecordToolRun records an external tool invocation with duration.
// exitCode is -1 when the tool never produced one (not found, timed out).
func RecordToolRun(ctx context.Context, tool string, exitCode int, timedOut bool, durationMs float64, err error) {
	initInstruments()
	status := statusStr(err)
	if timedOut {
		status = "timeout"
	}
	attrs := metric.WithAttributes(
		attribute.String("status", status),
		attribute.String("tool", tool),
	)
	inst.toolRunTotal.Add(ctx, 1, attrs)
	inst.toolDurationHist.Record(ctx, durationMs, attrs)
	emit(ctx, "tool.run", severity(err),
		otellog.String("tool", tool),
		otellog.Int64("exit_code", int64(exitCode)),
		otellog.Bool("timed_out", timedOut),
		otellog.Float64("duration_ms", durationMs),
		otellog.String("status", status),
		errKV(err),
	)
}

// RecordStateChange records a workflow state transition.
func RecordStateChange(ctx context.Context, runID, from, to string) {
	initInstruments()
	inst.stateChangeTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("to", to)),
	)
	emit(ctx, "workflow.state", otellog.SeverityDebug,
		otellog.String("run_id", runID),
		otellog.String("from", from),
		otellog.String("to", to),
	)
}

// RecordWorkflow records a finished workflow run. outcome is success,
// partial_failure or failure; kind is the error kind, empty on success.
func RecordWorkflow(ctx context.Context, runID, outcome, kind string, durationMs float64, err error) {
	initInstruments()
	attrs := metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("kind", kind),
	)
	inst.workflowTotal.Add(ctx, 1, attrs)
	inst.workflowDurationHist.Record(ctx, durationMs, attrs)
	emit(ctx, "workflow.finish", severity(err),
		otellog.String("run_id", runID),
		otellog.String("outcome", outcome),
		otellog.String("kind", kind),
		otellog.Float64("duration_ms", durationMs),
		errKV(err),
	)
}
