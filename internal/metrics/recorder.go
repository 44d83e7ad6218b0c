// Package metrics defines the observability hooks recorded around publish
// operations.
package metrics

import "time"

// ResultLabel enumerates operation result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailure ResultLabel = "failure"
)

// Recorder defines observability hooks for paste and index operations.
// Implementations may forward to Prometheus, OpenTelemetry, etc. All methods
// must be safe on a nil *PrometheusRecorder so injection stays optional.
type Recorder interface {
	ObservePublishDuration(d time.Duration)
	IncPublishResult(result ResultLabel)
	ObserveRenderDuration(language string, d time.Duration)
	ObservePasteBytes(n int64)
	IncIndexRefresh(result ResultLabel)
	SetIndexEntries(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not
// configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePublishDuration(time.Duration)        {}
func (NoopRecorder) IncPublishResult(ResultLabel)                {}
func (NoopRecorder) ObserveRenderDuration(string, time.Duration) {}
func (NoopRecorder) ObservePasteBytes(int64)                     {}
func (NoopRecorder) IncIndexRefresh(ResultLabel)                 {}
func (NoopRecorder) SetIndexEntries(int)                         {}
