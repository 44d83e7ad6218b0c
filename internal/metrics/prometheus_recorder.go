package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	publishDuration prom.Histogram
	publishResults  *prom.CounterVec
	renderDuration  *prom.HistogramVec
	pasteBytes      prom.Histogram
	indexRefreshes  *prom.CounterVec
	indexEntries    prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.publishDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "scpaste",
			Name:      "publish_duration_seconds",
			Help:      "Duration of complete publish operations",
			Buckets:   prom.DefBuckets,
		})
		pr.publishResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "scpaste",
			Name:      "publish_results_total",
			Help:      "Publish outcomes by result",
		}, []string{"result"})
		pr.renderDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "scpaste",
			Name:      "render_duration_seconds",
			Help:      "Duration of document rendering by language",
			Buckets:   prom.DefBuckets,
		}, []string{"language"})
		pr.pasteBytes = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "scpaste",
			Name:      "paste_bytes",
			Help:      "Raw source size of published pastes",
			Buckets:   prom.ExponentialBuckets(256, 4, 8),
		})
		pr.indexRefreshes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "scpaste",
			Name:      "index_refresh_total",
			Help:      "Index rebuild outcomes by result",
		}, []string{"result"})
		pr.indexEntries = prom.NewGauge(prom.GaugeOpts{
			Namespace: "scpaste",
			Name:      "index_entries",
			Help:      "Entries in the most recently built index",
		})
		reg.MustRegister(pr.publishDuration, pr.publishResults, pr.renderDuration, pr.pasteBytes, pr.indexRefreshes, pr.indexEntries)
	})
	return pr
}

func (p *PrometheusRecorder) ObservePublishDuration(d time.Duration) {
	if p == nil || p.publishDuration == nil {
		return
	}
	p.publishDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPublishResult(result ResultLabel) {
	if p == nil || p.publishResults == nil {
		return
	}
	p.publishResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveRenderDuration(language string, d time.Duration) {
	if p == nil || p.renderDuration == nil {
		return
	}
	p.renderDuration.WithLabelValues(language).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObservePasteBytes(n int64) {
	if p == nil || p.pasteBytes == nil {
		return
	}
	p.pasteBytes.Observe(float64(n))
}

func (p *PrometheusRecorder) IncIndexRefresh(result ResultLabel) {
	if p == nil || p.indexRefreshes == nil {
		return
	}
	p.indexRefreshes.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) SetIndexEntries(n int) {
	if p == nil || p.indexEntries == nil {
		return
	}
	p.indexEntries.Set(float64(n))
}
