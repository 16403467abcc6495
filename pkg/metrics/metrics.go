package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for RenderOutcome.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics provides observability for address rendering and the template
// catalog. A nil *Metrics records nothing.
type Metrics struct {
	// Render outcomes by country and status
	RenderOutcome *prometheus.CounterVec

	// Full pipeline latency by country
	RenderLatency *prometheus.HistogramVec

	// Number of lines produced per rendition
	RenderedLines prometheus.Histogram

	// Template cache lookups by result ("hit", "miss")
	CacheLookups *prometheus.CounterVec

	// Template parse latency
	TemplateParseLatency prometheus.Histogram
}

// New registers the collectors on reg. A nil reg means the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		RenderOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "s42_render_total",
			Help: "Total address renditions by country and status",
		}, []string{"country", "status"}),

		RenderLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "s42_render_duration_seconds",
			Help:    "Duration of template lookup, rendition and output rendering",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.1},
		}, []string{"country"}),

		RenderedLines: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "s42_rendered_lines",
			Help:    "Number of address lines per rendition",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 8},
		}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "s42_template_cache_lookups_total",
			Help: "Template catalog cache lookups by result",
		}, []string{"result"}), // result: "hit", "miss"

		TemplateParseLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "s42_template_parse_duration_seconds",
			Help:    "Duration of loading and parsing a PATDL template",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
	}
}

// ObserveRender records one pipeline run.
func (m *Metrics) ObserveRender(country, status string, lines int, d time.Duration) {
	if m == nil {
		return
	}
	m.RenderOutcome.WithLabelValues(country, status).Inc()
	m.RenderLatency.WithLabelValues(country).Observe(d.Seconds())
	if status == StatusOK {
		m.RenderedLines.Observe(float64(lines))
	}
}

// ObserveCacheLookup records a catalog cache hit or miss.
func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// ObserveTemplateParse records the time spent loading and parsing a template.
func (m *Metrics) ObserveTemplateParse(d time.Duration) {
	if m != nil {
		m.TemplateParseLatency.Observe(d.Seconds())
	}
}
