package metrics

import (
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/agbru/macscalc/internal/orchestration"
)

const namespace = "macscalc"

// Recorder collects the metrics of one run in a private registry. It
// implements orchestration.ProgressReporter so it can observe every
// temperature as it completes.
type Recorder struct {
	registry *prometheus.Registry

	fetchDuration   prometheus.Histogram
	fetchFailures   prometheus.Counter
	curvePoints     prometheus.Gauge
	computeDuration prometheus.Histogram
	temperatures    *prometheus.CounterVec
	macs            *prometheus.GaugeVec
	coverage        *prometheus.GaugeVec
	nodes           *prometheus.GaugeVec
	heapAlloc       prometheus.Gauge
	gcCycles        prometheus.Gauge
}

var _ orchestration.ProgressReporter = (*Recorder)(nil)

// NewRecorder creates a Recorder with Go runtime collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time spent retrieving the cross-section dataset.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		fetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Number of failed dataset retrievals.",
		}),
		curvePoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "curve_points",
			Help:      "Number of samples in the retrieved dataset.",
		}),
		computeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compute_duration_seconds",
			Help:      "Time spent integrating one temperature.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		temperatures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "temperatures_total",
			Help:      "Number of evaluated temperatures by outcome.",
		}, []string{"status"}),
		macs: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "macs_millibarns",
			Help:      "Maxwellian-averaged cross section by temperature.",
		}, []string{"temperature_kev"}),
		coverage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "weight_coverage_ratio",
			Help:      "Fraction of the Maxwellian weight inside the data domain.",
		}, []string{"temperature_kev"}),
		nodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "quadrature_nodes",
			Help:      "Integrand evaluations used by the quadrature.",
		}, []string{"temperature_kev"}),
		heapAlloc: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "heap_alloc_bytes",
			Help:      "Heap bytes in use at the last memory snapshot.",
		}),
		gcCycles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gc_cycles",
			Help:      "Completed GC cycles at the last memory snapshot.",
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.fetchDuration, r.fetchFailures, r.curvePoints, r.computeDuration,
		r.temperatures, r.macs, r.coverage, r.nodes, r.heapAlloc, r.gcCycles,
	)
	return r
}

// Registry exposes the underlying registry, e.g. for tests or an HTTP handler.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveFetch records one dataset retrieval.
func (r *Recorder) ObserveFetch(d time.Duration, points int, err error) {
	r.fetchDuration.Observe(d.Seconds())
	if err != nil {
		r.fetchFailures.Inc()
		return
	}
	r.curvePoints.Set(float64(points))
}

// TemperatureDone records the outcome of one temperature.
func (r *Recorder) TemperatureDone(_, _ int, res orchestration.TemperatureResult) {
	if res.Err != nil {
		r.temperatures.WithLabelValues("error").Inc()
		return
	}
	r.temperatures.WithLabelValues("ok").Inc()
	r.computeDuration.Observe(res.Duration.Seconds())

	label := strconv.FormatFloat(res.TemperatureKeV, 'g', -1, 64)
	r.macs.WithLabelValues(label).Set(res.Result.MACSMb)
	r.coverage.WithLabelValues(label).Set(res.Result.Coverage)
	r.nodes.WithLabelValues(label).Set(float64(res.Result.Nodes))
}

// SnapshotMemory records current runtime memory statistics.
func (r *Recorder) SnapshotMemory() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.heapAlloc.Set(float64(m.HeapAlloc))
	r.gcCycles.Set(float64(m.NumGC))
}

// WriteTextfile writes all metrics in the Prometheus text format, suitable
// for the node_exporter textfile collector. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
