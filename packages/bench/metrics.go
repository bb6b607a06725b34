package bench

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/abdul-hamid-achik/gpapi/packages/http"
)

const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// Metrics collects the outcome of every dispatched request
type Metrics struct {
	mu sync.Mutex

	total     atomic.Int64
	succeeded atomic.Int64

	// Latency histogram (in microseconds for precision)
	histogram *hdrhistogram.Histogram
	failures  map[string]int64
	statuses  map[int]int64

	startTime time.Time
	endTime   time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		// Histogram: 1us to 60s range, 3 significant digits
		histogram: hdrhistogram.New(minLatencyUs, maxLatencyUs, 3),
		failures:  make(map[string]int64),
		statuses:  make(map[int]int64),
	}
}

// Start marks the beginning of the run
func (m *Metrics) Start() {
	m.startTime = time.Now()
}

// Stop marks the end of the run
func (m *Metrics) Stop() {
	m.endTime = time.Now()
}

// Record records one dispatch. A nil err means resp carries a status code.
func (m *Metrics) Record(resp *http.Response, latency time.Duration, err error) {
	m.total.Add(1)

	latencyUs := latency.Microseconds()
	if latencyUs < minLatencyUs {
		latencyUs = minLatencyUs
	}
	if latencyUs > maxLatencyUs {
		latencyUs = maxLatencyUs
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_ = m.histogram.RecordValue(latencyUs)
	if err != nil {
		m.failures[http.KindOf(err).String()]++
		return
	}
	m.succeeded.Add(1)
	m.statuses[resp.StatusCode]++
}

// Summary is the final report of a run
type Summary struct {
	Requests    int64            `json:"requests" yaml:"requests"`
	Succeeded   int64            `json:"succeeded" yaml:"succeeded"`
	Failures    map[string]int64 `json:"failures" yaml:"failures"`
	StatusCodes map[int]int64    `json:"statusCodes" yaml:"statusCodes"`
	Duration    time.Duration    `json:"duration" yaml:"duration"`
	RPS         float64          `json:"rps" yaml:"rps"`

	Min  time.Duration `json:"min" yaml:"min"`
	Mean time.Duration `json:"mean" yaml:"mean"`
	P50  time.Duration `json:"p50" yaml:"p50"`
	P90  time.Duration `json:"p90" yaml:"p90"`
	P99  time.Duration `json:"p99" yaml:"p99"`
	Max  time.Duration `json:"max" yaml:"max"`
}

// FailureCount returns the number of requests that got no response.
func (s *Summary) FailureCount() int64 {
	var n int64
	for _, c := range s.Failures {
		n += c
	}
	return n
}

// GetSummary returns the metrics summary
func (m *Metrics) GetSummary() *Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	duration := m.endTime.Sub(m.startTime)
	if m.endTime.IsZero() {
		duration = time.Since(m.startTime)
	}

	total := m.total.Load()
	rps := float64(0)
	if duration.Seconds() > 0 {
		rps = float64(total) / duration.Seconds()
	}

	failures := make(map[string]int64, len(m.failures))
	for k, v := range m.failures {
		failures[k] = v
	}
	statuses := make(map[int]int64, len(m.statuses))
	for k, v := range m.statuses {
		statuses[k] = v
	}

	return &Summary{
		Requests:    total,
		Succeeded:   m.succeeded.Load(),
		Failures:    failures,
		StatusCodes: statuses,
		Duration:    duration,
		RPS:         rps,
		Min:         time.Duration(m.histogram.Min()) * time.Microsecond,
		Mean:        time.Duration(m.histogram.Mean()) * time.Microsecond,
		P50:         time.Duration(m.histogram.ValueAtQuantile(50)) * time.Microsecond,
		P90:         time.Duration(m.histogram.ValueAtQuantile(90)) * time.Microsecond,
		P99:         time.Duration(m.histogram.ValueAtQuantile(99)) * time.Microsecond,
		Max:         time.Duration(m.histogram.Max()) * time.Microsecond,
	}
}
