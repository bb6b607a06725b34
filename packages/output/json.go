package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/tidwall/gjson"

	"github.com/abdul-hamid-achik/gpapi/packages/bench"
	"github.com/abdul-hamid-achik/gpapi/packages/core/config"
	"github.com/abdul-hamid-achik/gpapi/packages/http"
	"github.com/abdul-hamid-achik/gpapi/packages/workspace"
)

// JSONFormatter writes one indented JSON document per call
type JSONFormatter struct {
	writer io.Writer
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		if w != nil {
			f.writer = w
		}
	}
}

func (f *JSONFormatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (f *JSONFormatter) FormatResponse(resp *http.Response) error {
	return f.encode(responseDoc(resp))
}

func (f *JSONFormatter) FormatExtract(path string, value gjson.Result, found bool) error {
	return f.encode(extractDoc(path, value, found))
}

// FormatError writes the error document to the regular writer so a
// consumer always receives exactly one document.
func (f *JSONFormatter) FormatError(err error) {
	_ = f.encode(errorDoc(err))
}

func (f *JSONFormatter) FormatTree(node *workspace.Node) error {
	return f.encode(node)
}

func (f *JSONFormatter) FormatBench(summary *bench.Summary) error {
	return f.encode(benchDoc(summary))
}

func (f *JSONFormatter) FormatSettings(cfg *config.Config) error {
	return f.encode(cfg)
}

// BenchDoc is the structured form of a bench summary, latencies in
// milliseconds
type BenchDoc struct {
	Requests    int64            `json:"requests" yaml:"requests"`
	Succeeded   int64            `json:"succeeded" yaml:"succeeded"`
	Failures    map[string]int64 `json:"failures" yaml:"failures"`
	StatusCodes map[int]int64    `json:"statusCodes" yaml:"statusCodes"`
	DurationMs  float64          `json:"durationMs" yaml:"durationMs"`
	RPS         float64          `json:"rps" yaml:"rps"`
	Latency     LatencyDoc       `json:"latencyMs" yaml:"latencyMs"`
}

type LatencyDoc struct {
	Min  float64 `json:"min" yaml:"min"`
	Mean float64 `json:"mean" yaml:"mean"`
	P50  float64 `json:"p50" yaml:"p50"`
	P90  float64 `json:"p90" yaml:"p90"`
	P99  float64 `json:"p99" yaml:"p99"`
	Max  float64 `json:"max" yaml:"max"`
}

func benchDoc(s *bench.Summary) BenchDoc {
	ms := func(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
	return BenchDoc{
		Requests:    s.Requests,
		Succeeded:   s.Succeeded,
		Failures:    s.Failures,
		StatusCodes: s.StatusCodes,
		DurationMs:  ms(s.Duration),
		RPS:         s.RPS,
		Latency: LatencyDoc{
			Min:  ms(s.Min),
			Mean: ms(s.Mean),
			P50:  ms(s.P50),
			P90:  ms(s.P90),
			P99:  ms(s.P99),
			Max:  ms(s.Max),
		},
	}
}
