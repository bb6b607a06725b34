package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/tidwall/gjson"

	"github.com/abdul-hamid-achik/gpapi/packages/bench"
	"github.com/abdul-hamid-achik/gpapi/packages/core/config"
	"github.com/abdul-hamid-achik/gpapi/packages/http"
	"github.com/abdul-hamid-achik/gpapi/packages/workspace"
)

type ConsoleFormatter struct {
	writer    io.Writer
	errWriter io.Writer
	verbose   bool
	noColor   bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer:    os.Stdout,
		errWriter: os.Stderr,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		if w != nil {
			f.writer = w
		}
	}
}

// WithErrWriter sets where FormatError writes
func WithErrWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		if w != nil {
			f.errWriter = w
		}
	}
}

// WithVerbose prints the status line and headers before the body
func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// FormatResponse prints the body as received. Verbose mode adds the status
// line, the headers and the elapsed time first.
func (f *ConsoleFormatter) FormatResponse(resp *http.Response) error {
	if f.verbose {
		cyan := color.New(color.FgCyan).SprintFunc()
		bold := color.New(color.Bold).SprintFunc()

		fmt.Fprintf(f.writer, "%s %s\n", f.statusColor(resp.StatusCode)(resp.Status), cyan(fmt.Sprintf("(%dms)", resp.DurationMs())))
		for _, k := range sortedKeys(resp.Headers) {
			fmt.Fprintf(f.writer, "%s: %s\n", bold(k), resp.Headers[k])
		}
		fmt.Fprintf(f.writer, "\n")
	}

	body := resp.BodyString()
	fmt.Fprint(f.writer, body)
	if body != "" && !strings.HasSuffix(body, "\n") {
		fmt.Fprintf(f.writer, "\n")
	}
	return nil
}

func (f *ConsoleFormatter) FormatExtract(path string, value gjson.Result, found bool) error {
	if !found {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Fprintf(f.errWriter, "%s %s\n", yellow("No match:"), path)
		return nil
	}
	fmt.Fprintln(f.writer, value.String())
	return nil
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.errWriter, "%s %v\n", red("Error:"), err)
}

// FormatTree draws the tree with box characters, directories in blue.
func (f *ConsoleFormatter) FormatTree(node *workspace.Node) error {
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()
	fmt.Fprintln(f.writer, blue(node.Label))
	f.formatChildren(node.Children, "", blue)
	return nil
}

func (f *ConsoleFormatter) formatChildren(children []*workspace.Node, prefix string, dir func(a ...interface{}) string) {
	for i, child := range children {
		branch, next := "├── ", "│   "
		if i == len(children)-1 {
			branch, next = "└── ", "    "
		}
		label := child.Label
		if child.Dir {
			label = dir(label)
		}
		fmt.Fprintf(f.writer, "%s%s%s\n", prefix, branch, label)
		f.formatChildren(child.Children, prefix+next, dir)
	}
}

func (f *ConsoleFormatter) FormatBench(s *bench.Summary) error {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "\n%s\n\n", bold("Bench results"))
	fmt.Fprintf(f.writer, "  Requests:   %d in %s (%.1f req/s)\n", s.Requests, s.Duration.Round(time.Millisecond), s.RPS)
	fmt.Fprintf(f.writer, "  Responses:  %s\n", green(fmt.Sprintf("%d", s.Succeeded)))
	if n := s.FailureCount(); n > 0 {
		fmt.Fprintf(f.writer, "  Failures:   %s\n", red(fmt.Sprintf("%d", n)))
		kinds := make([]string, 0, len(s.Failures))
		for k := range s.Failures {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(f.writer, "    %-22s %d\n", k, s.Failures[k])
		}
	}

	if len(s.StatusCodes) > 0 {
		fmt.Fprintf(f.writer, "\n  Status codes:\n")
		codes := make([]int, 0, len(s.StatusCodes))
		for c := range s.StatusCodes {
			codes = append(codes, c)
		}
		sort.Ints(codes)
		for _, c := range codes {
			fmt.Fprintf(f.writer, "    %s %d\n", f.statusColor(c)(fmt.Sprintf("%d", c)), s.StatusCodes[c])
		}
	}

	fmt.Fprintf(f.writer, "\n  Latency:\n")
	fmt.Fprintf(f.writer, "    min  %s\n", s.Min)
	fmt.Fprintf(f.writer, "    mean %s\n", s.Mean)
	fmt.Fprintf(f.writer, "    p50  %s\n", s.P50)
	fmt.Fprintf(f.writer, "    p90  %s\n", s.P90)
	fmt.Fprintf(f.writer, "    p99  %s\n", s.P99)
	fmt.Fprintf(f.writer, "    max  %s\n", s.Max)
	fmt.Fprintf(f.writer, "\n")
	return nil
}

// FormatSettings prints the settings as indented JSON, the same shape the
// settings file uses.
func (f *ConsoleFormatter) FormatSettings(cfg *config.Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(f.writer, string(data))
	return nil
}

func (f *ConsoleFormatter) statusColor(code int) func(a ...interface{}) string {
	switch {
	case code >= 500:
		return color.New(color.FgRed).SprintFunc()
	case code >= 400:
		return color.New(color.FgYellow).SprintFunc()
	case code >= 300:
		return color.New(color.FgCyan).SprintFunc()
	default:
		return color.New(color.FgGreen).SprintFunc()
	}
}
