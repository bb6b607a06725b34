package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/abdul-hamid-achik/gpapi/packages/bench"
	"github.com/abdul-hamid-achik/gpapi/packages/core/config"
	"github.com/abdul-hamid-achik/gpapi/packages/http"
	"github.com/abdul-hamid-achik/gpapi/packages/workspace"
)

// Formatter renders command results
type Formatter interface {
	FormatResponse(resp *http.Response) error
	FormatExtract(path string, value gjson.Result, found bool) error
	FormatError(err error)
	FormatTree(node *workspace.Node) error
	FormatBench(summary *bench.Summary) error
	FormatSettings(cfg *config.Config) error
}

// Names lists the accepted --output values.
var Names = []string{"console", "json", "yaml"}

// New returns the formatter registered under name.
func New(name string, w, errW io.Writer, verbose, noColor bool) (Formatter, error) {
	switch strings.ToLower(name) {
	case "", "console":
		return NewConsoleFormatter(
			WithWriter(w),
			WithErrWriter(errW),
			WithVerbose(verbose),
			WithNoColor(noColor),
		), nil
	case "json":
		return NewJSONFormatter(JSONWithWriter(w)), nil
	case "yaml":
		return NewYAMLFormatter(YAMLWithWriter(w)), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (expected %s)", name, strings.Join(Names, ", "))
	}
}

// ResponseDoc is the structured form of a response
type ResponseDoc struct {
	StatusCode int               `json:"statusCode" yaml:"statusCode"`
	Status     string            `json:"status" yaml:"status"`
	Headers    map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body       any               `json:"body" yaml:"body"`
	DurationMs int64             `json:"durationMs" yaml:"durationMs"`
}

// ErrorDoc is the structured form of a failure
type ErrorDoc struct {
	Error    string `json:"error" yaml:"error"`
	Kind     string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
}

// ExtractDoc is the structured form of a JSON path lookup
type ExtractDoc struct {
	Path  string `json:"path" yaml:"path"`
	Found bool   `json:"found" yaml:"found"`
	Value any    `json:"value" yaml:"value"`
}

// responseDoc decodes a JSON body so structured output nests it instead of
// quoting it. Anything else stays text.
func responseDoc(resp *http.Response) ResponseDoc {
	doc := ResponseDoc{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Headers:    resp.Headers,
		Body:       resp.BodyString(),
		DurationMs: resp.DurationMs(),
	}
	if gjson.ValidBytes(resp.Body) {
		if v, err := resp.BodyJSON(); err == nil {
			doc.Body = v
		}
	}
	return doc
}

func errorDoc(err error) ErrorDoc {
	doc := ErrorDoc{Error: err.Error()}
	if kind := http.KindOf(err); kind != http.KindUnknown {
		doc.Kind = kind.String()
		doc.Category = kind.Category().String()
	}
	return doc
}

func extractDoc(path string, value gjson.Result, found bool) ExtractDoc {
	doc := ExtractDoc{Path: path, Found: found}
	if found {
		doc.Value = value.Value()
	}
	return doc
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
