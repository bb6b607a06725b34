package output

import (
	"io"
	"os"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/gpapi/packages/bench"
	"github.com/abdul-hamid-achik/gpapi/packages/core/config"
	"github.com/abdul-hamid-achik/gpapi/packages/http"
	"github.com/abdul-hamid-achik/gpapi/packages/workspace"
)

// YAMLFormatter writes one YAML document per call
type YAMLFormatter struct {
	writer io.Writer
}

type YAMLOption func(*YAMLFormatter)

func NewYAMLFormatter(opts ...YAMLOption) *YAMLFormatter {
	f := &YAMLFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func YAMLWithWriter(w io.Writer) YAMLOption {
	return func(f *YAMLFormatter) {
		if w != nil {
			f.writer = w
		}
	}
}

func (f *YAMLFormatter) encode(v any) error {
	encoder := yaml.NewEncoder(f.writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}

func (f *YAMLFormatter) FormatResponse(resp *http.Response) error {
	return f.encode(responseDoc(resp))
}

func (f *YAMLFormatter) FormatExtract(path string, value gjson.Result, found bool) error {
	return f.encode(extractDoc(path, value, found))
}

func (f *YAMLFormatter) FormatError(err error) {
	_ = f.encode(errorDoc(err))
}

func (f *YAMLFormatter) FormatTree(node *workspace.Node) error {
	return f.encode(node)
}

func (f *YAMLFormatter) FormatBench(summary *bench.Summary) error {
	return f.encode(benchDoc(summary))
}

func (f *YAMLFormatter) FormatSettings(cfg *config.Config) error {
	return f.encode(cfg)
}
