package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abdul-hamid-achik/gpapi/packages/core/config"
	"github.com/abdul-hamid-achik/gpapi/packages/http"
	"github.com/abdul-hamid-achik/gpapi/packages/logger"
	"github.com/abdul-hamid-achik/gpapi/packages/output"
)

// app is what every command needs after settings are resolved
type app struct {
	cfg *config.Config
	log *zap.Logger
	out output.Formatter
}

// loadApp resolves settings (file, then GPAPI_* env, then global flags)
// and builds the logger and formatter from them.
func loadApp(cmd *cobra.Command, verbose bool) (*app, error) {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, &configError{err}
	}

	flags := &config.Config{
		LogLevel: logLevelFlag,
		Output:   strings.ToLower(outputFlag),
	}
	if cmd.Flags().Changed("no-color") {
		flags.NoColor = config.BoolPtr(noColorFlag)
	}
	cfg = cfg.Merge(flags)
	if err := cfg.Validate(); err != nil {
		return nil, &usageError{err}
	}

	log := logger.New(cfg.LogLevel, cmd.ErrOrStderr())
	if cfg.Output != "console" {
		log = logger.NewJSON(cfg.LogLevel, cmd.ErrOrStderr())
	}

	out, err := output.New(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr(), verbose, cfg.GetNoColor())
	if err != nil {
		return nil, &usageError{err}
	}

	return &app{cfg: cfg, log: log, out: out}, nil
}

// fail prints err through the formatter and marks it as reported.
func (a *app) fail(err error) error {
	a.out.FormatError(err)
	return &reportedError{err}
}

// requestFlags are shared by every command that sends a request
type requestFlags struct {
	headers      []string
	headerFile   string
	data         string
	inputFile    string
	timeout      time.Duration
	insecure     bool
	proxy        string
	noFollow     bool
	maxRedirects int
	baseDir      string
}

func addRequestFlags(cmd *cobra.Command, f *requestFlags) {
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, "Header line 'Name: Value' (repeatable)")
	cmd.Flags().StringVar(&f.headerFile, "header-file", "", "Read the header block from a file")
	cmd.Flags().StringVarP(&f.data, "data", "d", "", "Request input: query string, JSON, form fields or field=/path/to/file")
	cmd.Flags().StringVar(&f.inputFile, "input-file", "", "Read the request input from a file")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Request timeout (default from settings, 30s)")
	cmd.Flags().BoolVarP(&f.insecure, "insecure", "k", false, "Disable SSL certificate validation")
	cmd.Flags().StringVar(&f.proxy, "proxy", "", "Proxy URL for HTTP requests")
	cmd.Flags().BoolVar(&f.noFollow, "no-follow", false, "Do not follow redirects")
	cmd.Flags().IntVar(&f.maxRedirects, "max-redirects", 0, "Maximum redirects to follow (default from settings, 10)")
	cmd.Flags().StringVar(&f.baseDir, "base-dir", "", "Directory attachment paths resolve against")
}

// intent joins -H lines under the header file's block and upper-cases the
// method.
func (f *requestFlags) intent(method, url string) (http.Intent, error) {
	var blocks []string
	if f.headerFile != "" {
		data, err := os.ReadFile(f.headerFile)
		if err != nil {
			return http.Intent{}, err
		}
		blocks = append(blocks, strings.TrimRight(string(data), "\r\n"))
	}
	blocks = append(blocks, f.headers...)

	input := f.data
	if f.inputFile != "" {
		data, err := os.ReadFile(f.inputFile)
		if err != nil {
			return http.Intent{}, err
		}
		input = string(data)
	}

	return http.Intent{
		Method:     strings.ToUpper(method),
		URL:        url,
		RawHeaders: strings.Join(blocks, "\n"),
		RawBody:    input,
	}, nil
}

// settings overlays the flags the user actually set on cfg.
func (f *requestFlags) settings(cmd *cobra.Command, cfg *config.Config) *config.Config {
	flags := &config.Config{
		Proxy:        f.proxy,
		BaseDir:      f.baseDir,
		MaxRedirects: f.maxRedirects,
	}
	if cmd.Flags().Changed("timeout") {
		flags.Timeout = int(f.timeout / time.Millisecond)
	}
	if cmd.Flags().Changed("insecure") {
		flags.ValidateSSL = config.BoolPtr(!f.insecure)
	}
	if cmd.Flags().Changed("no-follow") {
		flags.FollowRedirects = config.BoolPtr(!f.noFollow)
	}
	return cfg.Merge(flags)
}

func (f *requestFlags) validate(cmd *cobra.Command) error {
	if cmd.Flags().Changed("data") && cmd.Flags().Changed("input-file") {
		return &usageError{fmt.Errorf("--data and --input-file cannot be used together")}
	}
	if f.timeout < 0 {
		return &usageError{fmt.Errorf("--timeout must not be negative, got %s", f.timeout)}
	}
	if f.maxRedirects < 0 {
		return &usageError{fmt.Errorf("--max-redirects must not be negative, got %d", f.maxRedirects)}
	}
	return nil
}

func dispatcherOptions(cfg *config.Config, log *zap.Logger) []http.Option {
	return []http.Option{
		http.WithTimeout(cfg.TimeoutDuration()),
		http.WithFollowRedirects(cfg.GetFollowRedirects()),
		http.WithMaxRedirects(cfg.MaxRedirects),
		http.WithValidateSSL(cfg.GetValidateSSL()),
		http.WithProxy(cfg.Proxy),
		http.WithBaseDir(cfg.BaseDir),
		http.WithDefaultHeaders(cfg.Headers),
		http.WithLogger(log),
	}
}

// methodAndURL checks positional arguments for request commands.
func methodAndURL(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return &usageError{fmt.Errorf("expected METHOD and URL, got %d argument(s)", len(args))}
	}
	return nil
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &usageError{err}
		}
		return nil
	}
}

func rangeArgs(min, max int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.RangeArgs(min, max)(cmd, args); err != nil {
			return &usageError{err}
		}
		return nil
	}
}
