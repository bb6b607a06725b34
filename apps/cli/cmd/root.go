package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/gpapi/packages/output"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag   string
	logLevelFlag string
	outputFlag   string
	noColorFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "gpapi",
	Short: "Send HTTP requests described by plain strings.",
	Long: `gpapi sends one HTTP request from a method, a URL, a raw header block
and a raw input string. The Content-Type header decides how the input
becomes the request: JSON, form fields, a multipart file upload or raw text.
GET and DELETE input becomes the query string.

It also manages a workspace of request files and can repeat a request to
measure latency.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI and exits with a code derived from the error kind.
func Execute(v, bt string) {
	version = v
	buildTime = bt

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			output.NewConsoleFormatter(
				output.WithErrWriter(rootCmd.ErrOrStderr()),
				output.WithNoColor(noColorFlag),
			).FormatError(err)
		}
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to settings file (default: .gpapi.json in the current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "Output format: console, json, yaml")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err}
	})

	rootCmd.AddCommand(doCmd)
	rootCmd.AddCommand(curlCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(fsCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(versionCmd)
}
