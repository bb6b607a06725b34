package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/gpapi/packages/bench"
	"github.com/abdul-hamid-achik/gpapi/packages/http"
)

var benchCmd = &cobra.Command{
	Use:   "bench METHOD URL",
	Short: "Repeat one request and report latency",
	Long: `Send the same request many times with bounded concurrency and report
status codes, failures by kind and latency percentiles.

Transport failures are counted. Any other failure (bad input, missing
attachment, unsupported method) stops the run, since every attempt would
fail the same way.

Examples:
  gpapi bench GET https://api.example.com/health -n 500 -c 20
  gpapi bench POST https://api.example.com/items -H 'Content-Type: application/json' -d '{"a":1}' -r 50`,
	Args: methodAndURL,
	RunE: benchCommand,
}

var (
	benchFlags           requestFlags
	benchRequestsFlag    int
	benchConcurrencyFlag int
	benchRateFlag        float64
)

func init() {
	addRequestFlags(benchCmd, &benchFlags)
	benchCmd.Flags().IntVarP(&benchRequestsFlag, "requests", "n", bench.DefaultRequests, "Total number of requests")
	benchCmd.Flags().IntVarP(&benchConcurrencyFlag, "concurrency", "c", bench.DefaultConcurrency, "Requests in flight at once")
	benchCmd.Flags().Float64VarP(&benchRateFlag, "rate", "r", 0, "Requests per second (0 for unlimited)")
}

func benchCommand(cmd *cobra.Command, args []string) error {
	if err := benchFlags.validate(cmd); err != nil {
		return err
	}

	a, err := loadApp(cmd, false)
	if err != nil {
		return err
	}
	cfg := benchFlags.settings(cmd, a.cfg)

	intent, err := benchFlags.intent(args[0], args[1])
	if err != nil {
		return a.fail(err)
	}

	dispatcher := http.NewDispatcher(dispatcherOptions(cfg, a.log)...)
	summary, err := bench.Run(cmd.Context(), dispatcher, intent, bench.Options{
		Requests:    benchRequestsFlag,
		Concurrency: benchConcurrencyFlag,
		Rate:        benchRateFlag,
	})
	if summary != nil {
		if ferr := a.out.FormatBench(summary); ferr != nil {
			return ferr
		}
	}
	if err != nil {
		return a.fail(err)
	}
	return nil
}
