package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/gpapi/packages/http"
)

var doCmd = &cobra.Command{
	Use:   "do METHOD URL",
	Short: "Send one request and print the response body",
	Long: `Send one request and print the response body, whatever the status code.

The Content-Type header selects how --data is sent:
  application/json                   validated and re-serialized JSON
  application/x-www-form-urlencoded  key=value&key=value form fields
  multipart/form-data                field=/path/to/file upload
  anything else                      the input as-is

GET and DELETE send --data as the query string instead.

Examples:
  gpapi do GET https://api.example.com/users -H 'Accept: application/json' -d 'page=2'
  gpapi do POST https://api.example.com/users -H 'Content-Type: application/json' -d '{"name":"Ada"}'
  gpapi do PUT https://api.example.com/avatar -H 'Content-Type: multipart/form-data' -d 'file=./me.png'
  gpapi do GET https://api.example.com/users/1 --extract 'address.city'`,
	Args: methodAndURL,
	RunE: doCommand,
}

var (
	doFlags       requestFlags
	doExtractFlag string
	doVerboseFlag bool
)

func init() {
	addRequestFlags(doCmd, &doFlags)
	doCmd.Flags().StringVar(&doExtractFlag, "extract", "", "Print only the value at this JSON path (gjson syntax)")
	doCmd.Flags().BoolVarP(&doVerboseFlag, "verbose", "v", false, "Print status line and headers before the body")
}

func doCommand(cmd *cobra.Command, args []string) error {
	if err := doFlags.validate(cmd); err != nil {
		return err
	}

	a, err := loadApp(cmd, doVerboseFlag)
	if err != nil {
		return err
	}
	cfg := doFlags.settings(cmd, a.cfg)

	intent, err := doFlags.intent(args[0], args[1])
	if err != nil {
		return a.fail(err)
	}

	dispatcher := http.NewDispatcher(dispatcherOptions(cfg, a.log)...)
	resp, err := dispatcher.Dispatch(cmd.Context(), intent)
	if err != nil {
		return a.fail(err)
	}

	if doExtractFlag != "" {
		value, found := resp.Extract(doExtractFlag)
		if err := a.out.FormatExtract(doExtractFlag, value, found); err != nil {
			return err
		}
		if !found {
			return &reportedError{fmt.Errorf("no value at %q", doExtractFlag)}
		}
		return nil
	}

	return a.out.FormatResponse(resp)
}
