package cmd

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/gpapi/packages/core/config"
	"github.com/abdul-hamid-achik/gpapi/packages/curl"
	"github.com/abdul-hamid-achik/gpapi/packages/http"
)

var curlCmd = &cobra.Command{
	Use:   "curl [CURL COMMAND...]",
	Short: "Send the request a curl command describes",
	Long: `Parse a curl command line and send the same request.

The command can be passed as one quoted argument, as arguments after --,
or piped on stdin. Supported options: -X, -H, -d and its --data variants,
--json, -F field=@path, -A, -e, -b, -G, -k and -L. Other options are
ignored. Header values are sent without spaces, so -u and headers such as
'Authorization: Bearer x' are rejected.

Examples:
  gpapi curl -- curl -X POST https://api.example.com/users -d 'name=Ada'
  pbpaste | gpapi curl
  gpapi curl --print "curl -G https://api.example.com/search -d q=go"`,
	RunE: curlCommand,
}

var curlPrintFlag bool

func init() {
	curlCmd.Flags().BoolVar(&curlPrintFlag, "print", false, "Print the parsed request instead of sending it")
}

func curlCommand(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd, false)
	if err != nil {
		return err
	}

	var parsed *curl.Command
	switch len(args) {
	case 0:
		var data []byte
		if data, err = io.ReadAll(cmd.InOrStdin()); err != nil {
			return err
		}
		parsed, err = curl.Parse(string(data))
	case 1:
		parsed, err = curl.Parse(args[0])
	default:
		parsed, err = curl.ParseArgs(args)
	}
	if err != nil {
		return &usageError{err}
	}
	intent, err := parsed.Intent()
	if err != nil {
		return a.fail(err)
	}

	if curlPrintFlag {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Method  string `json:"method"`
			URL     string `json:"url"`
			Headers string `json:"headers,omitempty"`
			Input   string `json:"input,omitempty"`
		}{intent.Method, intent.URL, intent.RawHeaders, intent.RawBody})
	}

	cfg := a.cfg.Merge(&config.Config{
		ValidateSSL:     config.BoolPtr(!parsed.Insecure),
		FollowRedirects: config.BoolPtr(parsed.FollowRedirects),
	})

	resp, err := http.NewDispatcher(dispatcherOptions(cfg, a.log)...).Dispatch(cmd.Context(), intent)
	if err != nil {
		return a.fail(err)
	}
	return a.out.FormatResponse(resp)
}
