// Package output provides formatters for displaying command results.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output
//   - YAML: The same documents as JSON, in YAML
//
// Each formatter implements the Formatter interface. Structured formats nest
// JSON response bodies instead of quoting them.
package output
