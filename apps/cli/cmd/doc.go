// Package cmd implements the gpapi CLI commands using Cobra.
//
// Available commands:
//   - do: Send one request and print the response
//   - bench: Repeat a request and report latency percentiles
//   - fs: List, read, write and watch the workspace of request files
//   - settings: Show the effective settings or write a default file
//   - version: Show gpapi version information
//
// Exit codes follow the failure kind: 1 when the request got no response,
// 2 for bad request input, 3 for configuration, 4 for filesystem errors and
// 64 for invalid usage.
package cmd
