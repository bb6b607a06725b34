// Package logger builds the zap loggers shared by the CLI and the request
// dispatcher.
package logger
