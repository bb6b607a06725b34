// Package config handles configuration loading and management for gpapi.
//
// It provides functionality for:
//   - Loading settings from .gpapi.json (or .gpapirc) through viper
//   - Default configuration values
//   - GPAPI_* environment overrides, with .env files loaded first
//   - Persisting settings back to disk
package config
