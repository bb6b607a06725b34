// Package bench repeats one request intent with bounded concurrency and an
// optional rate limit, and summarizes status codes, failure kinds and
// latency percentiles.
package bench
