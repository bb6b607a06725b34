package bench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/abdul-hamid-achik/gpapi/packages/http"
)

const (
	DefaultRequests    = 100
	DefaultConcurrency = 10
)

// ErrInvalidOptions is wrapped by option validation failures.
var ErrInvalidOptions = errors.New("invalid bench options")

// Dispatcher sends one request. *http.Dispatcher satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, intent http.Intent) (*http.Response, error)
}

// Options configures a run
type Options struct {
	Requests    int     // total dispatches
	Concurrency int     // dispatches in flight at once
	Rate        float64 // dispatches per second, 0 for unlimited
}

func (o Options) withDefaults() Options {
	if o.Requests == 0 {
		o.Requests = DefaultRequests
	}
	if o.Concurrency == 0 {
		o.Concurrency = DefaultConcurrency
	}
	return o
}

func (o Options) validate() error {
	if o.Requests < 1 {
		return fmt.Errorf("%w: requests must be at least 1, got %d", ErrInvalidOptions, o.Requests)
	}
	if o.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidOptions, o.Concurrency)
	}
	if o.Rate < 0 {
		return fmt.Errorf("%w: rate must not be negative, got %g", ErrInvalidOptions, o.Rate)
	}
	return nil
}

// Run dispatches intent opts.Requests times. Transport failures are counted
// in the summary; any other failure means every attempt would fail the same
// way, so the run stops and returns it.
func Run(ctx context.Context, d Dispatcher, intent http.Intent, opts Options) (*Summary, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if opts.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.Rate), 1)
	}

	metrics := NewMetrics()
	metrics.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i := 0; i < opts.Requests; i++ {
		if limiter != nil {
			if err := limiter.Wait(gctx); err != nil {
				break
			}
		}
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			start := time.Now()
			resp, err := d.Dispatch(gctx, intent)
			if err != nil && http.KindOf(err).Category() != http.CategoryTransport {
				return err
			}
			metrics.Record(resp, time.Since(start), err)
			return nil
		})
	}

	err := g.Wait()
	metrics.Stop()

	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return metrics.GetSummary(), ctx.Err()
	}
	return metrics.GetSummary(), nil
}
