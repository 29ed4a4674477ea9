// internal/pkg/httpclient/client.go
package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/berkelium/storefront/internal/pkg/metrics"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrUnavailable is returned while the breaker for a dependency is open
var ErrUnavailable = errors.New("remote dependency unavailable")

// Doer is the subset of *http.Client used by the remote API clients
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a breaker-guarded client
type Options struct {
	Name             string
	Timeout          time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
	Logger           *logrus.Logger
	Metrics          *metrics.Metrics
}

// Client is an instrumented HTTP client that fails fast once a dependency
// keeps failing at the transport level. It never retries.
type Client struct {
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

// New creates a Client
func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 5
	}
	if opts.OpenTimeout == 0 {
		opts.OpenTimeout = 30 * time.Second
	}

	threshold := opts.FailureThreshold
	settings := gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if opts.Logger != nil {
				opts.Logger.WithFields(logrus.Fields{
					"dependency": name,
					"from":       from.String(),
					"to":         to.String(),
				}).Warn("circuit breaker state changed")
			}
			opts.Metrics.BreakerStateChange(name, to.String())
		},
	}

	return &Client{
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[*http.Response](settings),
	}
}

// Do sends the request through the breaker
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		return c.http.Do(req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s: %w", c.breaker.Name(), ErrUnavailable)
	}
	return resp, err
}
