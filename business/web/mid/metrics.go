package mid

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vedhavyas/subspace/foundation/web"
)

// Prometheus metrics
var (
	requestsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subspace_node_requests_total",
		Help: "Total number of handled requests by method",
	}, []string{"method"})
	errorsCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "subspace_node_request_errors_total",
		Help: "Total number of requests that returned an error",
	})
	panicsCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "subspace_node_request_panics_total",
		Help: "Total number of requests that panicked",
	})
)

// Metrics updates program counters.
func Metrics() web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			// Call the next handler.
			err := handler(ctx, w, r)

			requestsCounter.WithLabelValues(r.Method).Inc()
			if err != nil {
				errorsCounter.Inc()
			}

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return m
}
