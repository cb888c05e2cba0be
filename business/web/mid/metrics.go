package mid

import (
	"context"
	"net/http"
	"time"

	"github.com/ardanlabs/ledger/business/sys/metrics"
	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/validate"
	"github.com/ardanlabs/ledger/foundation/web"
)

// Metrics updates program counters.
func Metrics() web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			start := time.Now()

			// Call the next handler.
			err := handler(ctx, w, r)

			metrics.AddRequest(r.Method, statusCode(ctx, err), time.Since(start).Seconds())
			if err != nil {
				metrics.AddError()
			}

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return m
}

// statusCode returns the status the client will see. Errors are not yet
// written to the response at this point in the chain.
func statusCode(ctx context.Context, err error) int {
	switch {
	case err == nil:
		if v, verr := web.GetValues(ctx); verr == nil && v.StatusCode != 0 {
			return v.StatusCode
		}
		return http.StatusOK

	case validate.IsFieldErrors(err):
		return http.StatusBadRequest

	case errs.GetTrusted(err) != nil:
		return errs.GetTrusted(err).Status
	}

	return http.StatusInternalServerError
}
