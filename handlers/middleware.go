package handlers

import (
	"errors"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"

	"installcost/observability"
)

// MetricsMiddleware counts every request by method and final status code.
// Errors returned down the chain are reported with the status PocketBase
// will answer with.
func MetricsMiddleware(e *core.RequestEvent) error {
	start := time.Now()
	err := e.Next()

	status := e.Status()
	if err != nil {
		var apiErr *router.ApiError
		if errors.As(err, &apiErr) {
			status = apiErr.Status
		} else if status == 0 {
			status = 500
		}
	}

	observability.ObserveRequest(e.Request.Method, status, start)
	return err
}
