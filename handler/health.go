package handler

import (
	"context"
	"net/http"

	"eventers-ticketing/logger"
	"eventers-ticketing/response"
)

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

func Healthcheck(checks map[string]Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.Errorf(ctx, "healthcheck: %s: %+v", name, err)
				response.ServiceUnavailable().Send(ctx, w)
				return
			}
		}

		response.SuccessResponse{
			Data:       &response.Data{Status: "OK"},
			StatusCode: http.StatusOK,
		}.Send(w)
	}
}
