package middleware

import (
	"net/http"
	"strings"

	"eventers-ticketing/auth"
	c "eventers-ticketing/context"
	"eventers-ticketing/logger"
	"eventers-ticketing/response"
)

// GateAuth admits only requests carrying a valid gate token and puts the gate and its event on
// the request context.
func GateAuth(gate *auth.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
			if token == "" {
				response.Unauthorized().Send(ctx, w)
				return
			}

			claims, err := gate.Verify(token)
			if err != nil {
				logger.Warnf(ctx, "gateAuth: %v", err)
				response.Unauthorized().Send(ctx, w)
				return
			}

			ctx = c.SetContextWithValue(ctx, c.ContextKeyGateID, claims.GateID)
			ctx = c.SetContextWithValue(ctx, c.ContextKeyEventID, claims.EventID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
