package middleware

import (
	"net/http"

	c "eventers-ticketing/context"
	"eventers-ticketing/logger"

	"github.com/google/uuid"
)

const correlationHeader = "Correlation-Id"

func SetCorrelationIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get(correlationHeader)
		if len(correlationID) == 0 {
			correlationID = uuid.New().String()
			r.Header.Set(correlationHeader, correlationID)
			logger.Debugf(c.NewContext(correlationID), "No correlation id provided. Generated a new one")
		}
		ctx := c.SetContextWithValue(r.Context(), c.ContextKeyCorrelationID, correlationID)
		w.Header().Set(correlationHeader, correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
