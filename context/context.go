package context

import (
	"context"
)

const (
	ContextKeyCorrelationID ContextKey = "Correlation-Id"
	ContextKeyGateID        ContextKey = "Gate-Id"
	ContextKeyEventID       ContextKey = "Event-Id"
)

type ContextKey string

func NewContext(correlationID string) context.Context {
	return context.WithValue(context.Background(), ContextKeyCorrelationID, correlationID)
}

func SetContextWithValue(ctx context.Context, key ContextKey, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

// GetContextValue returns the string stored under key, or "" when absent.
func GetContextValue(ctx context.Context, key ContextKey) string {
	if ctx == nil {
		return ""
	}
	v := ctx.Value(key)
	if v != nil {
		if ret, ok := v.(string); ok {
			return ret
		}
	}
	return ""
}
