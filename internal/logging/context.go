package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ctxKey string

// CallIDKey is the context key for call IDs.
const CallIDKey ctxKey = "call_id"

// WithCallID tags ctx and its zerolog logger with a call ID, generating a
// UUID when id is empty.
func WithCallID(ctx context.Context, logger zerolog.Logger, id string) context.Context {
	if id == "" {
		id = uuid.New().String()
	}

	ctx = context.WithValue(ctx, CallIDKey, id)
	tagged := logger.With().Str("call_id", id).Logger()
	return tagged.WithContext(ctx)
}

// CallID returns the call ID stored by WithCallID, or "".
func CallID(ctx context.Context) string {
	if id, ok := ctx.Value(CallIDKey).(string); ok {
		return id
	}
	return ""
}
