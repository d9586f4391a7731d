package core

import "context"

// Context keys for recipe options
type contextKey string

const skipHistoryKey contextKey = "skipHistory"

// WithSkipHistory marks the context so computed recipes are not recorded.
// Set by 'recipe --no-history' and by the calculate_recipe tool when record is false.
func WithSkipHistory(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipHistoryKey, true)
}

// shouldSkipHistory returns whether history recording is disabled for the context
func shouldSkipHistory(ctx context.Context) bool {
	val := ctx.Value(skipHistoryKey)
	if val == nil {
		return false
	}
	skip, ok := val.(bool)
	return ok && skip
}
