package logging

import "context"

type contextKey string

const (
	commandKey    contextKey = "command"
	collectionKey contextKey = "collection"
)

// WithCommand adds the running CLI command name to the context.
func WithCommand(ctx context.Context, command string) context.Context {
	return context.WithValue(ctx, commandKey, command)
}

// WithCollection adds the collection name to the context.
func WithCollection(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, collectionKey, name)
}

// GetCommand retrieves the command name from the context.
// Returns empty string if not present.
func GetCommand(ctx context.Context) string {
	if v, ok := ctx.Value(commandKey).(string); ok {
		return v
	}
	return ""
}

// GetCollection retrieves the collection name from the context.
// Returns empty string if not present.
func GetCollection(ctx context.Context) string {
	if v, ok := ctx.Value(collectionKey).(string); ok {
		return v
	}
	return ""
}
