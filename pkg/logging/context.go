package logging

import (
	"context"

	"go.uber.org/zap"
)

type projectCtxKey struct{}
type operationCtxKey struct{}

// WithProject tags ctx with the project an operation works on
func WithProject(ctx context.Context, projectID string) context.Context {
	return context.WithValue(ctx, projectCtxKey{}, projectID)
}

// WithOperation tags ctx with the store operation name
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationCtxKey{}, op)
}

// ContextFields extracts logging fields carried by ctx
func ContextFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	fields := make([]zap.Field, 0, 2)
	if id, ok := ctx.Value(projectCtxKey{}).(string); ok && id != "" {
		fields = append(fields, zap.String("project", id))
	}
	if op, ok := ctx.Value(operationCtxKey{}).(string); ok && op != "" {
		fields = append(fields, zap.String("op", op))
	}
	return fields
}
