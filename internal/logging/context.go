package logging

import (
	"context"
	"maps"
	"strings"
)

type contextKey struct{}

const fieldRunID = "run_id"

// ContextWithFields returns ctx carrying fields merged over any fields already
// attached. Providers read them back through ContextFields when a logger is
// bound with WithContext.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}
	merged := ContextFields(ctx)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	maps.Copy(merged, fields)
	return context.WithValue(ctx, contextKey{}, merged)
}

// ContextFields returns a copy of the fields attached to ctx, or nil.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, ok := ctx.Value(contextKey{}).(map[string]any)
	if !ok || len(fields) == 0 {
		return nil
	}
	return maps.Clone(fields)
}

// ContextWithRunID tags every entry logged under ctx with the extraction run.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return ctx
	}
	return ContextWithFields(ctx, map[string]any{fieldRunID: runID})
}

// RunID returns the run identifier attached by ContextWithRunID.
func RunID(ctx context.Context) string {
	id, _ := ContextFields(ctx)[fieldRunID].(string)
	return id
}
