package driving

import (
	"context"

	"github.com/custodia-labs/adam/internal/core/domain"
)

// ToolDispatcher validates and executes tool calls.
type ToolDispatcher interface {
	// Specs returns every registered tool in presentation order.
	Specs() []domain.ToolSpec

	// Dispatch runs one call. It never panics and never returns an error:
	// every failure is an error ToolResult.
	Dispatch(ctx context.Context, call domain.ToolCall) domain.ToolResult
}
