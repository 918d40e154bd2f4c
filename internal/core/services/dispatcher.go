package services

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/ports/driving"
	"github.com/custodia-labs/adam/internal/logger"
)

// Ensure ToolDispatcher implements the interface.
var _ driving.ToolDispatcher = (*ToolDispatcher)(nil)

// ToolDispatcher validates tool calls against the registry and runs them.
// It keeps no per-call state and is safe for concurrent use.
type ToolDispatcher struct {
	registry *ToolRegistry
}

// NewToolDispatcher creates a dispatcher over registry.
func NewToolDispatcher(registry *ToolRegistry) *ToolDispatcher {
	return &ToolDispatcher{registry: registry}
}

// Specs returns every registered tool.
func (d *ToolDispatcher) Specs() []domain.ToolSpec {
	return d.registry.Specs()
}

// Dispatch runs call and converts every failure, including handler panics,
// into an error result.
func (d *ToolDispatcher) Dispatch(ctx context.Context, call domain.ToolCall) (result domain.ToolResult) {
	if call.ID == "" {
		call.ID = uuid.NewString()
	}
	result = domain.ToolResult{CallID: call.ID, Name: call.Name}
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.L().Error("tool panicked",
				zap.String("tool", call.Name),
				zap.String("call_id", call.ID),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			result.Status = domain.ToolStatusError
			result.Payload = nil
			result.Error = &domain.ErrorDetail{
				Kind:    domain.ErrorKindInternal,
				Message: fmt.Sprintf("tool %s failed unexpectedly: %v", call.Name, r),
			}
		}
	}()

	tool, ok := d.registry.lookup(call.Name)
	if !ok {
		return failed(result, &domain.ValidationError{Tool: call.Name, Reason: "unknown tool"})
	}
	if err := checkArgs(tool.spec, call.Arguments); err != nil {
		return failed(result, err)
	}

	payload, err := tool.handle(ctx, call.Arguments)
	logger.L().Debug("tool call",
		zap.String("tool", call.Name),
		zap.String("call_id", call.ID),
		zap.Duration("took", time.Since(started)),
		zap.Error(err),
	)
	if err != nil {
		return failed(result, err)
	}

	result.Status = domain.ToolStatusOK
	result.Payload = payload
	return result
}

func failed(result domain.ToolResult, err error) domain.ToolResult {
	result.Status = domain.ToolStatusError
	result.Error = ErrorDetail(err)
	return result
}

// ErrorDetail maps an operation error onto the typed detail returned to
// the model. Every message names the resource involved.
func ErrorDetail(err error) *domain.ErrorDetail {
	var (
		validation *domain.ValidationError
		extraction *domain.ExtractionError
		missing    *domain.ResourceError
		failure    *domain.IngestionFailure
	)

	detail := &domain.ErrorDetail{Message: err.Error()}
	switch {
	case errors.As(err, &validation):
		detail.Kind = domain.ErrorKindValidation
		detail.Resource = validation.Field
	case errors.As(err, &extraction):
		detail.Kind = domain.ErrorKindExtraction
		detail.Resource = extraction.Path
		detail.Hint = extraction.Hint
		detail.Retryable = extraction.Kind == domain.ExtractionTimeout
	case errors.As(err, &missing):
		detail.Kind = domain.ErrorKindNotFound
		detail.Resource = missing.ID
	case errors.As(err, &failure):
		detail.Kind = domain.ErrorKindIngestionFailure
		detail.Resource = failure.Path
		detail.Retryable = failure.Stage == domain.StageRead
	case errors.Is(err, domain.ErrInvalidInput):
		detail.Kind = domain.ErrorKindValidation
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		detail.Kind = domain.ErrorKindInternal
		detail.Retryable = true
	default:
		detail.Kind = domain.ErrorKindInternal
	}
	return detail
}
