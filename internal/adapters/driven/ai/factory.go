// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"fmt"

	anthropicllm "github.com/custodia-labs/adam/internal/adapters/driven/llm/anthropic"
	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/ports/driven"
)

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	ChatModel   driven.ChatModel
	PromptStore driven.PromptStore // User-customisable prompt templates.
	Warnings    []string           // Non-fatal issues that caused fallback.
	FellBack    bool               // True if the chat fell back to commands only.
}

// Init creates the chat model and prompt store. Failures never abort
// startup: they are recorded as warnings and the chat runs commands only.
func Init(settings *domain.LLMSettings, prompts driven.PromptStore) *InitResult {
	result := &InitResult{PromptStore: prompts}

	model, err := CreateChatModel(settings)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, err.Error())
		result.FellBack = true
	case model == nil:
		result.Warnings = append(result.Warnings,
			"no Anthropic API key configured; set ANTHROPIC_API_KEY or run 'adam settings llm'")
		result.FellBack = true
	default:
		result.ChatModel = model
	}
	return result
}

// CreateChatModel creates the chat model described by settings.
// Returns nil if no API key is configured.
func CreateChatModel(settings *domain.LLMSettings) (driven.ChatModel, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	model, err := anthropicllm.NewChatModel(anthropicllm.Config{
		APIKey:            settings.APIKey,
		Model:             settings.Model,
		RequestsPerMinute: settings.RequestsPerMinute,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'adam settings llm' to fix", domain.ErrLLMUnavailable, err)
	}
	return model, nil
}
