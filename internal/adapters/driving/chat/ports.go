// Package chat provides the interactive chat loop for Adam. It implements a
// driving adapter: slash commands and model tool calls both go through the
// tool dispatcher, and @id mentions are expanded through the document
// service before a message reaches the model.
package chat

import (
	"errors"

	"github.com/custodia-labs/adam/internal/core/ports/driven"
	"github.com/custodia-labs/adam/internal/core/ports/driving"
)

// ErrMissingToolDispatcher is returned when the tool dispatcher is not provided.
var ErrMissingToolDispatcher = errors.New("chat: tool dispatcher is required")

// ErrMissingDocumentService is returned when the document service is not provided.
var ErrMissingDocumentService = errors.New("chat: document service is required")

// Ports aggregates the services the chat loop uses.
type Ports struct {
	// Tools executes slash commands and model tool calls.
	Tools driving.ToolDispatcher

	// Documents resolves @id mentions.
	Documents driving.DocumentService

	// Watcher backs /pending, /accept and /reject. Optional.
	Watcher driving.FolderWatcher

	// Model answers free text. Optional; without it only commands work.
	Model driven.ChatModel

	// Prompts supplies the system prompt and mention template. Optional.
	Prompts driven.PromptStore
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Tools == nil {
		return ErrMissingToolDispatcher
	}
	if p.Documents == nil {
		return ErrMissingDocumentService
	}
	return nil
}
