package mcp

import (
	"github.com/custodia-labs/adam/internal/core/ports/driven"
	"github.com/custodia-labs/adam/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Tools validates and runs tool calls.
	Tools driving.ToolDispatcher

	// Documents backs the docs:// resources, read_doc_contents and the
	// document prompts. Optional.
	Documents driving.DocumentService

	// Workspace backs the working-directory file tools. Optional.
	Workspace driving.WorkspaceService

	// Prompts supplies the prompt templates. Optional; without it no
	// prompts are offered.
	Prompts driven.PromptStore
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Tools == nil {
		return ErrMissingToolDispatcher
	}
	return nil
}
