package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/adam/internal/core/domain"
)

// FindInput is the input schema for the find tool.
type FindInput struct {
	Filename string `json:"filename" jsonschema:"marker file name to look for, e.g. go.mod"`
	Start    string `json:"start,omitempty" jsonschema:"directory to start from; defaults to the working directory"`
}

// UploadInput is the input schema for the upload tool.
type UploadInput struct {
	Directory string `json:"directory" jsonschema:"directory to ingest"`
	Recursive bool   `json:"recursive,omitempty" jsonschema:"descend into subdirectories"`
}

// ProcessInput is the input schema for the process tool.
type ProcessInput struct {
	File string `json:"file" jsonschema:"file to ingest"`
}

// MetadataInput is the input schema for the metadata tool.
type MetadataInput struct {
	DocID string `json:"docId" jsonschema:"document id"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"text to look for, case-insensitive"`
}

// ChunksInput is the input schema for the chunks tool.
type ChunksInput struct {
	DocID      string `json:"docId" jsonschema:"document id"`
	ChunkIndex *int   `json:"chunkIndex,omitempty" jsonschema:"0-based chunk index; omit for all chunks"`
}

// NoInput is the input schema for tools without arguments.
type NoInput struct{}

// registerTools registers every dispatcher tool with the MCP server.
func (s *Server) registerTools() {
	for _, spec := range s.ports.Tools.Specs() {
		switch spec.Name {
		case domain.ToolFind:
			addTool[FindInput](s, spec)
		case domain.ToolUpload:
			addTool[UploadInput](s, spec)
		case domain.ToolProcess:
			addTool[ProcessInput](s, spec)
		case domain.ToolMetadata:
			addTool[MetadataInput](s, spec)
		case domain.ToolSearch:
			addTool[SearchInput](s, spec)
		case domain.ToolChunks:
			addTool[ChunksInput](s, spec)
		default:
			addTool[NoInput](s, spec)
		}
	}
}

func addTool[In any](s *Server, spec domain.ToolSpec) {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        string(spec.Name),
		Description: spec.Description,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input In) (*mcp.CallToolResult, any, error) {
		return s.callTool(ctx, spec.Name, input), nil, nil
	})
}

// callTool converts a typed MCP input into a ToolCall and dispatches it.
// Tool failures are reported in-band with IsError set.
func (s *Server) callTool(ctx context.Context, name domain.ToolName, input any) *mcp.CallToolResult {
	args, err := toArguments(input)
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		}
	}

	result := s.ports.Tools.Dispatch(ctx, domain.ToolCall{Name: string(name), Arguments: args})
	return &mcp.CallToolResult{
		IsError: result.IsError(),
		Content: []mcp.Content{&mcp.TextContent{Text: result.Text()}},
	}
}

// toArguments flattens a typed input into the JSON object form a ToolCall carries.
func toArguments(input any) (map[string]any, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encode arguments: %w", err)
	}
	args := map[string]any{}
	if err := json.Unmarshal(data, &args); err != nil {
		return nil, fmt.Errorf("decode arguments: %w", err)
	}
	return args, nil
}
