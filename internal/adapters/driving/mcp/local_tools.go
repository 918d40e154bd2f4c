package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/services"
)

// Tools served by the MCP adapter itself rather than the dispatcher. They
// are read-only helpers for MCP clients and are not offered to the chat model.
const (
	toolReadDocContents     = "read_doc_contents"
	toolSetWorkingDirectory = "set_working_directory"
	toolListFiles           = "list_files"
	toolGetFileInfo         = "get_file_info"
	toolSearchInFiles       = "search_in_files"
)

// ReadDocInput is the input schema for read_doc_contents.
type ReadDocInput struct {
	DocID string `json:"docId" jsonschema:"document id"`
}

// SetDirInput is the input schema for set_working_directory.
type SetDirInput struct {
	Directory string `json:"directory" jsonschema:"directory that relative paths resolve against"`
}

// ListFilesInput is the input schema for list_files.
type ListFilesInput struct {
	Pattern string `json:"pattern,omitempty" jsonschema:"glob matched against file names, e.g. *.md; defaults to *"`
}

// FileInfoInput is the input schema for get_file_info.
type FileInfoInput struct {
	File string `json:"file" jsonschema:"path relative to the working directory"`
}

// SearchFilesInput is the input schema for search_in_files.
type SearchFilesInput struct {
	Pattern       string `json:"pattern" jsonschema:"regular expression to look for"`
	FilePattern   string `json:"filePattern,omitempty" jsonschema:"glob selecting the files to search; defaults to *"`
	CaseSensitive bool   `json:"caseSensitive,omitempty" jsonschema:"match case exactly"`
}

// registerLocalTools registers the document reader and the workspace tools
// for whichever ports are present.
func (s *Server) registerLocalTools() {
	if docs := s.ports.Documents; docs != nil {
		addLocalTool(s, toolReadDocContents, "Return the full extracted text of a loaded document.",
			func(ctx context.Context, in ReadDocInput) (any, error) {
				return docs.ResolveMention(ctx, in.DocID)
			})
	}

	ws := s.ports.Workspace
	if ws == nil {
		return
	}
	addLocalTool(s, toolSetWorkingDirectory,
		"Set the directory that relative paths in find, upload, process and the file tools resolve against.",
		func(_ context.Context, in SetDirInput) (any, error) {
			dir, err := ws.SetDir(in.Directory)
			if err != nil {
				return nil, err
			}
			return map[string]string{"directory": dir}, nil
		})
	addLocalTool(s, toolListFiles, "List files under the working directory whose names match a glob.",
		func(ctx context.Context, in ListFilesInput) (any, error) {
			return ws.ListFiles(ctx, in.Pattern)
		})
	addLocalTool(s, toolGetFileInfo, "Describe a file or directory: size, modification time and type.",
		func(_ context.Context, in FileInfoInput) (any, error) {
			return ws.FileInfo(in.File)
		})
	addLocalTool(s, toolSearchInFiles,
		"Search text files under the working directory for a regular expression; returns match lines per file.",
		func(ctx context.Context, in SearchFilesInput) (any, error) {
			return ws.SearchFiles(ctx, in.Pattern, in.FilePattern, in.CaseSensitive)
		})
}

func addLocalTool[In any](s *Server, name, description string, run func(context.Context, In) (any, error)) {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        name,
		Description: description,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input In) (*mcp.CallToolResult, any, error) {
		payload, err := run(ctx, input)
		return localResult(name, payload, err), nil, nil
	})
}

// localResult renders a local tool outcome the same way dispatcher results
// are rendered. Plain text payloads are returned unquoted.
func localResult(name string, payload any, err error) *mcp.CallToolResult {
	result := domain.ToolResult{Name: name, Status: domain.ToolStatusOK, Payload: payload}
	if err != nil {
		result = domain.ToolResult{Name: name, Status: domain.ToolStatusError, Error: services.ErrorDetail(err)}
	}

	text, ok := payload.(string)
	if !ok || result.IsError() {
		text = result.Text()
	}
	return &mcp.CallToolResult{
		IsError: result.IsError(),
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
