package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/ports/driven"
)

// promptData is the value every prompt template is executed with.
type promptData struct {
	Meta      domain.DocumentMetadata
	Content   string
	Style     string
	DocID     string
	Marker    string
	Directory string
	File      string
	Query     string
}

// promptDef describes one prompt and how its arguments fill promptData.
type promptDef struct {
	name        string
	description string
	args        []*mcp.PromptArgument
	needsDocs   bool
	fill        func(args map[string]string) promptData
}

func arg(name, description string, required bool) *mcp.PromptArgument {
	return &mcp.PromptArgument{Name: name, Description: description, Required: required}
}

var promptDefs = []promptDef{
	{
		name:        driven.PromptSummarizeDocument,
		description: "Summarise a loaded document with its metadata",
		args: []*mcp.PromptArgument{
			arg("docId", "id of the document to summarise", true),
			arg("summaryType", "brief, comprehensive, detailed or outline; defaults to comprehensive", false),
		},
		needsDocs: true,
		fill: func(a map[string]string) promptData {
			return promptData{DocID: a["docId"], Style: orDefault(a["summaryType"], "comprehensive")}
		},
	},
	{
		name:        driven.PromptFormatDocument,
		description: "Reformat a loaded document with clearer structure",
		args: []*mcp.PromptArgument{
			arg("docId", "id of the document to reformat", true),
			arg("formatStyle", "markdown, structured or outline; defaults to markdown", false),
		},
		needsDocs: true,
		fill: func(a map[string]string) promptData {
			return promptData{DocID: a["docId"], Style: orDefault(a["formatStyle"], "markdown")}
		},
	},
	{
		name:        driven.PromptFindAndLoadProject,
		description: "Find a project by marker file and load its documents",
		args:        []*mcp.PromptArgument{arg("marker", "marker file name, e.g. go.mod", true)},
		fill:        func(a map[string]string) promptData { return promptData{Marker: a["marker"]} },
	},
	{
		name:        driven.PromptUploadDirectory,
		description: "Load every supported document from a directory",
		args:        []*mcp.PromptArgument{arg("directory", "directory to load", true)},
		fill:        func(a map[string]string) promptData { return promptData{Directory: a["directory"]} },
	},
	{
		name:        driven.PromptProcessSingleFile,
		description: "Load one file and report what was extracted",
		args:        []*mcp.PromptArgument{arg("file", "file to load", true)},
		fill:        func(a map[string]string) promptData { return promptData{File: a["file"]} },
	},
	{
		name:        driven.PromptShowDocumentMetadata,
		description: "Show the metadata of a loaded document",
		args:        []*mcp.PromptArgument{arg("docId", "document id", true)},
		fill:        func(a map[string]string) promptData { return promptData{DocID: a["docId"]} },
	},
	{
		name:        driven.PromptSearchAllDocuments,
		description: "Search every loaded document and quote the matches",
		args:        []*mcp.PromptArgument{arg("query", "text to look for", true)},
		fill:        func(a map[string]string) promptData { return promptData{Query: a["query"]} },
	},
	{
		name:        driven.PromptShowDocumentChunks,
		description: "Show the chunks of a loaded document",
		args:        []*mcp.PromptArgument{arg("docId", "document id", true)},
		fill:        func(a map[string]string) promptData { return promptData{DocID: a["docId"]} },
	},
	{
		name:        driven.PromptShowSupportedTypes,
		description: "Show the supported file types",
		fill:        func(map[string]string) promptData { return promptData{} },
	},
	{
		name:        driven.PromptShowStatus,
		description: "Show loaded documents, pending projects and capabilities",
		fill:        func(map[string]string) promptData { return promptData{} },
	},
}

// registerPrompts offers every prompt whose ports are available.
func (s *Server) registerPrompts() {
	if s.ports.Prompts == nil {
		return
	}
	for _, def := range promptDefs {
		if def.needsDocs && s.ports.Documents == nil {
			continue
		}
		s.server.AddPrompt(&mcp.Prompt{
			Name:        def.name,
			Description: def.description,
			Arguments:   def.args,
		}, s.promptHandler(def))
	}
}

func (s *Server) promptHandler(def promptDef) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		args := req.Params.Arguments
		for _, a := range def.args {
			if a.Required && strings.TrimSpace(args[a.Name]) == "" {
				return nil, fmt.Errorf("prompt %s: argument %s is required", def.name, a.Name)
			}
		}

		data := def.fill(args)
		if def.needsDocs {
			missing, err := s.loadDocument(ctx, &data)
			if err != nil {
				return nil, err
			}
			if missing != "" {
				return userPrompt(def.description, missing), nil
			}
		}

		text, err := s.renderPrompt(def.name, data)
		if err != nil {
			return nil, err
		}
		return userPrompt(def.description, text), nil
	}
}

// loadDocument fills data with the document named by data.DocID. When the
// document is not loaded it returns a message listing the ids that are.
func (s *Server) loadDocument(ctx context.Context, data *promptData) (string, error) {
	meta, err := s.ports.Documents.GetMetadata(ctx, data.DocID)
	if errors.Is(err, domain.ErrNotFound) {
		docs, listErr := s.ports.Documents.List(ctx)
		if listErr != nil {
			return "", fmt.Errorf("listing documents: %w", listErr)
		}
		ids := make([]string, len(docs))
		for i := range docs {
			ids[i] = docs[i].ID
		}
		return fmt.Sprintf("Document %q is not loaded. Loaded documents: %s", data.DocID, orDefault(strings.Join(ids, ", "), "none")), nil
	}
	if err != nil {
		return "", fmt.Errorf("getting document %s: %w", data.DocID, err)
	}

	content, err := s.ports.Documents.ResolveMention(ctx, data.DocID)
	if err != nil {
		return "", fmt.Errorf("getting document %s: %w", data.DocID, err)
	}
	data.Meta = *meta
	data.Content = content
	return "", nil
}

// renderPrompt executes the named template from the prompt store.
func (s *Server) renderPrompt(name string, data promptData) (string, error) {
	text, err := s.ports.Prompts.Load(name)
	if err != nil {
		return "", fmt.Errorf("loading prompt %s: %w", name, err)
	}
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parsing prompt %s: %w", name, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering prompt %s: %w", name, err)
	}
	return b.String(), nil
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{{
			Role:    "user",
			Content: &mcp.TextContent{Text: text},
		}},
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
