package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads chat prompts from user-editable files, falling back to
// the built-in defaults. Files are created lazily on the first Load, not in
// the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts are written to disk on first use and served when a file
// is missing.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptChatSystem: `You are Adam, an assistant that answers questions about the user's local documents.

Documents are loaded into a session store and referred to by id (usually the file name, e.g. report.pdf). When the user writes @id, the text of that document is attached to their message.

Tools:
- find(filename, start?): locate the nearest project folder containing a marker file
- upload(directory, recursive?): load every supported file in a directory
- process(file): load a single file
- status(): count loaded documents, chunks and projects awaiting confirmation
- metadata(docId): file details for a loaded document
- search(query): case-insensitive text search; returns chunk indices per document
- chunks(docId, chunkIndex?): read a document's chunks
- types(): list supported file types

Search first, then read only the chunks you need. Cite document ids in answers. When a tool fails, read the error kind and hint and tell the user what to do.`,

	driven.PromptMentionContext: `<document id="%s">
%s
</document>`,

	driven.PromptSummarizeDocument: `Please analyse and summarise the following document.

DOCUMENT METADATA:
- Id: {{.Meta.ID}}
- Filename: {{.Meta.Filename}}
- Type: {{.Meta.MimeClass}} ({{.Meta.MIMEType}})
- Size: {{.Meta.SizeBytes}} bytes
- Modified: {{.Meta.ModifiedAt.Format "2006-01-02 15:04"}}
- Chunks: {{.Meta.ChunkCount}}

SUMMARY TYPE REQUESTED: {{.Style}}

DOCUMENT CONTENT:
{{.Content}}

Write a {{.Style}} summary covering the main topics, key points, the document's structure, important details or data, and any conclusions. Use markdown headings and bullet points.`,

	driven.PromptFormatDocument: `Please reformat the following document with improved structure and {{.Style}} formatting.

DOCUMENT: {{.Meta.ID}}
CURRENT CONTENT:
{{.Content}}

Add headings and subheadings, group the content into logical sections, and use lists and tables where they help. Keep all important information. Reply with the reformatted document only.`,

	driven.PromptFindAndLoadProject: `Find the project folder containing the marker file '{{.Marker}}' and load its documents.

1. Call find with filename '{{.Marker}}'.
2. Call set_working_directory with the folder it returns.
3. Call upload with that folder to load every supported file.
4. Report how many documents were loaded and list any failures.`,

	driven.PromptUploadDirectory: `Load every supported document from '{{.Directory}}'.

1. Call set_working_directory with '{{.Directory}}', then list_files to preview what is there.
2. Call upload with directory '{{.Directory}}'.
3. Report the loaded documents and any failures with their hints.`,

	driven.PromptProcessSingleFile: `Load the file '{{.File}}'.

Call process with file '{{.File}}', then report its type, size and chunk count. If it fails, show the error kind and hint.`,

	driven.PromptShowDocumentMetadata: `Show the metadata for document '{{.DocID}}'.

Call metadata with docId '{{.DocID}}' and present the filename, type, size, dates, encoding, chunk count and any extracted details (page count, dimensions, authors) as a short table.`,

	driven.PromptSearchAllDocuments: `Search all loaded documents for '{{.Query}}'.

Call search with query '{{.Query}}'. For each matching document, read the matching chunks with the chunks tool and quote the relevant passage. Finish with the number of matches per document.`,

	driven.PromptShowDocumentChunks: `Show the chunks of document '{{.DocID}}'.

Call chunks with docId '{{.DocID}}'. Number every chunk and show a short preview of each.`,

	driven.PromptShowSupportedTypes: `Show the file types Adam can load.

Call types and present each type with its extensions, what it extracts, and whether its external tool is installed.`,

	driven.PromptShowStatus: `Show the current state of the session.

Call status for document, chunk and pending project counts, read the docs://documents resource for the loaded ids (users can reference them as @id), and call types for capabilities. Present it as a short dashboard.`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.adam/prompts/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	if _, known := defaultPrompts[name]; !known {
		return "", fmt.Errorf("load prompt %q: %w", name, domain.ErrNotFound)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err != nil || prompt == "" {
		return defaultPrompts[name], nil
	}

	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Adam Prompts

Edit these files to change how the chat assistant behaves. Changes apply to
the next chat session.

- ` + "`chat_system.txt`" + ` - system prompt for the chat loop
- ` + "`mention_context.txt`" + ` - wraps the text of an @id mention; keep both ` + "`%s`" + `
  placeholders (document id, then document text)
- the remaining files are the prompts offered to MCP clients by
  ` + "`adam mcp serve`" + `; they use Go template fields such as ` + "`{{.DocID}}`" + `

Delete a file to restore its default.
`
	return os.WriteFile(path, []byte(content), 0600)
}
