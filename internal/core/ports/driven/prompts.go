package driven

// PromptStore provides access to chat prompt templates.
type PromptStore interface {
	// Load returns the prompt template for the given name. Unknown names
	// are an error.
	Load(name string) (string, error)

	// Reload clears any cached prompts so edits on disk are picked up.
	Reload()
}

// Well-known prompt names.
const (
	// PromptChatSystem is the system prompt for the chat loop.
	// It has no format placeholders.
	PromptChatSystem = "chat_system"

	// PromptMentionContext wraps the text of an @id mention.
	// It expects %s (document id) and %s (document text) placeholders.
	PromptMentionContext = "mention_context"

	// MCP prompt templates use text/template syntax with the fields
	// documented next to each name.

	// PromptSummarizeDocument: .Meta (DocumentMetadata), .Content, .Style.
	PromptSummarizeDocument = "summarize_document"

	// PromptFormatDocument: .Meta, .Content, .Style.
	PromptFormatDocument = "format_document"

	// PromptFindAndLoadProject: .Marker.
	PromptFindAndLoadProject = "find_and_load_project"

	// PromptUploadDirectory: .Directory.
	PromptUploadDirectory = "upload_directory"

	// PromptProcessSingleFile: .File.
	PromptProcessSingleFile = "process_single_file"

	// PromptShowDocumentMetadata: .DocID.
	PromptShowDocumentMetadata = "show_document_metadata"

	// PromptSearchAllDocuments: .Query.
	PromptSearchAllDocuments = "search_all_documents"

	// PromptShowDocumentChunks: .DocID.
	PromptShowDocumentChunks = "show_document_chunks"

	// PromptShowSupportedTypes has no fields.
	PromptShowSupportedTypes = "show_supported_types"

	// PromptShowStatus has no fields.
	PromptShowStatus = "show_status"
)
