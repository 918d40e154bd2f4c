// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// DocumentService owns ingestion and the query operations over loaded
// documents. FolderWatcher proposes project folders for ingestion.
// ToolRegistry and ToolDispatcher expose both to the chat loop and the
// MCP server as a fixed set of typed tools.
package services
