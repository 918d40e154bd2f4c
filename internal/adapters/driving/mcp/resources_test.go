package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/adam/internal/core/domain"
)

func TestExtractDocumentID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{"valid document URI", "docs://documents/report.txt", "report.txt"},
		{"invalid prefix", "file://documents/report.txt", ""},
		{"listing URI", "docs://documents", ""},
		{"empty URI", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractDocumentID(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func newResourceServer(t *testing.T, docs *mockDocumentService) *Server {
	t.Helper()
	server, err := NewServer(&Ports{Tools: &mockDispatcher{}, Documents: docs})
	require.NoError(t, err)
	return server
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("lists documents", func(t *testing.T) {
		server := newResourceServer(t, &mockDocumentService{documents: []domain.Document{
			{ID: "notes.md", Filename: "notes.md", MimeClass: domain.MimeClassText, Chunks: make([]domain.Chunk, 2)},
			{ID: "scan.png", Filename: "scan.png", MimeClass: domain.MimeClassImage},
		}})

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("docs://documents"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)

		var infos []documentInfo
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &infos))
		require.Len(t, infos, 2)
		assert.Equal(t, "notes.md", infos[0].ID)
		assert.Equal(t, 2, infos[0].Chunks)
		assert.Equal(t, "docs://documents/scan.png", infos[1].URI)
	})

	t.Run("empty store", func(t *testing.T) {
		server := newResourceServer(t, &mockDocumentService{})

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("docs://documents"))
		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("store error", func(t *testing.T) {
		server := newResourceServer(t, &mockDocumentService{err: errors.New("disk on fire")})

		_, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("docs://documents"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk on fire")
	})
}

func TestServer_handleDocumentContentResource(t *testing.T) {
	ctx := context.Background()
	server := newResourceServer(t, &mockDocumentService{content: map[string]string{
		"report.txt": "Quarterly revenue grew.",
	}})

	t.Run("returns content", func(t *testing.T) {
		result, err := server.handleDocumentContentResource(ctx, makeReadResourceRequest("docs://documents/report.txt"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "text/plain", result.Contents[0].MIMEType)
		assert.Equal(t, "Quarterly revenue grew.", result.Contents[0].Text)
	})

	t.Run("unknown document", func(t *testing.T) {
		_, err := server.handleDocumentContentResource(ctx, makeReadResourceRequest("docs://documents/missingdoc"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("malformed URI", func(t *testing.T) {
		_, err := server.handleDocumentContentResource(ctx, makeReadResourceRequest("docs://other/x"))
		require.Error(t, err)
	})
}

func TestServer_ReadResource_OverTransport(t *testing.T) {
	server := newResourceServer(t, &mockDocumentService{content: map[string]string{"a.txt": "alpha"}})
	cs := connect(t, server)

	res, err := cs.ReadResource(context.Background(), &mcp.ReadResourceParams{URI: "docs://documents/a.txt"})

	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, "alpha", res.Contents[0].Text)
}

func TestServer_NoResourcesWithoutDocuments(t *testing.T) {
	server, err := NewServer(&Ports{Tools: &mockDispatcher{}})
	require.NoError(t, err)
	cs := connect(t, server)

	_, err = cs.ReadResource(context.Background(), &mcp.ReadResourceParams{URI: "docs://documents"})
	assert.Error(t, err)
}
