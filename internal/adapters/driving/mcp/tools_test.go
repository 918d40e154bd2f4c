package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/adam/internal/core/domain"
)

// connect starts server on an in-memory transport and returns a client session.
func connect(t *testing.T, server *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ss, err := server.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = cs.Close()
		_ = ss.Wait()
	})
	return cs
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestServer_ListTools(t *testing.T) {
	server, err := NewServer(&Ports{Tools: &mockDispatcher{}})
	require.NoError(t, err)
	cs := connect(t, server)

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	for _, name := range domain.AllTools() {
		assert.Contains(t, names, string(name))
	}
}

func TestServer_CallTool_Search(t *testing.T) {
	dispatcher := &mockDispatcher{result: domain.ToolResult{
		Status:  domain.ToolStatusOK,
		Payload: map[string][]int{"report.txt": {0, 1}},
	}}
	server, err := NewServer(&Ports{Tools: dispatcher})
	require.NoError(t, err)
	cs := connect(t, server)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "search",
		Arguments: map[string]any{"query": "revenue"},
	})
	require.NoError(t, err)

	assert.False(t, res.IsError)
	var payload map[string][]int
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &payload))
	assert.Equal(t, map[string][]int{"report.txt": {0, 1}}, payload)

	call := dispatcher.lastCall()
	assert.Equal(t, "search", call.Name)
	assert.Equal(t, map[string]any{"query": "revenue"}, call.Arguments)
}

func TestServer_CallTool_ErrorResult(t *testing.T) {
	dispatcher := &mockDispatcher{result: domain.ToolResult{
		Status: domain.ToolStatusError,
		Error: &domain.ErrorDetail{
			Kind:     domain.ErrorKindNotFound,
			Message:  `document "missingdoc": not found`,
			Resource: "missingdoc",
		},
	}}
	server, err := NewServer(&Ports{Tools: dispatcher})
	require.NoError(t, err)
	cs := connect(t, server)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "metadata",
		Arguments: map[string]any{"docId": "missingdoc"},
	})
	require.NoError(t, err)

	assert.True(t, res.IsError)
	var detail domain.ErrorDetail
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &detail))
	assert.Equal(t, domain.ErrorKindNotFound, detail.Kind)
	assert.Equal(t, "missingdoc", detail.Resource)
}

func TestServer_callTool_Arguments(t *testing.T) {
	ctx := context.Background()
	index := 2

	tests := []struct {
		name  string
		tool  domain.ToolName
		input any
		want  map[string]any
	}{
		{"optional omitted", domain.ToolChunks, ChunksInput{DocID: "a.txt"}, map[string]any{"docId": "a.txt"}},
		{"optional set", domain.ToolChunks, ChunksInput{DocID: "a.txt", ChunkIndex: &index},
			map[string]any{"docId": "a.txt", "chunkIndex": float64(2)}},
		{"boolean flag", domain.ToolUpload, UploadInput{Directory: "~/docs", Recursive: true},
			map[string]any{"directory": "~/docs", "recursive": true}},
		{"no arguments", domain.ToolStatus, NoInput{}, map[string]any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dispatcher := &mockDispatcher{result: domain.ToolResult{Status: domain.ToolStatusOK}}
			server, err := NewServer(&Ports{Tools: dispatcher})
			require.NoError(t, err)

			res := server.callTool(ctx, tt.tool, tt.input)

			assert.False(t, res.IsError)
			assert.Equal(t, tt.want, dispatcher.lastCall().Arguments)
			assert.Equal(t, string(tt.tool), dispatcher.lastCall().Name)
		})
	}
}
