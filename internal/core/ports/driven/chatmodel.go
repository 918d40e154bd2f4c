package driven

import (
	"context"

	"github.com/custodia-labs/adam/internal/core/domain"
)

// ChatModel is a language model that can request tool calls.
// This is an optional service - when nil, the chat loop only runs slash commands.
type ChatModel interface {
	// Complete sends the conversation and returns the model's next turn.
	Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// ModelName returns the name of the model being used.
	ModelName() string
}

// ChatRole is the author of a chat message.
type ChatRole string

// Chat roles.
const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn in a conversation.
type ChatMessage struct {
	Role ChatRole

	// Content is the message text.
	Content string

	// ToolCalls are the calls requested in an assistant turn.
	ToolCalls []domain.ToolCall

	// ToolResults answer the previous assistant turn's ToolCalls.
	ToolResults []ToolResultMessage
}

// ToolResultMessage carries one tool result back to the model.
type ToolResultMessage struct {
	CallID  string
	Content string
	IsError bool
}

// ChatRequest is the input to ChatModel.Complete.
type ChatRequest struct {
	System    string
	Messages  []ChatMessage
	Tools     []domain.ToolSpec
	MaxTokens int
}

// ChatResponse is the model's reply.
type ChatResponse struct {
	Text       string
	ToolCalls  []domain.ToolCall
	StopReason string
}
