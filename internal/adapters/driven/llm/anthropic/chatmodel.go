// Package anthropic provides a chat model adapter using the Anthropic API.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/ports/driven"
	"github.com/custodia-labs/adam/internal/logger"
)

// Ensure ChatModel implements the interface.
var _ driven.ChatModel = (*ChatModel)(nil)

// Default configuration values.
const (
	DefaultModel     = domain.DefaultLLMModel
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 4096
)

// Config holds configuration for the Anthropic chat model.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL overrides the API endpoint. Empty uses the SDK default.
	BaseURL string

	// Model is the model name (default: DefaultModel).
	Model string

	// Timeout bounds a single request (default: 120s).
	Timeout time.Duration

	// MaxTokens is used when a request does not set its own.
	MaxTokens int

	// RequestsPerMinute throttles requests. Zero disables throttling.
	RequestsPerMinute int

	// MaxRetries overrides the SDK's retry count when non-nil.
	MaxRetries *int
}

// ChatModel sends conversations with tool definitions to Claude.
type ChatModel struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	limiter   *rate.Limiter
}

// NewChatModel creates a new Anthropic chat model.
func NewChatModel(cfg Config) (*ChatModel, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.MaxRetries != nil {
		opts = append(opts, option.WithMaxRetries(*cfg.MaxRetries))
	}

	m := &ChatModel{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
	}
	if cfg.RequestsPerMinute > 0 {
		m.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return m, nil
}

// ModelName returns the name of the model being used.
func (m *ChatModel) ModelName() string {
	return m.model
}

// Complete sends the conversation and returns the model's next turn.
func (m *ChatModel) Complete(ctx context.Context, req driven.ChatRequest) (*driven.ChatResponse, error) {
	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("anthropic: throttle: %w", err)
		}
	}

	messages, err := toMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	maxTokens := m.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = int64(req.MaxTokens)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(m.model),
		MaxTokens: maxTokens,
		Messages:  messages,
		Tools:     toTools(req.Tools),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	started := time.Now()
	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	logger.L().Debug("model turn",
		zap.String("model", m.model),
		zap.Int("messages", len(messages)),
		zap.String("stop_reason", string(resp.StopReason)),
		zap.Duration("took", time.Since(started)),
	)

	return fromMessage(resp)
}

// toMessages converts the conversation into API message params.
func toMessages(in []driven.ChatMessage) ([]anthropic.MessageParam, error) {
	if len(in) == 0 {
		return nil, errors.New("anthropic: conversation is empty")
	}

	out := make([]anthropic.MessageParam, 0, len(in))
	for i, msg := range in {
		var blocks []anthropic.ContentBlockParamUnion
		for _, r := range msg.ToolResults {
			blocks = append(blocks, anthropic.NewToolResultBlock(r.CallID, r.Content, r.IsError))
		}
		if msg.Content != "" {
			blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
		}
		for _, call := range msg.ToolCalls {
			args := call.Arguments
			if args == nil {
				args = map[string]any{}
			}
			blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, args, call.Name))
		}
		if len(blocks) == 0 {
			return nil, fmt.Errorf("anthropic: message %d has no content", i)
		}

		switch msg.Role {
		case driven.RoleUser:
			out = append(out, anthropic.NewUserMessage(blocks...))
		case driven.RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		default:
			return nil, fmt.Errorf("anthropic: message %d has unknown role %q", i, msg.Role)
		}
	}
	return out, nil
}

// toTools converts tool specs into JSON-schema tool definitions.
func toTools(specs []domain.ToolSpec) []anthropic.ToolUnionParam {
	if len(specs) == 0 {
		return nil
	}
	tools := make([]anthropic.ToolUnionParam, 0, len(specs))
	for _, spec := range specs {
		properties := make(map[string]any, len(spec.Args))
		var required []string
		for _, arg := range spec.Args {
			properties[arg.Name] = map[string]any{
				"type":        string(arg.Type),
				"description": arg.Description,
			}
			if arg.Required {
				required = append(required, arg.Name)
			}
		}
		tools = append(tools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        string(spec.Name),
				Description: anthropic.String(spec.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: properties,
					Required:   required,
				},
			},
		})
	}
	return tools
}

// fromMessage extracts text and tool calls from a response.
func fromMessage(msg *anthropic.Message) (*driven.ChatResponse, error) {
	resp := &driven.ChatResponse{StopReason: string(msg.StopReason)}

	var text strings.Builder
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			var args map[string]any
			if len(block.Input) > 0 {
				if err := json.Unmarshal(block.Input, &args); err != nil {
					return nil, fmt.Errorf("anthropic: decode input of tool %s: %w", block.Name, err)
				}
			}
			resp.ToolCalls = append(resp.ToolCalls, domain.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: args,
			})
		}
	}
	resp.Text = text.String()
	return resp, nil
}
