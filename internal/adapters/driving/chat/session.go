package chat

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/ports/driven"
	"github.com/custodia-labs/adam/internal/logger"
)

// maxLineBytes bounds one line of input.
const maxLineBytes = 1 << 20

// Session is one interactive conversation. Handle and Run must be called
// from a single goroutine; Announce may be called from any goroutine.
type Session struct {
	ports     Ports
	styles    *Styles
	maxRounds int
	maxTokens int

	outMu sync.Mutex
	out   io.Writer

	history []driven.ChatMessage
}

// Option configures a Session.
type Option func(*Session)

// WithStyles sets the output styles.
func WithStyles(styles *Styles) Option {
	return func(s *Session) {
		if styles != nil {
			s.styles = styles
		}
	}
}

// WithMaxToolRounds bounds model tool-use rounds per user message.
func WithMaxToolRounds(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxRounds = n
		}
	}
}

// WithMaxTokens sets the reply token budget passed to the model.
func WithMaxTokens(n int) Option {
	return func(s *Session) {
		s.maxTokens = n
	}
}

// NewSession creates a chat session writing to out.
func NewSession(ports Ports, out io.Writer, opts ...Option) (*Session, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		ports:     ports,
		styles:    DefaultStyles(),
		maxRounds: domain.DefaultMaxToolRounds,
		out:       out,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run prints the banner and handles input lines until /quit, end of input
// or cancellation.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	s.banner(ctx)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for {
		s.print(s.styles.Prompt.Render("adam> "))
		if !scanner.Scan() {
			break
		}
		if s.Handle(ctx, scanner.Text()) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	s.println("")
	return scanner.Err()
}

// Handle processes one line of input and reports whether the session
// should end.
func (s *Session) Handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return false
	case strings.HasPrefix(line, "/"):
		return s.command(ctx, line)
	default:
		s.ask(ctx, line)
		return false
	}
}

// Announce tells the user about a newly discovered project.
func (s *Session) Announce(c domain.ProjectCandidate) {
	s.println(s.styles.Success.Render(fmt.Sprintf(
		"\nFound project %s (%d supported files). Type /pending to review it.", c.Path, c.FileCount)))
}

func (s *Session) banner(ctx context.Context) {
	model := "no model configured, commands only"
	if s.ports.Model != nil {
		model = "model " + s.ports.Model.ModelName()
	}
	loaded := ""
	if stats, err := s.ports.Documents.Stats(ctx); err == nil {
		loaded = fmt.Sprintf(", %d documents loaded", stats.Documents)
	}

	s.println(s.styles.Title.Render("Adam") + s.styles.Muted.Render(" ("+model+loaded+")"))
	s.println(s.styles.Muted.Render("Type /help for commands, @id to mention a document, /quit to leave."))
}

// ask sends free text to the model. A failed exchange is dropped from the
// history so the conversation stays well formed.
func (s *Session) ask(ctx context.Context, line string) {
	if s.ports.Model == nil {
		s.warn("no chat model configured; set ANTHROPIC_API_KEY or use /help for commands")
		return
	}

	content, warnings := ExpandMentions(ctx, s.ports.Documents,
		s.prompt(driven.PromptMentionContext, defaultMentionTemplate), line)
	for _, w := range warnings {
		s.warn(w)
	}

	mark := len(s.history)
	s.history = append(s.history, driven.ChatMessage{Role: driven.RoleUser, Content: content})
	if err := s.converse(ctx); err != nil {
		s.history = s.history[:mark]
		logger.L().Debug("model exchange failed", zap.Error(err))
		s.println(s.styles.Error.Render("model error: " + err.Error()))
	}
}

// converse runs the model until it answers without tool calls or the
// round limit is reached. Tool calls run one at a time, in order.
func (s *Session) converse(ctx context.Context) error {
	system := s.prompt(driven.PromptChatSystem, "")
	tools := s.ports.Tools.Specs()

	for round := 0; round < s.maxRounds; round++ {
		resp, err := s.ports.Model.Complete(ctx, driven.ChatRequest{
			System:    system,
			Messages:  s.history,
			Tools:     tools,
			MaxTokens: s.maxTokens,
		})
		if err != nil {
			return err
		}
		if resp.Text == "" && len(resp.ToolCalls) == 0 {
			return errors.New("model returned an empty reply")
		}

		calls := withIDs(resp.ToolCalls)
		s.history = append(s.history, driven.ChatMessage{
			Role:      driven.RoleAssistant,
			Content:   resp.Text,
			ToolCalls: calls,
		})
		if resp.Text != "" {
			s.println(s.styles.Assistant.Render(resp.Text))
		}
		if len(calls) == 0 {
			return nil
		}

		results := make([]driven.ToolResultMessage, 0, len(calls))
		for _, call := range calls {
			s.println(s.styles.Muted.Render("-> " + describeCall(call)))
			result := s.ports.Tools.Dispatch(ctx, call)
			if result.IsError() {
				s.println(s.styles.Warning.Render("   " + describeError(result.Error)))
			}
			results = append(results, driven.ToolResultMessage{
				CallID:  call.ID,
				Content: result.Text(),
				IsError: result.IsError(),
			})
		}
		s.history = append(s.history, driven.ChatMessage{Role: driven.RoleUser, ToolResults: results})
	}

	s.history = append(s.history, driven.ChatMessage{
		Role:    driven.RoleAssistant,
		Content: fmt.Sprintf("Stopped after %d tool rounds without a final answer.", s.maxRounds),
	})
	s.warn(fmt.Sprintf("stopped after %d tool rounds without a final answer", s.maxRounds))
	return nil
}

// prompt loads a prompt template, falling back when the store is absent
// or fails.
func (s *Session) prompt(name, fallback string) string {
	if s.ports.Prompts == nil {
		return fallback
	}
	p, err := s.ports.Prompts.Load(name)
	if err != nil {
		logger.Warn("load prompt %s: %v", name, err)
		return fallback
	}
	return p
}

// withIDs gives every call a correlation id so results can be matched.
func withIDs(calls []domain.ToolCall) []domain.ToolCall {
	out := make([]domain.ToolCall, len(calls))
	for i, c := range calls {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		out[i] = c
	}
	return out
}

func describeCall(call domain.ToolCall) string {
	if len(call.Arguments) == 0 {
		return call.Name
	}
	args, err := json.Marshal(call.Arguments)
	if err != nil {
		return call.Name
	}
	return call.Name + " " + string(args)
}

func (s *Session) warn(msg string) {
	s.println(s.styles.Warning.Render(msg))
}

func (s *Session) println(line string) {
	s.print(line + "\n")
}

func (s *Session) print(text string) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	_, _ = io.WriteString(s.out, text)
}
