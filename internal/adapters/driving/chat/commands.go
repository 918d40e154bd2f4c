package chat

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/adam/internal/core/domain"
)

// command is one slash command. Tool commands set tool and parse; local
// commands set run.
type command struct {
	name    string
	usage   string
	summary string

	tool  domain.ToolName
	parse func(rest string) (map[string]any, error)

	// run handles a local command and reports whether the session should end.
	run func(s *Session, ctx context.Context, rest string) bool
}

var errUsage = errors.New("wrong number of arguments")

// commands lists every slash command in help order.
func commands() []command {
	return []command{
		{name: "find", usage: "/find <marker> [start]", summary: "find the nearest project folder containing a marker file",
			tool: domain.ToolFind, parse: parseFind},
		{name: "upload", usage: "/upload <directory> [-r]", summary: "load every supported file in a directory",
			tool: domain.ToolUpload, parse: parseUpload},
		{name: "process", usage: "/process <file>", summary: "load a single file",
			tool: domain.ToolProcess, parse: restAs("file")},
		{name: "status", usage: "/status", summary: "count loaded documents and chunks",
			tool: domain.ToolStatus, parse: noArgs},
		{name: "metadata", usage: "/metadata <docId>", summary: "show a document's metadata",
			tool: domain.ToolMetadata, parse: restAs("docId")},
		{name: "search", usage: "/search <query>", summary: "case-insensitive search over all chunks",
			tool: domain.ToolSearch, parse: restAs("query")},
		{name: "chunks", usage: "/chunks <docId> [index]", summary: "show a document's chunks",
			tool: domain.ToolChunks, parse: parseChunks},
		{name: "types", usage: "/types", summary: "list supported file types",
			tool: domain.ToolTypes, parse: noArgs},
		{name: "pending", usage: "/pending", summary: "list discovered projects awaiting confirmation",
			run: (*Session).pending},
		{name: "accept", usage: "/accept <n|path>", summary: "load a discovered project",
			run: func(s *Session, ctx context.Context, rest string) bool { return s.resolve(ctx, rest, true) }},
		{name: "reject", usage: "/reject <n|path>", summary: "ignore a discovered project for this session",
			run: func(s *Session, ctx context.Context, rest string) bool { return s.resolve(ctx, rest, false) }},
		{name: "help", usage: "/help", summary: "show this help",
			run: (*Session).help},
		{name: "quit", usage: "/quit", summary: "leave the chat",
			run: func(*Session, context.Context, string) bool { return true }},
	}
}

// lookupCommand finds a command by name. /exit is accepted for /quit.
func lookupCommand(name string) (command, bool) {
	if name == "exit" {
		name = "quit"
	}
	for _, c := range commands() {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// splitCommand splits "/search quarterly revenue" into "search" and
// "quarterly revenue".
func splitCommand(line string) (string, string) {
	name, rest, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	return strings.ToLower(name), strings.TrimSpace(rest)
}

func noArgs(rest string) (map[string]any, error) {
	if rest != "" {
		return nil, errUsage
	}
	return map[string]any{}, nil
}

// restAs passes the whole remainder as one argument, so paths and queries
// may contain spaces.
func restAs(name string) func(string) (map[string]any, error) {
	return func(rest string) (map[string]any, error) {
		if rest == "" {
			return nil, errUsage
		}
		return map[string]any{name: rest}, nil
	}
}

func parseFind(rest string) (map[string]any, error) {
	fields := strings.Fields(rest)
	switch len(fields) {
	case 1:
		return map[string]any{"filename": fields[0]}, nil
	case 2:
		return map[string]any{"filename": fields[0], "start": fields[1]}, nil
	default:
		return nil, errUsage
	}
}

func parseUpload(rest string) (map[string]any, error) {
	args := map[string]any{}
	var dir []string
	for _, f := range strings.Fields(rest) {
		if f == "-r" || f == "--recursive" {
			args["recursive"] = true
			continue
		}
		dir = append(dir, f)
	}
	if len(dir) == 0 {
		return nil, errUsage
	}
	args["directory"] = strings.Join(dir, " ")
	return args, nil
}

func parseChunks(rest string) (map[string]any, error) {
	fields := strings.Fields(rest)
	switch len(fields) {
	case 1:
		return map[string]any{"docId": fields[0]}, nil
	case 2:
		index, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("chunk index %q is not a number", fields[1])
		}
		return map[string]any{"docId": fields[0], "chunkIndex": index}, nil
	default:
		return nil, errUsage
	}
}

// command runs a slash command line and reports whether the session should end.
func (s *Session) command(ctx context.Context, line string) bool {
	name, rest := splitCommand(line)
	c, ok := lookupCommand(name)
	if !ok {
		s.warn(fmt.Sprintf("unknown command /%s; type /help for the list", name))
		return false
	}

	if c.run != nil {
		return c.run(s, ctx, rest)
	}

	args, err := c.parse(rest)
	if err != nil {
		if errors.Is(err, errUsage) {
			s.warn("usage: " + c.usage)
		} else {
			s.warn(err.Error())
		}
		return false
	}

	result := s.ports.Tools.Dispatch(ctx, domain.ToolCall{Name: string(c.tool), Arguments: args})
	if result.IsError() {
		s.println(s.styles.Error.Render(describeError(result.Error)))
		return false
	}
	s.println(result.Text())
	return false
}

func (s *Session) help(_ context.Context, _ string) bool {
	s.println(s.styles.Title.Render("Commands"))
	for _, c := range commands() {
		s.println(fmt.Sprintf("  %-26s %s", c.usage, s.styles.Muted.Render(c.summary)))
	}
	s.println("")
	s.println("Mention a loaded document with @id to attach its text to your message.")
	return false
}

func (s *Session) pending(_ context.Context, _ string) bool {
	if s.ports.Watcher == nil {
		s.warn("project discovery is disabled")
		return false
	}

	candidates := s.ports.Watcher.Pending()
	if len(candidates) == 0 {
		s.println("No projects awaiting confirmation.")
		return false
	}
	for i, c := range candidates {
		s.println(fmt.Sprintf("%d. %s (%d supported files; markers: %s)",
			i+1, c.Path, c.FileCount, strings.Join(c.Markers, ", ")))
		if len(c.Preview) > 0 {
			s.println(s.styles.Muted.Render("   " + strings.Join(c.Preview, ", ")))
		}
	}
	s.println(s.styles.Muted.Render("/accept <n> loads a project, /reject <n> ignores it."))
	return false
}

func (s *Session) resolve(ctx context.Context, rest string, accept bool) bool {
	if s.ports.Watcher == nil {
		s.warn("project discovery is disabled")
		return false
	}
	if rest == "" {
		if accept {
			s.warn("usage: /accept <n|path>")
		} else {
			s.warn("usage: /reject <n|path>")
		}
		return false
	}

	path, err := s.candidatePath(rest)
	if err != nil {
		s.warn(err.Error())
		return false
	}

	report, err := s.ports.Watcher.Resolve(ctx, path, accept)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.warn(fmt.Sprintf("no pending project at %s", path))
	case err != nil:
		s.println(s.styles.Error.Render(fmt.Sprintf("resolve %s: %v", path, err)))
	case !accept:
		s.println(fmt.Sprintf("Ignoring %s for this session.", path))
	default:
		s.printReport(report)
	}
	return false
}

// candidatePath accepts a 1-based position in the pending list or a path.
func (s *Session) candidatePath(arg string) (string, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		pending := s.ports.Watcher.Pending()
		if n < 1 || n > len(pending) {
			return "", fmt.Errorf("no pending project %d; type /pending for the list", n)
		}
		return pending[n-1].Path, nil
	}
	return filepath.Abs(arg)
}

func (s *Session) printReport(report *domain.IngestionReport) {
	if report == nil {
		return
	}
	s.println(s.styles.Success.Render(fmt.Sprintf("Loaded %d documents from %s (%d failed).",
		report.Succeeded(), report.Directory, report.Failed())))
	for _, f := range report.View().Failures {
		line := "  " + f.Message
		if f.Hint != "" {
			line += " (" + f.Hint + ")"
		}
		s.println(s.styles.Warning.Render(line))
	}
}

// describeError renders a tool error for the terminal.
func describeError(d *domain.ErrorDetail) string {
	if d == nil {
		return "tool failed"
	}
	msg := fmt.Sprintf("%s: %s", d.Kind, d.Message)
	if d.Hint != "" {
		msg += "\nhint: " + d.Hint
	}
	return msg
}
