package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/adam/internal/adapters/driving/chat"
	"github.com/custodia-labs/adam/internal/logger"
)

var (
	chatRecursive bool
	chatPlain     bool
)

var chatCmd = &cobra.Command{
	Use:   "chat [path...]",
	Short: "Start an interactive chat session",
	Long: `Loads the given files and directories, then starts an interactive
session. Plain text goes to the configured model, which may call Adam's
document tools. Lines starting with / run a tool directly; type /help for
the list. Reference a loaded document inline with @docId.

Requires an Anthropic API key for model replies (ANTHROPIC_API_KEY or
'adam settings llm'). Without one, only slash commands are available.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVarP(&chatRecursive, "recursive", "r", false, "descend into subdirectories")
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "disable colours")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}
	if svc.Documents == nil || svc.Tools == nil {
		return errors.New("chat services not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if len(args) > 0 {
		reports, err := ingestPaths(ctx, svc, args, chatRecursive)
		if err != nil {
			return err
		}
		for _, r := range reports {
			cmd.Printf("Loaded %d documents from %s (%d failed)\n", r.Succeeded(), r.Directory, r.Failed())
		}
	}

	styles := chat.PlainStyles()
	if !chatPlain && isTerminal(cmd) {
		styles = chat.DefaultStyles()
	}

	opts := []chat.Option{chat.WithStyles(styles)}
	if svc.MaxToolRounds > 0 {
		opts = append(opts, chat.WithMaxToolRounds(svc.MaxToolRounds))
	}

	session, err := chat.NewSession(chat.Ports{
		Tools:     svc.Tools,
		Documents: svc.Documents,
		Watcher:   svc.Watcher,
		Model:     svc.Model,
		Prompts:   svc.Prompts,
	}, cmd.OutOrStdout(), opts...)
	if err != nil {
		return err
	}

	if svc.Relay != nil {
		svc.Relay.Attach(session)
		defer svc.Relay.Detach()
	}

	stop := startWatcher(ctx, svc)
	defer stop()

	return session.Run(ctx, cmd.InOrStdin())
}

// startWatcher runs the folder watcher in the background when one is
// configured. The returned func stops it and waits for it to exit.
func startWatcher(ctx context.Context, svc *Services) func() {
	if svc.Watcher == nil {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := svc.Watcher.Start(ctx); err != nil {
			logger.Warn("watcher: %v", err)
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// isTerminal reports whether the command writes to an interactive terminal.
func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
