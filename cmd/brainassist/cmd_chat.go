package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/user/brainassist/internal/app"
	"github.com/user/brainassist/internal/attachment"
	"github.com/user/brainassist/internal/delivery"
	"github.com/user/brainassist/internal/modes"
	"github.com/user/brainassist/internal/render"
	"github.com/user/brainassist/internal/stream"
	"github.com/user/brainassist/internal/types"
)

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("mode", "", "starting chat mode")
	chatCmd.Flags().String("resume", "", "resume a saved conversation by id")
	chatCmd.Flags().StringArray("attach", nil, "file to attach to the first message (repeatable)")
	chatCmd.Flags().Bool("raw", false, "stream raw text instead of formatted replies")
}

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

type repl struct {
	shell   *app.Shell
	line    *liner.State
	out     io.Writer
	errOut  io.Writer
	raw     bool
	pending []types.Attachment
	draft   string
}

func newRepl(shell *app.Shell) *repl {
	return &repl{shell: shell, out: os.Stdout, errOut: os.Stderr}
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)
	ctx := cmd.Context()

	mode, _ := cmd.Flags().GetString("mode")
	shell, closeFn, err := buildShell(ctx, cfg, mode)
	if err != nil {
		return err
	}
	defer closeFn()

	r := newRepl(shell)
	r.raw, _ = cmd.Flags().GetBool("raw")

	if id, _ := cmd.Flags().GetString("resume"); id != "" {
		conv, err := shell.ResumeConversation(ctx, types.ConversationID(id))
		if err != nil {
			return fmt.Errorf("resume conversation: %w", err)
		}
		fmt.Fprintf(r.out, "Resumed %q (%d messages)\n", conv.Title, len(conv.Messages))
	}
	paths, _ := cmd.Flags().GetStringArray("attach")
	for _, p := range paths {
		if err := r.attach(p); err != nil {
			return err
		}
	}

	r.line = liner.NewLiner()
	r.line.SetCtrlCAborts(true)
	historyPath := filepath.Join(cfg.DataDir, "chat_history")
	if f, err := os.Open(historyPath); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.OpenFile(historyPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			r.line.WriteHistory(f)
			f.Close()
		}
		r.line.Close()
	}()

	// liner reads Ctrl-C as a key while prompting; outside the prompt it
	// arrives as a signal and stops the running stream.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			if shell.Busy() {
				shell.Stop()
			}
		}
	}()

	r.banner()
	for {
		input, err := r.read()
		if err != nil {
			// Ctrl-C at the prompt, Ctrl-D or a closed stdin
			fmt.Fprintln(r.out)
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		r.line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			quit, err := r.command(ctx, input)
			if err != nil {
				fmt.Fprintln(r.errOut, errorStyle.Render("Error: "+err.Error()))
			}
			if quit {
				return nil
			}
			continue
		}

		atts := r.pending
		r.pending = nil
		r.turn(ctx, func(ctx context.Context) (stream.Outcome, error) {
			return shell.Send(ctx, input, atts)
		})
	}
}

func (r *repl) read() (string, error) {
	prompt := string(r.shell.Mode()) + "> "
	if r.draft != "" {
		draft := r.draft
		r.draft = ""
		return r.line.PromptWithSuggestion(prompt, draft, -1)
	}
	return r.line.Prompt(prompt)
}

func (r *repl) banner() {
	p := r.shell.ModeProfile()
	theme := modes.ThemeFor(p.Mode)
	fmt.Fprintln(r.out, theme.Label.Render(p.Label))
	for _, s := range r.shell.Suggestions() {
		fmt.Fprintln(r.out, dimStyle.Render("  • " + s))
	}
	fmt.Fprintln(r.out, dimStyle.Render("Type /help for commands."))
}

func (r *repl) terminal() render.Terminal {
	return render.Terminal{
		Theme: modes.ThemeFor(r.shell.Mode()),
		Math:  render.UnicodeMath{},
		Width: 100,
	}
}

// turn runs one streamed exchange. Raw mode echoes fragments as they
// arrive; otherwise the finished reply is formatted once.
func (r *repl) turn(ctx context.Context, run func(ctx context.Context) (stream.Outcome, error)) {
	var done chan struct{}
	if r.raw {
		events, unsubscribe := r.shell.Subscribe()
		done = make(chan struct{})
		go func() {
			defer close(done)
			for ev := range events {
				if ev.Type == delivery.EventFragment {
					fmt.Fprint(r.out, ev.Fragment)
				}
			}
		}()
		defer func() {
			unsubscribe()
			<-done
			fmt.Fprintln(r.out)
		}()
	} else {
		fmt.Fprintln(r.out, dimStyle.Render("…"))
	}

	// a failed turn returns both a classified Outcome.Error and the raw
	// error; only the classification is shown
	out, err := run(ctx)
	switch {
	case out.Error != nil:
		msg := out.Error.Text
		if out.Error.Retryable {
			msg += " (/retry)"
		}
		fmt.Fprintln(r.out, errorStyle.Render(msg))
	case err != nil:
		fmt.Fprintln(r.errOut, errorStyle.Render("Error: "+err.Error()))
	case out.Skipped:
		fmt.Fprintln(r.out, dimStyle.Render("A reply is already streaming."))
	case out.State == stream.Cancelled:
		fmt.Fprintln(r.out, dimStyle.Render("[stopped]"))
		if !r.raw && out.Reply.Text != "" {
			r.print(out.Reply)
		}
	case !r.raw:
		r.print(out.Reply)
	}
}

func (r *repl) print(m types.Message) {
	fmt.Fprintln(r.out, r.terminal().Format(render.RenderMessage(m)))
}

func (r *repl) attach(path string) error {
	a, err := attachment.FromFile(path)
	if err != nil {
		return fmt.Errorf("attach %s: %w", path, err)
	}
	r.pending = append(r.pending, a)
	fmt.Fprintln(r.out, dimStyle.Render(fmt.Sprintf("attached %s (%s)", a.Name, a.MIMEType)))
	return nil
}

const chatHelp = `Commands:
  /mode [name]       switch mode (lists modes without a name)
  /new               start a new chat in the current mode
  /retry             retry the last failed reply
  /optimize <text>   rewrite a draft prompt, then edit it before sending
  /save [title]      save the conversation
  /attach <file>     attach a file to the next message
  /help              show this help
  /quit              exit`

func (r *repl) command(ctx context.Context, input string) (bool, error) {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		fmt.Fprintln(r.out, chatHelp)
	case "/mode":
		if arg == "" {
			for _, m := range modes.All() {
				p := modes.Resolve(m)
				fmt.Fprintf(r.out, "  %-14s %s\n", m, p.Label)
			}
			return false, nil
		}
		mode, err := modes.Parse(arg)
		if err != nil {
			return false, err
		}
		if err := r.shell.SwitchMode(ctx, mode); err != nil {
			return false, err
		}
		r.banner()
	case "/new":
		if err := r.shell.NewChat(ctx); err != nil {
			return false, err
		}
		r.pending = nil
		fmt.Fprintln(r.out, dimStyle.Render("new chat"))
	case "/retry":
		id, ok := lastRetryable(r.shell.Transcript())
		if !ok {
			return false, errors.New("nothing to retry")
		}
		r.turn(ctx, func(ctx context.Context) (stream.Outcome, error) {
			return r.shell.Retry(ctx, id)
		})
	case "/optimize":
		if arg == "" {
			return false, errors.New("usage: /optimize <text>")
		}
		r.draft = r.shell.OptimizePrompt(ctx, arg)
	case "/save":
		conv, err := r.shell.SaveConversation(ctx, arg)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(r.out, "Saved %q as %s\n", conv.Title, conv.ID)
	case "/attach":
		if arg == "" {
			return false, errors.New("usage: /attach <file>")
		}
		return false, r.attach(arg)
	default:
		return false, fmt.Errorf("unknown command %s (try /help)", name)
	}
	return false, nil
}

func lastRetryable(msgs []types.Message) (types.MessageID, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].IsError && msgs[i].IsRetryable {
			return msgs[i].ID, true
		}
		if msgs[i].Role == types.RoleUser {
			break
		}
	}
	return "", false
}
