package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/mobile-access/readers-go/pkg/history"
	"github.com/mobile-access/readers-go/pkg/readers"
	"github.com/mobile-access/readers-go/pkg/sdk"
)

// ScreenSource is what the screen reads from the synchronizer.
type ScreenSource interface {
	View() readers.View
	Reader(id string) (sdk.Reader, bool)
	OnChange(fn func(readers.View)) sdk.Subscription
	SessionID() string
	PendingTimers() int
}

var _ ScreenSource = (*readers.Synchronizer)(nil)

// Screen is the interactive terminal front end.
type Screen struct {
	source  ScreenSource
	history history.Store
	link    func() string

	mu  sync.Mutex
	out io.Writer
	rl  *readline.Instance

	live bool
	sub  sdk.Subscription
}

// NewScreen creates a screen that writes to out. Run attaches a readline
// prompt on top.
func NewScreen(source ScreenSource, store history.Store, link func() string, out io.Writer) *Screen {
	return &Screen{
		source:  source,
		history: store,
		link:    link,
		out:     out,
		live:    true,
	}
}

// Attach creates the readline prompt and routes screen output through it.
func (s *Screen) Attach() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "readers> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("readers"),
			readline.PcItem("messages"),
			readline.PcItem("reader"),
			readline.PcItem("status"),
			readline.PcItem("history"),
			readline.PcItem("live", readline.PcItem("on"), readline.PcItem("off")),
			readline.PcItem("help"),
			readline.PcItem("quit"),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}

	s.mu.Lock()
	s.rl = rl
	s.out = rl.Stdout()
	s.mu.Unlock()
	return nil
}

// Stdout returns the writer that coordinates with the prompt. Use it for
// log output.
func (s *Screen) Stdout() io.Writer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out
}

// Follow re-renders the screen on every change until Stop.
func (s *Screen) Follow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sub != nil {
		return
	}
	s.sub = s.source.OnChange(s.onChange)
}

// Stop ends Follow.
func (s *Screen) Stop() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()
	if sub != nil {
		sub.Remove()
	}
}

func (s *Screen) onChange(v readers.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		return
	}
	renderView(s.out, v)
}

// Run reads commands until quit, EOF or ctx ends. Attach must have been
// called.
func (s *Screen) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp()
	s.Exec(ctx, "readers")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(s.Stdout(), "Exiting...")
			cancel()
			return
		}

		if !s.Exec(ctx, line) {
			cancel()
			return
		}
	}
}

// Exec runs one command line. It returns false when the screen should
// exit.
func (s *Screen) Exec(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	s.mu.Lock()
	defer s.mu.Unlock()

	switch cmd {
	case "help", "?":
		s.printHelpLocked()

	case "readers", "ls", "r":
		renderView(s.out, s.source.View())

	case "messages", "m":
		renderMessages(s.out, s.source.View().Messages)

	case "reader":
		s.cmdReader(args)

	case "status", "st":
		s.cmdStatus()

	case "history", "h":
		s.cmdHistory(ctx, args)

	case "live":
		s.cmdLive(args)

	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return false

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (s *Screen) printHelp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.printHelpLocked()
}

func (s *Screen) printHelpLocked() {
	fmt.Fprintln(s.out, `
Readers Screen Commands:
  readers            - Show status messages and readers in range
  messages           - Show status messages only
  reader <id>        - Show one reader with its attributes
  status             - Show link and synchronizer status
  history [id]       - Show recent status changes (optionally for one reader)
  live on|off        - Re-render the screen on every change
  help               - Show this help
  quit               - Exit`)
}

func (s *Screen) cmdReader(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: reader <id>")
		return
	}
	r, ok := s.source.Reader(args[0])
	if !ok {
		fmt.Fprintf(s.out, "Reader not found: %s\n", args[0])
		return
	}
	renderReader(s.out, r)
}

func (s *Screen) cmdStatus() {
	v := s.source.View()
	link := "local"
	if s.link != nil {
		link = s.link()
	}
	fmt.Fprintln(s.out, "Screen Status:")
	fmt.Fprintf(s.out, "  Session:        %s\n", s.source.SessionID())
	fmt.Fprintf(s.out, "  SDK link:       %s\n", link)
	fmt.Fprintf(s.out, "  View version:   %d\n", v.Version)
	fmt.Fprintf(s.out, "  Scanning:       %v\n", v.Scanning)
	fmt.Fprintf(s.out, "  Messages:       %d\n", len(v.Messages))
	fmt.Fprintf(s.out, "  Readers:        %d\n", len(v.Readers))
	fmt.Fprintf(s.out, "  Pending timers: %d\n", s.source.PendingTimers())
	fmt.Fprintf(s.out, "  Live updates:   %v\n", s.live)
}

func (s *Screen) cmdHistory(ctx context.Context, args []string) {
	if s.history == nil {
		fmt.Fprintln(s.out, "History is disabled")
		return
	}
	q := history.Query{Limit: 20}
	if len(args) > 0 {
		q.ReaderID = args[0]
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	entries, err := s.history.List(ctx, q)
	if err != nil {
		fmt.Fprintf(s.out, "History error: %v\n", err)
		return
	}
	renderHistory(s.out, entries)
}

func (s *Screen) cmdLive(args []string) {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		fmt.Fprintln(s.out, "Usage: live on|off")
		return
	}
	s.live = args[0] == "on"
	fmt.Fprintf(s.out, "Live updates: %s\n", args[0])
}
