package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/evanko/ledgerbot/internal/flow"
	"github.com/evanko/ledgerbot/internal/model"
	"github.com/evanko/ledgerbot/internal/service"
)

// Console runs a single-user chat loop over stdio. Keyboards print as
// numbered choices; typing the number replays the underlying callback token,
// exactly as a button tap would.
type Console struct {
	router      *flow.Router
	identity    model.Identity
	in          io.Reader
	out         io.Writer
	artifactDir string

	// buttons from the most recent keyboard, flattened in display order
	pending []flow.Button
}

// Option configures a Console.
type Option func(*Console)

// WithIO overrides the input and output streams, mainly for tests.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(c *Console) {
		c.in = in
		c.out = out
	}
}

// WithArtifactDir sets where exported files are written.
func WithArtifactDir(dir string) Option {
	return func(c *Console) {
		c.artifactDir = dir
	}
}

// New creates a console bound to one user identity.
func New(router *flow.Router, identity model.Identity, opts ...Option) *Console {
	c := &Console{
		router:      router,
		identity:    identity,
		in:          os.Stdin,
		out:         os.Stdout,
		artifactDir: os.TempDir(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes the chat loop until EOF or context cancellation. The opening
// turn is a synthetic /start so the menu greets the user immediately.
func (c *Console) Run(ctx context.Context) error {
	// The derived cancel releases the reader goroutine on every return path,
	// including /quit.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.deliver(ctx, flow.Event{Sender: c.identity, Command: flow.CmdStart})

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		fmt.Fprint(c.out, promptStyle.Render("> "))

		select {
		case <-ctx.Done():
			fmt.Fprintln(c.out)
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(c.out)
				// The reader may have exited on cancellation without
				// reporting a scan error.
				select {
				case err := <-readErr:
					return err
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if line == "/quit" || line == "/exit" {
				return nil
			}
			c.deliver(ctx, c.toEvent(line))
		}
	}
}

// toEvent maps one input line to a dialog event: a menu number replays that
// button's token, a slash word is a command, everything else is free text.
func (c *Console) toEvent(line string) flow.Event {
	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(c.pending) {
		return flow.Event{
			Sender:   c.identity,
			Callback: flow.ParseCallback(c.pending[n-1].Data),
		}
	}

	if strings.HasPrefix(line, "/") {
		if cmd := flow.ParseCommand(line); cmd != flow.CmdNone {
			return flow.Event{Sender: c.identity, Command: cmd}
		}
	}

	return flow.Event{Sender: c.identity, Text: line}
}

func (c *Console) deliver(ctx context.Context, ev flow.Event) {
	replies := c.router.Handle(ctx, ev)
	c.pending = nil

	for _, reply := range replies {
		if reply.Text != "" {
			fmt.Fprintln(c.out, botStyle.Render(reply.Text))
		}
		if reply.Artifact != nil {
			c.renderArtifact(reply.Artifact)
		}
		if len(reply.Keyboard) > 0 {
			c.renderKeyboard(reply.Keyboard)
		}
	}
}

// renderKeyboard prints the choices as a numbered list and remembers the
// flattened buttons so a number on the next line selects one.
func (c *Console) renderKeyboard(keyboard [][]flow.Button) {
	c.pending = c.pending[:0]
	for _, row := range keyboard {
		for _, button := range row {
			c.pending = append(c.pending, button)
			fmt.Fprintf(c.out, "  %s %s\n",
				buttonStyle.Render(fmt.Sprintf("%d.", len(c.pending))),
				button.Label)
		}
	}
}

// renderArtifact writes inline file data to the artifact directory, or
// prints the remote link for linked documents.
func (c *Console) renderArtifact(artifact *service.Artifact) {
	if artifact.Link != "" {
		fmt.Fprintln(c.out, subtleStyle.Render("  "+artifact.Link))
		return
	}

	path := filepath.Join(c.artifactDir, artifact.Filename)
	if err := os.WriteFile(path, artifact.Data, 0o600); err != nil {
		fmt.Fprintln(c.out, errorStyle.Render("  failed to save file: "+err.Error()))
		return
	}
	fmt.Fprintln(c.out, subtleStyle.Render("  saved to "+path))
}
