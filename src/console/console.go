// Package console renders the interactive chat UI: styled prompts, Markdown
// replies, and line-edited input with history.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	welcomeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// UI writes chat output. Markdown rendering only happens when the output is
// a terminal so piped output stays clean; lipgloss honors NO_COLOR on its
// own.
type UI struct {
	out      io.Writer
	renderer *glamour.TermRenderer
	isTTY    bool
}

// UIOptions configures a UI.
type UIOptions struct {
	// Out defaults to stdout.
	Out io.Writer
	// ForceTTY makes rendering decisions as if Out were a terminal.
	ForceTTY bool
}

// NewUI creates a UI writing to opts.Out.
func NewUI(opts UIOptions) *UI {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	isTTY := opts.ForceTTY
	if !isTTY {
		if f, ok := out.(*os.File); ok {
			isTTY = term.IsTerminal(int(f.Fd()))
		}
	}

	var renderer *glamour.TermRenderer
	if isTTY {
		// A nil renderer falls back to plain text.
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
	}

	return &UI{out: out, renderer: renderer, isTTY: isTTY}
}

// Welcome prints the session banner.
func (u *UI) Welcome(provider string) {
	fmt.Fprintln(u.out)
	fmt.Fprintln(u.out, welcomeStyle.Render("Neuro AI"))
	fmt.Fprintln(u.out, infoStyle.Render("Your study assistant. Ask about your course material."))
	if provider != "" {
		fmt.Fprintln(u.out, infoStyle.Render("Provider: "+provider))
	}
	fmt.Fprintln(u.out, infoStyle.Render("Type a question and press Enter. exit or quit ends the session."))
	fmt.Fprintln(u.out)
}

// Goodbye prints the farewell line.
func (u *UI) Goodbye() {
	fmt.Fprintln(u.out, infoStyle.Render("Goodbye! Happy studying."))
}

// ShowReply prints an assistant reply, rendered as Markdown on a terminal.
func (u *UI) ShowReply(text string) {
	if u.renderer != nil {
		if rendered, err := u.renderer.Render(text); err == nil {
			fmt.Fprint(u.out, rendered)
			fmt.Fprintln(u.out)
			return
		}
	}
	fmt.Fprintln(u.out, text)
	fmt.Fprintln(u.out)
}

// ShowError prints an error without ending the session.
func (u *UI) ShowError(err error) {
	fmt.Fprintln(u.out, errorStyle.Render("[error]")+" "+err.Error())
	fmt.Fprintln(u.out)
}

// Prompt returns the styled input prompt.
func (u *UI) Prompt() string {
	if u.isTTY {
		return promptStyle.Render("you> ")
	}
	return "you> "
}

// Responder produces an assistant reply for one message. Implementations
// must leave their conversation state untouched when they fail, so the user
// can retry the same message.
type Responder func(ctx context.Context, message string) (string, error)

// LineReader supplies user input to the chat loop.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// Run drives the chat loop until the user exits. Empty input is ignored;
// exit and quit end the session; Ctrl-C and Ctrl-D end it too.
func Run(ctx context.Context, input LineReader, ui *UI, respond Responder) error {
	for {
		line, err := input.ReadLine(ui.Prompt())
		if err != nil {
			if errors.Is(err, ErrAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(ui.out)
				ui.Goodbye()
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			ui.Goodbye()
			return nil
		}

		text, err := respond(ctx, line)
		if err != nil {
			ui.ShowError(err)
			continue
		}
		ui.ShowReply(text)
	}
}
