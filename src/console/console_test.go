package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

// scriptedInput feeds a fixed sequence of lines, then EOF.
type scriptedInput struct {
	lines []string
}

func (s *scriptedInput) ReadLine(string) (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func TestRunSkipsEmptyAndExits(t *testing.T) {
	var buf bytes.Buffer
	ui := NewUI(UIOptions{Out: &buf})

	var got []string
	respond := func(_ context.Context, message string) (string, error) {
		got = append(got, message)
		return "reply to " + message, nil
	}

	input := &scriptedInput{lines: []string{"", "   ", "what is sql?", "EXIT"}}
	if err := Run(context.Background(), input, ui, respond); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(got) != 1 || got[0] != "what is sql?" {
		t.Errorf("responder received %v", got)
	}
	if !strings.Contains(buf.String(), "reply to what is sql?") {
		t.Errorf("output missing reply: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "Goodbye") {
		t.Errorf("output missing goodbye: %q", buf.String())
	}
}

func TestRunSurvivesResponderError(t *testing.T) {
	var buf bytes.Buffer
	ui := NewUI(UIOptions{Out: &buf})

	calls := 0
	respond := func(_ context.Context, message string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("provider unavailable")
		}
		return "second time works", nil
	}

	input := &scriptedInput{lines: []string{"try once", "try again", "quit"}}
	if err := Run(context.Background(), input, ui, respond); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "provider unavailable") {
		t.Errorf("output missing error message: %q", out)
	}
	if !strings.Contains(out, "second time works") {
		t.Errorf("output missing recovered reply: %q", out)
	}
}

func TestRunEndsOnEOF(t *testing.T) {
	var buf bytes.Buffer
	ui := NewUI(UIOptions{Out: &buf})

	input := &scriptedInput{}
	if err := Run(context.Background(), input, ui, func(context.Context, string) (string, error) {
		t.Fatal("responder should not be called")
		return "", nil
	}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Goodbye") {
		t.Errorf("output missing goodbye: %q", buf.String())
	}
}

func TestShowReplyPlainWhenNotTTY(t *testing.T) {
	var buf bytes.Buffer
	ui := NewUI(UIOptions{Out: &buf})

	ui.ShowReply("# Heading\n\nplain **markdown** passes through")
	if !strings.Contains(buf.String(), "# Heading") {
		t.Errorf("non-TTY output should be raw markdown: %q", buf.String())
	}
}
