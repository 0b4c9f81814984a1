package console

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

// ErrAborted is returned by ReadLine when the user presses Ctrl-C.
var ErrAborted = liner.ErrPromptAborted

// Input reads lines with editing and persistent history.
type Input struct {
	line        *liner.State
	historyFile string
}

// NewInput creates an Input. historyFile may be empty to disable
// persistence; an existing history file is loaded immediately.
func NewInput(historyFile string) *Input {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	in := &Input{line: line, historyFile: historyFile}
	in.loadHistory()
	return in
}

func (in *Input) loadHistory() {
	if in.historyFile == "" {
		return
	}
	if f, err := os.Open(in.historyFile); err == nil {
		in.line.ReadHistory(f)
		f.Close()
	}
}

// ReadLine reads one line. Non-empty input is appended to the history.
func (in *Input) ReadLine(prompt string) (string, error) {
	input, err := in.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		in.line.AppendHistory(input)
	}
	return input, nil
}

// Close persists the history and restores the terminal.
func (in *Input) Close() {
	in.saveHistory()
	in.line.Close()
}

func (in *Input) saveHistory() {
	if in.historyFile == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(in.historyFile), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(in.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	in.line.WriteHistory(f)
}
