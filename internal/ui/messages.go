package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/clearcast-audio/clearcast/internal/batch"
)

// FileStartMsg marks a file entering a worker.
type FileStartMsg struct {
	Index int
	Path  string
}

// FileDoneMsg carries a finished file's result, success or not.
type FileDoneMsg struct {
	Index  int
	Result batch.FileResult
}

// BatchDoneMsg signals the end of the run.
type BatchDoneMsg struct{}

// Notifier bridges batch callbacks into the running program. Workers call
// it concurrently; tea.Program.Send is safe for that.
type Notifier struct {
	program *tea.Program
}

func NewNotifier(p *tea.Program) *Notifier {
	return &Notifier{program: p}
}

func (n *Notifier) FileStarted(index int, path string) {
	n.program.Send(FileStartMsg{Index: index, Path: path})
}

func (n *Notifier) FileFinished(index int, result batch.FileResult) {
	n.program.Send(FileDoneMsg{Index: index, Result: result})
}
