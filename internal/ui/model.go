// Package ui provides the Bubbletea terminal interface for batch runs.
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/clearcast-audio/clearcast/internal/batch"
)

// FileStatus is the display state of one file in the queue.
type FileStatus int

const (
	StatusQueued FileStatus = iota
	StatusRunning
	StatusDone
	StatusSkipped
	StatusFailed
)

// FileState tracks one file's row in the queue view.
type FileState struct {
	InputPath string
	Status    FileStatus
	StartTime time.Time
	Result    batch.FileResult
}

// Model drives the batch progress display. Several files can be running at
// once, matching the worker pool.
type Model struct {
	Files     []FileState
	Completed int
	Skipped   int
	Failed    int
	StartTime time.Time
	Done      bool

	Width  int
	Height int
}

// NewModel seeds the queue view from the input file list.
func NewModel(inputs []string) Model {
	files := make([]FileState, len(inputs))
	for i, path := range inputs {
		files[i] = FileState{InputPath: path, Status: StatusQueued}
	}
	return Model{Files: files, StartTime: time.Now()}
}

func (m Model) Init() tea.Cmd { return nil }

// Update applies batch progress messages and key handling.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case FileStartMsg:
		if msg.Index >= 0 && msg.Index < len(m.Files) {
			m.Files[msg.Index].Status = StatusRunning
			m.Files[msg.Index].StartTime = time.Now()
		}

	case FileDoneMsg:
		if msg.Index >= 0 && msg.Index < len(m.Files) {
			f := &m.Files[msg.Index]
			f.Result = msg.Result
			switch {
			case msg.Result.Skipped:
				f.Status = StatusSkipped
				m.Skipped++
			case msg.Result.Err != nil:
				f.Status = StatusFailed
				m.Failed++
			default:
				f.Status = StatusDone
				m.Completed++
			}
		}

	case BatchDoneMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the current state.
func (m Model) View() string {
	if m.Done {
		return renderSummary(m)
	}
	return renderQueue(m)
}
