package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.Quitting = true
			return m, tea.Quit
		}

	case TickMsg:
		return m, tickCmd()

	case DoneMsg:
		m.Done = true
		return m, tea.Quit

	case QuitMsg:
		m.Quitting = true
		return m, tea.Quit

	case PoolStartedMsg:
		m.TotalNodes = msg.TotalNodes

	case WorkerSpawnedMsg:
		m.Workers[msg.WorkerID] = &WorkerState{
			ID:     msg.WorkerID,
			Status: "waiting",
			Since:  time.Now(),
		}

	case WorkerIdleMsg:
		if w, ok := m.Workers[msg.WorkerID]; ok {
			w.Status = "waiting"
			w.Node = ""
			w.Plan = ""
			w.Since = time.Now()
		}

	case WorkerStoppedMsg:
		delete(m.Workers, msg.WorkerID)

	case NodeSelectedMsg:
		w, ok := m.Workers[msg.WorkerID]
		if !ok {
			w = &WorkerState{ID: msg.WorkerID}
			m.Workers[msg.WorkerID] = w
		}
		w.Status = "running"
		w.Node = msg.Node
		w.Plan = msg.Plan
		w.Since = time.Now()

	case NodeFinishedMsg:
		m.CompletedNodes++
		if w, ok := m.Workers[msg.WorkerID]; ok {
			w.Status = "waiting"
			w.Node = ""
		}

	case NodeFailedMsg:
		m.FailedNodes++
		if w, ok := m.Workers[msg.WorkerID]; ok {
			w.Status = "waiting"
			w.Node = ""
		}

	case LogMsg:
		m.LogLines = append(m.LogLines, msg.Line)
		if m.LogLimit > 0 && len(m.LogLines) > m.LogLimit {
			m.LogLines = m.LogLines[len(m.LogLines)-m.LogLimit:]
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
	}

	return m, nil
}
