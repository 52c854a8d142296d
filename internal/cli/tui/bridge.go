package tui

import (
	"github.com/RevCBH/forge/internal/events"
	tea "github.com/charmbracelet/bubbletea"
)

// Bridge connects the event bus to the bubbletea program.
type Bridge struct {
	program *tea.Program
}

// NewBridge creates a new bridge for the given program.
func NewBridge(program *tea.Program) *Bridge {
	return &Bridge{
		program: program,
	}
}

// Handler returns an event handler suitable for events.Bus.Subscribe.
func (b *Bridge) Handler() events.Handler {
	return func(evt events.Event) {
		msg := b.eventToMsg(evt)
		if msg != nil {
			b.program.Send(msg)
		}
	}
}

// eventToMsg converts an events.Event to a tea.Msg.
func (b *Bridge) eventToMsg(evt events.Event) tea.Msg {
	switch evt.Type {
	case events.PoolStarted:
		total := 0
		if payload, ok := evt.Payload.(map[string]any); ok {
			if t, ok := payload["node_count"].(int); ok {
				total = t
			}
		}
		return PoolStartedMsg{TotalNodes: total}

	case events.WorkerSpawned:
		return WorkerSpawnedMsg{WorkerID: evt.Worker}

	case events.WorkerIdle:
		return WorkerIdleMsg{WorkerID: evt.Worker}

	case events.WorkerStopped:
		return WorkerStoppedMsg{WorkerID: evt.Worker}

	case events.NodeSelected:
		return NodeSelectedMsg{
			WorkerID: evt.Worker,
			Plan:     evt.Plan,
			Node:     evt.Node,
		}

	case events.NodeFinished:
		return NodeFinishedMsg{
			WorkerID: evt.Worker,
			Node:     evt.Node,
		}

	case events.NodeFailed:
		return NodeFailedMsg{
			WorkerID: evt.Worker,
			Node:     evt.Node,
			Error:    evt.Error,
		}

	default:
		return nil
	}
}

// SendDone sends a DoneMsg to the program.
func (b *Bridge) SendDone() {
	b.program.Send(DoneMsg{})
}

// SendQuit sends a QuitMsg to the program.
func (b *Bridge) SendQuit() {
	b.program.Send(QuitMsg{})
}
