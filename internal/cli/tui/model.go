package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// WorkerState tracks one pool worker's current activity for display.
type WorkerState struct {
	ID     string
	Status string // "running", "waiting", "stopped"
	Node   string
	Plan   string
	Since  time.Time
}

// Model is the bubbletea model for the run dashboard: one row per
// worker ID seen in events (the worker's lease address for node
// events), plus running totals of finished/failed nodes across every
// submitted plan.
type Model struct {
	// Configuration
	TotalNodes  int
	Parallelism int
	Styles      Styles

	// State
	Workers        map[string]*WorkerState
	CompletedNodes int
	FailedNodes    int
	StartTime      time.Time
	LogLines       []string
	LogLimit       int
	ShowLogs       bool
	Width          int
	Height         int

	// Control
	Quitting bool
	Done     bool
}

// NewModel creates a new dashboard model.
func NewModel(totalNodes, parallelism int) *Model {
	return &Model{
		TotalNodes:  totalNodes,
		Parallelism: parallelism,
		Styles:      DefaultStyles(),
		Workers:     make(map[string]*WorkerState),
		StartTime:   time.Now(),
		LogLimit:    500,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
	)
}

// TickMsg is sent every second to update the timer.
type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// DoneMsg signals the dashboard should exit because the run completed.
type DoneMsg struct{}

// QuitMsg signals the user requested quit (q or Ctrl+C).
type QuitMsg struct{}

// PoolStartedMsg carries the total node count once the plan is known.
type PoolStartedMsg struct {
	TotalNodes int
}

// WorkerSpawnedMsg indicates a worker goroutine has joined the pool.
type WorkerSpawnedMsg struct {
	WorkerID string
}

// WorkerIdleMsg indicates a worker is waiting for work to become ready.
type WorkerIdleMsg struct {
	WorkerID string
}

// WorkerStoppedMsg indicates a worker has exited the pool.
type WorkerStoppedMsg struct {
	WorkerID string
}

// NodeSelectedMsg indicates a worker began executing a node.
type NodeSelectedMsg struct {
	WorkerID string
	Plan     string
	Node     string
}

// NodeFinishedMsg indicates a node completed successfully.
type NodeFinishedMsg struct {
	WorkerID string
	Node     string
}

// NodeFailedMsg indicates a node failed.
type NodeFailedMsg struct {
	WorkerID string
	Node     string
	Error    string
}
