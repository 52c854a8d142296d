package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.Done || m.Quitting {
		return ""
	}

	showLogs := m.ShowLogs || len(m.LogLines) > 0
	if m.Height <= 0 || !showLogs {
		return m.renderBaseView()
	}
	logHeight := m.Height / 2
	if logHeight < 3 {
		return m.renderBaseView()
	}
	topHeight := m.Height - logHeight

	top := m.renderTopArea(topHeight)
	logs := m.renderLogArea(logHeight)

	if logs == "" {
		return top
	}

	return top + "\n" + logs
}

func (m *Model) renderBaseView() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	b.WriteString(m.renderWorkers())

	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")

	b.WriteString(m.renderFooter())

	return b.String()
}

func (m *Model) renderTopArea(height int) string {
	if height <= 0 {
		return ""
	}

	header := m.renderHeader()
	status := m.renderStatusLine()
	footer := m.renderFooter()
	workers := strings.TrimRight(m.renderWorkers(), "\n")
	workerLines := []string{}
	if workers != "" {
		workerLines = strings.Split(workers, "\n")
	}

	lines := []string{header}
	if height >= 4 {
		lines = append(lines, "")
	}

	reserved := 2
	remaining := height - len(lines) - reserved
	if remaining < 0 {
		remaining = 0
	}
	if len(workerLines) > remaining {
		workerLines = workerLines[:remaining]
	}
	lines = append(lines, workerLines...)
	lines = append(lines, status)
	lines = append(lines, footer)

	return padOrTrim(lines, height)
}

func (m *Model) renderLogArea(height int) string {
	if height <= 0 {
		return ""
	}

	lines := make([]string, 0, height)
	lines = append(lines, m.renderLogHeader())

	visible := height - 1
	logLines := m.tailLogLines(visible)
	for _, line := range logLines {
		lines = append(lines, m.Styles.LogLine.Render(m.truncateLine(line)))
	}

	return padOrTrim(lines, height)
}

func (m *Model) renderLogHeader() string {
	width := m.Width
	if width <= 0 {
		return m.Styles.LogTitle.Render("Logs")
	}
	title := " Logs "
	if len(title) >= width {
		return m.Styles.LogTitle.Render(title)
	}
	left := (width - len(title)) / 2
	right := width - len(title) - left
	return m.Styles.LogTitle.Render(strings.Repeat("─", left) + title + strings.Repeat("─", right))
}

func (m *Model) tailLogLines(max int) []string {
	if max <= 0 {
		return nil
	}
	if len(m.LogLines) == 0 {
		return []string{"(no logs yet)"}
	}
	if len(m.LogLines) <= max {
		return m.LogLines
	}
	return m.LogLines[len(m.LogLines)-max:]
}

func (m *Model) truncateLine(line string) string {
	if m.Width <= 0 {
		return line
	}
	if len(line) <= m.Width {
		return line
	}
	if m.Width <= 3 {
		return line[:m.Width]
	}
	return line[:m.Width-3] + "..."
}

func padOrTrim(lines []string, height int) string {
	if height <= 0 {
		return ""
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// renderHeader renders the title line with timer and parallelism.
func (m *Model) renderHeader() string {
	elapsed := time.Since(m.StartTime).Round(time.Second)
	timer := fmt.Sprintf("[%s]", formatDuration(elapsed))
	parallelism := fmt.Sprintf("Parallelism: %d", m.Parallelism)

	return fmt.Sprintf("%s  %s  %s",
		m.Styles.Title.Render("forge"),
		m.Styles.Timer.Render(timer),
		m.Styles.Parallelism.Render(parallelism),
	)
}

// renderWorkers renders one line per live worker.
func (m *Model) renderWorkers() string {
	if len(m.Workers) == 0 {
		return "  No active workers\n\n"
	}

	var b strings.Builder

	ids := make([]string, 0, len(m.Workers))
	for id := range m.Workers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		b.WriteString(m.renderWorker(m.Workers[id]))
		b.WriteString("\n")
	}

	return b.String()
}

// renderWorker renders a single worker row, e.g.
// ● 0xc000123456 forge.yaml/app-shell
func (m *Model) renderWorker(w *WorkerState) string {
	var icon, text string
	switch w.Status {
	case "running":
		icon = m.Styles.WorkerRunning.Render(IconRunning)
		node := w.Node
		if w.Plan != "" {
			node = w.Plan + "/" + w.Node
		}
		text = m.Styles.WorkerNode.Render(node)
	case "stopped":
		icon = m.Styles.WorkerStopped.Render(IconStopped)
		text = m.Styles.WorkerNode.Render("stopped")
	default:
		icon = m.Styles.WorkerWaiting.Render(IconWaiting)
		text = m.Styles.WorkerNode.Render("waiting for work")
	}

	name := m.Styles.WorkerName.Render(w.ID)
	return fmt.Sprintf("  %s %s %s", icon, name, text)
}

// renderStatusLine renders the summary status line.
func (m *Model) renderStatusLine() string {
	activeCount := 0
	for _, w := range m.Workers {
		if w.Status == "running" {
			activeCount++
		}
	}

	complete := m.Styles.StatusComplete.Render(fmt.Sprintf("%d complete", m.CompletedNodes))
	failed := m.Styles.StatusFailed.Render(fmt.Sprintf("%d failed", m.FailedNodes))
	active := m.Styles.StatusActive.Render(fmt.Sprintf("%d running", activeCount))

	return fmt.Sprintf("  Nodes: %d/%d %s | %s | %s",
		m.CompletedNodes+m.FailedNodes,
		m.TotalNodes,
		complete,
		failed,
		active,
	)
}

// renderFooter renders the help text.
func (m *Model) renderFooter() string {
	key := m.Styles.FooterKey.Render("q")
	return m.Styles.Footer.Render(fmt.Sprintf("  Press %s to quit", key))
}

// formatDuration formats a duration as HH:MM:SS.
func formatDuration(d time.Duration) string {
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
