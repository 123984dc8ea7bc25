package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/skillbench/internal/transcript"
)

type viewerTab int

const (
	viewerSummary viewerTab = iota
	viewerPrompt
	viewerTrajectory
	viewerTabCount
)

var viewerTabNames = [viewerTabCount]string{"Summary", "Prompt", "Trajectory"}

// Viewer is a read-only Bubble Tea model over an exported transcript.
type Viewer struct {
	t         *transcript.Transcript
	filename  string
	activeTab viewerTab
	viewports [viewerTabCount]viewport.Model
	expanded  bool
	width     int
	height    int
	ready     bool
}

// NewViewer creates a viewer for t loaded from filename.
func NewViewer(t *transcript.Transcript, filename string) Viewer {
	return Viewer{t: t, filename: filepath.Base(filename)}
}

func (v Viewer) Init() tea.Cmd { return nil }

func (v Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return v, tea.Quit
		case "tab", "l", "right":
			v.activeTab = (v.activeTab + 1) % viewerTabCount
			return v, nil
		case "shift+tab", "h", "left":
			v.activeTab = (v.activeTab - 1 + viewerTabCount) % viewerTabCount
			return v, nil
		case "1", "2", "3":
			v.activeTab = viewerTab(msg.String()[0] - '1')
			return v, nil
		case "e":
			v.expanded = !v.expanded
			if v.ready {
				v.viewports[viewerTrajectory].SetContent(v.renderTab(viewerTrajectory))
			}
			return v, nil
		}
		var cmd tea.Cmd
		v.viewports[v.activeTab], cmd = v.viewports[v.activeTab].Update(msg)
		return v, cmd

	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ready = true
		// title(1) + tab row(1) + status bar(1)
		h := max(v.height-3, 1)
		for i := viewerTab(0); i < viewerTabCount; i++ {
			vp := viewport.New(v.width, h)
			vp.SetContent(v.renderTab(i))
			v.viewports[i] = vp
		}
		return v, nil
	}
	return v, nil
}

func (v Viewer) View() string {
	if !v.ready {
		return "Loading…"
	}
	title := titleStyle.Width(v.width).Render("  skillbench transcript  " + v.filename)

	var tabParts []string
	for i := viewerTab(0); i < viewerTabCount; i++ {
		label := fmt.Sprintf(" %d %s ", i+1, viewerTabNames[i])
		if i == v.activeTab {
			tabParts = append(tabParts, activeTabStyle.Render(label))
		} else {
			tabParts = append(tabParts, inactiveTabStyle.Render(label))
		}
		if i < viewerTabCount-1 {
			tabParts = append(tabParts, tabSepStyle.Render("│"))
		}
	}
	tabRow := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Width(v.width).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, tabParts...))

	hint := "  ←/→ tab  ↑/↓ scroll  1-3 jump  q quit"
	if v.activeTab == viewerTrajectory {
		hint += "  e expand all"
	}
	pct := fmt.Sprintf("%3.0f%%", v.viewports[v.activeTab].ScrollPercent()*100)
	pad := max(v.width-lipgloss.Width(hint)-len(pct)-2, 1)
	statusBar := statusBarStyle.Width(v.width).Render(hint + strings.Repeat(" ", pad) + pct)

	return lipgloss.JoinVertical(lipgloss.Left, title, tabRow, v.viewports[v.activeTab].View(), statusBar)
}

func (v *Viewer) renderTab(t viewerTab) string {
	switch t {
	case viewerSummary:
		return v.renderSummary()
	case viewerPrompt:
		return heading("Prompt") + indent(v.t.Session.Prompt, "  ") + "\n"
	case viewerTrajectory:
		return v.renderTrajectory()
	}
	return ""
}

func (v *Viewer) renderSummary() string {
	s := v.t.Session
	var sb strings.Builder
	sb.WriteString(heading(v.t.Thread.Name))
	row(&sb, "Session:", s.ID)
	row(&sb, "Model:", s.Model)
	status := statusText(s.Status)
	if s.Cancelled {
		status += dimStyle.Render(" (cancelled)")
	}
	row(&sb, "Status:", status)
	if v.t.Version != "" {
		row(&sb, "Version:", v.t.Version)
	}
	row(&sb, "Started:", s.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	if s.CompletedAt != nil {
		row(&sb, "Finished:", s.CompletedAt.Format("2006-01-02 15:04:05 MST"))
		row(&sb, "Duration:", v.t.Duration().String())
	}
	row(&sb, "Steps:", fmt.Sprintf("%d", len(s.Trajectory)))
	if s.Err != "" {
		sb.WriteString(heading("Error"))
		sb.WriteString("  " + statusFailedStyle.Render(s.Err) + "\n")
	}
	return sb.String()
}

func (v *Viewer) renderTrajectory() string {
	steps := v.t.Session.Trajectory
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Trajectory (%d)", len(steps))))
	if len(steps) == 0 {
		sb.WriteString(dimStyle.Render("  (no steps recorded)") + "\n")
		return sb.String()
	}
	for _, step := range steps {
		sb.WriteString(renderStep(step, v.expanded))
	}
	return sb.String()
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}

// ViewTranscript opens the read-only viewer for t.
func ViewTranscript(t *transcript.Transcript, filename string) error {
	p := tea.NewProgram(NewViewer(t, filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
