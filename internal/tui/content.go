package tui

import (
	"fmt"
	"strings"

	"github.com/fakeyudi/skillbench/internal/pathtree"
	"github.com/fakeyudi/skillbench/internal/run"
	"github.com/fakeyudi/skillbench/internal/workspace"
)

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}

func row(sb *strings.Builder, label, value string) {
	sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-12s", label)) + "  " + value + "\n")
}

func (m *Model) renderContent(st workspace.State) string {
	tab, ok := st.ActiveTab()
	if !ok {
		return heading("No tab open") +
			dimStyle.Render("  Pick something from the sidebar (1-7 switch panels, enter opens).") + "\n"
	}
	switch tab.Type {
	case workspace.TabEditor:
		return m.renderEditor(tab)
	case workspace.TabVersionViewer:
		return m.renderVersion(tab, st)
	case workspace.TabTerminal:
		return m.renderTerminal(tab)
	case workspace.TabBuilderChat, workspace.TabTesterRun:
		return m.renderThread(tab)
	}
	return heading(tab.Title) + dimStyle.Render("  Nothing here yet.") + "\n"
}

func crumbs(cs []pathtree.Crumb) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Name
	}
	return strings.Join(names, " › ")
}

func (m *Model) renderEditor(tab workspace.Tab) string {
	var sb strings.Builder
	sb.WriteString("\n  " + dimStyle.Render(crumbs(m.ws.Tree.Breadcrumbs(tab.Path))))
	if tab.Language != "" {
		sb.WriteString("  " + labelStyle.Render(tab.Language))
	}
	sb.WriteString("\n\n")
	lines := strings.Split(strings.TrimRight(tab.Content, "\n"), "\n")
	for i, l := range lines {
		sb.WriteString(lineNumberStyle.Render(fmt.Sprintf("  %4d ", i+1)) + l + "\n")
	}
	return sb.String()
}

func (m *Model) renderVersion(tab workspace.Tab, st workspace.State) string {
	var sb strings.Builder
	rec, ok := m.ws.Versions.ByID(tab.VersionID)
	if !ok {
		sb.WriteString(heading(tab.Title))
		sb.WriteString(dimStyle.Render("  Unknown version "+tab.VersionID) + "\n")
		return sb.String()
	}
	sb.WriteString(heading(rec.Name))
	row(&sb, "Date:", rec.Date)
	if rec.Description != "" {
		row(&sb, "Notes:", rec.Description)
	}
	var chain []string
	for _, r := range m.ws.Versions.AncestryPath(rec.ID) {
		chain = append(chain, r.ID)
	}
	row(&sb, "History:", strings.Join(chain, " → "))

	sb.WriteString("\n  " + warnStyle.Render("View only mode") + "\n")
	if rec.Name == st.CurrentVersionName {
		sb.WriteString(dimStyle.Render("  This version is currently checked out in the workspace. Open the files panel to make changes.") + "\n")
	} else {
		sb.WriteString(dimStyle.Render("  To run tests or make changes to this version, you must first check it out (o).") + "\n")
	}

	b := m.browser(tab.ID)
	sb.WriteString("\n  " + labelStyle.Render(crumbs(m.ws.Tree.Breadcrumbs(b.dir))) + "\n\n")
	entries := m.ws.Tree.FolderContents(b.dir)
	if len(entries) == 0 {
		sb.WriteString(dimStyle.Render("  (empty)") + "\n")
	}
	for i, n := range entries {
		name := "  " + n.Name
		if n.IsFolder() {
			name += "/"
		}
		if i == b.cursor && m.focus == focusContent {
			name = selectedRowStyle.Render(name)
		}
		sb.WriteString(name + "\n")
	}
	if b.file != "" {
		if n, ok := m.ws.Tree.Find(b.file); ok && !n.IsFolder() {
			sb.WriteString(heading(n.Name))
			for _, l := range strings.Split(strings.TrimRight(n.Content, "\n"), "\n") {
				sb.WriteString("    " + l + "\n")
			}
		}
	}
	return sb.String()
}

func (m *Model) renderTerminal(tab workspace.Tab) string {
	sess := m.terminalSession(tab)
	var sb strings.Builder
	for _, l := range m.scrollback[sess.ID] {
		sb.WriteString("  " + l + "\n")
	}
	return sb.String()
}

func statusText(s run.Status) string {
	switch s {
	case run.StatusRunning:
		return statusRunningStyle.Render(string(s))
	case run.StatusCompleted:
		return statusCompletedStyle.Render(string(s))
	case run.StatusFailed:
		return statusFailedStyle.Render(string(s))
	}
	return dimStyle.Render(string(s))
}

func stepBadge(t run.StepType) string {
	label := fmt.Sprintf("%-9s", t)
	switch t {
	case run.StepMessage:
		return stepMessageStyle.Render(label)
	case run.StepToolCall:
		return stepToolStyle.Render(label)
	case run.StepResult:
		return stepResultStyle.Render(label)
	case run.StepError:
		return stepErrorStyle.Render(label)
	}
	return label
}

func (m *Model) renderThread(tab workspace.Tab) string {
	th, ok := m.store.Thread(tab.ThreadID)
	if !ok {
		return heading(tab.Title) + dimStyle.Render("  Thread no longer exists.") + "\n"
	}
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("%s  %s", th.Name, statusText(th.Status))))
	if len(th.Sessions) == 0 {
		sb.WriteString(dimStyle.Render("  No runs yet. Press i, type a prompt, and hit enter.") + "\n")
	}
	for i, s := range th.Sessions {
		sb.WriteString(fmt.Sprintf("  %s  %s  %s  %s\n",
			labelStyle.Render(fmt.Sprintf("Run %d", i+1)),
			timeStyle.Render(s.CreatedAt.Format("15:04:05")),
			dimStyle.Render(s.Model),
			statusText(s.Status)))
		sb.WriteString("  " + dimStyle.Render("> ") + s.Prompt + "\n\n")
		for _, step := range s.Trajectory {
			sb.WriteString(renderStep(step, m.expanded))
		}
		switch {
		case s.Cancelled:
			sb.WriteString("  " + statusFailedStyle.Render("Cancelled") + "\n")
		case s.Err != "":
			sb.WriteString("  " + statusFailedStyle.Render("Error: "+s.Err) + "\n")
		case s.Status == run.StatusRunning:
			if ar := m.runs[th.ID]; ar != nil && ar.ctrl.IsPaused() {
				sb.WriteString("  " + warnStyle.Render("Paused") + dimStyle.Render("  p resume  c cancel") + "\n")
			} else {
				sb.WriteString("  " + m.spinner.View() + " Running…" + dimStyle.Render("  p pause  c cancel") + "\n")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderStep(step run.Step, expanded bool) string {
	head := "    " + timeStyle.Render(step.Timestamp.Format("15:04:05")) + "  " + stepBadge(step.Type) + "  "
	lines := strings.Split(step.Content, "\n")
	if step.Collapsible() && !expanded && !step.Expanded {
		more := ""
		if len(lines) > 1 {
			more = dimStyle.Render(" …")
		}
		return head + lines[0] + more + "\n"
	}
	var sb strings.Builder
	sb.WriteString(head + lines[0] + "\n")
	for _, l := range lines[1:] {
		sb.WriteString(strings.Repeat(" ", 25) + l + "\n")
	}
	return sb.String()
}
