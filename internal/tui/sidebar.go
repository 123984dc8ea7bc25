package tui

import (
	"fmt"
	"strings"

	"github.com/fakeyudi/skillbench/internal/pathtree"
	"github.com/fakeyudi/skillbench/internal/run"
	"github.com/fakeyudi/skillbench/internal/workspace"
)

var panelIcons = map[workspace.SidebarPanel]string{
	workspace.PanelFiles:    "F",
	workspace.PanelGraph:    "V",
	workspace.PanelTerminal: "$",
	workspace.PanelBuilder:  "B",
	workspace.PanelTester:   "T",
	workspace.PanelTestSets: "S",
	workspace.PanelAnalysis: "A",
}

var panelTitles = map[workspace.SidebarPanel]string{
	workspace.PanelFiles:    "Files",
	workspace.PanelGraph:    "Versions",
	workspace.PanelTerminal: "Terminal",
	workspace.PanelBuilder:  "Builder Threads",
	workspace.PanelTester:   "Test Threads",
	workspace.PanelTestSets: "Test Sets",
	workspace.PanelAnalysis: "Analysis",
}

// sidebarItem is one selectable row. Enter opens tab when it is set, or
// creates a thread when newThread is set.
type sidebarItem struct {
	label     string
	meta      string
	depth     int
	folder    bool
	active    bool
	tab       *workspace.Tab
	newThread workspace.TabType
}

func (m *Model) sidebarItems(st workspace.State) []sidebarItem {
	switch st.ActiveSidebarPanel {
	case workspace.PanelFiles:
		return m.fileItems()
	case workspace.PanelGraph:
		var items []sidebarItem
		for _, v := range m.ws.Versions.AllDescendingByNumber() {
			tab := workspace.VersionTab(v.ID, v.Name)
			items = append(items, sidebarItem{
				label:  v.Name,
				meta:   v.Date,
				active: v.Name == st.CurrentVersionName,
				tab:    &tab,
			})
		}
		return items
	case workspace.PanelTerminal:
		items := []sidebarItem{{label: "+ New session", tab: ptr(workspace.TerminalTab())}}
		for _, t := range st.Tabs {
			if t.Type == workspace.TabTerminal {
				items = append(items, sidebarItem{label: t.Title, meta: t.SessionID, tab: ptr(t), active: t.ID == st.ActiveTabID})
			}
		}
		return items
	case workspace.PanelBuilder:
		return m.threadItems(st, workspace.TabBuilderChat)
	case workspace.PanelTester:
		return m.threadItems(st, workspace.TabTesterRun)
	case workspace.PanelTestSets:
		tab, _ := workspace.NewDefaultTab(workspace.TabTestSetManager)
		return []sidebarItem{{label: "+ New test set", tab: &tab}}
	case workspace.PanelAnalysis:
		tab, _ := workspace.NewDefaultTab(workspace.TabAnalysisManager)
		return []sidebarItem{{label: "+ New analysis", tab: &tab}}
	}
	return nil
}

func (m *Model) fileItems() []sidebarItem {
	var items []sidebarItem
	var walk func(n *pathtree.Node, depth int)
	walk = func(n *pathtree.Node, depth int) {
		for _, c := range m.ws.Tree.FolderContents(n.Path) {
			item := sidebarItem{label: c.Name, depth: depth, folder: c.IsFolder()}
			if !c.IsFolder() {
				item.tab = ptr(workspace.EditorTab(c))
			}
			items = append(items, item)
			if c.IsFolder() {
				walk(c, depth+1)
			}
		}
	}
	walk(m.ws.Tree.Root(), 0)
	return items
}

func (m *Model) threadItems(st workspace.State, t workspace.TabType) []sidebarItem {
	active := ""
	if tab, ok := st.ActiveTab(); ok && tab.Type == t {
		active = tab.ThreadID
	}
	items := []sidebarItem{{label: "+ New thread", newThread: t}}
	now := m.now()
	for _, th := range m.store.Threads() {
		items = append(items, sidebarItem{
			label:  th.Name,
			meta:   fmt.Sprintf("%s · %s", th.Status, run.FormatTimeAgo(th.CreatedAt, now)),
			active: th.ID == active,
			tab:    ptr(workspace.ThreadTab(t, th.ID, th.Name)),
		})
	}
	return items
}

func (m *Model) renderIconStrip(st workspace.State) string {
	var sb strings.Builder
	for i, p := range workspace.Panels {
		label := panelIcons[p]
		if p == st.ActiveSidebarPanel {
			sb.WriteString(activeIconStyle.Render(label))
		} else {
			sb.WriteString(iconStyle.Render(label))
		}
		if i < len(workspace.Panels)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (m *Model) renderSidebar(st workspace.State, width, height int) string {
	var sb strings.Builder
	sb.WriteString(sectionHeader.Render(" "+panelTitles[st.ActiveSidebarPanel]) + "\n\n")
	items := m.sidebarItems(st)
	cursor := m.cursor[st.ActiveSidebarPanel]
	for i, it := range items {
		row := " " + strings.Repeat("  ", it.depth)
		if it.folder {
			row += "▾ " + it.label + "/"
		} else {
			row += it.label
		}
		if it.active {
			row += " ●"
		}
		if it.meta != "" {
			row += "  " + dimStyle.Render(it.meta)
		}
		if i == cursor && m.focus == focusSidebar {
			row = selectedRowStyle.Width(width - 1).Render(row)
		}
		sb.WriteString(row + "\n")
	}
	if len(items) == 0 {
		sb.WriteString(dimStyle.Render(" (empty)") + "\n")
	}
	return sidebarStyle.Width(width).Height(height).Render(strings.TrimRight(sb.String(), "\n"))
}

func ptr[T any](v T) *T { return &v }
