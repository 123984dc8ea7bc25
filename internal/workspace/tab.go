// Package workspace owns the open tabs, the active sidebar panel, and the
// currently checked-out version of a skill workspace.
package workspace

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/fakeyudi/skillbench/internal/pathtree"
)

// TabType determines what a tab shows in the content area.
type TabType string

const (
	TabEditor          TabType = "editor"
	TabVersionViewer   TabType = "version-viewer"
	TabTerminal        TabType = "terminal"
	TabBuilderChat     TabType = "builder-chat"
	TabTesterRun       TabType = "tester-run"
	TabTestSetManager  TabType = "testset-manager"
	TabAnalysisManager TabType = "analysis-manager"
)

// TabTypes lists every tab type in sidebar order.
var TabTypes = []TabType{
	TabEditor, TabVersionViewer, TabTerminal, TabBuilderChat,
	TabTesterRun, TabTestSetManager, TabAnalysisManager,
}

// SidebarPanel selects the content of the sidebar.
type SidebarPanel string

const (
	PanelFiles    SidebarPanel = "files"
	PanelGraph    SidebarPanel = "graph"
	PanelTerminal SidebarPanel = "terminal"
	PanelBuilder  SidebarPanel = "builder"
	PanelTester   SidebarPanel = "tester"
	PanelTestSets SidebarPanel = "testsets"
	PanelAnalysis SidebarPanel = "analysis"
)

// Panels lists the sidebar panels in icon-strip order.
var Panels = []SidebarPanel{
	PanelFiles, PanelGraph, PanelTerminal, PanelBuilder,
	PanelTester, PanelTestSets, PanelAnalysis,
}

var tabPanels = map[TabType]SidebarPanel{
	TabEditor:          PanelFiles,
	TabVersionViewer:   PanelGraph,
	TabTerminal:        PanelTerminal,
	TabBuilderChat:     PanelBuilder,
	TabTesterRun:       PanelTester,
	TabTestSetManager:  PanelTestSets,
	TabAnalysisManager: PanelAnalysis,
}

// Panel returns the sidebar panel associated with a tab type.
func (t TabType) Panel() SidebarPanel {
	return tabPanels[t]
}

// Tab is one open view in the content area. Only the payload fields that
// belong to Type are set.
type Tab struct {
	ID         string
	Type       TabType
	Title      string
	IsClosable bool

	// editor
	Path     string
	Content  string
	Language string
	// version-viewer
	VersionID string
	// terminal
	SessionID string
	// builder-chat, tester-run
	ThreadID string
	// testset-manager, analysis-manager
	SetID string
}

var defaultTitles = map[TabType]string{
	TabEditor:          "Untitled",
	TabVersionViewer:   "Version Graph",
	TabTerminal:        "Terminal",
	TabBuilderChat:     "New Skill Builder",
	TabTesterRun:       "New Skill Test",
	TabTestSetManager:  "New Test Set",
	TabAnalysisManager: "New Analysis Set",
}

func newTabID(t TabType) string {
	return fmt.Sprintf("%s-%s", t, uuid.NewString())
}

// NewDefaultTab returns an empty closable tab of type t with a fresh id.
func NewDefaultTab(t TabType) (Tab, error) {
	title, ok := defaultTitles[t]
	if !ok {
		return Tab{}, fmt.Errorf("unknown tab type %q", t)
	}
	tab := Tab{ID: newTabID(t), Type: t, Title: title, IsClosable: true}
	if t == TabTerminal {
		tab.SessionID = tab.ID
	}
	return tab, nil
}

// EditorTab returns a tab showing the file n. The node id doubles as the tab
// id; opening the same path twice still yields one tab.
func EditorTab(n *pathtree.Node) Tab {
	id := n.ID
	if id == "" {
		id = newTabID(TabEditor)
	}
	return Tab{
		ID:         id,
		Type:       TabEditor,
		Title:      n.Name,
		IsClosable: true,
		Path:       n.Path,
		Content:    n.Content,
		Language:   n.Language,
	}
}

// VersionTab returns the viewer tab for a version. Its id is derived from the
// version id so repeated checkouts land on the same tab.
func VersionTab(versionID, versionName string) Tab {
	return Tab{
		ID:         "version-" + versionID,
		Type:       TabVersionViewer,
		Title:      versionName,
		IsClosable: true,
		VersionID:  versionID,
	}
}

// ThreadTab returns a builder-chat or tester-run tab bound to a run thread.
func ThreadTab(t TabType, threadID, name string) Tab {
	return Tab{
		ID:         fmt.Sprintf("%s-%s", t, threadID),
		Type:       t,
		Title:      name,
		IsClosable: true,
		ThreadID:   threadID,
	}
}

// TerminalTab returns a fresh terminal tab with its own session id.
func TerminalTab() Tab {
	tab, _ := NewDefaultTab(TabTerminal)
	return tab
}
