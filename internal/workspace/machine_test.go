package workspace_test

import (
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/fakeyudi/skillbench/internal/pathtree"
	"github.com/fakeyudi/skillbench/internal/workspace"
)

func editor(id, path string) workspace.Tab {
	return workspace.Tab{ID: id, Type: workspace.TabEditor, Title: path, Path: path, IsClosable: true}
}

func ids(s workspace.State) []string {
	out := make([]string, len(s.Tabs))
	for i, t := range s.Tabs {
		out[i] = t.ID
	}
	return out
}

func TestInitialState(t *testing.T) {
	s := workspace.New("").State()
	if s.ActiveSidebarPanel != workspace.PanelFiles {
		t.Errorf("panel = %s, want files", s.ActiveSidebarPanel)
	}
	if len(s.Tabs) != 0 || s.ActiveTabID != "" {
		t.Errorf("expected no tabs, got %v active=%q", ids(s), s.ActiveTabID)
	}
	if s.CurrentVersionName != "Version 8" {
		t.Errorf("version = %q, want Version 8", s.CurrentVersionName)
	}
	if got := workspace.New("Version 3").State().CurrentVersionName; got != "Version 3" {
		t.Errorf("configured version = %q", got)
	}
}

// Feature: skillbench, Property 1: editor tabs are de-duplicated by path
func TestOpenTabDedupesByPath(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		paths := rapid.SliceOfN(rapid.SampledFrom([]string{
			"/Skill.md", "/README.md", "/config.json", "/scripts/helpers.js", "/scripts/scraper.py",
		}), 1, 20).Draw(rt, "paths")

		m := workspace.New("")
		distinct := map[string]string{} // path -> id of the tab that holds it
		for i, p := range paths {
			// Every open uses a fresh id so only the path can match.
			m.OpenTab(editor(fmt.Sprintf("tab-%d", i), p))
			s := m.State()
			if _, seen := distinct[p]; !seen {
				distinct[p] = fmt.Sprintf("tab-%d", i)
			}
			if s.ActiveTabID != distinct[p] {
				rt.Fatalf("open %s: active = %s, want %s", p, s.ActiveTabID, distinct[p])
			}
		}
		if got := len(m.State().Tabs); got != len(distinct) {
			rt.Fatalf("tab count = %d, want %d distinct paths", got, len(distinct))
		}
	})
}

func TestOpenTabDedupesByIDWithoutPath(t *testing.T) {
	m := workspace.New("")
	term := workspace.TerminalTab()
	m.OpenTab(term)
	m.OpenTab(workspace.TerminalTab())
	m.OpenTab(term)
	s := m.State()
	if len(s.Tabs) != 2 {
		t.Fatalf("tabs = %v, want two distinct terminals", ids(s))
	}
	if s.ActiveTabID != term.ID {
		t.Errorf("active = %s, want reopened %s", s.ActiveTabID, term.ID)
	}
}

// Feature: skillbench, Property 2: closing the active tab activates its predecessor
func TestCloseActiveTabActivatesPredecessor(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(rt, "tabs")
		m := workspace.New("")
		for i := 0; i < n; i++ {
			m.OpenTab(editor(fmt.Sprintf("t%d", i), fmt.Sprintf("/f%d", i)))
		}
		victim := rapid.IntRange(0, n-1).Draw(rt, "victim")
		m.SetActiveTab(fmt.Sprintf("t%d", victim))
		before := m.State()

		m.CloseTab(before.ActiveTabID)
		after := m.State()

		if len(after.Tabs) != n-1 {
			rt.Fatalf("tab count = %d, want %d", len(after.Tabs), n-1)
		}
		if n == 1 {
			if after.ActiveTabID != "" {
				rt.Fatalf("closing the sole tab left active = %q", after.ActiveTabID)
			}
			return
		}
		want := before.Tabs[max(victim-1, 0)].ID
		if victim == 0 {
			want = before.Tabs[1].ID
		}
		if after.ActiveTabID != want {
			rt.Fatalf("closed index %d of %v: active = %s, want %s", victim, ids(before), after.ActiveTabID, want)
		}
	})
}

func TestCloseInactiveTabKeepsActive(t *testing.T) {
	m := workspace.New("")
	m.OpenTab(editor("a", "/a"))
	m.OpenTab(editor("b", "/b"))
	m.OpenTab(editor("c", "/c"))
	m.CloseTab("a")
	s := m.State()
	if s.ActiveTabID != "c" || strings.Join(ids(s), ",") != "b,c" {
		t.Errorf("tabs = %v active = %s", ids(s), s.ActiveTabID)
	}
}

func TestMissingIDsAreNoOps(t *testing.T) {
	m := workspace.New("")
	m.OpenTab(editor("a", "/a"))
	m.SelectSidebarPanel(workspace.PanelTester)
	before := m.State()

	m.CloseTab("nope")
	m.CloseTab("a")
	m.CloseTab("a")
	m.SetActiveTab("a")

	s := m.State()
	if len(s.Tabs) != 0 || s.ActiveTabID != "" {
		t.Errorf("tabs = %v active = %q", ids(s), s.ActiveTabID)
	}
	if s.ActiveSidebarPanel != before.ActiveSidebarPanel {
		t.Errorf("sidebar changed to %s on a stale id", s.ActiveSidebarPanel)
	}
}

func TestSetActiveTabResyncsSidebar(t *testing.T) {
	m := workspace.New("")
	m.OpenTab(editor("a", "/a"))
	m.OpenTab(workspace.ThreadTab(workspace.TabTesterRun, "thread-1", "Figma Blog Run"))
	m.OpenTab(workspace.VersionTab("v2", "Version 2"))

	cases := []struct {
		id   string
		want workspace.SidebarPanel
	}{
		{"a", workspace.PanelFiles},
		{"tester-run-thread-1", workspace.PanelTester},
		{"version-v2", workspace.PanelGraph},
	}
	for _, c := range cases {
		m.SelectSidebarPanel(workspace.PanelAnalysis)
		m.SetActiveTab(c.id)
		if got := m.State().ActiveSidebarPanel; got != c.want {
			t.Errorf("SetActiveTab(%s): panel = %s, want %s", c.id, got, c.want)
		}
	}
}

func TestCheckoutVersionOpensOneViewer(t *testing.T) {
	m := workspace.New("")
	m.CheckoutVersion("v6", "Version 6", "tabX")
	m.CheckoutVersion("v6", "Version 6", "tabX")

	s := m.State()
	if s.CurrentVersionName != "Version 6" {
		t.Errorf("version = %q, want Version 6", s.CurrentVersionName)
	}
	var viewers []workspace.Tab
	for _, tab := range s.Tabs {
		if tab.Type == workspace.TabVersionViewer && tab.VersionID == "v6" {
			viewers = append(viewers, tab)
		}
	}
	if len(viewers) != 1 {
		t.Fatalf("got %d v6 viewer tabs, want 1", len(viewers))
	}
	if viewers[0].ID != "version-v6" || viewers[0].Title != "Version 6" || s.ActiveTabID != "version-v6" {
		t.Errorf("viewer = %+v active = %s", viewers[0], s.ActiveTabID)
	}
}

func TestSubscribersReceiveSnapshots(t *testing.T) {
	m := workspace.New("")
	var got []workspace.State
	m.Subscribe(func(s workspace.State) { got = append(got, s) })

	m.OpenTab(editor("a", "/a"))
	m.UpdateCurrentVersion("Version 2")
	m.CloseTab("missing")

	if len(got) != 3 {
		t.Fatalf("got %d notifications, want 3", len(got))
	}
	if got[1].CurrentVersionName != "Version 2" {
		t.Errorf("second snapshot version = %q", got[1].CurrentVersionName)
	}
	got[0].Tabs[0].Title = "mutated"
	if tab, _ := m.State().ActiveTab(); tab.Title == "mutated" {
		t.Error("snapshot aliases machine state")
	}
}

func TestTabFactories(t *testing.T) {
	titles := map[workspace.TabType]string{
		workspace.TabEditor:          "Untitled",
		workspace.TabBuilderChat:     "New Skill Builder",
		workspace.TabTesterRun:       "New Skill Test",
		workspace.TabTerminal:        "Terminal",
		workspace.TabVersionViewer:   "Version Graph",
		workspace.TabTestSetManager:  "New Test Set",
		workspace.TabAnalysisManager: "New Analysis Set",
	}
	for typ, want := range titles {
		tab, err := workspace.NewDefaultTab(typ)
		if err != nil {
			t.Fatalf("NewDefaultTab(%s): %v", typ, err)
		}
		if tab.Title != want || !tab.IsClosable || !strings.HasPrefix(tab.ID, string(typ)+"-") {
			t.Errorf("NewDefaultTab(%s) = %+v", typ, tab)
		}
	}
	if _, err := workspace.NewDefaultTab("bogus"); err == nil {
		t.Error("NewDefaultTab(bogus) should fail")
	}

	term := workspace.TerminalTab()
	if term.SessionID != term.ID {
		t.Errorf("terminal session id %q != tab id %q", term.SessionID, term.ID)
	}

	node := &pathtree.Node{ID: "readme", Name: "README.md", Kind: pathtree.KindFile, Path: "/README.md", Content: "# hi", Language: "markdown"}
	ed := workspace.EditorTab(node)
	if ed.ID != "readme" || ed.Path != "/README.md" || ed.Language != "markdown" || ed.Title != "README.md" {
		t.Errorf("EditorTab = %+v", ed)
	}
}
