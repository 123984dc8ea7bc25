// Package tui provides the Bubble Tea workspace shell: an icon strip, a
// sidebar, tabbed content, and a status bar over a loaded skill workspace.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"pkt.systems/pslog"

	"github.com/fakeyudi/skillbench/internal/pathtree"
	"github.com/fakeyudi/skillbench/internal/run"
	"github.com/fakeyudi/skillbench/internal/seed"
	"github.com/fakeyudi/skillbench/internal/terminal"
	"github.com/fakeyudi/skillbench/internal/workspace"
)

const (
	iconWidth    = 3
	sidebarWidth = 30
)

// Options configures the workspace shell.
type Options struct {
	Workspace    *seed.Workspace
	Store        *run.Store
	Executor     *run.Executor
	Models       []string
	DefaultModel string
	// Now supplies the clock for relative times; nil uses time.Now.
	Now func() time.Time
}

type focus int

const (
	focusSidebar focus = iota
	focusContent
	focusInput
)

type browserState struct {
	dir    string
	file   string
	cursor int
}

type activeRun struct {
	ctrl    *run.Controller
	updates chan tea.Msg
}

type runUpdateMsg struct{ threadID string }

type runDoneMsg struct {
	threadID string
	session  run.Session
	err      error
}

// Model is the root Bubble Tea model for the workspace shell.
type Model struct {
	ctx     context.Context
	ws      *seed.Workspace
	machine *workspace.Machine
	store   *run.Store
	exec    *run.Executor
	models  []string
	model   int
	now     func() time.Time

	focus      focus
	expanded   bool
	notice     string
	shownTab   string
	cursor     map[workspace.SidebarPanel]int
	browsers   map[string]*browserState
	terminals  map[string]*terminal.Session
	scrollback map[string][]string
	runs       map[string]*activeRun

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	width    int
	height   int
	ready    bool
}

// New creates the shell. ctx carries the logger and bounds every run started
// from the UI.
func New(ctx context.Context, opts Options) Model {
	machine := workspace.New(opts.Workspace.CurrentVersion)
	log := pslog.Ctx(ctx)
	machine.Subscribe(func(s workspace.State) {
		log.Debug("workspace changed", "panel", s.ActiveSidebarPanel, "tab", s.ActiveTabID, "tabs", len(s.Tabs), "version", s.CurrentVersionName)
	})

	models := opts.Models
	if len(models) == 0 {
		models = []string{opts.DefaultModel}
	}
	sel := 0
	for i, name := range models {
		if name == opts.DefaultModel {
			sel = i
		}
	}

	in := textinput.New()
	in.Prompt = "> "
	in.CharLimit = 2000
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = statusRunningStyle

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return Model{
		ctx:        ctx,
		ws:         opts.Workspace,
		machine:    machine,
		store:      opts.Store,
		exec:       opts.Executor,
		models:     models,
		model:      sel,
		now:        now,
		cursor:     make(map[workspace.SidebarPanel]int),
		browsers:   make(map[string]*browserState),
		terminals:  make(map[string]*terminal.Session),
		scrollback: make(map[string][]string),
		runs:       make(map[string]*activeRun),
		input:      in,
		spinner:    sp,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(0, 0)
			m.ready = true
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		m.refresh()
		return m, cmd

	case runUpdateMsg:
		m.refresh()
		if ar := m.runs[msg.threadID]; ar != nil {
			return m, waitForRun(ar.updates)
		}
		return m, nil

	case runDoneMsg:
		delete(m.runs, msg.threadID)
		switch {
		case msg.err != nil:
			m.notice = "Run rejected: " + msg.err.Error()
		case msg.session.Cancelled:
			m.notice = "Run cancelled"
		case msg.session.Status == run.StatusFailed:
			m.notice = "Run failed"
		default:
			m.notice = "Run completed"
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if len(m.runs) == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		m.cancelRuns()
		return tea.Quit
	}
	if m.focus == focusInput {
		return m.handleInputKey(msg)
	}
	m.notice = ""
	st := m.machine.State()
	tab, hasTab := st.ActiveTab()

	switch key {
	case "q":
		m.cancelRuns()
		return tea.Quit
	case "1", "2", "3", "4", "5", "6", "7":
		m.machine.SelectSidebarPanel(workspace.Panels[key[0]-'1'])
		m.focus = focusSidebar
	case "tab":
		if m.focus == focusSidebar {
			m.focus = focusContent
		} else {
			m.focus = focusSidebar
		}
	case "]":
		m.cycleTab(st, 1)
	case "[":
		m.cycleTab(st, -1)
	case "x":
		if hasTab && tab.IsClosable {
			m.machine.CloseTab(tab.ID)
		}
	case "n":
		m.newForPanel(st.ActiveSidebarPanel)
	case "e":
		m.expanded = !m.expanded
	case "m":
		m.model = (m.model + 1) % len(m.models)
		m.notice = "Model: " + m.models[m.model]
	case "i":
		if hasTab && acceptsInput(tab.Type) {
			m.focusInput()
		}
	case "ctrl+t":
		if hasTab && tab.Type == workspace.TabTerminal {
			m.toggleEnv(tab)
		}
	case "c":
		if ar := m.activeRunFor(tab, hasTab); ar != nil {
			ar.ctrl.Cancel()
			m.notice = "Cancelling…"
		}
	case "p":
		if ar := m.activeRunFor(tab, hasTab); ar != nil {
			if ar.ctrl.IsPaused() {
				ar.ctrl.Resume()
				m.notice = "Resumed"
			} else {
				ar.ctrl.Pause()
				m.notice = "Paused"
			}
		}
	case "o":
		if hasTab && tab.Type == workspace.TabVersionViewer {
			m.checkout(tab, st)
		}
	default:
		if m.focus == focusSidebar {
			m.handleSidebarKey(st, key)
			return nil
		}
		return m.handleContentKey(st, msg)
	}
	return nil
}

func (m *Model) handleSidebarKey(st workspace.State, key string) {
	items := m.sidebarItems(st)
	cur := min(m.cursor[st.ActiveSidebarPanel], max(len(items)-1, 0))
	switch key {
	case "up", "k":
		if cur > 0 {
			cur--
		}
	case "down", "j":
		if cur < len(items)-1 {
			cur++
		}
	case "enter", " ":
		if cur < len(items) {
			m.activate(items[cur])
		}
	}
	m.cursor[st.ActiveSidebarPanel] = cur
}

func (m *Model) activate(it sidebarItem) {
	switch {
	case it.newThread != "":
		m.newThread(it.newThread)
	case it.tab != nil:
		m.machine.OpenTab(*it.tab)
		m.focus = focusContent
	}
}

func (m *Model) handleContentKey(st workspace.State, msg tea.KeyMsg) tea.Cmd {
	tab, ok := st.ActiveTab()
	if ok && tab.Type == workspace.TabVersionViewer {
		if m.browse(tab, msg.String()) {
			return nil
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

// browse moves through the version viewer's folder listing. It reports
// whether the key was consumed.
func (m *Model) browse(tab workspace.Tab, key string) bool {
	b := m.browser(tab.ID)
	entries := m.ws.Tree.FolderContents(b.dir)
	switch key {
	case "up", "k":
		if b.cursor > 0 {
			b.cursor--
		}
	case "down", "j":
		if b.cursor < len(entries)-1 {
			b.cursor++
		}
	case "enter", " ":
		if b.cursor >= len(entries) {
			return true
		}
		n := entries[b.cursor]
		if n.IsFolder() {
			b.dir, b.file, b.cursor = n.Path, "", 0
		} else {
			b.file = n.Path
		}
	case "backspace", "left", "h":
		parent := pathtree.ParentPath(b.dir)
		if parent == "" {
			parent = m.ws.Tree.Root().Path
		}
		b.dir, b.file, b.cursor = parent, "", 0
	default:
		return false
	}
	return true
}

func (m *Model) browser(tabID string) *browserState {
	b := m.browsers[tabID]
	if b == nil {
		b = &browserState{dir: m.ws.Tree.Root().Path}
		m.browsers[tabID] = b
	}
	return b
}

func (m *Model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	tab, ok := m.machine.State().ActiveTab()
	if !ok || !acceptsInput(tab.Type) {
		m.blurInput()
		return nil
	}
	switch msg.String() {
	case "esc":
		m.blurInput()
		return nil
	case "enter":
		line := m.input.Value()
		m.input.Reset()
		if tab.Type == workspace.TabTerminal {
			m.submitTerminal(tab, line)
			return nil
		}
		return m.submitPrompt(tab, line)
	case "up", "down":
		if tab.Type != workspace.TabTerminal {
			return nil
		}
		sess := m.terminalSession(tab)
		recall := sess.History.Previous
		if msg.String() == "down" {
			recall = sess.History.Next
		}
		if line, ok := recall(); ok {
			m.input.SetValue(line)
			m.input.CursorEnd()
		}
		return nil
	case "ctrl+t":
		if tab.Type == workspace.TabTerminal {
			m.toggleEnv(tab)
		}
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func acceptsInput(t workspace.TabType) bool {
	return t == workspace.TabTerminal || t == workspace.TabBuilderChat || t == workspace.TabTesterRun
}

func (m *Model) focusInput() {
	m.focus = focusInput
	m.input.Focus()
}

func (m *Model) blurInput() {
	m.focus = focusContent
	m.input.Blur()
}

func (m *Model) cycleTab(st workspace.State, delta int) {
	if len(st.Tabs) == 0 {
		return
	}
	i := 0
	for j, t := range st.Tabs {
		if t.ID == st.ActiveTabID {
			i = j
		}
	}
	i = (i + delta + len(st.Tabs)) % len(st.Tabs)
	m.machine.SetActiveTab(st.Tabs[i].ID)
}

func (m *Model) newForPanel(p workspace.SidebarPanel) {
	switch p {
	case workspace.PanelBuilder:
		m.newThread(workspace.TabBuilderChat)
	case workspace.PanelTester:
		m.newThread(workspace.TabTesterRun)
	case workspace.PanelTerminal:
		m.machine.OpenTab(workspace.TerminalTab())
		m.focusInput()
	case workspace.PanelTestSets:
		tab, _ := workspace.NewDefaultTab(workspace.TabTestSetManager)
		m.machine.OpenTab(tab)
	case workspace.PanelAnalysis:
		tab, _ := workspace.NewDefaultTab(workspace.TabAnalysisManager)
		m.machine.OpenTab(tab)
	}
}

func (m *Model) newThread(t workspace.TabType) {
	th := m.store.CreateThread("")
	m.machine.OpenTab(workspace.ThreadTab(t, th.ID, th.Name))
	m.focusInput()
}

func (m *Model) checkout(tab workspace.Tab, st workspace.State) {
	rec, ok := m.ws.Versions.ByID(tab.VersionID)
	if !ok {
		return
	}
	if rec.Name == st.CurrentVersionName {
		m.notice = rec.Name + " is already checked out"
		return
	}
	m.machine.CheckoutVersion(rec.ID, rec.Name, tab.ID)
	m.notice = "Checked out " + rec.Name
	pslog.Ctx(m.ctx).Info("version checked out", "version", rec.ID, "name", rec.Name)
}

// ── Terminal ──────────────────────────────────────────────────────────────────

func (m *Model) terminalSession(tab workspace.Tab) *terminal.Session {
	id := tab.SessionID
	if id == "" {
		id = tab.ID
	}
	if s := m.terminals[id]; s != nil {
		return s
	}
	s := terminal.NewSession(id, terminal.EnvBash)
	s.Handler.Now = m.now
	for _, n := range m.ws.Tree.FolderContents(m.ws.Tree.Root().Path) {
		name := n.Name
		if n.IsFolder() {
			name += "/"
		}
		s.Handler.Listing = append(s.Handler.Listing, name)
	}
	m.terminals[id] = s
	m.scrollback[id] = []string{"Skill Builder Terminal", `Type "help" for available commands`, ""}
	return s
}

func (m *Model) submitTerminal(tab workspace.Tab, line string) {
	sess := m.terminalSession(tab)
	lines := append(m.scrollback[sess.ID], sess.Prompt()+line)
	out := sess.Submit(line)
	switch {
	case out == terminal.ClearScreen:
		lines = nil
	case out != "":
		lines = append(lines, strings.Split(out, "\n")...)
	}
	m.scrollback[sess.ID] = lines
}

func (m *Model) toggleEnv(tab workspace.Tab) {
	sess := m.terminalSession(tab)
	env := terminal.EnvNode
	if sess.Env == terminal.EnvNode {
		env = terminal.EnvBash
	}
	m.scrollback[sess.ID] = append(m.scrollback[sess.ID], sess.SwitchEnv(env), `Type "help" for available commands`, "")
}

// ── Runs ──────────────────────────────────────────────────────────────────────

func (m *Model) activeRunFor(tab workspace.Tab, ok bool) *activeRun {
	if !ok || tab.ThreadID == "" {
		return nil
	}
	return m.runs[tab.ThreadID]
}

func (m *Model) submitPrompt(tab workspace.Tab, line string) tea.Cmd {
	prompt := strings.TrimSpace(line)
	if prompt == "" {
		return nil
	}
	if _, busy := m.runs[tab.ThreadID]; busy {
		m.notice = "A run is already in progress on this thread"
		return nil
	}
	return m.startRun(tab.ThreadID, prompt)
}

// startRun executes the prompt on a goroutine and feeds every observer
// notification back into the program through a buffered channel.
func (m *Model) startRun(threadID, prompt string) tea.Cmd {
	ctrl := run.NewController()
	// created + one per step + final + done
	updates := make(chan tea.Msg, run.SynthesizedSteps+4)
	m.runs[threadID] = &activeRun{ctrl: ctrl, updates: updates}
	model := m.models[m.model]
	exec, ctx := m.exec, m.ctx
	go func() {
		final, err := exec.Execute(ctx, ctrl, threadID, prompt, model, func(run.Session) {
			updates <- runUpdateMsg{threadID: threadID}
		})
		updates <- runDoneMsg{threadID: threadID, session: final, err: err}
		close(updates)
	}()
	return tea.Batch(waitForRun(updates), m.spinner.Tick)
}

func waitForRun(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (m *Model) cancelRuns() {
	for _, ar := range m.runs {
		ar.ctrl.Cancel()
	}
}

// ── Layout ────────────────────────────────────────────────────────────────────

func (m *Model) contentWidth() int {
	w := m.width - iconWidth - sidebarWidth - 1
	if w < 20 {
		w = 20
	}
	return w
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	st := m.machine.State()
	tab, hasTab := st.ActiveTab()
	// title(1) + tab bar(1) + status bar(1)
	h := m.height - 3
	if hasTab && acceptsInput(tab.Type) {
		h--
	}
	if h < 1 {
		h = 1
	}
	m.viewport.Width = m.contentWidth()
	m.viewport.Height = h
	m.viewport.SetContent(m.renderContent(st))
	switch {
	case hasTab && acceptsInput(tab.Type):
		m.viewport.GotoBottom()
	case tab.ID != m.shownTab:
		m.viewport.GotoTop()
	}
	m.shownTab = tab.ID
	m.input.Width = m.contentWidth() - 4
	if hasTab && tab.Type == workspace.TabTerminal {
		m.input.Prompt = m.terminalSession(tab).Prompt()
	} else {
		m.input.Prompt = "> "
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}
	st := m.machine.State()
	tab, hasTab := st.ActiveTab()

	title := titleStyle.Width(m.width).Render("  skillbench  " + m.ws.Source)

	bodyHeight := m.height - 2
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	icons := lipgloss.NewStyle().Height(bodyHeight).Render(m.renderIconStrip(st))
	side := m.renderSidebar(st, sidebarWidth, bodyHeight)

	parts := []string{m.renderTabBar(st), m.viewport.View()}
	if hasTab && acceptsInput(tab.Type) {
		parts = append(parts, " "+m.input.View())
	}
	content := lipgloss.NewStyle().Width(m.contentWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	body := lipgloss.JoinHorizontal(lipgloss.Top, icons, side, content)

	return lipgloss.JoinVertical(lipgloss.Left, title, body, m.renderStatusBar(st, tab, hasTab))
}

func (m *Model) renderTabBar(st workspace.State) string {
	var parts []string
	for i, t := range st.Tabs {
		label := " " + t.Title + " "
		if t.ID == st.ActiveTabID {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, inactiveTabStyle.Render(label))
		}
		if i < len(st.Tabs)-1 {
			parts = append(parts, tabSepStyle.Render("│"))
		}
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Width(m.contentWidth()).
		MaxWidth(m.contentWidth()).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
}

func (m *Model) renderStatusBar(st workspace.State, tab workspace.Tab, hasTab bool) string {
	left := versionBadgeStyle.Render(st.CurrentVersionName) + " "
	hint := m.notice
	if hint == "" {
		hint = m.hint(tab, hasTab)
	}
	left += hint
	right := ""
	if hasTab && (tab.Type == workspace.TabBuilderChat || tab.Type == workspace.TabTesterRun) {
		right = "model: " + m.models[m.model] + "  "
	}
	right += fmt.Sprintf("%3.0f%%", m.viewport.ScrollPercent()*100)
	pad := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if pad < 1 {
		pad = 1
	}
	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", pad) + right)
}

func (m *Model) hint(tab workspace.Tab, hasTab bool) string {
	switch m.focus {
	case focusInput:
		if tab.Type == workspace.TabTerminal {
			return "enter run  ↑/↓ history  ctrl+t bash/node  esc leave"
		}
		return "enter submit  esc leave"
	case focusSidebar:
		return "↑/↓ select  enter open  n new  1-7 panel  tab content  q quit"
	}
	h := "[/] tab  x close  tab sidebar"
	if !hasTab {
		return h
	}
	switch tab.Type {
	case workspace.TabVersionViewer:
		h += "  enter open  ⌫ up  o checkout"
	case workspace.TabTerminal:
		h += "  i type  ctrl+t bash/node"
	case workspace.TabBuilderChat, workspace.TabTesterRun:
		h += "  i prompt  m model  e expand  c cancel  p pause"
	}
	return h
}

// Run starts the workspace shell.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
