package workspace

// DefaultVersionName is the checked-out version before any checkout.
const DefaultVersionName = "Version 8"

// State is the aggregate the workspace views render.
type State struct {
	ActiveSidebarPanel SidebarPanel
	Tabs               []Tab
	ActiveTabID        string // empty when no tab is open
	CurrentVersionName string
}

// ActiveTab returns the active tab, if any.
func (s State) ActiveTab() (Tab, bool) {
	if i := s.indexOf(s.ActiveTabID); i >= 0 {
		return s.Tabs[i], true
	}
	return Tab{}, false
}

func (s State) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, t := range s.Tabs {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s State) clone() State {
	s.Tabs = append([]Tab(nil), s.Tabs...)
	return s
}

// Action is a user intent the machine can apply. The set is closed.
type Action interface{ action() }

type (
	SelectSidebarPanel struct{ Panel SidebarPanel }
	OpenTab            struct{ Tab Tab }
	CloseTab           struct{ ID string }
	SetActiveTab       struct{ ID string }

	UpdateCurrentVersion struct{ Name string }

	// CheckoutVersion records the version as checked out and opens its
	// viewer tab. OriginTabID names the tab the request came from and is
	// informational only.
	CheckoutVersion struct {
		VersionID   string
		VersionName string
		OriginTabID string
	}
)

func (SelectSidebarPanel) action()   {}
func (OpenTab) action()              {}
func (CloseTab) action()             {}
func (SetActiveTab) action()         {}
func (UpdateCurrentVersion) action() {}
func (CheckoutVersion) action()      {}

// Machine applies actions to the workspace state. It is driven from a single
// goroutine; each Dispatch runs to completion before the next.
type Machine struct {
	state       State
	subscribers []func(State)
}

// New returns a machine with no open tabs, the files panel selected, and
// version checked out. An empty version falls back to DefaultVersionName.
func New(version string) *Machine {
	if version == "" {
		version = DefaultVersionName
	}
	return &Machine{state: State{
		ActiveSidebarPanel: PanelFiles,
		CurrentVersionName: version,
	}}
}

// State returns a snapshot of the current state.
func (m *Machine) State() State { return m.state.clone() }

// Subscribe registers fn to receive a snapshot after every Dispatch.
func (m *Machine) Subscribe(fn func(State)) {
	m.subscribers = append(m.subscribers, fn)
}

// Dispatch applies a to the state and notifies subscribers. References to
// tabs that do not exist are ignored.
func (m *Machine) Dispatch(a Action) {
	switch a := a.(type) {
	case SelectSidebarPanel:
		m.state.ActiveSidebarPanel = a.Panel
	case OpenTab:
		m.openTab(a.Tab)
	case CloseTab:
		m.closeTab(a.ID)
	case SetActiveTab:
		m.setActiveTab(a.ID)
	case UpdateCurrentVersion:
		m.state.CurrentVersionName = a.Name
	case CheckoutVersion:
		m.state.CurrentVersionName = a.VersionName
		m.openTab(VersionTab(a.VersionID, a.VersionName))
	default:
		panic("workspace: unhandled action")
	}
	snap := m.State()
	for _, fn := range m.subscribers {
		fn(snap)
	}
}

func (m *Machine) openTab(t Tab) {
	// Files are identified by path, whatever id the caller chose.
	if t.Path != "" {
		for _, existing := range m.state.Tabs {
			if existing.Path == t.Path {
				m.state.ActiveTabID = existing.ID
				return
			}
		}
	}
	if i := m.state.indexOf(t.ID); i >= 0 {
		m.state.ActiveTabID = t.ID
		return
	}
	m.state.Tabs = append(m.state.Tabs, t)
	m.state.ActiveTabID = t.ID
}

func (m *Machine) closeTab(id string) {
	i := m.state.indexOf(id)
	if i < 0 {
		return
	}
	tabs := append(m.state.Tabs[:i:i], m.state.Tabs[i+1:]...)
	m.state.Tabs = tabs
	switch {
	case len(tabs) == 0:
		m.state.ActiveTabID = ""
	case id == m.state.ActiveTabID:
		m.state.ActiveTabID = tabs[max(i-1, 0)].ID
	}
}

func (m *Machine) setActiveTab(id string) {
	i := m.state.indexOf(id)
	if i < 0 {
		return
	}
	m.state.ActiveTabID = id
	m.state.ActiveSidebarPanel = m.state.Tabs[i].Type.Panel()
}

// Convenience wrappers used by view code.

func (m *Machine) SelectSidebarPanel(p SidebarPanel) { m.Dispatch(SelectSidebarPanel{Panel: p}) }
func (m *Machine) OpenTab(t Tab)                     { m.Dispatch(OpenTab{Tab: t}) }
func (m *Machine) CloseTab(id string)                { m.Dispatch(CloseTab{ID: id}) }
func (m *Machine) SetActiveTab(id string)            { m.Dispatch(SetActiveTab{ID: id}) }
func (m *Machine) UpdateCurrentVersion(name string)  { m.Dispatch(UpdateCurrentVersion{Name: name}) }

func (m *Machine) CheckoutVersion(versionID, versionName, originTabID string) {
	m.Dispatch(CheckoutVersion{VersionID: versionID, VersionName: versionName, OriginTabID: originTabID})
}
