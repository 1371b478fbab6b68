// Package nav tracks which top-level view of the site is active and which
// entity, if any, is selected for a detail view. It is the state machine
// behind all navigation: handlers feed it events and act on the effects it
// returns.
package nav

// State is a top-level view of the site.
type State string

const (
	StateHome           State = "home"
	StateBlog           State = "blog"
	StateBlogPost       State = "blog-post"
	StatePortfolio      State = "portfolio"
	StateProjectDetail  State = "project-detail"
	StateAdminLogin     State = "admin-login"
	StateAdminDashboard State = "admin-dashboard"
)

// Valid reports whether s is a known view state.
func (s State) Valid() bool {
	switch s {
	case StateHome, StateBlog, StateBlogPost, StatePortfolio,
		StateProjectDetail, StateAdminLogin, StateAdminDashboard:
		return true
	}
	return false
}

// Dashboard modules. Orthogonal to the view state: a plain current
// selection with no transition guards, meaningful only while the dashboard
// is active.
const (
	ModuleOverview     = "overview"
	ModuleHero         = "hero"
	ModuleAbout        = "about"
	ModulePortfolio    = "portfolio"
	ModuleBlog         = "blog"
	ModuleTestimonials = "testimonials"
	ModuleSettings     = "settings"
)

// ValidModule reports whether name is a dashboard module.
func ValidModule(name string) bool {
	switch name {
	case ModuleOverview, ModuleHero, ModuleAbout, ModulePortfolio,
		ModuleBlog, ModuleTestimonials, ModuleSettings:
		return true
	}
	return false
}

// ScrollTarget describes the scroll side effect of a transition.
type ScrollTarget struct {
	// Top scrolls the page to the top.
	Top bool
	// Anchor names an element within the home view to scroll to.
	Anchor string
}

// Effect is what a transition asks the rendering side to do. Deferred
// means the scroll must wait for the new view's layout to mount first.
type Effect struct {
	Changed  bool
	Scroll   ScrollTarget
	Deferred bool
}

// Machine is the navigation state machine. One instance exists per
// browser session; the zero value is not usable, use New.
type Machine struct {
	state           State
	selectedPost    int64
	selectedProject int64
}

// New returns a machine in the initial home state.
func New() *Machine {
	return &Machine{state: StateHome}
}

// Restore rebuilds a machine from previously serialized state, falling
// back to home when the state is unknown.
func Restore(state State, selectedPost, selectedProject int64) *Machine {
	if !state.Valid() {
		state = StateHome
	}
	return &Machine{state: state, selectedPost: selectedPost, selectedProject: selectedProject}
}

// State returns the active view.
func (m *Machine) State() State { return m.state }

// SelectedPost returns the stashed post id. Only meaningful while the
// machine is in the blog-post state; it is deliberately not cleared on
// exit, so callers must treat it as stale anywhere else.
func (m *Machine) SelectedPost() int64 { return m.selectedPost }

// SelectedProject returns the stashed project id, with the same staleness
// caveat as SelectedPost.
func (m *Machine) SelectedProject() int64 { return m.selectedProject }

// Navigate handles a navigation event to home, blog, portfolio or the
// admin login. anchor is only honored for home.
func (m *Machine) Navigate(target State, anchor string) Effect {
	// Leaving a detail view for its listing is a pop, not a fresh push.
	if target == StatePortfolio && m.state == StateProjectDetail {
		m.state = StatePortfolio
		return Effect{Changed: true, Scroll: ScrollTarget{Top: true}}
	}
	if target == StateBlog && m.state == StateBlogPost {
		m.state = StateBlog
		return Effect{Changed: true, Scroll: ScrollTarget{Top: true}}
	}

	var eff Effect
	if target != m.state {
		m.state = target
		eff.Changed = true
		eff.Scroll = ScrollTarget{Top: true}
	}

	if target == StateHome && anchor != "" {
		if anchor == "#" {
			eff.Scroll = ScrollTarget{Top: true}
		} else {
			eff.Scroll = ScrollTarget{Anchor: anchor}
		}
		// When the view also changed, the anchor target does not exist
		// until the home layout mounts, so the scroll is deferred.
		eff.Deferred = eff.Changed
	}
	return eff
}

// SelectPost stashes the selection and enters the blog-post view.
func (m *Machine) SelectPost(id int64) Effect {
	m.selectedPost = id
	changed := m.state != StateBlogPost
	m.state = StateBlogPost
	return Effect{Changed: changed, Scroll: ScrollTarget{Top: true}}
}

// SelectProject stashes the selection and enters the project-detail view.
func (m *Machine) SelectProject(id int64) Effect {
	m.selectedProject = id
	changed := m.state != StateProjectDetail
	m.state = StateProjectDetail
	return Effect{Changed: changed, Scroll: ScrollTarget{Top: true}}
}

// SessionEstablished is the reactive transition fired when the operator's
// session flips from absent to present. It only moves the machine off the
// login screen; in any other state it is a no-op.
func (m *Machine) SessionEstablished() Effect {
	if m.state != StateAdminLogin {
		return Effect{}
	}
	m.state = StateAdminDashboard
	return Effect{Changed: true}
}

// ExitDashboard leaves the admin area for the public home view.
func (m *Machine) ExitDashboard() Effect {
	if m.state == StateHome {
		return Effect{}
	}
	m.state = StateHome
	return Effect{Changed: true, Scroll: ScrollTarget{Top: true}}
}
