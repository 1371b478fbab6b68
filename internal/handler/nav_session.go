package handler

import (
	"net/http"
	"strconv"

	"github.com/magma-studio/atelier/internal/nav"
	"github.com/magma-studio/atelier/internal/session"
)

// Session keys for the per-visitor navigation machine. The machine lives
// in the session so each browser keeps its own view state across requests.
const (
	sessionNavState       = "nav_state"
	sessionSelectedPost   = "nav_selected_post"
	sessionSelectedProj   = "nav_selected_project"
	sessionDashboardModul = "nav_dashboard_module"
)

// loadMachine rebuilds the visitor's navigation machine from the session.
// A fresh visitor gets a machine in the home state.
func loadMachine(r *http.Request, sm session.Manager) *nav.Machine {
	ctx := r.Context()
	state := nav.State(sm.GetString(ctx, sessionNavState))
	post, _ := strconv.ParseInt(sm.GetString(ctx, sessionSelectedPost), 10, 64)
	proj, _ := strconv.ParseInt(sm.GetString(ctx, sessionSelectedProj), 10, 64)
	return nav.Restore(state, post, proj)
}

// saveMachine writes the machine back to the session.
func saveMachine(r *http.Request, sm session.Manager, m *nav.Machine) {
	ctx := r.Context()
	sm.Put(ctx, sessionNavState, string(m.State()))
	sm.Put(ctx, sessionSelectedPost, strconv.FormatInt(m.SelectedPost(), 10))
	sm.Put(ctx, sessionSelectedProj, strconv.FormatInt(m.SelectedProject(), 10))
}

// loadModule returns the visitor's active dashboard module, defaulting to
// the overview. The module is plain selection state with no guards.
func loadModule(r *http.Request, sm session.Manager) string {
	if m := r.URL.Query().Get("module"); nav.ValidModule(m) {
		sm.Put(r.Context(), sessionDashboardModul, m)
		return m
	}
	if m := sm.GetString(r.Context(), sessionDashboardModul); nav.ValidModule(m) {
		return m
	}
	return nav.ModuleOverview
}
