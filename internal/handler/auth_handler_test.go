//go:build unit

package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/magma-studio/atelier/internal/middleware"
	"github.com/magma-studio/atelier/internal/nav"
	"github.com/magma-studio/atelier/internal/session"
)

// mockSessionManager is an in-memory implementation of the session.Manager
// interface for handler tests.
type mockSessionManager struct {
	values        map[string]string
	destroyCalled bool
}

var _ session.Manager = (*mockSessionManager)(nil)

func newMockSessionManager() *mockSessionManager {
	return &mockSessionManager{values: make(map[string]string)}
}

func (m *mockSessionManager) LoadAndSave(next http.Handler) http.Handler { return next }
func (m *mockSessionManager) Put(ctx context.Context, key string, val interface{}) {
	m.values[key] = fmt.Sprintf("%v", val)
}
func (m *mockSessionManager) GetString(ctx context.Context, key string) string {
	return m.values[key]
}
func (m *mockSessionManager) PopString(ctx context.Context, key string) string {
	v := m.values[key]
	delete(m.values, key)
	return v
}
func (m *mockSessionManager) Exists(ctx context.Context, key string) bool {
	_, ok := m.values[key]
	return ok
}
func (m *mockSessionManager) Remove(ctx context.Context, key string) { delete(m.values, key) }
func (m *mockSessionManager) Destroy(ctx context.Context) error {
	m.destroyCalled = true
	m.values = make(map[string]string)
	return nil
}

func TestLogoutHandlerDestroysSession(t *testing.T) {
	mockSession := newMockSessionManager()
	mockSession.values[middleware.SessionUserKey] = `{"username":"admin","role":"admin"}`
	mockSession.values[sessionNavState] = string(nav.StateAdminDashboard)

	// The authenticator, OIDC client, content service and view are not
	// used by the logout path.
	authHandler := NewAuthHandler(nil, nil, mockSession, nil, nil, nil)

	req := httptest.NewRequest("POST", "/admin/logout", nil)
	rr := httptest.NewRecorder()

	if appErr := authHandler.handleLogout(rr, req); appErr != nil {
		t.Fatalf("handleLogout returned error: %+v", appErr)
	}

	if !mockSession.destroyCalled {
		t.Error("expected session.Destroy to be called, but it wasn't")
	}
	if rr.Code != http.StatusFound {
		t.Errorf("want status code %d; got %d", http.StatusFound, rr.Code)
	}
	location, err := rr.Result().Location()
	if err != nil {
		t.Fatalf("could not get redirect location: %v", err)
	}
	if location.Path != "/" {
		t.Errorf("want redirect to '/'; got '%s'", location.Path)
	}
	// The navigation machine must land back on the public home view.
	if got := mockSession.values[sessionNavState]; got != string(nav.StateHome) {
		t.Errorf("want nav state %q after logout; got %q", nav.StateHome, got)
	}
}

func TestLoginFormRedirectsWhenAlreadyLoggedIn(t *testing.T) {
	mockSession := newMockSessionManager()
	mockSession.values[middleware.SessionUserKey] = `{"username":"admin","role":"admin"}`
	mockSession.values[sessionNavState] = string(nav.StateHome)

	authHandler := NewAuthHandler(nil, nil, mockSession, nil, nil, nil)

	req := httptest.NewRequest("GET", "/admin/login", nil)
	rr := httptest.NewRecorder()

	if appErr := authHandler.handleLoginForm(rr, req); appErr != nil {
		t.Fatalf("handleLoginForm returned error: %+v", appErr)
	}

	if rr.Code != http.StatusFound {
		t.Errorf("want redirect status %d; got %d", http.StatusFound, rr.Code)
	}
	location, err := rr.Result().Location()
	if err != nil {
		t.Fatalf("could not get redirect location: %v", err)
	}
	if location.Path != "/admin" {
		t.Errorf("want redirect to '/admin'; got '%s'", location.Path)
	}
	if got := mockSession.values[sessionNavState]; got != string(nav.StateAdminDashboard) {
		t.Errorf("want nav state %q; got %q", nav.StateAdminDashboard, got)
	}
}

func TestMachinePersistsThroughSession(t *testing.T) {
	mockSession := newMockSessionManager()
	req := httptest.NewRequest("GET", "/", nil)

	m := loadMachine(req, mockSession)
	if m.State() != nav.StateHome {
		t.Errorf("fresh session: want state %q; got %q", nav.StateHome, m.State())
	}

	m.Navigate(nav.StateBlog, "")
	m.SelectPost(42)
	saveMachine(req, mockSession, m)

	restored := loadMachine(req, mockSession)
	if restored.State() != nav.StateBlogPost {
		t.Errorf("want restored state %q; got %q", nav.StateBlogPost, restored.State())
	}
	if restored.SelectedPost() != 42 {
		t.Errorf("want restored selection 42; got %d", restored.SelectedPost())
	}
}

func TestLoadMachineIgnoresGarbageState(t *testing.T) {
	mockSession := newMockSessionManager()
	mockSession.values[sessionNavState] = "bogus"
	req := httptest.NewRequest("GET", "/", nil)

	m := loadMachine(req, mockSession)
	if m.State() != nav.StateHome {
		t.Errorf("want fallback to %q; got %q", nav.StateHome, m.State())
	}
}

func TestLoadModule(t *testing.T) {
	mockSession := newMockSessionManager()

	// Default with no query and no session value.
	req := httptest.NewRequest("GET", "/admin", nil)
	if got := loadModule(req, mockSession); got != nav.ModuleOverview {
		t.Errorf("want default module %q; got %q", nav.ModuleOverview, got)
	}

	// A valid query selects and persists.
	req = httptest.NewRequest("GET", "/admin?module=blog", nil)
	if got := loadModule(req, mockSession); got != nav.ModuleBlog {
		t.Errorf("want module %q; got %q", nav.ModuleBlog, got)
	}

	// Without a query the persisted selection wins.
	req = httptest.NewRequest("GET", "/admin", nil)
	if got := loadModule(req, mockSession); got != nav.ModuleBlog {
		t.Errorf("want persisted module %q; got %q", nav.ModuleBlog, got)
	}

	// An invalid query falls back to the persisted selection.
	req = httptest.NewRequest("GET", "/admin?module=bogus", nil)
	if got := loadModule(req, mockSession); got != nav.ModuleBlog {
		t.Errorf("want persisted module %q; got %q", nav.ModuleBlog, got)
	}
}
