//go:build unit

package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/magma-studio/atelier/internal/analytics"
	"github.com/magma-studio/atelier/internal/config"
	"github.com/magma-studio/atelier/internal/contact"
	"github.com/magma-studio/atelier/internal/logger"
	"github.com/magma-studio/atelier/internal/nav"
	"github.com/magma-studio/atelier/internal/service"
	"github.com/magma-studio/atelier/internal/store"
	"github.com/magma-studio/atelier/internal/view"
	"github.com/magma-studio/atelier/web"
)

// fakeStorage is an in-memory key-value store satisfying both the content
// store and contact service storage contracts.
type fakeStorage struct {
	data map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{data: make(map[string][]byte)}
}

func (f *fakeStorage) Get(key string) ([]byte, error) {
	v, ok := f.data[key]
	if !ok {
		return nil, nil
	}
	return v, nil
}

func (f *fakeStorage) Set(key string, value []byte) error {
	f.data[key] = append([]byte(nil), value...)
	return nil
}

func (f *fakeStorage) Delete(key string) error {
	delete(f.data, key)
	return nil
}

func testLogger(t *testing.T) logger.Logger {
	t.Helper()
	return logger.New(config.LogConfig{Level: "error", Format: "json"}, io.Discard)
}

func testContentService(t *testing.T) *service.ContentService {
	t.Helper()
	st, err := store.New(newFakeStorage(), testLogger(t))
	if err != nil {
		t.Fatalf("could not hydrate content store: %v", err)
	}
	return service.NewContentService(st)
}

func testView(t *testing.T) *view.View {
	t.Helper()
	v, err := view.New(web.TemplateFS)
	if err != nil {
		t.Fatalf("could not parse templates: %v", err)
	}
	return v
}

func newTestSiteHandler(t *testing.T, sm *mockSessionManager) *SiteHandler {
	t.Helper()
	ct := contact.NewService(newFakeStorage(), 0)
	return NewSiteHandler(testContentService(t), ct, analytics.NewInjector(), sm, testView(t), testLogger(t))
}

func TestNavHandlerCarriesDeferredScrollAcrossRedirect(t *testing.T) {
	mockSession := newMockSessionManager()
	mockSession.values[sessionNavState] = string(nav.StateBlog)
	h := newTestSiteHandler(t, mockSession)

	req := httptest.NewRequest("GET", "/nav?target=home&anchor=contact", nil)
	rr := httptest.NewRecorder()

	if appErr := h.navHandler(rr, req); appErr != nil {
		t.Fatalf("navHandler returned error: %+v", appErr)
	}
	if rr.Code != http.StatusFound {
		t.Fatalf("want redirect status %d; got %d", http.StatusFound, rr.Code)
	}
	location, err := rr.Result().Location()
	if err != nil {
		t.Fatalf("could not get redirect location: %v", err)
	}
	// The view changed, so the anchor scroll must arrive deferred.
	if location.String() != "/?anchor=contact&deferred=1" {
		t.Errorf("want redirect to '/?anchor=contact&deferred=1'; got '%s'", location)
	}
}

func TestNavHandlerAnchorWithinHomeIsImmediate(t *testing.T) {
	mockSession := newMockSessionManager()
	mockSession.values[sessionNavState] = string(nav.StateHome)
	h := newTestSiteHandler(t, mockSession)

	req := httptest.NewRequest("GET", "/nav?target=home&anchor=about", nil)
	rr := httptest.NewRecorder()

	if appErr := h.navHandler(rr, req); appErr != nil {
		t.Fatalf("navHandler returned error: %+v", appErr)
	}
	location, err := rr.Result().Location()
	if err != nil {
		t.Fatalf("could not get redirect location: %v", err)
	}
	if location.Query().Get("anchor") != "about" {
		t.Errorf("want anchor 'about' in redirect; got '%s'", location)
	}
	if location.Query().Get("deferred") != "" {
		t.Errorf("anchor scroll within home must not be deferred; got '%s'", location)
	}
}

func TestHomeHandlerRendersDeferredScroll(t *testing.T) {
	mockSession := newMockSessionManager()
	mockSession.values[sessionNavState] = string(nav.StateHome)
	h := newTestSiteHandler(t, mockSession)

	req := httptest.NewRequest("GET", "/?anchor=contact&deferred=1", nil)
	rr := httptest.NewRecorder()

	if appErr := h.homeHandler(rr, req); appErr != nil {
		t.Fatalf("homeHandler returned error: %+v", appErr)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `data-scroll-anchor="contact"`) {
		t.Error("want the anchor target rendered on the body tag")
	}
	if !strings.Contains(body, `data-scroll-deferred="1"`) {
		t.Error("want the deferred flag rendered on the body tag")
	}
	// A superseding navigation must be able to cancel the pending scroll.
	if !strings.Contains(body, "clearTimeout") {
		t.Error("want the scroll script to carry the cancellation path")
	}
}

func TestHomeHandlerAnchorWithoutFlagIsImmediate(t *testing.T) {
	mockSession := newMockSessionManager()
	mockSession.values[sessionNavState] = string(nav.StateHome)
	h := newTestSiteHandler(t, mockSession)

	req := httptest.NewRequest("GET", "/?anchor=about", nil)
	rr := httptest.NewRecorder()

	if appErr := h.homeHandler(rr, req); appErr != nil {
		t.Fatalf("homeHandler returned error: %+v", appErr)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `data-scroll-anchor="about"`) {
		t.Error("want the anchor target rendered on the body tag")
	}
	if strings.Contains(body, "data-scroll-deferred") {
		t.Error("anchor scroll within home must render immediately")
	}
}
