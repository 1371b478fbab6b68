//go:build unit

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/magma-studio/atelier/internal/content"
)

func resolveLocale(t *testing.T, req *http.Request) (content.Locale, *httptest.ResponseRecorder) {
	t.Helper()
	var got content.Locale
	handler := Locale(content.LocaleEN)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetLocale(r.Context())
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return got, rr
}

func TestLocaleDefault(t *testing.T) {
	got, _ := resolveLocale(t, httptest.NewRequest("GET", "/", nil))
	if got != content.LocaleEN {
		t.Errorf("want default %q; got %q", content.LocaleEN, got)
	}
}

func TestLocaleFromCookie(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "lang", Value: "ar"})

	got, _ := resolveLocale(t, req)
	if got != content.LocaleAR {
		t.Errorf("want %q from cookie; got %q", content.LocaleAR, got)
	}
}

func TestLocaleQueryOverridesCookieAndPinsIt(t *testing.T) {
	req := httptest.NewRequest("GET", "/?lang=ar", nil)
	req.AddCookie(&http.Cookie{Name: "lang", Value: "en"})

	got, rr := resolveLocale(t, req)
	if got != content.LocaleAR {
		t.Errorf("want query to win; got %q", got)
	}

	var pinned *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == "lang" {
			pinned = c
		}
	}
	if pinned == nil || pinned.Value != "ar" {
		t.Errorf("want lang cookie pinned to ar; got %+v", pinned)
	}
}

func TestLocaleIgnoresInvalidValues(t *testing.T) {
	req := httptest.NewRequest("GET", "/?lang=fr", nil)
	req.AddCookie(&http.Cookie{Name: "lang", Value: "de"})

	got, rr := resolveLocale(t, req)
	if got != content.LocaleEN {
		t.Errorf("want fallback to default; got %q", got)
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Error("invalid lang value must not pin a cookie")
	}
}

func TestGetUserInfoDefaultsToAnonymous(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	user := GetUserInfo(req.Context())
	if user.Subject != "anonymous" || user.Role != "anonymous" {
		t.Errorf("want anonymous defaults; got %+v", user)
	}
}
