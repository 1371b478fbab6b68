package handler

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/magma-studio/atelier/internal/auth"
	"github.com/magma-studio/atelier/internal/content"
	"github.com/magma-studio/atelier/internal/logger"
	"github.com/magma-studio/atelier/internal/middleware"
	"github.com/magma-studio/atelier/internal/nav"
	"github.com/magma-studio/atelier/internal/service"
	"github.com/magma-studio/atelier/internal/session"
	"github.com/magma-studio/atelier/internal/view"
)

// AuthHandler holds the dependencies for the authentication handlers.
// Static credential login is always available; the OIDC flow only when an
// issuer is configured.
type AuthHandler struct {
	authenticator auth.Authenticator
	oidc          *auth.OIDCClient
	sessions      session.Manager
	contentSvc    *service.ContentService
	view          *view.View
	log           logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(a auth.Authenticator, oidc *auth.OIDCClient, sm session.Manager, cs *service.ContentService, v *view.View, log logger.Logger) *AuthHandler {
	return &AuthHandler{authenticator: a, oidc: oidc, sessions: sm, contentSvc: cs, view: v, log: log}
}

// handleLoginForm renders the admin login view. A visitor who already
// holds a session lands here with the machine in admin-login and the
// session present, which is exactly the reactive transition: it fires
// immediately and sends them on to the dashboard.
func (h *AuthHandler) handleLoginForm(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	machine := loadMachine(r, h.sessions)
	machine.Navigate(nav.StateAdminLogin, "")

	if h.sessions.Exists(r.Context(), middleware.SessionUserKey) {
		machine.SessionEstablished()
		saveMachine(r, h.sessions, machine)
		http.Redirect(w, r, "/admin", http.StatusFound)
		return nil
	}
	saveMachine(r, h.sessions, machine)
	return h.renderLogin(w, r, "")
}

// handleLogin checks the submitted credential pair. Failure re-renders
// the form with an inline message and leaves the session absent.
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Malformed login form", Code: http.StatusBadRequest}
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := h.authenticator.Authenticate(username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			locale := middleware.GetLocale(r.Context())
			v := h.contentSvc.ViewFor(locale)
			msg := v.Field(content.SectionAdmin, "loginError")
			if msg == "" {
				msg = "Invalid username or password."
			}
			return h.renderLogin(w, r, msg)
		}
		return &middleware.AppError{Error: err, Message: "Login failed", Code: http.StatusInternalServerError}
	}

	if appErr := h.establishSession(r, user); appErr != nil {
		return appErr
	}
	http.Redirect(w, r, "/admin", http.StatusFound)
	return nil
}

// establishSession stores the operator record and fires the reactive
// login transition on the navigation machine.
func (h *AuthHandler) establishSession(r *http.Request, user *auth.User) *middleware.AppError {
	raw, err := json.Marshal(user)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to establish session", Code: http.StatusInternalServerError}
	}
	h.sessions.Put(r.Context(), middleware.SessionUserKey, string(raw))

	machine := loadMachine(r, h.sessions)
	machine.SessionEstablished()
	saveMachine(r, h.sessions, machine)
	return nil
}

// handleLogout destroys the session record entirely; a destroyed session
// hydrates the same as one that never existed.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	machine := loadMachine(r, h.sessions)
	if err := h.sessions.Destroy(r.Context()); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to log out", Code: http.StatusInternalServerError}
	}
	machine.ExitDashboard()
	saveMachine(r, h.sessions, machine)
	http.Redirect(w, r, "/", http.StatusFound)
	return nil
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, errMsg string) *middleware.AppError {
	locale := middleware.GetLocale(r.Context())
	data := map[string]interface{}{
		"View":     h.contentSvc.ViewFor(locale),
		"Locale":   locale,
		"RTL":      locale.RTL(),
		"Error":    errMsg,
		"OIDC":     h.oidc != nil,
		"NavState": nav.StateAdminLogin,
	}
	if err := h.view.Render(w, r, "admin_login.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render login page", Code: http.StatusInternalServerError}
	}
	return nil
}

// handleOIDCLogin redirects the operator to the identity provider. It
// uses a random 'state' string for CSRF protection.
func (h *AuthHandler) handleOIDCLogin(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if h.oidc == nil {
		return &middleware.AppError{Error: errors.New("oidc not configured"), Message: "Single sign-on is not enabled", Code: http.StatusNotFound}
	}
	state, err := randString(16)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Internal Server Error", Code: http.StatusInternalServerError}
	}
	// Store the state in a short-lived cookie to verify on callback.
	http.SetCookie(w, &http.Cookie{
		Name:     "state",
		Value:    state,
		Path:     "/",
		MaxAge:   int(10 * time.Minute / time.Second),
		HttpOnly: true,
		Secure:   r.TLS != nil,
	})
	http.Redirect(w, r, h.oidc.AuthCodeURL(state), http.StatusFound)
	return nil
}

// handleOIDCCallback is the redirect URL for the identity provider. It
// handles the code exchange and token verification, then establishes the
// operator session from the verified claims.
func (h *AuthHandler) handleOIDCCallback(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if h.oidc == nil {
		return &middleware.AppError{Error: errors.New("oidc not configured"), Message: "Single sign-on is not enabled", Code: http.StatusNotFound}
	}

	// Verify the state parameter to prevent CSRF attacks.
	stateCookie, err := r.Cookie("state")
	if err != nil {
		return &middleware.AppError{Error: err, Message: "state cookie not found", Code: http.StatusBadRequest}
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		return &middleware.AppError{Error: errors.New("state mismatch"), Message: "state did not match", Code: http.StatusBadRequest}
	}

	// Exchange the authorization code for an OAuth2 token.
	oauth2Token, err := h.oidc.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to exchange token", Code: http.StatusInternalServerError}
	}

	// Extract the ID Token from the OAuth2 token.
	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return &middleware.AppError{Error: errors.New("no id_token in token response"), Message: "Failed to verify identity", Code: http.StatusInternalServerError}
	}

	// Verify the ID Token's signature and claims.
	// The OIDC library internally checks the nonce, issuer, audience, and expiry.
	idToken, err := h.oidc.IDTokenVerifier.Verify(r.Context(), rawIDToken)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to verify identity", Code: http.StatusInternalServerError}
	}

	var claims struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to read identity claims", Code: http.StatusInternalServerError}
	}
	username := claims.Email
	if username == "" {
		username = claims.Name
	}

	// Federated operators get the editor role; the admin role stays with
	// the locally configured account.
	user := &auth.User{Username: username, Role: auth.RoleEditor, Avatar: claims.Picture}
	if appErr := h.establishSession(r, user); appErr != nil {
		return appErr
	}
	http.Redirect(w, r, "/admin", http.StatusFound)
	return nil
}

// randString is a helper function to generate a random string for the 'state' parameter.
func randString(nByte int) (string, error) {
	b := make([]byte, nByte)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
