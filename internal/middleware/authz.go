package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/casbin/casbin/v2"

	"github.com/magma-studio/atelier/internal/auth"
	"github.com/magma-studio/atelier/internal/session"
)

// SessionUserKey is the session key holding the logged-in operator's
// record as JSON. Logout destroys the whole session rather than blanking
// the key.
const SessionUserKey = "cms_user"

// Authorizer creates a new middleware for authorization. It resolves the
// operator from session data and checks the request against the Casbin
// policy, with the operator's role as the policy subject.
func Authorizer(e *casbin.Enforcer, sm session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userInfo := &UserInfo{Subject: "anonymous", Role: "anonymous"}
			if raw := sm.GetString(r.Context(), SessionUserKey); raw != "" {
				var u auth.User
				if err := json.Unmarshal([]byte(raw), &u); err == nil && u.Username != "" {
					userInfo = &UserInfo{Subject: u.Username, Role: u.Role, Avatar: u.Avatar}
				}
			}

			// Add user info to the request context for downstream handlers.
			r = r.WithContext(SetUserInfo(r.Context(), userInfo))

			// Use Casbin to enforce the policy. The subject is the role,
			// not the username: permissions attach to roles.
			allowed, err := e.Enforce(userInfo.Role, r.URL.Path, r.Method)
			if err != nil {
				http.Error(w, "Authorization error", http.StatusInternalServerError)
				return
			}

			if !allowed {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
