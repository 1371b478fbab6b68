package session

import (
	"context"
	"net/http"
)

// Manager is an interface that abstracts the session management
// implementation. The production implementation is *scs.SessionManager;
// the interface exists for dependency injection and for test doubles.
//
// The session contract matters to the store's semantics: Destroy deletes
// the stored session record outright, so "logged out" and "never logged
// in" are indistinguishable at hydration time.
type Manager interface {
	LoadAndSave(next http.Handler) http.Handler
	Put(ctx context.Context, key string, val interface{})
	GetString(ctx context.Context, key string) string
	PopString(ctx context.Context, key string) string
	Exists(ctx context.Context, key string) bool
	Destroy(ctx context.Context) error
	Remove(ctx context.Context, key string)
}
