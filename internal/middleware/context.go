package middleware

import (
	"context"

	"github.com/magma-studio/atelier/internal/content"
)

// contextKey defines a custom type for context keys to avoid collisions.
type contextKey string

const (
	userContextKey   = contextKey("user")
	localeContextKey = contextKey("locale")
)

// UserInfo represents the essential operator information stored in the
// session and request context.
type UserInfo struct {
	Subject string
	Role    string
	Avatar  string
}

// GetUserInfo retrieves the user information from the request context.
// An anonymous visitor is returned when no user info is present.
func GetUserInfo(ctx context.Context) *UserInfo {
	if userInfo, ok := ctx.Value(userContextKey).(*UserInfo); ok {
		return userInfo
	}
	return &UserInfo{Subject: "anonymous", Role: "anonymous"}
}

// SetUserInfo adds the user information to the request context.
func SetUserInfo(ctx context.Context, userInfo *UserInfo) context.Context {
	return context.WithValue(ctx, userContextKey, userInfo)
}

// GetLocale retrieves the resolved locale from the request context,
// defaulting to English.
func GetLocale(ctx context.Context) content.Locale {
	if locale, ok := ctx.Value(localeContextKey).(content.Locale); ok {
		return locale
	}
	return content.LocaleEN
}

// SetLocale adds the resolved locale to the request context.
func SetLocale(ctx context.Context, locale content.Locale) context.Context {
	return context.WithValue(ctx, localeContextKey, locale)
}
