package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/magma-studio/atelier/internal/content"
	"github.com/magma-studio/atelier/internal/logger"
	"github.com/magma-studio/atelier/internal/middleware"
	"github.com/magma-studio/atelier/internal/session"
	"github.com/magma-studio/atelier/internal/view"
	"github.com/magma-studio/atelier/web"
)

// NewRouter creates and configures a new chi router. Every route passes
// through the session loader, locale resolver and the authorizer; the
// policy decides which roles reach the admin surface.
func NewRouter(
	site *SiteHandler,
	admin *AdminHandler,
	seo *SEOHandler,
	authHandler *AuthHandler,
	sm session.Manager,
	authz func(http.Handler) http.Handler,
	defaultLocale content.Locale,
	v *view.View,
	log logger.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Use(sm.LoadAndSave)
	r.Use(middleware.Locale(defaultLocale))
	r.Use(authz)

	handle := middleware.Error(log, v)

	// Static assets
	r.Handle("/static/*", http.FileServer(http.FS(web.StaticFS)))

	// Public site
	r.Method(http.MethodGet, "/", handle(site.homeHandler))
	r.Method(http.MethodGet, "/blog", handle(site.blogHandler))
	r.Method(http.MethodGet, "/blog/{id}", handle(site.blogPostHandler))
	r.Method(http.MethodGet, "/portfolio", handle(site.portfolioHandler))
	r.Method(http.MethodGet, "/work/{id}", handle(site.projectHandler))
	r.Method(http.MethodGet, "/nav", handle(site.navHandler))
	r.Method(http.MethodPost, "/contact", handle(site.contactHandler))
	r.Method(http.MethodGet, "/sitemap.xml", handle(seo.sitemapHandler))
	r.Method(http.MethodGet, "/robots.txt", handle(seo.robotsHandler))

	// Authentication
	r.Method(http.MethodGet, "/admin/login", handle(authHandler.handleLoginForm))
	r.Method(http.MethodPost, "/admin/login", handle(authHandler.handleLogin))
	r.Method(http.MethodPost, "/admin/logout", handle(authHandler.handleLogout))
	r.Method(http.MethodGet, "/auth/login", handle(authHandler.handleOIDCLogin))
	r.Method(http.MethodGet, "/auth/callback", handle(authHandler.handleOIDCCallback))

	// Dashboard. The authorizer already gates these by role, so the
	// routes themselves stay flat.
	r.Method(http.MethodGet, "/admin", handle(admin.dashboardHandler))

	r.Method(http.MethodPost, "/admin/projects", handle(admin.createProjectHandler))
	r.Method(http.MethodPost, "/admin/projects/{id}", handle(admin.updateProjectHandler))
	r.Method(http.MethodPost, "/admin/projects/{id}/delete", handle(admin.deleteProjectHandler))

	r.Method(http.MethodPost, "/admin/posts", handle(admin.createPostHandler))
	r.Method(http.MethodPost, "/admin/posts/{id}", handle(admin.updatePostHandler))
	r.Method(http.MethodPost, "/admin/posts/{id}/delete", handle(admin.deletePostHandler))

	r.Method(http.MethodPost, "/admin/testimonials", handle(admin.createTestimonialHandler))
	r.Method(http.MethodPost, "/admin/testimonials/{id}", handle(admin.updateTestimonialHandler))
	r.Method(http.MethodPost, "/admin/testimonials/{id}/delete", handle(admin.deleteTestimonialHandler))

	r.Method(http.MethodPost, "/admin/categories", handle(admin.addCategoryHandler))
	r.Method(http.MethodPost, "/admin/categories/delete", handle(admin.deleteCategoryHandler))

	r.Method(http.MethodPost, "/admin/content/{section}", handle(admin.updateContentHandler))
	r.Method(http.MethodPost, "/admin/settings/integrations", handle(admin.updateIntegrationsHandler))
	r.Method(http.MethodPost, "/admin/settings/reset", handle(admin.resetHandler))

	return r
}
