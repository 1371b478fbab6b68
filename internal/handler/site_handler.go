package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/magma-studio/atelier/internal/analytics"
	"github.com/magma-studio/atelier/internal/contact"
	"github.com/magma-studio/atelier/internal/content"
	"github.com/magma-studio/atelier/internal/logger"
	"github.com/magma-studio/atelier/internal/middleware"
	"github.com/magma-studio/atelier/internal/nav"
	"github.com/magma-studio/atelier/internal/service"
	"github.com/magma-studio/atelier/internal/session"
	"github.com/magma-studio/atelier/internal/view"
)

// SiteHandler serves the public site: home, blog, portfolio, the two
// detail views and the contact form.
type SiteHandler struct {
	contentSvc *service.ContentService
	contactSvc *contact.Service
	injector   *analytics.Injector
	sessions   session.Manager
	view       *view.View
	log        logger.Logger
}

// NewSiteHandler creates a new SiteHandler with the given dependencies.
func NewSiteHandler(cs *service.ContentService, ct *contact.Service, inj *analytics.Injector, sm session.Manager, v *view.View, log logger.Logger) *SiteHandler {
	return &SiteHandler{
		contentSvc: cs,
		contactSvc: ct,
		injector:   inj,
		sessions:   sm,
		view:       v,
		log:        log,
	}
}

// pageData assembles the template data every public page shares.
func (h *SiteHandler) pageData(r *http.Request, machine *nav.Machine, eff nav.Effect) map[string]interface{} {
	locale := middleware.GetLocale(r.Context())
	v := h.contentSvc.ViewFor(locale)
	return map[string]interface{}{
		"View":           v,
		"Locale":         locale,
		"RTL":            locale.RTL(),
		"NavState":       machine.State(),
		"AnalyticsHead":  h.injector.Head(v.Integrations),
		"ScrollTop":      eff.Scroll.Top,
		"ScrollAnchor":   eff.Scroll.Anchor,
		"ScrollDeferred": eff.Deferred,
		"FormStartedAt":  time.Now().Unix(),
	}
}

// homeHandler renders the single-page home view. An optional anchor query
// scrolls to a section once the layout has settled. The deferred flag set
// by navHandler survives the redirect here, where the machine has already
// settled into home and would no longer report the transition itself.
func (h *SiteHandler) homeHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	machine := loadMachine(r, h.sessions)
	eff := machine.Navigate(nav.StateHome, r.URL.Query().Get("anchor"))
	if r.URL.Query().Get("deferred") == "1" {
		eff.Deferred = true
	}
	saveMachine(r, h.sessions, machine)

	data := h.pageData(r, machine, eff)
	data["ContactSent"] = r.URL.Query().Get("sent") == "1"
	data["ContactError"] = r.URL.Query().Get("contact_error")
	if err := h.view.Render(w, r, "home.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render home", Code: http.StatusInternalServerError}
	}
	return nil
}

// blogHandler renders the blog listing; drafts never appear.
func (h *SiteHandler) blogHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	machine := loadMachine(r, h.sessions)
	eff := machine.Navigate(nav.StateBlog, "")
	saveMachine(r, h.sessions, machine)

	data := h.pageData(r, machine, eff)
	if err := h.view.Render(w, r, "blog.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render blog", Code: http.StatusInternalServerError}
	}
	return nil
}

// blogPostHandler renders one post. A stale or unknown selection falls
// back to the blog listing instead of rendering an empty shell.
func (h *SiteHandler) blogPostHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid post id", Code: http.StatusBadRequest}
	}

	locale := middleware.GetLocale(r.Context())
	doc := h.contentSvc.Snapshot()
	post := doc.PostByID(id)
	if post == nil || !post.IsPublished() {
		http.Redirect(w, r, "/blog", http.StatusFound)
		return nil
	}

	machine := loadMachine(r, h.sessions)
	eff := machine.SelectPost(id)
	saveMachine(r, h.sessions, machine)

	data := h.pageData(r, machine, eff)
	data["Post"] = post
	data["PostText"] = post.Text[locale]
	data["Paragraphs"] = h.contentSvc.RenderParagraphs(post.Text[locale].Content)
	if err := h.view.Render(w, r, "blog_post.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render post", Code: http.StatusInternalServerError}
	}
	return nil
}

// portfolioHandler renders the full work listing with optional category
// filtering. Arriving here from a project detail is the pop transition.
func (h *SiteHandler) portfolioHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	machine := loadMachine(r, h.sessions)
	eff := machine.Navigate(nav.StatePortfolio, "")
	saveMachine(r, h.sessions, machine)

	data := h.pageData(r, machine, eff)
	filter := r.URL.Query().Get("filter")
	data["Filter"] = filter
	data["Categories"] = h.contentSvc.Categories()
	if filter != "" {
		v := data["View"].(content.View)
		filtered := make([]content.Project, 0, len(v.Projects))
		for _, p := range v.VisibleProjects() {
			if p.Category == filter {
				filtered = append(filtered, p)
			}
		}
		data["FilteredProjects"] = filtered
	}
	if err := h.view.Render(w, r, "portfolio.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render portfolio", Code: http.StatusInternalServerError}
	}
	return nil
}

// projectHandler renders one project's detail view, with the same
// stale-selection fallback as posts.
func (h *SiteHandler) projectHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid project id", Code: http.StatusBadRequest}
	}

	locale := middleware.GetLocale(r.Context())
	doc := h.contentSvc.Snapshot()
	project := doc.ProjectByID(id)
	if project == nil || !project.IsVisible() {
		http.Redirect(w, r, "/portfolio", http.StatusFound)
		return nil
	}

	machine := loadMachine(r, h.sessions)
	eff := machine.SelectProject(id)
	saveMachine(r, h.sessions, machine)

	data := h.pageData(r, machine, eff)
	data["Project"] = project
	data["ProjectText"] = project.Text[locale]
	if err := h.view.Render(w, r, "project.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render project", Code: http.StatusInternalServerError}
	}
	return nil
}

// navHandler is the navigation endpoint the header links hit. It drives
// the machine and redirects to the path for the resulting state, carrying
// the anchor along for home.
func (h *SiteHandler) navHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	target := nav.State(r.URL.Query().Get("target"))
	anchor := r.URL.Query().Get("anchor")
	switch target {
	case nav.StateHome, nav.StateBlog, nav.StatePortfolio, nav.StateAdminLogin:
	default:
		return &middleware.AppError{Error: errors.New("invalid navigation target"), Message: "Unknown destination", Code: http.StatusBadRequest}
	}

	machine := loadMachine(r, h.sessions)
	eff := machine.Navigate(target, anchor)
	saveMachine(r, h.sessions, machine)

	dest := pathForState(machine.State())
	if machine.State() == nav.StateHome && anchor != "" && anchor != "#" {
		dest += "?anchor=" + url.QueryEscape(anchor)
		// By the time the redirect lands the machine is already home, so
		// the transition's deferred scroll must travel with the URL.
		if eff.Deferred {
			dest += "&deferred=1"
		}
	}
	http.Redirect(w, r, dest, http.StatusFound)
	return nil
}

func pathForState(s nav.State) string {
	switch s {
	case nav.StateBlog:
		return "/blog"
	case nav.StatePortfolio:
		return "/portfolio"
	case nav.StateAdminLogin:
		return "/admin/login"
	case nav.StateAdminDashboard:
		return "/admin"
	default:
		return "/"
	}
}

// contactHandler captures a contact form submission. Rejections surface
// inline on the home view's contact section.
func (h *SiteHandler) contactHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Malformed contact form", Code: http.StatusBadRequest}
	}

	startedAt := time.Time{}
	if raw := r.PostFormValue("form_started_at"); raw != "" {
		if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
			startedAt = time.Unix(secs, 0)
		}
	}

	msg := contact.Message{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Phone:   r.PostFormValue("phone"),
		Company: r.PostFormValue("company"),
		Body:    r.PostFormValue("message"),
	}

	if _, err := h.contactSvc.Submit(msg, startedAt); err != nil {
		switch {
		case errors.Is(err, contact.ErrIncomplete), errors.Is(err, contact.ErrTooFast):
			http.Redirect(w, r, "/?contact_error="+url.QueryEscape(err.Error())+"&anchor=contact", http.StatusFound)
			return nil
		default:
			return &middleware.AppError{Error: err, Message: "Failed to send message", Code: http.StatusInternalServerError}
		}
	}

	http.Redirect(w, r, "/?sent=1&anchor=contact", http.StatusFound)
	return nil
}
