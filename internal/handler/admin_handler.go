package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/magma-studio/atelier/internal/analytics"
	"github.com/magma-studio/atelier/internal/contact"
	"github.com/magma-studio/atelier/internal/content"
	"github.com/magma-studio/atelier/internal/logger"
	"github.com/magma-studio/atelier/internal/middleware"
	"github.com/magma-studio/atelier/internal/nav"
	"github.com/magma-studio/atelier/internal/service"
	"github.com/magma-studio/atelier/internal/session"
	"github.com/magma-studio/atelier/internal/store"
	"github.com/magma-studio/atelier/internal/view"
)

// Session key for the one-shot dashboard notice shown after a mutation.
const sessionFlash = "dashboard_flash"

// AdminHandler serves the dashboard and every content mutation behind it.
type AdminHandler struct {
	contentSvc *service.ContentService
	contactSvc *contact.Service
	injector   *analytics.Injector
	sessions   session.Manager
	view       *view.View
	log        logger.Logger
}

// NewAdminHandler creates a new AdminHandler with the given dependencies.
func NewAdminHandler(cs *service.ContentService, ct *contact.Service, inj *analytics.Injector, sm session.Manager, v *view.View, log logger.Logger) *AdminHandler {
	return &AdminHandler{
		contentSvc: cs,
		contactSvc: ct,
		injector:   inj,
		sessions:   sm,
		view:       v,
		log:        log,
	}
}

// dashboardHandler renders the active dashboard module. An unauthenticated
// visitor never reaches here; the authorizer bounces them first.
func (h *AdminHandler) dashboardHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	// The operator may arrive from any state with a live session; walking
	// through admin-login first means the session event always lands the
	// machine on the dashboard.
	machine := loadMachine(r, h.sessions)
	machine.Navigate(nav.StateAdminLogin, "")
	machine.SessionEstablished()
	saveMachine(r, h.sessions, machine)
	module := loadModule(r, h.sessions)

	locale := middleware.GetLocale(r.Context())
	user := middleware.GetUserInfo(r.Context())
	doc := h.contentSvc.Snapshot()
	v := doc.ViewFor(locale)

	data := map[string]interface{}{
		"View":          v,
		"Doc":           doc,
		"Locale":        locale,
		"RTL":           locale.RTL(),
		"NavState":      machine.State(),
		"Module":        module,
		"User":          user,
		"Categories":    h.contentSvc.Categories(),
		"Stats":         h.contentSvc.Stats(),
		"AnalyticsHead": h.injector.Head(v.Integrations),
		"Flash":         h.sessions.PopString(r.Context(), sessionFlash),
	}
	if module == nav.ModuleOverview {
		msgs, err := h.contactSvc.Messages()
		if err != nil {
			return &middleware.AppError{Error: err, Message: "Failed to load messages", Code: http.StatusInternalServerError}
		}
		data["Messages"] = msgs
	}

	if err := h.view.Render(w, r, "dashboard.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render dashboard", Code: http.StatusInternalServerError}
	}
	return nil
}

// redirectToModule sends the operator back to the dashboard panel the
// mutation came from, stashing notice as a one-shot flash.
func (h *AdminHandler) redirectToModule(w http.ResponseWriter, r *http.Request, module, notice string) {
	if notice != "" {
		h.sessions.Put(r.Context(), sessionFlash, notice)
	}
	http.Redirect(w, r, "/admin?module="+url.QueryEscape(module), http.StatusSeeOther)
}

// mutationError maps store failures onto either an inline flash or a full
// error page. Validation problems are the operator's to fix, not ours.
func (h *AdminHandler) mutationError(w http.ResponseWriter, r *http.Request, module string, err error) *middleware.AppError {
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		h.redirectToModule(w, r, module, verr.Error())
		return nil
	}
	if errors.Is(err, store.ErrUnknownSection) {
		return &middleware.AppError{Error: err, Message: "Unknown content section", Code: http.StatusBadRequest}
	}
	return &middleware.AppError{Error: err, Message: "Failed to save changes", Code: http.StatusInternalServerError}
}

func formLocale(r *http.Request) content.Locale {
	if l, err := content.ParseLocale(r.PostFormValue("locale")); err == nil {
		return l
	}
	return middleware.GetLocale(r.Context())
}

func splitForm(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func formID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		raw = r.PostFormValue("id")
	}
	return strconv.ParseInt(raw, 10, 64)
}

// projectFromForm builds a project carrying text for the submitted locale
// only. The store merges it into the stored record, so the other locale's
// text survives untouched.
func projectFromForm(r *http.Request, locale content.Locale) content.Project {
	visible := r.PostFormValue("visible") != "false"
	return content.Project{
		Category:     r.PostFormValue("category"),
		Image:        r.PostFormValue("image"),
		Gallery:      splitForm(r.PostFormValue("gallery")),
		Technologies: splitForm(r.PostFormValue("technologies")),
		Visible:      &visible,
		Text: map[content.Locale]content.ProjectText{
			locale: {
				Title:           r.PostFormValue("title"),
				Description:     r.PostFormValue("description"),
				FullDescription: r.PostFormValue("full_description"),
			},
		},
	}
}

func (h *AdminHandler) createProjectHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Malformed form", Code: http.StatusBadRequest}
	}
	locale := formLocale(r)
	if _, err := h.contentSvc.AddProject(projectFromForm(r, locale)); err != nil {
		return h.mutationError(w, r, nav.ModulePortfolio, err)
	}
	h.redirectToModule(w, r, nav.ModulePortfolio, "Project created")
	return nil
}

func (h *AdminHandler) updateProjectHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Malformed form", Code: http.StatusBadRequest}
	}
	id, err := formID(r)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid project id", Code: http.StatusBadRequest}
	}
	locale := formLocale(r)
	p := projectFromForm(r, locale)
	p.ID = id
	if err := h.contentSvc.UpdateProject(locale, p); err != nil {
		return h.mutationError(w, r, nav.ModulePortfolio, err)
	}
	h.redirectToModule(w, r, nav.ModulePortfolio, "Project updated")
	return nil
}

func (h *AdminHandler) deleteProjectHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := formID(r)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid project id", Code: http.StatusBadRequest}
	}
	if err := h.contentSvc.DeleteProject(id); err != nil {
		return h.mutationError(w, r, nav.ModulePortfolio, err)
	}
	h.redirectToModule(w, r, nav.ModulePortfolio, "Project deleted")
	return nil
}

func postFromForm(r *http.Request, locale content.Locale) content.BlogPost {
	status := r.PostFormValue("status")
	if status != content.StatusDraft {
		status = content.StatusPublished
	}
	return content.BlogPost{
		Category: r.PostFormValue("category"),
		Image:    r.PostFormValue("image"),
		Date:     r.PostFormValue("date"),
		ReadTime: r.PostFormValue("read_time"),
		Tags:     splitForm(r.PostFormValue("tags")),
		Status:   status,
		Text: map[content.Locale]content.PostText{
			locale: {
				Title:   r.PostFormValue("title"),
				Excerpt: r.PostFormValue("excerpt"),
				Content: splitForm(r.PostFormValue("content")),
			},
		},
	}
}

func (h *AdminHandler) createPostHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Malformed form", Code: http.StatusBadRequest}
	}
	locale := formLocale(r)
	if _, err := h.contentSvc.AddPost(postFromForm(r, locale)); err != nil {
		return h.mutationError(w, r, nav.ModuleBlog, err)
	}
	h.redirectToModule(w, r, nav.ModuleBlog, "Post created")
	return nil
}

func (h *AdminHandler) updatePostHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Malformed form", Code: http.StatusBadRequest}
	}
	id, err := formID(r)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid post id", Code: http.StatusBadRequest}
	}
	locale := formLocale(r)
	p := postFromForm(r, locale)
	p.ID = id
	if err := h.contentSvc.UpdatePost(locale, p); err != nil {
		return h.mutationError(w, r, nav.ModuleBlog, err)
	}
	h.redirectToModule(w, r, nav.ModuleBlog, "Post updated")
	return nil
}

func (h *AdminHandler) deletePostHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := formID(r)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid post id", Code: http.StatusBadRequest}
	}
	if err := h.contentSvc.DeletePost(id); err != nil {
		return h.mutationError(w, r, nav.ModuleBlog, err)
	}
	h.redirectToModule(w, r, nav.ModuleBlog, "Post deleted")
	return nil
}

func testimonialFromForm(r *http.Request, locale content.Locale) content.Testimonial {
	visible := r.PostFormValue("visible") != "false"
	return content.Testimonial{
		Visible: &visible,
		Text: map[content.Locale]content.TestimonialText{
			locale: {
				Quote:  r.PostFormValue("quote"),
				Author: r.PostFormValue("author"),
				Role:   r.PostFormValue("role"),
			},
		},
	}
}

func (h *AdminHandler) createTestimonialHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Malformed form", Code: http.StatusBadRequest}
	}
	locale := formLocale(r)
	if _, err := h.contentSvc.AddTestimonial(testimonialFromForm(r, locale)); err != nil {
		return h.mutationError(w, r, nav.ModuleTestimonials, err)
	}
	h.redirectToModule(w, r, nav.ModuleTestimonials, "Testimonial created")
	return nil
}

func (h *AdminHandler) updateTestimonialHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Malformed form", Code: http.StatusBadRequest}
	}
	id, err := formID(r)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid testimonial id", Code: http.StatusBadRequest}
	}
	locale := formLocale(r)
	t := testimonialFromForm(r, locale)
	t.ID = id
	if err := h.contentSvc.UpdateTestimonial(locale, t); err != nil {
		return h.mutationError(w, r, nav.ModuleTestimonials, err)
	}
	h.redirectToModule(w, r, nav.ModuleTestimonials, "Testimonial updated")
	return nil
}

func (h *AdminHandler) deleteTestimonialHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := formID(r)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid testimonial id", Code: http.StatusBadRequest}
	}
	if err := h.contentSvc.DeleteTestimonial(id); err != nil {
		return h.mutationError(w, r, nav.ModuleTestimonials, err)
	}
	h.redirectToModule(w, r, nav.ModuleTestimonials, "Testimonial deleted")
	return nil
}

func (h *AdminHandler) addCategoryHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Malformed form", Code: http.StatusBadRequest}
	}
	name := strings.TrimSpace(r.PostFormValue("name"))
	if name == "" {
		h.redirectToModule(w, r, nav.ModulePortfolio, "Category name is required")
		return nil
	}
	if err := h.contentSvc.AddCategory(name); err != nil {
		return h.mutationError(w, r, nav.ModulePortfolio, err)
	}
	h.redirectToModule(w, r, nav.ModulePortfolio, "Category added")
	return nil
}

// deleteCategoryHandler removes a category name only. Entities filed under
// it keep their label and simply stop matching any filter.
func (h *AdminHandler) deleteCategoryHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Malformed form", Code: http.StatusBadRequest}
	}
	name := r.PostFormValue("name")
	if err := h.contentSvc.DeleteCategory(name); err != nil {
		return h.mutationError(w, r, nav.ModulePortfolio, err)
	}
	h.redirectToModule(w, r, nav.ModulePortfolio, "Category removed")
	return nil
}

// updateContentHandler writes one batch of field edits for a single
// section in a single locale. Field names arrive as field.<key>.
func (h *AdminHandler) updateContentHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Malformed form", Code: http.StatusBadRequest}
	}
	section := chi.URLParam(r, "section")
	locale := formLocale(r)
	module := r.PostFormValue("module")
	if !nav.ValidModule(module) {
		module = nav.ModuleHero
	}
	for name := range r.PostForm {
		key, ok := strings.CutPrefix(name, "field.")
		if !ok {
			continue
		}
		if err := h.contentSvc.UpdateField(locale, section, key, r.PostFormValue(name)); err != nil {
			return h.mutationError(w, r, module, err)
		}
	}
	h.redirectToModule(w, r, module, "Content saved")
	return nil
}

func (h *AdminHandler) updateIntegrationsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Malformed form", Code: http.StatusBadRequest}
	}
	in := content.Integrations{
		GoogleAnalyticsID:       strings.TrimSpace(r.PostFormValue("google_analytics_id")),
		GoogleSearchConsoleCode: strings.TrimSpace(r.PostFormValue("google_search_console_code")),
	}
	if err := h.contentSvc.UpdateIntegrations(in); err != nil {
		return h.mutationError(w, r, nav.ModuleSettings, err)
	}
	h.redirectToModule(w, r, nav.ModuleSettings, "Integrations saved")
	return nil
}

// resetHandler discards every content edit and restores the bundled
// dataset. The form carries a confirm field so a stray POST cannot wipe
// the site.
func (h *AdminHandler) resetHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Malformed form", Code: http.StatusBadRequest}
	}
	if r.PostFormValue("confirm") != "reset" {
		h.redirectToModule(w, r, nav.ModuleSettings, "Reset not confirmed")
		return nil
	}
	if err := h.contentSvc.ResetToDefaults(); err != nil {
		return h.mutationError(w, r, nav.ModuleSettings, err)
	}
	h.log.Info("content reset to defaults")
	h.redirectToModule(w, r, nav.ModuleSettings, "Content restored to defaults")
	return nil
}
