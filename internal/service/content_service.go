package service

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/magma-studio/atelier/internal/content"
)

// ContentStore defines the store operations the service builds on.
type ContentStore interface {
	Snapshot() *content.Document
	ViewFor(locale content.Locale) content.View
	Categories() []string
	UpdateField(locale content.Locale, section, key, value string) error
	UpdateIntegrations(in content.Integrations) error
	AddProject(p content.Project) (content.Project, error)
	UpdateProject(locale content.Locale, p content.Project) error
	DeleteProject(id int64) error
	AddPost(p content.BlogPost) (content.BlogPost, error)
	UpdatePost(locale content.Locale, p content.BlogPost) error
	DeletePost(id int64) error
	AddTestimonial(t content.Testimonial) (content.Testimonial, error)
	UpdateTestimonial(locale content.Locale, t content.Testimonial) error
	DeleteTestimonial(id int64) error
	AddCategory(name string) error
	DeleteCategory(name string) error
	ResetToDefaults() error
}

// ContentService sits between the handlers and the store. Everything an
// operator types passes through it, so all sanitizing happens here, and it
// renders blog markdown for the public site.
type ContentService struct {
	store ContentStore

	// strict strips all markup from single-line fields; ugc allows basic
	// formatting in long-form text.
	strict   *bluemonday.Policy
	ugc      *bluemonday.Policy
	markdown goldmark.Markdown
}

// NewContentService creates a ContentService over the given store.
func NewContentService(store ContentStore) *ContentService {
	return &ContentService{
		store:    store,
		strict:   bluemonday.StrictPolicy(),
		ugc:      bluemonday.UGCPolicy(),
		markdown: goldmark.New(),
	}
}

// Snapshot returns a deep copy of the current document.
func (s *ContentService) Snapshot() *content.Document {
	return s.store.Snapshot()
}

// ViewFor returns one locale's projection of the current document.
func (s *ContentService) ViewFor(locale content.Locale) content.View {
	return s.store.ViewFor(locale)
}

// Categories returns the category set.
func (s *ContentService) Categories() []string {
	return s.store.Categories()
}

// UpdateField sanitizes and stores one section field.
func (s *ContentService) UpdateField(locale content.Locale, section, key, value string) error {
	return s.store.UpdateField(locale, section, key, s.ugc.Sanitize(value))
}

// UpdateIntegrations strips markup from the snippet settings and stores
// them. The analytics fragments are built from these values, so nothing
// an operator pastes may carry tags of its own.
func (s *ContentService) UpdateIntegrations(in content.Integrations) error {
	in.GoogleAnalyticsID = s.strict.Sanitize(in.GoogleAnalyticsID)
	in.GoogleSearchConsoleCode = s.strict.Sanitize(in.GoogleSearchConsoleCode)
	return s.store.UpdateIntegrations(in)
}

func (s *ContentService) sanitizeProject(p content.Project) content.Project {
	p.Category = s.strict.Sanitize(p.Category)
	for locale, t := range p.Text {
		t.Title = s.strict.Sanitize(t.Title)
		t.Description = s.strict.Sanitize(t.Description)
		t.FullDescription = s.ugc.Sanitize(t.FullDescription)
		p.Text[locale] = t
	}
	return p
}

// AddProject sanitizes and stores a new project.
func (s *ContentService) AddProject(p content.Project) (content.Project, error) {
	return s.store.AddProject(s.sanitizeProject(p))
}

// UpdateProject sanitizes and stores a locale-scoped project edit.
func (s *ContentService) UpdateProject(locale content.Locale, p content.Project) error {
	return s.store.UpdateProject(locale, s.sanitizeProject(p))
}

// DeleteProject removes a project.
func (s *ContentService) DeleteProject(id int64) error {
	return s.store.DeleteProject(id)
}

func (s *ContentService) sanitizePost(p content.BlogPost) content.BlogPost {
	p.Category = s.strict.Sanitize(p.Category)
	for i, tag := range p.Tags {
		p.Tags[i] = s.strict.Sanitize(tag)
	}
	for locale, t := range p.Text {
		t.Title = s.strict.Sanitize(t.Title)
		t.Excerpt = s.strict.Sanitize(t.Excerpt)
		for i, para := range t.Content {
			t.Content[i] = s.ugc.Sanitize(para)
		}
		p.Text[locale] = t
	}
	return p
}

// AddPost sanitizes and stores a new blog post.
func (s *ContentService) AddPost(p content.BlogPost) (content.BlogPost, error) {
	return s.store.AddPost(s.sanitizePost(p))
}

// UpdatePost sanitizes and stores a locale-scoped post edit.
func (s *ContentService) UpdatePost(locale content.Locale, p content.BlogPost) error {
	return s.store.UpdatePost(locale, s.sanitizePost(p))
}

// DeletePost removes a post.
func (s *ContentService) DeletePost(id int64) error {
	return s.store.DeletePost(id)
}

func (s *ContentService) sanitizeTestimonial(t content.Testimonial) content.Testimonial {
	for locale, tt := range t.Text {
		tt.Quote = s.strict.Sanitize(tt.Quote)
		tt.Author = s.strict.Sanitize(tt.Author)
		tt.Role = s.strict.Sanitize(tt.Role)
		t.Text[locale] = tt
	}
	return t
}

// AddTestimonial sanitizes and stores a new testimonial.
func (s *ContentService) AddTestimonial(t content.Testimonial) (content.Testimonial, error) {
	return s.store.AddTestimonial(s.sanitizeTestimonial(t))
}

// UpdateTestimonial sanitizes and stores a locale-scoped testimonial edit.
func (s *ContentService) UpdateTestimonial(locale content.Locale, t content.Testimonial) error {
	return s.store.UpdateTestimonial(locale, s.sanitizeTestimonial(t))
}

// DeleteTestimonial removes a testimonial.
func (s *ContentService) DeleteTestimonial(id int64) error {
	return s.store.DeleteTestimonial(id)
}

// AddCategory adds a category label with markup stripped.
func (s *ContentService) AddCategory(name string) error {
	return s.store.AddCategory(s.strict.Sanitize(name))
}

// DeleteCategory removes a category label.
func (s *ContentService) DeleteCategory(name string) error {
	return s.store.DeleteCategory(name)
}

// ResetToDefaults restores the bundled dataset.
func (s *ContentService) ResetToDefaults() error {
	return s.store.ResetToDefaults()
}

// RenderParagraphs converts a post's markdown paragraphs to HTML for the
// public blog. Paragraphs that fail to render fall back to escaped text.
func (s *ContentService) RenderParagraphs(paragraphs []string) []template.HTML {
	out := make([]template.HTML, 0, len(paragraphs))
	for _, para := range paragraphs {
		var buf bytes.Buffer
		if err := s.markdown.Convert([]byte(para), &buf); err != nil {
			out = append(out, template.HTML(template.HTMLEscapeString(para)))
			continue
		}
		out = append(out, template.HTML(s.ugc.Sanitize(buf.String())))
	}
	return out
}

// LocalizedDigits maps Western digits to Eastern Arabic ones for display
// strings generated on the server (dates, read times) when the Arabic
// view is active.
func LocalizedDigits(locale content.Locale, s string) string {
	if locale != content.LocaleAR {
		return s
	}
	digits := []rune("٠١٢٣٤٥٦٧٨٩")
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			out = append(out, digits[r-'0'])
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

// Stats summarizes the document for the dashboard overview.
type Stats struct {
	Projects     int
	Posts        int
	Drafts       int
	Testimonials int
	Categories   int
}

// Stats computes dashboard overview counts from a fresh snapshot.
func (s *ContentService) Stats() Stats {
	doc := s.store.Snapshot()
	st := Stats{
		Projects:     len(doc.Projects),
		Posts:        len(doc.Posts),
		Testimonials: len(doc.Testimonials),
		Categories:   len(s.store.Categories()),
	}
	for _, p := range doc.Posts {
		if !p.IsPublished() {
			st.Drafts++
		}
	}
	return st
}

// String renders stats for logging.
func (s Stats) String() string {
	return fmt.Sprintf("%d projects, %d posts (%d drafts), %d testimonials, %d categories",
		s.Projects, s.Posts, s.Drafts, s.Testimonials, s.Categories)
}
