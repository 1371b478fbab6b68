// Package store owns the canonical bilingual content document and the
// category set. Every mutation goes through it, is applied atomically and
// is written back to durable storage before the call returns, so a restart
// reconstructs the exact prior state.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/magma-studio/atelier/internal/content"
	"github.com/magma-studio/atelier/internal/defaults"
	"github.com/magma-studio/atelier/internal/logger"
)

// Storage keys under which the document and category list persist.
const (
	KeyContent    = "site_content"
	KeyCategories = "site_categories"
)

// Storage is the durable key-value collaborator. Get returns nil for an
// absent key.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// ErrUnknownSection is returned when a field update names a section the
// document does not carry. Surfacing the mismatch makes editor bugs
// visible instead of silently dropping the write.
var ErrUnknownSection = errors.New("unknown content section")

// ValidationError reports required fields missing from an entity. Checks
// run inside the store so no caller can persist a half-formed record.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

// Store is the single source of truth for the content document and the
// category set. Handlers read and mutate it concurrently, so access is
// guarded by an RWMutex.
type Store struct {
	mu         sync.RWMutex
	doc        *content.Document
	categories []string
	lastID     int64

	storage Storage
	log     logger.Logger
}

// New hydrates a store from persisted state, falling back to the bundled
// defaults when nothing usable was persisted. A corrupt or out-of-date
// persisted document is logged and discarded rather than crashing startup.
func New(storage Storage, log logger.Logger) (*Store, error) {
	s := &Store{storage: storage, log: log}

	doc, err := s.hydrateDocument()
	if err != nil {
		return nil, err
	}
	cats, err := s.hydrateCategories()
	if err != nil {
		return nil, err
	}

	s.doc = doc
	s.categories = cats
	s.lastID = doc.MaxEntityID()
	return s, nil
}

func (s *Store) hydrateDocument() (*content.Document, error) {
	raw, err := s.storage.Get(KeyContent)
	if err != nil {
		return nil, fmt.Errorf("failed to read persisted content: %w", err)
	}
	if raw != nil {
		var doc content.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			s.log.Error(err, "Persisted content is corrupt, restoring bundled defaults")
		} else if doc.SchemaVersion != content.SchemaVersion {
			s.log.Warn(fmt.Sprintf("Persisted content has schema version %d, want %d; restoring bundled defaults", doc.SchemaVersion, content.SchemaVersion))
		} else {
			return &doc, nil
		}
	}
	return defaults.Document()
}

func (s *Store) hydrateCategories() ([]string, error) {
	raw, err := s.storage.Get(KeyCategories)
	if err != nil {
		return nil, fmt.Errorf("failed to read persisted categories: %w", err)
	}
	if raw != nil {
		var cats []string
		if err := json.Unmarshal(raw, &cats); err != nil {
			s.log.Error(err, "Persisted categories are corrupt, restoring bundled defaults")
		} else {
			return cats, nil
		}
	}
	return defaults.Categories()
}

// Snapshot returns a deep copy of the current document. Renderers never
// see the live document.
func (s *Store) Snapshot() *content.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// ViewFor returns one locale's projection of a fresh snapshot.
func (s *Store) ViewFor(locale content.Locale) content.View {
	return s.Snapshot().ViewFor(locale)
}

// Categories returns a copy of the category set, in insertion order.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.categories...)
}

// mutate applies fn to a clone of the document, persists the result, and
// only then makes it the live document. If fn fails or the write to
// storage fails, the live document is untouched: every mutation is
// all-or-nothing including its persistence side effect.
func (s *Store) mutate(fn func(doc *content.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := s.persistDocument(next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

func (s *Store) persistDocument(doc *content.Document) error {
	doc.SchemaVersion = content.SchemaVersion
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize content: %w", err)
	}
	if err := s.storage.Set(KeyContent, raw); err != nil {
		return fmt.Errorf("failed to persist content: %w", err)
	}
	return nil
}

func (s *Store) persistCategories() error {
	raw, err := json.Marshal(s.categories)
	if err != nil {
		return fmt.Errorf("failed to serialize categories: %w", err)
	}
	if err := s.storage.Set(KeyCategories, raw); err != nil {
		return fmt.Errorf("failed to persist categories: %w", err)
	}
	return nil
}

// nextID hands out entity ids from a monotonic counter seeded above the
// highest id already in use, so a new id can never collide in any locale
// view.
func (s *Store) nextID() int64 {
	if max := s.doc.MaxEntityID(); s.lastID < max {
		s.lastID = max
	}
	s.lastID++
	return s.lastID
}

// UpdateField replaces one display string in one locale's section table,
// leaving every other section and the other locale untouched.
func (s *Store) UpdateField(locale content.Locale, section, key, value string) error {
	if !locale.Valid() {
		return fmt.Errorf("unsupported locale %q", locale)
	}
	if !content.KnownSection(section) {
		return fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	return s.mutate(func(doc *content.Document) error {
		set, ok := doc.Sections[locale]
		if !ok {
			set = make(content.SectionSet)
			doc.Sections[locale] = set
		}
		fields, ok := set[section]
		if !ok {
			fields = make(map[string]string)
			set[section] = fields
		}
		fields[key] = value
		return nil
	})
}

// UpdateIntegrations replaces the third-party snippet settings.
func (s *Store) UpdateIntegrations(in content.Integrations) error {
	return s.mutate(func(doc *content.Document) error {
		doc.Integrations = in
		return nil
	})
}

func validateProject(p content.Project) error {
	var missing []string
	if !hasProjectTitle(p) {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(p.Category) == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

func hasProjectTitle(p content.Project) bool {
	for _, t := range p.Text {
		if strings.TrimSpace(t.Title) != "" {
			return true
		}
	}
	return false
}

// AddProject validates the project, assigns an id when the caller did not
// supply one, and prepends it so it shows first in every locale view.
func (s *Store) AddProject(p content.Project) (content.Project, error) {
	if err := validateProject(p); err != nil {
		return content.Project{}, err
	}
	err := s.mutate(func(doc *content.Document) error {
		if p.ID == 0 {
			p.ID = s.nextID()
		}
		doc.Projects = append([]content.Project{p}, doc.Projects...)
		return nil
	})
	return p, err
}

// UpdateProject replaces the project with the given id in place. Only the
// named locale's text subrecord and the locale-free fields change; the
// other locale's text is preserved as-is, so a single-locale edit form can
// never clobber the other language.
func (s *Store) UpdateProject(locale content.Locale, p content.Project) error {
	if !locale.Valid() {
		return fmt.Errorf("unsupported locale %q", locale)
	}
	if err := validateProject(p); err != nil {
		return err
	}
	return s.mutate(func(doc *content.Document) error {
		existing := doc.ProjectByID(p.ID)
		if existing == nil {
			return nil // absent id is a no-op, not an error
		}
		existing.Category = p.Category
		existing.Image = p.Image
		existing.Gallery = append([]string(nil), p.Gallery...)
		existing.Technologies = append([]string(nil), p.Technologies...)
		existing.Visible = p.Visible
		existing.Text[locale] = p.Text[locale]
		return nil
	})
}

// DeleteProject removes the project with the given id from every locale
// view. Unknown ids are a no-op.
func (s *Store) DeleteProject(id int64) error {
	return s.mutate(func(doc *content.Document) error {
		doc.Projects = deleteProjectByID(doc.Projects, id)
		return nil
	})
}

func deleteProjectByID(projects []content.Project, id int64) []content.Project {
	out := projects[:0]
	for _, p := range projects {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

func validatePost(p content.BlogPost) error {
	var missing []string
	hasTitle := false
	for _, t := range p.Text {
		if strings.TrimSpace(t.Title) != "" {
			hasTitle = true
			break
		}
	}
	if !hasTitle {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(p.Category) == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// AddPost validates the post, assigns an id when needed, and prepends it.
func (s *Store) AddPost(p content.BlogPost) (content.BlogPost, error) {
	if err := validatePost(p); err != nil {
		return content.BlogPost{}, err
	}
	err := s.mutate(func(doc *content.Document) error {
		if p.ID == 0 {
			p.ID = s.nextID()
		}
		doc.Posts = append([]content.BlogPost{p}, doc.Posts...)
		return nil
	})
	return p, err
}

// UpdatePost replaces the post with the given id in place, locale-scoped
// like UpdateProject.
func (s *Store) UpdatePost(locale content.Locale, p content.BlogPost) error {
	if !locale.Valid() {
		return fmt.Errorf("unsupported locale %q", locale)
	}
	if err := validatePost(p); err != nil {
		return err
	}
	return s.mutate(func(doc *content.Document) error {
		existing := doc.PostByID(p.ID)
		if existing == nil {
			return nil
		}
		existing.Category = p.Category
		existing.Image = p.Image
		existing.Date = p.Date
		existing.ReadTime = p.ReadTime
		existing.Tags = append([]string(nil), p.Tags...)
		existing.Status = p.Status
		text := p.Text[locale]
		text.Content = append([]string(nil), text.Content...)
		existing.Text[locale] = text
		return nil
	})
}

// DeletePost removes the post with the given id. Unknown ids are a no-op.
func (s *Store) DeletePost(id int64) error {
	return s.mutate(func(doc *content.Document) error {
		out := doc.Posts[:0]
		for _, p := range doc.Posts {
			if p.ID != id {
				out = append(out, p)
			}
		}
		doc.Posts = out
		return nil
	})
}

func validateTestimonial(t content.Testimonial) error {
	var missing []string
	hasQuote, hasAuthor := false, false
	for _, tt := range t.Text {
		if strings.TrimSpace(tt.Quote) != "" {
			hasQuote = true
		}
		if strings.TrimSpace(tt.Author) != "" {
			hasAuthor = true
		}
	}
	if !hasQuote {
		missing = append(missing, "quote")
	}
	if !hasAuthor {
		missing = append(missing, "author")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// AddTestimonial validates the testimonial, assigns an id when needed,
// and prepends it.
func (s *Store) AddTestimonial(t content.Testimonial) (content.Testimonial, error) {
	if err := validateTestimonial(t); err != nil {
		return content.Testimonial{}, err
	}
	err := s.mutate(func(doc *content.Document) error {
		if t.ID == 0 {
			t.ID = s.nextID()
		}
		doc.Testimonials = append([]content.Testimonial{t}, doc.Testimonials...)
		return nil
	})
	return t, err
}

// UpdateTestimonial replaces the testimonial with the given id in place,
// locale-scoped like UpdateProject.
func (s *Store) UpdateTestimonial(locale content.Locale, t content.Testimonial) error {
	if !locale.Valid() {
		return fmt.Errorf("unsupported locale %q", locale)
	}
	if err := validateTestimonial(t); err != nil {
		return err
	}
	return s.mutate(func(doc *content.Document) error {
		existing := doc.TestimonialByID(t.ID)
		if existing == nil {
			return nil
		}
		existing.Visible = t.Visible
		existing.Text[locale] = t.Text[locale]
		return nil
	})
}

// DeleteTestimonial removes the testimonial with the given id. Unknown
// ids are a no-op.
func (s *Store) DeleteTestimonial(id int64) error {
	return s.mutate(func(doc *content.Document) error {
		out := doc.Testimonials[:0]
		for _, t := range doc.Testimonials {
			if t.ID != id {
				out = append(out, t)
			}
		}
		doc.Testimonials = out
		return nil
	})
}

// AddCategory inserts a category label unless it is already present.
// Adding an existing label is a no-op, so the set never holds duplicates.
func (s *Store) AddCategory(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &ValidationError{Missing: []string{"name"}}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c == name {
			return nil
		}
	}
	s.categories = append(s.categories, name)
	if err := s.persistCategories(); err != nil {
		s.categories = s.categories[:len(s.categories)-1]
		return err
	}
	return nil
}

// DeleteCategory removes a category label. Entities already referencing
// it keep their value; there is no cascade.
func (s *Store) DeleteCategory(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, c := range s.categories {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	prev := s.categories
	s.categories = append(append([]string(nil), prev[:idx]...), prev[idx+1:]...)
	if err := s.persistCategories(); err != nil {
		s.categories = prev
		return err
	}
	return nil
}

// ResetToDefaults restores the bundled document and category list and
// deletes both persisted keys, discarding the entire mutation history.
func (s *Store) ResetToDefaults() error {
	doc, err := defaults.Document()
	if err != nil {
		return err
	}
	cats, err := defaults.Categories()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Delete(KeyContent); err != nil {
		return fmt.Errorf("failed to clear persisted content: %w", err)
	}
	if err := s.storage.Delete(KeyCategories); err != nil {
		return fmt.Errorf("failed to clear persisted categories: %w", err)
	}
	s.doc = doc
	s.categories = cats
	s.lastID = doc.MaxEntityID()
	return nil
}
