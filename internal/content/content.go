package content

import "fmt"

// Locale identifies one of the two languages the site is published in.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleAR Locale = "ar"
)

// Locales lists every supported locale in display order.
var Locales = []Locale{LocaleEN, LocaleAR}

// Valid reports whether l is a supported locale.
func (l Locale) Valid() bool {
	return l == LocaleEN || l == LocaleAR
}

// RTL reports whether the locale is rendered right-to-left.
func (l Locale) RTL() bool {
	return l == LocaleAR
}

// Section names known to the document. UpdateField rejects anything else.
const (
	SectionNav           = "nav"
	SectionHero          = "hero"
	SectionAbout         = "about"
	SectionSkills        = "skills"
	SectionPortfolio     = "portfolio"
	SectionPortfolioPage = "portfolioPage"
	SectionProjectDetail = "projectDetail"
	SectionExperience    = "experience"
	SectionTestimonials  = "testimonials"
	SectionBlog          = "blog"
	SectionContact       = "contact"
	SectionModal         = "modal"
	SectionAdmin         = "admin"
)

var knownSections = map[string]bool{
	SectionNav:           true,
	SectionHero:          true,
	SectionAbout:         true,
	SectionSkills:        true,
	SectionPortfolio:     true,
	SectionPortfolioPage: true,
	SectionProjectDetail: true,
	SectionExperience:    true,
	SectionTestimonials:  true,
	SectionBlog:          true,
	SectionContact:       true,
	SectionModal:         true,
	SectionAdmin:         true,
}

// KnownSection reports whether name is a section the document carries.
func KnownSection(name string) bool {
	return knownSections[name]
}

// SectionSet holds the per-locale display strings for every section,
// keyed by section name and then by field key.
type SectionSet map[string]map[string]string

// ProjectText is the localized part of a Project.
type ProjectText struct {
	Title           string `json:"title" yaml:"title"`
	Description     string `json:"description" yaml:"description"`
	FullDescription string `json:"fullDescription" yaml:"fullDescription"`
}

// Project is a single portfolio entry. Text is keyed by locale so that the
// "same id in every language" property holds by construction rather than by
// keeping two parallel lists in sync.
type Project struct {
	ID           int64                  `json:"id" yaml:"id"`
	Category     string                 `json:"category" yaml:"category"`
	Image        string                 `json:"image" yaml:"image"`
	Gallery      []string               `json:"gallery,omitempty" yaml:"gallery,omitempty"`
	Technologies []string               `json:"technologies" yaml:"technologies"`
	Visible      *bool                  `json:"isVisible,omitempty" yaml:"isVisible,omitempty"`
	Text         map[Locale]ProjectText `json:"text" yaml:"text"`
}

// IsVisible treats an unset flag as visible; only an explicit false hides.
func (p Project) IsVisible() bool {
	return p.Visible == nil || *p.Visible
}

// PostText is the localized part of a BlogPost. Content is an ordered list
// of paragraphs; markdown is allowed and rendered on the public site.
type PostText struct {
	Title   string   `json:"title" yaml:"title"`
	Excerpt string   `json:"excerpt" yaml:"excerpt"`
	Content []string `json:"content" yaml:"content"`
}

// Post statuses.
const (
	StatusPublished = "published"
	StatusDraft     = "draft"
)

// BlogPost is a single blog entry.
type BlogPost struct {
	ID       int64               `json:"id" yaml:"id"`
	Category string              `json:"category" yaml:"category"`
	Image    string              `json:"image" yaml:"image"`
	Date     string              `json:"date" yaml:"date"`
	ReadTime string              `json:"readTime" yaml:"readTime"`
	Tags     []string            `json:"tags,omitempty" yaml:"tags,omitempty"`
	Status   string              `json:"status,omitempty" yaml:"status,omitempty"`
	Text     map[Locale]PostText `json:"text" yaml:"text"`
}

// IsPublished treats a missing status as published.
func (p BlogPost) IsPublished() bool {
	return p.Status == "" || p.Status == StatusPublished
}

// TestimonialText is the localized part of a Testimonial.
type TestimonialText struct {
	Quote  string `json:"quote" yaml:"quote"`
	Author string `json:"author" yaml:"author"`
	Role   string `json:"role,omitempty" yaml:"role,omitempty"`
}

// Testimonial is a single client quote.
type Testimonial struct {
	ID      int64                      `json:"id" yaml:"id"`
	Visible *bool                      `json:"isVisible,omitempty" yaml:"isVisible,omitempty"`
	Text    map[Locale]TestimonialText `json:"text" yaml:"text"`
}

// IsVisible treats an unset flag as visible; only an explicit false hides.
func (t Testimonial) IsVisible() bool {
	return t.Visible == nil || *t.Visible
}

// Skill is one entry in the tools-and-technologies grid. Tool names read
// the same in both languages, so the record is locale-free.
type Skill struct {
	Name string `json:"name" yaml:"name"`
	Key  string `json:"key" yaml:"key"`
}

// ExperienceText is the localized part of an ExperienceItem. Year is a
// display string because the Arabic site uses Eastern Arabic numerals.
type ExperienceText struct {
	Year         string `json:"year" yaml:"year"`
	Title        string `json:"title" yaml:"title"`
	Organization string `json:"organization" yaml:"organization"`
	Description  string `json:"description" yaml:"description"`
}

// ExperienceItem is one entry on the journey timeline.
type ExperienceItem struct {
	ID   int64                     `json:"id" yaml:"id"`
	Type string                    `json:"type" yaml:"type"` // work, education or achievement
	Text map[Locale]ExperienceText `json:"text" yaml:"text"`
}

// Integrations carries the third-party snippet settings. Locale-free.
type Integrations struct {
	GoogleAnalyticsID       string `json:"googleAnalyticsId" yaml:"googleAnalyticsId"`
	GoogleSearchConsoleCode string `json:"googleSearchConsoleCode" yaml:"googleSearchConsoleCode"`
}

// SchemaVersion is written into every persisted document so a future shape
// change can be detected at hydration time instead of surfacing as missing
// fields.
const SchemaVersion = 1

// Document is the full editable record of the site: per-locale string
// tables plus the three entity collections. Entities are stored once, with
// per-locale text subrecords, so both language views always agree on ids,
// ordering and length.
type Document struct {
	SchemaVersion int                   `json:"schemaVersion" yaml:"schemaVersion"`
	Sections      map[Locale]SectionSet `json:"sections" yaml:"sections"`
	Integrations  Integrations          `json:"integrations" yaml:"integrations"`
	Skills        []Skill               `json:"skills" yaml:"skills"`
	Experience    []ExperienceItem      `json:"experience" yaml:"experience"`
	Projects      []Project             `json:"projects" yaml:"projects"`
	Posts         []BlogPost            `json:"posts" yaml:"posts"`
	Testimonials  []Testimonial         `json:"testimonials" yaml:"testimonials"`
}

// Field returns one display string, or "" when the section or key is absent.
func (d *Document) Field(locale Locale, section, key string) string {
	set, ok := d.Sections[locale]
	if !ok {
		return ""
	}
	fields, ok := set[section]
	if !ok {
		return ""
	}
	return fields[key]
}

// ProjectByID returns the project with the given id, or nil.
func (d *Document) ProjectByID(id int64) *Project {
	for i := range d.Projects {
		if d.Projects[i].ID == id {
			return &d.Projects[i]
		}
	}
	return nil
}

// PostByID returns the post with the given id, or nil.
func (d *Document) PostByID(id int64) *BlogPost {
	for i := range d.Posts {
		if d.Posts[i].ID == id {
			return &d.Posts[i]
		}
	}
	return nil
}

// TestimonialByID returns the testimonial with the given id, or nil.
func (d *Document) TestimonialByID(id int64) *Testimonial {
	for i := range d.Testimonials {
		if d.Testimonials[i].ID == id {
			return &d.Testimonials[i]
		}
	}
	return nil
}

// MaxEntityID returns the highest id used by any entity in the document.
func (d *Document) MaxEntityID() int64 {
	var max int64
	for _, p := range d.Projects {
		if p.ID > max {
			max = p.ID
		}
	}
	for _, p := range d.Posts {
		if p.ID > max {
			max = p.ID
		}
	}
	for _, t := range d.Testimonials {
		if t.ID > max {
			max = t.ID
		}
	}
	return max
}

// Clone returns a deep copy of the document. Snapshots handed to renderers
// must never alias the live document.
func (d *Document) Clone() *Document {
	out := &Document{
		SchemaVersion: d.SchemaVersion,
		Integrations:  d.Integrations,
	}
	out.Sections = make(map[Locale]SectionSet, len(d.Sections))
	for locale, set := range d.Sections {
		cp := make(SectionSet, len(set))
		for section, fields := range set {
			f := make(map[string]string, len(fields))
			for k, v := range fields {
				f[k] = v
			}
			cp[section] = f
		}
		out.Sections[locale] = cp
	}
	out.Skills = append([]Skill(nil), d.Skills...)
	out.Experience = make([]ExperienceItem, len(d.Experience))
	for i, e := range d.Experience {
		text := make(map[Locale]ExperienceText, len(e.Text))
		for l, t := range e.Text {
			text[l] = t
		}
		e.Text = text
		out.Experience[i] = e
	}
	out.Projects = make([]Project, len(d.Projects))
	for i, p := range d.Projects {
		out.Projects[i] = cloneProject(p)
	}
	out.Posts = make([]BlogPost, len(d.Posts))
	for i, p := range d.Posts {
		out.Posts[i] = clonePost(p)
	}
	out.Testimonials = make([]Testimonial, len(d.Testimonials))
	for i, t := range d.Testimonials {
		out.Testimonials[i] = cloneTestimonial(t)
	}
	return out
}

func cloneProject(p Project) Project {
	p.Gallery = append([]string(nil), p.Gallery...)
	p.Technologies = append([]string(nil), p.Technologies...)
	if p.Visible != nil {
		v := *p.Visible
		p.Visible = &v
	}
	text := make(map[Locale]ProjectText, len(p.Text))
	for l, t := range p.Text {
		text[l] = t
	}
	p.Text = text
	return p
}

func clonePost(p BlogPost) BlogPost {
	p.Tags = append([]string(nil), p.Tags...)
	text := make(map[Locale]PostText, len(p.Text))
	for l, t := range p.Text {
		t.Content = append([]string(nil), t.Content...)
		text[l] = t
	}
	p.Text = text
	return p
}

func cloneTestimonial(t Testimonial) Testimonial {
	if t.Visible != nil {
		v := *t.Visible
		t.Visible = &v
	}
	text := make(map[Locale]TestimonialText, len(t.Text))
	for l, tt := range t.Text {
		text[l] = tt
	}
	t.Text = text
	return t
}

// View is one locale's read-only projection of the document, the shape the
// public templates consume.
type View struct {
	Locale       Locale
	Sections     SectionSet
	Integrations Integrations
	Skills       []Skill
	Experience   []ExperienceItem
	Projects     []Project
	Posts        []BlogPost
	Testimonials []Testimonial
}

// ViewFor projects the document for one locale. The entity slices are
// shared with the clone the caller obtained, not with the live document.
func (d *Document) ViewFor(locale Locale) View {
	return View{
		Locale:       locale,
		Sections:     d.Sections[locale],
		Integrations: d.Integrations,
		Skills:       d.Skills,
		Experience:   d.Experience,
		Projects:     d.Projects,
		Posts:        d.Posts,
		Testimonials: d.Testimonials,
	}
}

// Field returns one display string from the view's section table.
func (v View) Field(section, key string) string {
	fields, ok := v.Sections[section]
	if !ok {
		return ""
	}
	return fields[key]
}

// VisibleProjects filters out projects hidden by the operator.
func (v View) VisibleProjects() []Project {
	out := make([]Project, 0, len(v.Projects))
	for _, p := range v.Projects {
		if p.IsVisible() {
			out = append(out, p)
		}
	}
	return out
}

// PublishedPosts filters out drafts.
func (v View) PublishedPosts() []BlogPost {
	out := make([]BlogPost, 0, len(v.Posts))
	for _, p := range v.Posts {
		if p.IsPublished() {
			out = append(out, p)
		}
	}
	return out
}

// VisibleTestimonials filters out testimonials hidden by the operator.
func (v View) VisibleTestimonials() []Testimonial {
	out := make([]Testimonial, 0, len(v.Testimonials))
	for _, t := range v.Testimonials {
		if t.IsVisible() {
			out = append(out, t)
		}
	}
	return out
}

// ParseLocale validates a raw locale string, defaulting empty to English.
func ParseLocale(raw string) (Locale, error) {
	if raw == "" {
		return LocaleEN, nil
	}
	l := Locale(raw)
	if !l.Valid() {
		return "", fmt.Errorf("unsupported locale %q", raw)
	}
	return l, nil
}
