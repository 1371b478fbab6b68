//go:build unit

package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magma-studio/atelier/internal/content"
)

// recordingStore is a ContentStore double that records what reaches the
// store layer, so tests can assert on the sanitized values.
type recordingStore struct {
	doc            *content.Document
	categories     []string
	lastProject    content.Project
	lastPost       content.BlogPost
	lastField      string
	lastCategory   string
	lastIntegr     content.Integrations
	resetCalled    bool
	deletedProject int64
}

var _ ContentStore = (*recordingStore)(nil)

func (r *recordingStore) Snapshot() *content.Document { return r.doc }
func (r *recordingStore) ViewFor(locale content.Locale) content.View {
	return r.doc.ViewFor(locale)
}
func (r *recordingStore) Categories() []string { return r.categories }
func (r *recordingStore) UpdateField(locale content.Locale, section, key, value string) error {
	r.lastField = value
	return nil
}
func (r *recordingStore) UpdateIntegrations(in content.Integrations) error {
	r.lastIntegr = in
	return nil
}
func (r *recordingStore) AddProject(p content.Project) (content.Project, error) {
	r.lastProject = p
	return p, nil
}
func (r *recordingStore) UpdateProject(locale content.Locale, p content.Project) error {
	r.lastProject = p
	return nil
}
func (r *recordingStore) DeleteProject(id int64) error {
	r.deletedProject = id
	return nil
}
func (r *recordingStore) AddPost(p content.BlogPost) (content.BlogPost, error) {
	r.lastPost = p
	return p, nil
}
func (r *recordingStore) UpdatePost(locale content.Locale, p content.BlogPost) error {
	r.lastPost = p
	return nil
}
func (r *recordingStore) DeletePost(id int64) error { return nil }
func (r *recordingStore) AddTestimonial(t content.Testimonial) (content.Testimonial, error) {
	return t, nil
}
func (r *recordingStore) UpdateTestimonial(locale content.Locale, t content.Testimonial) error {
	return nil
}
func (r *recordingStore) DeleteTestimonial(id int64) error { return nil }
func (r *recordingStore) AddCategory(name string) error {
	r.lastCategory = name
	return nil
}
func (r *recordingStore) DeleteCategory(name string) error { return nil }
func (r *recordingStore) ResetToDefaults() error {
	r.resetCalled = true
	return nil
}

func newTestService() (*ContentService, *recordingStore) {
	store := &recordingStore{doc: &content.Document{}}
	return NewContentService(store), store
}

func TestAddProjectStripsMarkupFromSingleLineFields(t *testing.T) {
	svc, store := newTestService()

	_, err := svc.AddProject(content.Project{
		Category: `Web<script>alert(1)</script>`,
		Text: map[content.Locale]content.ProjectText{
			content.LocaleEN: {
				Title:       `<b>Bold</b> title`,
				Description: `desc <img src=x onerror=alert(1)>`,
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Web", store.lastProject.Category)
	assert.Equal(t, "Bold title", store.lastProject.Text[content.LocaleEN].Title)
	assert.NotContains(t, store.lastProject.Text[content.LocaleEN].Description, "onerror")
}

func TestAddProjectKeepsBasicFormattingInLongForm(t *testing.T) {
	svc, store := newTestService()

	_, err := svc.AddProject(content.Project{
		Category: "Web",
		Text: map[content.Locale]content.ProjectText{
			content.LocaleEN: {
				Title:           "Title",
				FullDescription: `<p>Kept.</p><script>dropped()</script>`,
			},
		},
	})
	require.NoError(t, err)

	full := store.lastProject.Text[content.LocaleEN].FullDescription
	assert.Contains(t, full, "<p>Kept.</p>")
	assert.NotContains(t, full, "<script>")
}

func TestAddPostSanitizesEveryParagraph(t *testing.T) {
	svc, store := newTestService()

	_, err := svc.AddPost(content.BlogPost{
		Category: "Design",
		Tags:     []string{`tag<script>x</script>`},
		Text: map[content.Locale]content.PostText{
			content.LocaleEN: {
				Title:   "Title",
				Content: []string{`fine`, `<script>bad()</script>also fine`},
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "tag", store.lastPost.Tags[0])
	for _, para := range store.lastPost.Text[content.LocaleEN].Content {
		assert.NotContains(t, para, "<script>")
	}
}

func TestUpdateFieldSanitizesValue(t *testing.T) {
	svc, store := newTestService()

	err := svc.UpdateField(content.LocaleEN, "hero", "title", `Hi<script>x()</script>`)
	require.NoError(t, err)
	assert.Equal(t, "Hi", store.lastField)
}

func TestUpdateIntegrationsStripsAllMarkup(t *testing.T) {
	svc, store := newTestService()

	err := svc.UpdateIntegrations(content.Integrations{
		GoogleAnalyticsID:       `G-ABC<script>x</script>`,
		GoogleSearchConsoleCode: `<meta content="v">token`,
	})
	require.NoError(t, err)

	assert.Equal(t, "G-ABC", store.lastIntegr.GoogleAnalyticsID)
	assert.Equal(t, "token", store.lastIntegr.GoogleSearchConsoleCode)
}

func TestRenderParagraphsConvertsMarkdown(t *testing.T) {
	svc, _ := newTestService()

	out := svc.RenderParagraphs([]string{"Plain text.", "Some **bold** words."})
	require.Len(t, out, 2)

	assert.Contains(t, string(out[0]), "Plain text.")
	assert.Contains(t, string(out[1]), "<strong>bold</strong>")
}

func TestRenderParagraphsSanitizesOutput(t *testing.T) {
	svc, _ := newTestService()

	out := svc.RenderParagraphs([]string{`Before <script>bad()</script> after.`})
	require.Len(t, out, 1)
	assert.NotContains(t, string(out[0]), "<script>")
}

func TestLocalizedDigits(t *testing.T) {
	assert.Equal(t, "2024", LocalizedDigits(content.LocaleEN, "2024"))
	assert.Equal(t, "٢٠٢٤", LocalizedDigits(content.LocaleAR, "2024"))
	assert.Equal(t, "٥ min", LocalizedDigits(content.LocaleAR, "5 min"))
}

func TestStatsCountsDrafts(t *testing.T) {
	svc, store := newTestService()
	store.doc = &content.Document{
		Projects: []content.Project{{ID: 1}},
		Posts: []content.BlogPost{
			{ID: 2, Status: content.StatusPublished},
			{ID: 3, Status: content.StatusDraft},
		},
		Testimonials: []content.Testimonial{{ID: 4}},
	}
	store.categories = []string{"a", "b"}

	st := svc.Stats()
	assert.Equal(t, 1, st.Projects)
	assert.Equal(t, 2, st.Posts)
	assert.Equal(t, 1, st.Drafts)
	assert.Equal(t, 1, st.Testimonials)
	assert.Equal(t, 2, st.Categories)

	assert.True(t, strings.Contains(st.String(), "1 drafts") || strings.Contains(st.String(), "(1 drafts)"))
}
