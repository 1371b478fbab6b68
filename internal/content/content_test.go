//go:build unit

package content

import "testing"

func TestParseLocale(t *testing.T) {
	tests := []struct {
		raw     string
		want    Locale
		wantErr bool
	}{
		{"", LocaleEN, false},
		{"en", LocaleEN, false},
		{"ar", LocaleAR, false},
		{"fr", "", true},
		{"EN", "", true},
	}
	for _, tt := range tests {
		got, err := ParseLocale(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseLocale(%q): want error; got %q", tt.raw, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseLocale(%q) = %q, %v; want %q", tt.raw, got, err, tt.want)
		}
	}
}

func TestLocaleRTL(t *testing.T) {
	if LocaleEN.RTL() {
		t.Error("English must not be right-to-left")
	}
	if !LocaleAR.RTL() {
		t.Error("Arabic must be right-to-left")
	}
}

func TestVisibilityDefaults(t *testing.T) {
	if !(Project{}).IsVisible() {
		t.Error("project with unset flag must be visible")
	}
	hidden := false
	if (Project{Visible: &hidden}).IsVisible() {
		t.Error("explicit false must hide the project")
	}
	if !(BlogPost{}).IsPublished() {
		t.Error("post with unset status must count as published")
	}
	if (BlogPost{Status: StatusDraft}).IsPublished() {
		t.Error("draft must not count as published")
	}
}

func TestDocumentLookupsByID(t *testing.T) {
	doc := &Document{
		Projects: []Project{{ID: 1}, {ID: 2}},
		Posts:    []BlogPost{{ID: 5}},
	}

	if p := doc.ProjectByID(2); p == nil || p.ID != 2 {
		t.Error("ProjectByID(2) did not find the project")
	}
	if doc.ProjectByID(99) != nil {
		t.Error("ProjectByID(99) must return nil")
	}
	if doc.PostByID(5) == nil {
		t.Error("PostByID(5) did not find the post")
	}
}

func TestMaxEntityIDSpansAllCollections(t *testing.T) {
	doc := &Document{
		Projects:     []Project{{ID: 3}},
		Posts:        []BlogPost{{ID: 12}},
		Testimonials: []Testimonial{{ID: 7}},
	}
	if got := doc.MaxEntityID(); got != 12 {
		t.Errorf("want max id 12; got %d", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	visible := true
	doc := &Document{
		Sections: map[Locale]SectionSet{
			LocaleEN: {"hero": {"name": "original"}},
		},
		Projects: []Project{{
			ID:           1,
			Technologies: []string{"Go"},
			Visible:      &visible,
			Text:         map[Locale]ProjectText{LocaleEN: {Title: "original"}},
		}},
		Posts: []BlogPost{{
			ID:   2,
			Text: map[Locale]PostText{LocaleEN: {Content: []string{"first"}}},
		}},
	}

	clone := doc.Clone()
	clone.Sections[LocaleEN]["hero"]["name"] = "tampered"
	clone.Projects[0].Technologies[0] = "tampered"
	clone.Projects[0].Text[LocaleEN] = ProjectText{Title: "tampered"}
	*clone.Projects[0].Visible = false
	clone.Posts[0].Text[LocaleEN].Content[0] = "tampered"

	if doc.Sections[LocaleEN]["hero"]["name"] != "original" {
		t.Error("section edit leaked through the clone")
	}
	if doc.Projects[0].Technologies[0] != "Go" {
		t.Error("technology edit leaked through the clone")
	}
	if doc.Projects[0].Text[LocaleEN].Title != "original" {
		t.Error("text edit leaked through the clone")
	}
	if !*doc.Projects[0].Visible {
		t.Error("visibility edit leaked through the clone")
	}
	if doc.Posts[0].Text[LocaleEN].Content[0] != "first" {
		t.Error("paragraph edit leaked through the clone")
	}
}

func TestViewForFiltersByLocale(t *testing.T) {
	doc := &Document{
		Sections: map[Locale]SectionSet{
			LocaleEN: {"hero": {"name": "Name"}},
			LocaleAR: {"hero": {"name": "الاسم"}},
		},
		Projects: []Project{{ID: 1}},
	}

	en := doc.ViewFor(LocaleEN)
	ar := doc.ViewFor(LocaleAR)
	if en.Field("hero", "name") != "Name" || ar.Field("hero", "name") != "الاسم" {
		t.Error("views did not pick up their locale's section table")
	}
	// Entities are shared across locales; only strings differ.
	if len(en.Projects) != 1 || len(ar.Projects) != 1 {
		t.Error("entity collections must appear in every locale view")
	}
}

func TestViewFieldMissing(t *testing.T) {
	v := View{Sections: SectionSet{"hero": {"name": "x"}}}
	if got := v.Field("hero", "missing"); got != "" {
		t.Errorf("want empty string for missing key; got %q", got)
	}
	if got := v.Field("missing", "name"); got != "" {
		t.Errorf("want empty string for missing section; got %q", got)
	}
}
