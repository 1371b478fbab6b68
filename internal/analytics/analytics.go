// Package analytics builds the third-party head fragments configured under
// the document's integrations settings. Building is purely additive: an
// empty setting yields an empty fragment, and the fragment for a given id
// is computed once and reused, so repeated renders never stack duplicate
// tags.
package analytics

import (
	"fmt"
	"html/template"
	"sync"

	"github.com/magma-studio/atelier/internal/content"
)

// Injector renders the GA and Search Console tags for the current
// integrations settings.
type Injector struct {
	mu       sync.Mutex
	lastID   string
	lastCode string
	cached   template.HTML
}

// NewInjector returns an Injector with nothing injected yet.
func NewInjector() *Injector {
	return &Injector{}
}

// Head returns the head fragment for the given settings. The result is
// recomputed only when the settings change.
func (i *Injector) Head(in content.Integrations) template.HTML {
	i.mu.Lock()
	defer i.mu.Unlock()
	if in.GoogleAnalyticsID == i.lastID && in.GoogleSearchConsoleCode == i.lastCode {
		return i.cached
	}
	i.lastID = in.GoogleAnalyticsID
	i.lastCode = in.GoogleSearchConsoleCode
	i.cached = build(in)
	return i.cached
}

func build(in content.Integrations) template.HTML {
	var out string
	if in.GoogleAnalyticsID != "" {
		id := template.JSEscapeString(in.GoogleAnalyticsID)
		out += fmt.Sprintf(
			`<script async src="https://www.googletagmanager.com/gtag/js?id=%s"></script>`+"\n"+
				`<script>window.dataLayer=window.dataLayer||[];function gtag(){dataLayer.push(arguments);}gtag('js',new Date());gtag('config','%s');</script>`+"\n",
			template.HTMLEscapeString(in.GoogleAnalyticsID), id)
	}
	if in.GoogleSearchConsoleCode != "" {
		out += fmt.Sprintf(`<meta name="google-site-verification" content="%s">`+"\n",
			template.HTMLEscapeString(in.GoogleSearchConsoleCode))
	}
	return template.HTML(out)
}
