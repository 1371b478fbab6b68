package handler

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/magma-studio/atelier/internal/middleware"
	"github.com/magma-studio/atelier/internal/service"
)

// SEOHandler serves the sitemap and robots file from the live content, so
// a newly published post is crawlable without a rebuild step.
type SEOHandler struct {
	contentSvc *service.ContentService
	baseURL    string
}

// NewSEOHandler creates a new SEOHandler rooted at baseURL.
func NewSEOHandler(cs *service.ContentService, baseURL string) *SEOHandler {
	return &SEOHandler{contentSvc: cs, baseURL: strings.TrimRight(baseURL, "/")}
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type sitemapIndex struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

func (h *SEOHandler) sitemapHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	doc := h.contentSvc.Snapshot()

	urls := []sitemapURL{
		{Loc: h.baseURL + "/", ChangeFreq: "weekly", Priority: "1.0"},
		{Loc: h.baseURL + "/blog", ChangeFreq: "weekly", Priority: "0.8"},
		{Loc: h.baseURL + "/portfolio", ChangeFreq: "weekly", Priority: "0.8"},
	}
	for _, p := range doc.Posts {
		if !p.IsPublished() {
			continue
		}
		urls = append(urls, sitemapURL{
			Loc:        fmt.Sprintf("%s/blog/%d", h.baseURL, p.ID),
			ChangeFreq: "monthly",
			Priority:   "0.6",
		})
	}
	for _, p := range doc.Projects {
		if !p.IsVisible() {
			continue
		}
		urls = append(urls, sitemapURL{
			Loc:        fmt.Sprintf("%s/work/%d", h.baseURL, p.ID),
			ChangeFreq: "monthly",
			Priority:   "0.6",
		})
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to write sitemap", Code: http.StatusInternalServerError}
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(sitemapIndex{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to encode sitemap", Code: http.StatusInternalServerError}
	}
	return nil
}

func (h *SEOHandler) robotsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "User-agent: *\nDisallow: /admin\nDisallow: /auth\n\nSitemap: %s/sitemap.xml\n", h.baseURL)
	return nil
}
