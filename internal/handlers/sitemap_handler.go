package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/chiarivoices/backend/internal/sitemap"
	"github.com/labstack/echo/v4"
	gocache "github.com/patrickmn/go-cache"
)

// Generation is bounded so a slow store cannot hold the request open.
const sitemapTimeout = 10 * time.Second

// SitemapHandler serves the sitemap.xml document. It prefers the cached
// artifact kept warm by the change-stream watcher and regenerates on miss.
type SitemapHandler struct {
	generator *sitemap.Generator
	cache     *gocache.Cache
}

// NewSitemapHandler creates a new SitemapHandler
func NewSitemapHandler(generator *sitemap.Generator, cache *gocache.Cache) *SitemapHandler {
	return &SitemapHandler{
		generator: generator,
		cache:     cache,
	}
}

// RegisterSitemapRoutes registers the sitemap route on the bare Echo instance
// (outside the /api group, where crawlers expect it)
func (h *SitemapHandler) RegisterSitemapRoutes(e *echo.Echo) {
	e.GET("/sitemap.xml", h.GetSitemap)
}

// GetSitemap returns the sitemap document with status 200 and content type
// application/xml. Any unexpected generation failure yields a plaintext 500,
// never a stack trace.
func (h *SitemapHandler) GetSitemap(c echo.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Sitemap generation panicked: %v", r)
			err = c.String(http.StatusInternalServerError, "sitemap generation failed")
		}
	}()

	if cached, ok := h.cache.Get(sitemap.CacheKey); ok {
		if doc, ok := cached.(string); ok {
			return c.Blob(http.StatusOK, "application/xml", []byte(doc))
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), sitemapTimeout)
	defer cancel()

	doc := h.generator.Generate(ctx)
	h.cache.Set(sitemap.CacheKey, doc, gocache.DefaultExpiration)

	return c.Blob(http.StatusOK, "application/xml", []byte(doc))
}
