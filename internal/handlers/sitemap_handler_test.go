package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	gocache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiarivoices/backend/internal/models"
	"github.com/chiarivoices/backend/internal/sitemap"
)

type countingSource struct {
	calls int32
}

func (s *countingSource) PublishedPosts(ctx context.Context) ([]models.Post, error) {
	atomic.AddInt32(&s.calls, 1)
	return nil, nil
}

func (s *countingSource) PublishedTags(ctx context.Context) ([]string, error) {
	return nil, nil
}

func sitemapRequest(t *testing.T, h *SitemapHandler) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h.GetSitemap(c))
	return rec
}

func TestGetSitemap_GeneratesAndServesXML(t *testing.T) {
	source := &countingSource{}
	cache := gocache.New(time.Minute, time.Minute)
	h := NewSitemapHandler(sitemap.NewGenerator(source, "https://chiarivoices.org"), cache)

	rec := sitemapRequest(t, h)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get(echo.HeaderContentType))
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, body, "</urlset>")
	assert.Equal(t, int32(1), atomic.LoadInt32(&source.calls))

	// The generated document is stored for subsequent requests.
	cached, ok := cache.Get(sitemap.CacheKey)
	require.True(t, ok)
	assert.Equal(t, body, cached)
}

func TestGetSitemap_ServesCachedArtifactWithoutRegenerating(t *testing.T) {
	source := &countingSource{}
	cache := gocache.New(time.Minute, time.Minute)
	cache.Set(sitemap.CacheKey, "<urlset>warm</urlset>", gocache.DefaultExpiration)
	h := NewSitemapHandler(sitemap.NewGenerator(source, "https://chiarivoices.org"), cache)

	rec := sitemapRequest(t, h)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<urlset>warm</urlset>", rec.Body.String())
	assert.Zero(t, atomic.LoadInt32(&source.calls), "cache hit must not touch the store")
}

func TestGetSitemap_FailureReturnsPlaintext500(t *testing.T) {
	// A nil generator makes the handler panic; the contract is a plaintext
	// 500, never a stack trace.
	cache := gocache.New(time.Minute, time.Minute)
	h := NewSitemapHandler(nil, cache)

	rec := sitemapRequest(t, h)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "sitemap generation failed", rec.Body.String())
}
