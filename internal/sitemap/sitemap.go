// Package sitemap builds the sitemap.xml document for the public site from
// the currently published posts and their tags.
package sitemap

import (
	"context"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chiarivoices/backend/internal/models"
)

// CacheKey is where the generated document is stored in the shared cache,
// written by the change-stream watcher and read by the HTTP handler.
const CacheKey = "sitemap.xml"

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
	`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n"

// PostSource is the read contract the generator needs from the post store.
// The two queries are independent failure domains: either may fail without
// aborting generation.
type PostSource interface {
	// PublishedPosts returns all published posts ordered by created_at descending.
	PublishedPosts(ctx context.Context) ([]models.Post, error)
	// PublishedTags returns the tags of all published posts in first-seen
	// order (created_at descending across posts). Duplicates are allowed;
	// the generator deduplicates.
	PublishedTags(ctx context.Context) ([]string, error)
}

// Generator produces sitemap documents. A fresh document is built per call;
// no state is shared between generations.
type Generator struct {
	Source  PostSource
	BaseURL string           // e.g. "https://chiarivoices.org", no trailing slash
	Now     func() time.Time // defaults to time.Now when nil
}

func NewGenerator(source PostSource, baseURL string) *Generator {
	return &Generator{
		Source:  source,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Now:     time.Now,
	}
}

// Generate builds the complete sitemap document. A failing post or tag query
// degrades that section to empty rather than failing the whole document, so
// the result is always well-formed XML containing at least the static entries.
func (g *Generator) Generate(ctx context.Context) string {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	today := now().Format("2006-01-02")

	var (
		wg      sync.WaitGroup
		posts   []models.Post
		tags    []string
		postErr error
		tagErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		posts, postErr = g.Source.PublishedPosts(ctx)
	}()
	go func() {
		defer wg.Done()
		tags, tagErr = g.Source.PublishedTags(ctx)
	}()
	wg.Wait()

	var b strings.Builder
	b.WriteString(xmlHeader)

	// Static pages first. Home and the post listing change daily; about and
	// contact carry no lastmod.
	writeURL(&b, g.BaseURL+"/", today, "daily", "1.0")
	writeURL(&b, g.BaseURL+"/posts", today, "daily", "1.0")
	writeURL(&b, g.BaseURL+"/about", "", "monthly", "0.5")
	writeURL(&b, g.BaseURL+"/contact", "", "monthly", "0.5")

	if postErr != nil {
		log.Printf("sitemap: post query failed, emitting without post entries: %v", postErr)
	} else {
		for _, post := range posts {
			if strings.TrimSpace(post.Slug) == "" {
				log.Printf("sitemap: skipping post %s: missing slug", post.ID.Hex())
				continue
			}
			lastmod := today
			if !post.CreatedAt.IsZero() {
				lastmod = post.CreatedAt.Format("2006-01-02")
			}
			writeURL(&b, g.BaseURL+"/post/"+post.Slug, lastmod, "weekly", "0.9")
		}
	}

	if tagErr != nil {
		log.Printf("sitemap: tag query failed, emitting without tag entries: %v", tagErr)
	} else {
		seen := make(map[string]bool, len(tags))
		for _, tag := range tags {
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			writeURL(&b, g.BaseURL+"/posts?tag="+url.QueryEscape(tag), today, "weekly", "0.7")
		}
	}

	b.WriteString("</urlset>\n")
	return b.String()
}

func writeURL(b *strings.Builder, loc, lastmod, changefreq, priority string) {
	b.WriteString("  <url>\n")
	b.WriteString("    <loc>" + Escape(loc) + "</loc>\n")
	if lastmod != "" {
		b.WriteString("    <lastmod>" + Escape(lastmod) + "</lastmod>\n")
	}
	b.WriteString("    <changefreq>" + Escape(changefreq) + "</changefreq>\n")
	b.WriteString("    <priority>" + Escape(priority) + "</priority>\n")
	b.WriteString("  </url>\n")
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
)

// Escape makes a value safe for an XML text position. User-controlled strings
// (slugs, tag names) must pass through here before interpolation. A non-string
// value degrades to an empty string instead of panicking.
func Escape(v any) string {
	s, ok := v.(string)
	if !ok {
		log.Printf("sitemap: escape called with non-string value %T, emitting empty", v)
		return ""
	}
	return xmlEscaper.Replace(s)
}
