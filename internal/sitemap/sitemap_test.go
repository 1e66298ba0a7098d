package sitemap

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chiarivoices/backend/internal/models"
)

type fakeSource struct {
	posts   []models.Post
	tags    []string
	postErr error
	tagErr  error
}

func (f *fakeSource) PublishedPosts(ctx context.Context) ([]models.Post, error) {
	return f.posts, f.postErr
}

func (f *fakeSource) PublishedTags(ctx context.Context) ([]string, error) {
	return f.tags, f.tagErr
}

func testGenerator(source *fakeSource) *Generator {
	g := NewGenerator(source, "https://chiarivoices.org")
	g.Now = func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return g
}

func post(n int, slug string, createdAt time.Time, tags ...string) models.Post {
	id, err := primitive.ObjectIDFromHex(fmt.Sprintf("%024x", n))
	if err != nil {
		panic(err)
	}
	return models.Post{
		ID:        id,
		Slug:      slug,
		Status:    models.PostStatusPublished,
		Tags:      tags,
		CreatedAt: createdAt,
	}
}

// urlset mirrors the sitemap schema for parsing generated output back.
type urlset struct {
	XMLName xml.Name   `xml:"urlset"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

func parse(t *testing.T, doc string) urlset {
	t.Helper()
	var set urlset
	require.NoError(t, xml.Unmarshal([]byte(doc), &set), "generated sitemap must be well-formed XML")
	return set
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "&lt;tag&gt;&amp;&apos;&quot;", Escape(`<tag>&'"`))
	assert.Equal(t, "plain", Escape("plain"))
	assert.Equal(t, "", Escape(nil))
	assert.Equal(t, "", Escape(42))
	assert.Equal(t, "", Escape([]string{"not", "a", "string"}))
}

func TestGenerate_StaticEntriesOnly(t *testing.T) {
	g := testGenerator(&fakeSource{})
	set := parse(t, g.Generate(context.Background()))

	require.Len(t, set.URLs, 4)
	assert.Equal(t, "https://chiarivoices.org/", set.URLs[0].Loc)
	assert.Equal(t, "daily", set.URLs[0].ChangeFreq)
	assert.Equal(t, "1.0", set.URLs[0].Priority)
	assert.Equal(t, "2025-06-01", set.URLs[0].LastMod)

	assert.Equal(t, "https://chiarivoices.org/posts", set.URLs[1].Loc)
	assert.Equal(t, "2025-06-01", set.URLs[1].LastMod)

	assert.Equal(t, "https://chiarivoices.org/about", set.URLs[2].Loc)
	assert.Equal(t, "monthly", set.URLs[2].ChangeFreq)
	assert.Equal(t, "0.5", set.URLs[2].Priority)
	assert.Empty(t, set.URLs[2].LastMod, "about carries no lastmod")

	assert.Equal(t, "https://chiarivoices.org/contact", set.URLs[3].Loc)
	assert.Empty(t, set.URLs[3].LastMod, "contact carries no lastmod")
}

func TestGenerate_PostEntries(t *testing.T) {
	// Three published posts: c (newest), a, b without a slug. b must be
	// skipped; c and a appear in store order after the four static entries.
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	g := testGenerator(&fakeSource{
		posts: []models.Post{
			post(3, "c", base.Add(48*time.Hour)),
			post(1, "a", base.Add(24*time.Hour)),
			post(2, "", base),
		},
	})
	set := parse(t, g.Generate(context.Background()))

	require.Len(t, set.URLs, 6)
	assert.Equal(t, "https://chiarivoices.org/post/c", set.URLs[4].Loc)
	assert.Equal(t, "2025-05-03", set.URLs[4].LastMod)
	assert.Equal(t, "weekly", set.URLs[4].ChangeFreq)
	assert.Equal(t, "0.9", set.URLs[4].Priority)
	assert.Equal(t, "https://chiarivoices.org/post/a", set.URLs[5].Loc)
}

func TestGenerate_PostWithoutCreatedAtFallsBackToToday(t *testing.T) {
	g := testGenerator(&fakeSource{
		posts: []models.Post{post(1, "undated", time.Time{})},
	})
	set := parse(t, g.Generate(context.Background()))

	require.Len(t, set.URLs, 5)
	assert.Equal(t, "2025-06-01", set.URLs[4].LastMod)
}

func TestGenerate_TagDeduplication(t *testing.T) {
	// Tags arrive flattened in first-seen order; pain appears twice and must
	// be emitted once.
	g := testGenerator(&fakeSource{
		tags: []string{"chiari", "pain", "pain", "hope"},
	})
	set := parse(t, g.Generate(context.Background()))

	require.Len(t, set.URLs, 7)
	assert.Equal(t, "https://chiarivoices.org/posts?tag=chiari", set.URLs[4].Loc)
	assert.Equal(t, "https://chiarivoices.org/posts?tag=pain", set.URLs[5].Loc)
	assert.Equal(t, "https://chiarivoices.org/posts?tag=hope", set.URLs[6].Loc)
	assert.Equal(t, "0.7", set.URLs[4].Priority)
	assert.Equal(t, "weekly", set.URLs[4].ChangeFreq)
	assert.Equal(t, "2025-06-01", set.URLs[4].LastMod)
}

func TestGenerate_TagsAreURLEncoded(t *testing.T) {
	g := testGenerator(&fakeSource{
		tags: []string{"chronic pain", "q&a"},
	})
	doc := g.Generate(context.Background())

	assert.Contains(t, doc, "/posts?tag=chronic+pain")
	assert.Contains(t, doc, "/posts?tag=q%26a")
	assert.NotContains(t, doc, "q&a<")

	set := parse(t, doc)
	require.Len(t, set.URLs, 6)
}

func TestGenerate_SlugIsXMLEscaped(t *testing.T) {
	g := testGenerator(&fakeSource{
		posts: []models.Post{post(1, `a&b<c>"d"`, time.Time{})},
	})
	doc := g.Generate(context.Background())

	assert.Contains(t, doc, "/post/a&amp;b&lt;c&gt;&quot;d&quot;")
	parse(t, doc)
}

func TestGenerate_DegradedWhenTagQueryFails(t *testing.T) {
	g := testGenerator(&fakeSource{
		posts:  []models.Post{post(1, "a", time.Time{})},
		tagErr: errors.New("tag query exploded"),
	})
	set := parse(t, g.Generate(context.Background()))

	require.Len(t, set.URLs, 5, "static + post entries, zero tag entries")
	assert.Equal(t, "https://chiarivoices.org/post/a", set.URLs[4].Loc)
	for _, u := range set.URLs {
		assert.NotContains(t, u.Loc, "tag=")
	}
}

func TestGenerate_DegradedWhenPostQueryFails(t *testing.T) {
	g := testGenerator(&fakeSource{
		postErr: errors.New("post query exploded"),
	})
	set := parse(t, g.Generate(context.Background()))

	require.Len(t, set.URLs, 4, "static entries survive a post query failure")
}

func TestGenerate_DegradedWhenBothQueriesFail(t *testing.T) {
	g := testGenerator(&fakeSource{
		postErr: errors.New("down"),
		tagErr:  errors.New("down"),
	})
	doc := g.Generate(context.Background())

	set := parse(t, doc)
	require.Len(t, set.URLs, 4)
	assert.True(t, strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, doc, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
}

func TestGenerate_FreshDocumentPerCall(t *testing.T) {
	source := &fakeSource{tags: []string{"chiari"}}
	g := testGenerator(source)

	first := g.Generate(context.Background())
	source.tags = []string{"chiari", "hope"}
	second := g.Generate(context.Background())

	assert.NotEqual(t, first, second, "each call reflects the current store state")
	assert.Equal(t, 5, len(parse(t, first).URLs))
	assert.Equal(t, 6, len(parse(t, second).URLs))
}
