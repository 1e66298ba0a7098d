package sitemap

import (
	"context"
	"log"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Watcher regenerates the sitemap whenever a document in the posts collection
// is written or deleted, and stores the result in the shared cache so the
// HTTP handler can serve a warm copy.
type Watcher struct {
	posts     *mongo.Collection
	generator *Generator
	cache     *gocache.Cache
}

func NewWatcher(posts *mongo.Collection, generator *Generator, cache *gocache.Cache) *Watcher {
	return &Watcher{
		posts:     posts,
		generator: generator,
		cache:     cache,
	}
}

// Run opens a change stream on the posts collection and blocks until the
// context is cancelled or the stream fails. Each matching event triggers a
// regeneration with a bounded timeout.
func (w *Watcher) Run(ctx context.Context) error {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "operationType", Value: bson.D{
				{Key: "$in", Value: bson.A{"insert", "update", "replace", "delete"}},
			}},
		}}},
	}

	stream, err := w.posts.Watch(ctx, pipeline)
	if err != nil {
		return err
	}
	defer stream.Close(context.Background())

	log.Println("Sitemap watcher started on posts collection.")
	for stream.Next(ctx) {
		w.regenerate(ctx)
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func (w *Watcher) regenerate(ctx context.Context) {
	genCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	xml := w.generator.Generate(genCtx)
	w.cache.Set(CacheKey, xml, gocache.DefaultExpiration)
	log.Println("Sitemap regenerated after posts collection change.")
}
