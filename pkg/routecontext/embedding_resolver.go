package routecontext

import (
	"context"
	"sort"
	"time"

	"onboarding-assistant-be/internal/pkg/logger"
	"onboarding-assistant-be/pkg/embedding"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

// DefaultSimilarityThreshold is the minimum cosine similarity for a nearest-route match
const DefaultSimilarityThreshold = 0.7

// EmbeddingResolver falls back to the most similar known route when there is no exact
// match. Known routes are embedded once by Warm; unknown query routes are memoized.
type EmbeddingResolver struct {
	contexts  map[string]RouteContext
	provider  embedding.Provider
	threshold float64
	logger    logger.ILogger

	// routes and vectors are written by Warm only, before the resolver serves requests
	routes  []string
	vectors map[string][]float32

	memo *cache.Cache
}

var _ Resolver = &EmbeddingResolver{}

func NewEmbeddingResolver(contexts map[string]RouteContext, provider embedding.Provider, threshold float64, log logger.ILogger) *EmbeddingResolver {
	if contexts == nil {
		contexts = map[string]RouteContext{}
	}
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &EmbeddingResolver{
		contexts:  contexts,
		provider:  provider,
		threshold: threshold,
		logger:    log,
		vectors:   map[string][]float32{},
		memo:      cache.New(1*time.Hour, 10*time.Minute),
	}
}

// Warm embeds every known route with at most concurrency requests in flight.
// Routes whose embedding fails are left out of similarity matching.
func (r *EmbeddingResolver) Warm(ctx context.Context, concurrency int) error {
	routes := make([]string, 0, len(r.contexts))
	for route := range r.contexts {
		routes = append(routes, route)
	}
	sort.Strings(routes)

	if concurrency <= 0 {
		concurrency = 4
	}

	results := make([][]float32, len(routes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, route := range routes {
		g.Go(func() error {
			vec, err := r.provider.Embed(gctx, route)
			if err != nil {
				r.logger.Warn(moduleName, "Failed to embed known route", map[string]interface{}{"route": route, "error": err.Error()})
				return nil
			}
			results[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.routes = r.routes[:0]
	for i, route := range routes {
		if results[i] == nil {
			continue
		}
		r.routes = append(r.routes, route)
		r.vectors[route] = results[i]
	}

	r.logger.Info(moduleName, "Route embeddings ready", map[string]interface{}{
		"known_routes": len(routes),
		"embedded":     len(r.routes),
	})
	return nil
}

func (r *EmbeddingResolver) Resolve(ctx context.Context, route string) RouteContext {
	route = NormalizeRoute(route)

	if rc, ok := r.contexts[route]; ok {
		return rc
	}
	if len(r.routes) == 0 {
		return Minimal(route, DescriptionNoMatch)
	}

	vec, err := r.embedQuery(ctx, route)
	if err != nil {
		r.logger.Warn(moduleName, "Failed to embed route, using default context", map[string]interface{}{"route": route, "error": err.Error()})
		return Minimal(route, DescriptionNoMatch)
	}

	best, score := r.nearest(vec)
	if best == "" || score <= r.threshold {
		r.logger.Debug(moduleName, "No similar route above threshold", map[string]interface{}{
			"route": route, "best": best, "score": score, "threshold": r.threshold,
		})
		return Minimal(route, DescriptionNoMatch)
	}

	r.logger.Info(moduleName, "Matched route by similarity", map[string]interface{}{
		"route": route, "matched": best, "score": score,
	})
	return r.contexts[best]
}

func (r *EmbeddingResolver) embedQuery(ctx context.Context, route string) ([]float32, error) {
	if cached, found := r.memo.Get(route); found {
		return cached.([]float32), nil
	}
	vec, err := r.provider.Embed(ctx, route)
	if err != nil {
		return nil, err
	}
	r.memo.Set(route, vec, cache.DefaultExpiration)
	return vec, nil
}

// nearest scans routes in sorted order so ties resolve deterministically
func (r *EmbeddingResolver) nearest(vec []float32) (string, float64) {
	best := ""
	bestScore := -1.0
	for _, route := range r.routes {
		score := CosineSimilarity(vec, r.vectors[route])
		if score > bestScore {
			best = route
			bestScore = score
		}
	}
	return best, bestScore
}
