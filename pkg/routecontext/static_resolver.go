package routecontext

import "context"

// StaticResolver answers from an exact-match table built at startup
type StaticResolver struct {
	contexts map[string]RouteContext
}

var _ Resolver = &StaticResolver{}

// NewStaticResolver takes ownership of contexts; the map must not be modified afterwards
func NewStaticResolver(contexts map[string]RouteContext) *StaticResolver {
	if contexts == nil {
		contexts = map[string]RouteContext{}
	}
	return &StaticResolver{contexts: contexts}
}

func (r *StaticResolver) Resolve(_ context.Context, route string) RouteContext {
	route = NormalizeRoute(route)
	if rc, ok := r.contexts[route]; ok {
		return rc
	}
	return Minimal(route, DescriptionRetrievalFallback)
}
