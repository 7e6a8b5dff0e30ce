package routecontext

import (
	"context"
	"strings"
)

// Descriptions used when no context is known for a route
const (
	DescriptionRetrievalFallback = "Using OpenAI Retrieval for context."
	DescriptionNoMatch           = "No specific information available for this route."
)

// UIElement is an element the assistant may point the user at
type UIElement struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description" yaml:"description"`
}

// RouteContext describes what a user can see and do on one UI route
type RouteContext struct {
	Route        string      `json:"route" yaml:"route"`
	Description  string      `json:"description" yaml:"description"`
	Elements     []UIElement `json:"elements" yaml:"elements"`
	APICalls     []string    `json:"apiCalls" yaml:"apiCalls"`
	Dependencies []string    `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	UserActions  []string    `json:"userActions" yaml:"userActions"`
}

// HasDetails reports whether the context carries anything beyond a description
func (c RouteContext) HasDetails() bool {
	return len(c.Elements) > 0 || len(c.APICalls) > 0 || len(c.UserActions) > 0 || len(c.Dependencies) > 0
}

// Resolver returns the grounding context for a route. It never fails; unknown
// routes get a minimal context.
type Resolver interface {
	Resolve(ctx context.Context, route string) RouteContext
}

// NormalizeRoute strips trailing slashes so "/a" and "/a/" share one entry
func NormalizeRoute(route string) string {
	return strings.TrimRight(route, "/")
}

// Minimal builds the context returned on a miss
func Minimal(route, description string) RouteContext {
	return RouteContext{
		Route:       route,
		Description: description,
		Elements:    []UIElement{},
		APICalls:    []string{},
		UserActions: []string{},
	}
}

// withDefaults fills nil slices so the JSON shape is stable
func withDefaults(c RouteContext) RouteContext {
	if c.Elements == nil {
		c.Elements = []UIElement{}
	}
	if c.APICalls == nil {
		c.APICalls = []string{}
	}
	if c.UserActions == nil {
		c.UserActions = []string{}
	}
	return c
}
