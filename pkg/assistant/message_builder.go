package assistant

import (
	"fmt"
	"strings"

	"onboarding-assistant-be/pkg/routecontext"
)

const markerHint = "When it helps the user, point at an element with [[highlight: elementId | short description]] " +
	"or suggest a page with [[navigate: /route]]. Only use element ids listed above."

// BuildUserMessage returns the content submitted to the thread. The query is always
// tagged with the route; withContext prepends a summary of rc for the first message
// on a new thread.
func BuildUserMessage(query, route string, rc routecontext.RouteContext, withContext bool) string {
	question := query
	if route != "" {
		question = fmt.Sprintf("The user is currently on %s and has asked: %s", route, query)
	}

	if !withContext || !hasGrounding(rc) {
		return question
	}

	var b strings.Builder
	pageRoute := rc.Route
	if pageRoute == "" {
		pageRoute = route
	}
	fmt.Fprintf(&b, "Context for the page %s:\n", pageRoute)
	if rc.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", rc.Description)
	}
	if len(rc.Elements) > 0 {
		b.WriteString("UI elements:\n")
		for _, el := range rc.Elements {
			fmt.Fprintf(&b, "- %s: %s\n", el.ID, el.Description)
		}
	}
	writeList(&b, "Available user actions", rc.UserActions)
	writeList(&b, "API calls", rc.APICalls)
	writeList(&b, "Related pages", rc.Dependencies)
	if len(rc.Elements) > 0 {
		b.WriteString(markerHint)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(question)
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

// hasGrounding is false for the placeholder contexts produced on a resolver miss
func hasGrounding(rc routecontext.RouteContext) bool {
	if rc.HasDetails() {
		return true
	}
	switch rc.Description {
	case "", routecontext.DescriptionRetrievalFallback, routecontext.DescriptionNoMatch:
		return false
	}
	return true
}
