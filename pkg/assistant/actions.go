package assistant

import (
	"sort"
	"strings"
)

const (
	markerClose    = "]]"
	markerOpenSeq  = "[["
	highlightOpen  = "[[highlight:"
	navigateOpen   = "[[navigate:"
	highlightSplit = "|"
)

type ActionParseResult struct {
	Actions   []Action
	CleanText string
}

type markerFamily struct {
	opener string
	parse  func(body string) (Action, bool)
}

var markerFamilies = []markerFamily{
	{opener: highlightOpen, parse: parseHighlight},
	{opener: navigateOpen, parse: parseNavigate},
}

type markerSpan struct {
	start  int
	end    int
	action Action
}

// ParseActions extracts highlight and navigate markers from text and returns the
// actions in order of appearance together with the text minus the recognized markers.
// Malformed markers produce no action and stay in the text. Removing a marker can
// join the text around it into a new marker, so the cleaned text is scanned again
// until a pass removes nothing; actions found by later passes follow earlier ones.
func ParseActions(text string) *ActionParseResult {
	actions := []Action{}
	for {
		spans := collectSpans(text)
		if len(spans) == 0 {
			return &ActionParseResult{Actions: actions, CleanText: text}
		}
		for _, s := range spans {
			actions = append(actions, s.action)
		}
		text = removeSpans(text, spans)
	}
}

func collectSpans(text string) []markerSpan {
	var spans []markerSpan
	for _, family := range markerFamilies {
		spans = append(spans, scanFamily(text, family)...)
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	return spans
}

// removeSpans expects spans sorted by start and not overlapping
func removeSpans(text string, spans []markerSpan) string {
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, s := range spans {
		b.WriteString(text[last:s.start])
		last = s.end
	}
	b.WriteString(text[last:])
	return b.String()
}

// scanFamily walks text left to right. An opener without a closing marker ends the scan.
func scanFamily(text string, family markerFamily) []markerSpan {
	var spans []markerSpan
	pos := 0
	for pos < len(text) {
		idx := strings.Index(text[pos:], family.opener)
		if idx < 0 {
			break
		}
		start := pos + idx
		bodyStart := start + len(family.opener)

		closeIdx := strings.Index(text[bodyStart:], markerClose)
		if closeIdx < 0 {
			break
		}
		body := text[bodyStart : bodyStart+closeIdx]
		end := bodyStart + closeIdx + len(markerClose)

		// another marker opens before this one closes
		if strings.Contains(body, markerOpenSeq) {
			pos = start + len(markerOpenSeq)
			continue
		}

		if action, ok := family.parse(body); ok {
			spans = append(spans, markerSpan{start: start, end: end, action: action})
		}
		pos = end
	}
	return spans
}

func parseHighlight(body string) (Action, bool) {
	elementID, description, found := strings.Cut(body, highlightSplit)
	if !found {
		return Action{}, false
	}
	elementID = strings.TrimSpace(elementID)
	description = strings.TrimSpace(description)
	if elementID == "" || description == "" {
		return Action{}, false
	}
	return Action{Type: ActionHighlight, ElementID: elementID, Description: description}, true
}

func parseNavigate(body string) (Action, bool) {
	route := strings.TrimSpace(body)
	if route == "" {
		return Action{}, false
	}
	return Action{Type: ActionNavigate, Route: route}, true
}
