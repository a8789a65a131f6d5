package pipeline

import (
	"regexp"
	"strings"
)

// Kind identifies the embedding syntax a reference was written in.
type Kind int

const (
	MarkdownImage Kind = iota // ![alt](path "title")
	HTMLImage                 // <img src="path">
	RawCall                   // #image("path") or #fig("path")
)

// String returns the name used in logs and listings.
func (k Kind) String() string {
	switch k {
	case MarkdownImage:
		return "markdown-image"
	case HTMLImage:
		return "html-img"
	case RawCall:
		return "raw-call"
	default:
		return "unknown"
	}
}

// Precompiled reference patterns. Each one is intentionally narrow: text that
// does not match passes through untouched.
var (
	// ![alt](body). An angle-bracket destination may contain ')'.
	markdownImagePattern = regexp.MustCompile(`!\[([^\]]*)\]\((\s*<[^<>\n]*>[^)]*|[^)]+)\)`)

	// <img ... src="..." ...>. Groups: tag, before, space, src keyword,
	// open quote, value, close quote, after.
	htmlImagePattern = regexp.MustCompile(`(<(?i:img))([^>]*?)(\s+)((?i:src))=(["'])([^"']+)(["'])([^>]*)>`)

	// #fig("...") / #image('...'). Groups: function, space, open quote,
	// value, close quote. Trailing arguments are outside the match.
	rawCallPattern = regexp.MustCompile(`#(fig|image)\((\s*)(["'])([^"']+)(["'])`)
)

// Span locates a match in the text it was scanned from.
type Span struct {
	Start, End int
}

// Reference is one embedded asset mention found in a document.
type Reference struct {
	Kind Kind
	// RawPath is the path as written, angle brackets included.
	RawPath string
	// Attributes holds the opaque text around the path: alt text and title
	// for Markdown, the remaining tag text for HTML, the call name for raw calls.
	Attributes      []string
	WasAngleWrapped bool
	Span            Span
}

// Scan lists the references in text, grouped by syntax in pass order
// (Markdown, HTML, raw call) and in document order within each group.
// It performs no filesystem access.
func Scan(text string) []Reference {
	var refs []Reference

	for _, m := range markdownImagePattern.FindAllStringSubmatchIndex(text, -1) {
		alt := text[m[2]:m[3]]
		path, title := splitMarkdownBody(text[m[4]:m[5]])
		attrs := []string{alt}
		if title != "" {
			attrs = append(attrs, title)
		}
		refs = append(refs, Reference{
			Kind:            MarkdownImage,
			RawPath:         path,
			Attributes:      attrs,
			WasAngleWrapped: isAngleWrapped(path),
			Span:            Span{Start: m[0], End: m[1]},
		})
	}

	for _, m := range htmlImagePattern.FindAllStringSubmatchIndex(text, -1) {
		path := text[m[12]:m[13]]
		refs = append(refs, Reference{
			Kind:            HTMLImage,
			RawPath:         path,
			Attributes:      []string{text[m[4]:m[5]], text[m[16]:m[17]]},
			WasAngleWrapped: isAngleWrapped(path),
			Span:            Span{Start: m[0], End: m[1]},
		})
	}

	for _, m := range rawCallPattern.FindAllStringSubmatchIndex(text, -1) {
		path := text[m[8]:m[9]]
		refs = append(refs, Reference{
			Kind:            RawCall,
			RawPath:         path,
			Attributes:      []string{text[m[2]:m[3]]},
			WasAngleWrapped: isAngleWrapped(path),
			Span:            Span{Start: m[0], End: m[1]},
		})
	}

	return refs
}

// splitMarkdownBody separates a Markdown image body into its destination and
// optional title. An angle-wrapped destination ends at its closing '>'.
// Otherwise the body is scanned left to right, toggling on '"', and split at
// the first unquoted space or tab whose remainder opens a title ('"', '\'' or
// '('). A body with no such split point is entirely destination, which keeps
// unwrapped paths containing spaces intact.
func splitMarkdownBody(body string) (path, title string) {
	inside := strings.TrimSpace(body)

	if strings.HasPrefix(inside, "<") {
		if end := strings.IndexByte(inside, '>'); end > 0 {
			return inside[:end+1], strings.TrimSpace(inside[end+1:])
		}
	}

	inQuotes := false
	for i, ch := range inside {
		switch ch {
		case '"':
			inQuotes = !inQuotes
		case ' ', '\t':
			if inQuotes {
				continue
			}
			rest := strings.TrimSpace(inside[i:])
			if rest != "" && strings.ContainsRune(`"'(`, rune(rest[0])) {
				return strings.TrimSpace(inside[:i]), rest
			}
		}
	}

	return inside, ""
}

// isAngleWrapped reports whether a trimmed path is written as <...>.
func isAngleWrapped(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return len(trimmed) >= 2 && strings.HasPrefix(trimmed, "<") && strings.HasSuffix(trimmed, ">")
}
