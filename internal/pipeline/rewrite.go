package pipeline

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/alnah/go-docassets/internal/logfields"
)

// Copy records one asset written into the managed assets directory.
type Copy struct {
	Source string
	Dest   string
	Ref    string
}

// Diagnostic reports a reference left unchanged because its asset could not
// be copied.
type Diagnostic struct {
	Kind    Kind
	RawPath string
	Err     error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %q: %v", d.Kind, d.RawPath, d.Err)
}

// Outcome is the result of one rewrite pass over a document.
type Outcome struct {
	Text        string
	Copies      []Copy
	Diagnostics []Diagnostic
}

// Rewriter rewrites asset references in document text.
// It holds no per-call state and is safe for concurrent use.
type Rewriter struct {
	resolver *Resolver
	logger   *slog.Logger
}

// NewRewriter creates a Rewriter. A nil logger discards log output.
func NewRewriter(resolver *Resolver, logger *slog.Logger) *Rewriter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Rewriter{resolver: resolver, logger: logger}
}

// Rewrite runs the Markdown, HTML and raw-call passes over text in that
// order, each pass reading the previous one's output. Text outside matched
// references is never modified. External references and references whose
// asset cannot be copied keep their original bytes.
func (w *Rewriter) Rewrite(text, baseDir string) Outcome {
	var out Outcome

	text = replaceMatches(markdownImagePattern, text, func(g []string) string {
		alt := g[1]
		path, title := splitMarkdownBody(g[2])

		res, ok := w.resolve(&out, MarkdownImage, baseDir, path, true)
		if !ok {
			return g[0]
		}
		if title != "" {
			return "![" + alt + "](" + res.Ref + " " + title + ")"
		}
		return "![" + alt + "](" + res.Ref + ")"
	})

	text = replaceMatches(htmlImagePattern, text, func(g []string) string {
		res, ok := w.resolve(&out, HTMLImage, baseDir, g[6], false)
		if !ok {
			return g[0]
		}
		return g[1] + g[2] + g[3] + g[4] + "=" + g[5] + res.Ref + g[7] + g[8] + ">"
	})

	text = replaceMatches(rawCallPattern, text, func(g []string) string {
		res, ok := w.resolve(&out, RawCall, baseDir, g[4], false)
		if !ok {
			return g[0]
		}
		return "#" + g[1] + "(" + g[2] + g[3] + res.Ref + g[5]
	})

	out.Text = text
	return out
}

// resolve resolves one reference and records its side effects on out.
// It returns false when the original text must be kept.
func (w *Rewriter) resolve(out *Outcome, kind Kind, baseDir, raw string, quote bool) (Resolution, bool) {
	if isBlankReference(raw) {
		return Resolution{}, false
	}

	res, err := w.resolver.Resolve(baseDir, raw, quote)
	if err != nil {
		out.Diagnostics = append(out.Diagnostics, Diagnostic{Kind: kind, RawPath: raw, Err: err})
		w.logger.Warn("asset copy failed, reference left unchanged",
			logfields.Kind(kind.String()),
			logfields.Ref(raw),
			logfields.Error(err))
		return Resolution{}, false
	}

	if res.Kind == External {
		return res, false
	}

	if res.Kind == Copied {
		out.Copies = append(out.Copies, Copy{Source: res.Source, Dest: res.Dest, Ref: res.Ref})
	}

	w.logger.Debug("reference rewritten",
		logfields.Kind(kind.String()),
		logfields.Ref(raw),
		logfields.Dest(res.Ref),
		slog.String("location", res.Kind.String()))
	return res, true
}

// isBlankReference reports an empty destination such as "" or "<>".
func isBlankReference(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if isAngleWrapped(trimmed) {
		trimmed = strings.TrimSpace(trimmed[1 : len(trimmed)-1])
	}
	return trimmed == ""
}

// replaceMatches replaces every match of re in text with fn(groups), where
// groups[0] is the full match and unmatched optional groups are "".
func replaceMatches(re *regexp.Regexp, text string, fn func(groups []string) string) string {
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range matches {
		groups := make([]string, len(m)/2)
		for i := range groups {
			if m[2*i] >= 0 {
				groups[i] = text[m[2*i]:m[2*i+1]]
			}
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(fn(groups))
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}
