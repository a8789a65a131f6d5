// Package pipeline implements the asset-reference relocation engine.
//
// A document is scanned for image references in three syntaxes:
//   - Markdown images: ![alt](path "title")
//   - HTML image tags: <img src="path">
//   - Raw function calls: #image("path") and #fig("path")
//
// Each local reference is resolved against the document's directory. When a
// managed assets directory is configured, references already under its parent
// (the content root) become root-relative paths, and anything else is copied
// into the assets directory under a sanitized, collision-safe name and
// referenced as /assets/<name>. External references (http, https, data, file)
// are never touched.
//
// Everything outside the matched references passes through byte for byte.
package pipeline
