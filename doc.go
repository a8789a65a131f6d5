// Package docassets relocates the local image references of a Markdown or
// Typst document so the document can be compiled from a different root.
//
// # Quick Start
//
// Create an engine bound to a managed assets directory, then rewrite:
//
//	eng, err := docassets.NewEngine(docassets.WithAssetsDir("out/assets"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result := eng.Rewrite(docassets.Input{
//	    Text:    "![logo](../img/logo.png)",
//	    BaseDir: "docs/guide",
//	})
//	fmt.Println(result.Text) // ![logo](/assets/logo.png)
//
// The assets directory must already exist; the engine never creates it.
// Its parent is the content root: references that already point inside it
// are rewritten root-relative, everything else local is copied in.
//
// # Recognized References
//
// Three syntaxes are rewritten, in this order:
//
//  1. Markdown images: ![alt](path "title")
//  2. HTML images: <img src="path">
//  3. Typst calls: #image("path") and #fig("path")
//
// Only the path is replaced. Alt text, titles, attributes, quote characters
// and whitespace are preserved byte for byte. URLs and data:/file: schemes
// are never touched.
//
// # Naming
//
// A copied file keeps its sanitized name when that name is free in the
// assets directory. On collision an 8 hex digit disambiguator derived from
// the absolute source path is appended to the stem, so the same source always
// maps to the same name.
//
// # Failures
//
// Rewrite never fails. A reference whose source cannot be copied is left
// unchanged and reported in Result.Diagnostics, which wrap ErrAssetCopy.
//
// # Concurrency
//
// An Engine is safe for concurrent use. Pass WithSerializedCopies when
// several engines or goroutines share one assets directory so that the
// collision check and the copy happen under a per-directory lock.
package docassets
