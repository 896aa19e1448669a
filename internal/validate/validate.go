// Package validate produces the diagnostics of one document from its text
// and the project index: command syntax, variable references, flow
// control, indentation and house style.
package validate

import (
	"csls/internal/diag"
	"csls/internal/index"
	"csls/internal/source"
)

// Options tunes a Generate run.
type Options struct {
	// StyleGuide enables the Information-level house-style suggestions.
	StyleGuide bool
	// Max caps the number of diagnostics; <= 0 means unlimited.
	Max int
}

// DefaultOptions enables the style guide and sets no limit.
func DefaultOptions() Options {
	return Options{StyleGuide: true}
}

// Generate returns the diagnostics of doc. Errors recorded by the indexer
// come first, unchanged; the rest are ordered by position. Checks that
// need the whole project wait until idx.ProjectIsIndexed.
func Generate(doc *source.Document, idx *index.Index, opts Options) []diag.Diagnostic {
	bag := diag.NewBag(opts.Max)
	bag.AddAll(idx.ParseErrors(doc.URI))

	var found diag.SliceReporter
	c := &checker{doc: doc, idx: idx, opts: opts, out: &found}
	c.lines()
	c.references()
	c.flowControl()
	c.achievements()

	rest := diag.NewBag(0)
	rest.AddAll(found.Items)
	rest.Sort()
	rest.Dedup()
	bag.AddAll(rest.Items())
	return bag.Items()
}

type checker struct {
	doc  *source.Document
	idx  *index.Index
	opts Options
	out  *diag.SliceReporter
}

func (c *checker) add(d diag.Diagnostic) {
	c.out.Items = append(c.out.Items, d)
}

func (c *checker) span(loc source.Location) source.Span {
	return c.doc.SpanOf(loc.Range)
}
