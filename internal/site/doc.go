// Package site implements the host document-rendering pipeline.
//
// A build runs in fixed phases:
//
//  1. Load user UI files into a fresh catalog
//  2. Fire assets-ready (extensions register runtime assets and partials)
//  3. Load Markdown documents with YAML front matter
//  4. Fire content-classified (extensions add goldmark extenders)
//  5. Convert documents concurrently, one parser context per document
//  6. Render pages through the layout, partials resolved from the catalog
//  7. Write pages and catalog assets; lazy sources are opened only here
//
// The catalog is the only state shared between concurrent conversions, and it
// serializes its own check-then-insert.
package site
