// Package html provides an Extractor for RFPs published as web pages.
// It strips tags, scripts and styles and decodes entities, keeping block
// boundaries as line breaks.
package html
