// Package chunker provides the page-wise and sliding-window chunking
// strategies.
//
// Both strategies are pure functions of their input: chunk IDs are
// derived from the document ID and sequence number, so re-chunking the
// same pages always yields identical chunks.
//
// # Page-wise
//
// One chunk per page, trimmed, with empty pages dropped. Concatenating
// the chunks in sequence order reproduces the trimmed non-empty pages.
//
// # Sliding window
//
// Trimmed non-empty pages are joined with "\n" and covered by windows of
// at most size runes; consecutive windows share exactly overlap runes.
package chunker
