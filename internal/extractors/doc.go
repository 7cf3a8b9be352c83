// Package extractors provides implementations of the Extractor interface
// for the document formats an RFP is published in. Each extractor turns
// raw bytes into ordered page text.
//
// Extractors are registered with the Registry at startup.
package extractors
