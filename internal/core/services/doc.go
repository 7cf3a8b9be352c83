// Package services holds the RFP pipeline: ingestion with duplicate
// detection, retrieval, the analysis orchestrator and the report
// aggregator. Services depend only on driven ports, so every stage runs
// against in-memory adapters in tests.
package services
