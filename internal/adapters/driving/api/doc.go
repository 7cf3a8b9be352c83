// Package api serves the RFP pipeline over HTTP.
//
// Routes are registered on a gorilla/mux router and wrapped in negroni
// middleware for panic recovery and access logging. Handlers only speak
// to driving ports; status codes are derived from domain errors:
//
//   - 409 Conflict: the uploaded bytes were already ingested
//   - 415 Unsupported Media Type: no extractor for the file extension
//   - 422 Unprocessable Entity: the file could not be read
//   - 404 Not Found: unknown document
//   - 503 Service Unavailable: the embedding backend is unreachable
//
// Analysis endpoints always answer 200 once the document exists; failed
// sections carry {"error": reason} in place of their payload.
package api
