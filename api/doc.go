// Package api provides the admin HTTP API of the deck refresh service.
//
// The API is a thin layer over deckcache.Client and the upstream deck source:
//
//	GET  /healthz                 liveness
//	GET  /decks/{id}              cached deck info
//	GET  /decks/{id}/thumbnail    cached thumbnail ("empty" marks decks with nothing to show)
//	POST /decks/{id}/apply        regenerate now from a posted or fetched deck detail
//	POST /refresh?force=&start=&size=
//	                              queue a background pass over the upstream deck list
//
// # Layout
//
//   - server.go: router construction with CORS, logging and rate limiting
//   - handlers/: request handlers and error mapping
//   - middleware/: request logging and per-client rate limiting
//
// Errors are returned as {"error": "...", "message": "..."} with a status
// derived from the deckcache error type. Authentication is left to the
// deployment (run it on a private port or behind a proxy).
package api
