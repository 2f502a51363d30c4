// Package httpserver exposes the read side of the registry client as a
// JSON HTTP API: agent lookups, existence checks, ownership counts,
// reputation summaries and the network table. Write operations are
// deliberately absent; they require a signing key and belong to the CLI
// and the library API.
//
// The server carries the usual operational endpoints (livez, readyz,
// drain, undrain, optional pprof) so it can sit behind a load balancer.
package httpserver
