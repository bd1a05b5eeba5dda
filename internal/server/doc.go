// Package server exposes the pipeline over HTTP.
//
// # Endpoints
//
//   - POST /api/playlist : {link} -> {name, tracks:[{title, youtubeUrl}]}
//   - POST /api/download : {links, folder} -> {message, jobId}, work continues in the background
//   - GET /healthz : liveness probe
//
// Invalid or non-playlist links are a 400. A failed catalog lookup is a 424 because
// the request was fine and a dependency was not. Tracks without a match are a null
// youtubeUrl in a 200, never an error status.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [Logging], [CORS] and [Recover] are installed by [New].
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds a method and routes,
// allowing handlers to encapsulate route definitions within the implementation.
package server
