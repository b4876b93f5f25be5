// Package transport provides the HTTP plumbing shared by all handlers:
// JSON and error response writing, the middleware stack (panic recovery,
// request IDs, structured request logging), and the server lifecycle with
// graceful shutdown.
package transport
