// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns
// such as function key authorization, request logging, CORS,
// rate limiting, tracing and panic recovery.
package middleware
