// Package errs defines the error shapes returned to API clients.
//
// Every error that reaches the global error handler is rendered as an
// HTTPError so clients always receive the same JSON structure.
package errs
