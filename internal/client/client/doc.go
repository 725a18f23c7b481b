// Package client is the WILT API gateway.
//
// # Overview
//
// The package provides:
//  1. The API contract (see the Client interface): Register, Login and the
//     journal entry calls.
//  2. An HTTP implementation (see HTTPClient) whose transport attaches the
//     stored access token to every request and, on a 401, logs in again with
//     the stored credentials and replays the request once. Concurrent 401s
//     share a single login.
//  3. A circuit breaker in front of the network so a dead server fails fast
//     with ErrUnavailable.
//  4. Local persistence bootstrap (InitDatabase, RunMigrations) wiring the
//     SQLite session database and applying embedded goose migrations.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrForbidden,
// ErrNoStoredCredentials, ErrInvalidResponse, ErrNotFound. Non-success responses surface as *APIError,
// which unwraps to the matching sentinel.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation.
package client
