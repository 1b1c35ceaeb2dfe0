// Package client talks to the MeshMart storage gateway.
//
// # Overview
//
// The package provides:
//  1. The API contract the CLI depends on (see the Client interface):
//     authentication, product and file management, upload grants and
//     confirmations, and order download grants.
//  2. An HTTP/JSON implementation (see HTTPClient) that injects the bearer
//     token and maps response statuses to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring the
//     SQLite session store and applying embedded goose migrations.
//
// # Error Handling
//
// Failed requests return an *APIError carrying the gateway's message
// verbatim. It unwraps to one of ErrBadRequest, ErrUnauthorized,
// ErrForbidden, ErrNotFound, ErrConflict or ErrUnavailable, so callers can
// match with errors.Is.
package client
