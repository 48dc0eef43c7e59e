// Package client contains the CLI's link to the trophyshop server.
//
// # Overview
//
// The package provides:
//  1. The API contract (see the Client interface): login/logout, the public
//     catalog listings, admin mutations and the image upload workflow.
//  2. A JSON-over-HTTP implementation (see HTTPClient) that keeps the session
//     token from Login and sends it as a Bearer header.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring the
//     SQLite file that backs the catalog cache.
//
// # Error Handling
//
// Non-2xx answers are returned as *APIError, which matches with errors.Is
// against ErrUnauthorized, ErrForbidden, ErrNotFound, ErrUnavailable and the
// shared common.ErrValidation, common.ErrPayloadTooLarge and
// common.ErrTransport. Network failures match ErrUnavailable.
package client
