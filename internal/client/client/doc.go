// Package client contains the reader's building blocks for talking to the
// gate server and for opening its local unlock store.
//
// # Overview
//
//  1. A transport-agnostic contract (Client): Ping, Describe, Verify and
//     GetArticle.
//  2. A gRPC implementation (GRPCClient) that bounds every call with the
//     configured timeout, attaches the unlock token to GetArticle calls and
//     maps gRPC status codes to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Conditions are exposed as sentinel errors matched with errors.Is:
// ErrUnavailable, ErrUnauthorized, and the shared common.ErrorNotGated,
// common.ErrorInvalidRequest and common.ErrorNotFound.
package client
