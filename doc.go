// Package session implements the client-facing session layer of a
// transaction platform: an in-memory store that owns the authenticated
// identity, a synchronizer that mirrors the bearer token into a cookie
// shared with the edge routing layer, and helpers to rebuild session
// state from a surviving cookie after a fresh load.
//
// Session store:
//   - Store is the single source of truth for the running process: current
//     user, profile, token, loading and error state. All remote operations
//     (login, register, activation, profile fetch) go through an injected
//     AuthClient, so the transport stays opaque and tests can run multiple
//     independent sessions in the same process.
//
// Synchronization:
//   - Synchronizer reconciles the store token with the auth cookie on
//     startup and on every token or user change. It is the only component
//     allowed to write the cookie; the edge guard only reads it. When the
//     cookie holds a token the store has lost (a fresh tab, a reload), the
//     synchronizer seeds the store and rehydrates user and profile from the
//     backend, tearing the whole session down if the token turns out to be
//     invalid.
//
// Route guard:
//   - middleware/routeguard is a stateless interceptor that redirects
//     requests based on cookie presence alone. It proves "a token exists",
//     never "the token is valid"; role checks stay with the destination
//     once the store is hydrated.
package session
