// Package middleware exposes an HTTP adapter for bearer-token guarding
// built on top of authcore.Engine verification.
//
// [Guard] reads the Authorization header, calls Engine.IdentityFromToken,
// and injects the resolved identity into the request context for
// handlers to read via [IdentityFromContext].
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated
// to Engine.IdentityFromToken.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly (delegates to Engine).
//   - Touch the credential store (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject.
package middleware
