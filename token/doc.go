// Package token issues and verifies signed, self-contained session tokens.
//
// Tokens are compact JWTs signed with HMAC-SHA256 over a shared secret.
// They carry the subject's credential ID, email, issue time, and expiry;
// the server holds no per-session state, so any process configured with
// the same secret can verify tokens issued by any other. This is a
// horizontal-scaling property, not a revocation mechanism.
//
// Verification failures collapse into the single sentinel [ErrInvalid]:
// callers must not be able to distinguish a forged signature from an
// expired token at the transport boundary.
//
// # What this package must NOT do
//
//   - Persist anything.
//   - Expose which verification check failed.
//   - Import any other authcore package.
package token
