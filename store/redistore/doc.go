// Package redistore implements authcore.UserStore on Redis.
//
// # Key layout
//
//	<prefix>:u:<email>        credential record, versioned binary encoding
//	<prefix>:r:<digest hex>   reset index: digest -> email, TTL = reset expiry
//
// The reset index expires on its own, so a stale digest stops resolving
// even before anything reads it. Single-use consumption runs inside a
// WATCH transaction over both keys: concurrent consumers race on the
// optimistic lock and exactly one commits; the rest observe the cleared
// state and fail with authcore.ErrCredentialNotFound.
//
// # What this package must NOT do
//
//   - Interpret passwords or secrets — it stores digests it cannot reverse.
//   - Retry around Redis outages; failures wrap authcore.ErrStoreUnavailable
//     and propagate.
package redistore
