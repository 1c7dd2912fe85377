// Package pgstore implements authcore.UserStore on PostgreSQL via pgx.
//
// Credentials live in a single credentials table keyed by email. Reset
// state is a nullable (reset_digest, reset_expires_at) pair on the same
// row; a partial unique index on reset_digest makes digest lookup an
// index scan and guarantees at most one credential per pending secret.
//
// Single-use consumption is a single conditional UPDATE guarded by the
// digest and expiry; the database serializes concurrent confirmations,
// so no advisory locks or explicit transactions are needed.
//
// Schema migrations are embedded and applied with goose; see Migrate.
package pgstore
