// Package password implements peppered password hashing and verification
// with Argon2id.
//
// # Output format
//
// Digests are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// The pepper is appended to the plaintext before key derivation and is
// never part of the encoded digest, so a leaked digest alone is not
// sufficient for an offline attack without also compromising server
// configuration.
//
// Cost parameters travel inside each digest, so they can be raised in
// config without invalidating stored credentials; [Hasher.NeedsRehash]
// reports when a stored digest was produced with weaker parameters than
// currently configured.
//
// # What this package must NOT do
//
//   - Store or retrieve digests — callers supply plaintext and receive strings.
//   - Log plaintext passwords or the pepper.
//   - Import any other authcore package.
package password
