package redistore

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/veldra/authcore"
)

const (
	defaultPrefix     = "ac"
	consumeMaxRetries = 4
)

// Store implements authcore.UserStore on a Redis client.
type Store struct {
	redis  *redis.Client
	prefix string
}

// New returns a Store using the given client and key prefix. An empty
// prefix selects "ac".
func New(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{redis: client, prefix: prefix}
}

func (s *Store) userKey(email string) string {
	return s.prefix + ":u:" + email
}

func (s *Store) resetKey(digest [32]byte) string {
	return s.prefix + ":r:" + hex.EncodeToString(digest[:])
}

// FindByEmail returns the credential stored under email.
func (s *Store) FindByEmail(ctx context.Context, email string) (*authcore.Credential, error) {
	data, err := s.redis.Get(ctx, s.userKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, authcore.ErrCredentialNotFound
		}
		return nil, wrapUnavailable(err)
	}

	return decodeCredential(data)
}

// FindByResetDigest resolves digest through the reset index and returns the
// owning credential. A missing index entry, a superseded digest, or an
// already-expired reset all yield ErrCredentialNotFound.
func (s *Store) FindByResetDigest(ctx context.Context, digest [32]byte) (*authcore.Credential, error) {
	email, err := s.redis.Get(ctx, s.resetKey(digest)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, authcore.ErrCredentialNotFound
		}
		return nil, wrapUnavailable(err)
	}

	cred, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if !liveReset(cred, digest, time.Now()) {
		return nil, authcore.ErrCredentialNotFound
	}

	return cred, nil
}

// Create persists cred. Uniqueness rides on SETNX: the first writer of an
// email wins, later ones get ErrDuplicateEmail.
func (s *Store) Create(ctx context.Context, cred *authcore.Credential) (*authcore.Credential, error) {
	encoded, err := encodeCredential(cred)
	if err != nil {
		return nil, err
	}

	set, err := s.redis.SetNX(ctx, s.userKey(cred.Email), encoded, 0).Result()
	if err != nil {
		return nil, wrapUnavailable(err)
	}
	if !set {
		return nil, authcore.ErrDuplicateEmail
	}

	out := *cred
	return &out, nil
}

// UpdatePassword replaces the password digest under a WATCH so a
// concurrent reset cannot be silently overwritten.
func (s *Store) UpdatePassword(ctx context.Context, email, newHash string, changedAt time.Time) error {
	return s.mutate(ctx, email, func(cred *authcore.Credential) {
		cred.PasswordHash = newHash
		cred.PasswordChangedAt = changedAt
	})
}

// SetReset records a pending reset, overwriting any prior digest and
// re-pointing the reset index. The index key carries the reset TTL so a
// stale digest stops resolving on its own.
func (s *Store) SetReset(ctx context.Context, email string, digest [32]byte, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return fmt.Errorf("%w: reset expiry not in the future", authcore.ErrStoreUnavailable)
	}

	key := s.userKey(email)

	for i := 0; i < consumeMaxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}
			cred, err := decodeCredential(data)
			if err != nil {
				return err
			}

			staleIndex := ""
			if cred.HasPendingReset() {
				staleIndex = s.resetKey(cred.ResetDigest)
			}

			cred.ResetDigest = digest
			cred.ResetExpiresAt = expiresAt

			encoded, err := encodeCredential(cred)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				if staleIndex != "" {
					pipe.Del(ctx, staleIndex)
				}
				pipe.Set(ctx, key, encoded, 0)
				pipe.Set(ctx, s.resetKey(digest), cred.Email, ttl)
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, redis.Nil) {
			return authcore.ErrCredentialNotFound
		}
		if err != nil && !errors.Is(err, errInvalidRecord) {
			return wrapUnavailable(err)
		}
		return err
	}

	return wrapUnavailable(redis.TxFailedErr)
}

// ConsumeReset atomically accepts a live digest: inside one WATCH
// transaction it replaces the password, clears the reset fields, and
// deletes the index entry. Losing racers re-run, observe the cleared
// state, and fail with ErrCredentialNotFound.
func (s *Store) ConsumeReset(ctx context.Context, digest [32]byte, newHash string, changedAt time.Time) (*authcore.Credential, error) {
	indexKey := s.resetKey(digest)

	for i := 0; i < consumeMaxRetries; i++ {
		var consumed *authcore.Credential

		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			email, err := tx.Get(ctx, indexKey).Result()
			if err != nil {
				return err
			}

			userKey := s.userKey(email)
			// Extend the optimistic lock to the credential record before
			// reading it; a write to either key aborts the transaction.
			if err := tx.Watch(ctx, userKey).Err(); err != nil {
				return err
			}
			data, err := tx.Get(ctx, userKey).Bytes()
			if err != nil {
				return err
			}
			cred, err := decodeCredential(data)
			if err != nil {
				return err
			}

			if !liveReset(cred, digest, time.Now()) {
				// Dangling or expired index entry; drop it so later calls
				// short-circuit on the missing key.
				_, pipeErr := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, indexKey)
					return nil
				})
				if pipeErr != nil {
					return pipeErr
				}
				return authcore.ErrCredentialNotFound
			}

			cred.PasswordHash = newHash
			cred.PasswordChangedAt = changedAt
			cred.ResetDigest = [32]byte{}
			cred.ResetExpiresAt = time.Time{}

			encoded, err := encodeCredential(cred)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, userKey, encoded, 0)
				pipe.Del(ctx, indexKey)
				return nil
			})
			if err != nil {
				return err
			}

			consumed = cred
			return nil
		}, indexKey)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, redis.Nil) || errors.Is(err, authcore.ErrCredentialNotFound) {
			return nil, authcore.ErrCredentialNotFound
		}
		if err != nil {
			if errors.Is(err, errInvalidRecord) {
				return nil, err
			}
			return nil, wrapUnavailable(err)
		}

		return consumed, nil
	}

	return nil, authcore.ErrCredentialNotFound
}

func (s *Store) mutate(ctx context.Context, email string, apply func(*authcore.Credential)) error {
	key := s.userKey(email)

	for i := 0; i < consumeMaxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}
			cred, err := decodeCredential(data)
			if err != nil {
				return err
			}

			apply(cred)

			encoded, err := encodeCredential(cred)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, encoded, 0)
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, redis.Nil) {
			return authcore.ErrCredentialNotFound
		}
		if err != nil && !errors.Is(err, errInvalidRecord) {
			return wrapUnavailable(err)
		}
		return err
	}

	return wrapUnavailable(redis.TxFailedErr)
}

// liveReset reports whether cred's pending reset matches digest and is
// still inside its window.
func liveReset(cred *authcore.Credential, digest [32]byte, now time.Time) bool {
	if !cred.HasPendingReset() {
		return false
	}
	if subtle.ConstantTimeCompare(cred.ResetDigest[:], digest[:]) != 1 {
		return false
	}
	return now.Before(cred.ResetExpiresAt)
}

func wrapUnavailable(err error) error {
	return fmt.Errorf("%w: %v", authcore.ErrStoreUnavailable, err)
}
