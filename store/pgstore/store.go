package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/veldra/authcore"
)

// DB is the subset of pgxpool.Pool the store needs. pgxmock's pool
// mock satisfies it too, which keeps the tests connection-free.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is a PostgreSQL-backed credential store.
type Store struct {
	db DB
}

func New(db DB) *Store {
	return &Store{db: db}
}

const credentialColumns = `id, email, password_hash, password_changed_at, reset_digest, reset_expires_at, created_at`

func (s *Store) FindByEmail(ctx context.Context, email string) (*authcore.Credential, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+credentialColumns+` FROM credentials WHERE email = $1`,
		email)
	return scanCredential(row)
}

func (s *Store) FindByResetDigest(ctx context.Context, digest [32]byte) (*authcore.Credential, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+credentialColumns+` FROM credentials
		 WHERE reset_digest = $1 AND reset_expires_at > $2`,
		digest[:], time.Now())
	return scanCredential(row)
}

func (s *Store) Create(ctx context.Context, cred *authcore.Credential) (*authcore.Credential, error) {
	_, err := s.db.Exec(ctx,
		`INSERT INTO credentials (id, email, password_hash, password_changed_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		cred.ID, cred.Email, cred.PasswordHash, cred.PasswordChangedAt, cred.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, authcore.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("pgstore: create credential: %w", err)
	}
	out := *cred
	return &out, nil
}

func (s *Store) UpdatePassword(ctx context.Context, email, newHash string, changedAt time.Time) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE credentials SET password_hash = $2, password_changed_at = $3 WHERE email = $1`,
		email, newHash, changedAt)
	if err != nil {
		return fmt.Errorf("pgstore: update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return authcore.ErrCredentialNotFound
	}
	return nil
}

// SetReset installs a pending reset on the credential, replacing any
// prior one. The old digest stops resolving as soon as the row updates.
func (s *Store) SetReset(ctx context.Context, email string, digest [32]byte, expiresAt time.Time) error {
	if !expiresAt.After(time.Now()) {
		return fmt.Errorf("pgstore: reset expiry %v is not in the future", expiresAt)
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE credentials SET reset_digest = $2, reset_expires_at = $3 WHERE email = $1`,
		email, digest[:], expiresAt)
	if err != nil {
		return fmt.Errorf("pgstore: set reset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return authcore.ErrCredentialNotFound
	}
	return nil
}

// ConsumeReset atomically clears the pending reset and installs the new
// hash. The WHERE clause re-checks digest and expiry inside the same
// statement, so out of any number of concurrent confirmations exactly one
// sees a row; the rest get ErrCredentialNotFound.
func (s *Store) ConsumeReset(ctx context.Context, digest [32]byte, newHash string, changedAt time.Time) (*authcore.Credential, error) {
	row := s.db.QueryRow(ctx,
		`UPDATE credentials
		 SET password_hash = $2, password_changed_at = $3,
		     reset_digest = NULL, reset_expires_at = NULL
		 WHERE reset_digest = $1 AND reset_expires_at > $4
		 RETURNING `+credentialColumns,
		digest[:], newHash, changedAt, time.Now())
	return scanCredential(row)
}

func scanCredential(row pgx.Row) (*authcore.Credential, error) {
	var (
		cred      authcore.Credential
		digest    []byte
		expiresAt *time.Time
	)
	err := row.Scan(&cred.ID, &cred.Email, &cred.PasswordHash, &cred.PasswordChangedAt,
		&digest, &expiresAt, &cred.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, authcore.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("pgstore: scan credential: %w", err)
	}
	if len(digest) > 0 {
		if len(digest) != len(cred.ResetDigest) {
			return nil, fmt.Errorf("pgstore: reset digest has %d bytes, want %d", len(digest), len(cred.ResetDigest))
		}
		copy(cred.ResetDigest[:], digest)
	}
	if expiresAt != nil {
		cred.ResetExpiresAt = *expiresAt
	}
	return &cred, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

var _ authcore.UserStore = (*Store)(nil)
