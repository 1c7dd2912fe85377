package redistore

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"time"

	"github.com/veldra/authcore"
)

const recordVersionV1 = 1

var errInvalidRecord = errors.New("invalid credential record encoding")

// encodeCredential renders a credential in the versioned binary layout:
// version byte, length-prefixed ID/email/hash, nanosecond timestamps, a
// presence flag for the reset fields.
func encodeCredential(cred *authcore.Credential) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(recordVersionV1)

	for _, field := range []string{cred.ID, cred.Email, cred.PasswordHash} {
		if len(field) > 65535 {
			return nil, errors.New("credential field too long")
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.WriteString(field)
	}

	if err := binary.Write(&buf, binary.BigEndian, cred.PasswordChangedAt.UnixNano()); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, cred.CreatedAt.UnixNano()); err != nil {
		return nil, err
	}

	if cred.HasPendingReset() {
		buf.WriteByte(1)
		buf.Write(cred.ResetDigest[:])
		if err := binary.Write(&buf, binary.BigEndian, cred.ResetExpiresAt.UnixNano()); err != nil {
			return nil, err
		}
	} else {
		buf.WriteByte(0)
	}

	return buf.Bytes(), nil
}

func decodeCredential(data []byte) (*authcore.Credential, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, errInvalidRecord
	}
	if version != recordVersionV1 {
		return nil, errInvalidRecord
	}

	fields := make([]string, 3)
	for i := range fields {
		var length uint16
		if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
			return nil, errInvalidRecord
		}
		raw := make([]byte, length)
		if _, err := io.ReadFull(reader, raw); err != nil {
			return nil, errInvalidRecord
		}
		fields[i] = string(raw)
	}

	cred := &authcore.Credential{
		ID:           fields[0],
		Email:        fields[1],
		PasswordHash: fields[2],
	}

	var changedAt, createdAt int64
	if err := binary.Read(reader, binary.BigEndian, &changedAt); err != nil {
		return nil, errInvalidRecord
	}
	if err := binary.Read(reader, binary.BigEndian, &createdAt); err != nil {
		return nil, errInvalidRecord
	}
	cred.PasswordChangedAt = time.Unix(0, changedAt)
	cred.CreatedAt = time.Unix(0, createdAt)

	hasReset, err := reader.ReadByte()
	if err != nil {
		return nil, errInvalidRecord
	}
	if hasReset == 1 {
		if _, err := io.ReadFull(reader, cred.ResetDigest[:]); err != nil {
			return nil, errInvalidRecord
		}
		var expiresAt int64
		if err := binary.Read(reader, binary.BigEndian, &expiresAt); err != nil {
			return nil, errInvalidRecord
		}
		cred.ResetExpiresAt = time.Unix(0, expiresAt)
	}

	if reader.Len() != 0 {
		return nil, errInvalidRecord
	}

	return cred, nil
}
