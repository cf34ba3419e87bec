package stores

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/MrEthical07/otpauth/internal/keys"
	"github.com/MrEthical07/otpauth/internal/kv"
)

const (
	pendingRecordVersionV1 = 1
)

var (
	ErrPendingNotFound = errors.New("pending registration not found")
	ErrPendingCorrupt  = errors.New("pending registration record corrupt")
)

// PendingRegistration holds a sign-up that is waiting for its OTP.
// PasswordHash is already hashed; plaintext passwords never reach the store.
type PendingRegistration struct {
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    int64
}

type PendingRegistrationStore struct {
	store kv.Store
	keys  keys.Namespace
}

func NewPendingRegistrationStore(store kv.Store, ns keys.Namespace) *PendingRegistrationStore {
	return &PendingRegistrationStore{
		store: store,
		keys:  ns,
	}
}

// Save replaces any pending registration for the record's email.
func (s *PendingRegistrationStore) Save(ctx context.Context, record *PendingRegistration, ttl time.Duration) error {
	if record == nil {
		return errors.New("pending registration is nil")
	}
	if record.CreatedAt == 0 {
		record.CreatedAt = time.Now().Unix()
	}

	encoded, err := encodePendingRegistration(record)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, s.keys.Pending(record.Email), string(encoded), ttl)
}

// Get returns ErrPendingNotFound when the record expired or was never saved.
// An undecodable record is deleted and reported as not found.
func (s *PendingRegistrationStore) Get(ctx context.Context, email string) (*PendingRegistration, error) {
	key := s.keys.Pending(email)
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPendingNotFound
	}

	record, err := decodePendingRegistration([]byte(raw))
	if err != nil {
		_ = s.store.Delete(ctx, key)
		return nil, fmt.Errorf("%w: %w", ErrPendingNotFound, err)
	}
	return record, nil
}

func (s *PendingRegistrationStore) Delete(ctx context.Context, email string) error {
	return s.store.Delete(ctx, s.keys.Pending(email))
}

func encodePendingRegistration(record *PendingRegistration) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(pendingRecordVersionV1)
	if err := binary.Write(&buf, binary.BigEndian, record.CreatedAt); err != nil {
		return nil, err
	}
	for _, field := range []string{record.Name, record.Email, record.PasswordHash} {
		if err := writeString(&buf, field); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func decodePendingRegistration(data []byte) (*PendingRegistration, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != pendingRecordVersionV1 {
		return nil, fmt.Errorf("%w: version %d", ErrPendingCorrupt, version)
	}

	record := &PendingRegistration{}
	if err := binary.Read(reader, binary.BigEndian, &record.CreatedAt); err != nil {
		return nil, err
	}
	if record.Name, err = readString(reader); err != nil {
		return nil, err
	}
	if record.Email, err = readString(reader); err != nil {
		return nil, err
	}
	if record.PasswordHash, err = readString(reader); err != nil {
		return nil, err
	}
	if reader.Len() != 0 {
		return nil, fmt.Errorf("%w: trailing bytes", ErrPendingCorrupt)
	}

	return record, nil
}

func writeString(buf *bytes.Buffer, s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("%w: field too long", ErrPendingCorrupt)
	}
	if err := binary.Write(buf, binary.BigEndian, uint16(len(s))); err != nil {
		return err
	}
	buf.WriteString(s)
	return nil
}

func readString(reader *bytes.Reader) (string, error) {
	var n uint16
	if err := binary.Read(reader, binary.BigEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(reader, b); err != nil {
		return "", err
	}
	return string(b), nil
}
