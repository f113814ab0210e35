package guard

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/argon2"
)

// HashParams are the Argon2id cost parameters.
type HashParams struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// DefaultHashParams follow the OWASP recommendation for Argon2id.
var DefaultHashParams = HashParams{Time: 3, MemoryKiB: 64 * 1024, Threads: 4}

const (
	saltLength = 16
	hashLength = 32
)

// PinRecord is the only persisted representation of the PIN.
type PinRecord struct {
	Hash           []byte `cbor:"1,keyasint"`
	Salt           []byte `cbor:"2,keyasint"`
	CreatedAt      int64  `cbor:"3,keyasint"`
	FailedAttempts int    `cbor:"4,keyasint"`
	MaxAttempts    int    `cbor:"5,keyasint"`
	Time           uint32 `cbor:"6,keyasint"`
	MemoryKiB      uint32 `cbor:"7,keyasint"`
	Threads        uint8  `cbor:"8,keyasint"`
}

func newPinRecord(pin string, params HashParams, maxAttempts int, now time.Time) (*PinRecord, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	return &PinRecord{
		Hash:        hashPin(pin, salt, params),
		Salt:        salt,
		CreatedAt:   now.Unix(),
		MaxAttempts: maxAttempts,
		Time:        params.Time,
		MemoryKiB:   params.MemoryKiB,
		Threads:     params.Threads,
	}, nil
}

func hashPin(pin string, salt []byte, params HashParams) []byte {
	return argon2.IDKey([]byte(pin), salt, params.Time, params.MemoryKiB, params.Threads, hashLength)
}

func (r *PinRecord) params() HashParams {
	return HashParams{Time: r.Time, MemoryKiB: r.MemoryKiB, Threads: r.Threads}
}

// Created returns the record's creation time.
func (r *PinRecord) Created() time.Time {
	return time.Unix(r.CreatedAt, 0)
}

func encodeRecord(r *PinRecord) ([]byte, error) {
	return cbor.Marshal(r)
}

func decodeRecord(data []byte) (*PinRecord, error) {
	var r PinRecord
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	if len(r.Hash) != hashLength || len(r.Salt) != saltLength || r.Time == 0 || r.MemoryKiB == 0 || r.Threads == 0 {
		return nil, fmt.Errorf("pin record is incomplete")
	}
	return &r, nil
}
