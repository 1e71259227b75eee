package secure

import (
	"sync"

	"github.com/awnumar/memguard"
)

// SecureBuffer holds one secret encrypted at rest in a memguard enclave.
type SecureBuffer struct {
	enclave   *memguard.Enclave
	mu        sync.RWMutex
	destroyed bool
}

// NewSecureBuffer seals data into an enclave. memguard wipes the source
// slice, so callers must not reuse it.
func NewSecureBuffer(data []byte) (*SecureBuffer, error) {
	if len(data) == 0 {
		// memguard refuses to seal empty input; an empty buffer opens to nothing.
		return &SecureBuffer{}, nil
	}
	return &SecureBuffer{enclave: memguard.NewEnclave(data)}, nil
}

// Open decrypts the secret into a locked buffer. The caller must Destroy it.
func (s *SecureBuffer) Open() (*memguard.LockedBuffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed || s.enclave == nil {
		return memguard.NewBuffer(0), nil
	}
	return s.enclave.Open()
}

// String returns the secret as a string. The copy lives in ordinary Go
// memory, so keep its lifetime short.
func (s *SecureBuffer) String() (string, error) {
	locked, err := s.Open()
	if err != nil {
		return "", err
	}
	defer locked.Destroy()
	return string(locked.Bytes()), nil
}

// Destroy drops the enclave. Safe to call more than once.
func (s *SecureBuffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.destroyed = true
	s.enclave = nil
}
