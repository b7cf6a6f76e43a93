package secure

import (
	"errors"
	"sync"

	"github.com/awnumar/memguard"
)

// ErrDestroyed is returned when a destroyed buffer is used.
var ErrDestroyed = errors.New("secure buffer already destroyed")

// SecureBuffer holds a secret in a memguard enclave.
//
// memguard.Enclave has no Destroy method; a destroyed SecureBuffer drops its
// enclave reference and refuses further use. Call memguard.Purge at process
// exit for complete cleanup.
type SecureBuffer struct {
	enclave   *memguard.Enclave
	mu        sync.RWMutex
	destroyed bool
}

// NewSecureBuffer moves data into an encrypted enclave. memguard wipes the
// source slice. An empty secret is valid; memguard does not create an
// enclave for it.
func NewSecureBuffer(data []byte) *SecureBuffer {
	return &SecureBuffer{enclave: memguard.NewEnclave(data)}
}

// NewSecureBufferFromString copies s into an encrypted enclave.
func NewSecureBufferFromString(s string) *SecureBuffer {
	return NewSecureBuffer([]byte(s))
}

// Open decrypts the enclave into a locked buffer. The caller must Destroy
// the returned buffer.
func (s *SecureBuffer) Open() (*memguard.LockedBuffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed {
		return nil, ErrDestroyed
	}
	if s.enclave == nil {
		return memguard.NewBufferFromBytes([]byte{}), nil
	}
	return s.enclave.Open()
}

// Use decrypts the secret, passes the plaintext to fn and destroys the
// plaintext afterwards. fn must not retain the slice.
func (s *SecureBuffer) Use(fn func(plaintext []byte) error) error {
	locked, err := s.Open()
	if err != nil {
		return err
	}
	defer locked.Destroy()

	return fn(locked.Bytes())
}

// Size returns the secret length in bytes, or 0 once destroyed.
func (s *SecureBuffer) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.enclave == nil {
		return 0
	}
	return s.enclave.Size()
}

// Destroy prevents further use of the buffer. It is idempotent.
func (s *SecureBuffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enclave = nil
	s.destroyed = true
}
