package domain

import (
	"sync"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
)

// PendingLogin is the requesting device's side of an auth request: the id it
// was assigned, the access code to present and the private key that opens the
// response. The private key can be used exactly once.
type PendingLogin struct {
	RequestID  uuid.UUID
	Email      string
	AccessCode string
	PublicKey  cryptoDomain.PublicKey

	mu         sync.Mutex
	privateKey []byte
	consumed   bool
}

// NewPendingLogin takes ownership of privateKey.
func NewPendingLogin(
	requestID uuid.UUID,
	email, accessCode string,
	publicKey cryptoDomain.PublicKey,
	privateKey []byte,
) *PendingLogin {
	return &PendingLogin{
		RequestID:  requestID,
		Email:      email,
		AccessCode: accessCode,
		PublicKey:  publicKey,
		privateKey: privateKey,
	}
}

// Consume calls fn with the private key and zeroes the key afterwards,
// whatever fn returns. A second call fails with ErrAlreadyConsumed.
func (p *PendingLogin) Consume(fn func(privateKey []byte) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.consumed {
		return ErrAlreadyConsumed
	}
	p.consumed = true
	defer func() {
		cryptoDomain.Zero(p.privateKey)
		p.privateKey = nil
	}()

	return fn(p.privateKey)
}

// Consumed reports whether the private key has been used.
func (p *PendingLogin) Consumed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.consumed
}

// Discard zeroes the private key without using it.
func (p *PendingLogin) Discard() {
	_ = p.Consume(func([]byte) error { return nil })
}
