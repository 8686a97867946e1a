package domain

import (
	"sync"

	"github.com/google/uuid"
)

// Generation identifies one lock epoch of a Session. Every Lock starts a new one.
type Generation uint64

// SessionKeys is the set of unwrapped keys committed by an unlock flow.
type SessionKeys struct {
	UserID     uuid.UUID
	UserKey    *SymmetricCryptoKey
	PrivateKey []byte
	OrgKeys    map[uuid.UUID]*SymmetricCryptoKey

	// MasterKey and MasterKeyHash are only set by flows that explicitly grant them.
	MasterKey     *SymmetricCryptoKey
	MasterKeyHash string
}

// MasterKeyGrant is a master key and its server authorization hash handed to a session.
type MasterKeyGrant struct {
	Key  *SymmetricCryptoKey
	Hash string
}

// Session is the in-memory cache of unwrapped keys for one account.
//
// Readers receive clones, so Lock can wipe the cached material without racing
// them. Writers capture Generation before they start any slow work and pass it
// to Commit; a Lock in between makes the commit fail with ErrSessionLocked.
type Session struct {
	mu         sync.RWMutex
	generation Generation
	unlocked   bool

	userID        uuid.UUID
	userKey       *SymmetricCryptoKey
	privateKey    []byte
	orgKeys       map[uuid.UUID]*SymmetricCryptoKey
	masterKey     *SymmetricCryptoKey
	masterKeyHash string
}

// NewSession returns a locked session.
func NewSession() *Session {
	return &Session{orgKeys: make(map[uuid.UUID]*SymmetricCryptoKey)}
}

// Generation returns the current lock epoch.
func (s *Session) Generation() Generation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// IsUnlocked reports whether a User Key is cached.
func (s *Session) IsUnlocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unlocked
}

// UserID returns the account the session was unlocked for.
func (s *Session) UserID() (uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.unlocked {
		return uuid.Nil, ErrSessionLocked
	}
	return s.userID, nil
}

// UserKey returns a clone of the cached User Key.
func (s *Session) UserKey() (*SymmetricCryptoKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.unlocked {
		return nil, ErrSessionLocked
	}
	return cloneKey(s.userKey), nil
}

// PrivateKey returns a copy of the cached PKCS#8 private key.
func (s *Session) PrivateKey() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.unlocked {
		return nil, ErrSessionLocked
	}
	if len(s.privateKey) == 0 {
		return nil, ErrInvalidPrivateKey
	}
	return clone(s.privateKey), nil
}

// OrgKey returns a clone of the cached key for the organization.
func (s *Session) OrgKey(orgID uuid.UUID) (*SymmetricCryptoKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.unlocked {
		return nil, ErrSessionLocked
	}
	key, ok := s.orgKeys[orgID]
	if !ok {
		return nil, ErrOrgKeyNotFound
	}
	return cloneKey(key), nil
}

// MasterKey returns clones of the granted Master Key and its hash.
func (s *Session) MasterKey() (*SymmetricCryptoKey, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.unlocked {
		return nil, "", ErrSessionLocked
	}
	if s.masterKey == nil || s.masterKeyHash == "" {
		return nil, "", ErrMasterKeyNotAvailable
	}
	return cloneKey(s.masterKey), s.masterKeyHash, nil
}

// Commit replaces the cached keys with clones of keys, all at once. It fails
// with ErrSessionLocked when the session was locked after gen was captured,
// in which case nothing changes.
func (s *Session) Commit(gen Generation, keys SessionKeys) error {
	if keys.UserKey == nil {
		return ErrInvalidKeySize
	}

	next := SessionKeys{
		UserID:        keys.UserID,
		UserKey:       cloneKey(keys.UserKey),
		PrivateKey:    clone(keys.PrivateKey),
		OrgKeys:       make(map[uuid.UUID]*SymmetricCryptoKey, len(keys.OrgKeys)),
		MasterKey:     cloneKey(keys.MasterKey),
		MasterKeyHash: keys.MasterKeyHash,
	}
	for id, key := range keys.OrgKeys {
		next.OrgKeys[id] = cloneKey(key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		wipe(next)
		return ErrSessionLocked
	}

	s.wipeLocked()
	s.unlocked = true
	s.userID = next.UserID
	s.userKey = next.UserKey
	s.privateKey = next.PrivateKey
	s.orgKeys = next.OrgKeys
	s.masterKey = next.MasterKey
	s.masterKeyHash = next.MasterKeyHash
	return nil
}

// AddOrgKey caches one more Organization Key in an unlocked session.
func (s *Session) AddOrgKey(gen Generation, orgID uuid.UUID, key *SymmetricCryptoKey) error {
	c := cloneKey(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation || !s.unlocked {
		c.Zero()
		return ErrSessionLocked
	}
	if old, ok := s.orgKeys[orgID]; ok {
		old.Zero()
	}
	s.orgKeys[orgID] = c
	return nil
}

// Lock wipes every cached key and starts a new generation. Reads that begin
// after Lock returns observe a locked session.
func (s *Session) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wipeLocked()
	s.unlocked = false
	s.userID = uuid.Nil
	s.generation++
}

func (s *Session) wipeLocked() {
	wipe(SessionKeys{
		UserKey:    s.userKey,
		PrivateKey: s.privateKey,
		OrgKeys:    s.orgKeys,
		MasterKey:  s.masterKey,
	})
	s.userKey = nil
	s.privateKey = nil
	s.orgKeys = make(map[uuid.UUID]*SymmetricCryptoKey)
	s.masterKey = nil
	s.masterKeyHash = ""
}

// Wipe zeroes every key held by keys. Callers use it on the originals they
// passed to Commit.
func (keys SessionKeys) Wipe() {
	wipe(keys)
}

func wipe(keys SessionKeys) {
	keys.UserKey.Zero()
	keys.MasterKey.Zero()
	Zero(keys.PrivateKey)
	for _, key := range keys.OrgKeys {
		key.Zero()
	}
}

func cloneKey(k *SymmetricCryptoKey) *SymmetricCryptoKey {
	if k == nil {
		return nil
	}
	return &SymmetricCryptoKey{key: clone(k.key), encType: k.encType}
}
