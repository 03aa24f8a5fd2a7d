// pkg/auth/store.go
package auth

import (
	"encoding/json"
	"errors"
	"os"
	"sync"

	"github.com/twinkleshop/shopapp-orders/internal/domain"
)

type Credential struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// TokenStore owns the current credential for the session. With a backing
// file the credential survives a process restart; Clear removes it, and the
// HTTP gateway clears it when the server answers 401.
type TokenStore struct {
	mu   sync.RWMutex
	cred *Credential
	path string
}

func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// NewFileTokenStore loads any previously persisted credential from path.
// A missing file is not an error; an unreadable one is.
func NewFileTokenStore(path string) (*TokenStore, error) {
	s := &TokenStore{path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	cred := &Credential{}
	if err := json.Unmarshal(data, cred); err != nil {
		return nil, err
	}
	if cred.AccessToken != "" {
		s.cred = cred
	}
	return s, nil
}

func (s *TokenStore) Credential() (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil {
		return Credential{}, false
	}
	return *s.cred, true
}

func (s *TokenStore) SetCredential(cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = &cred
	if s.path == "" {
		return nil
	}
	data, err := json.Marshal(cred)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *TokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = nil
	if s.path == "" {
		return nil
	}
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Claims decodes the stored credential. Absent credential maps to ErrAuth,
// an undecodable one to ErrMalformedToken.
func (s *TokenStore) Claims() (*Claims, error) {
	cred, ok := s.Credential()
	if !ok {
		return nil, domain.ErrAuth
	}
	return DecodeClaims(cred.AccessToken)
}
