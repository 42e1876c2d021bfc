package client

import (
	"github.com/trezcool/schoolsaas/core/user"
)

// Session holds the signed-in user of a single consumer. It is not safe for concurrent use.
type Session struct {
	User          *user.User
	Authenticated bool
	Loading       bool
}

func NewSession() *Session {
	return &Session{Loading: true}
}

func (s *Session) SetUser(usr *user.User) {
	s.User = usr
	s.Authenticated = usr != nil
}

func (s *Session) SetAuthenticated(authenticated bool) { s.Authenticated = authenticated }
func (s *Session) SetLoading(loading bool)             { s.Loading = loading }

// Logout forgets the user and clears both tokens from store.
// The session is reset even when the store fails.
func (s *Session) Logout(store TokenStore) error {
	s.User = nil
	s.Authenticated = false
	return store.Delete(KeyAccessToken, KeyRefreshToken)
}
