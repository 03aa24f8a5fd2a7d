// pkg/auth/guard.go
package auth

import "time"

// Navigator receives the redirect side effect when a guard denies entry.
type Navigator interface {
	RedirectToLogin()
}

// LoginGuard admits routes only while a non-expired credential is held.
// Denial is a boolean plus a redirect, never an error.
type LoginGuard struct {
	store *TokenStore
	nav   Navigator
}

func NewLoginGuard(store *TokenStore, nav Navigator) *LoginGuard {
	return &LoginGuard{store: store, nav: nav}
}

func (g *LoginGuard) CanEnter(route string) bool {
	if validClaims(g.store) == nil {
		g.nav.RedirectToLogin()
		return false
	}
	return true
}

// AdminGuard additionally requires the admin role.
type AdminGuard struct {
	store *TokenStore
	nav   Navigator
}

func NewAdminGuard(store *TokenStore, nav Navigator) *AdminGuard {
	return &AdminGuard{store: store, nav: nav}
}

func (g *AdminGuard) CanEnter(route string) bool {
	claims := validClaims(g.store)
	if claims == nil || !claims.IsAdmin() {
		g.nav.RedirectToLogin()
		return false
	}
	return true
}

func validClaims(store *TokenStore) *Claims {
	claims, err := store.Claims()
	if err != nil {
		return nil
	}
	if claims.Expired(time.Now()) {
		return nil
	}
	return claims
}
