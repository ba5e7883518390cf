package promo

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var errInvalidAuth = errors.New("invalid promo credentials")

// HashAuth hashes a promo auth secret for storage.
func HashAuth(auth string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(auth), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Authenticate checks auth against the stored hash. A promo without a hash accepts any auth.
func (p *Promo) Authenticate(auth string) error {
	if p.AuthHash == "" {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.AuthHash), []byte(auth)); err != nil {
		return errInvalidAuth
	}
	return nil
}
