package server

import (
	"context"
	"crypto/subtle"
	"errors"
)

// ErrTokenRejected is returned when no configured token matches.
var ErrTokenRejected = errors.New("token not recognized")

// StaticTokenValidator accepts a fixed set of bearer tokens. An empty set
// means development mode: every token, including none, is accepted.
type StaticTokenValidator struct {
	tokens []string
}

// NewStaticTokenValidator creates a validator over the configured tokens.
func NewStaticTokenValidator(tokens []string) *StaticTokenValidator {
	return &StaticTokenValidator{tokens: tokens}
}

// Validate implements domain.TokenValidator.
func (v *StaticTokenValidator) Validate(_ context.Context, token string) error {
	if len(v.tokens) == 0 {
		return nil
	}
	for _, candidate := range v.tokens {
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(token)) == 1 {
			return nil
		}
	}
	return ErrTokenRejected
}
