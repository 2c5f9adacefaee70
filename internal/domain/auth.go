package domain

import "context"

// TokenValidator validates bearer tokens presented during the WebSocket
// handshake. Implementations live outside the hub (auth service, static
// token list); the hub only consumes the decision.
type TokenValidator interface {
	// Validate returns nil if the token is acceptable.
	Validate(ctx context.Context, token string) error
}
