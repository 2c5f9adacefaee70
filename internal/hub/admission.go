package hub

import (
	"context"
	"fmt"

	"tradepulse/internal/domain"
	apperrors "tradepulse/internal/errors"
	"tradepulse/internal/metrics"
)

// SupportedProtocolVersion is the transport protocol version this hub speaks.
const SupportedProtocolVersion = "1.0"

// restrictedChannels are never joinable from the streaming endpoint,
// regardless of authentication.
var restrictedChannels = map[string]bool{
	"admin":  true,
	"system": true,
}

// ConnectionAttempt carries the handshake parameters of a prospective client.
type ConnectionAttempt struct {
	// ProtocolVersion is the advertised transport version. Empty means the
	// client predates version negotiation and is treated as current.
	ProtocolVersion string
	Token           string
	RemoteAddr      string
}

// AdmissionController gate-keeps new connections: protocol version, token
// validation via the external collaborator, and the restricted-channel
// deny-list, short-circuiting on the first failure. It allocates nothing;
// registration happens only after a successful decision.
type AdmissionController struct {
	tokens domain.TokenValidator
}

// NewAdmissionController creates an admission controller delegating token
// checks to the given validator.
func NewAdmissionController(tokens domain.TokenValidator) *AdmissionController {
	return &AdmissionController{tokens: tokens}
}

// Admit decides whether the attempt may join the channel. A nil return means
// admitted; otherwise the structured error carries the rejection reason.
func (a *AdmissionController) Admit(ctx context.Context, attempt ConnectionAttempt, channel string) error {
	if attempt.ProtocolVersion != "" && attempt.ProtocolVersion != SupportedProtocolVersion {
		metrics.ConnectionsRejectedTotal.WithLabelValues("protocol").Inc()
		return apperrors.UnsupportedProtocolError(
			fmt.Sprintf("protocol version %q is not supported", attempt.ProtocolVersion),
		).WithContext("supported", SupportedProtocolVersion)
	}

	if err := a.tokens.Validate(ctx, attempt.Token); err != nil {
		metrics.ConnectionsRejectedTotal.WithLabelValues("credentials").Inc()
		return apperrors.InvalidCredentialsError("token validation failed", err)
	}

	if restrictedChannels[channel] {
		metrics.ConnectionsRejectedTotal.WithLabelValues("forbidden_channel").Inc()
		return apperrors.ChannelForbiddenError(
			fmt.Sprintf("channel %q is restricted", channel),
		)
	}

	return nil
}
