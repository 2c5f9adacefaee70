package hub

import (
	"bytes"
	"encoding/json"
	"strings"

	"tradepulse/internal/domain"
)

// ValidationOutcome classifies the result of validating a message.
type ValidationOutcome int

const (
	ValidationOK ValidationOutcome = iota
	ValidationDisallowedType
	ValidationMalformed
	ValidationInjectionDetected
)

func (o ValidationOutcome) String() string {
	switch o {
	case ValidationOK:
		return "ok"
	case ValidationDisallowedType:
		return "disallowed_type"
	case ValidationMalformed:
		return "malformed"
	case ValidationInjectionDetected:
		return "injection_detected"
	default:
		return "unknown"
	}
}

// forbiddenPatterns are substrings that must never appear anywhere in a
// serialized message: prototype-pollution keys, script tags, SQL fragments.
var forbiddenPatterns = []string{
	"__proto__",
	"constructor.prototype",
	"<script>",
	"</script>",
	"javascript:",
	"'; DROP",
	"DROP TABLE",
}

// Validator performs structural and content validation of outbound messages.
// It is stateless; Validate never mutates its input before rejecting.
type Validator struct{}

// NewValidator returns a message validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks the message's type against the allowed set, defaults an
// absent payload to an empty object, and scans the serialized form for
// forbidden patterns. On success it returns the serialized message, ready
// for fan-out.
func (v *Validator) Validate(msg domain.Message) ([]byte, ValidationOutcome) {
	if !msg.Type.Valid() {
		return nil, ValidationDisallowedType
	}

	if msg.Data == nil {
		msg.Data = map[string]any{}
	}

	// Marshal without HTML escaping so the pattern scan sees the payload
	// exactly as the client would.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(msg); err != nil {
		return nil, ValidationMalformed
	}
	payload := bytes.TrimRight(buf.Bytes(), "\n")

	serialized := string(payload)
	for _, pattern := range forbiddenPatterns {
		if strings.Contains(serialized, pattern) {
			return nil, ValidationInjectionDetected
		}
	}

	return payload, ValidationOK
}
