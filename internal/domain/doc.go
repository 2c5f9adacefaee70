// Package domain holds the core types shared across the hub: broadcast
// messages and their typed payloads, the token-validation collaborator
// interface, and sentinel errors.
package domain
