// Package provider defines the interface for email delivery backends.
package provider

import (
	"context"

	"github.com/synergitech/postal-relay/internal/email"
)

// Provider is the interface that email delivery backends must implement.
// The Postal transport is the primary backend; SES and stdout exist as
// alternates for environments without a Postal server.
type Provider interface {
	// Send delivers an email message through this provider.
	// It returns an error if the delivery fails.
	Send(ctx context.Context, msg *email.Message) error

	// Name returns the human-readable name of this provider.
	Name() string
}
