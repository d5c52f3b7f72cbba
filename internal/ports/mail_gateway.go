package ports

import (
	"context"

	"github.com/mikey/resend-relay/internal/core"
)

// MailGateway defines the interface for a host-facing mail entry point.
type MailGateway interface {
	// Submit runs one outgoing message through the interception pipeline.
	Submit(ctx context.Context, msg *core.OutgoingMessage) core.SendResult

	// Start starts the gateway.
	Start() error

	// Stop stops the gateway.
	Stop() error
}
