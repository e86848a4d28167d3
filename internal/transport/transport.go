// Package transport converts structured email messages into Postal send
// requests, submits them, and hands successful deliveries to an optional
// recorder for bookkeeping.
package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/synergitech/postal-relay/internal/email"
	"github.com/synergitech/postal-relay/internal/postal"
)

// MessageIDHeader is the header written back onto the outgoing message after
// a successful send, carrying Postal's message id so callers can match their
// own record of the send against webhooks coming out of Postal.
const MessageIDHeader = "Postal-Message-ID"

// TransportError is returned when the Postal API rejects a send. It carries
// the provider's message and code and wraps the original error.
type TransportError struct {
	Message string
	Code    string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("postal transport: %s: %s", e.Code, e.Message)
	}
	return "postal transport: " + e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Recorder persists delivery bookkeeping for a successful send.
type Recorder interface {
	Record(ctx context.Context, msg *email.Message, result *postal.SendResult) error
}

// Transport is the Postal delivery backend: it translates a message, submits
// it through the client, and records the delivery when a recorder is
// configured.
type Transport struct {
	client   postal.MessageSender
	recorder Recorder
}

// New creates a Transport. recorder may be nil, which disables delivery
// logging entirely.
func New(client postal.MessageSender, recorder Recorder) *Transport {
	return &Transport{
		client:   client,
		recorder: recorder,
	}
}

// Send delivers msg through Postal. API-level failures are surfaced as a
// *TransportError without retrying. On success the Postal message id is
// written onto the message headers; recording failures after that point
// propagate as-is and the already-committed send is never compensated.
func (t *Transport) Send(ctx context.Context, msg *email.Message) error {
	req := Translate(msg)

	result, err := t.client.SendMessage(ctx, req)
	if err != nil {
		var apiErr *postal.APIError
		if errors.As(err, &apiErr) {
			return &TransportError{
				Message: apiErr.Message,
				Code:    apiErr.Code,
				Err:     apiErr,
			}
		}
		return err
	}

	msg.SetHeader(MessageIDHeader, result.MessageID)

	slog.Debug("message accepted by postal",
		"message_id", result.MessageID,
		"recipients", len(result.Recipients),
	)

	if t.recorder == nil {
		return nil
	}

	return t.recorder.Record(ctx, msg, result)
}

// Name returns the backend name.
func (t *Transport) Name() string {
	return "postal"
}
