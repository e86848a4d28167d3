// Package record persists one delivery-log row per recipient of a successful
// Postal send, keyed by the identifiers Postal returns, so a later webhook
// process can reconcile delivery status against them.
package record

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/synergitech/postal-relay/internal/email"
	"github.com/synergitech/postal-relay/internal/postal"
)

// Headers the notification pathway sets on outgoing messages. When both are
// present with non-empty values, the rows written for the send are back-filled
// with the polymorphic association they name.
const (
	NotifiableClassHeader = "notifiable_class"
	NotifiableIDHeader    = "notifiable_id"
)

// Delivery is one delivery-log row: a single recipient of a single send.
type Delivery struct {
	ID        int64
	ToName    string
	ToEmail   string
	FromName  string
	FromEmail string
	Subject   string
	Body      string

	// PostalEmailID is shared by every row of the same send.
	PostalEmailID string

	// PostalID and PostalToken together are the webhook lookup key.
	PostalID    int
	PostalToken string

	// EmailableType and EmailableID are empty until back-filled, and stay
	// empty for messages outside the notification pathway.
	EmailableType string
	EmailableID   string

	CreatedAt time.Time
}

// Store is the persistence interface the Recorder writes through.
type Store interface {
	// InsertDelivery writes a single delivery row.
	InsertDelivery(ctx context.Context, d *Delivery) error

	// AssignNotifiable sets the association fields on every row carrying the
	// given Postal message id.
	AssignNotifiable(ctx context.Context, postalEmailID, emailableType, emailableID string) error
}

// Recorder builds delivery rows from a message and its send result.
type Recorder struct {
	store Store
	now   func() time.Time
}

// NewRecorder creates a Recorder writing through store.
func NewRecorder(store Store) *Recorder {
	return &Recorder{
		store: store,
		now:   time.Now,
	}
}

// Record writes one row per recipient in the send result, then back-fills the
// notifiable association when the message carries it. The inserts and the
// back-fill are independent statements; a failure in between leaves rows with
// an empty association, which is also the steady state for ordinary messages.
func (r *Recorder) Record(ctx context.Context, msg *email.Message, result *postal.SendResult) error {
	// Postal lowercases the addresses in its result map while the message
	// still has the cased versions, so build a lowercase lookup to preserve
	// the original casing of address and name in the stored rows.
	originals := make(map[string]email.Address)
	for _, list := range [][]email.Address{msg.To, msg.Cc, msg.Bcc} {
		for _, addr := range list {
			originals[strings.ToLower(addr.Email)] = addr
		}
	}

	var sender email.Address
	if len(msg.From) > 0 {
		sender = msg.From[0]
	}

	body := msg.TextBody
	if body == "" {
		body = msg.HtmlBody
	}

	createdAt := r.now().UTC()

	for addr, rcpt := range result.Recipients {
		to, ok := originals[addr]
		if !ok {
			// The result's recipients are a subset of the request's, so this
			// only happens if the translator and recorder disagree; keep the
			// row rather than dropping the delivery on the floor.
			to = email.Address{Email: addr}
		}

		d := &Delivery{
			ToName:        to.Name,
			ToEmail:       to.Email,
			FromName:      sender.Name,
			FromEmail:     sender.Email,
			Subject:       msg.Subject,
			Body:          body,
			PostalEmailID: result.MessageID,
			PostalID:      rcpt.ID,
			PostalToken:   rcpt.Token,
			CreatedAt:     createdAt,
		}

		if err := r.store.InsertDelivery(ctx, d); err != nil {
			return fmt.Errorf("failed to record delivery for %s: %w", to.Email, err)
		}
	}

	emailableType := msg.Header(NotifiableClassHeader)
	emailableID := msg.Header(NotifiableIDHeader)
	if emailableType == "" || emailableID == "" {
		return nil
	}

	if err := r.store.AssignNotifiable(ctx, result.MessageID, emailableType, emailableID); err != nil {
		return fmt.Errorf("failed to assign notifiable: %w", err)
	}

	return nil
}
