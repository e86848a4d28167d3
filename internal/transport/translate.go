package transport

import (
	"encoding/base64"
	"fmt"

	"github.com/synergitech/postal-relay/internal/email"
	"github.com/synergitech/postal-relay/internal/postal"
)

// Translate builds a Postal send request from a structured message. It is a
// pure transformation: malformed optional data is skipped, never fatal. Each
// call returns a fresh request, since a request must not be reused across
// sends.
func Translate(msg *email.Message) *postal.SendRequest {
	req := &postal.SendRequest{}

	// Recipients are deduplicated by exact address across To, Cc and Bcc in
	// that order, so an address listed in more than one category is only
	// delivered under the first one. Webhook reconciliation relies on a
	// recipient appearing in at most one category.
	seen := make(map[string]bool)

	addRecipients := func(addrs []email.Address, dest *[]string) {
		for _, addr := range addrs {
			if seen[addr.Email] {
				continue
			}
			seen[addr.Email] = true
			*dest = append(*dest, addr.String())
		}
	}

	addRecipients(msg.To, &req.To)
	addRecipients(msg.Cc, &req.Cc)
	addRecipients(msg.Bcc, &req.Bcc)

	// The wire format carries a single sender and reply-to; with multiple
	// entries on the message the last one wins.
	for _, addr := range msg.From {
		req.From = addr.String()
	}
	for _, addr := range msg.ReplyTo {
		req.ReplyTo = addr.String()
	}

	if msg.Subject != "" {
		req.Subject = msg.Subject
	}

	for _, h := range ParseHeaders(msg.Headers) {
		req.Header(h.Key, h.Value)
	}

	if msg.TextBody != "" {
		req.PlainBody = msg.TextBody
	}
	if msg.HtmlBody != "" {
		req.HTMLBody = msg.HtmlBody
	}

	for i, att := range msg.Attachments {
		name := att.Filename
		if name == "" {
			name = fmt.Sprintf("attached_file_%d", i)
		}
		req.Attachments = append(req.Attachments, postal.Attachment{
			Name:        name,
			ContentType: att.ContentType,
			Data:        base64.StdEncoding.EncodeToString(att.Content),
		})
	}

	return req
}
