// Package postal implements a minimal client for the Postal send API.
package postal

import "encoding/json"

// SendRequest is the JSON body for the Postal /api/v1/send/message endpoint.
// A SendRequest must not be reused across sends; build a fresh one per
// delivery attempt.
type SendRequest struct {
	To          []string          `json:"to,omitempty"`
	Cc          []string          `json:"cc,omitempty"`
	Bcc         []string          `json:"bcc,omitempty"`
	From        string            `json:"from,omitempty"`
	ReplyTo     string            `json:"reply_to,omitempty"`
	Subject     string            `json:"subject,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	PlainBody   string            `json:"plain_body,omitempty"`
	HTMLBody    string            `json:"html_body,omitempty"`
	Attachments []Attachment      `json:"attachments,omitempty"`
}

// Header adds a custom header to the request.
func (r *SendRequest) Header(key, value string) {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
}

// Attachment is a file attachment in a send request. Data is base64-encoded
// per the Postal API.
type Attachment struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        string `json:"data"`
}

// Recipient is the per-recipient delivery information Postal returns for a
// successful send. ID and Token together identify the delivery for webhook
// lookups.
type Recipient struct {
	ID    int    `json:"id"`
	Token string `json:"token"`
}

// SendResult is the decoded success payload of a send call.
type SendResult struct {
	// MessageID identifies the whole send; it is shared by every recipient.
	MessageID string `json:"message_id"`

	// Recipients maps each recipient address to its delivery info. Postal
	// lowercases the addresses used as keys.
	Recipients map[string]Recipient `json:"messages"`
}

// apiEnvelope is the outer response wrapper used by every Postal endpoint.
type apiEnvelope struct {
	Status string          `json:"status"`
	Time   float64         `json:"time"`
	Data   json.RawMessage `json:"data"`
}

// apiErrorData is the payload of an error envelope.
type apiErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
