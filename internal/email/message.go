// Package email defines the structured email message model shared by the
// parser, the delivery backends, and the delivery log.
package email

import "strings"

// Address is a single mailbox with an optional display name.
type Address struct {
	Name  string
	Email string
}

// String renders the address in the form expected by delivery providers:
// "Name <addr>" when a display name is present, otherwise the bare address.
func (a Address) String() string {
	if a.Name != "" {
		return a.Name + " <" + a.Email + ">"
	}
	return a.Email
}

// Attachment represents a file attached to an email message.
type Attachment struct {
	// Filename may be empty when the originating part carried no
	// content-disposition filename; backends synthesize a name then.
	Filename    string
	ContentType string
	Content     []byte
}

// Message represents a structured outgoing email. It is built by the caller
// (or the SMTP parser) and treated as read-only by delivery backends, with
// one exception: after a successful Postal send the provider message id is
// written back onto Headers so the caller can correlate the delivery.
type Message struct {
	From    []Address
	To      []Address
	Cc      []Address
	Bcc     []Address
	ReplyTo []Address

	Subject  string
	TextBody string
	HtmlBody string

	// Headers holds raw "Key: Value" header lines in original order.
	Headers []string

	Attachments []Attachment
}

// Header returns the value of the first raw header line whose key matches
// name (case-insensitive), with surrounding whitespace trimmed. It returns
// the empty string when the header is absent or its line has no colon.
func (m *Message) Header(name string) string {
	for _, line := range m.Headers {
		key, value, ok := splitHeaderLine(line)
		if ok && strings.EqualFold(key, name) {
			return value
		}
	}
	return ""
}

// SetHeader replaces the first header line matching name, or appends a new
// line when the header is not present.
func (m *Message) SetHeader(name, value string) {
	for i, line := range m.Headers {
		key, _, ok := splitHeaderLine(line)
		if ok && strings.EqualFold(key, name) {
			m.Headers[i] = name + ": " + value
			return
		}
	}
	m.Headers = append(m.Headers, name+": "+value)
}

// splitHeaderLine splits a raw header line at the first colon. The third
// return value is false for lines without a colon.
func splitHeaderLine(line string) (key, value string, ok bool) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}
