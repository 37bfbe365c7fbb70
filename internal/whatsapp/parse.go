package whatsapp

import "strings"

// Label extracts the display text the dialogue router cares about: the text
// body, or the title of the tapped button / list row. Empty for media and
// unsupported types.
func (m Message) Label() string {
	switch m.Type {
	case "text":
		if m.Text != nil {
			return strings.TrimSpace(m.Text.Body)
		}
	case "interactive":
		if m.Interactive == nil {
			return ""
		}
		if m.Interactive.ButtonReply != nil {
			return strings.TrimSpace(m.Interactive.ButtonReply.Title)
		}
		if m.Interactive.ListReply != nil {
			return strings.TrimSpace(m.Interactive.ListReply.Title)
		}
	}
	return ""
}

// IsImage reports whether the message is an inbound image. Image presence is a
// signal of its own in the document-capture states.
func (m Message) IsImage() bool {
	return m.Type == "image"
}

// FirstMessage walks the envelope and returns the first real inbound message
// together with the metadata of the business number that received it. Payloads
// carrying only delivery/read receipts return ok=false.
func (p WebhookPayload) FirstMessage() (Message, Metadata, bool) {
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			if len(change.Value.Messages) == 0 {
				continue
			}
			return change.Value.Messages[0], change.Value.Metadata, true
		}
	}
	return Message{}, Metadata{}, false
}
