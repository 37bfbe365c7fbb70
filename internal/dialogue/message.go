package dialogue

import "context"

// MessageKind identifies the outbound shape the gateway should deliver.
type MessageKind int

const (
	KindText MessageKind = iota
	KindButtons
	KindList
)

// Provider limits for interactive messages.
const (
	MaxButtons        = 3
	MaxButtonTitleLen = 20
	MaxListRowLen     = 24
)

// Section groups rows of a list message under a named header.
type Section struct {
	Title string
	Rows  []string
}

// Message is one outbound message: plain text, a quick-reply button set or a
// selectable list. The router may emit several per inbound turn.
type Message struct {
	Kind       MessageKind
	Body       string
	Buttons    []string
	ListButton string
	Sections   []Section
}

// Text builds a plain text message.
func Text(body string) Message {
	return Message{Kind: KindText, Body: body}
}

// Buttons builds a quick-reply message. Titles beyond the provider limit are dropped.
func Buttons(body string, titles ...string) Message {
	if len(titles) > MaxButtons {
		titles = titles[:MaxButtons]
	}
	return Message{Kind: KindButtons, Body: body, Buttons: titles}
}

// List builds a sectioned list message. button is the label that opens the list.
func List(body, button string, sections ...Section) Message {
	return Message{Kind: KindList, Body: body, ListButton: button, Sections: sections}
}

// Messenger delivers outbound messages to the patient's phone. Implementations
// must treat delivery as best-effort: the conversation turn already happened.
type Messenger interface {
	Deliver(ctx context.Context, to string, msgs []Message) error
}
