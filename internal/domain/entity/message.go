package entity

import "time"

// InboundMessage kanaldan kelgan matnli xabar
type InboundMessage struct {
	ID         string
	Phone      string
	Name       string
	Text       string
	Channel    string
	ReceivedAt time.Time
}

// Document is an attachment produced for a reply.
type Document struct {
	Filename string
	Caption  string
	MimeType string
	Content  []byte
}

// Reply dispatcherning javobi; delivery decides how to send it.
type Reply struct {
	Text      string
	Action    string
	Documents []Document
}
