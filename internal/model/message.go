package model

import "time"

// Message is an inbox entry, typically a note left by a guest with their RSVP.
type Message struct {
	ID         ServerID  `json:"id"`
	Sender     string    `json:"sender"`
	Subject    string    `json:"subject,omitempty"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"receivedAt"`
	IsRead     bool      `json:"isRead"`
}

// MessageList is the payload of the inbox endpoint.
type MessageList struct {
	Messages []Message `json:"messages"`
}
