package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Message represents a direct message between two users, optionally about a help request
type Message struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	RequestRef *int64    `json:"request_ref,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	IsRead     bool      `json:"is_read"`
}

// Counterpart returns the other participant of the message relative to self.
// A message sent to oneself has self as its counterpart.
func (m *Message) Counterpart(self int64) int64 {
	if m.SenderID == self {
		return m.ReceiverID
	}
	return m.SenderID
}

// After reports whether m comes after o in the (created_at, id) order
func (m *Message) After(o *Message) bool {
	if m.CreatedAt.Equal(o.CreatedAt) {
		return m.ID > o.ID
	}
	return m.CreatedAt.After(o.CreatedAt)
}

// NewMessage is what the store needs to append a message
type NewMessage struct {
	SenderID   int64
	ReceiverID int64
	RequestRef *int64
	Content    string
}

// MessageRequest is the structure for message creation requests.
// Fields are pointers so that a missing receiver can be told apart from id 0.
type MessageRequest struct {
	ReceiverID *int64 `json:"receiver_id"`
	RequestRef *int64 `json:"request_ref,omitempty"`
	OfferID    *int64 `json:"offer_id,omitempty"` // legacy name for request_ref
	Content    string `json:"content"`
}

// Ref returns the referenced request, preferring request_ref over offer_id
func (r MessageRequest) Ref() *int64 {
	if r.RequestRef != nil {
		return r.RequestRef
	}
	return r.OfferID
}

// UnmarshalJSON accepts ids as JSON numbers or numeric strings.
// The web client posts route params such as receiver_id as strings.
func (r *MessageRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		ReceiverID json.RawMessage `json:"receiver_id"`
		RequestRef json.RawMessage `json:"request_ref"`
		OfferID    json.RawMessage `json:"offer_id"`
		Content    string          `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var err error
	if r.ReceiverID, err = parseID("receiver_id", raw.ReceiverID); err != nil {
		return err
	}
	if r.RequestRef, err = parseID("request_ref", raw.RequestRef); err != nil {
		return err
	}
	if r.OfferID, err = parseID("offer_id", raw.OfferID); err != nil {
		return err
	}
	r.Content = raw.Content
	return nil
}

// parseID returns nil for an absent, null or empty value
func parseID(field string, raw json.RawMessage) (*int64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil, nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		s = strings.TrimSpace(str)
		if s == "" {
			return nil, nil
		}
	}

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not an integer id", field, s)
	}
	return &id, nil
}

// ThreadMessage is a message as shown inside an opened conversation
type ThreadMessage struct {
	Message
	SenderName   string `json:"sender_name"`
	ReceiverName string `json:"receiver_name"`
	OfferTitle   string `json:"offer_title,omitempty"`
}

// ConversationSummary is one row of the conversation list.
// It is recomputed on every request and never stored.
type ConversationSummary struct {
	CounterpartID   int64     `json:"counterpart_id"`
	CounterpartName string    `json:"counterpart_name"`
	LastMessage     *Message  `json:"last_message"`
	MessageCount    int       `json:"message_count"`
	UnreadCount     int       `json:"unread_count"`
	RequestRef      *int64    `json:"request_ref,omitempty"`
	OfferTitle      string    `json:"offer_title,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// UnreadCountResponse is returned by the unread badge endpoint
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
