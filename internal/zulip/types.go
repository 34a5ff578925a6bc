package zulip

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	MessageTypeStream  = "stream"
	MessageTypePrivate = "private"
)

// Message is an inbound Zulip message as delivered by the events and
// messages endpoints.
type Message struct {
	ID               int64     `json:"id"`
	Type             string    `json:"type"`
	SenderEmail      string    `json:"sender_email"`
	SenderFullName   string    `json:"sender_full_name"`
	StreamID         *int64    `json:"stream_id,omitempty"`
	DisplayRecipient Recipient `json:"display_recipient"`
	Subject          string    `json:"subject"`
	Content          string    `json:"content"`
	Flags            []string  `json:"flags,omitempty"`
}

func (m Message) IsPrivate() bool {
	return m.Type == MessageTypePrivate
}

func (m Message) HasFlag(flag string) bool {
	for _, f := range m.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Recipient is either a stream name (stream messages) or the list of users
// in a private conversation.
type Recipient struct {
	Stream string
	Users  []User
	isList bool
}

type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

func StreamRecipient(name string) Recipient {
	return Recipient{Stream: name}
}

func UsersRecipient(users ...User) Recipient {
	return Recipient{Users: users, isList: true}
}

// IsList reports whether the recipient came as a list of users.
func (r Recipient) IsList() bool {
	return r.isList
}

func (r *Recipient) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*r = Recipient{}
		return nil
	case data[0] == '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*r = StreamRecipient(name)
		return nil
	case data[0] == '[':
		var users []User
		if err := json.Unmarshal(data, &users); err != nil {
			return err
		}
		*r = UsersRecipient(users...)
		return nil
	default:
		return fmt.Errorf("display_recipient: unexpected json %s", data)
	}
}

func (r Recipient) MarshalJSON() ([]byte, error) {
	if r.isList {
		return json.Marshal(r.Users)
	}
	return json.Marshal(r.Stream)
}

type Event struct {
	ID      int64    `json:"id"`
	Type    string   `json:"type"`
	Message *Message `json:"message,omitempty"`
	Flags   []string `json:"flags,omitempty"`
}

// Queue identifies a registered event queue and the cursor into it.
type Queue struct {
	QueueID     string
	LastEventID int64
}

type Narrow [][2]string

type MessagesParams struct {
	Anchor    string
	NumBefore int
	NumAfter  int
	Narrow    Narrow
}

type SendMessageRequest struct {
	Type    string
	To      []string // stream name, or recipient emails for private messages
	Topic   string
	Content string
}

// SendResult carries the raw server reply alongside the decoded fields.
type SendResult struct {
	Result string
	Msg    string
	ID     int64
	Raw    json.RawMessage
}

func (r SendResult) OK() bool {
	return r.Result == "success"
}

type apiResponse struct {
	Result string `json:"result"`
	Msg    string `json:"msg"`
	Code   string `json:"code"`
}

func (r apiResponse) ok() bool {
	return r.Result == "success"
}

type registerResponse struct {
	apiResponse
	QueueID     string `json:"queue_id"`
	LastEventID int64  `json:"last_event_id"`
}

type eventsResponse struct {
	apiResponse
	Events []Event `json:"events"`
}

type messagesResponse struct {
	apiResponse
	Messages []Message `json:"messages"`
}

type sendResponse struct {
	apiResponse
	ID int64 `json:"id"`
}
