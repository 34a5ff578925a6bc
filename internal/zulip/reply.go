package zulip

import (
	"context"
	"log/slog"
	"strconv"
)

// SendReply answers in the same conversation as msg: the same stream and
// topic, or the same private group minus the bot itself.
func (c *Client) SendReply(ctx context.Context, msg Message, content string) (SendResult, error) {
	return c.SendMessage(ctx, ReplyRequest(msg, c.email, content))
}

// ReplyRequest builds the send request that answers msg.
func ReplyRequest(msg Message, botEmail, content string) SendMessageRequest {
	req := SendMessageRequest{Type: msg.Type, Content: content}

	if msg.Type == MessageTypeStream {
		to := msg.DisplayRecipient.Stream
		if msg.DisplayRecipient.IsList() && msg.StreamID != nil {
			to = strconv.FormatInt(*msg.StreamID, 10)
		}
		req.To = []string{to}
		req.Topic = msg.Subject
		return req
	}

	var emails []string
	if msg.DisplayRecipient.IsList() {
		for _, u := range msg.DisplayRecipient.Users {
			if u.Email != botEmail {
				emails = append(emails, u.Email)
			}
		}
	}
	if len(emails) == 0 {
		emails = []string{msg.SenderEmail}
	}
	req.To = emails
	return req
}

// SendStreamMessage posts to the given stream and topic, falling back to the
// configured defaults.
func (c *Client) SendStreamMessage(ctx context.Context, content, stream, topic string) (SendResult, error) {
	if stream == "" {
		stream = c.defaultStream
	}
	if topic == "" {
		topic = c.defaultTopic
	}
	if stream == "" || topic == "" {
		return SendResult{}, ErrMissingDestination
	}

	slog.InfoContext(ctx, "sending stream message", "stream", stream, "topic", topic)
	return c.SendMessage(ctx, SendMessageRequest{
		Type:    MessageTypeStream,
		To:      []string{stream},
		Topic:   topic,
		Content: content,
	})
}

// FetchThreadMessages returns up to numBefore messages of a stream topic,
// oldest first, ending at the newest one.
func (c *Client) FetchThreadMessages(ctx context.Context, stream, topic string, numBefore int) ([]Message, error) {
	return c.GetMessages(ctx, MessagesParams{
		Anchor:    "newest",
		NumBefore: max(1, numBefore),
		NumAfter:  0,
		Narrow:    Narrow{{"stream", stream}, {"topic", topic}},
	})
}
