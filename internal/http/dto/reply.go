package dto

import "encoding/json"

type ReplyRequest struct {
	Content string `json:"content" binding:"required"`
	Stream  string `json:"stream,omitempty"`
	Topic   string `json:"topic,omitempty"`
}

type ReplyResponse struct {
	Status string          `json:"status"`
	Zulip  json.RawMessage `json:"zulip"`
}
