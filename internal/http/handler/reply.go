package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/triage/internal/http/dto"
	"basegraph.app/triage/internal/zulip"
)

type StreamSender interface {
	SendStreamMessage(ctx context.Context, content, stream, topic string) (zulip.SendResult, error)
}

type ReplyHandler struct {
	sender StreamSender
}

func NewReplyHandler(sender StreamSender) *ReplyHandler {
	return &ReplyHandler{sender: sender}
}

// Send posts content to a stream topic, or to the configured defaults. The
// chat server's reply is passed through untouched, including rejections.
func (h *ReplyHandler) Send(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid reply request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.sender.SendStreamMessage(ctx, req.Content, req.Stream, req.Topic)
	if err != nil {
		if errors.Is(err, zulip.ErrMissingDestination) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.ErrorContext(ctx, "failed to send reply", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to reach chat server"})
		return
	}

	raw := result.Raw
	if len(raw) == 0 {
		raw = json.RawMessage(`{}`)
	}
	c.JSON(http.StatusOK, dto.ReplyResponse{Status: "sent", Zulip: raw})
}
