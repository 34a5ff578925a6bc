package service

import (
	"context"
	"log/slog"

	"basegraph.app/triage/internal/intake"
	"basegraph.app/triage/internal/model"
	"basegraph.app/triage/internal/zulip"
)

const (
	noSummaryReply = "No prior triage summary found for this thread."
	noRerunReply   = "I couldn't find prior triage context to rerun. Please provide details about the issue first."
	rerunAckReply  = "Re-running automated triage; will reply with updates shortly."
)

func (h *MessageHandler) handleCommand(
	ctx context.Context,
	command intake.Command,
	remainder string,
	msg zulip.Message,
	channel, topic *string,
	threadLines []string,
) {
	slog.InfoContext(ctx, "handling command", "command", command)
	rec, found := h.incidents.Find(channel, topic)

	switch command {
	case intake.CommandStatus:
		if found {
			if summary, ok := rec.LastSummary(); ok {
				h.reply(ctx, msg, "Latest triage summary:\n\n"+summary)
				return
			}
		}
		h.reply(ctx, msg, noSummaryReply)

	case intake.CommandRerun:
		var req model.TriageRequest
		switch {
		case remainder != "":
			req = model.TriageRequest{
				SenderEmail:   msg.SenderEmail,
				Channel:       channel,
				Topic:         topic,
				IncidentText:  remainder,
				ThreadContext: threadLines,
			}
		case found:
			last, ok := rec.LastRequest()
			if !ok {
				h.reply(ctx, msg, noRerunReply)
				return
			}
			req = last
		default:
			h.reply(ctx, msg, noRerunReply)
			return
		}

		target := h.incidents.GetOrCreate(req)
		h.reply(ctx, msg, rerunAckReply)
		h.submitTriage(ctx, msg, req, target)

	case intake.CommandProduct:
		h.reply(ctx, msg, h.product.Answer(ctx, remainder))
	}
}
