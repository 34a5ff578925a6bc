package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"basegraph.app/triage/common/logger"
	"basegraph.app/triage/internal/incident"
	"basegraph.app/triage/internal/intake"
	"basegraph.app/triage/internal/model"
	"basegraph.app/triage/internal/worker"
	"basegraph.app/triage/internal/zulip"
)

const (
	pingReply        = "triage bot is online :rocket:"
	queueFullReply   = "The triage queue is full right now; please try again in a few minutes."
	unavailableReply = "Automated triage is unavailable right now (the bot may be restarting); please try again shortly."
)

type Replier interface {
	SendReply(ctx context.Context, msg zulip.Message, content string) (zulip.SendResult, error)
}

type ThreadResolver interface {
	Resolve(ctx context.Context, channel, topic string) []string
}

type Triager interface {
	Run(ctx context.Context, req model.TriageRequest) (string, error)
}

type Submitter interface {
	Submit(ctx context.Context, task worker.Task) error
}

type ProductAnswerer interface {
	Answer(ctx context.Context, query string) string
}

// MessageHandler turns one inbound chat message into at most one immediate
// reply and at most one queued triage run.
type MessageHandler struct {
	identity  intake.Identity
	replier   Replier
	threads   ThreadResolver
	incidents *incident.Store
	triage    Triager
	pool      Submitter
	product   ProductAnswerer
}

func NewMessageHandler(
	identity intake.Identity,
	replier Replier,
	threads ThreadResolver,
	incidents *incident.Store,
	triage Triager,
	pool Submitter,
	product ProductAnswerer,
) *MessageHandler {
	return &MessageHandler{
		identity:  identity,
		replier:   replier,
		threads:   threads,
		incidents: incidents,
		triage:    triage,
		pool:      pool,
		product:   product,
	}
}

func (h *MessageHandler) Handle(ctx context.Context, msg zulip.Message) {
	if h.identity.IsSelf(msg.SenderEmail) {
		return
	}

	channel, topic := messageThread(msg)
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		MessageID: &msg.ID,
		Channel:   channel,
		Topic:     topic,
		Component: "triage.service.handler",
	})

	plain := intake.PlainText(msg.Content)
	slog.InfoContext(ctx, "incoming message",
		"sender", msg.SenderEmail,
		"flags", msg.Flags,
		"text", logger.Truncate(plain, 200))

	if !h.identity.ShouldRespond(msg, plain) {
		return
	}
	slog.InfoContext(ctx, "responding to message", "sender", msg.SenderEmail)

	command, remainder := intake.ExtractCommand(plain)
	threadLines := h.threadContext(ctx, msg, plain)

	if strings.ToLower(strings.TrimSpace(plain)) == "ping" {
		h.reply(ctx, msg, pingReply)
		return
	}

	if command != intake.CommandNone {
		h.handleCommand(ctx, command, remainder, msg, channel, topic, threadLines)
		return
	}

	req := model.TriageRequest{
		SenderEmail:   msg.SenderEmail,
		Channel:       channel,
		Topic:         topic,
		IncidentText:  plain,
		ThreadContext: threadLines,
	}
	h.submitTriage(ctx, msg, req, h.incidents.GetOrCreate(req))
}

func (h *MessageHandler) threadContext(ctx context.Context, msg zulip.Message, plain string) []string {
	var ref *intake.ThreadRef
	if r, ok := intake.ExtractThreadReference(msg.Content, plain); ok {
		ref = &r
	}
	target, ok := intake.FetchTarget(msg, ref)
	if !ok {
		return nil
	}

	lines := h.threads.Resolve(ctx, target.Channel, target.Topic)
	slog.InfoContext(ctx, "thread context resolved",
		"fetch_channel", target.Channel,
		"fetch_topic", target.Topic,
		"lines", len(lines))
	return lines
}

func (h *MessageHandler) submitTriage(ctx context.Context, msg zulip.Message, req model.TriageRequest, rec *incident.Record) bool {
	task := worker.Task{
		Name: "triage",
		Fields: logger.LogFields{
			MessageID:   &msg.ID,
			IncidentKey: &rec.Key,
			Channel:     req.Channel,
			Topic:       req.Topic,
		},
		Run: func(ctx context.Context) error {
			h.runTriageAndReply(ctx, msg, req, rec)
			return nil
		},
	}

	err := h.pool.Submit(ctx, task)
	if err == nil {
		slog.InfoContext(ctx, "triage queued", "incident_key", rec.Key)
		return true
	}

	slog.ErrorContext(ctx, "failed to queue triage", "error", err, "incident_key", rec.Key)
	if errors.Is(err, worker.ErrQueueFull) {
		h.reply(ctx, msg, queueFullReply)
		return false
	}
	// The bot may be shutting down; the reply must not inherit that cancellation.
	h.reply(context.WithoutCancel(ctx), msg, unavailableReply)
	return false
}

// runTriageAndReply always records and sends something, even when the
// pipeline fails.
func (h *MessageHandler) runTriageAndReply(ctx context.Context, msg zulip.Message, req model.TriageRequest, rec *incident.Record) {
	summary, err := h.triage.Run(ctx, req)
	if err != nil {
		slog.ErrorContext(ctx, "triage pipeline failed", "error", err)
		summary = "Unable to run automated analysis: " + err.Error()
	}

	rec.Update(summary, req)
	if h.reply(ctx, msg, summary) {
		slog.InfoContext(ctx, "triage reply sent", "to", req.SenderEmail)
	}
}

func (h *MessageHandler) reply(ctx context.Context, msg zulip.Message, content string) bool {
	res, err := h.replier.SendReply(ctx, msg, content)
	if err != nil {
		slog.ErrorContext(ctx, "failed to send reply", "error", err)
		return false
	}
	if !res.OK() {
		slog.ErrorContext(ctx, "chat server rejected reply", "result", res.Result, "msg", res.Msg)
		return false
	}
	return true
}

// messageThread names the incident a message belongs to. Private messages
// have no channel, and only string recipients count as channel names.
func messageThread(msg zulip.Message) (channel, topic *string) {
	if !msg.DisplayRecipient.IsList() && msg.DisplayRecipient.Stream != "" {
		channel = logger.Ptr(msg.DisplayRecipient.Stream)
	}
	if msg.Subject != "" {
		topic = logger.Ptr(msg.Subject)
	}
	return channel, topic
}
