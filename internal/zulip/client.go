package zulip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"basegraph.app/triage/core/config"
)

var (
	ErrMissingDestination = errors.New("stream and topic are required when defaults are not set")
	ErrNoQueue            = errors.New("queue registration returned no queue_id")
)

// APIError is a well-formed Zulip reply whose result is not "success".
type APIError struct {
	Op   string
	Code string
	Msg  string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("zulip %s: %s (%s)", e.Op, e.Msg, e.Code)
	}
	return fmt.Sprintf("zulip %s: %s", e.Op, e.Msg)
}

const requestTimeout = 30 * time.Second

type Client struct {
	http          *retryablehttp.Client
	baseURL       string
	email         string
	apiKey        string
	defaultStream string
	defaultTopic  string
}

func NewClient(cfg config.ZulipConfig) *Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = cleanhttp.DefaultPooledClient()
	// long-poll requests are bounded by their context instead
	rc.HTTPClient.Timeout = 0
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.Logger = slog.Default()

	return &Client{
		http:          rc,
		baseURL:       apiBase(cfg.Site),
		email:         cfg.Email,
		apiKey:        cfg.APIKey,
		defaultStream: cfg.DefaultStream,
		defaultTopic:  cfg.DefaultTopic,
	}
}

func (c *Client) BotEmail() string {
	return c.email
}

func (c *Client) Register(ctx context.Context, eventTypes []string, narrow Narrow) (Queue, error) {
	form := url.Values{}
	if len(eventTypes) > 0 {
		form.Set("event_types", mustJSON(eventTypes))
	}
	if len(narrow) > 0 {
		form.Set("narrow", mustJSON(narrow))
	}

	slog.InfoContext(ctx, "registering zulip event queue",
		"event_types", eventTypes,
		"narrowed", len(narrow) > 0)

	var resp registerResponse
	if _, err := c.do(ctx, http.MethodPost, "/register", form, requestTimeout, &resp); err != nil {
		return Queue{}, fmt.Errorf("register: %w", err)
	}
	if !resp.ok() {
		return Queue{}, &APIError{Op: "register", Code: resp.Code, Msg: resp.Msg}
	}
	if resp.QueueID == "" {
		return Queue{}, ErrNoQueue
	}
	return Queue{QueueID: resp.QueueID, LastEventID: resp.LastEventID}, nil
}

// GetEvents long-polls the queue for events newer than lastEventID. It blocks
// until the server returns or ctx ends.
func (c *Client) GetEvents(ctx context.Context, queueID string, lastEventID int64) ([]Event, error) {
	query := url.Values{}
	query.Set("queue_id", queueID)
	query.Set("last_event_id", strconv.FormatInt(lastEventID, 10))
	query.Set("dont_block", "false")

	var resp eventsResponse
	if _, err := c.do(ctx, http.MethodGet, "/events", query, 0, &resp); err != nil {
		return nil, fmt.Errorf("get events: %w", err)
	}
	if !resp.ok() {
		return nil, &APIError{Op: "get events", Code: resp.Code, Msg: resp.Msg}
	}
	return resp.Events, nil
}

// SendMessage returns the server reply even when its result is an error; the
// error return is reserved for transport failures.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (SendResult, error) {
	form := url.Values{}
	form.Set("type", req.Type)
	form.Set("content", req.Content)
	if req.Type == MessageTypeStream {
		if len(req.To) > 0 {
			form.Set("to", req.To[0])
		}
		form.Set("topic", req.Topic)
	} else {
		form.Set("to", mustJSON(req.To))
	}

	var resp sendResponse
	raw, err := c.do(ctx, http.MethodPost, "/messages", form, requestTimeout, &resp)
	if err != nil {
		return SendResult{}, fmt.Errorf("send message: %w", err)
	}

	result := SendResult{Result: resp.Result, Msg: resp.Msg, ID: resp.ID, Raw: raw}
	if !result.OK() {
		slog.ErrorContext(ctx, "zulip rejected message", "type", req.Type, "msg", resp.Msg, "code", resp.Code)
	}
	return result, nil
}

func (c *Client) GetMessages(ctx context.Context, params MessagesParams) ([]Message, error) {
	query := url.Values{}
	anchor := params.Anchor
	if anchor == "" {
		anchor = "newest"
	}
	query.Set("anchor", anchor)
	query.Set("num_before", strconv.Itoa(params.NumBefore))
	query.Set("num_after", strconv.Itoa(params.NumAfter))
	if len(params.Narrow) > 0 {
		query.Set("narrow", mustJSON(params.Narrow))
	}

	var resp messagesResponse
	if _, err := c.do(ctx, http.MethodGet, "/messages", query, requestTimeout, &resp); err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	if !resp.ok() {
		return nil, &APIError{Op: "get messages", Code: resp.Code, Msg: resp.Msg}
	}
	return resp.Messages, nil
}

// do sends a form (POST) or query (GET) request and decodes the JSON body
// into out. Zulip reports errors as JSON with 4xx codes, so those bodies are
// decoded too.
func (c *Client) do(ctx context.Context, method, path string, values url.Values, timeout time.Duration, out any) (json.RawMessage, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	endpoint := c.baseURL + path
	var body any
	if method == http.MethodGet {
		endpoint += "?" + values.Encode()
	} else {
		body = strings.NewReader(values.Encode())
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.SetBasicAuth(c.email, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("decoding response (status %d): %w", res.StatusCode, err)
	}
	return raw, nil
}

func apiBase(site string) string {
	site = strings.TrimRight(strings.TrimSpace(site), "/")
	if site != "" && !strings.Contains(site, "://") {
		site = "https://" + site
	}
	return strings.TrimSuffix(site, "/api/v1") + "/api/v1"
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("zulip: encoding %T: %v", v, err))
	}
	return string(data)
}
