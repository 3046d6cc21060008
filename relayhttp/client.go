// Package relayhttp implements the relay client for the question-answering
// backend: a text request forwards an extracted message, poll requests ask
// whether an asynchronous answer is ready.
package relayhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"pkt.systems/chatrelay/schema"
	"pkt.systems/pslog"
)

// SettingsSource yields the current backend endpoint settings. The source is
// owned by an external settings surface, so it is consulted on every request
// and never cached here.
type SettingsSource interface {
	RelaySettings() (url string, debug bool, err error)
}

// Config controls HTTP client behavior. Defaults match the reference
// deployment: answers can take minutes, so the overall timeout is generous.
type Config struct {
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
}

// Default timeouts for the backend transport.
const (
	DefaultConnectTimeout = 20 * time.Second
	DefaultRequestTimeout = 180 * time.Second
)

// Client issues text and poll queries to the answer backend.
type Client struct {
	httpc    *http.Client
	settings SettingsSource
	log      pslog.Logger
}

// NewClient constructs a relay client.
func NewClient(cfg Config, settings SettingsSource, logger pslog.Logger) (*Client, error) {
	if settings == nil {
		return nil, fmt.Errorf("settings source is required")
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	return &Client{
		httpc: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: &http.Transport{DialContext: dialer.DialContext},
		},
		settings: settings,
		log:      logger,
	}, nil
}

// SendText forwards an extracted message to the backend. The query id mirrors
// the group name, which is the correlation key the backend polls against.
// Failures are returned to the caller for logging; a failed send is never
// retried.
func (c *Client) SendText(ctx context.Context, group, sender, content string) error {
	req := schema.RelayRequest{
		QueryID:   group,
		GroupName: group,
		UserName:  sender,
		Query:     schema.Query{Type: schema.QueryText, Content: content},
	}
	_, _, err := c.post(ctx, req)
	return err
}

// Poll asks the backend for a ready answer and assembles the reply text.
// An empty reply means no answer yet.
func (c *Client) Poll(ctx context.Context, group, sender string) (schema.Reply, error) {
	req := schema.RelayRequest{
		QueryID:   group,
		GroupName: group,
		UserName:  sender,
		Query:     schema.Query{Type: schema.QueryPoll},
	}
	resp, debug, err := c.post(ctx, req)
	if err != nil {
		return schema.Reply{}, err
	}
	return RenderReply(resp, debug), nil
}

func (c *Client) post(ctx context.Context, req schema.RelayRequest) (schema.RelayResponse, bool, error) {
	url, debug, err := c.settings.RelaySettings()
	if err != nil {
		return schema.RelayResponse{}, false, fmt.Errorf("read relay settings: %w", err)
	}
	if strings.TrimSpace(url) == "" {
		return schema.RelayResponse{}, false, schema.ErrRelayURLUnset
	}
	body, err := json.Marshal(req)
	if err != nil {
		return schema.RelayResponse{}, false, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return schema.RelayResponse{}, false, err
	}
	httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")

	httpResp, err := c.httpc.Do(httpReq)
	if err != nil {
		return schema.RelayResponse{}, false, err
	}
	defer func() { _ = httpResp.Body.Close() }()
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, httpResp.Body)
		return schema.RelayResponse{}, false, fmt.Errorf("%w: %s", schema.ErrBackendStatus, httpResp.Status)
	}

	var resp schema.RelayResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return schema.RelayResponse{}, false, fmt.Errorf("decode backend response: %w", err)
	}
	c.log.Debug("backend response", "type", req.Query.Type, "items", len(resp.Data), "msg_code", resp.MsgCode)
	return resp, debug, nil
}
