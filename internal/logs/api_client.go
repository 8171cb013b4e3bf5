package logs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"slotwatch/internal/api"
)

const (
	defaultLogsPath  = "/api/v1/logs"
	maxResponseBytes = 32 << 20
	maxErrorSnippet  = 512
)

// Client queries the remote log endpoint.
type Client struct {
	base      *url.URL
	logsPath  string
	token     string
	userAgent string
	http      *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. Deadlines belong on the
// request context, so the client itself should not set Timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogsPath overrides the endpoint path prefix.
func WithLogsPath(path string) Option {
	return func(c *Client) {
		path = strings.TrimRight(strings.TrimSpace(path), "/")
		if path == "" {
			return
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		c.logsPath = path
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = strings.TrimSpace(ua) }
}

// NewClient returns nil without error when baseURL is blank so callers can
// treat an unconfigured endpoint as unavailable.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, nil
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	base.Path = strings.TrimRight(base.Path, "/")
	base.RawPath = ""
	base.RawQuery = ""
	base.Fragment = ""

	c := &Client{
		base:      base,
		logsPath:  defaultLogsPath,
		userAgent: "slotwatch",
		http:      &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch retrieves at most q.Lines entries for one stream. A non-empty q.Since
// asks the server for entries at or after that timestamp. Metadata is passed
// through when present; callers that need it check for it.
func (c *Client) Fetch(ctx context.Context, q api.LogQuery) (api.LogsResponse, error) {
	const op = "fetch logs"
	if c == nil {
		return api.LogsResponse{}, &FetchError{Kind: ErrTransport, Operation: op, StreamID: q.StreamID, Err: ErrAPIUnavailable}
	}
	streamID := strings.TrimSpace(q.StreamID)
	if streamID == "" {
		return api.LogsResponse{}, errors.New("fetch logs: stream id is required")
	}

	values := url.Values{}
	if q.Lines > 0 {
		values.Set("lines", strconv.Itoa(q.Lines))
	}
	if q.Level != "" {
		values.Set("level", string(q.Level))
	}
	if strings.TrimSpace(q.Since) != "" {
		values.Set("since", q.Since)
	}

	endpoint := c.endpoint(streamID, values)
	var payload api.LogsResponse
	if err := c.getJSON(ctx, op, streamID, endpoint, &payload); err != nil {
		return api.LogsResponse{}, err
	}

	for i := range payload.Logs {
		payload.Logs[i] = payload.Logs[i].Trimmed()
		if payload.Logs[i].Timestamp == "" {
			return api.LogsResponse{}, &FetchError{Kind: ErrMalformedResponse, Operation: op, StreamID: streamID, Err: fmt.Errorf("entry %d has no timestamp", i)}
		}
	}
	if payload.Logs == nil {
		payload.Logs = []api.LogEntry{}
	}
	return payload, nil
}

// Streams lists the metadata of every stream the endpoint knows about.
func (c *Client) Streams(ctx context.Context) (api.StreamsResponse, error) {
	const op = "list streams"
	if c == nil {
		return api.StreamsResponse{}, &FetchError{Kind: ErrTransport, Operation: op, Err: ErrAPIUnavailable}
	}
	var payload api.StreamsResponse
	if err := c.getJSON(ctx, op, "", c.endpoint("", nil), &payload); err != nil {
		return api.StreamsResponse{}, err
	}
	if payload.Streams == nil {
		payload.Streams = []api.StreamMetadata{}
	}
	return payload, nil
}

func (c *Client) endpoint(streamID string, values url.Values) *url.URL {
	endpoint := *c.base
	endpoint.Path = c.base.Path + c.logsPath
	endpoint.RawPath = ""
	if streamID != "" {
		endpoint.RawPath = endpoint.Path + "/" + url.PathEscape(streamID)
		endpoint.Path += "/" + streamID
	}
	if len(values) > 0 {
		endpoint.RawQuery = values.Encode()
	}
	return &endpoint
}

func (c *Client) getJSON(ctx context.Context, op, streamID string, endpoint *url.URL, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return &FetchError{Kind: ErrTransport, Operation: op, StreamID: streamID, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &FetchError{Kind: classifyRequestError(err), Operation: op, StreamID: streamID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorSnippet))
		var cause error
		if text := strings.TrimSpace(string(snippet)); text != "" {
			cause = errors.New(text)
		}
		return &FetchError{Kind: ErrTransport, Operation: op, StreamID: streamID, Status: resp.StatusCode, Err: cause}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(dst); err != nil {
		kind := ErrMalformedResponse
		if ctxErr := ctx.Err(); ctxErr != nil {
			kind = classifyRequestError(ctxErr)
		}
		return &FetchError{Kind: kind, Operation: op, StreamID: streamID, Err: err}
	}
	return nil
}
