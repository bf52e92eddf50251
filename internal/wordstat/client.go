package wordstat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wordharvest/wordharvest/internal/model"
)

// DefaultEndpoint is the Wordstat top-requests endpoint.
const DefaultEndpoint = "https://searchapi.api.cloud.yandex.net/v2/wordstat/topRequests"

// DefaultTimeout is the per-request timeout.
const DefaultTimeout = 30 * time.Second

// maxResponseSize limits the response body size to prevent memory
// exhaustion from a misbehaving upstream.
const maxResponseSize = 10 * 1024 * 1024

// Client calls the Wordstat suggestion API.
//
// Design decision: The client performs exactly one HTTP attempt per
// Fetch call and returns a classified error because:
//  1. The scheduler owns the backoff policy and attempt budget.
//  2. A retry loop inside the client would spend rate-limiter slots the
//     scheduler never granted.
//  3. Classified errors keep the retry decision a simple switch.
type Client struct {
	// client is the underlying HTTP client.
	client *http.Client

	// endpoint is the API URL. Overridable for tests.
	endpoint string

	// apiKey authenticates requests via the Api-Key scheme.
	apiKey string

	// folderID is the cloud folder the quota is billed against.
	folderID string

	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the API endpoint. Used by tests to point the
// client at a local server.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithTimeout sets the per-request timeout on the underlying client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = timeout
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Wordstat API client.
func New(apiKey, folderID string, opts ...Option) *Client {
	c := &Client{
		client:   &http.Client{Timeout: DefaultTimeout},
		endpoint: DefaultEndpoint,
		apiKey:   apiKey,
		folderID: folderID,
		logger:   slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// request is the wire form of a top-requests call.
type request struct {
	Phrase  string   `json:"phrase"`
	Limit   int      `json:"limit,omitempty"`
	Regions []int64  `json:"regions,omitempty"`
	Devices []string `json:"devices,omitempty"`
}

// flexCount is a search volume that upstream serializes as either a
// JSON number or a quoted string depending on API version.
type flexCount int

// UnmarshalJSON accepts both representations. A value that parses as
// neither leaves the count negative so the caller can drop the entry.
func (f *flexCount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = -1
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		*f = -1
		return nil
	}
	*f = flexCount(n)
	return nil
}

// wireSuggestion is one (phrase, count) pair on the wire.
type wireSuggestion struct {
	Phrase string    `json:"phrase"`
	Count  flexCount `json:"count"`
}

// response is the wire form of a top-requests result.
type response struct {
	TopRequests       []wireSuggestion `json:"topRequests"`
	IncludingRequests []wireSuggestion `json:"includingRequests"`
	Message           string           `json:"message"`
}

// Fetch queries search volume suggestions for a phrase. It returns the
// primary results and the related associations, or a typed *APIError.
// Malformed entries (missing phrase, unparseable count) are dropped
// with a debug trace rather than failing the batch.
func (c *Client) Fetch(ctx context.Context, phrase string, limit int, regions []int64, device string) (*model.Response, error) {
	body, err := json.Marshal(request{
		Phrase:  phrase,
		Limit:   limit,
		Regions: regions,
		Devices: deviceList(device),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Api-Key "+c.apiKey)
	if c.folderID != "" {
		req.Header.Set("x-folder-id", c.folderID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, &APIError{Kind: KindTimeout, Message: err.Error()}
		}
		return nil, &APIError{Kind: KindNetwork, Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, StatusCode: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			Kind:       ClassifyStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw),
		}
	}

	var wire response
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, &APIError{
			Kind:       KindUnknown,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("failed to parse response: %v", err),
		}
	}

	return &model.Response{
		Results:      c.convert(phrase, wire.TopRequests),
		Associations: c.convert(phrase, wire.IncludingRequests),
		StatusCode:   resp.StatusCode,
	}, nil
}

// Validate performs a cheap credential check by querying a single
// well-known phrase. It returns nil when the credentials are accepted.
func (c *Client) Validate(ctx context.Context) error {
	_, err := c.Fetch(ctx, "тест", 1, nil, "")
	if err != nil && Fatal(err) {
		return err
	}
	// Quota or server trouble still proves the key was accepted.
	return nil
}

// convert maps wire suggestions to model suggestions, dropping entries
// with no phrase or an unparseable count.
func (c *Client) convert(source string, in []wireSuggestion) []model.Suggestion {
	out := make([]model.Suggestion, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s.Phrase) == "" || s.Count < 0 {
			c.logger.Debug("dropping malformed suggestion",
				"source_phrase", source,
				"phrase", s.Phrase,
				"count", int(s.Count),
			)
			continue
		}
		out = append(out, model.Suggestion{Phrase: s.Phrase, Count: int(s.Count)})
	}
	return out
}

// deviceList maps the configured device filter to the wire form.
// Empty or "all" means no filter.
func deviceList(device string) []string {
	switch strings.ToLower(strings.TrimSpace(device)) {
	case "", "all":
		return nil
	default:
		return []string{strings.ToLower(strings.TrimSpace(device))}
	}
}

// errorMessage extracts a human-readable message from an error body,
// falling back to the raw text when it is not the expected JSON shape.
func errorMessage(raw []byte) string {
	var wire response
	if err := json.Unmarshal(raw, &wire); err == nil && wire.Message != "" {
		return wire.Message
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

// isTimeout reports whether a transport error is a timeout.
func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
