package source

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/regpulse/regpulse/core/feed"
	"github.com/regpulse/regpulse/internal/contract"
	"github.com/regpulse/regpulse/schema"
)

// cacheBusterParam is the query parameter carrying the request timestamp.
const cacheBusterParam = "t"

// HTTPSource fetches the snapshot document from a URL.
type HTTPSource struct {
	url     string
	client  *http.Client
	timeout time.Duration
	clock   func() time.Time
}

// NewHTTPSource returns a source for the given feed URL. A zero timeout means the
// request is bounded only by the caller's context.
func NewHTTPSource(rawURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		url:     rawURL,
		client:  http.DefaultClient,
		timeout: timeout,
		clock:   time.Now,
	}
}

// Describe returns the feed URL.
func (s *HTTPSource) Describe() string { return s.url }

// Fetch issues GET <url>?t=<unix millis> and decodes the body.
func (s *HTTPSource) Fetch(ctx context.Context) (contract.Payload, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	target, err := s.requestURL()
	if err != nil {
		return contract.Payload{}, &feed.NetworkError{URL: s.url, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return contract.Payload{}, &feed.NetworkError{URL: s.url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return contract.Payload{}, &feed.NetworkError{URL: s.url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return contract.Payload{}, &feed.NetworkError{URL: s.url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return contract.Payload{}, &feed.NetworkError{URL: s.url, Err: err}
	}
	return DecodePayload(body)
}

// requestURL appends the cache-busting timestamp, keeping any existing query.
func (s *HTTPSource) requestURL() (string, error) {
	u, err := url.Parse(s.url)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(cacheBusterParam, strconv.FormatInt(s.clock().UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// document is the feed body: an events array and an optional timestamp.
type document struct {
	Events    json.RawMessage `json:"events"`
	UpdatedAt any             `json:"updatedAt"`
}

// DecodePayload parses a snapshot document. The events member must be present and
// be an array; individual events are decoded leniently.
func DecodePayload(body []byte) (contract.Payload, error) {
	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return contract.Payload{}, &feed.FormatError{Reason: "invalid JSON", Err: err}
	}
	raw := bytes.TrimSpace(doc.Events)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return contract.Payload{}, &feed.FormatError{Reason: "missing events"}
	}
	if raw[0] != '[' {
		return contract.Payload{}, &feed.FormatError{Reason: "events is not an array"}
	}

	var events []schema.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return contract.Payload{}, &feed.FormatError{Reason: "invalid events", Err: err}
	}
	if events == nil {
		events = []schema.Event{}
	}

	// An unreadable updatedAt falls back to the sync clock.
	payload := contract.Payload{Events: events}
	if stamp, ok := doc.UpdatedAt.(string); ok {
		if updated, err := time.Parse(time.RFC3339, stamp); err == nil {
			payload.UpdatedAt = updated
		}
	}
	return payload, nil
}
