// Package client provides the HTTP client integration for the offline
// queue: mutating requests that fail at the transport level are handed to
// the queue instead of surfacing a hard failure, and replayed requests go
// out through the same dispatch path.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/clinikore/offlinesync/internal/errors"
	"github.com/clinikore/offlinesync/internal/models"
	"github.com/clinikore/offlinesync/internal/queue"
	"github.com/clinikore/offlinesync/internal/uuid"
)

// IdempotencyHeader carries the client-generated key that lets the server
// deduplicate at-least-once replays.
const IdempotencyHeader = "Idempotency-Key"

// Response is the settled result of a delivered request.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client issues requests against the upstream API and delegates
// undeliverable mutations to the offline queue.
type Client struct {
	http    *http.Client
	baseURL string
	online  queue.OnlineFunc
	queue   *queue.OfflineQueue
}

// New creates a Client. httpClient may be nil, in which case a client with
// a 30 second timeout is used.
func New(httpClient *http.Client, baseURL string, online queue.OnlineFunc) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		online:  online,
	}
}

// AttachQueue wires the offline queue. The queue's dispatcher is this
// client, so the two are constructed first and connected afterwards.
func (c *Client) AttachQueue(q *queue.OfflineQueue) {
	c.queue = q
}

// Do issues a request. Mutating requests that fail because the network is
// unreachable are enqueued for later replay; the returned error then carries
// the QUEUED_FOR_LATER code so callers can show "saved for later" rather
// than "failed". All other failures propagate unchanged, and GET/HEAD/
// OPTIONS are never queued.
func (c *Client) Do(ctx context.Context, method, path string, body json.RawMessage, headers map[string]string) (*Response, error) {
	method = strings.ToUpper(method)

	if models.IsMutating(method) {
		headers = withIdempotencyKey(headers)
	}

	resp, err := c.send(ctx, method, path, body, headers)
	if err == nil {
		return resp, nil
	}

	if c.queue != nil && models.IsMutating(method) && c.shouldQueue(err) {
		queued := c.queue.Enqueue(queue.RequestDescriptor{
			URL:     path,
			Method:  method,
			Data:    body,
			Headers: headers,
		})
		if queued != nil {
			return nil, apperrors.Wrap(apperrors.ErrQueuedForLater,
				"network unavailable, request queued for later delivery", err)
		}
	}

	return resp, err
}

// shouldQueue reports whether a failure is a genuine network-unreachability
// failure: no HTTP response received, or the connectivity source already
// reports offline.
func (c *Client) shouldQueue(err error) bool {
	if c.online != nil && !c.online() {
		return true
	}
	return queue.IsNetworkError(err)
}

// Dispatch performs one replay attempt for a queued request. It is the
// queue's DispatchFunc: the headers frozen at enqueue time, idempotency key
// included, go out unchanged.
func (c *Client) Dispatch(ctx context.Context, req *models.QueuedRequest) error {
	_, err := c.send(ctx, req.Method, req.URL, req.Data, req.Headers)
	return err
}

// send performs the raw HTTP round-trip. Transport failures return a
// *queue.RequestError with Status 0; HTTP error statuses return the
// response together with a *queue.RequestError carrying the status.
func (c *Client) send(ctx context.Context, method, path string, body json.RawMessage, headers map[string]string) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), reader)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalid, "failed to build request", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, &queue.RequestError{Status: 0, Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &queue.RequestError{Status: 0, Err: err}
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
	}

	if httpResp.StatusCode >= 400 {
		return resp, &queue.RequestError{Status: httpResp.StatusCode}
	}

	return resp, nil
}

// resolve joins relative paths onto the configured base URL. Absolute URLs
// pass through untouched.
func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// withIdempotencyKey copies the header map and adds a fresh idempotency key
// when none is present. The caller's map is never mutated.
func withIdempotencyKey(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		out[k] = v
	}
	if _, ok := out[IdempotencyHeader]; !ok {
		out[IdempotencyHeader] = uuid.New()
	}
	return out
}
