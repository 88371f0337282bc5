// Package relay executes user-described HTTP requests against external
// endpoints and records the outcome. Receiving any HTTP status is a success;
// only transport-level failures (DNS, connection, TLS, timeout) take the
// failure branch, and both branches persist exactly one audit record.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"apiscope.dev/internal/history"
	"apiscope.dev/internal/obs"
)

// DefaultTimeout bounds every outbound call.
const DefaultTimeout = 15 * time.Second

// maxResponseBytes caps how much of a remote response is buffered.
const maxResponseBytes = 8 << 20

// Request is a validated outbound-request description. Headers is never nil
// by the time it reaches Execute; Body is the decoded JSON value or nil.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    any
}

// Result is what the caller gets back. StatusCode 0 with an error payload
// means the transport failed; everything else is the remote's own answer.
type Result struct {
	ID             int64
	StatusCode     int
	ResponseTimeMs int
	ResponseBody   json.RawMessage
}

// Executor is the execution pipeline: one outbound call, one audit write.
type Executor struct {
	client *http.Client
	store  history.Store
}

// NewExecutor builds an Executor persisting into store. A non-positive
// timeout falls back to DefaultTimeout.
func NewExecutor(store history.Store, timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{
		client: &http.Client{Timeout: timeout},
		store:  store,
	}
}

// Execute performs the outbound call and durably records the outcome before
// returning. It never returns an error for a remote failure; an error here
// means a local fault (the audit write failed).
//
// The caller's context is detached first: once an execution starts it runs
// to completion even if the inbound client disconnects.
func (e *Executor) Execute(ctx context.Context, ownerID int64, req Request) (Result, error) {
	ctx = context.WithoutCancel(ctx)

	start := time.Now()
	statusCode, responseBody, transportErr := e.roundTrip(ctx, req)
	elapsed := time.Since(start)

	outcome := "response"
	if transportErr != nil {
		outcome = "transport_error"
		statusCode = 0
		responseBody = errorPayload(transportErr)
	}
	obs.ObserveOutbound(req.Method, outcome, elapsed)

	rec := &history.Record{
		UserID:         ownerID,
		Method:         req.Method,
		URL:            req.URL,
		Headers:        EncodeHeaders(req.Headers),
		Body:           EncodeBody(req.Body),
		StatusCode:     statusCode,
		ResponseTimeMs: int(elapsed.Milliseconds()),
	}
	if err := e.store.Insert(ctx, rec); err != nil {
		return Result{}, fmt.Errorf("save request record: %w", err)
	}

	return Result{
		ID:             rec.ID,
		StatusCode:     statusCode,
		ResponseTimeMs: rec.ResponseTimeMs,
		ResponseBody:   responseBody,
	}, nil
}

func (e *Executor) roundTrip(ctx context.Context, req Request) (int, json.RawMessage, error) {
	out, err := http.NewRequestWithContext(ctx, req.Method, req.URL, outboundBody(req))
	if err != nil {
		return 0, nil, err
	}
	for k, v := range req.Headers {
		out.Header.Set(k, v)
	}
	if out.Body != nil && out.Header.Get("Content-Type") == "" {
		out.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(out)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, responsePayload(data), nil
}

// outboundBody serializes the user-supplied body. GET and DELETE never carry
// one, even when supplied; the stored record keeps it regardless.
func outboundBody(req Request) io.Reader {
	if req.Body == nil {
		return nil
	}
	switch req.Method {
	case http.MethodGet, http.MethodDelete:
		return nil
	}
	data, err := json.Marshal(req.Body)
	if err != nil {
		return nil
	}
	return bytes.NewReader(data)
}

// responsePayload keeps JSON responses as-is and wraps everything else in a
// JSON string so the result is always a JSON value.
func responsePayload(data []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return json.RawMessage(`null`)
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	wrapped, err := json.Marshal(string(data))
	if err != nil {
		return json.RawMessage(`null`)
	}
	return wrapped
}

func errorPayload(err error) json.RawMessage {
	data, mErr := json.Marshal(map[string]string{"error": err.Error()})
	if mErr != nil {
		return json.RawMessage(`{"error":"transport failure"}`)
	}
	return data
}
