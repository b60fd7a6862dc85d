package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/alexanderramin/fieldbridge/internal/domain"
)

// APIPrefix is the path prefix every office API route lives under.
const APIPrefix = "/api/v1"

// Request headers understood by the office API.
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderUserID         = "X-User-ID"
	HeaderUserName       = "X-User-Name"
	HeaderUserRole       = "X-User-Role"
)

// ClientConfig holds the settings for the office API client.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	// BreakerFailures consecutive failures open the breaker for
	// BreakerOpenTimeout.
	BreakerFailures    int
	BreakerOpenTimeout time.Duration
	// Actor is sent with every call unless a call names its own.
	Actor domain.Actor
}

// Client talks to the office API over HTTP. Reads are retried; writes are
// sent once and carry an idempotency key where the API dedupes on one.
type Client struct {
	cfg      ClientConfig
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker
	observer Observer
}

// NewClient creates a Client for cfg.BaseURL.
func NewClient(cfg ClientConfig, observer Observer) *Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BreakerFailures <= 0 {
		cfg.BreakerFailures = 4
	}
	if cfg.BreakerOpenTimeout <= 0 {
		cfg.BreakerOpenTimeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "office-api",
			MaxRequests: 1,
			Timeout:     cfg.BreakerOpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(cfg.BreakerFailures)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Info("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			},
			IsSuccessful: breakerSuccess,
		}),
		observer: observer,
	}
}

// breakerSuccess keeps caller-side failures from tripping the breaker: a
// 4xx or an abandoned request says nothing about the API's health.
func breakerSuccess(err error) bool {
	if err == nil || IsCancellation(err) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status < http.StatusInternalServerError
	}
	return false
}

type call struct {
	method string
	// route is the path template reported to the observer.
	route          string
	path           string
	query          url.Values
	body           any
	idempotencyKey string
	actor          *domain.Actor
	out            any
}

func (c *Client) do(ctx context.Context, req call) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	safe := req.method == http.MethodGet
	attempts := 1
	if safe {
		attempts += c.cfg.MaxRetries
	}

	var status int
	var lastErr error
	tries := 0
	for i := 0; i < attempts; i++ {
		tries++
		_, err := c.breaker.Execute(func() (interface{}, error) {
			var err error
			status, err = c.roundTrip(ctx, req)
			return nil, err
		})
		if err == nil {
			c.observer.OnCallComplete(CallEvent{
				Method: req.method, Route: req.route, Status: status,
				Attempts: tries, LatencyMs: latencySince(start), Success: true,
			})
			return nil
		}
		lastErr = err

		// Don't retry once the caller is gone or the API has answered.
		if ctx.Err() != nil || !retryable(err) {
			break
		}
		if !sleepCtx(ctx, time.Duration(i+1)*100*time.Millisecond) {
			break
		}
	}

	err := c.classify(ctx, req, lastErr)
	c.observer.OnCallComplete(CallEvent{
		Method: req.method, Route: req.route, Status: status,
		Attempts: tries, LatencyMs: latencySince(start), Success: false,
		ErrorCode: errorCode(err),
	})
	return err
}

func (c *Client) roundTrip(ctx context.Context, req call) (int, error) {
	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return 0, fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	target := c.cfg.BaseURL + APIPrefix + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.idempotencyKey != "" {
		httpReq.Header.Set(HeaderIdempotencyKey, req.idempotencyKey)
	}
	actor := c.cfg.Actor
	if req.actor != nil {
		actor = *req.actor
	}
	if actor.UserID != "" {
		httpReq.Header.Set(HeaderUserID, actor.UserID)
		httpReq.Header.Set(HeaderUserName, actor.Name)
		httpReq.Header.Set(HeaderUserRole, string(actor.Role))
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return httpResp.StatusCode, fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		apiErr := &APIError{Status: httpResp.StatusCode}
		var e ErrorJSON
		if json.Unmarshal(respBody, &e) == nil {
			apiErr.Code = e.Code
			apiErr.Detail = e.Detail
		} else {
			apiErr.Detail = strings.TrimSpace(string(respBody))
		}
		return httpResp.StatusCode, apiErr
	}

	if req.out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, req.out); err != nil {
			return httpResp.StatusCode, fmt.Errorf("decoding response: %w", err)
		}
	}
	return httpResp.StatusCode, nil
}

// classify maps a transport failure onto the shared error taxonomy. A write
// that may have reached the API reports ErrOutcomeUnknown alongside the cause.
func (c *Client) classify(ctx context.Context, req call, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", req.method, req.route, ErrCanceled)
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	cause := ErrNetwork
	if ctx.Err() != nil || isTimeout(err) {
		cause = ErrTimeout
	}
	if req.method != http.MethodGet && !isDialError(err) {
		return fmt.Errorf("%s %s: %w: %w", req.method, req.route, ErrOutcomeUnknown, cause)
	}
	return fmt.Errorf("%s %s: %w: %v", req.method, req.route, cause, err)
}

func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= http.StatusInternalServerError
	}
	if errors.Is(err, gobreaker.ErrOpenState) {
		return false
	}
	return !IsCancellation(err)
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isDialError reports whether the request failed before any byte was sent.
func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
