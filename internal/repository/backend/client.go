package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go-jobboard-client/internal/domain"
	"go-jobboard-client/pkg/apperror"
	"go-jobboard-client/pkg/logger"
	"go-jobboard-client/pkg/metrics"
	"go-jobboard-client/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const maxBodyBytes = 4 << 20

// envelope mirrors the backend's standard JSON response
type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     json.RawMessage `json:"error,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Tokens     domain.TokenSource
	Metrics    *metrics.Metrics
	Validate   *validator.Validate
}

// Client talks to the job-board REST API. Every call is bounded by Timeout
// and carries the session token as a bearer credential.
type Client struct {
	baseURL  string
	timeout  time.Duration
	http     *http.Client
	tokens   domain.TokenSource
	metrics  *metrics.Metrics
	validate *validator.Validate
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Validate == nil {
		opts.Validate = validation.New()
	}
	return &Client{
		baseURL:  opts.BaseURL,
		timeout:  opts.Timeout,
		http:     opts.HTTPClient,
		tokens:   opts.Tokens,
		metrics:  opts.Metrics,
		validate: opts.Validate,
	}
}

// SetTokenSource wires the session after construction; the session manager
// itself depends on the client for login.
func (c *Client) SetTokenSource(tokens domain.TokenSource) {
	c.tokens = tokens
}

type call struct {
	method   string
	path     string
	endpoint string // metrics label, path template without ids
	query    url.Values
	body     any
	auth     bool
}

// failure picks the error kind for a failed call: reads are fetch errors,
// everything else is a mutation error.
func (cl call) failure(message string, err error) *apperror.AppError {
	if cl.method == http.MethodGet {
		return apperror.Fetch(message, err)
	}
	return apperror.Mutation(message, err)
}

// do executes the call and returns the envelope's raw data.
func (c *Client) do(ctx context.Context, cl call) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if cl.body != nil {
		raw, err := json.Marshal(cl.body)
		if err != nil {
			return nil, apperror.BadRequest(err.Error())
		}
		body = bytes.NewReader(raw)
	}

	target := c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return nil, cl.failure("Invalid request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	if cl.auth {
		token := ""
		if c.tokens != nil {
			token = c.tokens.Token()
		}
		if token == "" {
			return nil, apperror.NoSession()
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.BackendCall(cl.endpoint, "error", time.Since(start))
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, cl.failure("Request timed out", err)
		}
		if errors.Is(err, context.Canceled) {
			return nil, cl.failure("Request cancelled", err)
		}
		return nil, cl.failure("Backend unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.metrics.BackendCall(cl.endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))
	if err != nil {
		return nil, cl.failure("Could not read response", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, apperror.AuthExpired(env.Message)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := env.Message
		if decodeErr != nil || message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		logger.Log.Debug("backend call failed",
			"endpoint", cl.endpoint, "status", resp.StatusCode, "request_id", requestID)
		return nil, cl.failure(message, fmt.Errorf("status %d", resp.StatusCode))
	}
	if decodeErr != nil {
		logger.Log.Warn("malformed backend payload", "endpoint", cl.endpoint, "error", decodeErr)
		return nil, apperror.Validation("Malformed response from server", decodeErr)
	}
	return env.Data, nil
}

// decodeObject decodes data into out and validates it.
func (c *Client) decodeObject(endpoint string, data json.RawMessage, out any) error {
	if len(bytes.TrimSpace(data)) == 0 || string(bytes.TrimSpace(data)) == "null" {
		return apperror.Validation("Empty response from server", nil)
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.Log.Warn("malformed backend payload", "endpoint", endpoint, "error", err)
		return apperror.Validation("Malformed response from server", err)
	}
	if err := c.validate.Struct(out); err != nil {
		logger.Log.Warn("invalid backend payload", "endpoint", endpoint, "error", validation.Summary(err))
		return apperror.Validation("Invalid response from server: "+validation.Summary(err), err)
	}
	return nil
}

// decodeList requires an array-shaped value; null is an empty list.
func decodeList[T any](c *Client, endpoint string, data json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return []T{}, nil
	}
	if trimmed[0] != '[' {
		logger.Log.Warn("collection is not an array", "endpoint", endpoint)
		return nil, apperror.Validation("Malformed response from server: expected a list", nil)
	}
	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		logger.Log.Warn("malformed backend payload", "endpoint", endpoint, "error", err)
		return nil, apperror.Validation("Malformed response from server", err)
	}
	for i := range items {
		if err := c.validate.Struct(items[i]); err != nil {
			logger.Log.Warn("invalid backend item", "endpoint", endpoint, "index", i, "error", validation.Summary(err))
			return nil, apperror.Validation("Invalid item in server response: "+validation.Summary(err), err)
		}
	}
	return items, nil
}

type rawPage struct {
	Items      json.RawMessage `json:"items"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
}

func decodePage[T any](c *Client, endpoint string, data json.RawMessage, requested int) (*domain.Page[T], error) {
	var rp rawPage
	if err := json.Unmarshal(data, &rp); err != nil {
		logger.Log.Warn("malformed backend page", "endpoint", endpoint, "error", err)
		return nil, apperror.Validation("Malformed response from server", err)
	}
	items, err := decodeList[T](c, endpoint, rp.Items)
	if err != nil {
		return nil, err
	}
	page := &domain.Page[T]{Items: items, Page: rp.Page, TotalPages: rp.TotalPages}
	if page.Page < 1 {
		page.Page = requested
	}
	if page.TotalPages < page.Page {
		page.TotalPages = page.Page
	}
	return page, nil
}

func pageQuery(page domain.PageRequest) url.Values {
	q := url.Values{}
	if page.Page < 1 {
		page.Page = 1
	}
	q.Set("page", strconv.Itoa(page.Page))
	if page.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(page.PageSize))
	}
	return q
}

// Ping calls the backend's unauthenticated health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/v1/health",
		endpoint: "GET /v1/health",
	})
	return err
}
