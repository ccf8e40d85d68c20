// Package source fetches tasks and assistant answers from the task API and
// falls back to local data when the API cannot be reached.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/sadopc/campustasks/internal/assistant"
	"github.com/sadopc/campustasks/internal/task"
)

var (
	// ErrNoBackend is reported when no API base URL is configured.
	ErrNoBackend = errors.New("no backend configured")
	// ErrStatus wraps non-2xx responses.
	ErrStatus = errors.New("unexpected status")
	// ErrCircuitOpen is returned while the breaker rejects calls.
	ErrCircuitOpen = errors.New("backend circuit open")
)

// ClientConfig configures the API client.
type ClientConfig struct {
	BaseURL string

	// Timeout bounds each request. Default: 5s.
	Timeout time.Duration

	// BreakerFailures is the number of consecutive failures that open the
	// circuit. Default: 3.
	BreakerFailures uint32

	// BreakerCooldown is how long the circuit stays open. Default: 30s.
	BreakerCooldown time.Duration

	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to the task API. All calls share one circuit breaker.
type Client struct {
	base    *url.URL
	timeout time.Duration
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	log     *zap.Logger
}

// NewClient returns ErrNoBackend when cfg.BaseURL is empty.
func NewClient(cfg ClientConfig) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, ErrNoBackend
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", raw)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 3
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("source")

	c := &Client{
		base:    base,
		timeout: cfg.Timeout,
		http:    cfg.HTTPClient,
		log:     log,
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        base.Host,
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		// A 404 means the API is up and answered; only transport errors and
		// server faults count against it.
		IsSuccessful: func(err error) bool {
			var se *StatusError
			return err == nil || (errors.As(err, &se) && se.Code < 500)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info("circuit breaker state changed",
				zap.String("backend", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return c, nil
}

// StatusError carries the HTTP status of a failed call.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %d: %s", ErrStatus, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrStatus }

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	data, err := c.breaker.Execute(func() ([]byte, error) {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		var rd io.Reader
		if body != nil {
			buf, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("encode request: %w", err)
			}
			rd = bytes.NewReader(buf)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, rd)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		payload, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
		}
		return payload, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCircuitOpen
	}
	return data, err
}

type listEnvelope struct {
	Success bool        `json:"success"`
	Data    []task.Task `json:"data"`
	Total   int         `json:"total"`
	Message string      `json:"message"`
}

// Tasks fetches the full task list.
func (c *Client) Tasks(ctx context.Context) ([]task.Task, error) {
	data, err := c.do(ctx, http.MethodGet, "/tasks", nil)
	if err != nil {
		return nil, err
	}
	var env listEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return env.Data, nil
}

// Task fetches one task by id.
func (c *Client) Task(ctx context.Context, id string) (*task.Task, error) {
	data, err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var env struct {
		Data task.Task `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
	}
	return &env.Data, nil
}

// Chat asks the task's assistant a question.
func (c *Client) Chat(ctx context.Context, taskID, question string) (*assistant.Reply, error) {
	body := map[string]string{"question": question}
	data, err := c.do(ctx, http.MethodPost, "/npc/"+url.PathEscape(taskID)+"/chat", body)
	if err != nil {
		return nil, err
	}
	var r assistant.Reply
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode chat reply: %w", err)
	}
	return &r, nil
}

// Health pings the API.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	return err
}

// BreakerState reports the circuit state, e.g. "closed" or "open".
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}
