package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

const (
	DefaultOllamaHost  = "http://localhost:11434"
	DefaultOllamaModel = "llama2"
)

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// Ollama calls a local Ollama server's /api/generate endpoint.
type Ollama struct {
	baseURL string
	model   string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type OllamaOption func(*Ollama)

func WithTimeout(d time.Duration) OllamaOption {
	return func(c *Ollama) {
		if d > 0 {
			c.defaultTimeout = d
		}
	}
}

func WithRetry(max int) OllamaOption {
	return func(c *Ollama) { c.retryMax = max }
}

func WithMaxConnsPerHost(n int) OllamaOption {
	return func(c *Ollama) { c.http.MaxConnsPerHost = n }
}

// WithHTTPClient swaps the transport, mostly for in-memory tests.
func WithHTTPClient(hc *fasthttp.Client) OllamaOption {
	return func(c *Ollama) {
		if hc != nil {
			c.http = hc
		}
	}
}

func NewOllama(host, model string, opts ...OllamaOption) *Ollama {
	host = strings.TrimSpace(host)
	if host == "" {
		host = DefaultOllamaHost
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultOllamaModel
	}
	c := &Ollama{
		baseURL:        strings.TrimRight(host, "/"),
		model:          model,
		http:           &fasthttp.Client{ReadTimeout: 30 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 20 * time.Second,
		retryMax:       2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Ollama) Model() string { return c.model }

func (c *Ollama) Generate(ctx context.Context, req Request) (string, error) {
	body := ollamaRequest{
		Model:  c.model,
		Prompt: req.Prompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: req.Temperature,
			TopP:        req.TopP,
		},
	}
	timeout := c.defaultTimeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}

	var out ollamaResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/api/generate", body, &out, timeout); err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", fmt.Errorf("%w: ollama: %s", ErrTransport, out.Error)
	}
	text := strings.TrimSpace(out.Response)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (c *Ollama) doJSON(ctx context.Context, method, path string, in any, out any, timeout time.Duration) error {
	url := c.baseURL + path
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(url)
	req.Header.SetContentType("application/json")

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	attempts := c.retryMax
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return classifyContextErr(err)
		}
		err := c.http.DoDeadline(req, resp, deadlineFor(ctx, timeout))
		if err != nil {
			lastErr = transportErr(err)
			if attempt == attempts || errors.Is(lastErr, ErrTimeout) {
				return lastErr
			}
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			err := fmt.Errorf("%w: ollama status=%d body=%s", ErrTransport, status, truncate(string(resp.Body()), 512))
			if attempt == attempts || !shouldRetryStatus(status) {
				return err
			}
			lastErr = err
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("%w: decode response: %v", ErrTransport, err)
			}
		}
		return nil
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

func transportErr(err error) error {
	if errors.Is(err, fasthttp.ErrTimeout) || errors.Is(err, fasthttp.ErrDialTimeout) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrTransport, err)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 100 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base // 100ms, 200ms ...
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
