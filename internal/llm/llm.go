// Package llm holds the text-generation clients the move selector talks to.
package llm

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrTimeout       = errors.New("llm: request timed out")
	ErrTransport     = errors.New("llm: transport failure")
	ErrEmptyResponse = errors.New("llm: empty response")
	ErrNotConfigured = errors.New("llm: provider not configured")
)

type Request struct {
	Prompt      string
	Temperature float64
	TopP        float64
	Timeout     time.Duration
}

// Generator sends one prompt and returns the model's free text.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Func adapts a plain function to Generator.
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Static always answers with the same text or error.
type Static struct {
	Text string
	Err  error
}

func (s Static) Generate(ctx context.Context, _ Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", classifyContextErr(err)
	}
	if s.Err != nil {
		return "", s.Err
	}
	return s.Text, nil
}

// Offline is used when no provider is configured; every call fails fast.
type Offline struct{}

func (Offline) Generate(context.Context, Request) (string, error) {
	return "", ErrNotConfigured
}

func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

func classifyContextErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrTimeout, err)
	}
	return errors.Join(ErrTransport, err)
}

func deadlineFor(ctx context.Context, fallback time.Duration) time.Time {
	clientDL := time.Now().Add(fallback)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func ptrFloat32(v float32) *float32 { return &v }
