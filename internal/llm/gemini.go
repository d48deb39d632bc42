package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultGeminiModel = "gemini-1.5-flash"

// Gemini generates through the Google Generative AI SDK.
type Gemini struct {
	APIKey   string
	Model    string
	Attempts int
}

func NewGemini(apiKey, model string) *Gemini {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{
		APIKey:   strings.TrimSpace(apiKey),
		Model:    model,
		Attempts: 2,
	}
}

func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	if g.APIKey == "" {
		return "", fmt.Errorf("%w: GEMINI_API_KEY is empty", ErrNotConfigured)
	}
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(g.APIKey))
	if err != nil {
		return "", fmt.Errorf("%w: gemini client: %v", ErrTransport, err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(g.Model)
	if m == nil {
		return "", fmt.Errorf("%w: gemini model is nil", ErrNotConfigured)
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(float32(req.Temperature)),
		TopP:        ptrFloat32(float32(req.TopP)),
	}

	attempts := g.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := m.GenerateContent(ctx, genai.Text(req.Prompt))
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", classifyContextErr(ctxErr)
			}
			lastErr = fmt.Errorf("%w: gemini: %v", ErrTransport, err)
			if sleepErr := sleepWithContext(ctx, time.Duration(attempt)*300*time.Millisecond); sleepErr != nil {
				return "", lastErr
			}
			continue
		}
		txt := strings.TrimSpace(firstText(resp))
		if txt == "" {
			return "", ErrEmptyResponse
		}
		return txt, nil
	}
	if lastErr == nil {
		lastErr = errors.New("gemini: no attempts made")
	}
	return "", lastErr
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}
