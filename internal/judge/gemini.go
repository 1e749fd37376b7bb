package judge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"delegation-workers/internal/common/logger"
	"delegation-workers/internal/models"

	"google.golang.org/genai"
)

const (
	DefaultModel        = "gemini-2.5-flash"
	DefaultRetryBackoff = 100 * time.Millisecond
)

// Generator produces model text for a prompt.
type Generator interface {
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
}

type geminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (Generator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiGenerator{client: client, model: model}, nil
}

func (g *geminiGenerator) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if resp == nil {
		return "", errors.New("no response generated")
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("no text content in response")
	}
	return text, nil
}

type Options struct {
	Temperature  float32
	MaxRetries   int
	// RetryBackoff is the wait before the first retry; it doubles on each later one.
	RetryBackoff time.Duration
}

// LLMJudge scores submissions with a text generator and parses its JSON verdict.
type LLMJudge struct {
	generator Generator
	prompts   *PromptBuilder
	opts      Options
	logger    logger.Logger
}

func NewLLMJudge(gen Generator, opts Options, log logger.Logger) *LLMJudge {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = DefaultRetryBackoff
	}
	return &LLMJudge{
		generator: gen,
		prompts:   NewPromptBuilder(),
		opts:      opts,
		logger:    log,
	}
}

func (j *LLMJudge) Evaluate(ctx context.Context, sub Submission) (*models.EvaluationItem, error) {
	prompt := j.prompts.BuildSubmissionPrompt(sub)

	var lastErr error
	for attempt := 1; attempt <= j.opts.MaxRetries; attempt++ {
		if attempt > 1 {
			backoff := j.opts.RetryBackoff << (attempt - 2)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, contextError(ctx.Err())
			}
		}

		item, err := j.evaluateOnce(ctx, prompt)
		if err == nil {
			return item, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, contextError(ctx.Err())
		}

		if attempt < j.opts.MaxRetries {
			j.logger.Warn("judge attempt failed, retrying", map[string]interface{}{
				"attempt":    attempt,
				"providerId": sub.ProviderID,
				"testIndex":  sub.TestIndex,
				"error":      err.Error(),
			})
		}
	}

	if errors.Is(lastErr, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %v", ErrJudgeTimeout, lastErr)
	}
	return nil, fmt.Errorf("%w: failed after %d attempts: %v", ErrJudgeFailed, j.opts.MaxRetries, lastErr)
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrJudgeTimeout, err)
	}
	return fmt.Errorf("%w: context cancelled: %v", ErrJudgeFailed, err)
}

func (j *LLMJudge) evaluateOnce(ctx context.Context, prompt string) (*models.EvaluationItem, error) {
	text, err := j.generator.GenerateText(ctx, prompt, j.opts.Temperature)
	if err != nil {
		return nil, err
	}

	var item models.EvaluationItem
	if err := json.Unmarshal([]byte(extractJSON(text)), &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal judge response: %w", err)
	}
	for name, v := range map[string]float64{"technical": item.Technical, "argumentation": item.Argumentation, "formatting": item.Formatting} {
		if v < 0 || v > 100 {
			return nil, fmt.Errorf("judge returned %s score %.1f outside 0-100", name, v)
		}
	}
	if item.Strengths == nil {
		item.Strengths = []string{}
	}
	if item.Improvements == nil {
		item.Improvements = []string{}
	}
	if item.Recommendations == nil {
		item.Recommendations = []string{}
	}
	return &item, nil
}
