package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	logx "github.com/echo-shopbot/server/pkg/logger"
)

// Complete issues a completion-style call: a single prompt in, trimmed plain
// text out.
func Complete(ctx context.Context, g Generator, prompt string) (string, error) {
	out, err := g.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", err
	}
	if out == nil {
		return "", fmt.Errorf("model returned nil message")
	}
	return strings.TrimSpace(out.Content), nil
}

// BestEffort runs call and substitutes fallback(err) on any failure. This is
// the single fail-open point for every external model call in the pipeline:
// classification, extraction and rewriting all degrade instead of erroring.
func BestEffort[T any](ctx context.Context, component string, call func(context.Context) (T, error), fallback func(error) T) T {
	out, err := call(ctx)
	if err != nil {
		logx.Warn().Err(err).Str("component", component).Msg("model call failed, using fallback")
		return fallback(err)
	}
	return out
}
