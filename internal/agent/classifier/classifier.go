// Package classifier maps free-text input to one of the fixed intent labels.
// It always produces a usable Classification: any model or parse failure
// fails open to the general intent.
package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/tidwall/gjson"

	"github.com/echo-shopbot/server/internal/agent/model"
	"github.com/echo-shopbot/server/internal/llm"
	logx "github.com/echo-shopbot/server/pkg/logger"
)

type Classifier struct {
	gen llm.Generator
}

func New(gen llm.Generator) *Classifier {
	return &Classifier{gen: gen}
}

// Classify never fails. On a transport error it returns general with
// confidence 0.0; on an unparseable reply, general with confidence 0.5.
func (c *Classifier) Classify(ctx context.Context, message string) model.Classification {
	return llm.BestEffort(ctx, "classifier",
		func(ctx context.Context) (model.Classification, error) {
			msgs := make([]*schema.Message, 0, 32)
			msgs = append(msgs, schema.SystemMessage(systemPrompt))
			msgs = append(msgs, fewShotExamples()...)
			msgs = append(msgs, schema.UserMessage(message))

			out, err := c.gen.Generate(ctx, msgs)
			if err != nil {
				return model.Classification{}, err
			}
			if out == nil {
				return model.Classification{}, fmt.Errorf("model returned nil message")
			}

			cls, ok := parseReply(out.Content)
			if !ok {
				logx.Error().Str("content", out.Content).Msg("failed to parse classifier reply")
				return model.Classification{
					Intent:      model.IntentGeneral,
					Confidence:  0.5,
					Explanation: "Failed to parse model reply.",
				}, nil
			}

			logx.Debug().
				Str("intent", string(cls.Intent)).
				Float64("confidence", cls.Confidence).
				Msg("message classified")
			return cls, nil
		},
		func(err error) model.Classification {
			return model.Classification{
				Intent:      model.IntentGeneral,
				Confidence:  0.0,
				Explanation: fmt.Sprintf("API error: %v", err),
			}
		},
	)
}

// parseReply extracts the JSON object from the model reply. Replies are often
// wrapped in code fences or prose, so it scans for the outermost braces
// before parsing.
func parseReply(content string) (model.Classification, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return model.Classification{}, false
	}

	doc := gjson.Parse(content[start : end+1])
	intent := doc.Get("intent")
	confidence := doc.Get("confidence")
	if !intent.Exists() || !confidence.Exists() {
		return model.Classification{}, false
	}

	return model.Classification{
		Intent:      model.Intent(intent.String()),
		Confidence:  confidence.Float(),
		Explanation: doc.Get("explanation").String(),
	}, true
}
