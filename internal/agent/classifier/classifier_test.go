package classifier

import (
	"context"
	"fmt"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"

	"github.com/echo-shopbot/server/internal/agent/model"
)

type stubGenerator struct {
	reply string
	err   error
	calls int
	last  []*schema.Message
}

func (s *stubGenerator) Generate(_ context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	s.calls++
	s.last = input
	if s.err != nil {
		return nil, s.err
	}
	return schema.AssistantMessage(s.reply, nil), nil
}

func TestClassifyParsesWellFormedReply(t *testing.T) {
	gen := &stubGenerator{reply: `{"intent": "order", "confidence": 0.9, "explanation": "Order status question."}`}
	cls := New(gen).Classify(context.Background(), "Where is my order #1234?")

	assert.Equal(t, model.IntentOrder, cls.Intent)
	assert.Equal(t, 0.9, cls.Confidence)
	assert.Equal(t, "Order status question.", cls.Explanation)
}

func TestClassifyStripsCodeFences(t *testing.T) {
	gen := &stubGenerator{reply: "```json\n{\"intent\": \"recommendation\", \"confidence\": 0.8, \"explanation\": \"x\"}\n```"}
	cls := New(gen).Classify(context.Background(), "recommend shoes")

	assert.Equal(t, model.IntentRecommendation, cls.Intent)
	assert.Equal(t, 0.8, cls.Confidence)
}

func TestClassifyFailsOpenOnParseFailure(t *testing.T) {
	for _, reply := range []string{
		"not json at all",
		`{"confidence": 0.9}`,
		`{"intent": "order"}`,
	} {
		gen := &stubGenerator{reply: reply}
		cls := New(gen).Classify(context.Background(), "hello")

		assert.Equal(t, model.IntentGeneral, cls.Intent, "reply: %s", reply)
		assert.Equal(t, 0.5, cls.Confidence, "reply: %s", reply)
	}
}

func TestClassifyFailsOpenOnTransportError(t *testing.T) {
	gen := &stubGenerator{err: fmt.Errorf("connection refused")}
	cls := New(gen).Classify(context.Background(), "hello")

	assert.Equal(t, model.IntentGeneral, cls.Intent)
	assert.Equal(t, 0.0, cls.Confidence)
	assert.Contains(t, cls.Explanation, "connection refused")
}

func TestClassifySendsFewShotContext(t *testing.T) {
	gen := &stubGenerator{reply: `{"intent": "general", "confidence": 0.8, "explanation": "x"}`}
	New(gen).Classify(context.Background(), "Hello")

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, schema.System, gen.last[0].Role)
	// live message comes last
	assert.Equal(t, schema.User, gen.last[len(gen.last)-1].Role)
	assert.Equal(t, "Hello", gen.last[len(gen.last)-1].Content)
	assert.Greater(t, len(gen.last), 10)
}
