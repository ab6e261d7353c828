// Package humanizer rewrites handler output into the assistant's persona
// voice. Rewriting is a presentation layer only: when the model is
// unavailable the raw handler text goes out unchanged.
package humanizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/echo-shopbot/server/internal/agent/model"
	"github.com/echo-shopbot/server/internal/llm"
	logx "github.com/echo-shopbot/server/pkg/logger"
)

const (
	// contextTurns caps how much history the rewrite prompt carries.
	contextTurns = 3

	apologyReply = "I'm sorry, I couldn't generate a specific response for that. Can you please rephrase?"

	introductionReply = "Hi there! I'm Echo, your friendly shopping assistant. " +
		"To help me personalize our chat, what should I call you?"
)

const personaPrompt = `You are "Echo," an upbeat and very friendly shopping assistant. Your personality is enthusiastic, helpful, and a little bit fun. You are not a generic AI.
Your goal is to rephrase the following 'raw agent response' into a short, casual, and personal message.

**Rules:**
- ALWAYS be concise. Keep responses to 1-2 sentences.
- If you have the user's name (%s), use it.
- Never sound like a generic AI or chatbot. Be natural.
- If the agent's response is a simple greeting, make it a warm and welcoming one.

**Conversation Context:**
%s

**Raw Agent Response (from a backend system):**
"%s"

**Your Friendly Reply:**`

// Humanizer rephrases raw handler text through a chat model.
type Humanizer struct {
	gen llm.Generator
}

func New(gen llm.Generator) *Humanizer {
	return &Humanizer{gen: gen}
}

// Rewrite returns the persona-flavored form of raw. Two cases short-circuit
// without a model call: empty raw text yields a fixed apology, and a fresh
// session (no history, no known name) yields the fixed introduction so the
// assistant asks for a name exactly once.
func (h *Humanizer) Rewrite(ctx context.Context, raw, agentName string, history []model.Message, customer model.CustomerProfile) string {
	if strings.TrimSpace(raw) == "" {
		return apologyReply
	}
	if len(history) == 0 && customer.Name == "" {
		return introductionReply
	}

	prompt := fmt.Sprintf(personaPrompt, customer.Name, historyContext(history), raw)

	return llm.BestEffort(ctx, "humanizer",
		func(ctx context.Context) (string, error) {
			text, err := llm.Complete(ctx, h.gen, prompt)
			if err != nil {
				return "", err
			}
			if text == "" {
				return "", fmt.Errorf("empty rewrite for %s", agentName)
			}
			logx.Debug().Str("agent", agentName).Msg("response humanized")
			return text, nil
		},
		func(error) string { return raw },
	)
}

func historyContext(history []model.Message) string {
	if len(history) == 0 {
		return ""
	}
	start := len(history) - contextTurns
	if start < 0 {
		start = 0
	}

	var b strings.Builder
	b.WriteString("Previous conversation:\n")
	for _, msg := range history[start:] {
		role := "User"
		if msg.Role == model.RoleAssistant {
			role = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, msg.Content)
	}
	return b.String()
}
