// Package guard evaluates a single inbound message for basic acceptability.
// It is an intentionally local, synchronous policy point: a stronger
// classifier can replace it without changing the contract.
package guard

import (
	"fmt"
	"strings"
	"time"

	"github.com/echo-shopbot/server/internal/agent/model"
	logx "github.com/echo-shopbot/server/pkg/logger"
)

const AgentName = "guard_agent"

// Flags carries the finer-grained safety signals. Callers may apply a
// stricter reject policy than IsSafe alone, e.g. the coordinator also
// rejects when IsShoppingRelated is false.
type Flags struct {
	ProfanityDetected bool     `json:"profanity_detected"`
	HarmfulContent    bool     `json:"harmful_content"`
	OffTopic          bool     `json:"off_topic"`
	SpecificIssues    []string `json:"specific_issues"`
}

type Result struct {
	IsSafe            bool      `json:"is_safe"`
	Reason            string    `json:"reason"`
	Confidence        float64   `json:"confidence"`
	IsShoppingRelated bool      `json:"is_shopping_related"`
	Flags             Flags     `json:"details"`
	MessageLength     int       `json:"message_length"`
	CheckedAt         time.Time `json:"check_timestamp"`
}

// blockedTerms is a deliberately small local list; a real deployment would
// swap in a moderation classifier behind the same contract.
var blockedTerms = []string{
	"kill yourself",
	"bomb threat",
}

type Guard struct {
	maxLen int
}

func New(cfg model.GuardConfig) *Guard {
	return &Guard{maxLen: cfg.MaxMessageLength}
}

// Check is a pure, fast check over a single message, independent of session
// state.
func (g *Guard) Check(message string) Result {
	res := Result{
		IsSafe:            true,
		Reason:            "Message length check passed",
		Confidence:        1.0,
		IsShoppingRelated: true,
		Flags:             Flags{SpecificIssues: []string{}},
		MessageLength:     len(message),
		CheckedAt:         time.Now().UTC(),
	}

	switch {
	case len(message) == 0:
		res.IsSafe = false
		res.Reason = "Message is empty"
	case len(message) >= g.maxLen:
		res.IsSafe = false
		res.Reason = "Message too long"
	}

	lower := strings.ToLower(message)
	for _, term := range blockedTerms {
		if strings.Contains(lower, term) {
			res.IsSafe = false
			res.Reason = "Message contains blocked content"
			res.Flags.HarmfulContent = true
			res.Flags.SpecificIssues = append(res.Flags.SpecificIssues, fmt.Sprintf("blocked term: %s", term))
		}
	}

	if !res.IsSafe {
		logx.Warn().Str("reason", res.Reason).Int("length", res.MessageLength).Msg("message rejected by guard")
	}
	return res
}
