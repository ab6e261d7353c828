package guard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/echo-shopbot/server/internal/agent/model"
)

func newGuard() *Guard {
	return New(model.GuardConfig{MaxMessageLength: 1000})
}

func TestCheckAcceptsNormalMessage(t *testing.T) {
	res := newGuard().Check("Where is my order #1234?")

	assert.True(t, res.IsSafe)
	assert.True(t, res.IsShoppingRelated)
	assert.Equal(t, "Message length check passed", res.Reason)
	assert.Equal(t, 1.0, res.Confidence)
	assert.False(t, res.Flags.HarmfulContent)
}

func TestCheckRejectsEmptyMessage(t *testing.T) {
	res := newGuard().Check("")

	assert.False(t, res.IsSafe)
	assert.Equal(t, "Message is empty", res.Reason)
}

func TestCheckRejectsOverlongMessage(t *testing.T) {
	res := newGuard().Check(strings.Repeat("a", 1000))

	assert.False(t, res.IsSafe)
	assert.Equal(t, "Message too long", res.Reason)
	assert.Equal(t, 1000, res.MessageLength)
}

func TestCheckFlagsBlockedContent(t *testing.T) {
	res := newGuard().Check("I will call in a bomb threat")

	assert.False(t, res.IsSafe)
	assert.True(t, res.Flags.HarmfulContent)
	assert.NotEmpty(t, res.Flags.SpecificIssues)
}
