package handlers

import (
	"context"
	"fmt"

	"github.com/echo-shopbot/server/internal/agent/model"
)

// GeneralHandler is the fallback for everything no other handler claims.
// It makes no external calls.
type GeneralHandler struct{}

func NewGeneralHandler() *GeneralHandler {
	return &GeneralHandler{}
}

func (h *GeneralHandler) Handle(_ context.Context, message string, cls model.Classification) model.HandlerResult {
	return model.HandlerResult{
		Response:   fmt.Sprintf("I'm your shopping assistant. You said: %s", message),
		AgentUsed:  AgentGeneral,
		Confidence: cls.Confidence,
	}
}
