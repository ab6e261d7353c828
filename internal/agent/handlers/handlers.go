// Package handlers contains the intent handlers. Each one maps a classified
// message to a structured HandlerResult and never fails past its boundary:
// internal failures become apologetic results carrying an error indicator.
package handlers

import (
	"context"
	"fmt"
	"runtime/debug"
	"strconv"

	"github.com/echo-shopbot/server/internal/agent/model"
	"github.com/echo-shopbot/server/internal/shopify"
	logx "github.com/echo-shopbot/server/pkg/logger"
)

const (
	AgentOrder          = "order_agent"
	AgentProductInfo    = "product_info_agent"
	AgentRecommendation = "recommendation_agent"
	AgentGeneral        = "general"
)

// Commerce is the commerce-platform query surface the handlers consume.
// *shopify.Client satisfies it.
type Commerce interface {
	FindOrders(ctx context.Context, orderNumber string) ([]shopify.Order, error)
	FindProducts(ctx context.Context, query string, first int) ([]shopify.Product, error)
}

// Handler turns a classified message into a structured, pre-rewrite result.
type Handler interface {
	Handle(ctx context.Context, message string, cls model.Classification) model.HandlerResult
}

// Safe wraps a handler with panic recovery so unexpected failures surface as
// error results instead of escaping the handler boundary.
func Safe(h Handler, name string) Handler {
	return &safeHandler{inner: h, name: name}
}

type safeHandler struct {
	inner Handler
	name  string
}

func (s *safeHandler) Handle(ctx context.Context, message string, cls model.Classification) (result model.HandlerResult) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("handler", s.name).Msgf("panic recovered: %v", r)
			result = model.HandlerResult{
				Response:   fmt.Sprintf("I apologize, but I encountered an error while processing your request: %v", r),
				AgentUsed:  s.name,
				Confidence: 0.0,
				Err:        fmt.Sprint(r),
				ErrDetails: string(debug.Stack()),
			}
		}
	}()
	return s.inner.Handle(ctx, message, cls)
}

// formatMinorAmount renders an integer-minor-unit amount string as a decimal
// with two places, e.g. "1999" -> "19.99". Unparseable input yields "N/A".
func formatMinorAmount(amount string) string {
	v, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", v/100)
}
