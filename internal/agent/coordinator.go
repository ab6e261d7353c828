// Package agent wires the message pipeline: safety check, intent
// classification, handler dispatch and persona rewriting.
package agent

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/echo-shopbot/server/internal/agent/classifier"
	"github.com/echo-shopbot/server/internal/agent/guard"
	"github.com/echo-shopbot/server/internal/agent/handlers"
	"github.com/echo-shopbot/server/internal/agent/humanizer"
	"github.com/echo-shopbot/server/internal/agent/model"
	"github.com/echo-shopbot/server/internal/observability"
	logx "github.com/echo-shopbot/server/pkg/logger"
)

// ErrorHandlerName tags envelopes produced by the outermost recovery
// boundary.
const ErrorHandlerName = "error_handler"

// SafetyChecker screens one inbound message before any model call.
type SafetyChecker interface {
	Check(message string) guard.Result
}

// IntentClassifier labels one inbound message. Implementations never fail;
// they degrade to the general intent.
type IntentClassifier interface {
	Classify(ctx context.Context, message string) model.Classification
}

// Rewriter turns raw handler text into the final user-facing prose.
type Rewriter interface {
	Rewrite(ctx context.Context, raw, agentName string, history []model.Message, customer model.CustomerProfile) string
}

// Coordinator runs the sequential pipeline for one message at a time. It
// holds no per-message state, so one instance serves all sessions.
type Coordinator struct {
	guard      SafetyChecker
	classifier IntentClassifier
	rewriter   Rewriter
	routes     map[model.Intent]handlers.Handler
	fallback   handlers.Handler
	metrics    *observability.Metrics
}

// NewCoordinator builds the pipeline with the standard routing table. The
// product-info handler serves the price, stock, return-policy and generic
// product intents. metrics may be nil.
func NewCoordinator(
	g SafetyChecker,
	cls IntentClassifier,
	rw Rewriter,
	order, productInfo, recommendation, fallback handlers.Handler,
	metrics *observability.Metrics,
) *Coordinator {
	return &Coordinator{
		guard:      g,
		classifier: cls,
		rewriter:   rw,
		routes: map[model.Intent]handlers.Handler{
			model.IntentOrder:          order,
			model.IntentRecommendation: recommendation,
			model.IntentProductPrice:   productInfo,
			model.IntentProductStock:   productInfo,
			model.IntentReturnPolicy:   productInfo,
			model.IntentProductInfo:    productInfo,
		},
		fallback: fallback,
		metrics:  metrics,
	}
}

// ProcessMessage runs one message through the full pipeline and always
// returns a deliverable envelope. history and customer are the session
// snapshot taken before the message was appended.
func (c *Coordinator) ProcessMessage(ctx context.Context, message string, history []model.Message, customer model.CustomerProfile) (env model.Envelope) {
	start := time.Now()
	defer func() {
		c.metrics.ObservePipelineDuration(time.Since(start))
		if r := recover(); r != nil {
			logx.Error().Msgf("pipeline panic recovered: %v", r)
			env = model.Envelope{
				Response:     "I apologize, but something went wrong while processing your message. Please try again.",
				Confidence:   0.0,
				AgentUsed:    ErrorHandlerName,
				Err:          fmt.Sprint(r),
				ErrDetails:   string(debug.Stack()),
				CustomerInfo: customer,
			}
		}
	}()

	if check := c.guard.Check(message); !check.IsSafe || !check.IsShoppingRelated {
		c.metrics.RecordBlocked(check.Reason)
		raw := fmt.Sprintf("Message rejected: %s", check.Reason)
		return model.Envelope{
			Response:     c.rewriter.Rewrite(ctx, raw, guard.AgentName, history, customer),
			Confidence:   check.Confidence,
			AgentUsed:    guard.AgentName,
			CustomerInfo: customer,
		}
	}

	cls := c.classifier.Classify(ctx, message)
	logx.Info().
		Str("intent", string(cls.Intent)).
		Float64("confidence", cls.Confidence).
		Msg("message classified")

	handler, ok := c.routes[cls.Intent]
	if !ok {
		handler = c.fallback
	}

	result := handler.Handle(ctx, message, cls)
	c.metrics.RecordMessage(string(cls.Intent), result.AgentUsed)
	if result.Err != "" {
		c.metrics.RecordHandlerError(result.AgentUsed)
	}

	// Errors are humanized like everything else; the raw diagnostic stays
	// in the envelope's error fields.
	final := c.rewriter.Rewrite(ctx, result.Response, result.AgentUsed, history, customer)

	return model.Envelope{
		Response:        final,
		Confidence:      result.Confidence,
		AgentUsed:       result.AgentUsed,
		Err:             result.Err,
		ErrDetails:      result.ErrDetails,
		OrderDetails:    result.OrderDetails,
		ProductDetails:  result.ProductDetails,
		Recommendations: result.Recommendations,
		CustomerInfo:    customer,
	}
}

// CheckMessage exposes the safety filter on its own for the safety-check
// endpoint.
func (c *Coordinator) CheckMessage(message string) guard.Result {
	return c.guard.Check(message)
}

var (
	_ SafetyChecker    = (*guard.Guard)(nil)
	_ IntentClassifier = (*classifier.Classifier)(nil)
	_ Rewriter         = (*humanizer.Humanizer)(nil)
)
