package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/echo-shopbot/server/internal/agent/model"
	"github.com/echo-shopbot/server/internal/llm"
	logx "github.com/echo-shopbot/server/pkg/logger"
)

// maxRecommendations caps how many products one reply suggests.
const maxRecommendations = 5

const keywordPrompt = `Extract the main product categories or keywords from the following user query.
If no clear product is mentioned, return 'general'. Return only the keyword(s) or 'general', nothing else.

Examples:
User: 'Can you recommend some Levi's Jeans?'
Output: 'Levi's Jeans'

User: 'Show me some cool items'
Output: 'general'

User: 'I'm looking for a new t-shirt'
Output: 't-shirt'

User: '%s'
Output:`

// RecommendationHandler suggests products matching the message's keywords.
type RecommendationHandler struct {
	commerce Commerce
	gen      llm.Generator
}

func NewRecommendationHandler(commerce Commerce, gen llm.Generator) *RecommendationHandler {
	return &RecommendationHandler{commerce: commerce, gen: gen}
}

func (h *RecommendationHandler) Handle(ctx context.Context, message string, cls model.Classification) model.HandlerResult {
	keywords := h.extractKeywords(ctx, message)
	logx.Info().Str("keywords", keywords).Msg("extracted recommendation search query")

	products, err := h.commerce.FindProducts(ctx, keywords, maxRecommendations)
	if err != nil {
		logx.Error().Err(err).Msg("recommendation lookup failed")
		return model.HandlerResult{
			Response:   fmt.Sprintf("Failed to fetch recommendations: %v", err),
			AgentUsed:  AgentRecommendation,
			Confidence: 0.0,
			Err:        err.Error(),
		}
	}

	if len(products) == 0 {
		logx.Info().Msg("no recommendations found")
		return model.HandlerResult{
			Response:   "I couldn't find any specific recommendations at the moment. Please try again later.",
			AgentUsed:  AgentRecommendation,
			Confidence: 0.5,
		}
	}

	recs := make([]model.Recommendation, 0, len(products))
	var b strings.Builder
	b.WriteString("Here are some products I recommend:\n")
	for _, p := range products {
		recs = append(recs, model.Recommendation{
			ID:          p.ID,
			Name:        p.Title,
			Price:       p.Price.Amount,
			Currency:    p.Price.CurrencyCode,
			Description: p.Description,
			URL:         p.URL,
			Image:       p.Image,
		})
		fmt.Fprintf(&b, "- %s (Price: %s %s)\n", p.Title, p.Price.Amount, p.Price.CurrencyCode)
	}

	return model.HandlerResult{
		Response:        strings.TrimRight(b.String(), "\n"),
		AgentUsed:       AgentRecommendation,
		Confidence:      0.9,
		Recommendations: recs,
	}
}

// extractKeywords returns the search filter, or "" for an unfiltered query.
// The model answers the sentinel 'general' when no product is mentioned.
func (h *RecommendationHandler) extractKeywords(ctx context.Context, message string) string {
	keywords := llm.BestEffort(ctx, "keyword_extractor",
		func(ctx context.Context) (string, error) {
			return llm.Complete(ctx, h.gen, fmt.Sprintf(keywordPrompt, message))
		},
		func(error) string { return "" },
	)

	keywords = strings.Trim(keywords, "'\"")
	if strings.EqualFold(keywords, "general") {
		return ""
	}
	return keywords
}
