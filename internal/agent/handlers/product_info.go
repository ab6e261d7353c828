package handlers

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/echo-shopbot/server/internal/agent/model"
	"github.com/echo-shopbot/server/internal/llm"
	logx "github.com/echo-shopbot/server/pkg/logger"
)

const returnPolicyStatement = "Our return policy generally allows returns within 30 days of purchase for most items. " +
	"For detailed information, please visit our Returns & Exchanges page on our website or contact customer support."

const productNamePrompt = `Extract ONLY the exact product name from the following user query. Respond with 'NONE' if no clear product name is mentioned.

Examples:
User: 'How much is the Levi's 501 jeans?'
Output: Levi's 501 jeans

User: 'Is the iPhone 15 in stock?'
Output: iPhone 15

User: 'Tell me about the Short-sleeve tshirt.'
Output: Short-sleeve tshirt

User: 'What is your return policy?'
Output: NONE

User: '%s'
Output:`

// ProductInfoHandler answers price, stock, return-policy and generic
// product questions.
type ProductInfoHandler struct {
	commerce Commerce
	gen      llm.Generator
}

func NewProductInfoHandler(commerce Commerce, gen llm.Generator) *ProductInfoHandler {
	return &ProductInfoHandler{commerce: commerce, gen: gen}
}

func (h *ProductInfoHandler) Handle(ctx context.Context, message string, cls model.Classification) model.HandlerResult {
	// Return policy needs no product lookup when the question is generic.
	productName := h.extractProductName(ctx, message)
	logx.Info().Str("product_name", productName).Msg("product name extracted")

	if productName == "" {
		if cls.Intent == model.IntentReturnPolicy {
			return model.HandlerResult{
				Response:   returnPolicyStatement,
				AgentUsed:  AgentProductInfo,
				Confidence: 0.9,
			}
		}
		return model.HandlerResult{
			Response:   "I couldn't identify a specific product in your query. Could you please specify the product name?",
			AgentUsed:  AgentProductInfo,
			Confidence: 0.5,
		}
	}

	products, err := h.commerce.FindProducts(ctx, productName, 1)
	if err != nil {
		logx.Error().Err(err).Str("product_name", productName).Msg("product lookup failed")
		return model.HandlerResult{
			Response:   fmt.Sprintf("Sorry, I encountered an error while fetching product details: %v", err),
			AgentUsed:  AgentProductInfo,
			Confidence: 0.0,
			Err:        err.Error(),
		}
	}

	if len(products) == 0 {
		return model.HandlerResult{
			Response:   fmt.Sprintf("I couldn't find any product matching '%s'. Please double-check the name.", productName),
			AgentUsed:  AgentProductInfo,
			Confidence: 0.6,
		}
	}

	product := products[0]
	title := strings.ReplaceAll(strings.TrimSpace(product.Title), `"`, "")
	if title == "" {
		title = "this product"
	}

	var reply string
	switch cls.Intent {
	case model.IntentProductPrice:
		reply = fmt.Sprintf("The price of %s is %s %s.", title, formatMinorAmount(product.Price.Amount), product.Price.CurrencyCode)
	case model.IntentProductStock:
		reply = fmt.Sprintf("There are %d units of %s currently in stock.", product.TotalInventory, title)
	case model.IntentReturnPolicy:
		reply = returnPolicyStatement
	default:
		reply = fmt.Sprintf(
			"%s is priced at %s %s and we currently have %d units in stock. "+
				"For our return policy, please refer to the Returns & Exchanges section on our website.",
			title, formatMinorAmount(product.Price.Amount), product.Price.CurrencyCode, product.TotalInventory,
		)
	}

	return model.HandlerResult{
		Response:       reply,
		AgentUsed:      AgentProductInfo,
		Confidence:     0.9,
		ProductDetails: &product,
	}
}

// extractProductName asks the model for the product name first and falls back
// to a heuristic scan for capitalized word runs.
func (h *ProductInfoHandler) extractProductName(ctx context.Context, message string) string {
	name := llm.BestEffort(ctx, "product_name_extractor",
		func(ctx context.Context) (string, error) {
			return llm.Complete(ctx, h.gen, fmt.Sprintf(productNamePrompt, message))
		},
		func(error) string { return "" },
	)
	if name != "" && !strings.EqualFold(name, "none") {
		return name
	}

	return capitalizedRun(message)
}

// questionStarters are capitalized words that open a question rather than
// name a product. They never start an extraction run.
var questionStarters = map[string]bool{
	"how": true, "what": true, "when": true, "where": true, "why": true,
	"who": true, "can": true, "could": true, "does": true, "do": true,
	"tell": true, "show": true, "the": true, "please": true,
}

// capitalizedRun finds the first run of up to three words starting with a
// capitalized word longer than two characters.
func capitalizedRun(message string) string {
	words := strings.Fields(message)
	for i, word := range words {
		word = strings.Trim(word, ".,!?;:'\"")
		if !isTitleWord(word) || len(word) <= 2 || questionStarters[strings.ToLower(word)] {
			continue
		}
		run := []string{word}
		for j := i + 1; j < len(words) && j < i+3; j++ {
			next := strings.Trim(words[j], ".,!?;:'\"")
			if isTitleWord(next) || (strings.ToLower(next) == next && len(next) > 2) {
				run = append(run, next)
			} else {
				break
			}
		}
		return strings.Join(run, " ")
	}
	return ""
}

func isTitleWord(word string) bool {
	r := []rune(word)
	if len(r) == 0 {
		return false
	}
	return unicode.IsUpper(r[0])
}
