package handlers

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echo-shopbot/server/internal/agent/model"
	"github.com/echo-shopbot/server/internal/shopify"
)

type stubGenerator struct {
	reply string
	err   error
	calls int
}

func (s *stubGenerator) Generate(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return schema.AssistantMessage(s.reply, nil), nil
}

func blueHoodie() shopify.Product {
	return shopify.Product{
		ID:             "gid://shopify/Product/1",
		Title:          "Blue Hoodie",
		Description:    "A warm hoodie.",
		TotalInventory: 12,
		Price:          shopify.Money{Amount: "1999", CurrencyCode: "USD"},
	}
}

func TestProductInfoPriceFormatsMinorUnits(t *testing.T) {
	commerce := &stubCommerce{products: []shopify.Product{blueHoodie()}}
	h := NewProductInfoHandler(commerce, &stubGenerator{reply: "Blue Hoodie"})

	res := h.Handle(context.Background(), "How much is the Blue Hoodie?", model.Classification{Intent: model.IntentProductPrice, Confidence: 0.9})

	assert.Equal(t, "The price of Blue Hoodie is 19.99 USD.", res.Response)
	assert.Equal(t, AgentProductInfo, res.AgentUsed)
	assert.Equal(t, 0.9, res.Confidence)
	assert.Equal(t, "Blue Hoodie", commerce.lastQuery)
	assert.Equal(t, 1, commerce.lastFirst)
	require.NotNil(t, res.ProductDetails)
}

func TestProductInfoStock(t *testing.T) {
	h := NewProductInfoHandler(&stubCommerce{products: []shopify.Product{blueHoodie()}}, &stubGenerator{reply: "Blue Hoodie"})

	res := h.Handle(context.Background(), "Is the Blue Hoodie in stock?", model.Classification{Intent: model.IntentProductStock})

	assert.Equal(t, "There are 12 units of Blue Hoodie currently in stock.", res.Response)
}

func TestProductInfoGenericInfo(t *testing.T) {
	h := NewProductInfoHandler(&stubCommerce{products: []shopify.Product{blueHoodie()}}, &stubGenerator{reply: "Blue Hoodie"})

	res := h.Handle(context.Background(), "Tell me about the Blue Hoodie", model.Classification{Intent: model.IntentProductInfo})

	assert.Contains(t, res.Response, "19.99 USD")
	assert.Contains(t, res.Response, "12 units in stock")
}

func TestProductInfoReturnPolicyNeedsNoProduct(t *testing.T) {
	commerce := &stubCommerce{}
	h := NewProductInfoHandler(commerce, &stubGenerator{reply: "NONE"})

	res := h.Handle(context.Background(), "what is your return policy", model.Classification{Intent: model.IntentReturnPolicy})

	assert.Contains(t, res.Response, "30 days")
	assert.Equal(t, 0.9, res.Confidence)
	assert.Zero(t, commerce.productsCalls)
}

func TestProductInfoAsksForClarification(t *testing.T) {
	h := NewProductInfoHandler(&stubCommerce{}, &stubGenerator{reply: "NONE"})

	res := h.Handle(context.Background(), "how much is it", model.Classification{Intent: model.IntentProductPrice})

	assert.Contains(t, res.Response, "specify the product name")
	assert.Equal(t, 0.5, res.Confidence)
}

func TestProductInfoNotFound(t *testing.T) {
	h := NewProductInfoHandler(&stubCommerce{}, &stubGenerator{reply: "Ghost Jacket"})

	res := h.Handle(context.Background(), "price of the Ghost Jacket", model.Classification{Intent: model.IntentProductPrice})

	assert.Contains(t, res.Response, "'Ghost Jacket'")
	assert.Equal(t, 0.6, res.Confidence)
	assert.Empty(t, res.Err)
}

func TestProductInfoUpstreamError(t *testing.T) {
	h := NewProductInfoHandler(&stubCommerce{productsErr: errors.New("timeout")}, &stubGenerator{reply: "Blue Hoodie"})

	res := h.Handle(context.Background(), "price of the Blue Hoodie", model.Classification{Intent: model.IntentProductPrice})

	assert.NotEmpty(t, res.Err)
	assert.Zero(t, res.Confidence)
}

func TestExtractProductNameFallsBackWhenModelFails(t *testing.T) {
	h := NewProductInfoHandler(&stubCommerce{products: []shopify.Product{blueHoodie()}}, &stubGenerator{err: errors.New("api down")})

	res := h.Handle(context.Background(), "How much is the Blue Hoodie today?", model.Classification{Intent: model.IntentProductPrice})

	// Heuristic extraction still finds the capitalized run.
	assert.Contains(t, res.Response, "Blue Hoodie")
}

func TestCapitalizedRun(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"How much is the Blue Hoodie today?", "Blue Hoodie today"},
		{"is the iPhone in stock", ""},
		{"I want Nike shoes", "Nike shoes"},
		{"nothing here", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, capitalizedRun(tc.message), "message: %s", tc.message)
	}
}

func TestFormatMinorAmount(t *testing.T) {
	assert.Equal(t, "19.99", formatMinorAmount("1999"))
	assert.Equal(t, "0.50", formatMinorAmount("50"))
	assert.Equal(t, "N/A", formatMinorAmount("abc"))
	assert.Equal(t, "N/A", formatMinorAmount(""))
}
