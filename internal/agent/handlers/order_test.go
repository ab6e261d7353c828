package handlers

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echo-shopbot/server/internal/agent/model"
	"github.com/echo-shopbot/server/internal/shopify"
)

type stubCommerce struct {
	orders        []shopify.Order
	ordersErr     error
	products      []shopify.Product
	productsErr   error
	lastOrderNum  string
	lastQuery     string
	lastFirst     int
	orderCalls    int
	productsCalls int
}

func (s *stubCommerce) FindOrders(_ context.Context, orderNumber string) ([]shopify.Order, error) {
	s.orderCalls++
	s.lastOrderNum = orderNumber
	return s.orders, s.ordersErr
}

func (s *stubCommerce) FindProducts(_ context.Context, query string, first int) ([]shopify.Product, error) {
	s.productsCalls++
	s.lastQuery = query
	s.lastFirst = first
	return s.products, s.productsErr
}

func TestExtractOrderNumber(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"Where is my order #7842?", "7842"},
		{"order 12345 please", "12345"},
		{"check #99 and #12345", "12345"},
		{"no digits here", ""},
		{"short #123", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ExtractOrderNumber(tc.message), "message: %s", tc.message)
	}
}

func TestOrderHandlerFormatsFulfilledOrder(t *testing.T) {
	commerce := &stubCommerce{orders: []shopify.Order{{
		Name:              "#7842",
		FulfillmentStatus: "FULFILLED",
		Total:             shopify.Money{Amount: "19.99", CurrencyCode: "USD"},
		LineItems:         []shopify.LineItem{{Title: "Blue Hoodie", Quantity: 1}},
	}}}
	h := NewOrderHandler(commerce)

	res := h.Handle(context.Background(), "Where is my order #7842?", model.Classification{Intent: model.IntentOrder, Confidence: 0.9})

	require.Empty(t, res.Err)
	assert.Equal(t, "7842", commerce.lastOrderNum)
	assert.Contains(t, res.Response, "fulfilled")
	assert.Contains(t, res.Response, "19.99 USD")
	assert.Contains(t, res.Response, "Blue Hoodie")
	assert.Equal(t, AgentOrder, res.AgentUsed)
	assert.Equal(t, 0.9, res.Confidence)
	require.NotNil(t, res.OrderDetails)
}

func TestOrderHandlerGuidedRetryWithoutNumber(t *testing.T) {
	commerce := &stubCommerce{}
	h := NewOrderHandler(commerce)

	res := h.Handle(context.Background(), "where is my stuff", model.Classification{Intent: model.IntentOrder, Confidence: 0.85})

	assert.Empty(t, res.Err)
	assert.Equal(t, 0.85, res.Confidence)
	assert.Contains(t, res.Response, "order number")
	assert.Zero(t, commerce.orderCalls)
}

func TestOrderHandlerNotFound(t *testing.T) {
	h := NewOrderHandler(&stubCommerce{})

	res := h.Handle(context.Background(), "order #9999", model.Classification{Confidence: 0.8})

	assert.Empty(t, res.Err)
	assert.Equal(t, 0.8, res.Confidence)
	assert.Contains(t, res.Response, "#9999")
}

func TestOrderHandlerUpstreamError(t *testing.T) {
	h := NewOrderHandler(&stubCommerce{ordersErr: &shopify.QueryError{Message: "throttled"}})

	res := h.Handle(context.Background(), "order #9999", model.Classification{Confidence: 0.8})

	assert.NotEmpty(t, res.Err)
	assert.Zero(t, res.Confidence)
	assert.Contains(t, res.Response, "throttled")
}

func TestOrderHandlerShippingAndClosingRemark(t *testing.T) {
	h := NewOrderHandler(&stubCommerce{orders: []shopify.Order{{
		FulfillmentStatus: "UNFULFILLED",
		LineItems:         []shopify.LineItem{{Title: "Red Scarf", Quantity: 2}, {Title: "Mittens", Quantity: 1}},
		Shipping:          &shopify.Address{Address1: "1 Main St", City: "Springfield", Province: "IL", Zip: "62701", Country: "US"},
	}}})

	res := h.Handle(context.Background(), "order 4521", model.Classification{Confidence: 0.9})

	assert.Contains(t, res.Response, "being processed")
	assert.Contains(t, res.Response, "• Red Scarf (Quantity: 2)")
	assert.Contains(t, res.Response, "1 Main St")
	assert.Contains(t, res.Response, "Springfield, IL 62701")
	assert.Contains(t, res.Response, "great choice with the Red Scarf")
}

func TestSafeHandlerRecoversPanic(t *testing.T) {
	h := Safe(panickyHandler{}, AgentOrder)

	res := h.Handle(context.Background(), "boom", model.Classification{})

	assert.Equal(t, AgentOrder, res.AgentUsed)
	assert.Zero(t, res.Confidence)
	assert.NotEmpty(t, res.Err)
	assert.NotEmpty(t, res.ErrDetails)
}

type panickyHandler struct{}

func (panickyHandler) Handle(context.Context, string, model.Classification) model.HandlerResult {
	panic(fmt.Errorf("nil map write"))
}
