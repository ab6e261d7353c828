package handlers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/echo-shopbot/server/internal/agent/model"
	"github.com/echo-shopbot/server/internal/shopify"
	logx "github.com/echo-shopbot/server/pkg/logger"
)

// orderNumberPattern matches the first run of 4 or more digits, optionally
// prefixed by '#'.
var orderNumberPattern = regexp.MustCompile(`#?(\d{4,})`)

// OrderHandler answers order-status questions by looking up the order on the
// commerce platform.
type OrderHandler struct {
	commerce Commerce
}

func NewOrderHandler(commerce Commerce) *OrderHandler {
	return &OrderHandler{commerce: commerce}
}

// ExtractOrderNumber pulls an order number out of free text, or "" when the
// message carries none.
func ExtractOrderNumber(message string) string {
	m := orderNumberPattern.FindStringSubmatch(message)
	if m == nil {
		return ""
	}
	return m[1]
}

func (h *OrderHandler) Handle(ctx context.Context, message string, cls model.Classification) model.HandlerResult {
	orderNumber := ExtractOrderNumber(message)
	if orderNumber == "" {
		// Guided retry, not an error.
		return model.HandlerResult{
			Response:   "I couldn't find an order number in your message. Please provide an order number.",
			AgentUsed:  AgentOrder,
			Confidence: cls.Confidence,
		}
	}

	logx.Debug().Str("order_number", orderNumber).Msg("fetching order details")
	orders, err := h.commerce.FindOrders(ctx, orderNumber)
	if err != nil {
		logx.Error().Err(err).Str("order_number", orderNumber).Msg("order lookup failed")
		return model.HandlerResult{
			Response:   fmt.Sprintf("Sorry, I encountered an error while fetching your order: %v", err),
			AgentUsed:  AgentOrder,
			Confidence: 0.0,
			Err:        err.Error(),
		}
	}

	if len(orders) == 0 {
		logx.Info().Str("order_number", orderNumber).Msg("no order found")
		return model.HandlerResult{
			Response:   fmt.Sprintf("I couldn't find any order with number #%s", orderNumber),
			AgentUsed:  AgentOrder,
			Confidence: cls.Confidence,
		}
	}

	// Only the first match is used even if the query could return more.
	order := orders[0]
	return model.HandlerResult{
		Response:     formatOrderReply(orderNumber, &order),
		AgentUsed:    AgentOrder,
		Confidence:   cls.Confidence,
		OrderDetails: &order,
	}
}

func formatOrderReply(orderNumber string, order *shopify.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I'm happy to tell you about your order #%s!\n\n", orderNumber)

	switch strings.ToLower(order.FulfillmentStatus) {
	case "fulfilled":
		b.WriteString("Great news! Your order has been fulfilled and is on its way. ")
	case "unfulfilled":
		b.WriteString("Your order is currently being processed. ")
	case "":
	default:
		fmt.Fprintf(&b, "Your order status is: %s. ", order.FulfillmentStatus)
	}

	if order.Total.Amount != "" {
		fmt.Fprintf(&b, "You paid %s %s for your purchase.\n\n", order.Total.Amount, order.Total.CurrencyCode)
	}

	if len(order.LineItems) > 0 {
		b.WriteString("Here's what you ordered:\n")
		for _, item := range order.LineItems {
			fmt.Fprintf(&b, "• %s (Quantity: %d)\n", item.Title, item.Quantity)
		}
	}

	if ship := order.Shipping; ship != nil {
		fmt.Fprintf(&b, "\nYour order will be delivered to:\n%s\n", ship.Address1)
		if ship.City != "" {
			fmt.Fprintf(&b, "%s, %s %s\n", ship.City, ship.Province, ship.Zip)
		}
		if ship.Country != "" {
			fmt.Fprintf(&b, "%s\n", ship.Country)
		}
	}

	if len(order.LineItems) > 0 {
		fmt.Fprintf(&b, "\nI think you made a great choice with the %s! ", order.LineItems[0].Title)
		b.WriteString("It's a popular item that our customers love. ")
		b.WriteString("Is there anything specific about your order you'd like to know more about?")
	}

	return b.String()
}
