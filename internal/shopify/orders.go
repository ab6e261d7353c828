package shopify

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	logx "github.com/echo-shopbot/server/pkg/logger"
)

// Money is a Shopify money value: amount as a decimal string plus currency code.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currency_code"`
}

type LineItem struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}

type Address struct {
	Address1 string `json:"address1"`
	City     string `json:"city"`
	Province string `json:"province"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

type OrderCustomer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Order is the subset of an Admin API order the assistant reports on.
type Order struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	CreatedAt         string         `json:"created_at"`
	FulfillmentStatus string         `json:"fulfillment_status"`
	FinancialStatus   string         `json:"financial_status"`
	Total             Money          `json:"total"`
	LineItems         []LineItem     `json:"line_items"`
	Shipping          *Address       `json:"shipping_address,omitempty"`
	Customer          *OrderCustomer `json:"customer,omitempty"`
}

const orderQuery = `
query getOrder($query: String!) {
    orders(first: 1, query: $query) {
        edges {
            node {
                id
                name
                createdAt
                displayFulfillmentStatus
                displayFinancialStatus
                totalPriceSet {
                    shopMoney {
                        amount
                        currencyCode
                    }
                }
                lineItems(first: 10) {
                    edges {
                        node {
                            title
                            quantity
                        }
                    }
                }
                customer {
                    firstName
                    lastName
                    email
                }
                shippingAddress {
                    address1
                    city
                    province
                    zip
                    country
                }
            }
        }
    }
}`

// FindOrders looks up orders whose name matches the given order number.
// The Admin API query is capped at one result; callers only consume the first.
func (c *Client) FindOrders(ctx context.Context, orderNumber string) ([]Order, error) {
	vars := map[string]any{
		"query": fmt.Sprintf("name:%q", "#"+orderNumber),
	}

	doc, err := c.query(ctx, orderQuery, vars)
	if err != nil {
		return nil, err
	}

	edges := doc.Get("data.orders.edges").Array()
	orders := make([]Order, 0, len(edges))
	for _, edge := range edges {
		orders = append(orders, parseOrder(edge.Get("node")))
	}

	logx.Debug().Str("order_number", orderNumber).Int("matches", len(orders)).Msg("order lookup complete")
	return orders, nil
}

func parseOrder(node gjson.Result) Order {
	o := Order{
		ID:                node.Get("id").String(),
		Name:              node.Get("name").String(),
		CreatedAt:         node.Get("createdAt").String(),
		FulfillmentStatus: node.Get("displayFulfillmentStatus").String(),
		FinancialStatus:   node.Get("displayFinancialStatus").String(),
		Total: Money{
			Amount:       node.Get("totalPriceSet.shopMoney.amount").String(),
			CurrencyCode: node.Get("totalPriceSet.shopMoney.currencyCode").String(),
		},
	}

	for _, item := range node.Get("lineItems.edges").Array() {
		o.LineItems = append(o.LineItems, LineItem{
			Title:    item.Get("node.title").String(),
			Quantity: int(item.Get("node.quantity").Int()),
		})
	}

	if ship := node.Get("shippingAddress"); ship.Exists() && ship.Type != gjson.Null {
		o.Shipping = &Address{
			Address1: ship.Get("address1").String(),
			City:     ship.Get("city").String(),
			Province: ship.Get("province").String(),
			Zip:      ship.Get("zip").String(),
			Country:  ship.Get("country").String(),
		}
	}

	if cust := node.Get("customer"); cust.Exists() && cust.Type != gjson.Null {
		o.Customer = &OrderCustomer{
			FirstName: cust.Get("firstName").String(),
			LastName:  cust.Get("lastName").String(),
			Email:     cust.Get("email").String(),
		}
	}

	logx.Debug().Str("order", debugDump(o)).Msg("parsed order node")
	return o
}
