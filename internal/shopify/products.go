package shopify

import (
	"context"

	"github.com/tidwall/gjson"

	logx "github.com/echo-shopbot/server/pkg/logger"
)

// Product is the subset of an Admin API product the assistant reports on.
type Product struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	TotalInventory int64  `json:"total_inventory"`
	Price          Money  `json:"price"`
	URL            string `json:"url,omitempty"`
	Image          string `json:"image,omitempty"`
}

const productQuery = `
query getProducts($query: String, $first: Int!) {
    products(first: $first, query: $query) {
        edges {
            node {
                id
                title
                description
                totalInventory
                onlineStoreUrl
                priceRange {
                    minVariantPrice {
                        amount
                        currencyCode
                    }
                }
                images(first: 1) {
                    edges {
                        node {
                            src
                        }
                    }
                }
            }
        }
    }
}`

// FindProducts searches products by title/keyword. An empty query returns the
// storefront's leading products unfiltered.
func (c *Client) FindProducts(ctx context.Context, query string, first int) ([]Product, error) {
	if first <= 0 {
		first = 1
	}
	vars := map[string]any{"first": first}
	if query != "" {
		vars["query"] = query
	}

	doc, err := c.query(ctx, productQuery, vars)
	if err != nil {
		return nil, err
	}

	edges := doc.Get("data.products.edges").Array()
	products := make([]Product, 0, len(edges))
	for _, edge := range edges {
		products = append(products, parseProduct(edge.Get("node")))
	}

	logx.Debug().Str("query", query).Int("matches", len(products)).Msg("product search complete")
	return products, nil
}

func parseProduct(node gjson.Result) Product {
	return Product{
		ID:             node.Get("id").String(),
		Title:          node.Get("title").String(),
		Description:    node.Get("description").String(),
		TotalInventory: node.Get("totalInventory").Int(),
		URL:            node.Get("onlineStoreUrl").String(),
		Image:          node.Get("images.edges.0.node.src").String(),
		Price: Money{
			Amount:       node.Get("priceRange.minVariantPrice.amount").String(),
			CurrencyCode: node.Get("priceRange.minVariantPrice.currencyCode").String(),
		},
	}
}
