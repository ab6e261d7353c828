package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/echo-shopbot/server/internal/core/error"
)

func newStubAPI(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, AccessToken: "shpat_test", Timeout: 5})
}

func TestFindOrdersParsesFullOrder(t *testing.T) {
	var gotToken string
	var gotBody graphqlRequest
	client := newStubAPI(t, func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"orders": {"edges": [{"node": {
			"id": "gid://shopify/Order/1",
			"name": "#7842",
			"createdAt": "2024-05-01T10:00:00Z",
			"displayFulfillmentStatus": "FULFILLED",
			"displayFinancialStatus": "PAID",
			"totalPriceSet": {"shopMoney": {"amount": "19.99", "currencyCode": "USD"}},
			"lineItems": {"edges": [{"node": {"title": "Blue Hoodie", "quantity": 1}}]},
			"customer": {"firstName": "Ana", "lastName": "Lee", "email": "ana@example.com"},
			"shippingAddress": {"address1": "1 Main St", "city": "Springfield", "province": "IL", "zip": "62701", "country": "US"}
		}}]}}}`))
	})

	orders, err := client.FindOrders(context.Background(), "7842")
	require.NoError(t, err)
	require.Len(t, orders, 1)

	assert.Equal(t, "shpat_test", gotToken)
	assert.Equal(t, `name:"#7842"`, gotBody.Variables["query"])

	order := orders[0]
	assert.Equal(t, "#7842", order.Name)
	assert.Equal(t, "FULFILLED", order.FulfillmentStatus)
	assert.Equal(t, Money{Amount: "19.99", CurrencyCode: "USD"}, order.Total)
	require.Len(t, order.LineItems, 1)
	assert.Equal(t, LineItem{Title: "Blue Hoodie", Quantity: 1}, order.LineItems[0])
	require.NotNil(t, order.Shipping)
	assert.Equal(t, "Springfield", order.Shipping.City)
	require.NotNil(t, order.Customer)
	assert.Equal(t, "ana@example.com", order.Customer.Email)
}

func TestFindOrdersNoMatches(t *testing.T) {
	client := newStubAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data": {"orders": {"edges": []}}}`))
	})

	orders, err := client.FindOrders(context.Background(), "9999")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestQuerySurfacesGraphQLErrors(t *testing.T) {
	client := newStubAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"errors": [{"message": "Throttled"}]}`))
	})

	_, err := client.FindOrders(context.Background(), "7842")
	require.Error(t, err)
	var qErr *QueryError
	require.ErrorAs(t, err, &qErr)
	assert.Equal(t, "Throttled", qErr.Message)
}

func TestQuerySurfacesTransportFailure(t *testing.T) {
	client := newStubAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors": "invalid token"}`))
	})

	_, err := client.FindOrders(context.Background(), "7842")
	require.Error(t, err)
	var appErr *errx.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, err.Error(), "401")
}

func TestFindProductsBuildsVariables(t *testing.T) {
	var gotBody graphqlRequest
	client := newStubAPI(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"data": {"products": {"edges": [{"node": {
			"id": "gid://shopify/Product/1",
			"title": "Blue Hoodie",
			"description": "A warm hoodie.",
			"totalInventory": 12,
			"onlineStoreUrl": "https://shop.example/products/blue-hoodie",
			"priceRange": {"minVariantPrice": {"amount": "1999", "currencyCode": "USD"}},
			"images": {"edges": [{"node": {"src": "https://cdn.example/hoodie.png"}}]}
		}}]}}}`))
	})

	products, err := client.FindProducts(context.Background(), "hoodie", 5)
	require.NoError(t, err)

	assert.Equal(t, "hoodie", gotBody.Variables["query"])
	assert.Equal(t, float64(5), gotBody.Variables["first"])

	require.Len(t, products, 1)
	p := products[0]
	assert.Equal(t, "Blue Hoodie", p.Title)
	assert.Equal(t, int64(12), p.TotalInventory)
	assert.Equal(t, "1999", p.Price.Amount)
	assert.Equal(t, "https://cdn.example/hoodie.png", p.Image)
}

func TestFindProductsEmptyQueryOmitsFilter(t *testing.T) {
	var gotBody graphqlRequest
	client := newStubAPI(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"data": {"products": {"edges": []}}}`))
	})

	_, err := client.FindProducts(context.Background(), "", 0)
	require.NoError(t, err)

	_, hasQuery := gotBody.Variables["query"]
	assert.False(t, hasQuery)
	assert.Equal(t, float64(1), gotBody.Variables["first"])
}

func TestQueryRejectsInvalidJSON(t *testing.T) {
	client := newStubAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := client.query(context.Background(), "query {}", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid json")
}
