package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	errx "github.com/echo-shopbot/server/internal/core/error"
	logx "github.com/echo-shopbot/server/pkg/logger"
)

// Config holds the credentials and endpoint settings for the Shopify Admin API.
type Config struct {
	StoreURL    string `envconfig:"SHOPIFY_STORE_URL"`
	AccessToken string `envconfig:"SHOPIFY_ACCESS_TOKEN"`
	APIVersion  string `envconfig:"SHOPIFY_API_VERSION" default:"2024-01"`
	// BaseURL overrides the derived https://{store}/admin/api/{version} endpoint.
	// Used by tests and local mocks.
	BaseURL string `envconfig:"SHOPIFY_BASE_URL"`
	Timeout int    `envconfig:"SHOPIFY_TIMEOUT_SECONDS" default:"15"`
}

// QueryError is a GraphQL-level error returned by the Admin API with a 2xx status.
type QueryError struct {
	Message string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("shopify query error: %s", e.Message)
}

// Client talks to the Shopify Admin GraphQL API.
type Client struct {
	http *resty.Client
}

func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s/admin/api/%s", cfg.StoreURL, cfg.APIVersion)
	}

	c := resty.New().
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Shopify-Access-Token", cfg.AccessToken).
		SetTimeout(time.Duration(cfg.Timeout) * time.Second)

	return &Client{http: c}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// query posts a GraphQL document and returns the parsed response body.
// A GraphQL errors array in a 2xx response is surfaced as *QueryError.
func (c *Client) query(ctx context.Context, q string, vars map[string]any) (gjson.Result, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(&graphqlRequest{Query: q, Variables: vars}).
		Post("/graphql.json")
	if err != nil {
		logx.Error().Err(err).Msg("shopify request failed")
		return gjson.Result{}, errx.WrapShopify(err)
	}
	if !resp.IsSuccess() {
		logx.Error().Int("status", resp.StatusCode()).Str("body", string(resp.Body())).Msg("shopify returned non-success status")
		return gjson.Result{}, errx.WrapShopify(fmt.Errorf("status %d: %s", resp.StatusCode(), resp.Body()))
	}

	body := resp.Body()
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, errx.WrapShopify(fmt.Errorf("invalid json response"))
	}
	doc := gjson.ParseBytes(body)

	if errs := doc.Get("errors"); errs.Exists() && len(errs.Array()) > 0 {
		msg := errs.Get("0.message").String()
		if msg == "" {
			msg = errs.Raw
		}
		logx.Error().Str("message", msg).Msg("shopify query error")
		return gjson.Result{}, &QueryError{Message: msg}
	}

	return doc, nil
}

// debugDump marshals v for trace logging, ignoring failures.
func debugDump(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
