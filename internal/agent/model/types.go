package model

import (
	"time"

	"github.com/echo-shopbot/server/internal/shopify"
)

// Role identifies who authored a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in a conversation. Messages are append-only and owned
// by their session.
type Message struct {
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// CustomerProfile holds known facts about the human behind a session.
// Fields only move from unset to set or are overwritten with a new
// non-empty value.
type CustomerProfile struct {
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	LastOrder string `json:"last_order,omitempty"`
}

// Session is one ongoing conversation keyed by an opaque identifier.
type Session struct {
	ID          string          `json:"session_id"`
	CreatedAt   time.Time       `json:"created_at"`
	LastUpdated time.Time       `json:"last_updated"`
	Messages    []Message       `json:"messages"`
	Customer    CustomerProfile `json:"customer_info"`
}

// Intent is the closed-set label describing what the user wants.
type Intent string

const (
	IntentOrder          Intent = "order"
	IntentRecommendation Intent = "recommendation"
	IntentProductPrice   Intent = "product_price"
	IntentProductStock   Intent = "product_stock"
	IntentReturnPolicy   Intent = "return_policy"
	IntentProductInfo    Intent = "product_info"
	IntentGeneral        Intent = "general"
)

// Classification is the output of the intent classifier. Only Intent drives
// routing; confidence and explanation are advisory.
type Classification struct {
	Intent      Intent  `json:"intent"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
}

// Recommendation is one product suggestion surfaced to the user.
type Recommendation struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Currency    string `json:"currency"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Image       string `json:"image,omitempty"`
}

// HandlerResult is the structured, pre-rewrite output of an intent handler.
// Handlers never fail past their boundary; failures are carried in Err.
type HandlerResult struct {
	Response        string
	AgentUsed       string
	Confidence      float64
	Err             string
	ErrDetails      string
	OrderDetails    *shopify.Order
	ProductDetails  *shopify.Product
	Recommendations []Recommendation
}

// Envelope is the pipeline's final output returned to the caller.
type Envelope struct {
	Response        string           `json:"response"`
	Confidence      float64          `json:"confidence"`
	AgentUsed       string           `json:"agent_used"`
	Err             string           `json:"error,omitempty"`
	ErrDetails      string           `json:"error_details,omitempty"`
	OrderDetails    *shopify.Order   `json:"order_details,omitempty"`
	ProductDetails  *shopify.Product `json:"product_details,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	CustomerInfo    CustomerProfile  `json:"customer_info"`
}
