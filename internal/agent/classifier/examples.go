package classifier

import "github.com/cloudwego/eino/schema"

const systemPrompt = "You are an expert in classifying user intent for an e-commerce chatbot. " +
	"Classify the user's intent into one of the following categories: 'order', 'recommendation', " +
	"'product_price', 'product_stock', 'return_policy', 'product_info', or 'general'. " +
	"Respond with a JSON object containing \"intent\", a \"confidence\" score (0.0 to 1.0), " +
	"and a brief \"explanation\"."

// fewShotExamples returns the fixed example exchanges seeding the classifier,
// one cluster per intent label.
func fewShotExamples() []*schema.Message {
	pairs := []struct {
		input string
		reply string
	}{
		// order
		{"Where is my order #1234?", `{"intent": "order", "confidence": 0.9, "explanation": "User is asking about an order status."}`},
		{"Can you update order 5678?", `{"intent": "order", "confidence": 0.85, "explanation": "User wants to modify an order."}`},
		{"I need details for order 9012.", `{"intent": "order", "confidence": 0.92, "explanation": "User is requesting order details."}`},

		// recommendation
		{"Recommend some shoes", `{"intent": "recommendation", "confidence": 0.9, "explanation": "User is asking for product recommendations."}`},
		{"What should I buy?", `{"intent": "recommendation", "confidence": 0.75, "explanation": "User is asking for general product suggestions."}`},
		{"Do you have any cool gadgets?", `{"intent": "recommendation", "confidence": 0.88, "explanation": "User is looking for specific product types to be recommended."}`},

		// product_price
		{"How much is the Levi's 501 jeans?", `{"intent": "product_price", "confidence": 0.95, "explanation": "User is inquiring about the price of a specific product."}`},
		{"What's the cost of the graphic t-shirt?", `{"intent": "product_price", "confidence": 0.9, "explanation": "User wants to know the price."}`},

		// product_stock
		{"Is the iPhone 15 in stock?", `{"intent": "product_stock", "confidence": 0.95, "explanation": "User is inquiring about product availability."}`},
		{"Do you have size M in the black dress?", `{"intent": "product_stock", "confidence": 0.9, "explanation": "User is asking about stock for a specific variant."}`},

		// return_policy
		{"What's your return policy?", `{"intent": "return_policy", "confidence": 0.98, "explanation": "User is asking about the store's return policy."}`},
		{"Can I return this item?", `{"intent": "return_policy", "confidence": 0.92, "explanation": "User is asking about eligibility for return."}`},

		// product_info
		{"Tell me about the Short-sleeve tshirt", `{"intent": "product_info", "confidence": 0.9, "explanation": "User wants general details about a specific product."}`},

		// general
		{"Hello", `{"intent": "general", "confidence": 0.8, "explanation": "A generic greeting."}`},
		{"How are you?", `{"intent": "general", "confidence": 0.7, "explanation": "A general conversational query."}`},
	}

	msgs := make([]*schema.Message, 0, len(pairs)*2)
	for _, p := range pairs {
		msgs = append(msgs, schema.UserMessage(p.input), schema.AssistantMessage(p.reply, nil))
	}
	return msgs
}
