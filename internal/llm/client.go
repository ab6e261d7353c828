package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/echo-shopbot/server/internal/agent/model"
	logx "github.com/echo-shopbot/server/pkg/logger"
)

// Generator is the narrow chat-model surface the pipeline consumes.
// *gemini.ChatModel satisfies it; tests substitute stubs.
type Generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error)
}

// ClientConfig holds the configuration for chat model creation.
type ClientConfig struct {
	APIKey        string
	BaseURL       string
	ClassifierCfg *model.ClassifierModelConfig
	RewriterCfg   *model.RewriterModelConfig
}

// Models holds the classifier and rewriter chat models.
type Models struct {
	Classifier *gemini.ChatModel
	Rewriter   *gemini.ChatModel
}

// NewModels creates both chat models against a shared Gemini client.
func NewModels(ctx context.Context, config ClientConfig) (*Models, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	classifierModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.ClassifierCfg.Model,
		Temperature: &config.ClassifierCfg.Temperature,
		MaxTokens:   &config.ClassifierCfg.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating classifier model")
		return nil, fmt.Errorf("error creating classifier model: %w", err)
	}

	rewriterModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.RewriterCfg.Model,
		Temperature: &config.RewriterCfg.Temperature,
		MaxTokens:   &config.RewriterCfg.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating rewriter model")
		return nil, fmt.Errorf("error creating rewriter model: %w", err)
	}

	return &Models{
		Classifier: classifierModel,
		Rewriter:   rewriterModel,
	}, nil
}
