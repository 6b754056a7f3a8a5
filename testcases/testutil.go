// Package testcases runs the wizard against a real model. The tests are
// skipped unless TRIPWIZARD_RUN_LIVE_TESTS=1 and an llm.api_key is configured.
package testcases

import (
	"context"
	"os"
	"testing"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/tbxark/tripwizard"
	"github.com/tbxark/tripwizard/config"
	"github.com/tbxark/tripwizard/enrich"
	"github.com/tbxark/tripwizard/submit"
)

func InitChatModel(t *testing.T) *openai.ChatModel {
	t.Helper()
	if os.Getenv("TRIPWIZARD_RUN_LIVE_TESTS") != "1" {
		t.Skip("set TRIPWIZARD_RUN_LIVE_TESTS=1 to run live LLM tests")
		return nil
	}
	cfg, err := config.Load("..", "../configs")
	if err != nil {
		t.Skipf("failed to load config: %v", err)
		return nil
	}
	if cfg.LLM.APIKey == "" {
		t.Skip("llm.api_key is empty")
		return nil
	}
	chatModel, err := openai.NewChatModel(context.Background(), &openai.ChatModelConfig{
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.LLM.Timeout,
	})
	if err != nil {
		t.Fatalf("failed to init chat model: %v", err)
		return nil
	}
	return chatModel
}

// NewTestAssistant wires the model-backed parser and generator with an
// in-memory trip store.
func NewTestAssistant(t *testing.T) (*tripwizard.Assistant, *submit.MemoryTripStore) {
	t.Helper()
	chatModel := InitChatModel(t)
	parser, err := enrich.NewToolBasedIntentParser(chatModel)
	if err != nil {
		t.Fatalf("failed to create intent parser: %v", err)
	}
	generator, err := enrich.NewToolBasedProgramGenerator(chatModel)
	if err != nil {
		t.Fatalf("failed to create programme generator: %v", err)
	}
	store := submit.NewMemoryTripStore()
	pipeline := submit.NewPipeline(
		submit.NewPricingEnricher(nil),
		submit.NewHTMLPreviewRenderer(submit.Agency{Name: "Live Test Travel"}, submit.StyleClassic),
		store,
	)
	assistant, err := tripwizard.New(parser, generator, pipeline)
	if err != nil {
		t.Fatalf("failed to create assistant: %v", err)
	}
	return assistant, store
}
