package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ollama/ollama/api"
	"github.com/promptdir/backend/internal/config"
	"github.com/promptdir/backend/internal/models"
	"github.com/promptdir/backend/pkg/logger"
	"github.com/promptdir/backend/pkg/response"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
	"gorm.io/gorm"
)

// ExecuteService runs an approved prompt against a configured AI provider
// and records the run.
type ExecuteService struct {
	db         *gorm.DB
	config     *config.AIConfig
	prompts    *PromptService
	llmConfigs *LLMConfigService
}

func NewExecuteService(db *gorm.DB, cfg *config.AIConfig) *ExecuteService {
	return &ExecuteService{
		db:         db,
		config:     cfg,
		prompts:    NewPromptService(db),
		llmConfigs: NewLLMConfigService(db),
	}
}

// ExecuteRequest is the run payload. Input is appended to the prompt
// content as the user's material to work on.
type ExecuteRequest struct {
	PromptID string `json:"-"`
	Input    string `json:"input"`
}

// ExecuteResult carries the provider's output and which config answered.
type ExecuteResult struct {
	Output string `json:"output"`
	Model  string `json:"model"`
}

// Execute runs the prompt through the configured providers in fallback
// order. Only approved prompts are runnable. Each successful run is
// recorded and bumps the prompt's execution counter.
func (s *ExecuteService) Execute(ctx context.Context, req *ExecuteRequest, subjectID string) (*ExecuteResult, error) {
	prompt, err := s.prompts.GetByID(req.PromptID)
	if err != nil {
		return nil, err
	}
	if prompt.Status != models.PromptStatusApproved {
		return nil, response.NewNotFound("prompt not found")
	}

	text := prompt.Content
	if input := strings.TrimSpace(req.Input); input != "" {
		text = text + "\n\n" + input
	}

	configs, err := s.orderedConfigs()
	if err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return nil, response.NewServerError("no AI provider configured")
	}

	var lastErr error
	for i, llmConfig := range configs {
		logger.Infof("[Execute] Attempting provider %d/%d: %s (model: %s)", i+1, len(configs), llmConfig.Name, llmConfig.Model)

		output, err := s.callProvider(ctx, &llmConfig, text)
		if err != nil {
			lastErr = err
			logger.Warnf("[Execute] Provider %s failed: %v", llmConfig.Name, err)
			continue
		}

		s.recordExecution(req.PromptID, subjectID, llmConfig.Model)
		return &ExecuteResult{Output: output, Model: llmConfig.Model}, nil
	}

	return nil, fmt.Errorf("all providers failed, last error: %w", lastErr)
}

// orderedConfigs returns the active provider configs, falling back to the
// static config from the environment when none are stored.
func (s *ExecuteService) orderedConfigs() ([]models.LLMConfig, error) {
	configs, err := s.llmConfigs.GetOrderedActive()
	if err != nil {
		return nil, err
	}
	if len(configs) == 0 && s.config.APIKey != "" {
		configs = append(configs, models.LLMConfig{
			Name:    "fallback",
			BaseURL: s.config.BaseURL,
			APIKey:  s.config.APIKey,
			Model:   s.config.Model,
		})
	}
	return configs, nil
}

// recordExecution stores the run and bumps the execution counter. Failures
// here do not fail the run itself.
func (s *ExecuteService) recordExecution(promptID, subjectID, model string) {
	var userID *string
	if subjectID != "" {
		userID = &subjectID
	}
	execution := models.PromptExecution{PromptID: promptID, UserID: userID, Model: model}
	if err := s.db.Create(&execution).Error; err != nil {
		logger.Errorf("[Execute] Failed to record execution: %v", err)
	}
	if _, err := s.prompts.IncrementExecutionCount(promptID, 1); err != nil {
		logger.Errorf("[Execute] Failed to bump execution count: %v", err)
	}
}

// callProvider dispatches on the config's provider field.
func (s *ExecuteService) callProvider(ctx context.Context, llmConfig *models.LLMConfig, text string) (string, error) {
	switch llmConfig.Provider {
	case "anthropic":
		return s.callAnthropic(ctx, llmConfig, text)
	case "ollama":
		return s.callOllama(ctx, llmConfig, text)
	case "gemini":
		return s.callGemini(ctx, llmConfig, text)
	default:
		// openai and OpenAI-compatible endpoints
		return s.callOpenAI(ctx, llmConfig, text)
	}
}

func (s *ExecuteService) callOpenAI(ctx context.Context, llmConfig *models.LLMConfig, text string) (string, error) {
	clientConfig := openai.DefaultConfig(llmConfig.APIKey)
	if llmConfig.BaseURL != "" {
		clientConfig.BaseURL = llmConfig.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	temperature := float32(0.7)
	if llmConfig.Temperature > 0 {
		temperature = float32(llmConfig.Temperature)
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: llmConfig.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *ExecuteService) callAnthropic(ctx context.Context, llmConfig *models.LLMConfig, text string) (string, error) {
	client := anthropic.NewClient(
		option.WithAPIKey(llmConfig.APIKey),
	)

	maxTokens := int64(llmConfig.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 2048
	}

	resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(llmConfig.Model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("Anthropic API error: %w", err)
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	return content.String(), nil
}

func (s *ExecuteService) callOllama(ctx context.Context, llmConfig *models.LLMConfig, text string) (string, error) {
	baseURL := llmConfig.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid Ollama base URL: %w", err)
	}
	client := api.NewClient(u, http.DefaultClient)

	var content strings.Builder
	err = client.Chat(ctx, &api.ChatRequest{
		Model: llmConfig.Model,
		Messages: []api.Message{
			{Role: "user", Content: text},
		},
		Options: map[string]interface{}{
			"temperature": llmConfig.Temperature,
		},
	}, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("Ollama API error: %w", err)
	}
	return content.String(), nil
}

func (s *ExecuteService) callGemini(ctx context.Context, llmConfig *models.LLMConfig, text string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: llmConfig.APIKey,
	})
	if err != nil {
		return "", fmt.Errorf("Gemini client error: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, llmConfig.Model, genai.Text(text), nil)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	return resp.Text(), nil
}
