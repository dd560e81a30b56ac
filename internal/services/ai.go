package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// TaskDraft is a suggested task. Drafts are never stored.
type TaskDraft struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	TimeLimitSeconds int64  `json:"time_limit_seconds"`
}

// TaskDrafter turns free text into task drafts.
type TaskDrafter interface {
	DraftTasks(ctx context.Context, text string) ([]TaskDraft, error)
}

// AIService drafts tasks with the OpenAI chat completion API.
type AIService struct {
	client *openai.Client
	model  string
}

func NewAIService(apiKey string) *AIService {
	return NewAIServiceWithConfig(openai.DefaultConfig(apiKey))
}

// NewAIServiceWithConfig allows a custom base URL or HTTP client.
func NewAIServiceWithConfig(cfg openai.ClientConfig) *AIService {
	return &AIService{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.GPT4o,
	}
}

const draftPrompt = `You help a group split chores and errands into tasks.
Extract concrete tasks from the text below.

Text:
%s

Answer with a JSON array only, no prose:
[
  {
    "name": "short task name",
    "description": "what has to be done",
    "time_limit_seconds": 3600
  }
]

Rules:
- Return [] when the text contains no task.
- time_limit_seconds is how long the receiver has after accepting; use 0 when the text gives no hint.`

// DraftTasks asks the model for drafts extracted from text.
func (s *AIService) DraftTasks(ctx context.Context, text string) ([]TaskDraft, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: fmt.Sprintf(draftPrompt, text),
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseDrafts(resp.Choices[0].Message.Content)
}

// parseDrafts accepts the bare JSON array, optionally inside a markdown fence.
func parseDrafts(content string) ([]TaskDraft, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var drafts []TaskDraft
	if err := json.Unmarshal([]byte(content), &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}
	return drafts, nil
}
