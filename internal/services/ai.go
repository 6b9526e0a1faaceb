package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

var ErrAIServiceNotConfigured = errors.New("AI service is not configured")

// chatCompleter is the part of the OpenAI client the suggester uses.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// AIService turns free text into task drafts.
type AIService struct {
	client chatCompleter
	now    func() time.Time
}

// TaskDraft is a suggested task. Drafts are never persisted by the suggester.
type TaskDraft struct {
	Title    string     `json:"title"`
	Text     string     `json:"text"`
	Deadline *time.Time `json:"deadline"`
}

// NewAIService returns a service without a client when apiKey is empty.
func NewAIService(apiKey string) *AIService {
	s := &AIService{now: time.Now}
	if apiKey != "" {
		s.client = openai.NewClient(apiKey)
	}
	return s
}

// Enabled reports whether an API key was configured.
func (s *AIService) Enabled() bool {
	return s != nil && s.client != nil
}

// SuggestTasks extracts task drafts from text using OpenAI GPT
func (s *AIService) SuggestTasks(ctx context.Context, projectTitle, text string) ([]TaskDraft, error) {
	if !s.Enabled() {
		return nil, ErrAIServiceNotConfigured
	}

	currentTime := s.now().Format(time.RFC3339)
	prompt := fmt.Sprintf(`You extract actionable tasks for the project %q from the text below.

Current time: %s

Text:
%s

Reply with a JSON array of tasks:
[
  {
    "title": "short task title",
    "text": "what has to be done",
    "deadline": "deadline in RFC 3339, e.g. 2025-10-28T23:59:59Z, or null when none is stated"
  }
]

Rules:
- Return [] when the text contains no tasks
- Turn relative dates such as "tomorrow" or "next week" into absolute ones
- Reply with JSON only`, projectTitle, currentTime, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)

	var drafts []TaskDraft
	if err := json.Unmarshal([]byte(content), &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return drafts, nil
}

// stripCodeFence removes a surrounding ```json block some models add anyway.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
