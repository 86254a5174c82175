// Package predictor реализует клиент внешнего сервиса генерации предсказаний
// поверх OpenAI-совместимого API. Сервис вызывается строго после успешной
// записи использования; его отказ не является нарушением политики.
package predictor

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/magabrotheeeer/trial-gatekeeper/internal/config"
)

const systemPrompt = "You are a concise AI prediction assistant. " +
	"Given a prompt, produce a short, confident prediction."

// Client обращается к OpenAI-совместимому API за текстом предсказания.
type Client struct {
	api   *openai.Client
	model string
}

// New создаёт клиент по настройкам из конфига. Пустой base_url означает
// основной API OpenAI.
func New(cfg config.OpenAI) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Client{
		api:   openai.NewClientWithConfig(clientConfig),
		model: model,
	}
}

// Generate возвращает текст предсказания для заданного запроса.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	const op = "predictor.Generate"
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: empty response", op)
	}
	return resp.Choices[0].Message.Content, nil
}
