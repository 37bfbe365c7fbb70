package dialogue

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const empathySystemPrompt = "Você é o assistente de recepção de uma clínica de fisioterapia. " +
	"O paciente acabou de descrever a queixa dele. Responda com UMA frase curta, " +
	"acolhedora e em português, sem perguntas, sem conselhos médicos e sem emojis em excesso."

// OpenAIEmpathy generates the optional empathetic acknowledgement via the
// OpenAI chat API. It is decoration: callers drop the result on any error or
// timeout.
type OpenAIEmpathy struct {
	client  *openai.Client
	timeout time.Duration
}

// NewOpenAIEmpathy builds the generator. Returns nil when no API key is set,
// which the engine treats as "feature off".
func NewOpenAIEmpathy(apiKey string, timeout time.Duration) *OpenAIEmpathy {
	if apiKey == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 900 * time.Millisecond
	}
	return &OpenAIEmpathy{client: openai.NewClient(apiKey), timeout: timeout}
}

// Acknowledge implements EmpathyGenerator.
func (g *OpenAIEmpathy) Acknowledge(ctx context.Context, complaint string) (string, error) {
	if g == nil {
		return "", errors.New("dialogue: empathy generator not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     openai.GPT4oMini,
		MaxTokens: 60,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: empathySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: complaint},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("dialogue: empty completion")
	}
	// One line only; the prompt flow continues right after it.
	line, _, _ := strings.Cut(strings.TrimSpace(resp.Choices[0].Message.Content), "\n")
	return line, nil
}
