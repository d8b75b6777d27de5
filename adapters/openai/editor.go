// Package openai implements the transcript editor over an OpenAI-compatible
// chat completion endpoint, with Azure OpenAI deployments supported through
// the same client.
package openai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/voiceforge/voiceforge/domain/repositories"
	"github.com/voiceforge/voiceforge/internal/config"
)

const (
	defaultModel     = "gpt-35-turbo"
	defaultFormality = "neutral"
	editTemperature  = 0.3
	maxTokens        = 4000

	// chunkThreshold is a rough character estimate of when one request stops
	// fitting; longer transcripts are edited paragraph-chunk by chunk.
	chunkThreshold = maxTokens * 2
)

// Editor rewrites transcripts via chat completions.
type Editor struct {
	client     *openai.Client
	deployment string
	logger     *zap.Logger
}

// Ensure Editor implements the TranscriptEditor interface
var _ repositories.TranscriptEditor = (*Editor)(nil)

// NewEditor creates an editor from the OpenAI config. When an Azure endpoint
// and deployment are configured the Azure OpenAI surface is used, otherwise
// the plain OpenAI-compatible API.
func NewEditor(cfg config.OpenAI, logger *zap.Logger) (*Editor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var clientConfig openai.ClientConfig
	deployment := ""
	if cfg.Azure() {
		clientConfig = openai.DefaultAzureConfig(cfg.APIKey, cfg.AzureEndpoint)
		if cfg.APIVersion != "" {
			clientConfig.APIVersion = cfg.APIVersion
		}
		deployment = cfg.Deployment
	} else {
		clientConfig = openai.DefaultConfig(cfg.APIKey)
	}

	return &Editor{
		client:     openai.NewClientWithConfig(clientConfig),
		deployment: deployment,
		logger:     logger,
	}, nil
}

// Improve rewrites the transcript according to opts, chunking long inputs so
// each request stays within the token budget.
func (e *Editor) Improve(ctx context.Context, transcript string, opts repositories.EditOptions) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", fmt.Errorf("transcript is empty")
	}

	model := e.deployment
	if model == "" {
		model = opts.Model
	}
	if model == "" {
		model = defaultModel
	}

	prompt := systemPrompt(opts)

	if len(transcript) <= chunkThreshold {
		return e.edit(ctx, model, prompt, transcript)
	}

	e.logger.Info("transcript is long, editing in chunks",
		zap.Int("chars", len(transcript)))

	chunks := splitTranscript(transcript, chunkThreshold)
	chunkPrompt := prompt + "\nNote: this is part of a longer transcript. Improve this section while keeping it consistent with the whole."

	edited := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		out, err := e.edit(ctx, model, chunkPrompt, chunk)
		if err != nil {
			return "", fmt.Errorf("failed to edit transcript chunk: %w", err)
		}
		edited = append(edited, out)
	}
	return strings.Join(edited, "\n\n"), nil
}

func (e *Editor) edit(ctx context.Context, model, prompt, text string) (string, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: "Please improve this transcript:\n\n" + text},
		},
		Temperature: editTemperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// systemPrompt builds the editing instruction from the options.
func systemPrompt(opts repositories.EditOptions) string {
	formality := opts.Formality
	if formality == "" {
		formality = defaultFormality
	}

	prompt := fmt.Sprintf(`You are an expert transcript editor. Your task is to improve a transcript by:
1. Fixing grammar and spelling errors
2. Making sentences clearer and more coherent
3. Removing filler words and verbal tics (um, uh, like, you know)
4. Maintaining a %s tone
5. IMPORTANT: Preserving the main points and meaning of the original text
6. IMPORTANT: Keeping approximately the same length as the original

The transcript should sound natural and flow well when read aloud.
`, formality)

	if opts.PreserveSpeakers {
		prompt += "\nMaintain all speaker labels and turns of speech exactly as in the original."
	}
	return prompt
}

// splitTranscript groups paragraphs (or lines when there are no blank-line
// breaks) into chunks no longer than limit characters each.
func splitTranscript(transcript string, limit int) []string {
	separator := "\n\n"
	if !strings.Contains(transcript, separator) {
		separator = "\n"
	}
	parts := strings.Split(transcript, separator)

	var (
		chunks  []string
		current []string
		length  int
	)
	for _, part := range parts {
		if length+len(part) > limit && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = current[:0]
			length = 0
		}
		current = append(current, part)
		length += len(part)
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}
	return chunks
}
