package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lanternlabs/lantern/internal/domain"
)

const (
	// DefaultEmbeddingDimensions is the expected dimension of embeddings
	// from text-embedding-3-small
	DefaultEmbeddingDimensions = 1536

	defaultMaxConcurrency = 4
)

// Config holds the inference collaborator configuration. Model identities
// are injected at startup rather than compiled in.
type Config struct {
	APIKey              string
	BaseURL             string
	ChatModel           string
	VisionModel         string
	TranscriptionModel  string
	EmbeddingModel      string
	EmbeddingDimensions int
	// MaxConcurrency caps simultaneous in-flight inference calls against
	// the shared model server.
	MaxConcurrency int
}

// Client wraps the OpenAI-compatible API client and exposes the four
// inference capabilities: text generation, image description, speech
// transcription and embeddings. All calls are synchronous request/response.
type Client struct {
	api        *openai.Client
	cfg        Config
	dimensions int
	sem        chan struct{}
}

// NewClient creates a new inference client with the given configuration.
func NewClient(cfg Config) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}

	maxConcurrency := cfg.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = defaultMaxConcurrency
	}

	return &Client{
		api:        openai.NewClientWithConfig(apiCfg),
		cfg:        cfg,
		dimensions: dimensions,
		sem:        make(chan struct{}, maxConcurrency),
	}
}

// Chat sends one text-generation request with the given system prompt and
// message history and returns the raw reply text.
func (c *Client) Chat(ctx context.Context, systemPrompt string, history []domain.ChatTurn) (string, error) {
	if err := c.acquire(ctx); err != nil {
		return "", err
	}
	defer c.release()

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	for _, turn := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.cfg.ChatModel,
		Messages: messages,
	})
	if err != nil {
		return "", inferenceError("chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeInferenceUnavailable,
			"inference capability unavailable", errors.New("no choices returned"))
	}

	return resp.Choices[0].Message.Content, nil
}

// DescribeImage sends one vision request for the image at path with the
// given instruction prompt and returns the description text.
func (c *Client) DescribeImage(ctx context.Context, path, instruction string) (string, error) {
	if err := c.acquire(ctx); err != nil {
		return "", err
	}
	defer c.release()

	dataURL, err := encodeImageDataURL(path)
	if err != nil {
		return "", err
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.VisionModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: instruction},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
				},
			},
		},
	})
	if err != nil {
		return "", inferenceError("image description failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeInferenceUnavailable,
			"inference capability unavailable", errors.New("no choices returned"))
	}

	return resp.Choices[0].Message.Content, nil
}

// Transcribe sends one speech-to-text request for the audio file at path
// and returns the transcription text.
func (c *Client) Transcribe(ctx context.Context, path string) (string, error) {
	if err := c.acquire(ctx); err != nil {
		return "", err
	}
	defer c.release()

	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.cfg.TranscriptionModel,
		FilePath: path,
	})
	if err != nil {
		return "", inferenceError("audio transcription failed", err)
	}

	return resp.Text, nil
}

// Embed generates an embedding for the given text
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, domain.ErrEmptyText
	}

	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.cfg.EmbeddingModel),
	})
	if err != nil {
		return nil, inferenceError("embedding request failed", err)
	}
	if len(resp.Data) == 0 {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInferenceUnavailable,
			"inference capability unavailable", errors.New("no embedding data returned"))
	}

	embedding := resp.Data[0].Embedding
	if len(embedding) != c.dimensions {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation,
			fmt.Sprintf("embedding has wrong dimensions, expected %d got %d", c.dimensions, len(embedding)), nil)
	}

	return embedding, nil
}

func (c *Client) acquire(ctx context.Context) error {
	select {
	case c.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return inferenceError("inference call cancelled", ctx.Err())
	}
}

func (c *Client) release() {
	<-c.sem
}

// inferenceError maps transport failures to the domain inference taxonomy.
// Deadline expiry is a distinct, caller-visible timeout.
func inferenceError(message string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewDomainErrorWithCause(domain.ErrCodeInferenceTimeout, "inference call timed out", err)
	}
	return domain.NewDomainErrorWithCause(domain.ErrCodeInferenceUnavailable, "inference capability unavailable",
		fmt.Errorf("%s: %w", message, err))
}

func encodeImageDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", domain.ErrUploadNotFound
		}
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "image/jpeg"
	}

	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)), nil
}
