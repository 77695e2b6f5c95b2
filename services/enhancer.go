package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	appconfig "promptforge/config"
	"promptforge/models"
	"promptforge/observability"
	"promptforge/repository"
)

// ErrAPIKeyMissing is returned when the requesting user has no stored
// credential for the completion provider. The message is user-facing.
var ErrAPIKeyMissing = errors.New("OpenAI API key not found. Please add your API key in settings.")

// completionClient defines the OpenAI surface the enhancer uses (for testing)
type completionClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
	CreateTranscription(ctx context.Context, params openai.AudioTranscriptionNewParams) (*openai.Transcription, error)
}

// openaiClientWrapper wraps the openai.Client to implement our interface
type openaiClientWrapper struct {
	client openai.Client
}

func (w *openaiClientWrapper) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return w.client.Chat.Completions.New(ctx, params)
}

func (w *openaiClientWrapper) CreateTranscription(ctx context.Context, params openai.AudioTranscriptionNewParams) (*openai.Transcription, error) {
	return w.client.Audio.Transcriptions.New(ctx, params)
}

// newOpenAIClient builds a client for one user's stored credential.
// Clients are cheap to construct, so one per request is fine.
func newOpenAIClient(apiKey string) completionClient {
	return &openaiClientWrapper{client: openai.NewClient(option.WithAPIKey(apiKey))}
}

// APIKeyStore is the credential lookup the enhancer depends on
type APIKeyStore interface {
	GetAPIKey(ctx context.Context, userID int64, provider string) (*models.APIKey, error)
}

// EnhanceRequest carries one enhancement call's inputs. UserID is used
// solely to look up that user's stored credential.
type EnhanceRequest struct {
	UserID     int64
	Input      string
	Tool       models.AITool
	PromptType models.PromptType
	ImageURL   string
	VoiceURL   string
	Context    string
}

// Enhancer builds tool-specific instructions and calls the completion API
// with the requesting user's stored credential.
type Enhancer struct {
	keys        APIKeyStore
	newClient   func(apiKey string) completionClient
	httpClient  *http.Client
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
}

// NewEnhancer creates an Enhancer from configuration
func NewEnhancer(cfg *appconfig.Config, keys APIKeyStore) *Enhancer {
	timeout := time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second
	return &Enhancer{
		keys:        keys,
		newClient:   newOpenAIClient,
		httpClient:  &http.Client{Timeout: timeout},
		model:       cfg.OpenAI.Model,
		temperature: cfg.OpenAI.Temperature,
		maxTokens:   cfg.OpenAI.MaxTokens,
		timeout:     timeout,
	}
}

// Enhance runs the full pipeline: credential lookup, instruction
// selection, optional image/voice handling, completion call.
func (s *Enhancer) Enhance(ctx context.Context, req EnhanceRequest) (string, error) {
	metrics := observability.GetMetrics()
	metrics.RecordEnhancement(string(req.Tool), string(req.PromptType))
	timer := metrics.NewTimer()

	key, err := s.keys.GetAPIKey(ctx, req.UserID, models.ProviderOpenAI)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrAPIKeyMissing
		}
		return "", fmt.Errorf("failed to look up api key: %w", err)
	}

	instruction, err := SystemInstruction(req.Tool, req.PromptType, req.Context)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	client := s.newClient(key.APIKey)

	userMessage, err := s.buildUserMessage(ctx, client, req)
	if err != nil {
		timer.ObserveEnhancement(string(req.Tool), "error")
		metrics.RecordEnhancementError(string(req.Tool), categorizeAPIError(err))
		return "", err
	}

	text, err := s.complete(ctx, client, instruction, userMessage)
	if err != nil {
		timer.ObserveEnhancement(string(req.Tool), "error")
		metrics.RecordEnhancementError(string(req.Tool), categorizeAPIError(err))
		return "", err
	}

	timer.ObserveEnhancement(string(req.Tool), "success")
	return text, nil
}

// buildUserMessage shapes the single user turn. An image takes precedence
// over voice; voice is transcribed first and the transcript concatenated
// with the original text.
func (s *Enhancer) buildUserMessage(ctx context.Context, client completionClient, req EnhanceRequest) (openai.ChatCompletionMessageParamUnion, error) {
	if req.ImageURL != "" {
		return openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
			openai.TextContentPart("I'm also providing a screenshot for context. Please analyze it and incorporate relevant details into the enhanced prompt."),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: req.ImageURL}),
			openai.TextContentPart(req.Input),
		}), nil
	}

	if req.VoiceURL != "" {
		transcript, err := s.transcribe(ctx, client, req.VoiceURL)
		if err != nil {
			return openai.ChatCompletionMessageParamUnion{}, err
		}
		return openai.UserMessage(fmt.Sprintf("Voice Input Transcription:\n%s\n\nOriginal Text:\n%s", transcript, req.Input)), nil
	}

	return openai.UserMessage(req.Input), nil
}

// transcribe fetches the voice clip and runs it through the provider's
// speech-to-text endpoint. The fetch is retried; the transcription call
// itself goes through the circuit breaker like every provider call.
func (s *Enhancer) transcribe(ctx context.Context, client completionClient, voiceURL string) (string, error) {
	var clip []byte
	err := WithRetry(ctx, DefaultRetryConfig, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, voiceURL, nil)
		if err != nil {
			return err
		}
		resp, err := s.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d fetching voice clip", resp.StatusCode)
		}
		clip, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to fetch voice clip: %w", err)
	}

	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerOpenAI, "transcribe")
	timer := metrics.NewTimer()

	transcription, err := WithCircuitBreaker(ctx, BreakerOpenAI, func() (*openai.Transcription, error) {
		return client.CreateTranscription(ctx, openai.AudioTranscriptionNewParams{
			Model: openai.AudioModelWhisper1,
			File:  openai.File(bytes.NewReader(clip), "voice-input.webm", "application/octet-stream"),
		})
	})

	timer.ObserveExternalAPI(BreakerOpenAI, "transcribe")
	if err != nil {
		metrics.RecordExternalAPIError(BreakerOpenAI, "transcribe", categorizeAPIError(err))
		return "", fmt.Errorf("failed to transcribe voice input: %w", err)
	}

	return transcription.Text, nil
}

// complete sends the single-turn exchange to the completion API
func (s *Enhancer) complete(ctx context.Context, client completionClient, instruction string, userMessage openai.ChatCompletionMessageParamUnion) (string, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerOpenAI, "enhance")
	timer := metrics.NewTimer()

	result, err := WithCircuitBreaker(ctx, BreakerOpenAI, func() (string, error) {
		params := openai.ChatCompletionNewParams{
			Model:       shared.ChatModel(s.model),
			Temperature: openai.Float(s.temperature),
			MaxTokens:   openai.Int(int64(s.maxTokens)),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(instruction),
				userMessage,
			},
		}

		completion, err := client.CreateChatCompletion(ctx, params)
		if err != nil {
			return "", fmt.Errorf("failed to invoke OpenAI: %w", err)
		}

		if len(completion.Choices) == 0 {
			return "", fmt.Errorf("empty response from OpenAI")
		}

		return completion.Choices[0].Message.Content, nil
	})

	timer.ObserveExternalAPI(BreakerOpenAI, "enhance")
	if err != nil {
		metrics.RecordExternalAPIError(BreakerOpenAI, "enhance", categorizeAPIError(err))
	}
	return result, err
}

// categorizeAPIError categorizes an error for metrics purposes
func categorizeAPIError(err error) string {
	if err == nil {
		return "none"
	}
	errStr := err.Error()
	switch {
	case containsAny(errStr, "timeout", "deadline"):
		return "timeout"
	case containsAny(errStr, "rate limit", "429"):
		return "rate_limit"
	case containsAny(errStr, "unauthorized", "401"):
		return "auth_error"
	case containsAny(errStr, "connection", "network"):
		return "connection_error"
	default:
		return "unknown"
	}
}

// containsAny checks if the string contains any of the substrings
func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
