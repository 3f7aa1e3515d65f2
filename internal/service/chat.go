package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lanternlabs/lantern/internal/domain"
	"github.com/lanternlabs/lantern/internal/telemetry"
)

// ChatInput is one inbound persona chat message. History is owned by the
// caller and returned extended.
type ChatInput struct {
	WorkingMemory string
	History       []domain.ChatTurn
	Settings      domain.UserSettings
	MessageType   domain.ItemType
	MessageText   string
	Upload        *EntryUpload
}

// ChatResult is the persona reply plus the extended history
type ChatResult struct {
	Reply   string
	History []domain.ChatTurn
}

// ChatService handles persona chat messages. Inbound audio is transcribed
// and inbound images are described before the generation call, so the chat
// history stays purely textual.
type ChatService struct {
	transcoder Transcoder
	generator  *NarrativeGenerator
	uploads    UploadStore
	assets     MediaAssetRecorder
	timeout    time.Duration
}

// NewChatService creates a new ChatService instance. The asset recorder may
// be nil when no media archive is configured.
func NewChatService(
	transcoder Transcoder,
	generator *NarrativeGenerator,
	uploads UploadStore,
	assets MediaAssetRecorder,
	timeout time.Duration,
) *ChatService {
	return &ChatService{
		transcoder: transcoder,
		generator:  generator,
		uploads:    uploads,
		assets:     assets,
		timeout:    timeout,
	}
}

// ProcessMessage converts the inbound message to text, runs the persona
// chat generation and returns the reply with the history extended by the
// user message and the assistant reply, in order. Unlike entry media,
// a failed transcoding here fails the request: the message is the user's
// only content, not a subordinate fragment.
func (s *ChatService) ProcessMessage(ctx context.Context, input ChatInput) (*ChatResult, error) {
	if !domain.IsValidItemType(input.MessageType) {
		return nil, domain.ErrInvalidItemType
	}

	ctx, span := telemetry.StartSpan(ctx, "ChatService.ProcessMessage", telemetry.SpanAttributes{
		MessageType: string(input.MessageType),
		Operation:   "chat",
	})
	defer span.End()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	message, err := s.resolveMessage(ctx, input)
	if err != nil {
		return nil, err
	}

	reply, history, err := s.generator.Chat(ctx, input.Settings, input.WorkingMemory, input.History, message)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return &ChatResult{
		Reply:   reply,
		History: history,
	}, nil
}

func (s *ChatService) resolveMessage(ctx context.Context, input ChatInput) (string, error) {
	if input.MessageType == domain.ItemTypeText {
		if input.MessageText == "" {
			return "", domain.ErrMissingMessage
		}
		return input.MessageText, nil
	}

	if input.Upload == nil {
		return "", domain.ErrMissingMessage
	}

	path, err := s.uploads.SaveUpload(input.Upload.File, input.Upload.Filename)
	if err != nil {
		return "", fmt.Errorf("failed to save chat upload: %w", err)
	}

	recordMediaAsset(ctx, s.assets, *input.Upload, path)

	switch input.MessageType {
	case domain.ItemTypeAudio:
		return s.transcoder.TranscribeAudio(ctx, path)
	case domain.ItemTypeImage:
		text, err := s.transcoder.TranscribeImage(ctx, path)
		if err != nil {
			return "", err
		}
		return imageMarkerStart + " " + text + imageMarkerEnd, nil
	}

	return "", domain.ErrInvalidItemType
}
