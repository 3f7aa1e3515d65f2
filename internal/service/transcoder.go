package service

import (
	"context"
)

// imageInstructionPrompt asks the vision capability for an exhaustive
// description so the entry narrative loses as little as possible.
const imageInstructionPrompt = "Given the following, provide all the description you can as well as the " +
	"info in the image such that the image can be reproduced if need be. This is for extremely important " +
	"purposes, so do not omit any information and keep your answer long."

// VisionClient defines the interface for the image-description capability
type VisionClient interface {
	DescribeImage(ctx context.Context, path, instruction string) (string, error)
}

// SpeechClient defines the interface for the speech-to-text capability
type SpeechClient interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// MediaTranscoder converts one filesystem-resident media asset into a text
// fragment with a single blocking inference call. No retries happen at this
// layer; retry policy, if any, belongs to the caller.
type MediaTranscoder struct {
	vision VisionClient
	speech SpeechClient
}

// NewMediaTranscoder creates a new MediaTranscoder instance
func NewMediaTranscoder(vision VisionClient, speech SpeechClient) *MediaTranscoder {
	return &MediaTranscoder{
		vision: vision,
		speech: speech,
	}
}

// TranscribeImage describes the image at path as text
func (t *MediaTranscoder) TranscribeImage(ctx context.Context, path string) (string, error) {
	return t.vision.DescribeImage(ctx, path, imageInstructionPrompt)
}

// TranscribeAudio transcribes the audio recording at path as text
func (t *MediaTranscoder) TranscribeAudio(ctx context.Context, path string) (string, error) {
	return t.speech.Transcribe(ctx, path)
}
