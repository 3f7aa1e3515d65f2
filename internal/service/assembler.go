package service

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/lanternlabs/lantern/internal/domain"
)

const (
	imageMarkerStart = "<image transcription start>"
	imageMarkerEnd   = "<image transcription end>"
	audioMarkerStart = "<audio transcription start>"
	audioMarkerEnd   = "<audio transcription end>"
)

// Transcoder defines the interface for media-to-text conversion
type Transcoder interface {
	TranscribeImage(ctx context.Context, path string) (string, error)
	TranscribeAudio(ctx context.Context, path string) (string, error)
}

// EntryAssembler merges an ordered list of heterogeneous entry items into
// one narrative text. Each item owns a preallocated result slot indexed by
// its submitted position, so concurrent transcoding cannot disturb ordering:
// for all i<j, item i's fragment precedes item j's fragment in the output
// regardless of completion order.
type EntryAssembler struct {
	transcoder Transcoder
}

// NewEntryAssembler creates a new EntryAssembler instance
func NewEntryAssembler(transcoder Transcoder) *EntryAssembler {
	return &EntryAssembler{transcoder: transcoder}
}

// Assemble produces the assembled entry text for the given items. Text
// items are filled synchronously; image and audio items are transcoded
// concurrently, each goroutine writing only its own slot. An item whose
// upload is missing, or whose transcoding call fails, resolves to an empty
// fragment rather than failing the whole entry. Every slot is followed by a
// blank line separator.
func (a *EntryAssembler) Assemble(ctx context.Context, items []domain.EntryItem) string {
	slots := make([]string, len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		switch item.Type {
		case domain.ItemTypeText:
			slots[i] = item.Text
		case domain.ItemTypeImage, domain.ItemTypeAudio:
			if item.LocalPath == "" {
				// missing upload: empty fragment
				continue
			}
			wg.Add(1)
			go func(i int, item domain.EntryItem) {
				defer wg.Done()
				slots[i] = a.transcodeFragment(ctx, item)
			}(i, item)
		}
	}
	wg.Wait()

	var b strings.Builder
	for _, slot := range slots {
		b.WriteString(slot)
		b.WriteString("\n\n")
	}
	return b.String()
}

func (a *EntryAssembler) transcodeFragment(ctx context.Context, item domain.EntryItem) string {
	var text string
	var err error

	switch item.Type {
	case domain.ItemTypeImage:
		text, err = a.transcoder.TranscribeImage(ctx, item.LocalPath)
	case domain.ItemTypeAudio:
		text, err = a.transcoder.TranscribeAudio(ctx, item.LocalPath)
	}
	if err != nil {
		// availability over completeness for subordinate media
		log.Printf("transcoding item %d (%s) failed, substituting empty fragment: %v", item.Index, item.Type, err)
		return ""
	}

	switch item.Type {
	case domain.ItemTypeImage:
		return imageMarkerStart + " " + text + imageMarkerEnd
	case domain.ItemTypeAudio:
		return audioMarkerStart + " " + text + audioMarkerEnd
	}
	return ""
}
