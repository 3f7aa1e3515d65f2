package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lanternlabs/lantern/internal/domain"
)

// fakeTranscoder resolves media paths to canned fragments, optionally after
// a per-path delay to simulate uneven inference latency.
type fakeTranscoder struct {
	mu       sync.Mutex
	images   map[string]string
	audio    map[string]string
	delays   map[string]time.Duration
	failures map[string]error
	calls    []string
}

func newFakeTranscoder() *fakeTranscoder {
	return &fakeTranscoder{
		images:   make(map[string]string),
		audio:    make(map[string]string),
		delays:   make(map[string]time.Duration),
		failures: make(map[string]error),
	}
}

func (f *fakeTranscoder) TranscribeImage(ctx context.Context, path string) (string, error) {
	return f.resolve(path, f.images)
}

func (f *fakeTranscoder) TranscribeAudio(ctx context.Context, path string) (string, error) {
	return f.resolve(path, f.audio)
}

func (f *fakeTranscoder) resolve(path string, table map[string]string) (string, error) {
	if d, ok := f.delays[path]; ok {
		time.Sleep(d)
	}

	f.mu.Lock()
	f.calls = append(f.calls, path)
	f.mu.Unlock()

	if err, ok := f.failures[path]; ok {
		return "", err
	}
	return table[path], nil
}

func TestEntryAssembler_Assemble(t *testing.T) {
	ctx := context.Background()

	t.Run("interleaves text and media fragments in submitted order", func(t *testing.T) {
		tc := newFakeTranscoder()
		tc.images["/tmp/ball.jpg"] = "a red ball"

		assembler := NewEntryAssembler(tc)
		items := []domain.EntryItem{
			{Index: 0, Type: domain.ItemTypeText, Text: "Hello"},
			{Index: 1, Type: domain.ItemTypeImage, FieldName: "file_1", LocalPath: "/tmp/ball.jpg"},
			{Index: 2, Type: domain.ItemTypeText, Text: "World"},
		}

		got := assembler.Assemble(ctx, items)

		want := "Hello\n\n<image transcription start> a red ball<image transcription end>\n\nWorld\n\n"
		assert.Equal(t, want, got)
	})

	t.Run("preserves order regardless of transcoding completion order", func(t *testing.T) {
		tc := newFakeTranscoder()

		var items []domain.EntryItem
		for i := 0; i < 8; i++ {
			path := fmt.Sprintf("/tmp/audio_%d.m4a", i)
			tc.audio[path] = fmt.Sprintf("fragment %d", i)
			// earlier items finish last
			tc.delays[path] = time.Duration(8-i) * 10 * time.Millisecond
			items = append(items, domain.EntryItem{
				Index:     i,
				Type:      domain.ItemTypeAudio,
				FieldName: fmt.Sprintf("file_%d", i),
				LocalPath: path,
			})
		}

		assembler := NewEntryAssembler(tc)
		got := assembler.Assemble(ctx, items)

		var want strings.Builder
		for i := 0; i < 8; i++ {
			fmt.Fprintf(&want, "<audio transcription start> fragment %d<audio transcription end>\n\n", i)
		}
		assert.Equal(t, want.String(), got)
	})

	t.Run("missing upload resolves to empty fragment", func(t *testing.T) {
		tc := newFakeTranscoder()
		assembler := NewEntryAssembler(tc)

		items := []domain.EntryItem{
			{Index: 0, Type: domain.ItemTypeText, Text: "before"},
			{Index: 1, Type: domain.ItemTypeImage, FieldName: "file_1"},
			{Index: 2, Type: domain.ItemTypeText, Text: "after"},
		}

		got := assembler.Assemble(ctx, items)

		assert.Equal(t, "before\n\n\n\nafter\n\n", got)
		assert.Empty(t, tc.calls)
	})

	t.Run("transcoding failure resolves to empty fragment without markers", func(t *testing.T) {
		tc := newFakeTranscoder()
		tc.failures["/tmp/broken.jpg"] = errors.New("vision capability down")

		assembler := NewEntryAssembler(tc)
		items := []domain.EntryItem{
			{Index: 0, Type: domain.ItemTypeText, Text: "still here"},
			{Index: 1, Type: domain.ItemTypeImage, FieldName: "file_1", LocalPath: "/tmp/broken.jpg"},
		}

		got := assembler.Assemble(ctx, items)

		assert.Equal(t, "still here\n\n\n\n", got)
		assert.NotContains(t, got, "<image transcription start>")
	})

	t.Run("empty item list produces empty output", func(t *testing.T) {
		assembler := NewEntryAssembler(newFakeTranscoder())
		assert.Equal(t, "", assembler.Assemble(ctx, nil))
	})
}
