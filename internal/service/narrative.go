package service

import (
	"context"
	"strings"

	"github.com/lanternlabs/lantern/internal/domain"
)

const (
	titleTagOpen    = "<title>"
	titleTagClose   = "</title>"
	summaryTagOpen  = "<summary>"
	summaryTagClose = "</summary>"
)

// GenerationClient defines the interface for the text-generation capability
type GenerationClient interface {
	Chat(ctx context.Context, systemPrompt string, history []domain.ChatTurn) (string, error)
}

// NarrativeGenerator produces persona-voiced titles and summaries for
// journal entries, short titles for plain notes, and chat replies.
type NarrativeGenerator struct {
	client GenerationClient
}

// NewNarrativeGenerator creates a new NarrativeGenerator instance
func NewNarrativeGenerator(client GenerationClient) *NarrativeGenerator {
	return &NarrativeGenerator{client: client}
}

// Generate sends the assembled entry prompt to the text-generation
// capability under the narrator persona and returns the raw response text.
func (g *NarrativeGenerator) Generate(ctx context.Context, settings domain.UserSettings, promptText string) (string, error) {
	return g.client.Chat(ctx, NarratorSystemPrompt(settings), []domain.ChatTurn{
		{Role: domain.ChatRoleUser, Content: promptText},
	})
}

// GenerateTitle produces a short title for plain note content.
func (g *NarrativeGenerator) GenerateTitle(ctx context.Context, content string) (string, error) {
	title, err := g.client.Chat(ctx, titleSystemPrompt, []domain.ChatTurn{
		{Role: domain.ChatRoleUser, Content: content},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(title), nil
}

// Chat sends the persona chat prompt with the verbatim history plus the new
// user message. It returns the raw reply and the history extended with the
// user message and the assistant reply appended in order.
func (g *NarrativeGenerator) Chat(
	ctx context.Context,
	settings domain.UserSettings,
	workingMemory string,
	history []domain.ChatTurn,
	message string,
) (string, []domain.ChatTurn, error) {
	turns := make([]domain.ChatTurn, 0, len(history)+2)
	turns = append(turns, history...)
	turns = append(turns, domain.ChatTurn{Role: domain.ChatRoleUser, Content: message})

	reply, err := g.client.Chat(ctx, ChatSystemPrompt(settings, workingMemory), turns)
	if err != nil {
		return "", nil, err
	}

	updated := append(turns, domain.ChatTurn{Role: domain.ChatRoleAssistant, Content: reply})
	return reply, updated, nil
}

// ParseTitleSummary extracts the first title and summary tag pairs from a
// generation response and trims the inner text. A missing pair is a
// correctness bug in the upstream capability's output, so it fails with
// ErrMalformedGenerationOutput rather than returning partial data.
func ParseTitleSummary(raw string) (string, string, error) {
	title, ok := extractFirstTagPair(raw, titleTagOpen, titleTagClose)
	if !ok {
		return "", "", domain.ErrMalformedGenerationOutput
	}

	summary, ok := extractFirstTagPair(raw, summaryTagOpen, summaryTagClose)
	if !ok {
		return "", "", domain.ErrMalformedGenerationOutput
	}

	return strings.TrimSpace(title), strings.TrimSpace(summary), nil
}

// RenderTitleSummaryTags is the inverse of ParseTitleSummary for title and
// summary strings that do not contain the tag delimiters.
func RenderTitleSummaryTags(title, summary string) string {
	return titleTagOpen + title + titleTagClose + summaryTagOpen + summary + summaryTagClose
}

func extractFirstTagPair(raw, open, close string) (string, bool) {
	start := strings.Index(raw, open)
	if start < 0 {
		return "", false
	}
	rest := raw[start+len(open):]

	end := strings.Index(rest, close)
	if end < 0 {
		return "", false
	}

	return rest[:end], true
}
