package service

import (
	"strings"

	"github.com/lanternlabs/lantern/internal/domain"
)

// NoHistorySentinel is emitted in place of the old-summaries block when no
// prior summaries exist, distinguishing "no history" from "history present
// but empty" downstream.
const NoHistorySentinel = "Not available."

const (
	oldSummariesHeader = "Previous diary summaries:"
	currentEntryHeader = "Current diary entry"
)

// BuildEntryPrompt renders prior summaries and the new entry into a single
// structured prompt: old-summaries block, blank-line separator, then the
// current-entry block with a human-readable timestamp. The caller-supplied
// summary order is trusted and not re-sorted.
func BuildEntryPrompt(priorSummaries []domain.SummaryRecord, entryText string, timestamp *int64) string {
	var b strings.Builder

	b.WriteString(oldSummariesHeader)
	b.WriteString("\n")
	if len(priorSummaries) == 0 {
		b.WriteString(NoHistorySentinel)
		b.WriteString("\n")
	} else {
		for _, record := range priorSummaries {
			b.WriteString(record.Timestamp)
			b.WriteString("\n<title>")
			b.WriteString(record.Title)
			b.WriteString("</title><summary>")
			b.WriteString(record.Summary)
			b.WriteString("</summary>\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(currentEntryHeader)
	if formatted := domain.FormatEpochMillis(timestamp); formatted != "" {
		b.WriteString(" (")
		b.WriteString(formatted)
		b.WriteString(")")
	}
	b.WriteString(":\n")
	b.WriteString(entryText)

	return b.String()
}
