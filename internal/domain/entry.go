package domain

import "time"

// ItemType represents the media type of one entry item
type ItemType string

const (
	ItemTypeText  ItemType = "text"
	ItemTypeImage ItemType = "image"
	ItemTypeAudio ItemType = "audio"
)

// EntryItem is one element of a submitted journal entry. Items are
// request-scoped and discarded after assembly. Index is the item's stable
// position in the client-submitted list; the assembled narrative preserves
// that order regardless of transcoding completion order.
type EntryItem struct {
	Index     int
	Type      ItemType
	Text      string  // set for text items
	FieldName string  // multipart field carrying the media file
	LocalPath string  // filled by the upload collaborator
	Duration  float64 // seconds, audio only
}

// SummaryRecord is one unit of prior-summary context supplied by the caller.
// It is read-only input; persistence of the rolling history is the caller's
// concern.
type SummaryRecord struct {
	Timestamp string `json:"timestamp"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
}

// IsValidItemType checks if an ItemType is valid
func IsValidItemType(t ItemType) bool {
	switch t {
	case ItemTypeText, ItemTypeImage, ItemTypeAudio:
		return true
	}
	return false
}

// timestampLayout renders full weekday, month name, day, year and 12-hour
// time with AM/PM, e.g. "Friday, March 14, 2025 at 9:41 PM".
const timestampLayout = "Monday, January 2, 2006 at 3:04 PM"

// FormatEpochMillis converts a Unix-epoch-milliseconds timestamp to its
// human-readable form in UTC. A nil timestamp renders as the empty string;
// epoch zero is a valid instant and formats normally.
func FormatEpochMillis(ms *int64) string {
	if ms == nil {
		return ""
	}
	return time.UnixMilli(*ms).UTC().Format(timestampLayout)
}
