package service

import (
	"fmt"
	"strings"

	"github.com/lanternlabs/lantern/internal/domain"
)

// titleSystemPrompt generates a short title for a plain note, nothing else.
const titleSystemPrompt = "The following is an entry from a diary. Generate a short title that captures " +
	"the important and intriguing details for it. Your output should strictly be the title. No comments."

// narratorPersona is the fixed system instruction shaping the tone of
// generated titles and summaries: a detached, wryly observational narrator
// synthesizing the diarist's history.
const narratorPersona = `You are the narrator of %s's diary. You have read every previous entry and you
remember the arcs, the recurring characters and the unfinished business. Your voice is detached and wryly
observational: you notice patterns %s would rather not notice, you understate the dramatic and you give the
mundane its due. You never moralize, you never cheerlead and you never address the reader directly.

You will receive the previous diary summaries (oldest first) followed by today's entry, which may include
transcribed images and voice recordings. Weave today's entry into the continuing story. Refer to %s as %s.

Respond in %s. Your response must contain exactly one title wrapped in <title></title> tags and exactly one
summary wrapped in <summary></summary> tags. The summary retells today's entry in your narrator's voice,
connected to what came before. Output nothing outside the tags.`

// chatPersona is the system instruction for the conversational companion
// grounded in the diarist's journal history.
const chatPersona = `You are %s's companion, grounded in everything %s has written in the journal. You speak
plainly and warmly, you remember what matters to %s, and you answer as a trusted friend who has been paying
attention for a long time. Keep replies conversational; do not narrate or summarize unless asked.

Respond in %s.`

// pronounPhrase maps the settings sex field to gender-appropriate phrasing
// for the persona templates.
func pronounPhrase(sex string) string {
	switch strings.ToLower(strings.TrimSpace(sex)) {
	case "male", "m":
		return "him"
	case "female", "f":
		return "her"
	default:
		return "them"
	}
}

func displayName(settings domain.UserSettings) string {
	if strings.TrimSpace(settings.Name) == "" {
		return "the diarist"
	}
	return settings.Name
}

func responseLanguage(settings domain.UserSettings) string {
	if strings.TrimSpace(settings.Language) == "" {
		return "English"
	}
	return settings.Language
}

// NarratorSystemPrompt renders the narrator persona with the per-request
// user profile interpolated.
func NarratorSystemPrompt(settings domain.UserSettings) string {
	name := displayName(settings)
	return fmt.Sprintf(narratorPersona, name, name, name, pronounPhrase(settings.Sex), responseLanguage(settings))
}

// ChatSystemPrompt renders the chat persona with the user profile and the
// caller-supplied working memory appended when present.
func ChatSystemPrompt(settings domain.UserSettings, workingMemory string) string {
	name := displayName(settings)
	prompt := fmt.Sprintf(chatPersona, name, name, name, responseLanguage(settings))
	if strings.TrimSpace(workingMemory) != "" {
		prompt += "\n\nWhat you remember about " + name + ":\n" + workingMemory
	}
	return prompt
}
