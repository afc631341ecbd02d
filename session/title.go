package session

import "strings"

const (
	newSessionTitle  = "New Conversation"
	placeholderTitle = "Conversation"
	titleRuneLimit   = 30
)

// deriveTitle turns the first user message into a session title: the first
// 30 runes, with an ellipsis when truncated. Rune-based so multibyte text
// never gets split mid-character.
func deriveTitle(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return placeholderTitle
	}
	runes := []rune(content)
	if len(runes) <= titleRuneLimit {
		return content
	}
	return string(runes[:titleRuneLimit]) + "..."
}

// needsTitle reports whether a session still carries a placeholder title and
// should adopt one derived from its first user message.
func needsTitle(title string) bool {
	return title == "" || title == newSessionTitle || title == placeholderTitle
}
