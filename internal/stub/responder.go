package stub

import (
	"fmt"
	"strings"
	"unicode"
)

const maxTitleLen = 40

// respondTo produces a deterministic canned reply. The stub has no model
// behind it; responses only need to be stable enough for demos and tests.
func respondTo(input string) string {
	lowered := strings.ToLower(strings.TrimSpace(input))

	switch {
	case strings.HasPrefix(lowered, "hello"), strings.HasPrefix(lowered, "hi"),
		strings.HasPrefix(lowered, "hey"):
		return "Hi there! How can I help you today?"
	case strings.Contains(lowered, "thank"):
		return "You're welcome! Anything else I can help with?"
	case strings.HasSuffix(lowered, "?"):
		return fmt.Sprintf("That's a good question. I don't have a real model behind me, "+
			"but on a live backend you would get an answer to: %q", strings.TrimSpace(input))
	default:
		return fmt.Sprintf("I received your message (%d characters). "+
			"This is a canned response from the local stub backend.", len(input))
	}
}

// titleFor derives a chat title from the first user message, truncated on a
// word boundary where possible.
func titleFor(input string) string {
	title := strings.Join(strings.Fields(input), " ")
	if title == "" {
		return "New chat"
	}
	runes := []rune(title)
	if len(runes) <= maxTitleLen {
		return title
	}

	// Cut on runes, not bytes, so multibyte input never gets split
	// mid-character.
	cut := maxTitleLen
	for cut > 0 && !unicode.IsSpace(runes[cut]) {
		cut--
	}
	if cut == 0 {
		cut = maxTitleLen
	}
	return strings.TrimSpace(string(runes[:cut])) + "…"
}
