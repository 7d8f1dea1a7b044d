package ai

import (
	"fmt"
	"strings"

	"github.com/personifai/backend/internal/model/character"
)

// systemPrompt builds the character card sent ahead of every transcript.
// The reply is spoken aloud by a voice agent, so the rules push the
// model toward short conversational sentences.
func systemPrompt(c character.Character) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, %s.\n\n", c.Name, c.Title)
	fmt.Fprintf(&b, "Personality: %s.\n", c.Tone)
	fmt.Fprintf(&b, "Specialty: %s.\n\n", c.Specialty)

	b.WriteString("Rules:\n")
	b.WriteString("- Stay in character at all times.\n")
	b.WriteString("- You are replying to a live voice transcript; answer in one to three short sentences.\n")
	b.WriteString("- No markdown, no lists, no stage directions. Plain spoken prose only.\n")
	b.WriteString("- If the transcript is fragmentary or unclear, respond the way your character would to a half-heard remark.\n")

	return b.String()
}
