package respond

import (
	"context"
	"math/rand/v2"
	"strings"
	"unicode"

	"github.com/personifai/backend/internal/model/character"
)

// categoryKeywords maps each response category to the phrases that trigger
// it. Single words match on a word-prefix basis ("assist" covers
// "assistance"); entries containing a space match as substrings.
var categoryKeywords = map[character.Category][]string{
	character.CategoryGreeting: {
		"hello", "hi", "hey", "greetings", "good morning", "good afternoon",
		"good evening", "what's up", "how are you",
	},
	character.CategoryHelp: {
		"help", "assist", "support", "favor", "guidance",
	},
	character.CategoryProblem: {
		"problem", "issue", "trouble", "wrong", "broken", "stuck", "error",
		"fail", "crash",
	},
	character.CategoryQuestion: {
		"what", "how", "why", "when", "where", "who", "which",
	},
	character.CategoryMystery: {
		"mystery", "mysterious", "clue", "crime", "suspect", "evidence",
		"detective", "investigate", "case",
	},
	character.CategoryTechnology: {
		"technology", "tech", "computer", "software", "code", "machine",
		"robot", "system", "ai", "upgrade",
	},
	character.CategoryWork: {
		"work", "job", "career", "business", "client", "deal", "meeting",
		"negotiate",
	},
}

// categoryOrder is the fixed scan priority: shared categories first, then
// the character specialties. First match wins.
var categoryOrder = []character.Category{
	character.CategoryGreeting,
	character.CategoryHelp,
	character.CategoryProblem,
	character.CategoryQuestion,
	character.CategoryMystery,
	character.CategoryTechnology,
	character.CategoryWork,
}

// Selector resolves transcripts to canned character responses. It is pure
// apart from the random draw and safe for concurrent use.
type Selector struct {
	pick func(n int) int
}

// NewSelector returns a Selector drawing uniformly at random.
func NewSelector() *Selector {
	return &Selector{pick: rand.IntN}
}

// Select maps a transcript to one response for the given character. The
// first matching category in priority order wins; when nothing matches, or
// the character defines no list for the matched category, the character's
// default list is used. Never returns an empty string for a validated
// character.
func (s *Selector) Select(transcript string, c character.Character) string {
	cat := Classify(transcript)
	list := c.Responses[cat]
	if len(list) == 0 {
		list = c.Responses[character.CategoryDefault]
	}
	if len(list) == 0 {
		// Unreachable for rosters that passed character.Validate.
		return ""
	}
	return list[s.pick(len(list))]
}

// Respond adapts Select to callers that pass a context, such as the
// relay session loop. Selection is synchronous so the context is unused.
func (s *Selector) Respond(_ context.Context, transcript string, c character.Character) string {
	return s.Select(transcript, c)
}

// Classify scans the transcript for keyword categories in priority order
// and returns the first match, or CategoryDefault when nothing matches.
func Classify(transcript string) character.Category {
	normalized := strings.ToLower(strings.TrimSpace(transcript))
	if normalized == "" {
		return character.CategoryDefault
	}

	words := strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})

	for _, cat := range categoryOrder {
		if matchesCategory(normalized, words, categoryKeywords[cat]) {
			return cat
		}
		if cat == character.CategoryQuestion && strings.Contains(transcript, "?") {
			return cat
		}
	}
	return character.CategoryDefault
}

func matchesCategory(normalized string, words []string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.ContainsRune(kw, ' ') {
			if strings.Contains(normalized, kw) {
				return true
			}
			continue
		}
		for _, word := range words {
			if word == kw || (len(kw) > 3 && strings.HasPrefix(word, kw)) {
				return true
			}
		}
	}
	return false
}
