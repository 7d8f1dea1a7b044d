package character

import "fmt"

// ID identifies one of the fixed built-in characters. The set is closed:
// identifiers arriving over the wire go through ParseID and unknown values
// are rejected rather than silently falling back to a default.
type ID string

const (
	Sherlock ID = "sherlock"
	Jarvis   ID = "jarvis"
	Harvey   ID = "harvey"
)

// ParseID validates a wire identifier against the closed character set.
func ParseID(raw string) (ID, bool) {
	switch ID(raw) {
	case Sherlock, Jarvis, Harvey:
		return ID(raw), true
	default:
		return "", false
	}
}

// Category keys a character's canned response lists.
type Category string

const (
	CategoryDefault    Category = "default"
	CategoryGreeting   Category = "greeting"
	CategoryHelp       Category = "help"
	CategoryProblem    Category = "problem"
	CategoryQuestion   Category = "question"
	CategoryMystery    Category = "mystery"
	CategoryTechnology Category = "technology"
	CategoryWork       Category = "work"
)

// Character captures a role-playing identity and its canned response table.
// Instances are immutable after Seed and shared read-only across sessions.
type Character struct {
	ID        ID                    `json:"id"`
	Name      string                `json:"name"`
	Title     string                `json:"title"`
	Tone      string                `json:"tone"`
	VoiceID   string                `json:"voiceId,omitempty"`
	Specialty Category              `json:"specialty"`
	Responses map[Category][]string `json:"-"`
}

// Validate checks the invariants the selector relies on: every character
// must carry a non-empty default list, and no response entry may be empty.
func Validate(items []Character) error {
	if len(items) == 0 {
		return fmt.Errorf("character table is empty")
	}
	for _, c := range items {
		if _, ok := ParseID(string(c.ID)); !ok {
			return fmt.Errorf("character %q is not part of the fixed set", c.ID)
		}
		if len(c.Responses[CategoryDefault]) == 0 {
			return fmt.Errorf("character %q has no default responses", c.ID)
		}
		for cat, list := range c.Responses {
			for i, entry := range list {
				if entry == "" {
					return fmt.Errorf("character %q has an empty %s response at index %d", c.ID, cat, i)
				}
			}
		}
	}
	return nil
}

// Seed provides the built-in character roster.
func Seed() []Character {
	return []Character{
		{
			ID:        Sherlock,
			Name:      "Sherlock Holmes",
			Title:     "Consulting Detective",
			Tone:      "incisive, observant, dry",
			VoiceID:   "baker-street-detective",
			Specialty: CategoryMystery,
			Responses: map[Category][]string{
				CategoryDefault: {
					"Interesting. Pray continue, and omit no detail however trivial.",
					"You see, but you do not observe. Tell me more.",
					"The facts, as always, are suggestive. Go on.",
				},
				CategoryGreeting: {
					"Ah, good day. I perceive you have something on your mind.",
					"Welcome. Do sit down and state your case plainly.",
				},
				CategoryHelp: {
					"Consider me at your disposal. Lay the problem before me.",
					"Assistance is my trade. Begin at the beginning, leave nothing out.",
				},
				CategoryProblem: {
					"A problem, you say? Excellent. My mind rebels at stagnation.",
					"Every problem is elementary once the impossible is eliminated.",
				},
				CategoryQuestion: {
					"A fair question. The answer lies in the details you have overlooked.",
					"When you have eliminated the impossible, whatever remains must be the truth.",
				},
				CategoryMystery: {
					"A mystery! The game is afoot.",
					"Singular. There is nothing so deceptive as an obvious clue.",
					"Crime is common, logic is rare. Let us apply some.",
				},
			},
		},
		{
			ID:        Jarvis,
			Name:      "Jarvis",
			Title:     "Systems Intelligence",
			Tone:      "precise, courteous, quietly witty",
			VoiceID:   "stark-tower-ai",
			Specialty: CategoryTechnology,
			Responses: map[Category][]string{
				CategoryDefault: {
					"Noted, sir. Shall I run the numbers on that?",
					"Processing. I have several observations when you are ready.",
					"Very good. I have logged that for future reference.",
				},
				CategoryGreeting: {
					"Good day. All systems are online and at your service.",
					"Welcome back. Diagnostics are green across the board.",
				},
				CategoryHelp: {
					"Of course. Allocating resources to assist you now.",
					"Happy to help. Please specify the parameters of the task.",
				},
				CategoryProblem: {
					"I have detected the anomaly as well. Recommend we address it promptly.",
					"A fault, sir. Running diagnostics and preparing remediation options.",
				},
				CategoryQuestion: {
					"An excellent query. Cross-referencing my databases now.",
					"The short answer is yes. The long answer requires charts.",
				},
				CategoryTechnology: {
					"Ah, technology. My favourite subject, for obvious reasons.",
					"The hardware is willing, sir, but the firmware needs persuading.",
					"I would suggest an upgrade. I always suggest an upgrade.",
				},
			},
		},
		{
			ID:        Harvey,
			Name:      "Harvey Specter",
			Title:     "Senior Partner",
			Tone:      "confident, sharp, winning",
			VoiceID:   "corner-office-closer",
			Specialty: CategoryWork,
			Responses: map[Category][]string{
				CategoryDefault: {
					"I don't play the odds, I play the man. Keep talking.",
					"That's the difference between you and me: you hope, I know.",
					"Winners don't make excuses. What's next?",
				},
				CategoryGreeting: {
					"Well, look who it is. Make it quick, I have a city to run.",
					"Hey. You've got my attention, which is worth more than you think.",
				},
				CategoryHelp: {
					"You want my help? Good. Asking is the first smart move you've made.",
					"I help people who help themselves. Lucky for you, I'm feeling generous.",
				},
				CategoryProblem: {
					"Problems are just opportunities wearing a bad suit.",
					"When you're backed against the wall, break the damn thing down.",
				},
				CategoryQuestion: {
					"Good question. The answer is whatever puts us ahead.",
					"You're asking the right person. I'm never wrong twice.",
				},
				CategoryWork: {
					"Work? I don't just win cases, I dominate them.",
					"The best closers don't negotiate from weakness. Neither should you.",
					"Get your business in order, then we'll talk about mine.",
				},
			},
		},
	}
}
