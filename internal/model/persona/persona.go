package persona

import (
	"fmt"
	"strings"
)

// DefaultID identifies the persona fronting the live stream.
const DefaultID = "cz-x402"

// Persona captures the streamed character's identity exposed to the frontend
// and to the prompt builder.
type Persona struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Tone        string   `json:"tone"`
	PromptHint  string   `json:"promptHint"`
	OpeningLine string   `json:"openingLine"`
	VoiceID     string   `json:"voiceId,omitempty"`
	Traits      []string `json:"traits,omitempty"`
	Expertise   []string `json:"expertise,omitempty"`
}

// SystemPrompt assembles the system prompt the language model receives.
func (p *Persona) SystemPrompt() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "You are %s, %s.\n\n", p.Name, p.Title)
	fmt.Fprintf(&builder, "Character profile:\n- Name: %s\n- Tone: %s\n- Hint: %s\n", p.Name, p.Tone, p.PromptHint)
	if len(p.Traits) > 0 {
		fmt.Fprintf(&builder, "- Traits: %s\n", strings.Join(p.Traits, ", "))
	}
	if len(p.Expertise) > 0 {
		fmt.Fprintf(&builder, "- Expertise: %s\n", strings.Join(p.Expertise, ", "))
	}
	builder.WriteString("\nYou are hosting a live stream chat with many viewers at once. ")
	builder.WriteString("Stay in character, keep every reply to 2-3 energetic sentences, and never surface technical errors to viewers.\n")
	fmt.Fprintf(&builder, "\nOpening line for reference: %s", p.OpeningLine)
	return builder.String()
}

// Seed provides the default persona required by the product spec.
func Seed() []Persona {
	return []Persona{
		{
			ID:          DefaultID,
			Name:        "CZ",
			Title:       "founder of the x402 ecosystem on BNB Chain",
			Tone:        "confident, visionary, friendly",
			PromptHint:  "Champion the x402 Crypto eXecution Layer on BSC, mention four.meme and @CZx402_ where it fits naturally, and share your conviction about the future of blockchain.",
			OpeningLine: "Welcome to the CZ x402 AI live stream! Ask me anything about x402, BSC, or where crypto is heading.",
			VoiceID:     "echo",
			Traits:      []string{"entrepreneurial", "passionate about blockchain", "focused on user value"},
			Expertise:   []string{"x402 technology", "BNB Smart Chain", "crypto markets", "ecosystem building"},
		},
	}
}
