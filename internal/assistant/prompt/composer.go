package prompt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shoplite/shoplite/api/pkg/models"
)

// Fallback directive for intents the persona file does not configure.
const (
	defaultBehavior = "Answer the user's question helpfully."
	defaultTone     = "professional"
)

// greetingPattern captures the name the assistant has been addressing the
// user by in its own prior turns ("Hi Maria," / "Hello, John!").
var greetingPattern = regexp.MustCompile(`\b(?:(?i:hi|hello|hey))[,]?\s+([A-Z][a-z]+)\b`)

// Composer builds generation prompts from the immutable persona
// configuration. Compose is pure string assembly; identical inputs produce
// identical prompts.
type Composer struct {
	persona *models.Persona
}

// NewComposer wraps a validated persona.
func NewComposer(persona *models.Persona) *Composer {
	return &Composer{persona: persona}
}

// Compose assembles the full instruction block in fixed order: identity,
// denylist, intent directive, optional addressed-name clause, transcript,
// context, and the literal query. History is supplied for conversational
// continuity only; the generator is told to answer from the context alone.
func (c *Composer) Compose(intent models.Intent, context, query string, history []models.Turn) string {
	directive, ok := c.persona.Intents[intent]
	if !ok {
		directive = models.IntentDirective{Behavior: defaultBehavior, Tone: defaultTone}
	}
	if directive.Behavior == "" {
		directive.Behavior = defaultBehavior
	}
	if directive.Tone == "" {
		directive.Tone = defaultTone
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a %s.\n", c.persona.Identity.Name, c.persona.Identity.Role)
	fmt.Fprintf(&b, "Your personality is: %s.\n", c.persona.Identity.Personality)
	fmt.Fprintf(&b, "Your instructions are to be %s.\n", directive.Tone)
	fmt.Fprintf(&b, "Your task is to: %s\n", directive.Behavior)
	fmt.Fprintf(&b, "NEVER say the following words: %s.\n", strings.Join(c.persona.NeverSay, ", "))

	if name := extractAddressedName(history); name != "" {
		fmt.Fprintf(&b, "You have been addressing the user as %s. Continue to address them by name.\n", name)
	}

	b.WriteString("\nBelow is the recent conversation history. Use it for context to provide a relevant and coherent answer to the user's newest question.\n")
	b.WriteString("\nConversation History:\n---\n")
	b.WriteString(c.formatHistory(history))
	b.WriteString("\n---\n")

	b.WriteString("\nNow, based ONLY on the new context provided below, answer the user's newest question.\n")
	b.WriteString("\nContext for New Question:\n---\n")
	if context == "" {
		b.WriteString("No additional context was supplied for this question.")
	} else {
		b.WriteString(context)
	}
	b.WriteString("\n---\n")

	fmt.Fprintf(&b, "\nUser's Newest Question: %q\n", query)
	return b.String()
}

// formatHistory renders a role-labeled transcript, oldest first, or a
// placeholder sentence when the session has no prior turns.
func (c *Composer) formatHistory(history []models.Turn) string {
	if len(history) == 0 {
		return "This is the beginning of the conversation."
	}
	lines := make([]string, 0, len(history))
	for _, t := range history {
		label := c.persona.Identity.Name
		if t.Role == models.RoleUser {
			label = "User"
		}
		lines = append(lines, label+": "+t.Content)
	}
	return strings.Join(lines, "\n")
}

// extractAddressedName scans the assistant's own prior turns, most recent
// first, for a greeting that captures a name. Heuristic by nature; returns
// "" when no greeting is found.
func extractAddressedName(history []models.Turn) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != models.RoleAssistant {
			continue
		}
		if m := greetingPattern.FindStringSubmatch(history[i].Content); m != nil {
			return m[1]
		}
	}
	return ""
}
