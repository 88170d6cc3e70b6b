package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/saleh1312/BarCloudTask/internal/intent"
)

// replyShape is the literal output contract embedded in the system prompt.
// The model is instructed, not schema-enforced; decodeReply does the real
// validation.
const replyShape = `{
  "is_intent_recognized": <boolean, whether the user's intent matched an available intent>,
  "friendly_message": <string or null, a friendly reply to the user when the intent was not recognized>,
  "intent": <string or null, the name of the recognized intent>,
  "params": <object or null, the parameters of the recognized intent>
}`

// BuildSystemPrompt assembles the single system message for a session. The
// timestamp is baked in here, so it reflects session creation time rather
// than the time of any later turn.
func BuildSystemPrompt(catalog *intent.Catalog, now time.Time) string {
	var b strings.Builder

	b.WriteString("You are a helpful assistant. Your task is to understand the user's intent\n")
	b.WriteString("and choose the correct intent from the list of available intents\n")
	b.WriteString("given the database schema and the user chat.\n\n")

	fmt.Fprintf(&b, "**CURRENT DATE AND TIME** : %s\n\n", now.Format("2006-01-02 15:04:05"))

	b.WriteString("**AVAILABLE INTENTS** :\n")
	for i, def := range catalog.All() {
		if i > 0 {
			b.WriteString("\n==========\n")
		}

		params := "none"
		if len(def.Params) > 0 {
			params = strings.Join(def.Params, ", ")
		}

		fmt.Fprintf(&b, "\n- intent_name: %s\n\n- params: %s\n\n- summary: %s\n", def.Name, params, def.Summary)
	}

	fmt.Fprintf(&b, "\n**SCHEMA** :\n\n%s\n\n", catalog.Schema())

	b.WriteString("FOLLOW THIS FORMAT IN YOUR RESPONSE:\n\n")
	b.WriteString(replyShape)
	b.WriteString("\n\nRules:\n")
	b.WriteString("- Use double quotes for all keys and strings.\n")
	b.WriteString("- Use true/false for booleans.\n")
	b.WriteString("- Use null for absent values.\n")
	b.WriteString("- Do not include extra text or explanations if intent is recognized.\n")

	return b.String()
}
