package analysis

import (
	"fmt"
	"strings"
)

// maxDedupMemories caps how many existing memories are rendered into the
// prompt as dedup context.
const maxDedupMemories = 50

const promptHeader = `You are the nightly memory-consolidation process for a personal assistant.
Review the conversation log for %s and extract durable knowledge.

Tasks:
1. Extract previously-unrecorded facts. Categories: personal identity and
   relationships, preferences, technical and infrastructure detail,
   decisions made, and behavior rules for the assistant itself.
   Classify each fact into a tier: hot (worth instant recall), pattern
   (recurring behavior), or digest-only (context for the daily report).
2. Identify recurring behavioral patterns across the conversations.
3. Reflect on what the assistant itself learned or should do differently.
4. Flag duplicate or mergeable facts as consolidations.

Respond with a single strict JSON object, no markdown fences, no prose:
{
  "hot_facts": ["..."],
  "patterns": ["..."],
  "reflections": ["..."],
  "consolidations": [{"merge_ids": ["..."], "into": "..."}],
  "digest": "one-paragraph summary of the day"
}`

const dedupHeader = `
Already recorded (do NOT re-extract these):`

// BuildPrompt assembles the oracle request for one day. existingMemories
// are rendered (capped at 50) as a dedup reference list; the conversation
// text is appended verbatim.
func BuildPrompt(date, conversationText string, existingMemories []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, promptHeader, date)

	if len(existingMemories) > 0 {
		b.WriteString("\n")
		b.WriteString(dedupHeader)
		b.WriteString("\n")
		n := len(existingMemories)
		if n > maxDedupMemories {
			n = maxDedupMemories
		}
		for _, mem := range existingMemories[:n] {
			fmt.Fprintf(&b, "- %s\n", mem)
		}
	}

	b.WriteString("\nConversation log:\n")
	b.WriteString(conversationText)
	return b.String()
}
