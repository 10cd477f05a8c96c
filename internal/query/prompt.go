package query

import (
	"fmt"
	"strings"
)

// ComposePrompt builds the generation prompt: numbered context blocks in
// descending relevance order, the verbatim question, and the grounding
// instruction.
func ComposePrompt(question string, contexts []retrievedContext) string {
	var b strings.Builder
	for i, c := range contexts {
		fmt.Fprintf(&b, "Context %d (relevance: %.3f):\n", i+1, c.score)
		if c.title != "" {
			fmt.Fprintf(&b, "[%s]\n", c.title)
		}
		b.WriteString(c.text)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Question: %s\n\n", question)
	b.WriteString("Answer the question using only the context above. " +
		"If the context does not contain enough information to answer, say so.")
	return b.String()
}
