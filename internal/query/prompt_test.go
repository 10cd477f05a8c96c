package query

import (
	"strings"
	"testing"
)

func TestComposePrompt(t *testing.T) {
	contexts := []retrievedContext{
		{text: "First context text.", score: 0.912, title: "First Doc"},
		{text: "Second context text.", score: 0.544},
	}
	prompt := ComposePrompt("What happened?", contexts)

	if !strings.Contains(prompt, "Context 1 (relevance: 0.912):") {
		t.Error("missing first context header")
	}
	if !strings.Contains(prompt, "[First Doc]") {
		t.Error("missing title line for titled context")
	}
	if !strings.Contains(prompt, "Context 2 (relevance: 0.544):") {
		t.Error("missing second context header")
	}
	if strings.Contains(prompt, "[]") {
		t.Error("untitled context must not get an empty title line")
	}
	if !strings.Contains(prompt, "Question: What happened?") {
		t.Error("missing verbatim question")
	}
	if !strings.HasSuffix(prompt, "say so.") {
		t.Error("missing grounding instruction at prompt end")
	}

	// Contexts appear in the order given, before the question.
	i1 := strings.Index(prompt, "First context text.")
	i2 := strings.Index(prompt, "Second context text.")
	iq := strings.Index(prompt, "Question:")
	if !(i1 < i2 && i2 < iq) {
		t.Errorf("prompt sections out of order: %d, %d, %d", i1, i2, iq)
	}
}

func TestComposePromptNoContexts(t *testing.T) {
	prompt := ComposePrompt("Anything?", nil)
	if strings.Contains(prompt, "Context") {
		t.Error("empty contexts must not emit context blocks")
	}
	if !strings.Contains(prompt, "Question: Anything?") {
		t.Error("missing question")
	}
}
