package rag

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestAssembler_OrderAndSuffix(t *testing.T) {
	a := NewAssembler(DefaultPersona(), 0)
	question := "Which databases have you used?"

	p := a.Assemble(question, []string{"Postgres at Acme.", "Redis for caching."})

	require.True(t, strings.HasSuffix(p.User, question))
	require.True(t, strings.HasPrefix(p.User, "Context:\n"))
	require.Less(t, strings.Index(p.User, "Postgres"), strings.Index(p.User, "Redis"))
	require.Contains(t, p.System, DefaultPersona().Name)
}

func TestAssembler_NoContext(t *testing.T) {
	a := NewAssembler(DefaultPersona(), DefaultPromptMaxChars)
	question := "What languages do you know?"

	p := a.Assemble(question, nil)

	require.Contains(t, p.User, noContextLine)
	require.True(t, strings.HasSuffix(p.User, question))
}

func TestAssembler_DropsLowestRelevanceFirst(t *testing.T) {
	persona := Persona{Name: "Sam"}
	question := "Tell me about your projects"
	snippets := []string{
		strings.Repeat("a", 100),
		strings.Repeat("b", 100),
		strings.Repeat("c", 100),
	}

	base := NewAssembler(persona, 0).Assemble(question, nil)
	fixed := utf8.RuneCountInString(base.System) + len(contextHeader) + len(snippetSep+questionLabel+question)
	// Room for the first two snippets and their separator only.
	a := NewAssembler(persona, fixed+100+len(snippetSep)+100+10)

	p := a.Assemble(question, snippets)

	require.Contains(t, p.User, snippets[0])
	require.Contains(t, p.User, snippets[1])
	require.NotContains(t, p.User, snippets[2])
	require.True(t, strings.HasSuffix(p.User, question))
	require.LessOrEqual(t, utf8.RuneCountInString(p.System)+utf8.RuneCountInString(p.User), fixed+210+len(snippetSep))
}

func TestAssembler_NeverTruncatesQuestion(t *testing.T) {
	question := strings.Repeat("why ", 500) + "?"
	a := NewAssembler(Persona{Name: "Sam"}, 50)

	p := a.Assemble(question, []string{"one", "two"})

	require.True(t, strings.HasSuffix(p.User, question))
	require.NotContains(t, p.User, "one")
}

func TestAssembler_PersonaLines(t *testing.T) {
	persona := Persona{
		Name:          "Jane Doe",
		Instructions:  []string{"Keep answers short."},
		OffTopicReply: "Not my area.",
	}

	p := NewAssembler(persona, 0).Assemble("hi", nil)

	require.True(t, strings.HasPrefix(p.System, "You are Jane Doe"))
	require.Contains(t, p.System, "- Keep answers short.")
	require.Contains(t, p.System, "'Not my area.'")
	require.NotContains(t, p.System, "technology I have not used")
}

func TestLanguageHint(t *testing.T) {
	require.Empty(t, languageHint("What programming languages and frameworks do you enjoy working with the most?"))
	require.Contains(t, languageHint("Quais linguagens de programação você conhece e usa no seu trabalho diário?"), "Portuguese")
}
