package rag

import (
	"strings"
	"unicode/utf8"
)

// DefaultPromptMaxChars keeps prompts well inside the context window of
// small chat models.
const DefaultPromptMaxChars = 12000

const (
	contextHeader = "Context:\n"
	noContextLine = "No portfolio entries matched this question."
	questionLabel = "Question: "
	snippetSep    = "\n\n"
)

// Persona is the fixed instruction preamble of every prompt.
type Persona struct {
	Name             string   `yaml:"name"`
	Instructions     []string `yaml:"instructions"`
	OffTopicReply    string   `yaml:"off_topic_reply"`
	UnknownTechReply string   `yaml:"unknown_tech_reply"`
}

// DefaultPersona is used when no persona file is configured.
func DefaultPersona() Persona {
	return Persona{
		Name: "the owner of this portfolio",
		Instructions: []string{
			"Answer in the first person, using 'I' and 'my'.",
			"Answer questions about my portfolio, skills, experience and education, including specific technologies I have worked with.",
			"When I have relevant experience with a technology, describe it concisely.",
			"Use the context below as the source of truth about me. If it does not cover the question, answer briefly from general knowledge about my field without inventing projects, employers or dates.",
			"Personal questions about technology, such as favourite languages, are on topic.",
		},
		OffTopicReply:    "That question isn't relevant to my experience or skills.",
		UnknownTechReply: "I haven't worked with that technology yet, but I'm always eager to learn new things.",
	}
}

// Assembler composes the generation prompt from retrieved snippets and the
// visitor's question.
type Assembler struct {
	persona  Persona
	maxChars int
}

// NewAssembler builds an Assembler. maxChars bounds the total prompt size
// in runes; 0 means unbounded.
func NewAssembler(persona Persona, maxChars int) *Assembler {
	return &Assembler{persona: persona, maxChars: maxChars}
}

// Assemble keeps snippets in the order given (closest first) and always ends
// the user message with the question verbatim. When the budget is exceeded
// the trailing snippets are dropped; the question is never cut.
func (a *Assembler) Assemble(question string, snippets []string) Prompt {
	system := a.systemPrompt(question)
	suffix := snippetSep + questionLabel + question

	var kept []string
	if a.maxChars <= 0 {
		kept = snippets
	} else {
		remaining := a.maxChars - runes(system) - runes(contextHeader) - runes(suffix)
		for i, s := range snippets {
			cost := runes(s)
			if i > 0 {
				cost += runes(snippetSep)
			}
			if cost > remaining {
				break
			}
			remaining -= cost
			kept = append(kept, s)
		}
	}

	var user strings.Builder
	user.WriteString(contextHeader)
	if len(kept) == 0 {
		user.WriteString(noContextLine)
	} else {
		user.WriteString(strings.Join(kept, snippetSep))
	}
	user.WriteString(suffix)

	return Prompt{System: system, User: user.String()}
}

func (a *Assembler) systemPrompt(question string) string {
	p := a.persona

	var b strings.Builder
	b.WriteString("You are ")
	b.WriteString(p.Name)
	b.WriteString(", answering questions from visitors of your portfolio website as yourself.")
	for _, line := range p.Instructions {
		b.WriteString("\n- ")
		b.WriteString(line)
	}
	if p.OffTopicReply != "" {
		b.WriteString("\n- If a question is clearly unrelated to my professional life, reply with: '")
		b.WriteString(p.OffTopicReply)
		b.WriteString("'")
	}
	if p.UnknownTechReply != "" {
		b.WriteString("\n- If asked about a technology I have not used, reply with: '")
		b.WriteString(p.UnknownTechReply)
		b.WriteString("'")
	}
	if hint := languageHint(question); hint != "" {
		b.WriteString("\n- ")
		b.WriteString(hint)
	}
	return b.String()
}

func runes(s string) int { return utf8.RuneCountInString(s) }
