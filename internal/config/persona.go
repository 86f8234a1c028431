package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/josinaldojr/portfolio-chat/internal/rag"
)

// LoadPersona reads the chatbot persona from a YAML file. An empty path
// returns the built-in persona.
//
// Example:
//
//	name: Jane Doe
//	instructions:
//	  - Answer questions about my projects and experience.
//	off_topic_reply: That question isn't relevant to my experience or skills.
func LoadPersona(path string) (rag.Persona, error) {
	if path == "" {
		return rag.DefaultPersona(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return rag.Persona{}, fmt.Errorf("read persona file: %w", err)
	}

	persona := rag.DefaultPersona()
	if err := yaml.Unmarshal(data, &persona); err != nil {
		return rag.Persona{}, fmt.Errorf("parse persona file %s: %w", path, err)
	}
	if persona.Name == "" {
		return rag.Persona{}, fmt.Errorf("persona file %s: name is required", path)
	}
	return persona, nil
}
