// Package prompt loads the assistant's persona configuration and composes
// the instruction text sent to the generation backend.
package prompt

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shoplite/shoplite/api/pkg/models"
)

// LoadPersona reads and validates the persona configuration file. The
// process must not serve without a valid persona, so any failure here is a
// startup failure.
func LoadPersona(path string) (*models.Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona: %w", err)
	}
	var p models.Persona
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse persona: %w", err)
	}
	if err := validatePersona(&p); err != nil {
		return nil, fmt.Errorf("persona %s: %w", path, err)
	}
	return &p, nil
}

func validatePersona(p *models.Persona) error {
	if p.Identity.Name == "" {
		return fmt.Errorf("identity.name is required")
	}
	if p.Identity.Role == "" {
		return fmt.Errorf("identity.role is required")
	}
	if len(p.Intents) == 0 {
		return fmt.Errorf("at least one intent directive is required")
	}
	return nil
}
