package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplite/shoplite/api/pkg/models"
)

func writePersona(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "persona.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPersona(t *testing.T) {
	path := writePersona(t, `
identity:
  name: Nio
  role: support assistant
  personality: friendly
never_say:
  - cheap
intents:
  chitchat:
    behavior: Be brief.
    tone: casual
`)
	p, err := LoadPersona(path)
	require.NoError(t, err)
	assert.Equal(t, "Nio", p.Identity.Name)
	assert.Equal(t, []string{"cheap"}, p.NeverSay)
	assert.Equal(t,
		models.IntentDirective{Behavior: "Be brief.", Tone: "casual"},
		p.Intents[models.IntentChitchat])
}

func TestLoadPersonaErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadPersona(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := LoadPersona(writePersona(t, "identity:\n  role: assistant\nintents:\n  chitchat:\n    tone: casual\n"))
		assert.ErrorContains(t, err, "identity.name")
	})

	t.Run("no intent directives", func(t *testing.T) {
		_, err := LoadPersona(writePersona(t, "identity:\n  name: Nio\n  role: assistant\n"))
		assert.ErrorContains(t, err, "intent directive")
	})
}
