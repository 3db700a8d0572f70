package routing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/ai-collections/internal/domain/entity"
)

func TestLoadPromptConfig_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	content := `
routine: |
  {{template "context" .}}
  TASK
  Keep it to two sentences.
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadPromptConfig(path)
	require.NoError(t, err)
	assert.Contains(t, cfg.Routine, "two sentences")
	assert.Equal(t, defaultStrategicTemplate, cfg.Strategic)
	assert.Equal(t, defaultContextTemplate, cfg.Context)

	builder, err := NewPromptBuilder(cfg)
	require.NoError(t, err)

	prompt, err := builder.Build(entity.PromptRoutine, routingContext(1000, 200, 90, 90, 3))
	require.NoError(t, err)
	assert.Contains(t, prompt, "Northwind")
	assert.Contains(t, prompt, "two sentences")
}

func TestLoadPromptConfig_MissingFile(t *testing.T) {
	_, err := LoadPromptConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewPromptBuilder_InvalidTemplate(t *testing.T) {
	cfg := DefaultPromptConfig()
	cfg.Sensitive = "{{template \"context\" ."

	_, err := NewPromptBuilder(cfg)
	assert.Error(t, err)
}
