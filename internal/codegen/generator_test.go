// internal/codegen/generator_test.go
package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeforge/tradeforge-backend/internal/models"
)

func TestTemplateGeneratorScript(t *testing.T) {
	g := NewTemplateGenerator()

	code, err := g.Generate(GenerateRequest{
		Type:        models.ArtifactTypeScript,
		Description: "Moving average crossover on EURUSD",
	})
	require.NoError(t, err)
	assert.Contains(t, code, "Expert Advisor")
	assert.Contains(t, code, "OnTick()")
	assert.Contains(t, code, "Moving average crossover on EURUSD")
	assert.NotContains(t, code, "OnCalculate")
}

func TestTemplateGeneratorIndicator(t *testing.T) {
	g := NewTemplateGenerator()

	code, err := g.Generate(GenerateRequest{
		Type:        models.ArtifactTypeIndicator,
		Description: "RSI divergence detector",
	})
	require.NoError(t, err)
	assert.Contains(t, code, "Custom Indicator")
	assert.Contains(t, code, "OnCalculate")
}

func TestTemplateGeneratorEmptyDescription(t *testing.T) {
	g := NewTemplateGenerator()

	_, err := g.Generate(GenerateRequest{Type: models.ArtifactTypeScript, Description: "   "})
	assert.Error(t, err)
}

func TestTemplateGeneratorStripsNewlines(t *testing.T) {
	g := NewTemplateGenerator()

	code, err := g.Generate(GenerateRequest{
		Type:        models.ArtifactTypeScript,
		Description: "line one\nline two",
	})
	require.NoError(t, err)
	assert.Contains(t, code, "// Strategy: line one line two")
}
