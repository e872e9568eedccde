package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput() Input {
	return Input{
		AudienceDescription: "Adults with insomnia",
		PainPoint:           "waking at 3am",
		SourceMaterials:     "[Arquivo: notes.txt]\nrespire fundo\n",
	}
}

func TestBuild(t *testing.T) {
	t.Run("Deterministic", func(t *testing.T) {
		first, err := Build(sampleInput())
		require.NoError(t, err)
		second, err := Build(sampleInput())
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("SectionOrder", func(t *testing.T) {
		in := sampleInput()
		in.AdditionalContext = "edição de aniversário"
		out, err := Build(in)
		require.NoError(t, err)

		markers := []string{
			"Você é o Cérebro da Comunidade AppAutoHipnose",
			"PÚBLICO-ALVO:\nAdults with insomnia",
			"DOR ESPECÍFICA DESTA SEMANA:\nwaking at 3am",
			"CONTEXTO ADICIONAL:\nedição de aniversário\n\nMATERIAIS DE CONHECIMENTO:",
			"MATERIAIS DE CONHECIMENTO:\n[Arquivo: notes.txt]\nrespire fundo\n",
			"BLOCO 1: TÍTULO IMPACTANTE",
			"BLOCO 3: FRAMEWORK PRÁTICO (O MÉTODO)",
			"ASSINATURA:\nAlex Dantas",
			"DIRETRIZES DE TOM E ESTILO:",
			"REGRAS DE SEGURANÇA:",
			"OUTPUT ESPERADO:",
		}
		last := -1
		for _, marker := range markers {
			idx := strings.Index(out, marker)
			require.GreaterOrEqual(t, idx, 0, "missing %q", marker)
			assert.Greater(t, idx, last, "out of order: %q", marker)
			last = idx
		}
	})

	t.Run("EmptyAdditionalContextOmitted", func(t *testing.T) {
		for _, ctx := range []string{"", "   \n\t"} {
			in := sampleInput()
			in.AdditionalContext = ctx
			out, err := Build(in)
			require.NoError(t, err)
			assert.NotContains(t, out, "CONTEXTO ADICIONAL")
			assert.Contains(t, out, "waking at 3am\n\nMATERIAIS DE CONHECIMENTO:")
		}
	})

	t.Run("MaterialsVerbatim", func(t *testing.T) {
		in := sampleInput()
		in.SourceMaterials = "{{ not a template }} <b>&amp;</b>"
		out, err := Build(in)
		require.NoError(t, err)
		assert.Contains(t, out, "{{ not a template }} <b>&amp;</b>")
	})

	t.Run("MissingAudience", func(t *testing.T) {
		in := sampleInput()
		in.AudienceDescription = "  "
		_, err := Build(in)
		assert.ErrorIs(t, err, ErrMissingAudience)
	})

	t.Run("MissingPainPoint", func(t *testing.T) {
		in := sampleInput()
		in.PainPoint = ""
		_, err := Build(in)
		assert.ErrorIs(t, err, ErrMissingPainPoint)
	})
}
