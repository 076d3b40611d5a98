package resolving

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameScorer_Score(t *testing.T) {
	scorer := NewScorer()

	tests := []struct {
		name      string
		rawName   string
		candidate string
		minScore  float64
		maxScore  float64
	}{
		{
			name:      "Nomes idênticos",
			rawName:   "Main Street",
			candidate: "Main Street",
			minScore:  1.0,
			maxScore:  1.0,
		},
		{
			name:      "Diferença só de caixa e pontuação",
			rawName:   "main street - anoka",
			candidate: "Main Street Anoka",
			minScore:  1.0,
			maxScore:  1.0,
		},
		{
			name:      "Variação com código de loja e ordem trocada",
			rawName:   "Main Street - Anoka",
			candidate: "MN100477 Anoka Main",
			minScore:  0.8,
			maxScore:  1.0,
		},
		{
			name:      "Nomes sem relação",
			rawName:   "Downtown Minneapolis",
			candidate: "Riverside St Paul",
			minScore:  0.0,
			maxScore:  0.5,
		},
		{
			name:      "Nome vazio",
			rawName:   "",
			candidate: "Main Street",
			minScore:  0.0,
			maxScore:  0.0,
		},
		{
			name:      "Prefixo de marca compartilhado não basta",
			rawName:   "Brand Lakeville",
			candidate: "Brand Maple Grove",
			minScore:  0.0,
			maxScore:  0.79,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := scorer.Score(tt.rawName, tt.candidate)

			assert.GreaterOrEqual(t, score, tt.minScore)
			assert.LessOrEqual(t, score, tt.maxScore)
		})
	}
}

func TestNameScorer_Score_Simetria(t *testing.T) {
	scorer := NewScorer()

	a := "Main Street - Anoka"
	b := "MN100477 Anoka Main"

	assert.Equal(t, scorer.Score(a, b), scorer.Score(b, a))
}

func TestNormalizeTokens(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Remove pontuação e ordena",
			input:    "Main Street - Anoka",
			expected: []string{"anoka", "main", "street"},
		},
		{
			name:     "Descarta tokens com dígitos",
			input:    "MN100477 Anoka Main",
			expected: []string{"anoka", "main"},
		},
		{
			name:     "Nome todo numérico mantém a forma crua",
			input:    "100477",
			expected: []string{"100477"},
		},
		{
			name:     "Vazio",
			input:    "",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeTokens(tt.input))
		})
	}
}
