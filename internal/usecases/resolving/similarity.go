// Package resolving implementa a resolução de identidade de lojas: mapear o
// nome bruto que cada plataforma usa para a Location canônica do cliente.
package resolving

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// Scorer calcula a similaridade normalizada [0,1] entre um nome bruto de
// plataforma e um candidato do diretório. Isolado atrás de interface para
// permitir trocar por matching aproximado indexado se o número de lojas
// crescer.
type Scorer interface {
	Score(rawName, candidate string) float64
}

type nameScorer struct{}

func NewScorer() Scorer {
	return &nameScorer{}
}

// Score combina duas medidas sobre os nomes normalizados:
//   - similaridade de edição: (maxLen - distância) / maxLen
//   - similaridade de tokens (Dice): 2·|comuns| / (|a| + |b|)
//
// A normalização remove pontuação e tokens com dígitos (códigos de loja como
// "MN100477") e ordena os tokens, para que "Main Street - Anoka" e
// "MN100477 Anoka Main" fiquem comparáveis.
func (s *nameScorer) Score(rawName, candidate string) float64 {
	rawTokens := normalizeTokens(rawName)
	candTokens := normalizeTokens(candidate)

	a := strings.Join(rawTokens, " ")
	b := strings.Join(candTokens, " ")
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	edit := editSimilarity(a, b)
	dice := tokenSimilarity(rawTokens, candTokens)
	if dice > edit {
		return dice
	}
	return edit
}

func editSimilarity(a, b string) float64 {
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 0
	}

	distance := levenshtein.ComputeDistance(a, b)
	return float64(maxLen-distance) / float64(maxLen)
}

func tokenSimilarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, token := range a {
		setA[token] = struct{}{}
	}

	common := 0
	for _, token := range b {
		if _, ok := setA[token]; ok {
			common++
			delete(setA, token)
		}
	}

	return (2 * float64(common)) / float64(len(a)+len(b))
}

// normalizeTokens converte para minúsculas, troca pontuação por espaço,
// descarta tokens que contêm dígitos e ordena o restante
func normalizeTokens(name string) []string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(' ')
		}
	}

	tokens := make([]string, 0, 4)
	for _, token := range strings.Fields(sb.String()) {
		if strings.ContainsFunc(token, unicode.IsDigit) {
			continue
		}
		tokens = append(tokens, token)
	}

	// Sem tokens alfabéticos sobrando (nome todo numérico): usa a forma crua
	if len(tokens) == 0 {
		tokens = strings.Fields(sb.String())
	}

	sort.Strings(tokens)
	return tokens
}
