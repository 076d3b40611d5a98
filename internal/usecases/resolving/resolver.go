package resolving

import (
	"fmt"
	"regexp"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/delivery-recon-api/internal/domain"
)

// codePattern captura o código de loja entre parênteses nos nomes do
// Uber Eats, ex.: "Brand (MN100477)"
var codePattern = regexp.MustCompile(`\(([^()]+)\)`)

// Resolver mapeia (plataforma, nome bruto) → Location, de forma
// determinística e idempotente. Ordem de resolução, a primeira que acerta
// vence:
//
//  1. Uber Eats: extração do código entre parênteses e lookup exato
//     (case-sensitive) contra uber_eats_store_label
//  2. DoorDash/Grubhub: igualdade case-insensitive contra o campo da
//     plataforma e contra o nome canônico
//  3. Fuzzy: melhor similaridade contra campo da plataforma e nome
//     canônico de cada Location; aceita apenas se o melhor score ≥ limiar;
//     empate resolve pela primeira Location na ordem do diretório
//  4. Sentinela "Unmapped Locations" — nunca falha: todo nome bruto
//     resolve para alguma Location
//
// O estado é de uma única execução de ingestão: o memo evita scans fuzzy
// O(locations) repetidos e não pode ser compartilhado entre execuções
// concorrentes de clientes diferentes.
type Resolver struct {
	directory *Directory
	scorer    Scorer
	threshold float64
	memo      map[memoKey]string
}

// memoKey inclui a plataforma: o mesmo nome bruto pode aparecer em
// plataformas diferentes com significados diferentes
type memoKey struct {
	platform domain.Platform
	rawName  string
}

func NewResolver(directory *Directory, scorer Scorer, threshold float64) (*Resolver, error) {
	if directory == nil {
		return nil, fmt.Errorf("diretório de locations não inicializado")
	}
	if directory.Unmapped() == nil {
		return nil, fmt.Errorf("diretório do cliente %s sem a sentinela de não mapeadas", directory.ClientID())
	}

	return &Resolver{
		directory: directory,
		scorer:    scorer,
		threshold: threshold,
		memo:      make(map[memoKey]string),
	}, nil
}

// Resolve devolve o id da Location para o nome bruto. Nunca retorna erro:
// entrada sem correspondência cai na sentinela.
func (r *Resolver) Resolve(platform domain.Platform, rawName string) string {
	key := memoKey{platform: platform, rawName: rawName}
	if locationID, ok := r.memo[key]; ok {
		return locationID
	}

	locationID := r.resolve(platform, rawName)
	r.memo[key] = locationID
	return locationID
}

func (r *Resolver) resolve(platform domain.Platform, rawName string) string {
	// 1. Extração de código (somente Uber Eats)
	if platform == domain.PlatformUberEats {
		if code := ExtractStoreCode(rawName); code != "" {
			if location, ok := r.directory.LookupUberEatsLabel(code); ok {
				return location.ID
			}
		}
	}

	// 2. Igualdade exata (DoorDash/Grubhub)
	if platform == domain.PlatformDoordash || platform == domain.PlatformGrubhub {
		if location, ok := r.directory.LookupExact(platform, rawName); ok {
			return location.ID
		}
	}

	// 3. Fuzzy sobre todas as Locations do diretório
	if location, score, ok := r.bestFuzzyMatch(platform, rawName); ok {
		// Toda aceitação fuzzy é logada com o score para auditoria
		logrus.WithFields(logrus.Fields{
			"client_id":   r.directory.ClientID(),
			"platform":    platform,
			"raw_name":    rawName,
			"location_id": location.ID,
			"location":    location.CanonicalName,
			"score":       score,
		}).Info("Resolução fuzzy aceita")

		return location.ID
	}

	// 4. Sentinela
	return r.directory.Unmapped().ID
}

// bestFuzzyMatch varre o diretório na ordem de iteração; empate de score é
// resolvido pela primeira Location encontrada (desempate grosseiro herdado
// do comportamento observado, mantido de propósito — ver DESIGN.md)
func (r *Resolver) bestFuzzyMatch(platform domain.Platform, rawName string) (*domain.Location, float64, bool) {
	var best *domain.Location
	bestScore := 0.0

	for _, location := range r.directory.Locations() {
		if location.IsUnmapped {
			continue
		}

		score := r.scorer.Score(rawName, location.CanonicalName)
		if name := location.PlatformName(platform); name != "" {
			if s := r.scorer.Score(rawName, name); s > score {
				score = s
			}
		}

		if score > bestScore {
			bestScore = score
			best = location
		}
	}

	if best == nil || bestScore < r.threshold {
		return nil, bestScore, false
	}

	return best, bestScore, true
}

// ExtractStoreCode extrai o token entre parênteses do nome bruto do
// Uber Eats; vazio quando não há código embutido
func ExtractStoreCode(rawName string) string {
	matches := codePattern.FindAllStringSubmatch(rawName, -1)
	if len(matches) == 0 {
		return ""
	}
	// Com mais de um grupo, o último costuma ser o código da loja
	return matches[len(matches)-1][1]
}
