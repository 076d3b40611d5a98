package resolving

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/delivery-recon-api/infrastructure/repository"
	"github.com/vfg2006/delivery-recon-api/internal/domain"
	"github.com/vfg2006/delivery-recon-api/pkg/utils"
)

// Directory é o snapshot em memória das Locations de um cliente durante uma
// ingestão: lookup O(1) por campo exato de plataforma e lista em ordem
// determinística para o scan fuzzy. Somente leitura durante a execução;
// recarregar via Loader quando uma importação criar Locations no meio do
// caminho.
type Directory struct {
	clientID        string
	byUberEatsLabel map[string]*domain.Location
	byPlatformName  map[domain.Platform]map[string]*domain.Location
	byCanonical     map[string]*domain.Location
	ordered         []*domain.Location
	unmapped        *domain.Location

	// SentinelCreated indica que a sentinela "Unmapped Locations" não
	// existia e foi criada neste carregamento
	SentinelCreated bool
}

// DirectoryLoader carrega o diretório de um cliente, garantindo a sentinela
// "Unmapped Locations" antes de qualquer resolução começar
type DirectoryLoader struct {
	locationRepo repository.LocationRepository
}

func NewDirectoryLoader(locationRepo repository.LocationRepository) *DirectoryLoader {
	return &DirectoryLoader{
		locationRepo: locationRepo,
	}
}

// Load lê todas as Locations do cliente e monta os índices. A ausência da
// sentinela é corrigida criando uma; se a criação falhar, o erro é fatal
// para a execução — é violação de invariante de configuração, não um
// problema recuperável por linha.
func (l *DirectoryLoader) Load(clientID string) (*Directory, error) {
	if clientID == "" {
		return nil, fmt.Errorf("clientID é obrigatório para carregar o diretório")
	}

	locations, err := l.locationRepo.ListByClient(clientID)
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar locations do cliente %s: %w", clientID, err)
	}

	directory := &Directory{
		clientID:        clientID,
		byUberEatsLabel: make(map[string]*domain.Location),
		byPlatformName:  make(map[domain.Platform]map[string]*domain.Location),
		byCanonical:     make(map[string]*domain.Location),
		ordered:         make([]*domain.Location, 0, len(locations)),
	}
	for _, platform := range domain.Platforms {
		directory.byPlatformName[platform] = make(map[string]*domain.Location)
	}

	for _, location := range locations {
		directory.index(location)
	}

	if directory.unmapped == nil {
		sentinel, err := l.createSentinel(clientID)
		if err != nil {
			return nil, fmt.Errorf("cliente %s sem sentinela de não mapeadas e criação falhou: %w", clientID, err)
		}
		directory.index(sentinel)
		directory.SentinelCreated = true

		logrus.WithFields(logrus.Fields{
			"client_id":   clientID,
			"location_id": sentinel.ID,
		}).Info("Sentinela 'Unmapped Locations' criada para o cliente")
	}

	return directory, nil
}

func (l *DirectoryLoader) createSentinel(clientID string) (*domain.Location, error) {
	id, err := utils.GenerateID()
	if err != nil {
		return nil, err
	}

	sentinel := &domain.Location{
		ID:            id,
		ClientID:      clientID,
		CanonicalName: domain.UnmappedLocationName,
		IsUnmapped:    true,
	}

	if err := l.locationRepo.Create(sentinel); err != nil {
		return nil, err
	}

	return sentinel, nil
}

func (d *Directory) index(location *domain.Location) {
	d.ordered = append(d.ordered, location)

	canonicalKey := strings.ToLower(location.CanonicalName)
	if _, exists := d.byCanonical[canonicalKey]; !exists {
		// Primeira entrada vence: preserva a ordem determinística do diretório
		d.byCanonical[canonicalKey] = location
	}

	if location.UberEatsStoreLabel != nil && *location.UberEatsStoreLabel != "" {
		// Código de loja do Uber Eats compara case-sensitive
		if _, exists := d.byUberEatsLabel[*location.UberEatsStoreLabel]; !exists {
			d.byUberEatsLabel[*location.UberEatsStoreLabel] = location
		}
	}

	for _, platform := range domain.Platforms {
		name := location.PlatformName(platform)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, exists := d.byPlatformName[platform][key]; !exists {
			d.byPlatformName[platform][key] = location
		}
	}

	if location.IsUnmapped && d.unmapped == nil {
		d.unmapped = location
	}
}

func (d *Directory) ClientID() string {
	return d.clientID
}

// Locations devolve as Locations na ordem de iteração do diretório
// (determinística; é a ordem usada no desempate do fuzzy)
func (d *Directory) Locations() []*domain.Location {
	return d.ordered
}

func (d *Directory) Unmapped() *domain.Location {
	return d.unmapped
}

// LookupUberEatsLabel busca pelo código de loja extraído do nome bruto do
// Uber Eats (igualdade exata, case-sensitive)
func (d *Directory) LookupUberEatsLabel(code string) (*domain.Location, bool) {
	location, ok := d.byUberEatsLabel[code]
	return location, ok
}

// LookupExact busca por igualdade case-insensitive contra o campo da
// plataforma e contra o nome canônico
func (d *Directory) LookupExact(platform domain.Platform, rawName string) (*domain.Location, bool) {
	key := strings.ToLower(rawName)
	if location, ok := d.byPlatformName[platform][key]; ok {
		return location, true
	}
	if location, ok := d.byCanonical[key]; ok {
		return location, true
	}
	return nil, false
}
