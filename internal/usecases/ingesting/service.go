package ingesting

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/delivery-recon-api/infrastructure/repository"
	"github.com/vfg2006/delivery-recon-api/internal/config"
	"github.com/vfg2006/delivery-recon-api/internal/domain"
	"github.com/vfg2006/delivery-recon-api/internal/usecases/resolving"
)

type Service interface {
	Ingest(clientID string, platform domain.Platform, file io.Reader) (*domain.IngestionResult, error)
	Purge(purge *domain.PurgeRequest) (int64, error)
}

type service struct {
	clientRepo      repository.ClientRepository
	transactionRepo repository.TransactionRepository
	directoryLoader *resolving.DirectoryLoader
	scorer          resolving.Scorer
	cfg             *config.Config
}

func NewService(
	clientRepo repository.ClientRepository,
	transactionRepo repository.TransactionRepository,
	directoryLoader *resolving.DirectoryLoader,
	scorer resolving.Scorer,
	cfg *config.Config,
) Service {
	return &service{
		clientRepo:      clientRepo,
		transactionRepo: transactionRepo,
		directoryLoader: directoryLoader,
		scorer:          scorer,
		cfg:             cfg,
	}
}

// Ingest processa um export semanal de ponta a ponta: normaliza, resolve a
// identidade da Location, deduplica por chave natural e grava em lotes com
// upsert. Reprocessar o mesmo arquivo é idempotente em efeito.
//
// A passada é sequencial por upload; duas ingestões concorrentes da mesma
// semana e plataforma não são seguras entre si (last-write-wins) e devem ser
// serializadas pelo chamador.
func (s *service) Ingest(clientID string, platform domain.Platform, file io.Reader) (*domain.IngestionResult, error) {
	client, err := s.clientRepo.GetClientByID(clientID)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar cliente %s: %w", clientID, err)
	}
	if client == nil {
		return nil, ErrClientNotFound
	}

	normalizer, err := NormalizerFor(platform)
	if err != nil {
		return nil, err
	}

	// Erro de arquivo aborta antes de qualquer escrita
	rows, err := readRows(file, normalizer.RequiredColumns())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseableFile, err)
	}

	directory, err := s.directoryLoader.Load(clientID)
	if err != nil {
		return nil, err
	}

	resolver, err := resolving.NewResolver(directory, s.scorer, s.cfg.Matching.FuzzyThreshold)
	if err != nil {
		return nil, err
	}

	result := &domain.IngestionResult{Platform: platform}
	if directory.SentinelCreated {
		result.LocationsCreated++
	}

	unmappedID := directory.Unmapped().ID
	transactions := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		transaction, err := normalizer.Normalize(row.record)
		if err != nil {
			result.RowsRejected++
			result.RejectedRows = append(result.RejectedRows, domain.RejectedRow{
				Line:   row.line,
				Reason: err.Error(),
			})
			continue
		}

		transaction.ClientID = clientID
		transaction.LocationID = resolver.Resolve(platform, transaction.RawStoreName)
		if transaction.LocationID == unmappedID {
			result.RowsUnmapped++
		}

		transactions = append(transactions, transaction)
		result.RowsProcessed++
	}

	if len(transactions) == 0 {
		if result.RowsRejected > 0 {
			return result, ErrNoValidRows
		}
		return result, nil
	}

	deduplicated := dedupeLastWins(transactions)

	if err := s.upsertInBatches(platform, deduplicated); err != nil {
		return result, err
	}

	logrus.WithFields(logrus.Fields{
		"client_id":      clientID,
		"platform":       platform,
		"rows_processed": result.RowsProcessed,
		"rows_rejected":  result.RowsRejected,
		"rows_unmapped":  result.RowsUnmapped,
		"deduplicated":   len(transactions) - len(deduplicated),
	}).Info("Ingestão concluída")

	return result, nil
}

// dedupeLastWins colapsa duplicatas de chave natural dentro do lote: a última
// ocorrência na ordem do arquivo vence (a linha mais recente supersede a
// anterior). Política documentada e determinística; a ordem relativa das
// chaves distintas é preservada.
func dedupeLastWins(transactions []*domain.Transaction) []*domain.Transaction {
	indexByKey := make(map[string]int, len(transactions))
	deduplicated := make([]*domain.Transaction, 0, len(transactions))

	for _, transaction := range transactions {
		key := transaction.NaturalKey()
		if i, ok := indexByKey[key]; ok {
			deduplicated[i] = transaction
			continue
		}
		indexByKey[key] = len(deduplicated)
		deduplicated = append(deduplicated, transaction)
	}

	return deduplicated
}

// upsertInBatches grava em lotes de tamanho fixo para limitar o tamanho do
// statement. Falha de lote para os lotes seguintes e reporta o índice; os
// lotes anteriores permanecem gravados (sem transação entre lotes — o upsert
// por chave natural torna o reenvio seguro).
func (s *service) upsertInBatches(platform domain.Platform, transactions []*domain.Transaction) error {
	batchSize := s.cfg.Ingestion.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	for start, batchIndex := 0, 0; start < len(transactions); start, batchIndex = start+batchSize, batchIndex+1 {
		end := start + batchSize
		if end > len(transactions) {
			end = len(transactions)
		}

		if err := s.transactionRepo.UpsertBatch(platform, transactions[start:end]); err != nil {
			return fmt.Errorf("erro ao gravar o lote %d: %w", batchIndex, err)
		}
	}

	return nil
}

// Purge é o modo destrutivo "substituir semana": apaga as transações da
// plataforma no intervalo. Invocado somente de forma explícita.
func (s *service) Purge(purge *domain.PurgeRequest) (int64, error) {
	if purge.EndDate.Before(purge.StartDate) {
		return 0, ErrInvalidDateRange
	}

	client, err := s.clientRepo.GetClientByID(purge.ClientID)
	if err != nil {
		return 0, fmt.Errorf("erro ao buscar cliente %s: %w", purge.ClientID, err)
	}
	if client == nil {
		return 0, ErrClientNotFound
	}

	deleted, err := s.transactionRepo.DeleteByDateRange(purge)
	if err != nil {
		return 0, err
	}

	logrus.WithFields(logrus.Fields{
		"client_id":  purge.ClientID,
		"platform":   purge.Platform,
		"start_date": purge.StartDate.Format("2006-01-02"),
		"end_date":   purge.EndDate.Format("2006-01-02"),
		"deleted":    deleted,
	}).Warn("Transações removidas para reimport da semana")

	return deleted, nil
}
