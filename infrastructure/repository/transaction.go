package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/delivery-recon-api/infrastructure/database/postgres"
	"github.com/vfg2006/delivery-recon-api/internal/domain"
)

// platformTable descreve a tabela e a chave natural de cada plataforma.
// Uma tabela por plataforma, com unicidade por (client, chave da plataforma);
// reimportar o mesmo arquivo faz upsert, nunca duplica.
type platformTable struct {
	name        string
	externalCol string
	dateInKey   bool
}

var platformTables = map[domain.Platform]platformTable{
	domain.PlatformUberEats: {name: "ubereats_transactions", externalCol: "workflow_id"},
	domain.PlatformDoordash: {name: "doordash_transactions", externalCol: "transaction_id"},
	// Números de pedido do Grubhub se repetem entre dias: a data entra na chave
	domain.PlatformGrubhub: {name: "grubhub_transactions", externalCol: "order_number", dateInKey: true},
}

type TransactionRepository interface {
	UpsertBatch(platform domain.Platform, transactions []*domain.Transaction) error
	DeleteByDateRange(purge *domain.PurgeRequest) (int64, error)
	DistinctRawNamesByLocation(clientID string, platform domain.Platform, locationID string) ([]*domain.RawNameCount, error)
	RebindRawName(clientID string, platform domain.Platform, rawName, locationID string) (int64, error)
	WeeklyAggregates(platform domain.Platform, filters *domain.MetricsFilters) ([]*domain.WeeklyAggregate, error)
}

type transactionRepository struct {
	conn *postgres.Connection
}

func NewTransactionRepository(conn *postgres.Connection) TransactionRepository {
	return &transactionRepository{
		conn: conn,
	}
}

func tableFor(platform domain.Platform) (platformTable, error) {
	table, ok := platformTables[platform]
	if !ok {
		return platformTable{}, fmt.Errorf("plataforma desconhecida: %q", platform)
	}
	return table, nil
}

// UpsertBatch insere um lote já deduplicado com semântica
// "on conflict, update": reexecutar a mesma ingestão é um no-op em efeito,
// fora o updated_at
func (r *transactionRepository) UpsertBatch(platform domain.Platform, transactions []*domain.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	table, err := tableFor(platform)
	if err != nil {
		return err
	}

	query := squirrel.StatementBuilder.
		Insert(table.name).
		Columns(
			"client_id",
			"location_id",
			table.externalCol,
			"raw_store_name",
			"transaction_date",
			"sales",
			"marketing_spend",
			"marketing_sales",
			"fees",
			"net_payout",
		).
		PlaceholderFormat(squirrel.Dollar)

	for _, t := range transactions {
		query = query.Values(
			t.ClientID,
			t.LocationID,
			t.ExternalID,
			t.RawStoreName,
			t.Date.Format(time.DateOnly),
			t.Sales,
			t.MarketingSpend,
			t.MarketingSales,
			t.Fees,
			t.NetPayout,
		)
	}

	conflictCols := []string{"client_id", table.externalCol}
	if table.dateInKey {
		conflictCols = append(conflictCols, "transaction_date")
	}

	query = query.Suffix(fmt.Sprintf(`
		ON CONFLICT (%s) DO UPDATE SET
			location_id = EXCLUDED.location_id,
			raw_store_name = EXCLUDED.raw_store_name,
			transaction_date = EXCLUDED.transaction_date,
			sales = EXCLUDED.sales,
			marketing_spend = EXCLUDED.marketing_spend,
			marketing_sales = EXCLUDED.marketing_sales,
			fees = EXCLUDED.fees,
			net_payout = EXCLUDED.net_payout,
			updated_at = NOW()
	`, strings.Join(conflictCols, ", ")))

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir query de inserção: %w", err)
	}

	_, err = r.conn.Exec(sqlQuery, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar query de inserção: %w", err)
	}

	return nil
}

// DeleteByDateRange é o modo destrutivo "substituir semana": apaga as
// transações do intervalo antes de um reimport. Só roda por invocação
// explícita do chamador, nunca implícito num upload normal.
func (r *transactionRepository) DeleteByDateRange(purge *domain.PurgeRequest) (int64, error) {
	table, err := tableFor(purge.Platform)
	if err != nil {
		return 0, err
	}

	query, args, err := squirrel.
		Delete(table.name).
		Where(squirrel.Eq{"client_id": purge.ClientID}).
		Where(squirrel.GtOrEq{"transaction_date": purge.StartDate.Format(time.DateOnly)}).
		Where(squirrel.LtOrEq{"transaction_date": purge.EndDate.Format(time.DateOnly)}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("erro ao executar a query: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}

	return rowsAffected, nil
}

// DistinctRawNamesByLocation lista os nomes brutos distintos vinculados a uma
// Location (em geral a sentinela), com contagem de pedidos, para alimentar
// as sugestões de match
func (r *transactionRepository) DistinctRawNamesByLocation(clientID string, platform domain.Platform, locationID string) ([]*domain.RawNameCount, error) {
	table, err := tableFor(platform)
	if err != nil {
		return nil, err
	}

	query, args, err := squirrel.
		Select("t.raw_store_name", "COUNT(t.id) AS order_count").
		From(table.name + " t").
		Where(squirrel.Eq{"t.client_id": clientID, "t.location_id": locationID}).
		GroupBy("t.raw_store_name").
		OrderBy("order_count DESC", "t.raw_store_name ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	names := make([]*domain.RawNameCount, 0)
	for rows.Next() {
		nc := &domain.RawNameCount{}
		if err := rows.Scan(&nc.RawStoreName, &nc.OrderCount); err != nil {
			return nil, fmt.Errorf("erro ao escanear nome bruto: %w", err)
		}
		names = append(names, nc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return names, nil
}

// RebindRawName reatribui para a Location confirmada todas as transações
// observadas sob um nome bruto
func (r *transactionRepository) RebindRawName(clientID string, platform domain.Platform, rawName, locationID string) (int64, error) {
	table, err := tableFor(platform)
	if err != nil {
		return 0, err
	}

	query, args, err := squirrel.
		Update(table.name).
		Set("location_id", locationID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"client_id": clientID, "raw_store_name": rawName}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("erro ao executar a query: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}

	return rowsAffected, nil
}

// WeeklyAggregates agrega as transações de uma plataforma por
// (location, semana). As métricas consolidadas são calculadas na leitura;
// nada de estado derivado durável.
func (r *transactionRepository) WeeklyAggregates(platform domain.Platform, filters *domain.MetricsFilters) ([]*domain.WeeklyAggregate, error) {
	table, err := tableFor(platform)
	if err != nil {
		return nil, err
	}

	queryBuilder := squirrel.
		Select(
			"t.client_id",
			"t.location_id",
			"l.canonical_name",
			"date_trunc('week', t.transaction_date)::date AS week_start",
			"COALESCE(SUM(t.sales), 0)",
			"COUNT(t.id)",
			"COALESCE(SUM(t.marketing_spend), 0)",
			"COALESCE(SUM(t.marketing_sales), 0)",
			"COALESCE(SUM(t.fees), 0)",
			"COALESCE(SUM(t.net_payout), 0)",
		).
		From(table.name + " t").
		Join("locations l ON l.id = t.location_id").
		GroupBy("t.client_id", "t.location_id", "l.canonical_name", "week_start").
		OrderBy("week_start ASC", "l.canonical_name ASC").
		PlaceholderFormat(squirrel.Dollar)

	if filters != nil {
		if filters.ClientID != "" {
			queryBuilder = queryBuilder.Where(squirrel.Eq{"t.client_id": filters.ClientID})
		}
		if filters.LocationID != "" {
			queryBuilder = queryBuilder.Where(squirrel.Eq{"t.location_id": filters.LocationID})
		}
		if filters.WeekStart != nil {
			queryBuilder = queryBuilder.Where(squirrel.GtOrEq{"t.transaction_date": filters.WeekStart.Format(time.DateOnly)})
		}
		if filters.WeekEnd != nil {
			queryBuilder = queryBuilder.Where(squirrel.LtOrEq{"t.transaction_date": filters.WeekEnd.Format(time.DateOnly)})
		}
	}

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	aggregates := make([]*domain.WeeklyAggregate, 0)
	for rows.Next() {
		agg := &domain.WeeklyAggregate{Platform: platform}
		if err := rows.Scan(
			&agg.ClientID,
			&agg.LocationID,
			&agg.LocationName,
			&agg.WeekStart,
			&agg.TotalSales,
			&agg.TotalOrders,
			&agg.MarketingSpend,
			&agg.MarketingSales,
			&agg.Fees,
			&agg.NetPayout,
		); err != nil {
			return nil, fmt.Errorf("erro ao escanear agregado semanal: %w", err)
		}
		aggregates = append(aggregates, agg)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return aggregates, nil
}
