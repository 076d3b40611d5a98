package repository

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/delivery-recon-api/infrastructure/database/postgres"
	"github.com/vfg2006/delivery-recon-api/internal/domain"
)

const (
	locationsTable = "locations l"

	locationColumns = "l.id, l.client_id, l.canonical_name, l.store_id, " +
		"l.uber_eats_store_label, l.doordash_name, l.grubhub_name, " +
		"l.is_verified, l.is_unmapped, l.created_at, l.updated_at"
)

type LocationRepository interface {
	ListByClient(clientID string) ([]*domain.Location, error)
	GetByID(locationID string) (*domain.Location, error)
	GetByCanonicalName(clientID, canonicalName string) (*domain.Location, error)
	GetUnmapped(clientID string) (*domain.Location, error)
	Create(location *domain.Location) error
	UpdateStoreID(locationID string, storeID string) error
	ConfirmPlatformName(locationID string, platform domain.Platform, rawName string) error
}

type locationRepository struct {
	conn *postgres.Connection
}

func NewLocationRepository(conn *postgres.Connection) LocationRepository {
	return &locationRepository{
		conn: conn,
	}
}

func (r *locationRepository) ListByClient(clientID string) ([]*domain.Location, error) {
	query, args, err := squirrel.
		Select(locationColumns).
		From(locationsTable).
		Where(squirrel.Eq{"l.client_id": clientID}).
		OrderBy("l.created_at ASC", "l.id ASC").
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

	locations := make([]*domain.Location, 0)
	for rows.Next() {
		location, err := r.scanLocationRows(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear location: %w", err)
		}
		locations = append(locations, location)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return locations, nil
}

func (r *locationRepository) GetByID(locationID string) (*domain.Location, error) {
	return r.getLocation(squirrel.Eq{"l.id": locationID})
}

func (r *locationRepository) GetByCanonicalName(clientID, canonicalName string) (*domain.Location, error) {
	return r.getLocation(squirrel.Eq{"l.client_id": clientID, "l.canonical_name": canonicalName})
}

// GetUnmapped busca a Location sentinela do cliente, que absorve as
// transações sem correspondência confiável
func (r *locationRepository) GetUnmapped(clientID string) (*domain.Location, error) {
	return r.getLocation(squirrel.Eq{"l.client_id": clientID, "l.is_unmapped": true})
}

func (r *locationRepository) getLocation(whereClause map[string]interface{}) (*domain.Location, error) {
	query, args, err := squirrel.
		Select(locationColumns).
		From(locationsTable).
		Where(whereClause).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	row := r.conn.QueryRow(query, args...)
	location, err := r.scanLocationRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear location: %w", err)
	}

	return location, nil
}

func (r *locationRepository) Create(location *domain.Location) error {
	query, args, err := squirrel.StatementBuilder.
		Insert("locations").
		Columns(
			"id",
			"client_id",
			"canonical_name",
			"store_id",
			"uber_eats_store_label",
			"doordash_name",
			"grubhub_name",
			"is_verified",
			"is_unmapped",
		).
		Values(
			location.ID,
			location.ClientID,
			location.CanonicalName,
			location.StoreID,
			location.UberEatsStoreLabel,
			location.DoordashName,
			location.GrubhubName,
			location.IsVerified,
			location.IsUnmapped,
		).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	_, err = r.conn.Exec(query, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

func (r *locationRepository) UpdateStoreID(locationID string, storeID string) error {
	query, args, err := squirrel.
		Update("locations").
		Set("store_id", storeID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": locationID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	_, err = r.conn.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

// ConfirmPlatformName grava o vínculo confirmado por um humano: define o
// campo de nome da plataforma e marca a Location como verificada
func (r *locationRepository) ConfirmPlatformName(locationID string, platform domain.Platform, rawName string) error {
	var column string
	switch platform {
	case domain.PlatformUberEats:
		column = "uber_eats_store_label"
	case domain.PlatformDoordash:
		column = "doordash_name"
	case domain.PlatformGrubhub:
		column = "grubhub_name"
	default:
		return fmt.Errorf("plataforma desconhecida: %q", platform)
	}

	query, args, err := squirrel.
		Update("locations").
		Set(column, rawName).
		Set("is_verified", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": locationID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("location não encontrada: %s", locationID)
	}

	return nil
}

func (r *locationRepository) scanLocationRow(row *sql.Row) (*domain.Location, error) {
	location := &domain.Location{}

	err := row.Scan(
		&location.ID,
		&location.ClientID,
		&location.CanonicalName,
		&location.StoreID,
		&location.UberEatsStoreLabel,
		&location.DoordashName,
		&location.GrubhubName,
		&location.IsVerified,
		&location.IsUnmapped,
		&location.CreatedAt,
		&location.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return location, nil
}

func (r *locationRepository) scanLocationRows(rows *sql.Rows) (*domain.Location, error) {
	location := &domain.Location{}

	err := rows.Scan(
		&location.ID,
		&location.ClientID,
		&location.CanonicalName,
		&location.StoreID,
		&location.UberEatsStoreLabel,
		&location.DoordashName,
		&location.GrubhubName,
		&location.IsVerified,
		&location.IsUnmapped,
		&location.CreatedAt,
		&location.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return location, nil
}
