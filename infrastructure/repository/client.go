// Package repository contém as implementações dos repositórios para acesso aos dados
package repository

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/delivery-recon-api/infrastructure/database/postgres"
	"github.com/vfg2006/delivery-recon-api/internal/domain"
)

const (
	clientsTable = "clients c"
)

type ClientRepository interface {
	GetClientByID(clientID string) (*domain.Client, error)
	ListClients() ([]*domain.Client, error)
	SaveOrUpdate(client *domain.Client) error
}

type clientRepository struct {
	conn *postgres.Connection
}

func NewClientRepository(conn *postgres.Connection) ClientRepository {
	return &clientRepository{
		conn: conn,
	}
}

func (r *clientRepository) GetClientByID(clientID string) (*domain.Client, error) {
	query, args, err := squirrel.
		Select("c.id, c.name, c.created_at, c.updated_at").
		From(clientsTable).
		Where(squirrel.Eq{"c.id": clientID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	client := &domain.Client{}
	row := r.conn.QueryRow(query, args...)
	if err := row.Scan(&client.ID, &client.Name, &client.CreatedAt, &client.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear cliente: %w", err)
	}

	return client, nil
}

func (r *clientRepository) ListClients() ([]*domain.Client, error) {
	query, args, err := squirrel.
		Select("c.id, c.name, c.created_at, c.updated_at").
		From(clientsTable).
		OrderBy("c.name ASC").
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

	clients := make([]*domain.Client, 0)
	for rows.Next() {
		client := &domain.Client{}
		if err := rows.Scan(&client.ID, &client.Name, &client.CreatedAt, &client.UpdatedAt); err != nil {
			return nil, fmt.Errorf("erro ao escanear cliente: %w", err)
		}
		clients = append(clients, client)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return clients, nil
}

func (r *clientRepository) SaveOrUpdate(client *domain.Client) error {
	query, args, err := squirrel.StatementBuilder.
		Insert("clients").
		Columns("id", "name").
		Values(client.ID, client.Name).
		Suffix(`
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				updated_at = NOW()
		`).
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
