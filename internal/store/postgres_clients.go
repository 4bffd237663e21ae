package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stavrogyn/illumate-api/pkg/models"
)

const clientColumns = `id, tenant_id, full_name, birthday, tags, created_at, updated_at`

func scanClient(row pgx.Row) (*models.Client, error) {
	var c models.Client
	err := row.Scan(&c.ID, &c.TenantID, &c.FullName, &c.Birthday, &c.Tags, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return &c, nil
}

func (s *PostgresStore) CreateClient(ctx context.Context, client *models.Client) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO clients (id, tenant_id, full_name, birthday, tags, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		client.ID, client.TenantID, client.FullName, client.Birthday, client.Tags,
		client.CreatedAt, client.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetClient(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.Client, error) {
	c, err := scanClient(s.pool.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1 AND tenant_id = $2`, id, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListClients(ctx context.Context, filter ClientFilter) ([]*models.Client, int, error) {
	conditions := []string{"tenant_id = $1"}
	args := []any{filter.TenantID}
	argIdx := 2

	if filter.Tag != "" {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(tags)", argIdx))
		args = append(args, filter.Tag)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM clients WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	limit, offset := normalizePage(filter.Page, filter.Limit)
	query := fmt.Sprintf("SELECT %s FROM clients WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		clientColumns, where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, total, rows.Err()
}

func (s *PostgresStore) UpdateClient(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, update ClientUpdate) (*models.Client, error) {
	query := `UPDATE clients SET updated_at = NOW()`
	args := []any{id, tenantID}
	argIdx := 3

	if update.FullName != nil {
		query += fmt.Sprintf(", full_name = $%d", argIdx)
		args = append(args, *update.FullName)
		argIdx++
	}
	if update.Birthday != nil {
		query += fmt.Sprintf(", birthday = $%d", argIdx)
		args = append(args, *update.Birthday)
		argIdx++
	}
	if update.Tags != nil {
		query += fmt.Sprintf(", tags = $%d", argIdx)
		args = append(args, *update.Tags)
		argIdx++
	}

	query += ` WHERE id = $1 AND tenant_id = $2 RETURNING ` + clientColumns

	c, err := scanClient(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) DeleteClient(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM clients WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
