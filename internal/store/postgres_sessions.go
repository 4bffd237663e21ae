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

const sessionColumns = `s.id, s.client_id, s.scheduled_at, s.duration_min, s.status, s.created_at, s.updated_at`

func scanSession(row pgx.Row) (*models.Session, error) {
	var sess models.Session
	err := row.Scan(&sess.ID, &sess.ClientID, &sess.ScheduledAt, &sess.DurationMin,
		&sess.Status, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// CreateSession inserts a session only if the client belongs to tenantID.
// Returns ErrNotFound when the client is missing or owned by another tenant.
func (s *PostgresStore) CreateSession(ctx context.Context, session *models.Session, tenantID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO sessions (id, client_id, scheduled_at, duration_min, status, created_at, updated_at)
		 SELECT $1, $2, $3, $4, $5, $6, $7
		 WHERE EXISTS (SELECT 1 FROM clients WHERE id = $2 AND tenant_id = $8)`,
		session.ID, session.ClientID, session.ScheduledAt, session.DurationMin,
		session.Status, session.CreatedAt, session.UpdatedAt, tenantID)
	if err != nil {
		if isForeignKeyError(err) {
			return ErrNotFound
		}
		return fmt.Errorf("create session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) GetSession(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.Session, error) {
	sess, err := scanSession(s.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions s
		 JOIN clients c ON c.id = s.client_id
		 WHERE s.id = $1 AND c.tenant_id = $2`, id, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

func (s *PostgresStore) ListSessions(ctx context.Context, filter SessionFilter) ([]*models.Session, int, error) {
	conditions := []string{"c.tenant_id = $1"}
	args := []any{filter.TenantID}
	argIdx := 2

	if filter.ClientID != uuid.Nil {
		conditions = append(conditions, fmt.Sprintf("s.client_id = $%d", argIdx))
		args = append(args, filter.ClientID)
		argIdx++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")
	from := "FROM sessions s JOIN clients c ON c.id = s.client_id WHERE " + where

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) "+from, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	limit, offset := normalizePage(filter.Page, filter.Limit)
	query := fmt.Sprintf("SELECT %s %s ORDER BY s.scheduled_at DESC LIMIT $%d OFFSET $%d",
		sessionColumns, from, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, total, rows.Err()
}

var validSessionTransitions = map[string][]string{
	models.SessionPlanned:    {models.SessionInProgress},
	models.SessionInProgress: {models.SessionDone},
}

func (s *PostgresStore) UpdateSession(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, update SessionUpdate) (*models.Session, error) {
	if update.Status != nil {
		var current string
		err := s.pool.QueryRow(ctx,
			`SELECT s.status FROM sessions s JOIN clients c ON c.id = s.client_id
			 WHERE s.id = $1 AND c.tenant_id = $2`, id, tenantID).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("get session status: %w", err)
		}
		if current != *update.Status && !transitionAllowed(current, *update.Status) {
			return nil, ErrInvalidTransition
		}
	}

	query := `UPDATE sessions s SET updated_at = NOW()`
	args := []any{id, tenantID}
	argIdx := 3

	if update.ScheduledAt != nil {
		query += fmt.Sprintf(", scheduled_at = $%d", argIdx)
		args = append(args, *update.ScheduledAt)
		argIdx++
	}
	if update.DurationMin != nil {
		query += fmt.Sprintf(", duration_min = $%d", argIdx)
		args = append(args, *update.DurationMin)
		argIdx++
	}
	statusArg := 0
	if update.Status != nil {
		query += fmt.Sprintf(", status = $%d", argIdx)
		args = append(args, *update.Status)
		statusArg = argIdx
		argIdx++
	}

	query += ` FROM clients c
		WHERE s.id = $1 AND c.id = s.client_id AND c.tenant_id = $2`
	// Re-assert the transition in the UPDATE itself so a racing write
	// between the check above and here cannot regress the status.
	if statusArg != 0 {
		query += " AND " + transitionPredicate("s.status", statusArg)
	}
	query += ` RETURNING ` + sessionColumns

	sess, err := scanSession(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		if statusArg != 0 {
			return nil, ErrInvalidTransition
		}
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	return sess, nil
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range validSessionTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// transitionPredicate renders validSessionTransitions as a SQL condition on
// col, where arg is the positional parameter holding the target status.
func transitionPredicate(col string, arg int) string {
	clauses := []string{fmt.Sprintf("%s = $%d", col, arg)}
	for from, targets := range validSessionTransitions {
		for _, to := range targets {
			clauses = append(clauses, fmt.Sprintf("(%s = '%s' AND $%d = '%s')", col, from, arg, to))
		}
	}
	return "(" + strings.Join(clauses, " OR ") + ")"
}

func (s *PostgresStore) DeleteSession(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM sessions s USING clients c
		 WHERE s.id = $1 AND c.id = s.client_id AND c.tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
