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

// --- Notes ---

const noteColumns = `n.id, n.session_id, n.author_id, n.body_md, n.created_at, n.updated_at`

// noteScope joins notes to their author so every query is tenant-bound.
const noteScope = `FROM notes n JOIN users u ON u.id = n.author_id`

func scanNote(row pgx.Row) (*models.Note, error) {
	var n models.Note
	err := row.Scan(&n.ID, &n.SessionID, &n.AuthorID, &n.BodyMD, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// CreateNote inserts a note when the author belongs to tenantID and, if the
// note is attached to a session, that session belongs to the same tenant.
func (s *PostgresStore) CreateNote(ctx context.Context, note *models.Note, tenantID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO notes (id, session_id, author_id, body_md, created_at, updated_at)
		 SELECT $1, $2, $3, $4, $5, $6
		 WHERE EXISTS (SELECT 1 FROM users WHERE id = $3 AND tenant_id = $7)
		   AND ($2::uuid IS NULL OR EXISTS (
		       SELECT 1 FROM sessions s JOIN clients c ON c.id = s.client_id
		       WHERE s.id = $2 AND c.tenant_id = $7))`,
		note.ID, note.SessionID, note.AuthorID, note.BodyMD,
		note.CreatedAt, note.UpdatedAt, tenantID)
	if err != nil {
		if isForeignKeyError(err) {
			return ErrNotFound
		}
		return fmt.Errorf("create note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) GetNote(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.Note, error) {
	n, err := scanNote(s.pool.QueryRow(ctx,
		`SELECT `+noteColumns+` `+noteScope+` WHERE n.id = $1 AND u.tenant_id = $2`, id, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) ListNotes(ctx context.Context, filter NoteFilter) ([]*models.Note, int, error) {
	conditions := []string{"u.tenant_id = $1"}
	args := []any{filter.TenantID}
	argIdx := 2

	if filter.SessionID != uuid.Nil {
		conditions = append(conditions, fmt.Sprintf("n.session_id = $%d", argIdx))
		args = append(args, filter.SessionID)
		argIdx++
	}
	if filter.AuthorID != uuid.Nil {
		conditions = append(conditions, fmt.Sprintf("n.author_id = $%d", argIdx))
		args = append(args, filter.AuthorID)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) "+noteScope+" WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notes: %w", err)
	}

	limit, offset := normalizePage(filter.Page, filter.Limit)
	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY n.created_at DESC LIMIT $%d OFFSET $%d",
		noteColumns, noteScope, where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []*models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, total, rows.Err()
}

func (s *PostgresStore) UpdateNote(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, update NoteUpdate) (*models.Note, error) {
	query := `UPDATE notes n SET updated_at = NOW()`
	args := []any{id, tenantID}
	argIdx := 3

	sessionArg := 0
	if update.SessionID != nil {
		query += fmt.Sprintf(", session_id = $%d", argIdx)
		args = append(args, *update.SessionID)
		sessionArg = argIdx
		argIdx++
	}
	if update.BodyMD != nil {
		query += fmt.Sprintf(", body_md = $%d", argIdx)
		args = append(args, *update.BodyMD)
		argIdx++
	}

	query += ` FROM users u
		WHERE n.id = $1 AND u.id = n.author_id AND u.tenant_id = $2`
	// A relocated note may only point at a session in the caller's tenant.
	if sessionArg != 0 {
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM sessions s JOIN clients c ON c.id = s.client_id
			WHERE s.id = $%d AND c.tenant_id = $2)`, sessionArg)
	}
	query += ` RETURNING ` + noteColumns

	n, err := scanNote(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) || isForeignKeyError(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) DeleteNote(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM notes n USING users u
		 WHERE n.id = $1 AND u.id = n.author_id AND u.tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Media ---

const mediaColumns = `m.id, m.session_id, m.type, m.url, m.transcription, m.created_at, m.updated_at`

const mediaScope = `FROM media m JOIN sessions s ON s.id = m.session_id JOIN clients c ON c.id = s.client_id`

func scanMedia(row pgx.Row) (*models.Media, error) {
	var m models.Media
	err := row.Scan(&m.ID, &m.SessionID, &m.Type, &m.URL, &m.Transcription, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *PostgresStore) CreateMedia(ctx context.Context, media *models.Media, tenantID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO media (id, session_id, type, url, transcription, created_at, updated_at)
		 SELECT $1, $2, $3, $4, $5, $6, $7
		 WHERE EXISTS (SELECT 1 FROM sessions s JOIN clients c ON c.id = s.client_id
		               WHERE s.id = $2 AND c.tenant_id = $8)`,
		media.ID, media.SessionID, media.Type, media.URL, media.Transcription,
		media.CreatedAt, media.UpdatedAt, tenantID)
	if err != nil {
		if isForeignKeyError(err) {
			return ErrNotFound
		}
		return fmt.Errorf("create media: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) GetMedia(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.Media, error) {
	m, err := scanMedia(s.pool.QueryRow(ctx,
		`SELECT `+mediaColumns+` `+mediaScope+` WHERE m.id = $1 AND c.tenant_id = $2`, id, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get media: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) ListMedia(ctx context.Context, filter MediaFilter) ([]*models.Media, int, error) {
	conditions := []string{"c.tenant_id = $1"}
	args := []any{filter.TenantID}
	argIdx := 2

	if filter.SessionID != uuid.Nil {
		conditions = append(conditions, fmt.Sprintf("m.session_id = $%d", argIdx))
		args = append(args, filter.SessionID)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) "+mediaScope+" WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count media: %w", err)
	}

	limit, offset := normalizePage(filter.Page, filter.Limit)
	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY m.created_at DESC LIMIT $%d OFFSET $%d",
		mediaColumns, mediaScope, where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	var items []*models.Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan media: %w", err)
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func (s *PostgresStore) UpdateMedia(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, update MediaUpdate) (*models.Media, error) {
	query := `UPDATE media m SET updated_at = NOW()`
	args := []any{id, tenantID}
	argIdx := 3

	if update.Type != nil {
		query += fmt.Sprintf(", type = $%d", argIdx)
		args = append(args, *update.Type)
		argIdx++
	}
	if update.URL != nil {
		query += fmt.Sprintf(", url = $%d", argIdx)
		args = append(args, *update.URL)
		argIdx++
	}
	if update.Transcription != nil {
		query += fmt.Sprintf(", transcription = $%d", argIdx)
		args = append(args, *update.Transcription)
		argIdx++
	}

	query += ` FROM sessions s, clients c
		WHERE m.id = $1 AND s.id = m.session_id AND c.id = s.client_id AND c.tenant_id = $2
		RETURNING ` + mediaColumns

	m, err := scanMedia(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update media: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) DeleteMedia(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM media m USING sessions s, clients c
		 WHERE m.id = $1 AND s.id = m.session_id AND c.id = s.client_id AND c.tenant_id = $2`,
		id, tenantID)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Insights ---

const insightColumns = `i.id, i.session_id, i.kind, i.content, i.embedding, i.created_at, i.updated_at`

const insightScope = `FROM insights i JOIN sessions s ON s.id = i.session_id JOIN clients c ON c.id = s.client_id`

func scanInsight(row pgx.Row) (*models.Insight, error) {
	var ins models.Insight
	err := row.Scan(&ins.ID, &ins.SessionID, &ins.Kind, &ins.Content, &ins.Embedding,
		&ins.CreatedAt, &ins.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ins, nil
}

func (s *PostgresStore) CreateInsight(ctx context.Context, insight *models.Insight, tenantID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO insights (id, session_id, kind, content, embedding, created_at, updated_at)
		 SELECT $1, $2, $3, $4, $5, $6, $7
		 WHERE EXISTS (SELECT 1 FROM sessions s JOIN clients c ON c.id = s.client_id
		               WHERE s.id = $2 AND c.tenant_id = $8)`,
		insight.ID, insight.SessionID, insight.Kind, insight.Content, insight.Embedding,
		insight.CreatedAt, insight.UpdatedAt, tenantID)
	if err != nil {
		if isForeignKeyError(err) {
			return ErrNotFound
		}
		return fmt.Errorf("create insight: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) GetInsight(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.Insight, error) {
	ins, err := scanInsight(s.pool.QueryRow(ctx,
		`SELECT `+insightColumns+` `+insightScope+` WHERE i.id = $1 AND c.tenant_id = $2`, id, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get insight: %w", err)
	}
	return ins, nil
}

func (s *PostgresStore) ListInsights(ctx context.Context, filter InsightFilter) ([]*models.Insight, int, error) {
	conditions := []string{"c.tenant_id = $1"}
	args := []any{filter.TenantID}
	argIdx := 2

	if filter.SessionID != uuid.Nil {
		conditions = append(conditions, fmt.Sprintf("i.session_id = $%d", argIdx))
		args = append(args, filter.SessionID)
		argIdx++
	}
	if filter.Kind != "" {
		conditions = append(conditions, fmt.Sprintf("i.kind = $%d", argIdx))
		args = append(args, filter.Kind)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) "+insightScope+" WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count insights: %w", err)
	}

	limit, offset := normalizePage(filter.Page, filter.Limit)
	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY i.created_at DESC LIMIT $%d OFFSET $%d",
		insightColumns, insightScope, where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list insights: %w", err)
	}
	defer rows.Close()

	var insights []*models.Insight
	for rows.Next() {
		ins, err := scanInsight(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan insight: %w", err)
		}
		insights = append(insights, ins)
	}
	return insights, total, rows.Err()
}

func (s *PostgresStore) UpdateInsight(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, update InsightUpdate) (*models.Insight, error) {
	query := `UPDATE insights i SET updated_at = NOW()`
	args := []any{id, tenantID}
	argIdx := 3

	if update.Kind != nil {
		query += fmt.Sprintf(", kind = $%d", argIdx)
		args = append(args, *update.Kind)
		argIdx++
	}
	if update.Content != nil {
		query += fmt.Sprintf(", content = $%d", argIdx)
		args = append(args, *update.Content)
		argIdx++
	}
	if update.Embedding != nil {
		query += fmt.Sprintf(", embedding = $%d", argIdx)
		args = append(args, *update.Embedding)
		argIdx++
	}

	query += ` FROM sessions s, clients c
		WHERE i.id = $1 AND s.id = i.session_id AND c.id = s.client_id AND c.tenant_id = $2
		RETURNING ` + insightColumns

	ins, err := scanInsight(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update insight: %w", err)
	}
	return ins, nil
}

func (s *PostgresStore) DeleteInsight(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM insights i USING sessions s, clients c
		 WHERE i.id = $1 AND s.id = i.session_id AND c.id = s.client_id AND c.tenant_id = $2`,
		id, tenantID)
	if err != nil {
		return fmt.Errorf("delete insight: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
