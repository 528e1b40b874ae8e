package repository

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/collab-access/internal/access"
	"github.com/spec-kit/collab-access/internal/domain"
)

// ErrInvalidCursor reports a pagination cursor that cannot be decoded.
// Callers treat it as bad input, not a store failure.
var ErrInvalidCursor = errors.New("invalid cursor")

// DocumentPage is one page of a scope-filtered listing.
type DocumentPage struct {
	Documents  []domain.Document
	NextCursor string
}

// DocumentRepository encapsulates document persistence.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Document, error)
	UpdateTitle(ctx context.Context, id, title string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter access.ListFilter, cursor string, limit int) (*DocumentPage, error)
}

type documentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository instantiates repository.
func NewDocumentRepository(pool *pgxpool.Pool) DocumentRepository {
	return &documentRepository{pool: pool}
}

const documentColumns = "id, title, owner_id, organization_id, initial_content, created_at, updated_at"

func (r *documentRepository) Create(ctx context.Context, doc *domain.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO documents (id, title, owner_id, organization_id, initial_content)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		doc.ID,
		doc.Title,
		doc.OwnerID,
		doc.OrganizationID,
		doc.InitialContent,
	).Scan(&doc.CreatedAt, &doc.UpdatedAt)
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE id=$1`, documentColumns)
	var doc domain.Document
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.Title,
		&doc.OwnerID,
		&doc.OrganizationID,
		&doc.InitialContent,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Document, error) {
	if len(ids) == 0 {
		return map[string]*domain.Document{}, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE id = ANY($1)`, documentColumns)
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]*domain.Document, len(ids))
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(
			&doc.ID,
			&doc.Title,
			&doc.OwnerID,
			&doc.OrganizationID,
			&doc.InitialContent,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result[doc.ID] = &doc
	}
	return result, rows.Err()
}

func (r *documentRepository) UpdateTitle(ctx context.Context, id, title string) error {
	const query = `UPDATE documents SET title=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, title, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM documents WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// List returns documents under the scope filter, newest first, with keyset
// pagination. The optional search text narrows by title match but never
// widens visibility beyond the scope clauses.
func (r *documentRepository) List(ctx context.Context, filter access.ListFilter, cursor string, limit int) (*DocumentPage, error) {
	if limit <= 0 {
		limit = 20
	}

	clauses := []string{}
	args := []any{}

	if filter.OrganizationID != "" {
		args = append(args, filter.OrganizationID)
		clauses = append(clauses, fmt.Sprintf("organization_id=$%d", len(args)))
	} else {
		args = append(args, filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("owner_id=$%d", len(args)))
		clauses = append(clauses, "organization_id IS NULL")
	}

	if filter.SearchText != "" {
		args = append(args, "%"+strings.ToLower(filter.SearchText)+"%")
		clauses = append(clauses, fmt.Sprintf("LOWER(title) LIKE $%d", len(args)))
	}

	if cursor != "" {
		createdAt, id, err := decodeCursor(cursor)
		if err != nil {
			return nil, err
		}
		args = append(args, createdAt)
		tsArg := len(args)
		args = append(args, id)
		clauses = append(clauses, fmt.Sprintf("(created_at, id) < ($%d, $%d)", tsArg, len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM documents WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d`,
		documentColumns, strings.Join(clauses, " AND "), limit+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(
			&doc.ID,
			&doc.Title,
			&doc.OwnerID,
			&doc.OrganizationID,
			&doc.InitialContent,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	page := &DocumentPage{Documents: docs}
	if len(docs) > limit {
		page.Documents = docs[:limit]
		last := page.Documents[limit-1]
		page.NextCursor = encodeCursor(last.CreatedAt, last.ID)
	}
	return page, nil
}

func encodeCursor(createdAt time.Time, id string) string {
	raw := strconv.FormatInt(createdAt.UnixNano(), 10) + "|" + id
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(cursor string) (time.Time, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, "", ErrInvalidCursor
	}
	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	return time.Unix(0, nanos), parts[1], nil
}
