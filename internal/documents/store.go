package documents

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("document not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const documentColumns = `
  id, employee_id, doc_type, file_name, content_type, storage_path,
  uploaded_by, created_at
`

func scanDocument(row pgx.Row) (*Document, error) {
	var doc Document
	err := row.Scan(
		&doc.ID, &doc.EmployeeID, &doc.DocType, &doc.FileName, &doc.ContentType,
		&doc.StoragePath, &doc.UploadedBy, &doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (s *Store) Create(ctx context.Context, doc *Document) error {
	return s.DB.QueryRow(ctx, `
    INSERT INTO documents (employee_id, doc_type, file_name, content_type, storage_path, uploaded_by)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING id, created_at
  `, doc.EmployeeID, doc.DocType, doc.FileName, doc.ContentType, doc.StoragePath, doc.UploadedBy).
		Scan(&doc.ID, &doc.CreatedAt)
}

func (s *Store) Get(ctx context.Context, documentID string) (*Document, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+documentColumns+`
    FROM documents
    WHERE id = $1
  `, documentID)
	return scanDocument(row)
}

func (s *Store) List(ctx context.Context, employeeID string, limit, offset int) ([]Document, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+documentColumns+`
    FROM documents
    WHERE ($1 = '' OR employee_id::text = $1)
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, employeeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (s *Store) Delete(ctx context.Context, documentID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM documents WHERE id = $1", documentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
