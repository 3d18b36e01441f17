package tickets

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const ticketColumns = `
  id, employee_id, subject, body, status, priority, created_at, updated_at
`

func scanTicket(row pgx.Row) (*Ticket, error) {
	var t Ticket
	err := row.Scan(
		&t.ID, &t.EmployeeID, &t.Subject, &t.Body, &t.Status, &t.Priority,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *Store) Create(ctx context.Context, t *Ticket) error {
	return s.DB.QueryRow(ctx, `
    INSERT INTO tickets (employee_id, subject, body, status, priority)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id, created_at, updated_at
  `, t.EmployeeID, t.Subject, t.Body, t.Status, t.Priority).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (s *Store) Get(ctx context.Context, ticketID string) (*Ticket, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+ticketColumns+`
    FROM tickets
    WHERE id = $1
  `, ticketID)
	return scanTicket(row)
}

func (s *Store) List(ctx context.Context, employeeID, status string, limit, offset int) ([]Ticket, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+ticketColumns+`
    FROM tickets
    WHERE ($1 = '' OR employee_id::text = $1)
      AND ($2 = '' OR status = $2)
    ORDER BY created_at DESC
    LIMIT $3 OFFSET $4
  `, employeeID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *t)
	}
	return list, rows.Err()
}

func (s *Store) UpdateStatus(ctx context.Context, ticketID, status string) (*Ticket, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE tickets
    SET status = $1, updated_at = now()
    WHERE id = $2
    RETURNING `+ticketColumns+`
  `, status, ticketID)
	return scanTicket(row)
}

func (s *Store) Delete(ctx context.Context, ticketID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM tickets WHERE id = $1", ticketID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
