package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const locationColumns = `
  id, employee_id, latitude, longitude,
  COALESCE(address, ''), COALESCE(device, ''), COALESCE(client_ip, ''),
  accuracy, check_in_time, check_out_time, status, updated_at
`

func scanLocation(row pgx.Row) (*Location, error) {
	var loc Location
	err := row.Scan(
		&loc.ID, &loc.EmployeeID, &loc.Latitude, &loc.Longitude,
		&loc.Address, &loc.Device, &loc.ClientIP,
		&loc.Accuracy, &loc.CheckInTime, &loc.CheckOutTime, &loc.Status, &loc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &loc, nil
}

func (s *Store) OpenSession(ctx context.Context, employeeID string) (*Location, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+locationColumns+`
    FROM locations
    WHERE employee_id = $1 AND status = $2
  `, employeeID, StatusCheckedIn)
	return scanLocation(row)
}

func (s *Store) Create(ctx context.Context, loc *Location) error {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO locations (employee_id, latitude, longitude, address, device, client_ip, accuracy, check_in_time, status, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    RETURNING id
  `, loc.EmployeeID, loc.Latitude, loc.Longitude, nullIfEmpty(loc.Address), nullIfEmpty(loc.Device),
		nullIfEmpty(loc.ClientIP), loc.Accuracy, loc.CheckInTime, loc.Status, loc.UpdatedAt).Scan(&loc.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// Partial unique index on open sessions caught a concurrent
			// check-in that passed the pre-check.
			return ErrAlreadyCheckedIn
		}
		return err
	}
	return nil
}

func (s *Store) Get(ctx context.Context, locationID string) (*Location, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+locationColumns+`
    FROM locations
    WHERE id = $1
  `, locationID)
	return scanLocation(row)
}

func (s *Store) UpdatePosition(ctx context.Context, locationID string, latitude, longitude float64, accuracy *float64, at time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE locations
    SET latitude = $1, longitude = $2, accuracy = $3, updated_at = $4
    WHERE id = $5 AND status = $6
  `, latitude, longitude, accuracy, at, locationID, StatusCheckedIn)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionClosed
	}
	return nil
}

func (s *Store) Close(ctx context.Context, locationID string, at time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE locations
    SET status = $1, check_out_time = $2, updated_at = $2
    WHERE id = $3 AND status = $4
  `, StatusCheckedOut, at, locationID, StatusCheckedIn)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionClosed
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, locationID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM locations WHERE id = $1", locationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context, employeeID string, limit, offset int) ([]Location, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+locationColumns+`
    FROM locations
    WHERE ($1 = '' OR employee_id::text = $1)
    ORDER BY check_in_time DESC
    LIMIT $2 OFFSET $3
  `, employeeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *loc)
	}
	return out, rows.Err()
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
