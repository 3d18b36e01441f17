package employees

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"workforce/internal/authz"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const employeeColumns = `
  e.id, e.user_id, e.employee_code,
  u.first_name, u.last_name, u.email, COALESCE(u.phone, ''),
  COALESCE(e.position, ''), COALESCE(e.department, ''),
  e.status, e.joined_at, e.created_at, e.updated_at
`

func scanEmployee(row pgx.Row) (*Employee, error) {
	var emp Employee
	err := row.Scan(
		&emp.ID, &emp.UserID, &emp.EmployeeCode,
		&emp.FirstName, &emp.LastName, &emp.Email, &emp.Phone,
		&emp.Position, &emp.Department,
		&emp.Status, &emp.JoinedAt, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &emp, nil
}

func (s *Store) Get(ctx context.Context, employeeID string) (*Employee, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees e
    JOIN users u ON e.user_id = u.id
    WHERE e.id = $1
  `, employeeID)
	return scanEmployee(row)
}

func (s *Store) GetByUser(ctx context.Context, userID string) (*Employee, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees e
    JOIN users u ON e.user_id = u.id
    WHERE e.user_id = $1
  `, userID)
	return scanEmployee(row)
}

func (s *Store) EmployeeIDByUser(ctx context.Context, userID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, "SELECT id FROM employees WHERE user_id = $1", userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return id, err
}

// OwnerUserID resolves the owning user of an employee record, the identity
// the authorization guard compares callers against.
func (s *Store) OwnerUserID(ctx context.Context, employeeID string) (string, error) {
	var userID string
	err := s.DB.QueryRow(ctx, "SELECT user_id FROM employees WHERE id = $1", employeeID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return userID, err
}

func (s *Store) ContactEmail(ctx context.Context, employeeID string) (string, error) {
	var email string
	err := s.DB.QueryRow(ctx, `
    SELECT u.email
    FROM employees e
    JOIN users u ON e.user_id = u.id
    WHERE e.id = $1
  `, employeeID).Scan(&email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return email, err
}

func (s *Store) List(ctx context.Context, status string, limit, offset int) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+employeeColumns+`
    FROM employees e
    JOIN users u ON e.user_id = u.id
    WHERE ($1 = '' OR e.status = $1)
    ORDER BY e.employee_code
    LIMIT $2 OFFSET $3
  `, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *emp)
	}
	return out, rows.Err()
}

type CreateParams struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	Position     string
	Department   string
	JoinedAt     *time.Time
}

// Create provisions a user with the employee role and its employee profile in
// one transaction. The employee code comes from a dedicated sequence.
func (s *Store) Create(ctx context.Context, params CreateParams) (*Employee, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var userID string
	err = tx.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, role, first_name, last_name, phone, status)
    VALUES ($1, $2, $3, $4, $5, $6, 'active')
    RETURNING id
  `, params.Email, params.PasswordHash, authz.RoleEmployee, params.FirstName, params.LastName, nullIfEmpty(params.Phone)).Scan(&userID)
	if err != nil {
		return nil, translateUnique(err)
	}

	employeeID, err := insertEmployee(ctx, tx, userID, params)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return s.Get(ctx, employeeID)
}

// CreateForUser attaches an employee profile to an existing user, used by
// self-signup where the auth handler owns the user insert.
func (s *Store) CreateForUser(ctx context.Context, userID string, params CreateParams) (*Employee, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	employeeID, err := insertEmployee(ctx, tx, userID, params)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return s.Get(ctx, employeeID)
}

func insertEmployee(ctx context.Context, tx pgx.Tx, userID string, params CreateParams) (string, error) {
	var seq int64
	if err := tx.QueryRow(ctx, "SELECT nextval('employee_code_seq')").Scan(&seq); err != nil {
		return "", err
	}

	var employeeID string
	err := tx.QueryRow(ctx, `
    INSERT INTO employees (user_id, employee_code, position, department, status, joined_at)
    VALUES ($1, $2, $3, $4, 'active', $5)
    RETURNING id
  `, userID, FormatEmployeeCode(seq), nullIfEmpty(params.Position), nullIfEmpty(params.Department), params.JoinedAt).Scan(&employeeID)
	if err != nil {
		return "", translateUnique(err)
	}
	return employeeID, nil
}

type UpdateParams struct {
	FirstName  *string
	LastName   *string
	Phone      *string
	Position   *string
	Department *string
	Status     *string
	JoinedAt   *time.Time
}

func (s *Store) Update(ctx context.Context, employeeID string, params UpdateParams) (*Employee, error) {
	emp, err := s.Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if params.FirstName != nil || params.LastName != nil || params.Phone != nil {
		first := emp.FirstName
		last := emp.LastName
		phone := emp.Phone
		if params.FirstName != nil {
			first = *params.FirstName
		}
		if params.LastName != nil {
			last = *params.LastName
		}
		if params.Phone != nil {
			phone = *params.Phone
		}
		if _, err := tx.Exec(ctx, `
      UPDATE users SET first_name = $1, last_name = $2, phone = $3 WHERE id = $4
    `, first, last, nullIfEmpty(phone), emp.UserID); err != nil {
			return nil, err
		}
	}

	position := emp.Position
	department := emp.Department
	status := emp.Status
	joined := emp.JoinedAt
	if params.Position != nil {
		position = *params.Position
	}
	if params.Department != nil {
		department = *params.Department
	}
	if params.Status != nil {
		status = *params.Status
	}
	if params.JoinedAt != nil {
		joined = params.JoinedAt
	}
	if _, err := tx.Exec(ctx, `
    UPDATE employees
    SET position = $1, department = $2, status = $3, joined_at = $4, updated_at = now()
    WHERE id = $5
  `, nullIfEmpty(position), nullIfEmpty(department), status, joined, employeeID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return s.Get(ctx, employeeID)
}

// Delete removes the employee's user account; the employee row and all of its
// attendance, payroll, document and ticket children go with it via cascading
// foreign keys.
func (s *Store) Delete(ctx context.Context, employeeID string) error {
	userID, err := s.OwnerUserID(ctx, employeeID)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, "DELETE FROM users WHERE id = $1", userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func FormatEmployeeCode(seq int64) string {
	return fmt.Sprintf("EMP%06d", seq)
}

func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEmailTaken
	}
	return err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
