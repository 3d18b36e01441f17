package payroll

import (
	"context"
	"encoding/json"
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

const recordColumns = `
  id, employee_id, week_start_date, week_end_date, basic_salary,
  overtime_hours, overtime_rate, overtime_amount, bonuses, deductions,
  gross_pay, total_deductions, net_pay,
  payment_status, COALESCE(payment_method, ''), COALESCE(notes, ''),
  payment_date, COALESCE(created_by::text, ''), is_viewed, viewed_at,
  created_at, updated_at
`

func scanRecord(row pgx.Row) (*PaymentRecord, error) {
	var rec PaymentRecord
	var bonusesJSON, deductionsJSON []byte
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.WeekStartDate, &rec.WeekEndDate, &rec.BasicSalary,
		&rec.Overtime.Hours, &rec.Overtime.Rate, &rec.Overtime.Amount, &bonusesJSON, &deductionsJSON,
		&rec.GrossPay, &rec.TotalDeductions, &rec.NetPay,
		&rec.PaymentStatus, &rec.PaymentMethod, &rec.Notes,
		&rec.PaymentDate, &rec.CreatedBy, &rec.IsViewed, &rec.ViewedAt,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(bonusesJSON) > 0 {
		if err := json.Unmarshal(bonusesJSON, &rec.Bonuses); err != nil {
			return nil, err
		}
	}
	if len(deductionsJSON) > 0 {
		if err := json.Unmarshal(deductionsJSON, &rec.Deductions); err != nil {
			return nil, err
		}
	}
	return &rec, nil
}

func marshalLines(lines []MoneyLine) ([]byte, error) {
	if lines == nil {
		lines = []MoneyLine{}
	}
	return json.Marshal(lines)
}

func (s *Store) Create(ctx context.Context, rec *PaymentRecord) error {
	bonusesJSON, err := marshalLines(rec.Bonuses)
	if err != nil {
		return err
	}
	deductionsJSON, err := marshalLines(rec.Deductions)
	if err != nil {
		return err
	}

	err = s.DB.QueryRow(ctx, `
    INSERT INTO payment_records (
      employee_id, week_start_date, week_end_date, basic_salary,
      overtime_hours, overtime_rate, overtime_amount, bonuses, deductions,
      gross_pay, total_deductions, net_pay,
      payment_status, payment_method, notes, created_by, created_at, updated_at
    )
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
    RETURNING id
  `,
		rec.EmployeeID, rec.WeekStartDate, rec.WeekEndDate, rec.BasicSalary,
		rec.Overtime.Hours, rec.Overtime.Rate, rec.Overtime.Amount, bonusesJSON, deductionsJSON,
		rec.GrossPay, rec.TotalDeductions, rec.NetPay,
		rec.PaymentStatus, nullIfEmpty(rec.PaymentMethod), nullIfEmpty(rec.Notes),
		nullIfEmpty(rec.CreatedBy), rec.CreatedAt, rec.UpdatedAt,
	).Scan(&rec.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// Unique (employee_id, week_start_date, week_end_date) caught a
			// concurrent create that passed the pre-check.
			return ErrDuplicateWeek
		}
		return err
	}
	return nil
}

func (s *Store) Get(ctx context.Context, recordID string) (*PaymentRecord, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+recordColumns+`
    FROM payment_records
    WHERE id = $1
  `, recordID)
	return scanRecord(row)
}

func (s *Store) ExistsForWeek(ctx context.Context, employeeID string, weekStart, weekEnd time.Time) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM payment_records
    WHERE employee_id = $1 AND week_start_date = $2 AND week_end_date = $3
  `, employeeID, weekStart, weekEnd).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) Update(ctx context.Context, rec *PaymentRecord) error {
	bonusesJSON, err := marshalLines(rec.Bonuses)
	if err != nil {
		return err
	}
	deductionsJSON, err := marshalLines(rec.Deductions)
	if err != nil {
		return err
	}

	tag, err := s.DB.Exec(ctx, `
    UPDATE payment_records
    SET basic_salary = $1,
        overtime_hours = $2, overtime_rate = $3, overtime_amount = $4,
        bonuses = $5, deductions = $6,
        gross_pay = $7, total_deductions = $8, net_pay = $9,
        payment_status = $10, payment_method = $11, notes = $12,
        payment_date = $13, updated_at = $14
    WHERE id = $15
  `,
		rec.BasicSalary,
		rec.Overtime.Hours, rec.Overtime.Rate, rec.Overtime.Amount,
		bonusesJSON, deductionsJSON,
		rec.GrossPay, rec.TotalDeductions, rec.NetPay,
		rec.PaymentStatus, nullIfEmpty(rec.PaymentMethod), nullIfEmpty(rec.Notes),
		rec.PaymentDate, rec.UpdatedAt, rec.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) MarkViewed(ctx context.Context, recordID string, at time.Time) error {
	// Guarded on is_viewed so a concurrent first read cannot move viewed_at.
	_, err := s.DB.Exec(ctx, `
    UPDATE payment_records
    SET is_viewed = TRUE, viewed_at = $1
    WHERE id = $2 AND is_viewed = FALSE
  `, at, recordID)
	return err
}

func (s *Store) Delete(ctx context.Context, recordID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM payment_records WHERE id = $1", recordID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context, filter ListFilter) ([]PaymentRecord, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+recordColumns+`
    FROM payment_records
    WHERE ($1 = '' OR employee_id::text = $1)
      AND ($2 = '' OR payment_status = $2)
    ORDER BY week_start_date DESC
    LIMIT $3 OFFSET $4
  `, filter.EmployeeID, filter.PaymentStatus, filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PaymentRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (s *Store) Summary(ctx context.Context, employeeID string) ([]StatusSummary, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT payment_status, COUNT(1), COALESCE(SUM(net_pay), 0)
    FROM payment_records
    WHERE ($1 = '' OR employee_id::text = $1)
    GROUP BY payment_status
    ORDER BY payment_status
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatusSummary
	for rows.Next() {
		var summary StatusSummary
		if err := rows.Scan(&summary.PaymentStatus, &summary.Count, &summary.TotalNet); err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
