package lab

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const orderCols = `id, code, patient_id, doctor_id, admission_id, test_name, category,
	priority, price, status, result, normal_range, result_notes, recorded_by,
	bill_id, sample_at, completed_at, created_at, updated_at`

func scanOrder(row pgx.Row) (*TestOrder, error) {
	var o TestOrder
	err := row.Scan(&o.ID, &o.Code, &o.PatientID, &o.DoctorID, &o.AdmissionID,
		&o.TestName, &o.Category, &o.Priority, &o.Price, &o.Status, &o.Result,
		&o.NormalRange, &o.ResultNotes, &o.RecordedBy, &o.BillID, &o.SampleAt,
		&o.CompletedAt, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("lab test not found")
	}
	return &o, err
}

func (r *repoPG) Create(ctx context.Context, o *TestOrder) error {
	o.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO lab_test_orders (id, code, patient_id, doctor_id, admission_id,
			test_name, category, priority, price, status, normal_range)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		o.ID, o.Code, o.PatientID, o.DoctorID, o.AdmissionID,
		o.TestName, o.Category, o.Priority, o.Price, o.Status, o.NormalRange)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*TestOrder, error) {
	return scanOrder(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+orderCols+` FROM lab_test_orders WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, o *TestOrder) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE lab_test_orders SET status=$2, result=$3, result_notes=$4,
			recorded_by=$5, bill_id=$6, sample_at=$7, completed_at=$8,
			updated_at=NOW()
		WHERE id = $1`,
		o.ID, o.Status, o.Result, o.ResultNotes, o.RecordedBy, o.BillID,
		o.SampleAt, o.CompletedAt)
	return err
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*TestOrder, int, error) {
	where, args := "WHERE 1=1", []interface{}{}
	if f.PatientID != nil {
		args = append(args, *f.PatientID)
		where += fmt.Sprintf(" AND patient_id = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM lab_test_orders `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	args = append(args, limit, offset)
	rows, err := conn(ctx, r.pool).Query(ctx, fmt.Sprintf(
		`SELECT %s FROM lab_test_orders %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderCols, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*TestOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}
