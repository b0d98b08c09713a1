package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const billCols = `id, code, patient_id, admission_id, bill_type,
	subtotal, discount_amount, discount_percent, discount_reason,
	cgst, sgst, igst, total_amount, amount_paid, balance_amount,
	payment_status, note, created_at, updated_at`

func scanBill(row pgx.Row) (*Bill, error) {
	var b Bill
	err := row.Scan(&b.ID, &b.Code, &b.PatientID, &b.AdmissionID, &b.BillType,
		&b.Subtotal, &b.DiscountAmount, &b.DiscountPercent, &b.DiscountReason,
		&b.CGST, &b.SGST, &b.IGST, &b.TotalAmount, &b.AmountPaid, &b.BalanceAmount,
		&b.PaymentStatus, &b.Note, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("bill not found")
	}
	return &b, err
}

func (r *repoPG) Create(ctx context.Context, b *Bill) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO bills (id, code, patient_id, admission_id, bill_type,
			subtotal, discount_amount, discount_percent, discount_reason,
			cgst, sgst, igst, total_amount, amount_paid, balance_amount,
			payment_status, note)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		b.ID, b.Code, b.PatientID, b.AdmissionID, b.BillType,
		b.Subtotal, b.DiscountAmount, b.DiscountPercent, b.DiscountReason,
		b.CGST, b.SGST, b.IGST, b.TotalAmount, b.AmountPaid, b.BalanceAmount,
		b.PaymentStatus, b.Note)
	if err != nil {
		return err
	}
	for i := range b.Items {
		it := &b.Items[i]
		it.ID = uuid.New()
		it.BillID = b.ID
		_, err = r.conn(ctx).Exec(ctx, `
			INSERT INTO bill_items (id, bill_id, sequence, category, description,
				quantity, unit_price, line_total)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			it.ID, it.BillID, it.Sequence, it.Category, it.Description,
			it.Quantity, it.UnitPrice, it.LineTotal)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Bill, error) {
	b, err := scanBill(r.conn(ctx).QueryRow(ctx, `SELECT `+billCols+` FROM bills WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return r.loadChildren(ctx, b)
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*Bill, error) {
	b, err := scanBill(r.conn(ctx).QueryRow(ctx, `SELECT `+billCols+` FROM bills WHERE code = $1`, code))
	if err != nil {
		return nil, err
	}
	return r.loadChildren(ctx, b)
}

func (r *repoPG) loadChildren(ctx context.Context, b *Bill) (*Bill, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, bill_id, sequence, category, description, quantity, unit_price, line_total
		FROM bill_items WHERE bill_id = $1 ORDER BY sequence`, b.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it LineItem
		if err := rows.Scan(&it.ID, &it.BillID, &it.Sequence, &it.Category,
			&it.Description, &it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, err
		}
		b.Items = append(b.Items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := r.conn(ctx).Query(ctx, `
		SELECT id, bill_id, method, amount, transaction_id, paid_at
		FROM bill_payments WHERE bill_id = $1 ORDER BY paid_at`, b.ID)
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	for prows.Next() {
		var p Payment
		if err := prows.Scan(&p.ID, &p.BillID, &p.Method, &p.Amount, &p.TransactionID, &p.PaidAt); err != nil {
			return nil, err
		}
		b.Payments = append(b.Payments, p)
	}
	return b, prows.Err()
}

func (r *repoPG) Update(ctx context.Context, b *Bill) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE bills SET subtotal=$2, discount_amount=$3, discount_percent=$4,
			discount_reason=$5, cgst=$6, sgst=$7, igst=$8, total_amount=$9,
			amount_paid=$10, balance_amount=$11, payment_status=$12, note=$13,
			updated_at=NOW()
		WHERE id = $1`,
		b.ID, b.Subtotal, b.DiscountAmount, b.DiscountPercent,
		b.DiscountReason, b.CGST, b.SGST, b.IGST, b.TotalAmount,
		b.AmountPaid, b.BalanceAmount, b.PaymentStatus, b.Note)
	return err
}

func (r *repoPG) AddPayment(ctx context.Context, p *Payment) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO bill_payments (id, bill_id, method, amount, transaction_id, paid_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		p.ID, p.BillID, p.Method, p.Amount, p.TransactionID, p.PaidAt)
	return err
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Bill, int, error) {
	where, args := "WHERE 1=1", []interface{}{}
	if f.PatientID != nil {
		args = append(args, *f.PatientID)
		where += fmt.Sprintf(" AND patient_id = $%d", len(args))
	}
	if f.BillType != "" {
		args = append(args, f.BillType)
		where += fmt.Sprintf(" AND bill_type = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND payment_status = $%d", len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM bills `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(
		`SELECT %s FROM bills %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		billCols, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *repoPG) ListByAdmission(ctx context.Context, admissionID uuid.UUID) ([]*Bill, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+billCols+` FROM bills WHERE admission_id = $1 ORDER BY created_at`, admissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repoPG) Summarize(ctx context.Context, from, to time.Time) (*Summary, error) {
	s := emptySummary(from, to)
	c := r.conn(ctx)

	err := c.QueryRow(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(total_amount), 0),
			COALESCE(SUM(amount_paid), 0),
			COALESCE(SUM(balance_amount), 0)
		FROM bills WHERE created_at >= $1 AND created_at < $2`, from, to).
		Scan(&s.BillCount, &s.Total, &s.Collected, &s.Outstanding)
	if err != nil {
		return nil, err
	}

	rows, err := c.Query(ctx, `
		SELECT bill_type, COUNT(*),
			COALESCE(SUM(total_amount), 0),
			COALESCE(SUM(amount_paid), 0),
			COALESCE(SUM(balance_amount), 0)
		FROM bills WHERE created_at >= $1 AND created_at < $2
		GROUP BY bill_type ORDER BY bill_type`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var tr TypeRevenue
		if err := rows.Scan(&tr.BillType, &tr.Count, &tr.Total, &tr.Collected, &tr.Outstanding); err != nil {
			return nil, err
		}
		s.ByType = append(s.ByType, tr)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	srows, err := c.Query(ctx, `
		SELECT payment_status, COUNT(*)
		FROM bills WHERE created_at >= $1 AND created_at < $2
		GROUP BY payment_status ORDER BY payment_status`, from, to)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var sc StatusCount
		if err := srows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		s.ByStatus = append(s.ByStatus, sc)
	}
	srows.Close()
	if err := srows.Err(); err != nil {
		return nil, err
	}

	drows, err := c.Query(ctx, `
		SELECT date_trunc('day', created_at) AS day, COUNT(*),
			COALESCE(SUM(total_amount), 0),
			COALESCE(SUM(amount_paid), 0)
		FROM bills WHERE created_at >= $1 AND created_at < $2
		GROUP BY day ORDER BY day`, from, to)
	if err != nil {
		return nil, err
	}
	defer drows.Close()
	for drows.Next() {
		var dr DayRevenue
		if err := drows.Scan(&dr.Day, &dr.Count, &dr.Total, &dr.Collected); err != nil {
			return nil, err
		}
		s.ByDay = append(s.ByDay, dr)
	}
	return s, drows.Err()
}
