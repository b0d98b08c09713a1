package pharmacy

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

// =========== Medicine Repository ===========

type medicineRepoPG struct{ pool *pgxpool.Pool }

func NewMedicineRepoPG(pool *pgxpool.Pool) MedicineRepository { return &medicineRepoPG{pool: pool} }

const medCols = `id, code, name, generic_name, manufacturer, category, batch_number,
	unit_price, stock, reorder_level, expiry_date, created_at, updated_at`

func scanMedicine(row pgx.Row) (*Medicine, error) {
	var m Medicine
	err := row.Scan(&m.ID, &m.Code, &m.Name, &m.GenericName, &m.Manufacturer,
		&m.Category, &m.BatchNumber, &m.UnitPrice, &m.Stock, &m.ReorderLevel,
		&m.ExpiryDate, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("medicine not found")
	}
	return &m, err
}

func (r *medicineRepoPG) Create(ctx context.Context, m *Medicine) error {
	m.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO medicines (id, code, name, generic_name, manufacturer, category,
			batch_number, unit_price, stock, reorder_level, expiry_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		m.ID, m.Code, m.Name, m.GenericName, m.Manufacturer, m.Category,
		m.BatchNumber, m.UnitPrice, m.Stock, m.ReorderLevel, m.ExpiryDate)
	return err
}

func (r *medicineRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	return scanMedicine(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+medCols+` FROM medicines WHERE id = $1`, id))
}

func (r *medicineRepoPG) Update(ctx context.Context, m *Medicine) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE medicines SET name=$2, generic_name=$3, manufacturer=$4, category=$5,
			batch_number=$6, unit_price=$7, reorder_level=$8, expiry_date=$9,
			updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.Name, m.GenericName, m.Manufacturer, m.Category,
		m.BatchNumber, m.UnitPrice, m.ReorderLevel, m.ExpiryDate)
	return err
}

func (r *medicineRepoPG) List(ctx context.Context, query string, lowStockOnly bool, limit, offset int) ([]*Medicine, int, error) {
	where, args := "WHERE 1=1", []interface{}{}
	if query != "" {
		args = append(args, query)
		where += fmt.Sprintf(" AND (name ILIKE '%%' || $%d || '%%' OR generic_name ILIKE '%%' || $%d || '%%')", len(args), len(args))
	}
	if lowStockOnly {
		where += " AND stock <= reorder_level"
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM medicines `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	args = append(args, limit, offset)
	rows, err := conn(ctx, r.pool).Query(ctx, fmt.Sprintf(
		`SELECT %s FROM medicines %s ORDER BY name LIMIT $%d OFFSET $%d`,
		medCols, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

func (r *medicineRepoPG) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE medicines SET stock = stock - $2, updated_at=NOW()
		WHERE id = $1 AND stock >= $2`, id, qty)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *medicineRepoPG) AddStock(ctx context.Context, id uuid.UUID, qty int) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE medicines SET stock = stock + $2, updated_at=NOW() WHERE id = $1`, id, qty)
	return err
}

// =========== Prescription Repository ===========

type prescriptionRepoPG struct{ pool *pgxpool.Pool }

func NewPrescriptionRepoPG(pool *pgxpool.Pool) PrescriptionRepository {
	return &prescriptionRepoPG{pool: pool}
}

const preCols = `id, code, patient_id, doctor_id, admission_id, status, notes,
	bill_id, dispensed_at, created_at, updated_at`

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.Code, &p.PatientID, &p.DoctorID, &p.AdmissionID,
		&p.Status, &p.Notes, &p.BillID, &p.DispensedAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("prescription not found")
	}
	return &p, err
}

func (r *prescriptionRepoPG) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO prescriptions (id, code, patient_id, doctor_id, admission_id,
			status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.Code, p.PatientID, p.DoctorID, p.AdmissionID, p.Status, p.Notes)
	if err != nil {
		return err
	}
	for i := range p.Items {
		it := &p.Items[i]
		it.ID = uuid.New()
		it.PrescriptionID = p.ID
		_, err = conn(ctx, r.pool).Exec(ctx, `
			INSERT INTO prescription_items (id, prescription_id, medicine_id,
				medicine_name, dosage, frequency, duration_days, quantity)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			it.ID, it.PrescriptionID, it.MedicineID, it.MedicineName,
			it.Dosage, it.Frequency, it.DurationDays, it.Quantity)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *prescriptionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, err := scanPrescription(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+preCols+` FROM prescriptions WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, prescription_id, medicine_id, medicine_name, dosage, frequency,
			duration_days, quantity
		FROM prescription_items WHERE prescription_id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it PrescriptionItem
		if err := rows.Scan(&it.ID, &it.PrescriptionID, &it.MedicineID,
			&it.MedicineName, &it.Dosage, &it.Frequency, &it.DurationDays,
			&it.Quantity); err != nil {
			return nil, err
		}
		p.Items = append(p.Items, it)
	}
	return p, rows.Err()
}

func (r *prescriptionRepoPG) Update(ctx context.Context, p *Prescription) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE prescriptions SET status=$2, notes=$3, bill_id=$4, dispensed_at=$5,
			updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Status, p.Notes, p.BillID, p.DispensedAt)
	return err
}

func (r *prescriptionRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return r.list(ctx, `WHERE patient_id = $1`, []interface{}{patientID}, limit, offset)
}

func (r *prescriptionRepoPG) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Prescription, int, error) {
	return r.list(ctx, `WHERE status = $1`, []interface{}{status}, limit, offset)
}

func (r *prescriptionRepoPG) list(ctx context.Context, where string, args []interface{}, limit, offset int) ([]*Prescription, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM prescriptions `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	args = append(args, limit, offset)
	rows, err := conn(ctx, r.pool).Query(ctx, fmt.Sprintf(
		`SELECT %s FROM prescriptions %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		preCols, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}
