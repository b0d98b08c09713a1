package staff

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

// =========== Department Repository ===========

type departmentRepoPG struct{ pool *pgxpool.Pool }

func NewDepartmentRepoPG(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepoPG{pool: pool}
}

func scanDepartment(row pgx.Row) (*Department, error) {
	var d Department
	err := row.Scan(&d.ID, &d.Code, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("department not found")
	}
	return &d, err
}

func (r *departmentRepoPG) Create(ctx context.Context, d *Department) error {
	d.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO departments (id, code, name, description)
		VALUES ($1,$2,$3,$4)`,
		d.ID, d.Code, d.Name, d.Description)
	return err
}

func (r *departmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Department, error) {
	return scanDepartment(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, code, name, description, created_at, updated_at FROM departments WHERE id = $1`, id))
}

func (r *departmentRepoPG) GetByName(ctx context.Context, name string) (*Department, error) {
	return scanDepartment(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, code, name, description, created_at, updated_at FROM departments WHERE LOWER(name) = LOWER($1)`, name))
}

func (r *departmentRepoPG) Update(ctx context.Context, d *Department) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE departments SET name=$2, description=$3, updated_at=NOW() WHERE id = $1`,
		d.ID, d.Name, d.Description)
	return err
}

func (r *departmentRepoPG) List(ctx context.Context, limit, offset int) ([]*Department, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM departments`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, code, name, description, created_at, updated_at
		FROM departments ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

// =========== Doctor Repository ===========

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository { return &doctorRepoPG{pool: pool} }

const doctorCols = `id, code, name, specialization, department_id, phone, email,
	qualification, consultation_fee, active, created_at, updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Code, &d.Name, &d.Specialization, &d.DepartmentID,
		&d.Phone, &d.Email, &d.Qualification, &d.ConsultationFee, &d.Active,
		&d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("doctor not found")
	}
	return &d, err
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO doctors (id, code, name, specialization, department_id, phone,
			email, qualification, consultation_fee, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		d.ID, d.Code, d.Name, d.Specialization, d.DepartmentID, d.Phone,
		d.Email, d.Qualification, d.ConsultationFee, d.Active)
	return err
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return scanDoctor(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id))
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE doctors SET name=$2, specialization=$3, department_id=$4, phone=$5,
			email=$6, qualification=$7, consultation_fee=$8, active=$9, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.Name, d.Specialization, d.DepartmentID, d.Phone,
		d.Email, d.Qualification, d.ConsultationFee, d.Active)
	return err
}

func (r *doctorRepoPG) List(ctx context.Context, departmentID *uuid.UUID, limit, offset int) ([]*Doctor, int, error) {
	where, args := "WHERE 1=1", []interface{}{}
	if departmentID != nil {
		args = append(args, *departmentID)
		where += fmt.Sprintf(" AND department_id = $%d", len(args))
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM doctors `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	args = append(args, limit, offset)
	rows, err := conn(ctx, r.pool).Query(ctx, fmt.Sprintf(
		`SELECT %s FROM doctors %s ORDER BY name LIMIT $%d OFFSET $%d`,
		doctorCols, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

// =========== Nurse Repository ===========

type nurseRepoPG struct{ pool *pgxpool.Pool }

func NewNurseRepoPG(pool *pgxpool.Pool) NurseRepository { return &nurseRepoPG{pool: pool} }

const nurseCols = `id, code, name, department_id, phone, shift, active, created_at, updated_at`

func scanNurse(row pgx.Row) (*Nurse, error) {
	var n Nurse
	err := row.Scan(&n.ID, &n.Code, &n.Name, &n.DepartmentID, &n.Phone,
		&n.Shift, &n.Active, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("nurse not found")
	}
	return &n, err
}

func (r *nurseRepoPG) Create(ctx context.Context, n *Nurse) error {
	n.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO nurses (id, code, name, department_id, phone, shift, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		n.ID, n.Code, n.Name, n.DepartmentID, n.Phone, n.Shift, n.Active)
	return err
}

func (r *nurseRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Nurse, error) {
	return scanNurse(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+nurseCols+` FROM nurses WHERE id = $1`, id))
}

func (r *nurseRepoPG) Update(ctx context.Context, n *Nurse) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE nurses SET name=$2, department_id=$3, phone=$4, shift=$5, active=$6,
			updated_at=NOW()
		WHERE id = $1`,
		n.ID, n.Name, n.DepartmentID, n.Phone, n.Shift, n.Active)
	return err
}

func (r *nurseRepoPG) List(ctx context.Context, departmentID *uuid.UUID, limit, offset int) ([]*Nurse, int, error) {
	where, args := "WHERE 1=1", []interface{}{}
	if departmentID != nil {
		args = append(args, *departmentID)
		where += fmt.Sprintf(" AND department_id = $%d", len(args))
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM nurses `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	args = append(args, limit, offset)
	rows, err := conn(ctx, r.pool).Query(ctx, fmt.Sprintf(
		`SELECT %s FROM nurses %s ORDER BY name LIMIT $%d OFFSET $%d`,
		nurseCols, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Nurse
	for rows.Next() {
		n, err := scanNurse(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

// =========== Assignment Repository ===========

type assignmentRepoPG struct{ pool *pgxpool.Pool }

func NewAssignmentRepoPG(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepoPG{pool: pool}
}

func (r *assignmentRepoPG) Create(ctx context.Context, a *NurseAssignment) error {
	a.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO nurse_assignments (id, nurse_id, patient_id, admission_id,
			bed_number, status, assigned_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.NurseID, a.PatientID, a.AdmissionID, a.BedNumber, a.Status, a.AssignedAt)
	return err
}

func (r *assignmentRepoPG) HasActive(ctx context.Context, nurseID, patientID uuid.UUID) (bool, error) {
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM nurse_assignments
			WHERE nurse_id = $1 AND patient_id = $2 AND status = 'active')`,
		nurseID, patientID).Scan(&exists)
	return exists, err
}

func (r *assignmentRepoPG) ListByNurse(ctx context.Context, nurseID uuid.UUID, activeOnly bool) ([]*NurseAssignment, error) {
	q := `SELECT id, nurse_id, patient_id, admission_id, bed_number, status,
			assigned_at, released_at
		FROM nurse_assignments WHERE nurse_id = $1`
	if activeOnly {
		q += ` AND status = 'active'`
	}
	rows, err := conn(ctx, r.pool).Query(ctx, q+` ORDER BY assigned_at DESC`, nurseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*NurseAssignment
	for rows.Next() {
		var a NurseAssignment
		if err := rows.Scan(&a.ID, &a.NurseID, &a.PatientID, &a.AdmissionID,
			&a.BedNumber, &a.Status, &a.AssignedAt, &a.ReleasedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *assignmentRepoPG) DischargeByAdmission(ctx context.Context, admissionID uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE nurse_assignments SET status='discharged', released_at=NOW()
		WHERE admission_id = $1 AND status = 'active'`, admissionID)
	return err
}
