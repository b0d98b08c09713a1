package ward

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

// =========== Bed Repository ===========

type bedRepoPG struct{ pool *pgxpool.Pool }

func NewBedRepoPG(pool *pgxpool.Pool) BedRepository { return &bedRepoPG{pool: pool} }

const bedCols = `id, code, number, ward_type, floor, status,
	current_patient_id, current_admission_id, assigned_doctor_id, assigned_nurse_id,
	admitted_at, daily_rate, created_at, updated_at`

func scanBed(row pgx.Row) (*Bed, error) {
	var b Bed
	err := row.Scan(&b.ID, &b.Code, &b.Number, &b.WardType, &b.Floor, &b.Status,
		&b.CurrentPatientID, &b.CurrentAdmissionID, &b.AssignedDoctorID, &b.AssignedNurseID,
		&b.AdmittedAt, &b.DailyRate, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("bed not found")
	}
	return &b, err
}

func (r *bedRepoPG) Create(ctx context.Context, b *Bed) error {
	b.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO beds (id, code, number, ward_type, floor, status, daily_rate)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		b.ID, b.Code, b.Number, b.WardType, b.Floor, b.Status, b.DailyRate)
	return err
}

func (r *bedRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Bed, error) {
	return scanBed(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+bedCols+` FROM beds WHERE id = $1`, id))
}

func (r *bedRepoPG) Update(ctx context.Context, b *Bed) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE beds SET number=$2, ward_type=$3, floor=$4, status=$5,
			current_patient_id=$6, current_admission_id=$7, assigned_doctor_id=$8,
			assigned_nurse_id=$9, admitted_at=$10, daily_rate=$11, updated_at=NOW()
		WHERE id = $1`,
		b.ID, b.Number, b.WardType, b.Floor, b.Status,
		b.CurrentPatientID, b.CurrentAdmissionID, b.AssignedDoctorID,
		b.AssignedNurseID, b.AdmittedAt, b.DailyRate)
	return err
}

func (r *bedRepoPG) List(ctx context.Context, f BedFilter, limit, offset int) ([]*Bed, int, error) {
	where, args := "WHERE 1=1", []interface{}{}
	if f.WardType != "" {
		args = append(args, f.WardType)
		where += fmt.Sprintf(" AND ward_type = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM beds `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := conn(ctx, r.pool).Query(ctx, fmt.Sprintf(
		`SELECT %s FROM beds %s ORDER BY ward_type, number LIMIT $%d OFFSET $%d`,
		bedCols, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Bed
	for rows.Next() {
		b, err := scanBed(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *bedRepoPG) OccupyIfVacant(ctx context.Context, bedID, patientID, admissionID, doctorID uuid.UUID) (bool, error) {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE beds SET status='occupied', current_patient_id=$2,
			current_admission_id=$3, assigned_doctor_id=$4, admitted_at=NOW(),
			updated_at=NOW()
		WHERE id = $1 AND status = 'vacant'`,
		bedID, patientID, admissionID, doctorID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *bedRepoPG) Free(ctx context.Context, bedID uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE beds SET status='vacant', current_patient_id=NULL,
			current_admission_id=NULL, assigned_doctor_id=NULL,
			assigned_nurse_id=NULL, admitted_at=NULL, updated_at=NOW()
		WHERE id = $1`, bedID)
	return err
}

func (r *bedRepoPG) CountByStatusAndWard(ctx context.Context) (*OccupancySummary, error) {
	s := &OccupancySummary{ByWardType: []WardTypeCount{}}
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT ward_type, status, COUNT(*) FROM beds
		GROUP BY ward_type, status ORDER BY ward_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byWard := map[string]*WardTypeCount{}
	var order []string
	for rows.Next() {
		var wardType, status string
		var count int
		if err := rows.Scan(&wardType, &status, &count); err != nil {
			return nil, err
		}
		w, ok := byWard[wardType]
		if !ok {
			w = &WardTypeCount{WardType: wardType}
			byWard[wardType] = w
			order = append(order, wardType)
		}
		w.Total += count
		s.TotalBeds += count
		switch status {
		case BedOccupied:
			w.Occupied += count
			s.Occupied += count
		case BedVacant:
			w.Vacant += count
			s.Vacant += count
		case BedReserved:
			s.Reserved += count
		case BedMaintenance:
			s.Maintenance += count
		case BedCleaning:
			s.Cleaning += count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, wt := range order {
		s.ByWardType = append(s.ByWardType, *byWard[wt])
	}
	return s, nil
}

// =========== Admission Repository ===========

type admissionRepoPG struct{ pool *pgxpool.Pool }

func NewAdmissionRepoPG(pool *pgxpool.Pool) AdmissionRepository { return &admissionRepoPG{pool: pool} }

const admCols = `id, code, patient_id, bed_id, doctor_id, department_id,
	admission_type, status, diagnosis, admitted_at, discharged_at, stay_days,
	discharge_summary, created_at, updated_at`

func scanAdmission(row pgx.Row) (*Admission, error) {
	var a Admission
	err := row.Scan(&a.ID, &a.Code, &a.PatientID, &a.BedID, &a.DoctorID,
		&a.DepartmentID, &a.AdmissionType, &a.Status, &a.Diagnosis,
		&a.AdmittedAt, &a.DischargedAt, &a.StayDays,
		&a.DischargeSummary, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("admission not found")
	}
	return &a, err
}

func (r *admissionRepoPG) Create(ctx context.Context, a *Admission) error {
	a.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO admissions (id, code, patient_id, bed_id, doctor_id,
			department_id, admission_type, status, diagnosis, admitted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		a.ID, a.Code, a.PatientID, a.BedID, a.DoctorID,
		a.DepartmentID, a.AdmissionType, a.Status, a.Diagnosis, a.AdmittedAt)
	return err
}

func (r *admissionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Admission, error) {
	return scanAdmission(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+admCols+` FROM admissions WHERE id = $1`, id))
}

func (r *admissionRepoPG) Update(ctx context.Context, a *Admission) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE admissions SET status=$2, diagnosis=$3, discharged_at=$4,
			stay_days=$5, discharge_summary=$6, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.Status, a.Diagnosis, a.DischargedAt, a.StayDays, a.DischargeSummary)
	return err
}

func (r *admissionRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Admission, int, error) {
	return r.list(ctx, `WHERE patient_id = $1`, []interface{}{patientID}, limit, offset)
}

func (r *admissionRepoPG) ListActive(ctx context.Context, limit, offset int) ([]*Admission, int, error) {
	return r.list(ctx, `WHERE status = 'admitted'`, nil, limit, offset)
}

func (r *admissionRepoPG) list(ctx context.Context, where string, args []interface{}, limit, offset int) ([]*Admission, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM admissions `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	args = append(args, limit, offset)
	rows, err := conn(ctx, r.pool).Query(ctx, fmt.Sprintf(
		`SELECT %s FROM admissions %s ORDER BY admitted_at DESC LIMIT $%d OFFSET $%d`,
		admCols, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Admission
	for rows.Next() {
		a, err := scanAdmission(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func (r *admissionRepoPG) HasActiveForPatient(ctx context.Context, patientID uuid.UUID) (bool, error) {
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM admissions WHERE patient_id = $1 AND status = 'admitted')`,
		patientID).Scan(&exists)
	return exists, err
}

// =========== Vitals Repository ===========

type vitalsRepoPG struct{ pool *pgxpool.Pool }

func NewVitalsRepoPG(pool *pgxpool.Pool) VitalsRepository { return &vitalsRepoPG{pool: pool} }

func (r *vitalsRepoPG) Create(ctx context.Context, v *Vitals) error {
	v.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO admission_vitals (id, admission_id, recorded_by, temperature_c,
			pulse_rate, respiratory_rate, bp_systolic, bp_diastolic, spo2, notes, recorded_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		v.ID, v.AdmissionID, v.RecordedBy, v.TemperatureC,
		v.PulseRate, v.RespiratoryRate, v.BPSystolic, v.BPDiastolic, v.SpO2, v.Notes, v.RecordedAt)
	return err
}

func (r *vitalsRepoPG) ListByAdmission(ctx context.Context, admissionID uuid.UUID) ([]*Vitals, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, admission_id, recorded_by, temperature_c, pulse_rate,
			respiratory_rate, bp_systolic, bp_diastolic, spo2, notes, recorded_at
		FROM admission_vitals WHERE admission_id = $1 ORDER BY recorded_at DESC`, admissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Vitals
	for rows.Next() {
		var v Vitals
		if err := rows.Scan(&v.ID, &v.AdmissionID, &v.RecordedBy, &v.TemperatureC,
			&v.PulseRate, &v.RespiratoryRate, &v.BPSystolic, &v.BPDiastolic,
			&v.SpO2, &v.Notes, &v.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}
