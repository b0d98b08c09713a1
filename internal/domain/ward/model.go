package ward

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bed statuses.
const (
	BedVacant      = "vacant"
	BedOccupied    = "occupied"
	BedReserved    = "reserved"
	BedMaintenance = "maintenance"
	BedCleaning    = "cleaning"
)

// Admission statuses. All but admitted are terminal.
const (
	AdmissionAdmitted    = "admitted"
	AdmissionDischarged  = "discharged"
	AdmissionTransferred = "transferred"
	AdmissionAbsconded   = "absconded"
	AdmissionDeceased    = "deceased"
)

// Admission types.
const (
	AdmitEmergency = "emergency"
	AdmitScheduled = "scheduled"
	AdmitTransfer  = "transfer"
)

var validBedStatuses = map[string]bool{
	BedVacant: true, BedOccupied: true, BedReserved: true,
	BedMaintenance: true, BedCleaning: true,
}

var validWardTypes = map[string]bool{
	"general": true, "semi-private": true, "private": true,
	"icu": true, "emergency": true, "maternity": true, "pediatric": true,
}

var validAdmissionTypes = map[string]bool{
	AdmitEmergency: true, AdmitScheduled: true, AdmitTransfer: true,
}

// terminalAdmissionStatuses are the closed states an admitted stay can move
// to. There is no way back to admitted from any of them.
var terminalAdmissionStatuses = map[string]bool{
	AdmissionDischarged: true, AdmissionTransferred: true,
	AdmissionAbsconded: true, AdmissionDeceased: true,
}

// Bed is one physical bed. Occupied beds carry references to the current
// patient, admission, doctor and nurse; all are cleared when the bed is
// freed.
type Bed struct {
	ID                 uuid.UUID       `db:"id" json:"id"`
	Code               string          `db:"code" json:"code"`
	Number             string          `db:"number" json:"number"`
	WardType           string          `db:"ward_type" json:"ward_type"`
	Floor              int             `db:"floor" json:"floor"`
	Status             string          `db:"status" json:"status"`
	CurrentPatientID   *uuid.UUID      `db:"current_patient_id" json:"current_patient_id,omitempty"`
	CurrentAdmissionID *uuid.UUID      `db:"current_admission_id" json:"current_admission_id,omitempty"`
	AssignedDoctorID   *uuid.UUID      `db:"assigned_doctor_id" json:"assigned_doctor_id,omitempty"`
	AssignedNurseID    *uuid.UUID      `db:"assigned_nurse_id" json:"assigned_nurse_id,omitempty"`
	AdmittedAt         *time.Time      `db:"admitted_at" json:"admitted_at,omitempty"`
	DailyRate          decimal.Decimal `db:"daily_rate" json:"daily_rate"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`
}

// Admission records one inpatient stay. While status is admitted the
// referenced bed is occupied by the admission's patient.
type Admission struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Code             string     `db:"code" json:"code"`
	PatientID        uuid.UUID  `db:"patient_id" json:"patient_id"`
	BedID            uuid.UUID  `db:"bed_id" json:"bed_id"`
	DoctorID         uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	DepartmentID     *uuid.UUID `db:"department_id" json:"department_id,omitempty"`
	AdmissionType    string     `db:"admission_type" json:"admission_type"`
	Status           string     `db:"status" json:"status"`
	Diagnosis        string     `db:"diagnosis" json:"diagnosis,omitempty"`
	AdmittedAt       time.Time  `db:"admitted_at" json:"admitted_at"`
	DischargedAt     *time.Time `db:"discharged_at" json:"discharged_at,omitempty"`
	StayDays         int        `db:"stay_days" json:"stay_days"`
	DischargeSummary *string    `db:"discharge_summary" json:"discharge_summary,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// Vitals is one append-only vital signs reading during an admission.
type Vitals struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	AdmissionID     uuid.UUID        `db:"admission_id" json:"admission_id"`
	RecordedBy      *uuid.UUID       `db:"recorded_by" json:"recorded_by,omitempty"`
	TemperatureC    *decimal.Decimal `db:"temperature_c" json:"temperature_c,omitempty"`
	PulseRate       *int             `db:"pulse_rate" json:"pulse_rate,omitempty"`
	RespiratoryRate *int             `db:"respiratory_rate" json:"respiratory_rate,omitempty"`
	BPSystolic      *int             `db:"bp_systolic" json:"bp_systolic,omitempty"`
	BPDiastolic     *int             `db:"bp_diastolic" json:"bp_diastolic,omitempty"`
	SpO2            *int             `db:"spo2" json:"spo2,omitempty"`
	Notes           string           `db:"notes" json:"notes,omitempty"`
	RecordedAt      time.Time        `db:"recorded_at" json:"recorded_at"`
}

// StayDays is the billed length of stay: the absolute difference rounded up
// to whole days, never less than 1. Admission at Jan 1 08:00 discharged at
// Jan 4 10:00 is 4 days.
func StayDays(admitted, discharged time.Time) int {
	hours := discharged.Sub(admitted).Hours()
	if hours <= 0 {
		return 1
	}
	days := int(math.Ceil(hours / 24))
	if days < 1 {
		return 1
	}
	return days
}
