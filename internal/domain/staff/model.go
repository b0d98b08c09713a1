package staff

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Nurse shift codes.
const (
	ShiftMorning = "morning"
	ShiftEvening = "evening"
	ShiftNight   = "night"
)

// Nurse assignment statuses.
const (
	AssignmentActive     = "active"
	AssignmentDischarged = "discharged"
)

var validShifts = map[string]bool{
	ShiftMorning: true, ShiftEvening: true, ShiftNight: true,
}

// Department groups doctors and nurses under one specialty.
type Department struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Doctor is a consulting physician. ConsultationFee seeds the outpatient
// bill opened when an appointment is booked.
type Doctor struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	Code            string          `db:"code" json:"code"`
	Name            string          `db:"name" json:"name"`
	Specialization  string          `db:"specialization" json:"specialization"`
	DepartmentID    *uuid.UUID      `db:"department_id" json:"department_id,omitempty"`
	Phone           string          `db:"phone" json:"phone,omitempty"`
	Email           string          `db:"email" json:"email,omitempty"`
	Qualification   string          `db:"qualification" json:"qualification,omitempty"`
	ConsultationFee decimal.Decimal `db:"consultation_fee" json:"consultation_fee"`
	Active          bool            `db:"active" json:"active"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

type Nurse struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Code         string     `db:"code" json:"code"`
	Name         string     `db:"name" json:"name"`
	DepartmentID *uuid.UUID `db:"department_id" json:"department_id,omitempty"`
	Phone        string     `db:"phone" json:"phone,omitempty"`
	Shift        string     `db:"shift" json:"shift"`
	Active       bool       `db:"active" json:"active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// NurseAssignment links a nurse to a patient for one admission. Assignments
// are retired, never deleted: discharge flips status to discharged.
type NurseAssignment struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	NurseID     uuid.UUID  `db:"nurse_id" json:"nurse_id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	AdmissionID uuid.UUID  `db:"admission_id" json:"admission_id"`
	BedNumber   string     `db:"bed_number" json:"bed_number,omitempty"`
	Status      string     `db:"status" json:"status"`
	AssignedAt  time.Time  `db:"assigned_at" json:"assigned_at"`
	ReleasedAt  *time.Time `db:"released_at" json:"released_at,omitempty"`
}
