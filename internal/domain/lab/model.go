package lab

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Lab test order statuses.
const (
	StatusOrdered         = "ordered"
	StatusSampleCollected = "sample-collected"
	StatusInProgress      = "in-progress"
	StatusCompleted       = "completed"
	StatusCancelled       = "cancelled"
)

// Order priorities.
const (
	PriorityRoutine = "routine"
	PriorityUrgent  = "urgent"
	PriorityStat    = "stat"
)

var validPriorities = map[string]bool{
	PriorityRoutine: true, PriorityUrgent: true, PriorityStat: true,
}

var validCategories = map[string]bool{
	"pathology": true, "biochemistry": true, "microbiology": true,
	"hematology": true, "radiology": true, "cardiology": true,
}

// allowedTransitions maps each status to the statuses it may move to.
// Completion happens only through result recording.
var allowedTransitions = map[string][]string{
	StatusOrdered:         {StatusSampleCollected, StatusCancelled},
	StatusSampleCollected: {StatusInProgress, StatusCancelled},
	StatusInProgress:      {StatusCompleted, StatusCancelled},
}

func canTransition(from, to string) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TestOrder is one lab test ordered for a patient. Ordering opens the lab
// bill; the result is attached when processing completes.
type TestOrder struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	Code         string          `db:"code" json:"code"`
	PatientID    uuid.UUID       `db:"patient_id" json:"patient_id"`
	DoctorID     uuid.UUID       `db:"doctor_id" json:"doctor_id"`
	AdmissionID  *uuid.UUID      `db:"admission_id" json:"admission_id,omitempty"`
	TestName     string          `db:"test_name" json:"test_name"`
	Category     string          `db:"category" json:"category"`
	Priority     string          `db:"priority" json:"priority"`
	Price        decimal.Decimal `db:"price" json:"price"`
	Status       string          `db:"status" json:"status"`
	Result       string          `db:"result" json:"result,omitempty"`
	NormalRange  string          `db:"normal_range" json:"normal_range,omitempty"`
	ResultNotes  string          `db:"result_notes" json:"result_notes,omitempty"`
	RecordedBy   *uuid.UUID      `db:"recorded_by" json:"recorded_by,omitempty"`
	BillID       *uuid.UUID      `db:"bill_id" json:"bill_id,omitempty"`
	SampleAt     *time.Time      `db:"sample_at" json:"sample_at,omitempty"`
	CompletedAt  *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}
