package pharmacy

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Prescription statuses.
const (
	PrescriptionPending   = "pending"
	PrescriptionDispensed = "dispensed"
	PrescriptionCancelled = "cancelled"
)

// Medicine is one stocked drug. Stock is decremented only through dispense,
// never set directly by prescription flows.
type Medicine struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	Code         string          `db:"code" json:"code"`
	Name         string          `db:"name" json:"name"`
	GenericName  string          `db:"generic_name" json:"generic_name,omitempty"`
	Manufacturer string          `db:"manufacturer" json:"manufacturer,omitempty"`
	Category     string          `db:"category" json:"category,omitempty"`
	BatchNumber  string          `db:"batch_number" json:"batch_number,omitempty"`
	UnitPrice    decimal.Decimal `db:"unit_price" json:"unit_price"`
	Stock        int             `db:"stock" json:"stock"`
	ReorderLevel int             `db:"reorder_level" json:"reorder_level"`
	ExpiryDate   *time.Time      `db:"expiry_date" json:"expiry_date,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// Expired reports whether the medicine is past its expiry date.
func (m *Medicine) Expired(now time.Time) bool {
	return m.ExpiryDate != nil && !m.ExpiryDate.After(now)
}

// LowStock reports whether stock has fallen to the reorder level.
func (m *Medicine) LowStock() bool {
	return m.Stock <= m.ReorderLevel
}

// PrescriptionItem is one ordered medicine line.
type PrescriptionItem struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PrescriptionID uuid.UUID `db:"prescription_id" json:"prescription_id"`
	MedicineID     uuid.UUID `db:"medicine_id" json:"medicine_id"`
	MedicineName   string    `db:"medicine_name" json:"medicine_name"`
	Dosage         string    `db:"dosage" json:"dosage,omitempty"`
	Frequency      string    `db:"frequency" json:"frequency,omitempty"`
	DurationDays   int       `db:"duration_days" json:"duration_days,omitempty"`
	Quantity       int       `db:"quantity" json:"quantity"`
}

// Prescription is a doctor's medicine order for a patient. Dispensing is
// all-or-nothing: stock for every item is decremented in one transaction and
// a pharmacy bill is opened.
type Prescription struct {
	ID          uuid.UUID          `db:"id" json:"id"`
	Code        string             `db:"code" json:"code"`
	PatientID   uuid.UUID          `db:"patient_id" json:"patient_id"`
	DoctorID    uuid.UUID          `db:"doctor_id" json:"doctor_id"`
	AdmissionID *uuid.UUID         `db:"admission_id" json:"admission_id,omitempty"`
	Status      string             `db:"status" json:"status"`
	Notes       string             `db:"notes" json:"notes,omitempty"`
	Items       []PrescriptionItem `db:"-" json:"items"`
	BillID      *uuid.UUID         `db:"bill_id" json:"bill_id,omitempty"`
	DispensedAt *time.Time         `db:"dispensed_at" json:"dispensed_at,omitempty"`
	CreatedAt   time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `db:"updated_at" json:"updated_at"`
}
