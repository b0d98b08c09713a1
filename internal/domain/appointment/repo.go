package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hms/hms/internal/domain/billing"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	// HasSlotConflict reports whether the doctor already has a non-cancelled
	// appointment at the exact time.
	HasSlotConflict(ctx context.Context, doctorID uuid.UUID, at time.Time) (bool, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, day *time.Time, limit, offset int) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
}

// PatientDirectory verifies patient references.
type PatientDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) error
}

// DoctorDirectory resolves the consultation fee charged at booking.
type DoctorDirectory interface {
	ConsultationFee(ctx context.Context, doctorID uuid.UUID) (decimal.Decimal, error)
}

// Biller opens the outpatient bill tied to a booking.
type Biller interface {
	OpenBill(ctx context.Context, patientID uuid.UUID, admissionID *uuid.UUID, billType string, items []billing.ItemInput) (*billing.Bill, error)
}
