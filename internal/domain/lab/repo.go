package lab

import (
	"context"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/billing"
)

type Filter struct {
	PatientID *uuid.UUID
	Status    string
}

type Repository interface {
	Create(ctx context.Context, o *TestOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*TestOrder, error)
	Update(ctx context.Context, o *TestOrder) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*TestOrder, int, error)
}

// Biller opens the lab bill when a test is ordered.
type Biller interface {
	OpenBill(ctx context.Context, patientID uuid.UUID, admissionID *uuid.UUID, billType string, items []billing.ItemInput) (*billing.Bill, error)
}

// PatientDirectory verifies patient references.
type PatientDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) error
}
