package pharmacy

import (
	"context"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/billing"
)

type MedicineRepository interface {
	Create(ctx context.Context, m *Medicine) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error)
	Update(ctx context.Context, m *Medicine) error
	List(ctx context.Context, query string, lowStockOnly bool, limit, offset int) ([]*Medicine, int, error)
	// DecrementStock atomically takes qty units. It reports false when the
	// remaining stock is insufficient.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	AddStock(ctx context.Context, id uuid.UUID, qty int) error
}

type PrescriptionRepository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	Update(ctx context.Context, p *Prescription) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Prescription, int, error)
}

// Biller opens the pharmacy bill when a prescription is dispensed.
type Biller interface {
	OpenBill(ctx context.Context, patientID uuid.UUID, admissionID *uuid.UUID, billType string, items []billing.ItemInput) (*billing.Bill, error)
}
