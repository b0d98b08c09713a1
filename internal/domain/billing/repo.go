package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter narrows bill listings.
type Filter struct {
	PatientID *uuid.UUID
	BillType  string
	Status    string
}

type Repository interface {
	Create(ctx context.Context, b *Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	GetByCode(ctx context.Context, code string) (*Bill, error)
	Update(ctx context.Context, b *Bill) error
	AddPayment(ctx context.Context, p *Payment) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Bill, int, error)
	ListByAdmission(ctx context.Context, admissionID uuid.UUID) ([]*Bill, error)
	Summarize(ctx context.Context, from, to time.Time) (*Summary, error)
}
