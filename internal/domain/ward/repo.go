package ward

import (
	"context"

	"github.com/google/uuid"
)

// BedFilter narrows bed listings.
type BedFilter struct {
	WardType string
	Status   string
}

type BedRepository interface {
	Create(ctx context.Context, b *Bed) error
	GetByID(ctx context.Context, id uuid.UUID) (*Bed, error)
	Update(ctx context.Context, b *Bed) error
	List(ctx context.Context, f BedFilter, limit, offset int) ([]*Bed, int, error)
	// OccupyIfVacant conditionally claims the bed. It reports whether the
	// bed was vacant at the moment of the update.
	OccupyIfVacant(ctx context.Context, bedID, patientID, admissionID, doctorID uuid.UUID) (bool, error)
	Free(ctx context.Context, bedID uuid.UUID) error
	CountByStatusAndWard(ctx context.Context) (*OccupancySummary, error)
}

type AdmissionRepository interface {
	Create(ctx context.Context, a *Admission) error
	GetByID(ctx context.Context, id uuid.UUID) (*Admission, error)
	Update(ctx context.Context, a *Admission) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Admission, int, error)
	ListActive(ctx context.Context, limit, offset int) ([]*Admission, int, error)
	HasActiveForPatient(ctx context.Context, patientID uuid.UUID) (bool, error)
}

type VitalsRepository interface {
	Create(ctx context.Context, v *Vitals) error
	ListByAdmission(ctx context.Context, admissionID uuid.UUID) ([]*Vitals, error)
}

// NurseAssignments is what the occupancy flow needs from the staffing side.
type NurseAssignments interface {
	Assign(ctx context.Context, admissionID, patientID, nurseID uuid.UUID) error
	DischargeByAdmission(ctx context.Context, admissionID uuid.UUID) error
}
