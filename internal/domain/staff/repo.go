package staff

import (
	"context"

	"github.com/google/uuid"
)

type DepartmentRepository interface {
	Create(ctx context.Context, d *Department) error
	GetByID(ctx context.Context, id uuid.UUID) (*Department, error)
	GetByName(ctx context.Context, name string) (*Department, error)
	Update(ctx context.Context, d *Department) error
	List(ctx context.Context, limit, offset int) ([]*Department, int, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	List(ctx context.Context, departmentID *uuid.UUID, limit, offset int) ([]*Doctor, int, error)
}

type NurseRepository interface {
	Create(ctx context.Context, n *Nurse) error
	GetByID(ctx context.Context, id uuid.UUID) (*Nurse, error)
	Update(ctx context.Context, n *Nurse) error
	List(ctx context.Context, departmentID *uuid.UUID, limit, offset int) ([]*Nurse, int, error)
}

type AssignmentRepository interface {
	Create(ctx context.Context, a *NurseAssignment) error
	HasActive(ctx context.Context, nurseID, patientID uuid.UUID) (bool, error)
	ListByNurse(ctx context.Context, nurseID uuid.UUID, activeOnly bool) ([]*NurseAssignment, error)
	DischargeByAdmission(ctx context.Context, admissionID uuid.UUID) error
}
