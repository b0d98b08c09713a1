package staff

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/codes"
)

type Service struct {
	departments DepartmentRepository
	doctors     DoctorRepository
	nurses      NurseRepository
	assignments AssignmentRepository
}

func NewService(departments DepartmentRepository, doctors DoctorRepository, nurses NurseRepository, assignments AssignmentRepository) *Service {
	return &Service{departments: departments, doctors: doctors, nurses: nurses, assignments: assignments}
}

// -- Departments --

type DepartmentInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Service) CreateDepartment(ctx context.Context, in DepartmentInput) (*Department, error) {
	if in.Name == "" {
		return nil, apperr.Validation("department name is required")
	}
	if existing, err := s.departments.GetByName(ctx, in.Name); err == nil && existing != nil {
		return nil, apperr.Conflict("department %q already exists", in.Name)
	}
	d := &Department{
		Code:        codes.New(codes.Department),
		Name:        in.Name,
		Description: in.Description,
	}
	if err := s.departments.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) GetDepartment(ctx context.Context, id uuid.UUID) (*Department, error) {
	return s.departments.GetByID(ctx, id)
}

func (s *Service) UpdateDepartment(ctx context.Context, id uuid.UUID, in DepartmentInput) (*Department, error) {
	d, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		d.Name = in.Name
	}
	if in.Description != "" {
		d.Description = in.Description
	}
	if err := s.departments.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) ListDepartments(ctx context.Context, limit, offset int) ([]*Department, int, error) {
	return s.departments.List(ctx, limit, offset)
}

// -- Doctors --

type DoctorInput struct {
	Name            string          `json:"name"`
	Specialization  string          `json:"specialization"`
	DepartmentID    *uuid.UUID      `json:"department_id"`
	Phone           string          `json:"phone"`
	Email           string          `json:"email"`
	Qualification   string          `json:"qualification"`
	ConsultationFee decimal.Decimal `json:"consultation_fee"`
}

func (s *Service) CreateDoctor(ctx context.Context, in DoctorInput) (*Doctor, error) {
	if in.Name == "" {
		return nil, apperr.Validation("doctor name is required")
	}
	if in.ConsultationFee.IsNegative() {
		return nil, apperr.Validation("consultation fee cannot be negative")
	}
	if in.DepartmentID != nil {
		if _, err := s.departments.GetByID(ctx, *in.DepartmentID); err != nil {
			return nil, err
		}
	}
	d := &Doctor{
		Code:            codes.New(codes.Doctor),
		Name:            in.Name,
		Specialization:  in.Specialization,
		DepartmentID:    in.DepartmentID,
		Phone:           in.Phone,
		Email:           in.Email,
		Qualification:   in.Qualification,
		ConsultationFee: in.ConsultationFee,
		Active:          true,
	}
	if err := s.doctors.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) UpdateDoctor(ctx context.Context, id uuid.UUID, in DoctorInput) (*Doctor, error) {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		d.Name = in.Name
	}
	if in.Specialization != "" {
		d.Specialization = in.Specialization
	}
	if in.Phone != "" {
		d.Phone = in.Phone
	}
	if in.Email != "" {
		d.Email = in.Email
	}
	if in.Qualification != "" {
		d.Qualification = in.Qualification
	}
	if in.DepartmentID != nil {
		if _, err := s.departments.GetByID(ctx, *in.DepartmentID); err != nil {
			return nil, err
		}
		d.DepartmentID = in.DepartmentID
	}
	if !in.ConsultationFee.IsZero() {
		if in.ConsultationFee.IsNegative() {
			return nil, apperr.Validation("consultation fee cannot be negative")
		}
		d.ConsultationFee = in.ConsultationFee
	}
	if err := s.doctors.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) SetDoctorActive(ctx context.Context, id uuid.UUID, active bool) (*Doctor, error) {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Active = active
	if err := s.doctors.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) ListDoctors(ctx context.Context, departmentID *uuid.UUID, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, departmentID, limit, offset)
}

// ConsultationFee is what the appointment flow needs to open an outpatient
// bill. Inactive doctors cannot take new bookings.
func (s *Service) ConsultationFee(ctx context.Context, doctorID uuid.UUID) (decimal.Decimal, error) {
	d, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.Active {
		return decimal.Zero, apperr.Conflict("doctor %s is not accepting appointments", d.Name)
	}
	return d.ConsultationFee, nil
}

// -- Nurses --

type NurseInput struct {
	Name         string     `json:"name"`
	DepartmentID *uuid.UUID `json:"department_id"`
	Phone        string     `json:"phone"`
	Shift        string     `json:"shift"`
}

func (s *Service) CreateNurse(ctx context.Context, in NurseInput) (*Nurse, error) {
	if in.Name == "" {
		return nil, apperr.Validation("nurse name is required")
	}
	if in.Shift == "" {
		in.Shift = ShiftMorning
	}
	if !validShifts[in.Shift] {
		return nil, apperr.Validation("invalid shift %q", in.Shift)
	}
	if in.DepartmentID != nil {
		if _, err := s.departments.GetByID(ctx, *in.DepartmentID); err != nil {
			return nil, err
		}
	}
	n := &Nurse{
		Code:         codes.New(codes.Nurse),
		Name:         in.Name,
		DepartmentID: in.DepartmentID,
		Phone:        in.Phone,
		Shift:        in.Shift,
		Active:       true,
	}
	if err := s.nurses.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) GetNurse(ctx context.Context, id uuid.UUID) (*Nurse, error) {
	return s.nurses.GetByID(ctx, id)
}

func (s *Service) ListNurses(ctx context.Context, departmentID *uuid.UUID, limit, offset int) ([]*Nurse, int, error) {
	return s.nurses.List(ctx, departmentID, limit, offset)
}

// -- Nurse assignments --

// Assign creates an active assignment. The active set is deduplicated: a
// nurse holds at most one active assignment per patient.
func (s *Service) Assign(ctx context.Context, admissionID, patientID, nurseID uuid.UUID) error {
	n, err := s.nurses.GetByID(ctx, nurseID)
	if err != nil {
		return err
	}
	if !n.Active {
		return apperr.Conflict("nurse %s is inactive", n.Name)
	}
	active, err := s.assignments.HasActive(ctx, nurseID, patientID)
	if err != nil {
		return err
	}
	if active {
		return apperr.Conflict("nurse %s is already assigned to this patient", n.Name)
	}
	return s.assignments.Create(ctx, &NurseAssignment{
		NurseID:     nurseID,
		PatientID:   patientID,
		AdmissionID: admissionID,
		Status:      AssignmentActive,
		AssignedAt:  time.Now().UTC(),
	})
}

// DischargeByAdmission retires every active assignment for the admission.
func (s *Service) DischargeByAdmission(ctx context.Context, admissionID uuid.UUID) error {
	return s.assignments.DischargeByAdmission(ctx, admissionID)
}

func (s *Service) ListAssignments(ctx context.Context, nurseID uuid.UUID, activeOnly bool) ([]*NurseAssignment, error) {
	if _, err := s.nurses.GetByID(ctx, nurseID); err != nil {
		return nil, err
	}
	return s.assignments.ListByNurse(ctx, nurseID, activeOnly)
}
