package ward

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/codes"
	"github.com/hms/hms/internal/platform/db"
)

type Service struct {
	beds       BedRepository
	admissions AdmissionRepository
	vitals     VitalsRepository
	nurses     NurseAssignments
	tx         db.TxRunner
}

func NewService(beds BedRepository, admissions AdmissionRepository, vitals VitalsRepository, nurses NurseAssignments, tx db.TxRunner) *Service {
	return &Service{beds: beds, admissions: admissions, vitals: vitals, nurses: nurses, tx: tx}
}

// -- Beds --

// CreateBedInput provisions a new bed.
type CreateBedInput struct {
	Number    string          `json:"number"`
	WardType  string          `json:"ward_type"`
	Floor     int             `json:"floor"`
	DailyRate decimal.Decimal `json:"daily_rate"`
}

func (s *Service) CreateBed(ctx context.Context, in CreateBedInput) (*Bed, error) {
	if in.Number == "" {
		return nil, apperr.Validation("bed number is required")
	}
	if !validWardTypes[in.WardType] {
		return nil, apperr.Validation("invalid ward type %q", in.WardType)
	}
	if in.DailyRate.IsNegative() {
		return nil, apperr.Validation("daily rate cannot be negative")
	}
	b := &Bed{
		Code:      codes.New(codes.Bed),
		Number:    in.Number,
		WardType:  in.WardType,
		Floor:     in.Floor,
		Status:    BedVacant,
		DailyRate: in.DailyRate,
	}
	if err := s.beds.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) GetBed(ctx context.Context, id uuid.UUID) (*Bed, error) {
	return s.beds.GetByID(ctx, id)
}

func (s *Service) ListBeds(ctx context.Context, f BedFilter, limit, offset int) ([]*Bed, int, error) {
	if f.Status != "" && !validBedStatuses[f.Status] {
		return nil, 0, apperr.Validation("invalid bed status %q", f.Status)
	}
	if f.WardType != "" && !validWardTypes[f.WardType] {
		return nil, 0, apperr.Validation("invalid ward type %q", f.WardType)
	}
	return s.beds.List(ctx, f, limit, offset)
}

// SetBedStatus handles the administrative transitions between vacant,
// reserved, maintenance and cleaning. Occupied is never entered or left here;
// only admit and discharge touch it.
func (s *Service) SetBedStatus(ctx context.Context, bedID uuid.UUID, status string) (*Bed, error) {
	if !validBedStatuses[status] {
		return nil, apperr.Validation("invalid bed status %q", status)
	}
	if status == BedOccupied {
		return nil, apperr.Conflict("beds become occupied only through admission")
	}
	var b *Bed
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.beds.GetByID(ctx, bedID)
		if err != nil {
			return err
		}
		if b.Status == BedOccupied {
			return apperr.Conflict("bed %s is occupied; discharge the admission first", b.Number)
		}
		b.Status = status
		return s.beds.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) OccupancySummary(ctx context.Context) (*OccupancySummary, error) {
	return s.beds.CountByStatusAndWard(ctx)
}

// -- Admissions --

// AdmitInput is the request to admit a patient into a bed.
type AdmitInput struct {
	PatientID     uuid.UUID  `json:"patient_id"`
	BedID         uuid.UUID  `json:"bed_id"`
	DoctorID      uuid.UUID  `json:"doctor_id"`
	DepartmentID  *uuid.UUID `json:"department_id"`
	AdmissionType string     `json:"admission_type"`
	Diagnosis     string     `json:"diagnosis"`
}

// Admit creates the admission and claims the bed in one transaction. The bed
// update is conditional on the bed still being vacant, so two concurrent
// admissions for the same bed cannot both succeed.
func (s *Service) Admit(ctx context.Context, in AdmitInput) (*Admission, error) {
	if in.PatientID == uuid.Nil {
		return nil, apperr.Validation("patient_id is required")
	}
	if in.DoctorID == uuid.Nil {
		return nil, apperr.Validation("doctor_id is required")
	}
	if in.AdmissionType == "" {
		in.AdmissionType = AdmitScheduled
	}
	if !validAdmissionTypes[in.AdmissionType] {
		return nil, apperr.Validation("invalid admission type %q", in.AdmissionType)
	}

	var a *Admission
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		bed, err := s.beds.GetByID(ctx, in.BedID)
		if err != nil {
			return err
		}
		if bed.Status != BedVacant {
			return apperr.Conflict("bed %s is %s", bed.Number, bed.Status)
		}
		active, err := s.admissions.HasActiveForPatient(ctx, in.PatientID)
		if err != nil {
			return err
		}
		if active {
			return apperr.Conflict("patient already has an active admission")
		}

		a = &Admission{
			Code:          codes.New(codes.Admission),
			PatientID:     in.PatientID,
			BedID:         in.BedID,
			DoctorID:      in.DoctorID,
			DepartmentID:  in.DepartmentID,
			AdmissionType: in.AdmissionType,
			Status:        AdmissionAdmitted,
			Diagnosis:     in.Diagnosis,
			AdmittedAt:    time.Now().UTC(),
		}
		if err := s.admissions.Create(ctx, a); err != nil {
			return err
		}

		claimed, err := s.beds.OccupyIfVacant(ctx, in.BedID, in.PatientID, a.ID, in.DoctorID)
		if err != nil {
			return err
		}
		if !claimed {
			return apperr.Conflict("bed %s was claimed concurrently", bed.Number)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// DischargeInput closes an admission. Status defaults to discharged; the
// alternate terminal states are transferred, absconded and deceased.
type DischargeInput struct {
	Status  string  `json:"status"`
	Summary *string `json:"summary"`
}

// Discharge closes the admission, computes the stay length, frees the bed
// and retires the patient's active nurse assignments, all in one
// transaction.
func (s *Service) Discharge(ctx context.Context, admissionID uuid.UUID, in DischargeInput) (*Admission, error) {
	if in.Status == "" {
		in.Status = AdmissionDischarged
	}
	if !terminalAdmissionStatuses[in.Status] {
		return nil, apperr.Validation("invalid discharge status %q", in.Status)
	}

	var a *Admission
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		a, err = s.admissions.GetByID(ctx, admissionID)
		if err != nil {
			return err
		}
		if a.Status != AdmissionAdmitted {
			return apperr.Conflict("admission %s is already %s", a.Code, a.Status)
		}

		now := time.Now().UTC()
		a.Status = in.Status
		a.DischargedAt = &now
		a.StayDays = StayDays(a.AdmittedAt, now)
		a.DischargeSummary = in.Summary
		if err := s.admissions.Update(ctx, a); err != nil {
			return err
		}
		if err := s.beds.Free(ctx, a.BedID); err != nil {
			return err
		}
		return s.nurses.DischargeByAdmission(ctx, a.ID)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) GetAdmission(ctx context.Context, id uuid.UUID) (*Admission, error) {
	return s.admissions.GetByID(ctx, id)
}

func (s *Service) ListAdmissionsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Admission, int, error) {
	return s.admissions.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListActiveAdmissions(ctx context.Context, limit, offset int) ([]*Admission, int, error) {
	return s.admissions.ListActive(ctx, limit, offset)
}

// AssignNurse attaches a nurse to the admission's patient and records the
// nurse on the bed.
func (s *Service) AssignNurse(ctx context.Context, admissionID, nurseID uuid.UUID) error {
	if nurseID == uuid.Nil {
		return apperr.Validation("nurse_id is required")
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		a, err := s.admissions.GetByID(ctx, admissionID)
		if err != nil {
			return err
		}
		if a.Status != AdmissionAdmitted {
			return apperr.Conflict("admission %s is %s", a.Code, a.Status)
		}
		if err := s.nurses.Assign(ctx, a.ID, a.PatientID, nurseID); err != nil {
			return err
		}
		bed, err := s.beds.GetByID(ctx, a.BedID)
		if err != nil {
			return err
		}
		bed.AssignedNurseID = &nurseID
		return s.beds.Update(ctx, bed)
	})
}

// -- Vitals --

// VitalsInput is one reading to append to an admission's history.
type VitalsInput struct {
	TemperatureC    *decimal.Decimal `json:"temperature_c"`
	PulseRate       *int             `json:"pulse_rate"`
	RespiratoryRate *int             `json:"respiratory_rate"`
	BPSystolic      *int             `json:"bp_systolic"`
	BPDiastolic     *int             `json:"bp_diastolic"`
	SpO2            *int             `json:"spo2"`
	Notes           string           `json:"notes"`
}

func (s *Service) RecordVitals(ctx context.Context, admissionID uuid.UUID, recordedBy *uuid.UUID, in VitalsInput) (*Vitals, error) {
	a, err := s.admissions.GetByID(ctx, admissionID)
	if err != nil {
		return nil, err
	}
	if a.Status != AdmissionAdmitted {
		return nil, apperr.Conflict("admission %s is %s", a.Code, a.Status)
	}
	v := &Vitals{
		AdmissionID:     admissionID,
		RecordedBy:      recordedBy,
		TemperatureC:    in.TemperatureC,
		PulseRate:       in.PulseRate,
		RespiratoryRate: in.RespiratoryRate,
		BPSystolic:      in.BPSystolic,
		BPDiastolic:     in.BPDiastolic,
		SpO2:            in.SpO2,
		Notes:           in.Notes,
		RecordedAt:      time.Now().UTC(),
	}
	if err := s.vitals.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) ListVitals(ctx context.Context, admissionID uuid.UUID) ([]*Vitals, error) {
	if _, err := s.admissions.GetByID(ctx, admissionID); err != nil {
		return nil, err
	}
	return s.vitals.ListByAdmission(ctx, admissionID)
}
