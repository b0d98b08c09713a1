package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/codes"
	"github.com/hms/hms/internal/platform/db"
)

type Service struct {
	appointments Repository
	patients     PatientDirectory
	doctors      DoctorDirectory
	biller       Biller
	tx           db.TxRunner
}

func NewService(appointments Repository, patients PatientDirectory, doctors DoctorDirectory, biller Biller, tx db.TxRunner) *Service {
	return &Service{appointments: appointments, patients: patients, doctors: doctors, biller: biller, tx: tx}
}

type BookInput struct {
	PatientID   uuid.UUID `json:"patient_id"`
	DoctorID    uuid.UUID `json:"doctor_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Reason      string    `json:"reason"`
}

// Book validates patient and doctor, rejects a double-booked slot, then
// creates the appointment and its outpatient consultation bill in one
// transaction.
func (s *Service) Book(ctx context.Context, in BookInput) (*Appointment, error) {
	if in.PatientID == uuid.Nil {
		return nil, apperr.Validation("patient_id is required")
	}
	if in.DoctorID == uuid.Nil {
		return nil, apperr.Validation("doctor_id is required")
	}
	if in.ScheduledAt.IsZero() {
		return nil, apperr.Validation("scheduled_at is required")
	}
	if in.ScheduledAt.Before(time.Now()) {
		return nil, apperr.Validation("scheduled_at must be in the future")
	}
	if err := s.patients.Exists(ctx, in.PatientID); err != nil {
		return nil, err
	}
	fee, err := s.doctors.ConsultationFee(ctx, in.DoctorID)
	if err != nil {
		return nil, err
	}

	var a *Appointment
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		taken, err := s.appointments.HasSlotConflict(ctx, in.DoctorID, in.ScheduledAt)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict("doctor already has an appointment at %s", in.ScheduledAt.Format(time.RFC3339))
		}

		a = &Appointment{
			Code:        codes.New(codes.Appointment),
			PatientID:   in.PatientID,
			DoctorID:    in.DoctorID,
			ScheduledAt: in.ScheduledAt.UTC(),
			Status:      StatusScheduled,
			Reason:      in.Reason,
		}
		if err := s.appointments.Create(ctx, a); err != nil {
			return err
		}

		bill, err := s.biller.OpenBill(ctx, in.PatientID, nil, billing.TypeOutpatient,
			[]billing.ItemInput{{
				Category:    "consultation",
				Description: "Consultation fee",
				Quantity:    1,
				UnitPrice:   fee,
			}})
		if err != nil {
			return err
		}
		a.BillID = &bill.ID
		return s.appointments.Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// SetStatus walks the appointment through its state machine:
// scheduled -> confirmed -> completed, with cancelled and no-show reachable
// from any non-terminal state.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status, notes string) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if status == a.Status {
		return a, nil
	}
	if !canTransition(a.Status, status) {
		return nil, apperr.InvalidState("cannot move appointment from %s to %s", a.Status, status)
	}
	a.Status = status
	if notes != "" {
		a.Notes = notes
	}
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, day *time.Time, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByDoctor(ctx, doctorID, day, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByPatient(ctx, patientID, limit, offset)
}
