package lab

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/codes"
	"github.com/hms/hms/internal/platform/db"
)

type Service struct {
	orders   Repository
	patients PatientDirectory
	biller   Biller
	tx       db.TxRunner
}

func NewService(orders Repository, patients PatientDirectory, biller Biller, tx db.TxRunner) *Service {
	return &Service{orders: orders, patients: patients, biller: biller, tx: tx}
}

type OrderInput struct {
	PatientID   uuid.UUID       `json:"patient_id"`
	DoctorID    uuid.UUID       `json:"doctor_id"`
	AdmissionID *uuid.UUID      `json:"admission_id"`
	TestName    string          `json:"test_name"`
	Category    string          `json:"category"`
	Priority    string          `json:"priority"`
	Price       decimal.Decimal `json:"price"`
	NormalRange string          `json:"normal_range"`
}

// Order creates a lab test order and opens its bill in one transaction.
func (s *Service) Order(ctx context.Context, in OrderInput) (*TestOrder, error) {
	if in.PatientID == uuid.Nil {
		return nil, apperr.Validation("patient_id is required")
	}
	if in.DoctorID == uuid.Nil {
		return nil, apperr.Validation("doctor_id is required")
	}
	if in.TestName == "" {
		return nil, apperr.Validation("test_name is required")
	}
	if !validCategories[in.Category] {
		return nil, apperr.Validation("invalid test category %q", in.Category)
	}
	if in.Priority == "" {
		in.Priority = PriorityRoutine
	}
	if !validPriorities[in.Priority] {
		return nil, apperr.Validation("invalid priority %q", in.Priority)
	}
	if in.Price.IsNegative() {
		return nil, apperr.Validation("price cannot be negative")
	}

	if err := s.patients.Exists(ctx, in.PatientID); err != nil {
		return nil, err
	}

	o := &TestOrder{
		Code:        codes.New(codes.LabTest),
		PatientID:   in.PatientID,
		DoctorID:    in.DoctorID,
		AdmissionID: in.AdmissionID,
		TestName:    in.TestName,
		Category:    in.Category,
		Priority:    in.Priority,
		Price:       in.Price,
		NormalRange: in.NormalRange,
		Status:      StatusOrdered,
	}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.orders.Create(ctx, o); err != nil {
			return err
		}
		bill, err := s.biller.OpenBill(ctx, o.PatientID, o.AdmissionID, billing.TypeLab, []billing.ItemInput{{
			Category:    "lab",
			Description: o.TestName,
			Quantity:    1,
			UnitPrice:   o.Price,
		}})
		if err != nil {
			return err
		}
		o.BillID = &bill.ID
		return s.orders.Update(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*TestOrder, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*TestOrder, int, error) {
	return s.orders.List(ctx, f, limit, offset)
}

// CollectSample moves an ordered test to sample-collected.
func (s *Service) CollectSample(ctx context.Context, id uuid.UUID) (*TestOrder, error) {
	return s.transition(ctx, id, StatusSampleCollected, func(o *TestOrder, now time.Time) {
		o.SampleAt = &now
	})
}

// StartProcessing moves a sample-collected test to in-progress.
func (s *Service) StartProcessing(ctx context.Context, id uuid.UUID) (*TestOrder, error) {
	return s.transition(ctx, id, StatusInProgress, nil)
}

// Cancel retires a test that has not completed.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*TestOrder, error) {
	return s.transition(ctx, id, StatusCancelled, nil)
}

type ResultInput struct {
	Result      string `json:"result"`
	ResultNotes string `json:"result_notes"`
	RecordedBy  *uuid.UUID
}

// RecordResult attaches the result to an in-progress test and completes it.
func (s *Service) RecordResult(ctx context.Context, id uuid.UUID, in ResultInput) (*TestOrder, error) {
	if in.Result == "" {
		return nil, apperr.Validation("result is required")
	}
	return s.transition(ctx, id, StatusCompleted, func(o *TestOrder, now time.Time) {
		o.Result = in.Result
		o.ResultNotes = in.ResultNotes
		o.RecordedBy = in.RecordedBy
		o.CompletedAt = &now
	})
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to string, apply func(*TestOrder, time.Time)) (*TestOrder, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(o.Status, to) {
		return nil, apperr.InvalidState("lab test %s cannot move from %s to %s", o.Code, o.Status, to)
	}
	o.Status = to
	if apply != nil {
		apply(o, time.Now().UTC())
	}
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}
