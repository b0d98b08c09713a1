package billing

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
	bills Repository
	tx    db.TxRunner
}

func NewService(bills Repository, tx db.TxRunner) *Service {
	return &Service{bills: bills, tx: tx}
}

// CreateBillInput is the request to compose a new invoice.
type CreateBillInput struct {
	PatientID   uuid.UUID       `json:"patient_id"`
	AdmissionID *uuid.UUID      `json:"admission_id"`
	BillType    string          `json:"bill_type"`
	Items       []ItemInput     `json:"items"`
	CGST        decimal.Decimal `json:"cgst"`
	SGST        decimal.Decimal `json:"sgst"`
	IGST        decimal.Decimal `json:"igst"`
	Note        *string         `json:"note"`
}

// CreateBill composes the line items, derives every financial field and
// persists the bill with its items in one transaction.
func (s *Service) CreateBill(ctx context.Context, in CreateBillInput) (*Bill, error) {
	var b *Bill
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.createBill(ctx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// OpenBill creates a bill on behalf of another module (appointment booking,
// pharmacy dispense, lab order). It joins the caller's transaction when one
// is already on the context.
func (s *Service) OpenBill(ctx context.Context, patientID uuid.UUID, admissionID *uuid.UUID, billType string, items []ItemInput) (*Bill, error) {
	in := CreateBillInput{
		PatientID:   patientID,
		AdmissionID: admissionID,
		BillType:    billType,
		Items:       items,
	}
	if db.TxFromContext(ctx) != nil {
		return s.createBill(ctx, in)
	}
	return s.CreateBill(ctx, in)
}

func (s *Service) createBill(ctx context.Context, in CreateBillInput) (*Bill, error) {
	if in.PatientID == uuid.Nil {
		return nil, apperr.Validation("patient_id is required")
	}
	if !validBillTypes[in.BillType] {
		return nil, apperr.Validation("invalid bill type %q", in.BillType)
	}
	if in.CGST.IsNegative() || in.SGST.IsNegative() || in.IGST.IsNegative() {
		return nil, apperr.Validation("tax amounts cannot be negative")
	}
	items, _, err := composeItems(in.Items)
	if err != nil {
		return nil, err
	}

	b := &Bill{
		Code:            codes.New(codes.Bill),
		PatientID:       in.PatientID,
		AdmissionID:     in.AdmissionID,
		BillType:        in.BillType,
		Items:           items,
		DiscountAmount:  decimal.Zero,
		DiscountPercent: decimal.Zero,
		CGST:            in.CGST,
		SGST:            in.SGST,
		IGST:            in.IGST,
		Note:            in.Note,
	}
	if err := b.recalculate(); err != nil {
		return nil, err
	}
	if err := s.bills.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) GetBill(ctx context.Context, id uuid.UUID) (*Bill, error) {
	return s.bills.GetByID(ctx, id)
}

func (s *Service) GetBillByCode(ctx context.Context, code string) (*Bill, error) {
	return s.bills.GetByCode(ctx, code)
}

func (s *Service) ListBills(ctx context.Context, f Filter, limit, offset int) ([]*Bill, int, error) {
	if f.BillType != "" && !validBillTypes[f.BillType] {
		return nil, 0, apperr.Validation("invalid bill type %q", f.BillType)
	}
	return s.bills.List(ctx, f, limit, offset)
}

func (s *Service) ListByAdmission(ctx context.Context, admissionID uuid.UUID) ([]*Bill, error) {
	return s.bills.ListByAdmission(ctx, admissionID)
}

// DiscountInput carries either a percentage or a fixed amount.
type DiscountInput struct {
	Percent decimal.Decimal `json:"percent"`
	Amount  decimal.Decimal `json:"amount"`
	Reason  string          `json:"reason"`
}

func (s *Service) ApplyDiscount(ctx context.Context, billID uuid.UUID, in DiscountInput) (*Bill, error) {
	var b *Bill
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.bills.GetByID(ctx, billID)
		if err != nil {
			return err
		}
		if err = b.applyDiscount(in.Percent, in.Amount, in.Reason); err != nil {
			return err
		}
		return s.bills.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// PaymentInput is one payment to record against a bill.
type PaymentInput struct {
	Method        string          `json:"method"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id"`
}

func (s *Service) RecordPayment(ctx context.Context, billID uuid.UUID, in PaymentInput) (*Bill, error) {
	var b *Bill
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.bills.GetByID(ctx, billID)
		if err != nil {
			return err
		}
		p := Payment{
			BillID:        billID,
			Method:        in.Method,
			Amount:        in.Amount,
			TransactionID: in.TransactionID,
			PaidAt:        time.Now().UTC(),
		}
		if err = b.applyPayment(p); err != nil {
			return err
		}
		if err = s.bills.AddPayment(ctx, &b.Payments[len(b.Payments)-1]); err != nil {
			return err
		}
		return s.bills.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) RefundBill(ctx context.Context, billID uuid.UUID) (*Bill, error) {
	var b *Bill
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.bills.GetByID(ctx, billID)
		if err != nil {
			return err
		}
		if err = b.markRefunded(); err != nil {
			return err
		}
		return s.bills.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// RevenueSummary aggregates bills created in [from, to).
func (s *Service) RevenueSummary(ctx context.Context, from, to time.Time) (*Summary, error) {
	if !to.After(from) {
		return nil, apperr.Validation("to must be after from")
	}
	return s.bills.Summarize(ctx, from, to)
}
