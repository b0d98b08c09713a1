package pharmacy

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
	medicines     MedicineRepository
	prescriptions PrescriptionRepository
	biller        Biller
	tx            db.TxRunner
}

func NewService(medicines MedicineRepository, prescriptions PrescriptionRepository, biller Biller, tx db.TxRunner) *Service {
	return &Service{medicines: medicines, prescriptions: prescriptions, biller: biller, tx: tx}
}

// -- Medicines --

type MedicineInput struct {
	Name         string          `json:"name"`
	GenericName  string          `json:"generic_name"`
	Manufacturer string          `json:"manufacturer"`
	Category     string          `json:"category"`
	BatchNumber  string          `json:"batch_number"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Stock        int             `json:"stock"`
	ReorderLevel int             `json:"reorder_level"`
	ExpiryDate   *time.Time      `json:"expiry_date"`
}

func (s *Service) CreateMedicine(ctx context.Context, in MedicineInput) (*Medicine, error) {
	if in.Name == "" {
		return nil, apperr.Validation("medicine name is required")
	}
	if in.UnitPrice.IsNegative() {
		return nil, apperr.Validation("unit price cannot be negative")
	}
	if in.Stock < 0 || in.ReorderLevel < 0 {
		return nil, apperr.Validation("stock and reorder level cannot be negative")
	}
	m := &Medicine{
		Code:         codes.New(codes.Medicine),
		Name:         in.Name,
		GenericName:  in.GenericName,
		Manufacturer: in.Manufacturer,
		Category:     in.Category,
		BatchNumber:  in.BatchNumber,
		UnitPrice:    in.UnitPrice,
		Stock:        in.Stock,
		ReorderLevel: in.ReorderLevel,
		ExpiryDate:   in.ExpiryDate,
	}
	if err := s.medicines.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) GetMedicine(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	return s.medicines.GetByID(ctx, id)
}

func (s *Service) ListMedicines(ctx context.Context, query string, lowStockOnly bool, limit, offset int) ([]*Medicine, int, error) {
	return s.medicines.List(ctx, query, lowStockOnly, limit, offset)
}

// Restock adds qty units of a medicine.
func (s *Service) Restock(ctx context.Context, id uuid.UUID, qty int) (*Medicine, error) {
	if qty < 1 {
		return nil, apperr.Validation("restock quantity must be at least 1")
	}
	if _, err := s.medicines.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.medicines.AddStock(ctx, id, qty); err != nil {
		return nil, err
	}
	return s.medicines.GetByID(ctx, id)
}

// -- Prescriptions --

type PrescriptionItemInput struct {
	MedicineID   uuid.UUID `json:"medicine_id"`
	Dosage       string    `json:"dosage"`
	Frequency    string    `json:"frequency"`
	DurationDays int       `json:"duration_days"`
	Quantity     int       `json:"quantity"`
}

type PrescribeInput struct {
	PatientID   uuid.UUID               `json:"patient_id"`
	DoctorID    uuid.UUID               `json:"doctor_id"`
	AdmissionID *uuid.UUID              `json:"admission_id"`
	Notes       string                  `json:"notes"`
	Items       []PrescriptionItemInput `json:"items"`
}

func (s *Service) Prescribe(ctx context.Context, in PrescribeInput) (*Prescription, error) {
	if in.PatientID == uuid.Nil {
		return nil, apperr.Validation("patient_id is required")
	}
	if in.DoctorID == uuid.Nil {
		return nil, apperr.Validation("doctor_id is required")
	}
	if len(in.Items) == 0 {
		return nil, apperr.Validation("prescription requires at least one item")
	}

	p := &Prescription{
		Code:        codes.New(codes.Prescription),
		PatientID:   in.PatientID,
		DoctorID:    in.DoctorID,
		AdmissionID: in.AdmissionID,
		Status:      PrescriptionPending,
		Notes:       in.Notes,
	}
	for i, it := range in.Items {
		if it.Quantity < 1 {
			return nil, apperr.Validation("item %d: quantity must be at least 1", i+1)
		}
		m, err := s.medicines.GetByID(ctx, it.MedicineID)
		if err != nil {
			return nil, err
		}
		p.Items = append(p.Items, PrescriptionItem{
			MedicineID:   it.MedicineID,
			MedicineName: m.Name,
			Dosage:       it.Dosage,
			Frequency:    it.Frequency,
			DurationDays: it.DurationDays,
			Quantity:     it.Quantity,
		})
	}
	if err := s.prescriptions.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetPrescription(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.prescriptions.GetByID(ctx, id)
}

func (s *Service) ListPrescriptionsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return s.prescriptions.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListPendingPrescriptions(ctx context.Context, limit, offset int) ([]*Prescription, int, error) {
	return s.prescriptions.ListByStatus(ctx, PrescriptionPending, limit, offset)
}

// Dispense decrements stock for every item, marks the prescription
// dispensed and opens a pharmacy bill, all in one transaction. Insufficient
// or expired stock for any item aborts the whole dispense.
func (s *Service) Dispense(ctx context.Context, prescriptionID uuid.UUID) (*Prescription, error) {
	var p *Prescription
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.prescriptions.GetByID(ctx, prescriptionID)
		if err != nil {
			return err
		}
		if p.Status != PrescriptionPending {
			return apperr.InvalidState("prescription %s is already %s", p.Code, p.Status)
		}

		now := time.Now().UTC()
		billItems := make([]billing.ItemInput, 0, len(p.Items))
		for _, it := range p.Items {
			m, err := s.medicines.GetByID(ctx, it.MedicineID)
			if err != nil {
				return err
			}
			if m.Expired(now) {
				return apperr.Conflict("medicine %s is expired", m.Name)
			}
			ok, err := s.medicines.DecrementStock(ctx, it.MedicineID, it.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return apperr.Conflict("insufficient stock of %s: need %d, have %d", m.Name, it.Quantity, m.Stock)
			}
			billItems = append(billItems, billing.ItemInput{
				Category:    "pharmacy",
				Description: m.Name,
				Quantity:    it.Quantity,
				UnitPrice:   m.UnitPrice,
			})
		}

		bill, err := s.biller.OpenBill(ctx, p.PatientID, p.AdmissionID, billing.TypePharmacy, billItems)
		if err != nil {
			return err
		}
		p.Status = PrescriptionDispensed
		p.BillID = &bill.ID
		p.DispensedAt = &now
		return s.prescriptions.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CancelPrescription retires a pending prescription without touching stock.
func (s *Service) CancelPrescription(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != PrescriptionPending {
		return nil, apperr.InvalidState("prescription %s is already %s", p.Code, p.Status)
	}
	p.Status = PrescriptionCancelled
	if err := s.prescriptions.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
