package billing

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/apperr"
)

// -- Mocks --

type mockRepo struct {
	items map[uuid.UUID]*Bill
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Bill)}
}

func (m *mockRepo) Create(_ context.Context, b *Bill) error {
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	b.UpdatedAt = time.Now()
	m.items[b.ID] = b
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Bill, error) {
	b, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("bill not found")
	}
	cp := *b
	return &cp, nil
}

func (m *mockRepo) GetByCode(_ context.Context, code string) (*Bill, error) {
	for _, b := range m.items {
		if b.Code == code {
			cp := *b
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("bill not found")
}

func (m *mockRepo) Update(_ context.Context, b *Bill) error {
	m.items[b.ID] = b
	return nil
}

func (m *mockRepo) AddPayment(_ context.Context, p *Payment) error {
	p.ID = uuid.New()
	return nil
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Bill, int, error) {
	var out []*Bill
	for _, b := range m.items {
		if f.PatientID != nil && b.PatientID != *f.PatientID {
			continue
		}
		if f.BillType != "" && b.BillType != f.BillType {
			continue
		}
		if f.Status != "" && b.PaymentStatus != f.Status {
			continue
		}
		out = append(out, b)
	}
	return out, len(out), nil
}

func (m *mockRepo) ListByAdmission(_ context.Context, admissionID uuid.UUID) ([]*Bill, error) {
	var out []*Bill
	for _, b := range m.items {
		if b.AdmissionID != nil && *b.AdmissionID == admissionID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockRepo) Summarize(_ context.Context, from, to time.Time) (*Summary, error) {
	return emptySummary(from, to), nil
}

type noopTx struct{}

func (noopTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, noopTx{}), repo
}

// -- Tests --

func TestCreateBill(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	b, err := svc.CreateBill(ctx, CreateBillInput{
		PatientID: uuid.New(),
		BillType:  TypeOutpatient,
		Items:     []ItemInput{{Description: "Consultation", Quantity: 1, UnitPrice: d("500")}},
	})
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}
	if !strings.HasPrefix(b.Code, "BIL") {
		t.Errorf("code = %q, want BIL prefix", b.Code)
	}
	if b.PaymentStatus != StatusPending {
		t.Errorf("status = %q, want pending", b.PaymentStatus)
	}
	if !b.TotalAmount.Equal(d("500")) {
		t.Errorf("total = %s, want 500", b.TotalAmount)
	}
}

func TestCreateBillValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateBill(ctx, CreateBillInput{
		BillType: TypeOutpatient,
		Items:    []ItemInput{{Description: "x", Quantity: 1, UnitPrice: d("1")}},
	})
	if !apperr.IsValidation(err) {
		t.Errorf("missing patient: got %v", err)
	}

	_, err = svc.CreateBill(ctx, CreateBillInput{
		PatientID: uuid.New(),
		BillType:  "subscription",
		Items:     []ItemInput{{Description: "x", Quantity: 1, UnitPrice: d("1")}},
	})
	if !apperr.IsValidation(err) {
		t.Errorf("bad type: got %v", err)
	}

	_, err = svc.CreateBill(ctx, CreateBillInput{
		PatientID: uuid.New(),
		BillType:  TypeOutpatient,
	})
	if !apperr.IsValidation(err) {
		t.Errorf("no items: got %v", err)
	}
}

func TestDiscountThenPayments(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	b, err := svc.CreateBill(ctx, CreateBillInput{
		PatientID: uuid.New(),
		BillType:  TypeInpatient,
		Items: []ItemInput{
			{Description: "Room charge", Quantity: 1, UnitPrice: d("2000")},
			{Description: "Dressing", Quantity: 2, UnitPrice: d("500")},
		},
	})
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}

	b, err = svc.ApplyDiscount(ctx, b.ID, DiscountInput{Percent: d("10"), Reason: "scheme"})
	if err != nil {
		t.Fatalf("ApplyDiscount: %v", err)
	}
	if !b.TotalAmount.Equal(d("2700")) {
		t.Errorf("total after discount = %s, want 2700", b.TotalAmount)
	}

	b, err = svc.RecordPayment(ctx, b.ID, PaymentInput{Method: "cash", Amount: d("1000")})
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if b.PaymentStatus != StatusPartial || !b.BalanceAmount.Equal(d("1700")) {
		t.Errorf("after first payment: status=%s balance=%s", b.PaymentStatus, b.BalanceAmount)
	}

	b, err = svc.RecordPayment(ctx, b.ID, PaymentInput{Method: "upi", Amount: d("1700")})
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if b.PaymentStatus != StatusPaid || !b.BalanceAmount.IsZero() {
		t.Errorf("after final payment: status=%s balance=%s", b.PaymentStatus, b.BalanceAmount)
	}
	if len(b.Payments) != 2 {
		t.Errorf("payments = %d, want 2", len(b.Payments))
	}
}

func TestRecordPaymentOverpayment(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	b, err := svc.CreateBill(ctx, CreateBillInput{
		PatientID: uuid.New(),
		BillType:  TypeLab,
		Items:     []ItemInput{{Description: "CBC", Quantity: 1, UnitPrice: d("350")}},
	})
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}
	_, err = svc.RecordPayment(ctx, b.ID, PaymentInput{Method: "cash", Amount: d("400")})
	if !apperr.IsValidation(err) {
		t.Errorf("overpayment: got %v", err)
	}
}

func TestRecordPaymentUnknownBill(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.RecordPayment(context.Background(), uuid.New(), PaymentInput{Method: "cash", Amount: d("1")})
	if !apperr.IsNotFound(err) {
		t.Errorf("got %v, want not found", err)
	}
}

func TestOpenBill(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	admID := uuid.New()
	b, err := svc.OpenBill(ctx, uuid.New(), &admID, TypePharmacy,
		[]ItemInput{{Description: "Paracetamol 500mg", Quantity: 10, UnitPrice: d("2")}})
	if err != nil {
		t.Fatalf("OpenBill: %v", err)
	}
	if !b.TotalAmount.Equal(d("20")) {
		t.Errorf("total = %s, want 20", b.TotalAmount)
	}

	got, err := repo.ListByAdmission(ctx, admID)
	if err != nil || len(got) != 1 {
		t.Errorf("ListByAdmission = %v, %v", got, err)
	}
}

func TestRefundBill(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	b, err := svc.CreateBill(ctx, CreateBillInput{
		PatientID: uuid.New(),
		BillType:  TypeOutpatient,
		Items:     []ItemInput{{Description: "Consultation", Quantity: 1, UnitPrice: d("500")}},
	})
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}

	_, err = svc.RefundBill(ctx, b.ID)
	if !apperr.IsInvalidState(err) {
		t.Errorf("refund of unpaid bill: got %v", err)
	}

	if _, err = svc.RecordPayment(ctx, b.ID, PaymentInput{Method: "card", Amount: d("500")}); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	b, err = svc.RefundBill(ctx, b.ID)
	if err != nil {
		t.Fatalf("RefundBill: %v", err)
	}
	if b.PaymentStatus != StatusRefunded {
		t.Errorf("status = %q, want refunded", b.PaymentStatus)
	}
}

func TestRevenueSummaryValidatesRange(t *testing.T) {
	svc, _ := newTestService()
	now := time.Now()
	_, err := svc.RevenueSummary(context.Background(), now, now)
	if !apperr.IsValidation(err) {
		t.Errorf("got %v, want validation error", err)
	}
}

func TestListBillsFilter(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	pid := uuid.New()

	for _, bt := range []string{TypeOutpatient, TypeLab} {
		if _, err := svc.CreateBill(ctx, CreateBillInput{
			PatientID: pid,
			BillType:  bt,
			Items:     []ItemInput{{Description: "x", Quantity: 1, UnitPrice: d("10")}},
		}); err != nil {
			t.Fatalf("CreateBill: %v", err)
		}
	}

	items, total, err := svc.ListBills(ctx, Filter{PatientID: &pid, BillType: TypeLab}, 20, 0)
	if err != nil {
		t.Fatalf("ListBills: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("total = %d, len = %d, want 1", total, len(items))
	}

	_, _, err = svc.ListBills(ctx, Filter{BillType: "bogus"}, 20, 0)
	if !apperr.IsValidation(err) {
		t.Errorf("bad filter type: got %v", err)
	}
}
