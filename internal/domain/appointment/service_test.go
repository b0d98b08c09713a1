package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/platform/apperr"
)

// -- Mocks --

type mockRepo struct {
	items map[uuid.UUID]*Appointment
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	m.items[a.ID] = a
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("appointment not found")
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, a *Appointment) error {
	m.items[a.ID] = a
	return nil
}

func (m *mockRepo) HasSlotConflict(_ context.Context, doctorID uuid.UUID, at time.Time) (bool, error) {
	for _, a := range m.items {
		if a.DoctorID == doctorID && a.ScheduledAt.Equal(at.UTC()) &&
			a.Status != StatusCancelled && a.Status != StatusNoShow {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, day *time.Time, limit, offset int) ([]*Appointment, int, error) {
	var out []*Appointment
	for _, a := range m.items {
		if a.DoctorID == doctorID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var out []*Appointment
	for _, a := range m.items {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

type mockPatients struct {
	known map[uuid.UUID]bool
}

func (m *mockPatients) Exists(_ context.Context, id uuid.UUID) error {
	if !m.known[id] {
		return apperr.NotFound("patient not found")
	}
	return nil
}

type mockDoctors struct {
	fees map[uuid.UUID]decimal.Decimal
}

func (m *mockDoctors) ConsultationFee(_ context.Context, doctorID uuid.UUID) (decimal.Decimal, error) {
	fee, ok := m.fees[doctorID]
	if !ok {
		return decimal.Zero, apperr.NotFound("doctor not found")
	}
	return fee, nil
}

type mockBiller struct {
	bills []*billing.Bill
	fail  error
}

func (m *mockBiller) OpenBill(_ context.Context, patientID uuid.UUID, admissionID *uuid.UUID, billType string, items []billing.ItemInput) (*billing.Bill, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	b := &billing.Bill{ID: uuid.New(), PatientID: patientID, BillType: billType}
	m.bills = append(m.bills, b)
	return b, nil
}

type noopTx struct{}

func (noopTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	svc       *Service
	patients  *mockPatients
	doctors   *mockDoctors
	biller    *mockBiller
	patientID uuid.UUID
	doctorID  uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		patients:  &mockPatients{known: map[uuid.UUID]bool{}},
		doctors:   &mockDoctors{fees: map[uuid.UUID]decimal.Decimal{}},
		biller:    &mockBiller{},
		patientID: uuid.New(),
		doctorID:  uuid.New(),
	}
	f.patients.known[f.patientID] = true
	f.doctors.fees[f.doctorID] = decimal.NewFromInt(500)
	f.svc = NewService(newMockRepo(), f.patients, f.doctors, f.biller, noopTx{})
	return f
}

func slot() time.Time {
	return time.Now().Add(48 * time.Hour).Truncate(time.Hour)
}

// -- Tests --

func TestBook(t *testing.T) {
	f := newFixture()
	a, err := f.svc.Book(context.Background(), BookInput{
		PatientID: f.patientID, DoctorID: f.doctorID,
		ScheduledAt: slot(), Reason: "fever",
	})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if a.Status != StatusScheduled {
		t.Errorf("status = %q, want scheduled", a.Status)
	}
	if a.BillID == nil {
		t.Error("no bill opened for booking")
	}
	if len(f.biller.bills) != 1 || f.biller.bills[0].BillType != billing.TypeOutpatient {
		t.Errorf("biller calls = %+v", f.biller.bills)
	}
}

func TestBookSlotConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	at := slot()

	if _, err := f.svc.Book(ctx, BookInput{PatientID: f.patientID, DoctorID: f.doctorID, ScheduledAt: at}); err != nil {
		t.Fatalf("Book: %v", err)
	}

	otherPatient := uuid.New()
	f.patients.known[otherPatient] = true
	_, err := f.svc.Book(ctx, BookInput{PatientID: otherPatient, DoctorID: f.doctorID, ScheduledAt: at})
	if !apperr.IsConflict(err) {
		t.Errorf("double-booked slot: got %v, want conflict", err)
	}
}

func TestBookValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Book(ctx, BookInput{DoctorID: f.doctorID, ScheduledAt: slot()})
	if !apperr.IsValidation(err) {
		t.Errorf("missing patient: got %v", err)
	}

	_, err = f.svc.Book(ctx, BookInput{PatientID: f.patientID, DoctorID: f.doctorID, ScheduledAt: time.Now().Add(-time.Hour)})
	if !apperr.IsValidation(err) {
		t.Errorf("past slot: got %v", err)
	}

	_, err = f.svc.Book(ctx, BookInput{PatientID: uuid.New(), DoctorID: f.doctorID, ScheduledAt: slot()})
	if !apperr.IsNotFound(err) {
		t.Errorf("unknown patient: got %v", err)
	}

	_, err = f.svc.Book(ctx, BookInput{PatientID: f.patientID, DoctorID: uuid.New(), ScheduledAt: slot()})
	if !apperr.IsNotFound(err) {
		t.Errorf("unknown doctor: got %v", err)
	}
}

func TestBookBillerFailureAborts(t *testing.T) {
	f := newFixture()
	f.biller.fail = apperr.Validation("billing rejected")

	_, err := f.svc.Book(context.Background(), BookInput{
		PatientID: f.patientID, DoctorID: f.doctorID, ScheduledAt: slot(),
	})
	if !apperr.IsValidation(err) {
		t.Errorf("got %v, want biller error surfaced", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.svc.Book(ctx, BookInput{PatientID: f.patientID, DoctorID: f.doctorID, ScheduledAt: slot()})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	a, err = f.svc.SetStatus(ctx, a.ID, StatusConfirmed, "")
	if err != nil || a.Status != StatusConfirmed {
		t.Fatalf("confirm: %v, status %q", err, a.Status)
	}
	a, err = f.svc.SetStatus(ctx, a.ID, StatusCompleted, "seen by doctor")
	if err != nil || a.Status != StatusCompleted {
		t.Fatalf("complete: %v, status %q", err, a.Status)
	}

	// completed is terminal
	_, err = f.svc.SetStatus(ctx, a.ID, StatusCancelled, "")
	if !apperr.IsInvalidState(err) {
		t.Errorf("cancel after completion: got %v", err)
	}
}

func TestStatusSkipAndInvalid(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.svc.Book(ctx, BookInput{PatientID: f.patientID, DoctorID: f.doctorID, ScheduledAt: slot()})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	// scheduled cannot jump straight to completed
	_, err = f.svc.SetStatus(ctx, a.ID, StatusCompleted, "")
	if !apperr.IsInvalidState(err) {
		t.Errorf("skip to completed: got %v", err)
	}

	if _, err = f.svc.SetStatus(ctx, a.ID, StatusNoShow, ""); err != nil {
		t.Errorf("no-show from scheduled: %v", err)
	}

	_, err = f.svc.SetStatus(ctx, uuid.New(), StatusConfirmed, "")
	if !apperr.IsNotFound(err) {
		t.Errorf("unknown appointment: got %v", err)
	}
}

func TestCancelFreesSlot(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	at := slot()

	a, err := f.svc.Book(ctx, BookInput{PatientID: f.patientID, DoctorID: f.doctorID, ScheduledAt: at})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if _, err := f.svc.SetStatus(ctx, a.ID, StatusCancelled, "patient request"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := f.svc.Book(ctx, BookInput{PatientID: f.patientID, DoctorID: f.doctorID, ScheduledAt: at}); err != nil {
		t.Errorf("rebook cancelled slot: %v", err)
	}
}
